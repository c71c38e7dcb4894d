package realtime

import (
	"sync"

	"bookinghub/models"
)

// MaxBufferedUpdates caps the recent-updates buffer.
const MaxBufferedUpdates = 50

// UpdateBuffer holds the most recent booking updates, newest first.
type UpdateBuffer struct {
	mu    sync.Mutex
	limit int
	items []models.BookingUpdate
}

func NewUpdateBuffer(limit int) *UpdateBuffer {
	if limit <= 0 {
		limit = MaxBufferedUpdates
	}
	return &UpdateBuffer{limit: limit}
}

// Push prepends u and drops whatever falls past the limit.
func (b *UpdateBuffer) Push(u models.BookingUpdate) {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := make([]models.BookingUpdate, 0, min(len(b.items)+1, b.limit))
	next = append(next, u)
	for _, item := range b.items {
		if len(next) == b.limit {
			break
		}
		next = append(next, item)
	}
	b.items = next
}

// Replace swaps the whole buffer for items, which must already be newest first.
func (b *UpdateBuffer) Replace(items []models.BookingUpdate) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(items) > b.limit {
		items = items[:b.limit]
	}
	b.items = append([]models.BookingUpdate(nil), items...)
}

// Snapshot returns a copy of the buffered updates.
func (b *UpdateBuffer) Snapshot() []models.BookingUpdate {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.BookingUpdate(nil), b.items...)
}

func (b *UpdateBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}
