package realtime

import (
	"context"
	"errors"
	"sync"

	"bookinghub/database/repository"
	"bookinghub/models"
)

type fakeSubscription struct {
	events  chan models.BookingChange
	current models.BookingChange
	closed  chan struct{}
	once    sync.Once

	mu  sync.Mutex
	err error
}

// fail ends the stream the way a dropped change stream does.
func (s *fakeSubscription) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	close(s.events)
}

func newFakeSubscription() *fakeSubscription {
	return &fakeSubscription{events: make(chan models.BookingChange, 128), closed: make(chan struct{})}
}

func (s *fakeSubscription) Next(ctx context.Context) bool {
	select {
	case ev, ok := <-s.events:
		if !ok {
			return false
		}
		s.current = ev
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *fakeSubscription) Current() models.BookingChange { return s.current }

func (s *fakeSubscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *fakeSubscription) Close(context.Context) error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

type fakeFeed struct {
	mu        sync.Mutex
	subs      []*fakeSubscription
	scopes    []models.BookingScope
	recent    []models.Booking
	failOpen  bool
	lastLimit int
}

func (f *fakeFeed) Subscribe(_ context.Context, scope models.BookingScope) (repository.BookingSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOpen {
		return nil, errors.New("change streams unavailable")
	}
	sub := newFakeSubscription()
	f.subs = append(f.subs, sub)
	f.scopes = append(f.scopes, scope)
	return sub, nil
}

func (f *fakeFeed) Recent(_ context.Context, _ models.BookingScope, limit int) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit = limit
	return f.recent, nil
}

func (f *fakeFeed) sub(i int) *fakeSubscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs[i]
}

type recordingNotifier struct {
	mu     sync.Mutex
	toasts []models.Toast
	scopes []models.BookingScope
}

func (n *recordingNotifier) Notify(_ context.Context, scope models.BookingScope, toast models.Toast) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toasts = append(n.toasts, toast)
	n.scopes = append(n.scopes, scope)
}

func (n *recordingNotifier) audiences() []models.BookingScope {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.BookingScope(nil), n.scopes...)
}

func (n *recordingNotifier) all() []models.Toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.Toast(nil), n.toasts...)
}
