package realtime

import (
	"context"
	"sync"
	"sync/atomic"

	"bookinghub/database/repository"
	"bookinghub/models"

	"go.uber.org/zap"
)

// RefreshLimit is how many rows a manual refresh pulls.
const RefreshLimit = 10

// Feed is the booking source a Listener subscribes to.
type Feed interface {
	Subscribe(ctx context.Context, scope models.BookingScope) (repository.BookingSubscription, error)
	Recent(ctx context.Context, scope models.BookingScope, limit int) ([]models.Booking, error)
}

// Notifier receives the toasts a Listener raises.
type Notifier interface {
	Notify(ctx context.Context, scope models.BookingScope, toast models.Toast)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, scope models.BookingScope, toast models.Toast)

func (f NotifierFunc) Notify(ctx context.Context, scope models.BookingScope, toast models.Toast) {
	f(ctx, scope, toast)
}

// MultiNotifier fans a toast out to every notifier in order.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, scope models.BookingScope, toast models.Toast) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, scope, toast)
		}
	}
}

// Listener keeps one booking subscription open for a user and role, buffers
// the updates it sees and raises toasts on status transitions. Failures are
// logged; a failed Listener simply delivers nothing.
type Listener struct {
	feed     Feed
	notifier Notifier
	onUpdate func(models.BookingUpdate)
	logger   *zap.Logger
	buffer   *UpdateBuffer

	connected atomic.Bool

	mu     sync.Mutex
	scope  models.BookingScope
	cancel context.CancelFunc
	done   chan struct{}
}

func NewListener(feed Feed, notifier Notifier, onUpdate func(models.BookingUpdate), logger *zap.Logger) *Listener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Listener{
		feed:     feed,
		notifier: notifier,
		onUpdate: onUpdate,
		logger:   logger,
		buffer:   NewUpdateBuffer(MaxBufferedUpdates),
	}
}

// Start subscribes for userID and role. ListenerRoleAny matches bookings where
// userID is any of the three parties; with an empty userID it follows every
// booking and raises toasts for each party on it. An existing subscription for
// a different scope is torn down first; a live one for the same scope is left
// running. onUpdate runs on the subscription goroutine and must not call Stop.
func (l *Listener) Start(ctx context.Context, userID string, role models.ListenerRole) {
	l.StartScope(ctx, models.BookingScope{UserID: userID, Role: role})
}

// StartScope is Start for a prepared scope, such as a role-unset scope whose
// provider and business keys differ from the account id.
func (l *Listener) StartScope(ctx context.Context, scope models.BookingScope) {
	userID, role := scope.UserID, scope.Role

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil && l.scope == scope && l.connected.Load() {
		return
	}
	l.stopLocked()
	if userID == "" && role != models.ListenerRoleAny {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	sub, err := l.feed.Subscribe(runCtx, scope)
	if err != nil {
		cancel()
		l.logger.Error("Booking subscription failed", zap.String("userID", userID), zap.String("role", string(role)), zap.Error(err))
		return
	}

	l.scope = scope
	l.cancel = cancel
	l.done = make(chan struct{})
	l.connected.Store(true)
	l.logger.Info("Booking subscription open", zap.String("userID", userID), zap.String("role", string(role)))

	go l.run(runCtx, scope, sub, l.done)
}

// Stop closes the subscription and clears the connected flag. Safe to call
// repeatedly.
func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked()
}

func (l *Listener) stopLocked() {
	if l.cancel != nil {
		l.cancel()
		<-l.done
		l.cancel = nil
		l.done = nil
		l.scope = models.BookingScope{}
	}
	l.connected.Store(false)
}

// Connected reports whether the subscription is live.
func (l *Listener) Connected() bool { return l.connected.Load() }

// Updates returns the buffered updates, newest first.
func (l *Listener) Updates() []models.BookingUpdate { return l.buffer.Snapshot() }

// Refresh replaces the buffer with the newest rows in scope. Nothing is merged
// with updates received from the subscription.
func (l *Listener) Refresh(ctx context.Context) {
	l.mu.Lock()
	scope := l.scope
	l.mu.Unlock()
	if scope.UserID == "" {
		return
	}

	rows, err := l.feed.Recent(ctx, scope, RefreshLimit)
	if err != nil {
		l.logger.Error("Booking refresh failed", zap.String("userID", scope.UserID), zap.Error(err))
		return
	}
	updates := make([]models.BookingUpdate, 0, len(rows))
	for _, row := range rows {
		updates = append(updates, models.NewBookingUpdate(row, row.PreviousStatus))
	}
	l.buffer.Replace(updates)
}

func (l *Listener) run(ctx context.Context, scope models.BookingScope, sub repository.BookingSubscription, done chan struct{}) {
	defer close(done)
	defer func() {
		if err := sub.Close(context.Background()); err != nil {
			l.logger.Warn("Closing booking subscription failed", zap.Error(err))
		}
		l.connected.Store(false)
	}()

	for sub.Next(ctx) {
		l.handle(ctx, scope, sub.Current())
	}
	if err := sub.Err(); err != nil && ctx.Err() == nil {
		l.logger.Error("Booking subscription dropped", zap.String("userID", scope.UserID), zap.Error(err))
	}
}

func (l *Listener) handle(ctx context.Context, scope models.BookingScope, change models.BookingChange) {
	switch change.Operation {
	case models.ChangeInsert:
		update := models.NewBookingUpdate(change.Booking, "")
		l.record(update)
		for _, audience := range audiences(scope, update) {
			if audience.Role == models.ListenerRoleProvider || audience.Role == models.ListenerRoleBusiness {
				l.notify(ctx, audience, NewBookingToast(update))
			}
		}

	case models.ChangeUpdate:
		if !change.StatusTouched {
			return
		}
		previous := ""
		if change.Before != nil {
			previous = change.Before.Status
			if previous == change.Booking.Status {
				return
			}
		}
		update := models.NewBookingUpdate(change.Booking, previous)
		l.record(update)
		for _, audience := range audiences(scope, update) {
			l.notify(ctx, audience, ToastFor(audience.Role, update))
		}
	}
}

// audiences is the scope itself for a single role. A role-unset scope for one
// user gets a single toast, phrased for the first party key the booking
// matches. The all-bookings scope addresses every party on the booking.
func audiences(scope models.BookingScope, u models.BookingUpdate) []models.BookingScope {
	if scope.Role != models.ListenerRoleAny {
		return []models.BookingScope{scope}
	}
	parties := []models.ScopeLeg{
		{Role: models.ListenerRoleCustomer, ID: u.CustomerID},
		{Role: models.ListenerRoleProvider, ID: u.ProviderID},
		{Role: models.ListenerRoleBusiness, ID: u.BusinessID},
	}
	if scope.AllBookings() {
		var out []models.BookingScope
		for _, p := range parties {
			if p.ID != "" {
				out = append(out, models.BookingScope{UserID: p.ID, Role: p.Role})
			}
		}
		return out
	}
	for i, leg := range scope.Legs() {
		if parties[i].ID != "" && parties[i].ID == leg.ID {
			return []models.BookingScope{{UserID: leg.ID, Role: leg.Role}}
		}
	}
	return nil
}

func (l *Listener) record(update models.BookingUpdate) {
	l.buffer.Push(update)
	if l.onUpdate != nil {
		l.onUpdate(update)
	}
}

func (l *Listener) notify(ctx context.Context, scope models.BookingScope, toast models.Toast) {
	if l.notifier != nil {
		l.notifier.Notify(ctx, scope, toast)
	}
}
