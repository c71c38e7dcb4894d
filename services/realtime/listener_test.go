package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bookinghub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type updateLog struct {
	mu      sync.Mutex
	updates []models.BookingUpdate
}

func (u *updateLog) add(up models.BookingUpdate) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.updates = append(u.updates, up)
}

func (u *updateLog) len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.updates)
}

func statusChange(id, from, to string) models.BookingChange {
	return models.BookingChange{
		Operation:     models.ChangeUpdate,
		Booking:       models.Booking{ID: id, Status: to},
		Before:        &models.Booking{ID: id, Status: from},
		StatusTouched: true,
	}
}

func TestListenerBuffersStatusTransitions(t *testing.T) {
	feed := &fakeFeed{}
	notifier := &recordingNotifier{}
	log := &updateLog{}
	l := NewListener(feed, notifier, log.add, zap.NewNop())
	defer l.Stop()

	l.Start(context.Background(), "cust-1", models.ListenerRoleCustomer)
	require.True(t, l.Connected())
	assert.Equal(t, models.BookingScope{UserID: "cust-1", Role: models.ListenerRoleCustomer}, feed.scopes[0])

	sub := feed.sub(0)
	sub.events <- statusChange("b1", "paid", "confirmed")
	sub.events <- statusChange("b1", "confirmed", "confirmed")
	sub.events <- models.BookingChange{Operation: models.ChangeUpdate, Booking: models.Booking{ID: "b1", Status: "confirmed"}}
	sub.events <- statusChange("b1", "confirmed", "cancelled")

	require.Eventually(t, func() bool { return len(notifier.all()) == 2 }, time.Second, 5*time.Millisecond)

	updates := l.Updates()
	require.Len(t, updates, 2)
	assert.Equal(t, "cancelled", updates[0].Status)
	assert.Equal(t, "confirmed", updates[0].PreviousStatus)

	toasts := notifier.all()
	require.Len(t, toasts, 2)
	assert.Equal(t, models.ToastDestructive, toasts[1].Variant)
}

func TestInsertToastOnlyForProviderAndBusiness(t *testing.T) {
	for _, tc := range []struct {
		role   models.ListenerRole
		toasts int
	}{
		{models.ListenerRoleCustomer, 0},
		{models.ListenerRoleAny, 0},
		{models.ListenerRoleProvider, 1},
		{models.ListenerRoleBusiness, 1},
	} {
		feed := &fakeFeed{}
		notifier := &recordingNotifier{}
		log := &updateLog{}
		l := NewListener(feed, notifier, log.add, zap.NewNop())

		l.Start(context.Background(), "id-1", tc.role)
		feed.sub(0).events <- models.BookingChange{Operation: models.ChangeInsert, Booking: models.Booking{ID: "b9", Status: "pending"}}
		require.Eventually(t, func() bool { return log.len() == 1 }, time.Second, 5*time.Millisecond)
		// Stop waits for the subscription goroutine, so any toast has landed.
		l.Stop()

		assert.Len(t, notifier.all(), tc.toasts, string(tc.role))
	}
}

func TestRestartWithNewScopeTearsDownOldSubscription(t *testing.T) {
	feed := &fakeFeed{}
	l := NewListener(feed, nil, nil, zap.NewNop())

	l.Start(context.Background(), "u1", models.ListenerRoleProvider)
	l.Start(context.Background(), "u1", models.ListenerRoleProvider)
	require.Len(t, feed.subs, 1)

	l.Start(context.Background(), "u1", models.ListenerRoleBusiness)
	require.Len(t, feed.subs, 2)

	select {
	case <-feed.sub(0).closed:
	default:
		t.Fatal("first subscription was not closed")
	}
	assert.True(t, l.Connected())

	l.Stop()
	assert.False(t, l.Connected())
	select {
	case <-feed.sub(1).closed:
	default:
		t.Fatal("second subscription was not closed")
	}
	l.Stop()
}

func TestSubscribeFailureIsSwallowed(t *testing.T) {
	l := NewListener(&fakeFeed{failOpen: true}, nil, nil, zap.NewNop())
	l.Start(context.Background(), "u1", models.ListenerRoleCustomer)
	assert.False(t, l.Connected())
	l.Stop()
}

func TestCancelledParentContextDisconnects(t *testing.T) {
	feed := &fakeFeed{}
	l := NewListener(feed, nil, nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	l.Start(ctx, "u1", models.ListenerRoleCustomer)
	require.True(t, l.Connected())
	cancel()

	require.Eventually(t, func() bool { return !l.Connected() }, time.Second, 5*time.Millisecond)
	l.Stop()
}

func TestRefreshReplacesBuffer(t *testing.T) {
	now := time.Now()
	feed := &fakeFeed{recent: []models.Booking{
		{ID: "r1", Status: "confirmed", UpdatedAt: now},
		{ID: "r2", Status: "pending", UpdatedAt: now.Add(-time.Minute)},
	}}
	log := &updateLog{}
	l := NewListener(feed, nil, log.add, zap.NewNop())
	defer l.Stop()

	l.Start(context.Background(), "u1", models.ListenerRoleCustomer)
	feed.sub(0).events <- statusChange("b1", "pending", "paid")
	require.Eventually(t, func() bool { return log.len() == 1 }, time.Second, 5*time.Millisecond)

	l.Refresh(context.Background())

	updates := l.Updates()
	require.Len(t, updates, 2)
	assert.Equal(t, "r1", updates[0].ID)
	assert.Equal(t, RefreshLimit, feed.lastLimit)
}

func TestAllBookingsListenerToastsEveryParty(t *testing.T) {
	feed := &fakeFeed{}
	notifier := &recordingNotifier{}
	l := NewListener(feed, notifier, nil, zap.NewNop())

	l.Start(context.Background(), "", models.ListenerRoleAny)
	require.True(t, l.Connected())

	change := statusChange("b1", "paid", "confirmed")
	change.Booking.CustomerID = "c1"
	change.Booking.ProviderID = "p1"
	change.Booking.BusinessID = "biz1"
	feed.sub(0).events <- change

	require.Eventually(t, func() bool { return len(notifier.all()) == 3 }, time.Second, 5*time.Millisecond)
	l.Stop()

	assert.Equal(t, []models.BookingScope{
		{UserID: "c1", Role: models.ListenerRoleCustomer},
		{UserID: "p1", Role: models.ListenerRoleProvider},
		{UserID: "biz1", Role: models.ListenerRoleBusiness},
	}, notifier.audiences())
	toasts := notifier.all()
	assert.Contains(t, toasts[0].Description, "Your")
	assert.NotContains(t, toasts[1].Description, "Your")
}

func TestRoleUnsetListenerFollowsOneUser(t *testing.T) {
	feed := &fakeFeed{}
	notifier := &recordingNotifier{}
	log := &updateLog{}
	l := NewListener(feed, notifier, log.add, zap.NewNop())

	scope := models.BookingScope{UserID: "acct1", Role: models.ListenerRoleAny, ProviderID: "prov1", BusinessID: "biz1"}
	l.StartScope(context.Background(), scope)
	require.True(t, l.Connected())
	assert.Equal(t, scope, feed.scopes[0])

	change := statusChange("b1", "paid", "confirmed")
	change.Booking.CustomerID = "someone-else"
	change.Booking.ProviderID = "prov1"
	change.Booking.BusinessID = "biz1"
	feed.sub(0).events <- change

	require.Eventually(t, func() bool { return log.len() == 1 }, time.Second, 5*time.Millisecond)
	l.Stop()

	assert.Equal(t, []models.BookingScope{{UserID: "prov1", Role: models.ListenerRoleProvider}}, notifier.audiences())
}

func TestDroppedSubscriptionCanBeReopened(t *testing.T) {
	feed := &fakeFeed{}
	l := NewListener(feed, nil, nil, zap.NewNop())
	defer l.Stop()

	l.Start(context.Background(), "", models.ListenerRoleAny)
	require.True(t, l.Connected())

	feed.sub(0).fail(errors.New("primary stepped down"))
	require.Eventually(t, func() bool { return !l.Connected() }, time.Second, 5*time.Millisecond)

	l.Start(context.Background(), "", models.ListenerRoleAny)
	assert.True(t, l.Connected())
	assert.Len(t, feed.scopes, 2)
}
