package cron

import (
	"context"
	"time"

	"bookinghub/models"

	"go.uber.org/zap"
)

// ListenerCheckInterval is how often the fan-out listener is checked.
const ListenerCheckInterval = 5 * time.Second

const listenerMaxBackoff = time.Minute

// ScopedListener is the part of realtime.Listener the supervisor drives.
type ScopedListener interface {
	StartScope(ctx context.Context, scope models.BookingScope)
	Connected() bool
}

// SuperviseListener starts l on scope and resubscribes whenever the change
// stream drops, backing off up to a minute between failed attempts. It blocks
// until ctx is cancelled.
func SuperviseListener(ctx context.Context, l ScopedListener, scope models.BookingScope, interval time.Duration, logger *zap.Logger) {
	backoff := interval
	started := false
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if l.Connected() {
			backoff = interval
			timer.Reset(interval)
			continue
		}
		if started {
			logger.Warn("[Fanout] ⚠️ Booking listener down, resubscribing", zap.Duration("backoff", backoff))
		}
		started = true

		l.StartScope(ctx, scope)
		if l.Connected() {
			logger.Info("[Fanout] ✅ Booking listener subscribed")
			backoff = interval
			timer.Reset(interval)
			continue
		}
		timer.Reset(backoff)
		if backoff *= 2; backoff > listenerMaxBackoff {
			backoff = listenerMaxBackoff
		}
	}
}
