package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// EventLedger remembers webhook event ids so redeliveries are acknowledged
// without being applied twice.
type EventLedger struct {
	client *redis.Client
	ttl    time.Duration
}

func NewEventLedger(client *redis.Client, ttl time.Duration) *EventLedger {
	if ttl <= 0 {
		ttl = WebhookEventTTL
	}
	return &EventLedger{client: client, ttl: ttl}
}

func ledgerKey(source, eventID string) string {
	return WebhookEventPrefix + source + ":" + eventID
}

// Claim marks the event as in-flight. It returns false when the event was
// already claimed by an earlier delivery.
func (l *EventLedger) Claim(ctx context.Context, source, eventID string) (bool, error) {
	ok, err := l.client.SetNX(ctx, ledgerKey(source, eventID), time.Now().Unix(), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim webhook event %s: %w", eventID, err)
	}
	return ok, nil
}

// Release forgets a claim so the vendor's retry can process the event again.
func (l *EventLedger) Release(ctx context.Context, source, eventID string) error {
	return l.client.Del(ctx, ledgerKey(source, eventID)).Err()
}
