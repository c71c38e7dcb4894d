package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"bookinghub/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TypeBookingPush is the asynq task carrying a booking toast to push.
const TypeBookingPush = "booking:push"

// NotificationService delivers queued pushes.
type NotificationService interface {
	Deliver(ctx context.Context, p models.PushPayload) error
}

type DefaultNotificationService struct {
	tokens *TokenResolver
	pusher Pusher
	logger *zap.Logger
}

func NewDefaultNotificationService(tokens *TokenResolver, pusher Pusher, logger *zap.Logger) *DefaultNotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultNotificationService{tokens: tokens, pusher: pusher, logger: logger}
}

// Deliver pushes to every device in the payload's audience. It fails only
// when no device could be reached, so asynq retries partial outages.
func (s *DefaultNotificationService) Deliver(ctx context.Context, p models.PushPayload) error {
	tokens, err := s.tokens.Resolve(ctx, p.Role, p.UserID)
	if err != nil {
		return fmt.Errorf("Deliver: resolve tokens: %w", err)
	}
	if len(tokens) == 0 {
		s.logger.Debug("No device registered for push", zap.String("role", string(p.Role)), zap.String("id", p.UserID))
		return nil
	}

	data := map[string]string{"role": string(p.Role)}
	for k, v := range p.Data {
		data[k] = v
	}
	if p.BookingID != "" {
		data["bookingId"] = p.BookingID
	}

	var lastErr error
	sent := 0
	for _, token := range tokens {
		if err := s.pusher.Send(ctx, token, p.Title, p.Body, data); err != nil {
			lastErr = err
			s.logger.Warn("Push failed", zap.String("id", p.UserID), zap.Error(err))
			continue
		}
		sent++
	}
	if sent == 0 {
		return lastErr
	}
	return nil
}

// NewBookingPushTask encodes a toast as a push task.
func NewBookingPushTask(scope models.BookingScope, toast models.Toast) (*asynq.Task, error) {
	payload, err := json.Marshal(models.PushPayload{
		Role:      scope.Role,
		UserID:    scope.UserID,
		Title:     toast.Title,
		Body:      toast.Description,
		Data:      map[string]string{"status": toast.Status, "variant": toast.Variant},
		BookingID: toast.BookingID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeBookingPush, payload, asynq.MaxRetry(5)), nil
}

// TaskEnqueuer is the part of asynq.Client the enqueuer needs.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// PushEnqueuer queues a push for every toast a booking listener raises.
type PushEnqueuer struct {
	queue  TaskEnqueuer
	logger *zap.Logger
}

func NewPushEnqueuer(queue TaskEnqueuer, logger *zap.Logger) *PushEnqueuer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PushEnqueuer{queue: queue, logger: logger}
}

// Notify enqueues the push. Queue failures are logged; the in-app toast has
// already been shown.
func (e *PushEnqueuer) Notify(ctx context.Context, scope models.BookingScope, toast models.Toast) {
	task, err := NewBookingPushTask(scope, toast)
	if err != nil {
		e.logger.Error("Failed to encode push task", zap.Error(err))
		return
	}
	if _, err := e.queue.EnqueueContext(ctx, task); err != nil {
		e.logger.Error("Failed to enqueue push", zap.String("bookingID", toast.BookingID), zap.Error(err))
	}
}
