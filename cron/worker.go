package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bookinghub/config"
	"bookinghub/models"
	"bookinghub/services/notification"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// RedisOpt is the asynq connection for the push queue.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitPushWorker runs the push worker in the background. The returned
// server is shut down by the caller.
func InitPushWorker(ctx context.Context, notifSvc notification.NotificationService, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		RedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(notification.TypeBookingPush, handlePushTask(notifSvc, logger))

	go monitorRedisConnection(ctx, logger)

	go func() {
		logger.Info("[PushWorker] 🚀 Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil {
				return
			}
			logger.Error("[PushWorker] ❌ Failed to start worker",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("[PushWorker] ❗ Max retry attempts reached; pushes will not be delivered")
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(attempts*2) * time.Second):
			}
		}
	}()
	return srv
}

func handlePushTask(notifSvc notification.NotificationService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.PushPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("[PushHandler] 🔴 Invalid payload", zap.Error(err))
			return fmt.Errorf("invalid push payload: %v: %w", err, asynq.SkipRetry)
		}

		logger.Debug("[PushHandler] Delivering push",
			zap.String("role", string(p.Role)), zap.String("id", p.UserID), zap.String("bookingID", p.BookingID))

		if err := notifSvc.Deliver(ctx, p); err != nil {
			logger.Warn("[PushHandler] ❌ Failed to send notification", zap.Error(err))
			return err
		}
		return nil
	}
}

// monitorRedisConnection pings the queue database to surface outages.
func monitorRedisConnection(ctx context.Context, logger *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer client.Close()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("[PushWorker] ⚠️ Redis connection lost", zap.Error(err))
			}
		}
	}
}
