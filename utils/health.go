package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Mongo      bool            `json:"mongo"`
	Redis      []bool          `json:"redis"`
	Components map[string]bool `json:"components,omitempty"`
	CheckedAt  time.Time       `json:"checkedAt"`
}

// Healthy reports whether every dependency and component is up.
func (s HealthStatus) Healthy() bool {
	healthy := s.Mongo
	for _, ok := range s.Redis {
		healthy = healthy && ok
	}
	for _, ok := range s.Components {
		healthy = healthy && ok
	}
	return healthy
}

var (
	currentHealth HealthStatus
	mu            sync.RWMutex

	checks   = map[string]func() bool{}
	checksMu sync.Mutex
)

// RegisterHealthCheck adds a named in-process check, such as a background
// listener, to every snapshot. The returned func removes it.
func RegisterHealthCheck(name string, check func() bool) func() {
	checksMu.Lock()
	checks[name] = check
	checksMu.Unlock()
	return func() {
		checksMu.Lock()
		delete(checks, name)
		checksMu.Unlock()
	}
}

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	return currentHealth
}

// CheckHealth pings every dependency once and stores the snapshot.
func CheckHealth(ctx context.Context, redisClients []*redis.Client, mongoClient *mongo.Client) HealthStatus {
	var redisHealth []bool
	for _, client := range redisClients {
		redisHealth = append(redisHealth, client.Ping(ctx).Err() == nil)
	}
	mongoHealthy := mongoClient != nil && mongoClient.Ping(ctx, nil) == nil

	var components map[string]bool
	checksMu.Lock()
	for name, check := range checks {
		if components == nil {
			components = make(map[string]bool, len(checks))
		}
		components[name] = check()
	}
	checksMu.Unlock()

	status := HealthStatus{
		Mongo:      mongoHealthy,
		Redis:      redisHealth,
		Components: components,
		CheckedAt:  time.Now(),
	}
	mu.Lock()
	currentHealth = status
	mu.Unlock()
	return status
}

// StartHealthMonitor performs periodic health checks until ctx is cancelled.
func StartHealthMonitor(ctx context.Context, redisClients []*redis.Client, mongoClient *mongo.Client) {
	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()

		CheckHealth(ctx, redisClients, mongoClient)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				CheckHealth(ctx, redisClients, mongoClient)
			}
		}
	}()
}
