package utils

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
)

func TestHealthSnapshotIncludesChecks(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	up := true
	remove := RegisterHealthCheck("booking_fanout", func() bool { return up })
	defer remove()

	status := CheckHealth(context.Background(), []*redis.Client{client}, nil)
	assert.Equal(t, map[string]bool{"booking_fanout": true}, status.Components)

	up = false
	status = CheckHealth(context.Background(), []*redis.Client{client}, nil)
	assert.False(t, status.Components["booking_fanout"])
	assert.False(t, status.Healthy())

	remove()
	assert.Empty(t, CheckHealth(context.Background(), nil, nil).Components)
}

func TestHealthyNeedsEveryCheck(t *testing.T) {
	assert.True(t, HealthStatus{Mongo: true, Redis: []bool{true}, Components: map[string]bool{"booking_fanout": true}}.Healthy())
	assert.False(t, HealthStatus{Mongo: true, Redis: []bool{true}, Components: map[string]bool{"booking_fanout": false}}.Healthy())
	assert.False(t, HealthStatus{Mongo: true, Redis: []bool{true, false}}.Healthy())
}
