// infrastructure/redis/healthcheck.go
package redis

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sony/gobreaker"
)

// HealthChecker monitors Redis connection health. The circuit breaker
// keeps a flapping Redis from being hammered with probes while down.
type HealthChecker struct {
	client         redis.UniversalClient
	circuitBreaker *gobreaker.CircuitBreaker
	status         bool
	mu             sync.RWMutex
	checkInterval  time.Duration
}

// NewHealthChecker creates a new Redis health checker and starts its
// periodic probe loop. The loop stops when ctx is done.
func NewHealthChecker(ctx context.Context, client redis.UniversalClient, checkInterval time.Duration) *HealthChecker {
	settings := gobreaker.Settings{
		Name:        "redis-circuit-breaker",
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool { return counts.ConsecutiveFailures >= 3 },
	}

	checker := &HealthChecker{
		client:         client,
		circuitBreaker: gobreaker.NewCircuitBreaker(settings),
		checkInterval:  checkInterval,
	}

	go checker.startPeriodicChecks(ctx)

	return checker
}

// IsHealthy returns current Redis connection health status
func (h *HealthChecker) IsHealthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}

// Check performs a health check and returns the result
func (h *HealthChecker) Check(ctx context.Context) bool {
	result, err := h.circuitBreaker.Execute(func() (interface{}, error) {
		return h.client.Ping(ctx).Result()
	})

	isHealthy := err == nil && result.(string) == "PONG"

	h.mu.Lock()
	h.status = isHealthy
	h.mu.Unlock()

	return isHealthy
}

func (h *HealthChecker) startPeriodicChecks(ctx context.Context) {
	ticker := time.NewTicker(h.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			h.Check(checkCtx)
			cancel()
		}
	}
}
