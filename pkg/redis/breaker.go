package redis

import (
	"errors"
	"fmt"

	"github.com/ammar0144/catalog4go/pkg/logging"

	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"
)

const breakerName = "redis-cache"

// newBreaker trips after cfg.BreakerFailures consecutive failures and retries Redis
// after cfg.BreakerTimeout. A cache miss counts as success.
func newBreaker(cfg *Config) *gobreaker.CircuitBreaker[struct{}] {
	if cfg.BreakerFailures == 0 {
		return nil
	}

	log := logging.WithComponent("redis")
	return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("cache circuit breaker state change")
		},
	})
}

// guard runs fn through the breaker. Rejected calls never reach Redis and
// return ErrCircuitOpen.
func (m *Manager) guard(fn func() error) error {
	if m.breaker == nil {
		return fn()
	}

	_, err := m.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		m.metrics.inc(opRejected)
		return fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	return err
}

// BreakerState reports the breaker state, "disabled" when none is configured
func (m *Manager) BreakerState() string {
	if m == nil || m.breaker == nil {
		return "disabled"
	}
	return m.breaker.State().String()
}
