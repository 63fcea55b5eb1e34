package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// Cache key constants for consistent key generation across the application
const (
	KeyPrefix             = "catalog4go"
	KeySeparator          = ":"
	cacheDependencyPrefix = "deps"
	scanBatchSize         = 100
)

// Manager manages Redis connections and cache operations
type Manager struct {
	config  *Config
	client  redis.UniversalClient
	breaker *gobreaker.CircuitBreaker[struct{}]
	metrics *Metrics
}

// NewManager creates a new Redis cache manager.
// The client connects lazily, so a manager can be built while Redis is still down.
func NewManager(config *Config) (*Manager, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid redis config: %w", err)
	}

	manager := &Manager{
		config:  config,
		metrics: NewMetrics(),
	}
	manager.initializeClient()
	if config.Enabled {
		manager.breaker = newBreaker(config)
	}

	return manager, nil
}

// initializeClient sets up the Redis client based on configuration
func (m *Manager) initializeClient() {
	if !m.config.Enabled {
		return
	}

	if m.config.IsClusterMode() {
		m.client = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:        m.config.Cluster.Addresses,
			Username:     m.config.Cluster.Username,
			Password:     m.config.Cluster.Password,
			PoolSize:     m.config.PoolSize,
			MinIdleConns: m.config.MinIdleConns,
			PoolTimeout:  m.config.PoolTimeout,
			ReadTimeout:  m.config.ReadTimeout,
			WriteTimeout: m.config.WriteTimeout,
			DialTimeout:  m.config.DialTimeout,
		})
		return
	}

	m.client = redis.NewClient(&redis.Options{
		Addr:         m.config.GetAddr(),
		Password:     m.config.Password,
		DB:           m.config.Database,
		PoolSize:     m.config.PoolSize,
		MinIdleConns: m.config.MinIdleConns,
		PoolTimeout:  m.config.PoolTimeout,
		ReadTimeout:  m.config.ReadTimeout,
		WriteTimeout: m.config.WriteTimeout,
		DialTimeout:  m.config.DialTimeout,
	})
}

// Config returns the manager's configuration
func (m *Manager) Config() *Config {
	return m.config
}

// Enabled reports whether the cache is switched on
func (m *Manager) Enabled() bool {
	return m != nil && m.config.Enabled
}

// Close closes the Redis connection
func (m *Manager) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}

// Ping tests the Redis connection. A disabled cache is not an error.
func (m *Manager) Ping(ctx context.Context) error {
	if !m.config.Enabled {
		return nil
	}
	if m.client == nil {
		return ErrClientNotInitialized
	}
	if err := m.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	return nil
}

// checkClient validates that cache is enabled and client is initialized
func (m *Manager) checkClient() error {
	if !m.config.Enabled {
		return ErrCacheDisabled
	}
	if m.client == nil {
		return ErrClientNotInitialized
	}
	return nil
}

// Get retrieves a raw value from cache
func (m *Manager) Get(ctx context.Context, key string) ([]byte, error) {
	if err := m.checkClient(); err != nil {
		return nil, err
	}

	var data []byte
	start := time.Now()
	err := m.guard(func() (err error) {
		data, err = m.client.Get(ctx, key).Bytes()
		return err
	})
	m.metrics.observeRead(time.Since(start))

	if errors.Is(err, redis.Nil) {
		m.metrics.inc(opMiss)
		return nil, ErrKeyNotFound
	}
	if err != nil {
		m.metrics.inc(opError)
		return nil, fmt.Errorf("redis get error: %w", err)
	}

	m.metrics.inc(opHit)
	return data, nil
}

// Set stores a raw value in cache with the default TTL
func (m *Manager) Set(ctx context.Context, key string, value []byte) error {
	if err := m.checkClient(); err != nil {
		return err
	}

	m.metrics.inc(opWrite)
	return m.guard(func() error {
		return m.client.Set(ctx, key, value, m.config.DefaultTTL).Err()
	})
}

// GetValue retrieves a msgpack-encoded value and decodes it into target
func (m *Manager) GetValue(ctx context.Context, key string, target interface{}) error {
	data, err := m.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := msgpack.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return nil
}

// SetValue msgpack-encodes value and stores it with the default TTL
func (m *Manager) SetValue(ctx context.Context, key string, value interface{}) error {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return m.Set(ctx, key, data)
}

// DeleteKeys removes keys from cache
func (m *Manager) DeleteKeys(ctx context.Context, keys ...string) error {
	if err := m.checkClient(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	m.metrics.inc(opDelete)
	return m.guard(func() error {
		return m.client.Del(ctx, keys...).Err()
	})
}

// InvalidatePattern removes keys matching a pattern using SCAN instead of KEYS
func (m *Manager) InvalidatePattern(ctx context.Context, pattern string) error {
	if err := m.checkClient(); err != nil {
		return err
	}
	return m.guard(func() error {
		return m.scanAndDelete(ctx, pattern)
	})
}

func (m *Manager) scanAndDelete(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		batch, next, err := m.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("failed to scan keys with pattern %s: %w", pattern, err)
		}

		if len(batch) > 0 {
			if err := m.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("failed to delete batch: %w", err)
			}
			m.metrics.inc(opInvalidation)
		}

		// cursor == 0 means we've iterated through all keys
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// DependencyKey returns the set key that indexes cache entries depending on an entity
func DependencyKey(entityType string, entityID interface{}) string {
	return fmt.Sprintf("%s%s%s%s%s%s%v", KeyPrefix, KeySeparator, cacheDependencyPrefix, KeySeparator, entityType, KeySeparator, entityID)
}

// SetWithDependencies stores a msgpack value and registers it under each entity's dependency set
func (m *Manager) SetWithDependencies(ctx context.Context, cacheKey string, value interface{}, dependencies map[string][]interface{}) error {
	if err := m.checkClient(); err != nil {
		return err
	}

	data, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}

	pipe := m.client.Pipeline()
	pipe.Set(ctx, cacheKey, data, m.config.DefaultTTL)
	for entityType, ids := range dependencies {
		for _, entityID := range ids {
			dependencyKey := DependencyKey(entityType, entityID)
			pipe.SAdd(ctx, dependencyKey, cacheKey)
			// outlive the entries it indexes
			pipe.Expire(ctx, dependencyKey, m.config.DefaultTTL*2)
			m.metrics.inc(opDependency)
		}
	}

	m.metrics.inc(opWrite)
	return m.guard(func() error {
		_, err := pipe.Exec(ctx)
		return err
	})
}

// InvalidateEntityDependencies clears all caches that depend on a specific entity
func (m *Manager) InvalidateEntityDependencies(ctx context.Context, entityType string, entityID interface{}) error {
	if err := m.checkClient(); err != nil {
		return err
	}

	dependencyKey := DependencyKey(entityType, entityID)
	err := m.guard(func() error {
		dependentKeys, err := m.client.SMembers(ctx, dependencyKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("failed to get dependencies: %w", err)
		}

		keys := append(dependentKeys, dependencyKey)
		if err := m.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete dependent keys: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.metrics.inc(opInvalidation)
	return nil
}

// Stats returns the cache counters of this manager
func (m *Manager) Stats() Stats {
	if m == nil || m.metrics == nil {
		return Stats{}
	}
	return m.metrics.Stats()
}

// Metrics exposes the counters for registration with a Prometheus registry
func (m *Manager) Metrics() *Metrics {
	return m.metrics
}
