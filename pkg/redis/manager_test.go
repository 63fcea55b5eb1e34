package redis

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	disabled := DefaultConfig()
	disabled.Host = ""
	assert.NoError(t, disabled.Validate(), "disabled cache skips validation")

	enabled := DefaultConfig()
	enabled.Enabled = true
	assert.NoError(t, enabled.Validate())

	enabled.DefaultTTL = 0
	assert.ErrorContains(t, enabled.Validate(), "default_ttl")

	breaker := DefaultConfig()
	breaker.Enabled = true
	breaker.BreakerTimeout = 0
	assert.ErrorContains(t, breaker.Validate(), "breaker_timeout")

	cluster := DefaultConfig()
	cluster.Enabled = true
	cluster.Host = ""
	cluster.Cluster = ClusterConfig{Enabled: true, Addresses: []string{"a:7000", "b:7000"}}
	assert.NoError(t, cluster.Validate())
	assert.True(t, cluster.IsClusterMode())
}

func TestDisabledManager(t *testing.T) {
	m, err := NewManager(DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, m.Close()) })

	ctx := context.Background()
	assert.False(t, m.Enabled())
	assert.NoError(t, m.Ping(ctx))

	var out string
	assert.True(t, IsCacheDisabled(m.GetValue(ctx, "k", &out)))
	assert.True(t, IsCacheDisabled(m.SetValue(ctx, "k", "v")))
	assert.True(t, IsCacheDisabled(m.InvalidatePattern(ctx, "catalog4go:*")))
	assert.True(t, IsCacheDisabled(m.InvalidateEntityDependencies(ctx, "titles", "t1")))
}

func TestNilManagerIsDisabled(t *testing.T) {
	var m *Manager
	assert.False(t, m.Enabled())
}

func TestNewManager_NilConfig(t *testing.T) {
	_, err := NewManager(nil)
	assert.Error(t, err)
}

func TestDependencyKey(t *testing.T) {
	assert.Equal(t, "catalog4go:deps:actors:a1", DependencyKey("actors", "a1"))
}

func TestMetricsStats(t *testing.T) {
	m := NewMetrics()
	m.inc(opHit)
	m.inc(opHit)
	m.inc(opHit)
	m.inc(opMiss)
	m.observeRead(2 * time.Millisecond)
	m.observeRead(4 * time.Millisecond)

	s := m.Stats()
	assert.Equal(t, uint64(3), s.Hits)
	assert.InDelta(t, 75.0, s.HitRate, 0.001)
	assert.Equal(t, 3*time.Millisecond, s.AvgReadLatency)

	m.Reset()
	assert.Equal(t, Stats{}, m.Stats())
}

func TestMetricsCollector(t *testing.T) {
	m := NewMetrics()
	m.inc(opInvalidation)
	m.inc(opInvalidation)

	// one series per op plus the read time
	assert.Equal(t, int(numOps)+1, testutil.CollectAndCount(m))

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(m))
}

func newMiniredisManager(t *testing.T, failures uint32) (*Manager, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Host = mr.Host()
	cfg.Port = port
	cfg.DialTimeout = 100 * time.Millisecond
	cfg.BreakerFailures = failures
	cfg.BreakerTimeout = time.Hour

	m, err := NewManager(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m, mr
}

func TestManager_DependencyInvalidation(t *testing.T) {
	m, _ := newMiniredisManager(t, 0)
	ctx := t.Context()

	deps := map[string][]interface{}{"titles": {"t1"}}
	require.NoError(t, m.SetWithDependencies(ctx, "catalog4go:db:titles:find_by_id:t1", "heat", deps))

	var got string
	require.NoError(t, m.GetValue(ctx, "catalog4go:db:titles:find_by_id:t1", &got))
	assert.Equal(t, "heat", got)

	require.NoError(t, m.InvalidateEntityDependencies(ctx, "titles", "t1"))
	assert.True(t, IsKeyNotFound(m.GetValue(ctx, "catalog4go:db:titles:find_by_id:t1", &got)))

	s := m.Stats()
	assert.Equal(t, uint64(1), s.Hits)
	assert.Equal(t, uint64(1), s.Misses)
	assert.Equal(t, uint64(1), s.Invalidations)
}

func TestManager_InvalidatePattern(t *testing.T) {
	m, mr := newMiniredisManager(t, 0)
	ctx := t.Context()

	require.NoError(t, m.SetValue(ctx, "catalog4go:db:titles:a", 1))
	require.NoError(t, m.SetValue(ctx, "catalog4go:db:titles:b", 2))
	require.NoError(t, m.SetValue(ctx, "catalog4go:db:actors:a", 3))

	require.NoError(t, m.InvalidatePattern(ctx, "catalog4go:db:titles:*"))
	assert.Equal(t, []string{"catalog4go:db:actors:a"}, mr.Keys())
}

func TestManager_BreakerOpensOnOutage(t *testing.T) {
	m, mr := newMiniredisManager(t, 2)
	ctx := t.Context()

	var out string
	assert.True(t, IsKeyNotFound(m.GetValue(ctx, "missing", &out)), "misses do not count as failures")
	assert.Equal(t, "closed", m.BreakerState())

	mr.Close()
	for range 2 {
		err := m.GetValue(ctx, "k", &out)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCircuitOpen)
	}
	assert.Equal(t, "open", m.BreakerState())

	assert.ErrorIs(t, m.GetValue(ctx, "k", &out), ErrCircuitOpen)
	assert.ErrorIs(t, m.SetValue(ctx, "k", "v"), ErrCircuitOpen)
	assert.Equal(t, uint64(2), m.Stats().Rejected)
}

func TestBreakerDisabled(t *testing.T) {
	m, _ := newMiniredisManager(t, 0)
	assert.Equal(t, "disabled", m.BreakerState())

	var nilManager *Manager
	assert.Equal(t, "disabled", nilManager.BreakerState())
}
