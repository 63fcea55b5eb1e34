package redis

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// op identifies one cache counter
type op int

const (
	opHit op = iota
	opMiss
	opError
	opWrite
	opDelete
	opInvalidation
	opDependency
	opRejected
	numOps
)

var opLabels = [numOps]string{"hit", "miss", "error", "write", "delete", "invalidation", "dependency", "rejected"}

var (
	cacheOpsDesc = prometheus.NewDesc(
		"catalog4go_cache_operations_total",
		"Cache operations by kind",
		[]string{"op"}, nil,
	)
	cacheReadDesc = prometheus.NewDesc(
		"catalog4go_cache_read_seconds_total",
		"Time spent reading from the cache",
		nil, nil,
	)
)

// Metrics counts cache traffic of one Manager. It is a prometheus.Collector.
type Metrics struct {
	counts    [numOps]atomic.Uint64
	reads     atomic.Uint64
	readNanos atomic.Uint64
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) inc(o op) {
	m.counts[o].Add(1)
}

// observeRead records one GET round-trip
func (m *Metrics) observeRead(d time.Duration) {
	m.reads.Add(1)
	m.readNanos.Add(uint64(d.Nanoseconds()))
}

// Describe implements prometheus.Collector
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- cacheOpsDesc
	ch <- cacheReadDesc
}

// Collect implements prometheus.Collector
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	for o := op(0); o < numOps; o++ {
		ch <- prometheus.MustNewConstMetric(cacheOpsDesc, prometheus.CounterValue, float64(m.counts[o].Load()), opLabels[o])
	}
	ch <- prometheus.MustNewConstMetric(cacheReadDesc, prometheus.CounterValue, time.Duration(m.readNanos.Load()).Seconds())
}

// Stats is a point-in-time copy of the counters
type Stats struct {
	Hits          uint64
	Misses        uint64
	Errors        uint64
	Writes        uint64
	Deletes       uint64
	Invalidations uint64
	Dependencies  uint64
	Rejected      uint64 // calls refused while the breaker was open

	HitRate        float64 // percent of lookups served from cache
	AvgReadLatency time.Duration
}

// Stats returns the current counters
func (m *Metrics) Stats() Stats {
	s := Stats{
		Hits:          m.counts[opHit].Load(),
		Misses:        m.counts[opMiss].Load(),
		Errors:        m.counts[opError].Load(),
		Writes:        m.counts[opWrite].Load(),
		Deletes:       m.counts[opDelete].Load(),
		Invalidations: m.counts[opInvalidation].Load(),
		Dependencies:  m.counts[opDependency].Load(),
		Rejected:      m.counts[opRejected].Load(),
	}
	if lookups := s.Hits + s.Misses; lookups > 0 {
		s.HitRate = float64(s.Hits) / float64(lookups) * 100
	}
	if reads := m.reads.Load(); reads > 0 {
		s.AvgReadLatency = time.Duration(m.readNanos.Load() / reads)
	}
	return s
}

// Reset zeroes every counter
func (m *Metrics) Reset() {
	for o := range m.counts {
		m.counts[o].Store(0)
	}
	m.reads.Store(0)
	m.readNanos.Store(0)
}
