package cache

import (
	"sync/atomic"
	"time"
)

// Metrics tracks cache performance statistics. Both backends share it so
// callers can read hit rates regardless of where entries live.
type Metrics struct {
	// Cache hit/miss counters
	cacheHits   atomic.Uint64
	cacheMisses atomic.Uint64
	cacheErrors atomic.Uint64

	// Operation counters
	getOperations    atomic.Uint64
	setOperations    atomic.Uint64
	deleteOperations atomic.Uint64

	// Timing metrics (in nanoseconds)
	totalGetLatency    atomic.Uint64
	totalSetLatency    atomic.Uint64
	totalDeleteLatency atomic.Uint64

	// Pattern invalidation
	invalidations   atomic.Uint64
	invalidatedKeys atomic.Uint64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) RecordHit() {
	m.cacheHits.Add(1)
}

func (m *Metrics) RecordMiss() {
	m.cacheMisses.Add(1)
}

func (m *Metrics) RecordError() {
	m.cacheErrors.Add(1)
}

// RecordGet records a get operation with latency
func (m *Metrics) RecordGet(duration time.Duration) {
	m.getOperations.Add(1)
	m.totalGetLatency.Add(uint64(duration.Nanoseconds()))
}

// RecordSet records a set operation with latency
func (m *Metrics) RecordSet(duration time.Duration) {
	m.setOperations.Add(1)
	m.totalSetLatency.Add(uint64(duration.Nanoseconds()))
}

// RecordDelete records a delete operation with latency
func (m *Metrics) RecordDelete(duration time.Duration) {
	m.deleteOperations.Add(1)
	m.totalDeleteLatency.Add(uint64(duration.Nanoseconds()))
}

// RecordInvalidation records one pattern deletion and how many keys it removed.
func (m *Metrics) RecordInvalidation(keys int) {
	m.invalidations.Add(1)
	if keys > 0 {
		m.invalidatedKeys.Add(uint64(keys))
	}
}

// Snapshot returns a point-in-time copy of the counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	hits := m.cacheHits.Load()
	misses := m.cacheMisses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	getOps := m.getOperations.Load()
	setOps := m.setOperations.Load()
	deleteOps := m.deleteOperations.Load()

	return MetricsSnapshot{
		Hits:             hits,
		Misses:           misses,
		Errors:           m.cacheErrors.Load(),
		HitRate:          hitRate,
		GetOperations:    getOps,
		SetOperations:    setOps,
		DeleteOperations: deleteOps,
		AvgGetLatency:    avgLatency(m.totalGetLatency.Load(), getOps),
		AvgSetLatency:    avgLatency(m.totalSetLatency.Load(), setOps),
		AvgDeleteLatency: avgLatency(m.totalDeleteLatency.Load(), deleteOps),
		Invalidations:    m.invalidations.Load(),
		InvalidatedKeys:  m.invalidatedKeys.Load(),
	}
}

func avgLatency(total, ops uint64) time.Duration {
	if ops == 0 {
		return 0
	}
	return time.Duration(total / ops)
}

// Reset resets all metrics counters
func (m *Metrics) Reset() {
	m.cacheHits.Store(0)
	m.cacheMisses.Store(0)
	m.cacheErrors.Store(0)
	m.getOperations.Store(0)
	m.setOperations.Store(0)
	m.deleteOperations.Store(0)
	m.totalGetLatency.Store(0)
	m.totalSetLatency.Store(0)
	m.totalDeleteLatency.Store(0)
	m.invalidations.Store(0)
	m.invalidatedKeys.Store(0)
}

// MetricsSnapshot represents a point-in-time snapshot of metrics
type MetricsSnapshot struct {
	Hits    uint64
	Misses  uint64
	Errors  uint64
	HitRate float64 // percentage

	GetOperations    uint64
	SetOperations    uint64
	DeleteOperations uint64

	AvgGetLatency    time.Duration
	AvgSetLatency    time.Duration
	AvgDeleteLatency time.Duration

	Invalidations   uint64
	InvalidatedKeys uint64
}
