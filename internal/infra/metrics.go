package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	feedEvents      atomic.Uint64
	historyLoads    atomic.Uint64
	staleDiscards   atomic.Uint64
	malformedLevels atomic.Uint64
	errorsTotal     atomic.Uint64

	// Latency tracking
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64

	// Gauges
	activeConnections atomic.Int32
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordFeedEvent records one processed feed push (tick or book snapshot).
func (m *Metrics) RecordFeedEvent() {
	m.feedEvents.Add(1)
}

// RecordHistoryLoad records one successfully applied historical load.
func (m *Metrics) RecordHistoryLoad() {
	m.historyLoads.Add(1)
}

// RecordStaleDiscard records a superseded async result dropped unapplied.
func (m *Metrics) RecordStaleDiscard() {
	m.staleDiscards.Add(1)
}

// RecordMalformedLevel records a book level excluded from projection.
func (m *Metrics) RecordMalformedLevel() {
	m.malformedLevels.Add(1)
}

// RecordError records an error occurrence.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// RecordLatency records one event-loop iteration latency.
func (m *Metrics) RecordLatency(latencyNs int64) {
	m.latencySumNs.Add(latencyNs)
	m.latencyCount.Add(1)
}

// SetActiveConnections sets the current active connection count.
func (m *Metrics) SetActiveConnections(count int32) {
	m.activeConnections.Store(count)
}

// IncrementConnections increments active connections by 1.
func (m *Metrics) IncrementConnections() {
	m.activeConnections.Add(1)
}

// DecrementConnections decrements active connections by 1.
func (m *Metrics) DecrementConnections() {
	m.activeConnections.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	FeedEvents        uint64
	HistoryLoads      uint64
	StaleDiscards     uint64
	MalformedLevels   uint64
	ErrorsTotal       uint64
	AvgLatencyNs      int64
	ActiveConnections int32
	Timestamp         time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		FeedEvents:        m.feedEvents.Load(),
		HistoryLoads:      m.historyLoads.Load(),
		StaleDiscards:     m.staleDiscards.Load(),
		MalformedLevels:   m.malformedLevels.Load(),
		ErrorsTotal:       m.errorsTotal.Load(),
		AvgLatencyNs:      avgLatency,
		ActiveConnections: m.activeConnections.Load(),
		Timestamp:         time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.feedEvents.Store(0)
	m.historyLoads.Store(0)
	m.staleDiscards.Store(0)
	m.malformedLevels.Store(0)
	m.errorsTotal.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
	m.activeConnections.Store(0)
}
