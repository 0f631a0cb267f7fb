package input

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// defaultLatencySamples is the size of the evaluation latency ring.
const defaultLatencySamples = 1000

// Metrics tracks engine activity. It is safe for concurrent use so that
// it can be read while a Loop drives the Context.
type Metrics struct {
	// Event counters
	keyEventsTotal   atomic.Uint64
	evaluationsTotal atomic.Uint64
	firesTotal       atomic.Uint64
	suppressedKeys   atomic.Uint64
	recoveredPanics  atomic.Uint64
	droppedEvents    atomic.Uint64

	// Latency tracking
	mu                sync.RWMutex
	evalLatencies     []time.Duration
	maxLatencySamples int
	latencyIdx        int

	// Peak latency (all time)
	peakEvalLatency atomic.Int64

	// Start time for uptime calculation
	startTime time.Time

	enabled atomic.Bool
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{
		evalLatencies:     make([]time.Duration, defaultLatencySamples),
		maxLatencySamples: defaultLatencySamples,
		startTime:         time.Now(),
	}
	m.enabled.Store(true)
	return m
}

// SetEnabled enables or disables metrics collection.
func (m *Metrics) SetEnabled(enabled bool) {
	m.enabled.Store(enabled)
}

// IsEnabled returns whether metrics collection is enabled.
func (m *Metrics) IsEnabled() bool {
	return m.enabled.Load()
}

// RecordKeyEvent records a raw event handled by a Loop.
func (m *Metrics) RecordKeyEvent() {
	if !m.enabled.Load() {
		return
	}
	m.keyEventsTotal.Add(1)
}

// RecordEvaluation records an evaluation pass with its duration.
func (m *Metrics) RecordEvaluation(latency time.Duration) {
	if !m.enabled.Load() {
		return
	}

	m.evaluationsTotal.Add(1)

	latencyNs := latency.Nanoseconds()
	for {
		current := m.peakEvalLatency.Load()
		if latencyNs <= current {
			break
		}
		if m.peakEvalLatency.CompareAndSwap(current, latencyNs) {
			break
		}
	}

	m.mu.Lock()
	m.evalLatencies[m.latencyIdx] = latency
	m.latencyIdx = (m.latencyIdx + 1) % m.maxLatencySamples
	m.mu.Unlock()
}

// RecordFire records a binding firing.
func (m *Metrics) RecordFire() {
	if !m.enabled.Load() {
		return
	}
	m.firesTotal.Add(1)
}

// RecordSuppressions records keys reported for default suppression.
func (m *Metrics) RecordSuppressions(n int) {
	if !m.enabled.Load() || n <= 0 {
		return
	}
	m.suppressedKeys.Add(uint64(n))
}

// RecordRecoveredPanic records a callback panic that was recovered.
func (m *Metrics) RecordRecoveredPanic() {
	if !m.enabled.Load() {
		return
	}
	m.recoveredPanics.Add(1)
}

// RecordDroppedEvent records an event a Loop could not accept.
func (m *Metrics) RecordDroppedEvent() {
	if !m.enabled.Load() {
		return
	}
	m.droppedEvents.Add(1)
}

// MetricsSnapshot holds a point-in-time view of metrics.
type MetricsSnapshot struct {
	// Counters
	KeyEventsTotal   uint64
	EvaluationsTotal uint64
	FiresTotal       uint64
	SuppressedKeys   uint64
	RecoveredPanics  uint64
	DroppedEvents    uint64

	// Latency stats
	AvgEvalLatency  time.Duration
	MaxEvalLatency  time.Duration
	P99EvalLatency  time.Duration
	PeakEvalLatency time.Duration

	// Rates
	EventsPerSecond float64

	// Uptime
	Uptime time.Duration
}

// Snapshot returns a point-in-time view of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	latencies := slices.Clone(m.evalLatencies)
	start := m.startTime
	m.mu.RUnlock()

	keyCount := m.keyEventsTotal.Load()
	uptime := time.Since(start)

	snap := MetricsSnapshot{
		KeyEventsTotal:   keyCount,
		EvaluationsTotal: m.evaluationsTotal.Load(),
		FiresTotal:       m.firesTotal.Load(),
		SuppressedKeys:   m.suppressedKeys.Load(),
		RecoveredPanics:  m.recoveredPanics.Load(),
		DroppedEvents:    m.droppedEvents.Load(),
		PeakEvalLatency:  time.Duration(m.peakEvalLatency.Load()),
		Uptime:           uptime,
	}

	if uptime > 0 {
		snap.EventsPerSecond = float64(keyCount) / uptime.Seconds()
	}

	snap.AvgEvalLatency, snap.MaxEvalLatency, snap.P99EvalLatency = calculateLatencyStats(latencies)
	return snap
}

// calculateLatencyStats computes average, max, and p99 from a slice of latencies.
func calculateLatencyStats(latencies []time.Duration) (avg, maxLat, p99 time.Duration) {
	valid := make([]time.Duration, 0, len(latencies))
	for _, l := range latencies {
		if l > 0 {
			valid = append(valid, l)
		}
	}

	if len(valid) == 0 {
		return 0, 0, 0
	}

	var sum time.Duration
	for _, l := range valid {
		sum += l
	}
	avg = sum / time.Duration(len(valid))

	slices.Sort(valid)
	maxLat = valid[len(valid)-1]

	idx := int(float64(len(valid)) * 0.99)
	if idx >= len(valid) {
		idx = len(valid) - 1
	}
	p99 = valid[idx]

	return avg, maxLat, p99
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.keyEventsTotal.Store(0)
	m.evaluationsTotal.Store(0)
	m.firesTotal.Store(0)
	m.suppressedKeys.Store(0)
	m.recoveredPanics.Store(0)
	m.droppedEvents.Store(0)
	m.peakEvalLatency.Store(0)

	m.mu.Lock()
	m.evalLatencies = make([]time.Duration, m.maxLatencySamples)
	m.latencyIdx = 0
	m.startTime = time.Now()
	m.mu.Unlock()
}

// EvaluationsTotal returns the number of evaluation passes.
func (m *Metrics) EvaluationsTotal() uint64 {
	return m.evaluationsTotal.Load()
}

// FiresTotal returns the number of binding fires.
func (m *Metrics) FiresTotal() uint64 {
	return m.firesTotal.Load()
}

// RecoveredPanics returns the number of recovered callback panics.
func (m *Metrics) RecoveredPanics() uint64 {
	return m.recoveredPanics.Load()
}

// DroppedEvents returns the number of dropped events.
func (m *Metrics) DroppedEvents() uint64 {
	return m.droppedEvents.Load()
}

// HealthStatus represents the current health status of the engine.
type HealthStatus struct {
	Healthy          bool
	DroppedEvents    uint64
	RecoveredPanics  uint64
	PeakLatency      time.Duration
	LatencyThreshold time.Duration
	Message          string
}

// HealthCheck returns the current health status.
func (m *Metrics) HealthCheck(latencyThreshold time.Duration) HealthStatus {
	status := HealthStatus{
		Healthy:          true,
		DroppedEvents:    m.droppedEvents.Load(),
		RecoveredPanics:  m.recoveredPanics.Load(),
		PeakLatency:      time.Duration(m.peakEvalLatency.Load()),
		LatencyThreshold: latencyThreshold,
	}

	switch {
	case status.DroppedEvents > 0:
		status.Healthy = false
		status.Message = "dropped events detected"
	case status.RecoveredPanics > 0:
		status.Healthy = false
		status.Message = "callback panics recovered"
	case status.PeakLatency > latencyThreshold:
		status.Healthy = false
		status.Message = "latency threshold exceeded"
	default:
		status.Message = "healthy"
	}

	return status
}

// Timer helps measure evaluation duration.
type Timer struct {
	start   time.Time
	metrics *Metrics
}

// StartEvaluationTimer starts a timer for an evaluation pass.
func (m *Metrics) StartEvaluationTimer() *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: m,
	}
}

// Stop stops the timer and records the evaluation latency.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	t.metrics.RecordEvaluation(elapsed)
	return elapsed
}
