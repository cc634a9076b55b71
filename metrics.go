package tokenguard

import "sync/atomic"

// MetricID identifies one lifecycle counter.
type MetricID uint16

const (
	// MetricIssueSuccess counts successfully minted token pairs.
	MetricIssueSuccess MetricID = iota
	// MetricIssueFailure counts failed issuance attempts.
	MetricIssueFailure
	// MetricVerifySuccess counts tokens that passed verification.
	MetricVerifySuccess
	// MetricVerifyFailure counts tokens rejected for validity reasons.
	MetricVerifyFailure
	// MetricVerifyRevoked counts tokens rejected because their jti or
	// family was blacklisted.
	MetricVerifyRevoked
	// MetricRefreshSuccess counts successful rotations.
	MetricRefreshSuccess
	// MetricRefreshFailure counts refresh attempts rejected for validity
	// or store reasons.
	MetricRefreshFailure
	// MetricReplayDetected counts presentations of already-consumed
	// refresh tokens.
	MetricReplayDetected
	// MetricFamilyRevoked counts whole-family revocations.
	MetricFamilyRevoked
	// MetricRevokeSuccess counts completed logouts.
	MetricRevokeSuccess
	// MetricRevokeFailure counts rejected logout attempts.
	MetricRevokeFailure
	// MetricStoreUnavailable counts blacklist backend failures.
	MetricStoreUnavailable
	// MetricBlacklistCollected counts blacklist entries garbage-collected
	// past their natural expiry.
	MetricBlacklistCollected
	metricIDCount
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is a fixed-size set of lock-free counters. A disabled Metrics is
// a no-op on every method, so call sites never branch.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics creates a Metrics set honoring cfg.Enabled.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Enabled reports whether counters are being recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc adds one to the counter identified by id.
func (m *Metrics) Inc(id MetricID) {
	m.Add(id, 1)
}

// Add adds n to the counter identified by id.
func (m *Metrics) Add(id MetricID, n uint64) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, n)
}

// Value returns the current value of one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters. The copy is not atomic across counters;
// individual values are.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Counters: make(map[MetricID]uint64, metricIDCount),
	}
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snap.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return snap
}
