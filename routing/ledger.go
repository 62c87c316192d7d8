package routing

import (
	"sync"
	"time"
)

// PerformanceRecord holds per-provider running counters. Failed attempts
// count toward the total only; cancelled attempts count toward neither
// total nor successes so they cannot skew the success rate.
type PerformanceRecord struct {
	TotalRequests      int64         `json:"total_requests"`
	SuccessfulRequests int64         `json:"successful_requests"`
	CancelledRequests  int64         `json:"cancelled_requests"`
	TotalLatency       time.Duration `json:"total_latency"`
}

// AverageLatency returns the mean latency of successful requests
func (r PerformanceRecord) AverageLatency() time.Duration {
	if r.SuccessfulRequests == 0 {
		return 0
	}
	return r.TotalLatency / time.Duration(r.SuccessfulRequests)
}

// SuccessRate returns successful/total, or 0 with no history
func (r PerformanceRecord) SuccessRate() float64 {
	if r.TotalRequests == 0 {
		return 0
	}
	return float64(r.SuccessfulRequests) / float64(r.TotalRequests)
}

// Ledger tracks live per-provider performance counters. Entries are created
// lazily on first use and mutated in place; they are never persisted across
// restarts. A single lock covers the whole ledger since provider cardinality
// is small and updates are short read-modify-write sequences. The lock is
// never held across a provider call.
type Ledger struct {
	mu      sync.Mutex
	records map[string]*PerformanceRecord
}

// NewLedger creates an empty performance ledger
func NewLedger() *Ledger {
	return &Ledger{records: make(map[string]*PerformanceRecord)}
}

func (l *Ledger) record(provider string) *PerformanceRecord {
	rec, ok := l.records[provider]
	if !ok {
		rec = &PerformanceRecord{}
		l.records[provider] = rec
	}
	return rec
}

// RecordSuccess counts a successful call and its latency
func (l *Ledger) RecordSuccess(provider string, latency time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec := l.record(provider)
	rec.TotalRequests++
	rec.SuccessfulRequests++
	rec.TotalLatency += latency
}

// RecordFailure counts a failed call. Failed latency is not counted
// toward the average.
func (l *Ledger) RecordFailure(provider string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.record(provider).TotalRequests++
}

// RecordCancellation counts a caller-cancelled call separately from
// successes and failures.
func (l *Ledger) RecordCancellation(provider string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.record(provider).CancelledRequests++
}

// Record returns a snapshot of one provider's counters. The second return
// value is false when the provider has no history yet.
func (l *Ledger) Record(provider string) (PerformanceRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[provider]
	if !ok {
		return PerformanceRecord{}, false
	}
	return *rec, true
}

// Snapshot returns a copy of all counters keyed by provider name
func (l *Ledger) Snapshot() map[string]PerformanceRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]PerformanceRecord, len(l.records))
	for name, rec := range l.records {
		out[name] = *rec
	}
	return out
}

// Reset clears all counters. This is the only way records are ever reset.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = make(map[string]*PerformanceRecord)
}

// ProviderStats is the externally visible statistics view for one provider
type ProviderStats struct {
	TotalRequests      int64   `json:"total_requests"`
	SuccessfulRequests int64   `json:"successful_requests"`
	SuccessRatePercent float64 `json:"success_rate_percent"`
	AverageLatencyMs   int64   `json:"average_latency_ms"`
	CancelledRequests  int64   `json:"cancelled_requests"`
}

// Stats converts the ledger into the observability snapshot exposed to
// external telemetry collaborators.
func (l *Ledger) Stats() map[string]ProviderStats {
	snapshot := l.Snapshot()
	out := make(map[string]ProviderStats, len(snapshot))
	for name, rec := range snapshot {
		out[name] = ProviderStats{
			TotalRequests:      rec.TotalRequests,
			SuccessfulRequests: rec.SuccessfulRequests,
			SuccessRatePercent: rec.SuccessRate() * 100,
			AverageLatencyMs:   rec.AverageLatency().Milliseconds(),
			CancelledRequests:  rec.CancelledRequests,
		}
	}
	return out
}
