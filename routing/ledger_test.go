package routing

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerMixedOutcomes(t *testing.T) {
	l := NewLedger()
	l.RecordSuccess("ollama", 100*time.Millisecond)
	l.RecordFailure("ollama")

	rec, ok := l.Record("ollama")
	require.True(t, ok)
	assert.Equal(t, int64(2), rec.TotalRequests)
	assert.Equal(t, int64(1), rec.SuccessfulRequests)
	assert.Equal(t, 100*time.Millisecond, rec.AverageLatency())
	assert.Equal(t, 0.5, rec.SuccessRate())
}

func TestLedgerNoHistory(t *testing.T) {
	l := NewLedger()

	rec, ok := l.Record("unknown")
	assert.False(t, ok)
	assert.Zero(t, rec.TotalRequests)
	assert.Zero(t, rec.AverageLatency())
	assert.Zero(t, rec.SuccessRate())
}

func TestLedgerFailedLatencyNotCounted(t *testing.T) {
	l := NewLedger()
	l.RecordSuccess("p", 200*time.Millisecond)
	l.RecordSuccess("p", 400*time.Millisecond)
	l.RecordFailure("p")

	rec, ok := l.Record("p")
	require.True(t, ok)
	// Average is over successful requests only
	assert.Equal(t, 300*time.Millisecond, rec.AverageLatency())
}

func TestLedgerCancellationCountsNeither(t *testing.T) {
	l := NewLedger()
	l.RecordCancellation("p")
	l.RecordCancellation("p")

	rec, ok := l.Record("p")
	require.True(t, ok)
	assert.Equal(t, int64(0), rec.TotalRequests)
	assert.Equal(t, int64(0), rec.SuccessfulRequests)
	assert.Equal(t, int64(2), rec.CancelledRequests)
	assert.Zero(t, rec.SuccessRate())
}

func TestLedgerAverageLatencyWithoutSuccesses(t *testing.T) {
	l := NewLedger()
	l.RecordFailure("p")

	rec, ok := l.Record("p")
	require.True(t, ok)
	assert.Zero(t, rec.AverageLatency())
}

func TestLedgerReset(t *testing.T) {
	l := NewLedger()
	l.RecordSuccess("p", time.Millisecond)
	l.Reset()

	_, ok := l.Record("p")
	assert.False(t, ok)
	assert.Empty(t, l.Snapshot())
}

func TestLedgerSnapshotIsACopy(t *testing.T) {
	l := NewLedger()
	l.RecordSuccess("p", time.Millisecond)

	snap := l.Snapshot()
	entry := snap["p"]
	entry.TotalRequests = 99
	snap["p"] = entry

	rec, ok := l.Record("p")
	require.True(t, ok)
	assert.Equal(t, int64(1), rec.TotalRequests)
}

func TestLedgerStats(t *testing.T) {
	l := NewLedger()
	l.RecordSuccess("p", 250*time.Millisecond)
	l.RecordSuccess("p", 250*time.Millisecond)
	l.RecordFailure("p")
	l.RecordCancellation("p")

	stats := l.Stats()
	ps, ok := stats["p"]
	require.True(t, ok)
	assert.Equal(t, int64(3), ps.TotalRequests)
	assert.Equal(t, int64(2), ps.SuccessfulRequests)
	assert.Equal(t, int64(250), ps.AverageLatencyMs)
	assert.Equal(t, int64(1), ps.CancelledRequests)
	assert.InDelta(t, 66.7, ps.SuccessRatePercent, 0.1)
}

func TestLedgerConcurrentUpdates(t *testing.T) {
	l := NewLedger()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.RecordSuccess("p", time.Millisecond)
			l.RecordFailure("p")
		}()
	}
	wg.Wait()

	rec, ok := l.Record("p")
	require.True(t, ok)
	assert.Equal(t, int64(100), rec.TotalRequests)
	assert.Equal(t, int64(50), rec.SuccessfulRequests)
}
