package bench

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Histogram bounds: 1 microsecond to 1 hour, 3 significant figures.
const (
	histMinMicros = 1
	histMaxMicros = 3600000000
	histSigFigs   = 3
)

// Tracker accumulates live latency statistics for one sweep point. It backs
// the console summary (min/max/mean/stddev) printed after each point; the
// persisted percentiles come from the exact sorted samples instead, since
// the histogram is approximate.
//
// Tracker is safe for concurrent use: counters are atomic and the histogram
// is mutex-protected (HDR RecordValue is not thread-safe).
type Tracker struct {
	hist   *hdrhistogram.Histogram
	histMu sync.Mutex

	requests atomic.Int64
	failures atomic.Int64
}

// LiveSummary is a point-in-time view of a Tracker, in milliseconds, plus
// the server-reported embedding total for the sweep point.
type LiveSummary struct {
	Requests int64
	Failures int64
	MinMs    float64
	MaxMs    float64
	MeanMs   float64
	StdDevMs float64

	// Embeddings is the total the server reported across completed
	// requests, filled in by the evaluator from the dispatch outcome.
	Embeddings int64
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		hist: hdrhistogram.New(histMinMicros, histMaxMicros, histSigFigs),
	}
}

// Record adds one successful request latency.
func (t *Tracker) Record(d time.Duration) {
	micros := d.Microseconds()
	if micros < histMinMicros {
		micros = histMinMicros
	}
	if micros > histMaxMicros {
		micros = histMaxMicros
	}

	t.histMu.Lock()
	t.hist.RecordValue(micros)
	t.histMu.Unlock()

	t.requests.Add(1)
}

// RecordFailure counts a failed request. Failures carry no latency.
func (t *Tracker) RecordFailure() {
	t.requests.Add(1)
	t.failures.Add(1)
}

// Summary returns the current statistics.
func (t *Tracker) Summary() LiveSummary {
	t.histMu.Lock()
	defer t.histMu.Unlock()

	return LiveSummary{
		Requests: t.requests.Load(),
		Failures: t.failures.Load(),
		MinMs:    float64(t.hist.Min()) / 1000.0,
		MaxMs:    float64(t.hist.Max()) / 1000.0,
		MeanMs:   t.hist.Mean() / 1000.0,
		StdDevMs: t.hist.StdDev() / 1000.0,
	}
}
