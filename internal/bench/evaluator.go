package bench

import (
	"context"
	"sort"
	"time"
)

// PowerSampler is the auxiliary metric sampler run alongside the dispatcher.
// Start must be harmless to call when the metric subsystem is unavailable;
// Stop reports ok=false when no samples were collected.
type PowerSampler interface {
	Start()
	Stop() (meanWatts float64, ok bool)
}

// TextSource pre-generates the synthetic workload for a sweep point.
// Implemented by internal/textgen.
type TextSource interface {
	Batches(numRequests, batchSize, numTokens int) [][]string
}

// Evaluator composes one full sweep point measurement: workload generation,
// concurrent power sampling, bounded-concurrency dispatch, and statistics.
type Evaluator struct {
	Client  EmbeddingClient
	Sampler PowerSampler
	Texts   TextSource

	// now is the clock handed to the dispatcher; overridable in tests.
	now func() time.Time
}

// NewEvaluator wires an evaluator from its collaborators.
func NewEvaluator(client EmbeddingClient, sampler PowerSampler, texts TextSource) *Evaluator {
	return &Evaluator{
		Client:  client,
		Sampler: sampler,
		Texts:   texts,
		now:     time.Now,
	}
}

// Run evaluates one sweep point and returns its result record plus the live
// summary for console display.
//
// The sampler window brackets the dispatch window as closely as possible:
// started immediately before the first admission, stopped in a defer so it
// closes on every exit path. Workload generation happens before the window
// opens and is excluded from the measurement.
func (e *Evaluator) Run(ctx context.Context, p Point) (Record, LiveSummary) {
	batches := e.Texts.Batches(p.NumRequests, p.BatchSize, p.ChunkSize)

	tracker := NewTracker()
	dispatcher := NewDispatcher(e.Client, p.Concurrency)
	dispatcher.SetTracker(tracker)
	if e.now != nil {
		dispatcher.now = e.now
	}

	var powerMean float64
	var powerOK bool

	out := func() Outcome {
		e.Sampler.Start()
		defer func() {
			powerMean, powerOK = e.Sampler.Stop()
		}()
		return dispatcher.Run(ctx, batches)
	}()

	live := tracker.Summary()
	live.Embeddings = out.Embeddings

	return e.derive(p, out, powerMean, powerOK), live
}

// derive computes the record's statistics from a dispatch outcome. All
// divisions are guarded: zero completed requests or a degenerate elapsed
// window produce zeros, never NaN or Inf.
func (e *Evaluator) derive(p Point, out Outcome, powerMean float64, powerOK bool) Record {
	sort.Float64s(out.LatenciesMs)

	p50 := percentile(out.LatenciesMs, 0.50)
	p99 := percentile(out.LatenciesMs, 0.99)

	totalEmbeddings := float64(out.Completed * p.BatchSize)
	throughput := 0.0
	if out.ElapsedSec > 0 {
		throughput = totalEmbeddings / out.ElapsedSec
	}
	throughputPerUser := 0.0
	if p.Concurrency > 0 {
		throughputPerUser = throughput / float64(p.Concurrency)
	}

	rec := Record{
		Model:               p.Model,
		ChunkSize:           p.ChunkSize,
		BatchSize:           p.BatchSize,
		Concurrency:         p.Concurrency,
		NumRequests:         p.NumRequests,
		CompletedRequests:   out.Completed,
		ElapsedSec:          roundTo(out.ElapsedSec, 3),
		P50LatencyMs:        roundTo(p50, 2),
		P99LatencyMs:        roundTo(p99, 2),
		ThroughputEmbPerSec: roundTo(throughput, 2),
		ThroughputPerUser:   roundTo(throughputPerUser, 2),
	}

	if powerOK {
		power := roundTo(powerMean, 2)
		energy := powerMean * out.ElapsedSec
		energyRounded := roundTo(energy, 2)
		rec.PowerAvgW = &power
		rec.EnergyJoules = &energyRounded
		if energy > 0 {
			efficiency := roundTo(totalEmbeddings/energy, 4)
			rec.EmbPerJoule = &efficiency
		}
	}

	return rec
}
