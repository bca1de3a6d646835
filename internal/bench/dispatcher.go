package bench

import (
	"context"
	"sync"
	"time"
)

// EmbeddingClient issues one embedding request and reports its round-trip
// latency in milliseconds. Implemented by internal/client; tests substitute
// instrumented fakes.
type EmbeddingClient interface {
	Embed(ctx context.Context, texts []string) (latencyMs float64, embeddings int64, err error)
}

// Outcome is what one dispatcher run produced.
type Outcome struct {
	// LatenciesMs holds one sample per completed request, in completion
	// order (non-deterministic).
	LatenciesMs []float64
	Completed   int
	Failed      int
	ElapsedSec  float64

	// Embeddings is the total embedding count the server reported across
	// completed requests. A healthy run returns Completed * batch size;
	// anything else means the server silently dropped inputs.
	Embeddings int64
}

// Dispatcher runs a fixed set of request tasks with at most Concurrency in
// flight simultaneously. The admission gate is a buffered channel: each task
// acquires a slot before issuing its request and releases it in a defer,
// success or failure alike.
type Dispatcher struct {
	client      EmbeddingClient
	concurrency int

	// tracker, when set, receives per-request observations for live display.
	tracker *Tracker

	// now is the clock; overridable in tests.
	now func() time.Time
}

// NewDispatcher creates a dispatcher bound to the given client and
// concurrency limit. Concurrency below 1 is treated as 1.
func NewDispatcher(client EmbeddingClient, concurrency int) *Dispatcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Dispatcher{
		client:      client,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// SetTracker attaches a live statistics tracker.
func (d *Dispatcher) SetTracker(t *Tracker) {
	d.tracker = t
}

// Run executes one task per batch and blocks until all have completed or
// failed. The elapsed window spans from just before the first task is
// admitted to just after the last one finishes. A failed request is counted
// but contributes no latency sample.
func (d *Dispatcher) Run(ctx context.Context, batches [][]string) Outcome {
	gate := make(chan struct{}, d.concurrency)

	var mu sync.Mutex
	latencies := make([]float64, 0, len(batches))
	failed := 0
	var embeddings int64

	var wg sync.WaitGroup
	start := d.now()

	for _, texts := range batches {
		wg.Add(1)
		go func(texts []string) {
			defer wg.Done()

			gate <- struct{}{}
			defer func() { <-gate }()

			latencyMs, count, err := d.client.Embed(ctx, texts)
			if err != nil {
				if d.tracker != nil {
					d.tracker.RecordFailure()
				}
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}

			if d.tracker != nil {
				d.tracker.Record(time.Duration(latencyMs * float64(time.Millisecond)))
			}
			mu.Lock()
			latencies = append(latencies, latencyMs)
			embeddings += count
			mu.Unlock()
		}(texts)
	}

	wg.Wait()
	elapsed := d.now().Sub(start)

	return Outcome{
		LatenciesMs: latencies,
		Completed:   len(latencies),
		Failed:      failed,
		ElapsedSec:  elapsed.Seconds(),
		Embeddings:  embeddings,
	}
}
