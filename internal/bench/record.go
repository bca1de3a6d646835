// Package bench contains the measurement core: the concurrency-bounded
// dispatcher, the sweep point evaluator, and the derived statistics.
package bench

// Point is the immutable configuration of one sweep point. The driver
// creates one per (batch size, concurrency) combination.
type Point struct {
	Model       string
	ChunkSize   int
	BatchSize   int
	Concurrency int
	NumRequests int
}

// Record is the persisted result of one sweep point evaluation. It is
// written once and never mutated. The power-derived fields are pointers so
// they serialize as absent when no power data was collected, matching
// result files produced without a metric source.
type Record struct {
	Model               string   `json:"model"`
	ChunkSize           int      `json:"chunk_size"`
	BatchSize           int      `json:"batch_size"`
	Concurrency         int      `json:"concurrency"`
	NumRequests         int      `json:"num_requests"`
	CompletedRequests   int      `json:"completed_requests"`
	ElapsedSec          float64  `json:"elapsed_sec"`
	P50LatencyMs        float64  `json:"p50_latency_ms"`
	P99LatencyMs        float64  `json:"p99_latency_ms"`
	ThroughputEmbPerSec float64  `json:"throughput_emb_per_sec"`
	ThroughputPerUser   float64  `json:"throughput_per_user"`
	PowerAvgW           *float64 `json:"power_avg_w,omitempty"`
	EnergyJoules        *float64 `json:"energy_joules,omitempty"`
	EmbPerJoule         *float64 `json:"emb_per_joule,omitempty"`
}
