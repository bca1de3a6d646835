package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/embsweep/embsweep/internal/bench"
	"github.com/embsweep/embsweep/internal/output"
)

func resetSweepFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		sweepCmd.ResetFlags()
		registerSweepFlags()
	})
}

func TestSweepConfigFromFlags_QuickMode(t *testing.T) {
	resetSweepFlags(t)

	flags := sweepCmd.Flags()
	mustSet(t, flags.Set("model", "org/embed-model"))
	mustSet(t, flags.Set("chunk-size", "512"))
	mustSet(t, flags.Set("batch-sizes", "1,8"))
	mustSet(t, flags.Set("concurrencies", "2,4"))
	mustSet(t, flags.Set("num-requests", "50"))
	mustSet(t, flags.Set("timeout", "2m"))

	sweep, err := sweepConfigFromFlags(sweepCmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sweep.Model != "org/embed-model" {
		t.Errorf("unexpected model %q", sweep.Model)
	}
	if len(sweep.BatchSizes) != 2 || sweep.BatchSizes[1] != 8 {
		t.Errorf("unexpected batch sizes %v", sweep.BatchSizes)
	}
	if sweep.MaxConcurrency() != 4 {
		t.Errorf("unexpected max concurrency %d", sweep.MaxConcurrency())
	}
	if time.Duration(sweep.RequestTimeout) != 2*time.Minute {
		t.Errorf("unexpected timeout %v", sweep.RequestTimeout)
	}
	if sweep.Seed != 42 {
		t.Errorf("unexpected seed %d", sweep.Seed)
	}
}

func TestSweepConfigFromFlags_MissingModel(t *testing.T) {
	resetSweepFlags(t)

	mustSet(t, sweepCmd.Flags().Set("chunk-size", "512"))

	if _, err := sweepConfigFromFlags(sweepCmd); err == nil {
		t.Fatal("expected validation error for missing model")
	}
}

func TestSweepConfigFromFlags_BadList(t *testing.T) {
	resetSweepFlags(t)

	flags := sweepCmd.Flags()
	mustSet(t, flags.Set("model", "m"))
	mustSet(t, flags.Set("chunk-size", "128"))
	mustSet(t, flags.Set("batch-sizes", "1,two"))

	if _, err := sweepConfigFromFlags(sweepCmd); err == nil {
		t.Fatal("expected error for malformed batch-sizes list")
	}
}

func TestSweepConfigFromFlags_ConfigFile(t *testing.T) {
	resetSweepFlags(t)

	path := filepath.Join(t.TempDir(), "sweep.yaml")
	content := "model: org/embed-model\nchunkSize: 256\nbatchSizes: [4]\nconcurrencies: [2]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	flags := sweepCmd.Flags()
	mustSet(t, flags.Set("config", path))
	mustSet(t, flags.Set("no-power", "true"))

	sweep, err := sweepConfigFromFlags(sweepCmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sweep.ChunkSize != 256 {
		t.Errorf("unexpected chunk size %d", sweep.ChunkSize)
	}
	if !sweep.DisablePower {
		t.Error("expected --no-power to disable power sampling")
	}
	if sweep.NumRequests != 200 {
		t.Errorf("expected defaulted numRequests, got %d", sweep.NumRequests)
	}
}

func TestPrintPointResult_EmbeddingMismatchWarned(t *testing.T) {
	rec := bench.Record{
		BatchSize:           4,
		CompletedRequests:   10,
		P50LatencyMs:        50.0,
		P99LatencyMs:        52.0,
		ThroughputEmbPerSec: 160.0,
	}
	live := bench.LiveSummary{Requests: 10, MeanMs: 50.0, Embeddings: 36}

	var buf bytes.Buffer
	printPointResult(&buf, output.NoColorScheme(), rec, live, "results/r.json")

	got := buf.String()
	if !strings.Contains(got, "server returned 36 embeddings, expected 40") {
		t.Errorf("expected embedding mismatch warning, got:\n%s", got)
	}
	if !strings.Contains(got, "saved results/r.json") {
		t.Errorf("expected saved path line, got:\n%s", got)
	}
}

func TestPrintPointResult_EmbeddingMatchSilent(t *testing.T) {
	rec := bench.Record{BatchSize: 4, CompletedRequests: 10}
	live := bench.LiveSummary{Requests: 10, Embeddings: 40}

	var buf bytes.Buffer
	printPointResult(&buf, output.NoColorScheme(), rec, live, "results/r.json")

	if strings.Contains(buf.String(), "embeddings") {
		t.Errorf("no warning expected when counts agree, got:\n%s", buf.String())
	}
}

func mustSet(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
