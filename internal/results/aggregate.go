package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/embsweep/embsweep/internal/bench"
)

// SummaryRecord is a persisted record tagged with its hardware label and the
// derived per-text latency.
type SummaryRecord struct {
	bench.Record
	Hardware         string  `json:"hardware"`
	LatencyPerTextMs float64 `json:"latency_per_text_ms"`
}

// WarnFunc receives a note about a skipped file during aggregation.
type WarnFunc func(path string, err error)

// Load walks dir recursively for result JSON files (skipping summary.json),
// validates and decodes each, and tags every record with a hardware label:
// the override when given, otherwise inferred from the parent directory name
// (pattern <model_slug>__<hardware>), otherwise "unknown".
//
// Malformed files are reported through warn and skipped; a missing directory
// is the only fatal condition.
func Load(dir, hardwareOverride string, warn WarnFunc) ([]SummaryRecord, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("results directory not found: %s", dir)
	}
	if warn == nil {
		warn = func(string, error) {}
	}

	var records []SummaryRecord

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" || d.Name() == SummaryName {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			warn(path, err)
			return nil
		}
		if err := validateRecord(data); err != nil {
			warn(path, err)
			return nil
		}

		var rec bench.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			warn(path, err)
			return nil
		}

		hardware := hardwareOverride
		if hardware == "" {
			hardware = inferHardware(filepath.Base(filepath.Dir(path)))
		}

		records = append(records, SummaryRecord{
			Record:           rec,
			Hardware:         hardware,
			LatencyPerTextMs: latencyPerText(rec),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking results directory: %w", err)
	}

	return records, nil
}

// inferHardware extracts the hardware label from a directory named
// <model_slug>__<hardware>.
func inferHardware(parent string) string {
	if idx := strings.Index(parent, "__"); idx >= 0 {
		return parent[idx+2:]
	}
	return "unknown"
}

// latencyPerText derives the per-text share of the p99 latency, rounded to
// 3 decimals. Zero batch size yields zero rather than a division error.
func latencyPerText(rec bench.Record) float64 {
	if rec.BatchSize == 0 {
		return 0
	}
	perText := rec.P99LatencyMs / float64(rec.BatchSize)
	return math.Round(perText*1000) / 1000
}

// Sort orders records by (model, hardware, chunk_size, batch_size,
// concurrency) so identical configurations on different hardware land on
// adjacent rows.
func Sort(records []SummaryRecord) {
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Model != b.Model {
			return a.Model < b.Model
		}
		if a.Hardware != b.Hardware {
			return a.Hardware < b.Hardware
		}
		if a.ChunkSize != b.ChunkSize {
			return a.ChunkSize < b.ChunkSize
		}
		if a.BatchSize != b.BatchSize {
			return a.BatchSize < b.BatchSize
		}
		return a.Concurrency < b.Concurrency
	})
}

// WriteSummary writes the aggregated records as a JSON array.
func WriteSummary(path string, records []SummaryRecord) error {
	if len(records) == 0 {
		return errors.New("no records to write")
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}
