// Package results persists sweep point records and aggregates them across
// runs and hardware into a sorted summary.
package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/embsweep/embsweep/internal/bench"
)

// SummaryName is the aggregate output filename; aggregation skips it when
// walking a results directory so re-runs don't ingest their own output.
const SummaryName = "summary.json"

// Filename derives the per-point result filename. Slashes in the model name
// (HuggingFace org/model convention) are flattened so the name stays a
// single path segment.
func Filename(p bench.Point) string {
	slug := strings.ReplaceAll(p.Model, "/", "_")
	return fmt.Sprintf("%s__chunk%d__bs%d__conc%d.json", slug, p.ChunkSize, p.BatchSize, p.Concurrency)
}

// Save writes one record into dir, creating the directory if needed, and
// returns the written path.
func Save(dir string, p bench.Point, rec bench.Record) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating result dir: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding record: %w", err)
	}

	path := filepath.Join(dir, Filename(p))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing record: %w", err)
	}

	return path, nil
}
