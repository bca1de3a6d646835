package results

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// recordSchema guards aggregation against malformed or foreign JSON files
// sitting in a results directory. A file must carry every field the sweep
// writes, with the right types, before it is decoded.
const recordSchemaJSON = `{
  "type": "object",
  "required": [
    "model", "chunk_size", "batch_size", "concurrency", "num_requests",
    "completed_requests", "elapsed_sec", "p50_latency_ms", "p99_latency_ms",
    "throughput_emb_per_sec", "throughput_per_user"
  ],
  "properties": {
    "model": {"type": "string"},
    "chunk_size": {"type": "integer", "minimum": 1},
    "batch_size": {"type": "integer", "minimum": 1},
    "concurrency": {"type": "integer", "minimum": 1},
    "num_requests": {"type": "integer", "minimum": 0},
    "completed_requests": {"type": "integer", "minimum": 0},
    "elapsed_sec": {"type": "number", "minimum": 0},
    "p50_latency_ms": {"type": "number", "minimum": 0},
    "p99_latency_ms": {"type": "number", "minimum": 0},
    "throughput_emb_per_sec": {"type": "number", "minimum": 0},
    "throughput_per_user": {"type": "number", "minimum": 0},
    "power_avg_w": {"type": ["number", "null"]},
    "energy_joules": {"type": ["number", "null"]},
    "emb_per_joule": {"type": ["number", "null"]}
  }
}`

var recordSchema = jsonschema.MustCompileString("record.json", recordSchemaJSON)

// validateRecord checks raw file contents against the record schema.
func validateRecord(data []byte) error {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := recordSchema.Validate(doc); err != nil {
		return fmt.Errorf("schema violation: %w", err)
	}

	return nil
}
