// Package config defines the sweep configuration, its YAML loader, and
// validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration for human-readable YAML values like "30s".
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration in its string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Sweep is the full configuration for one sweep run.
//
// Example YAML:
//
//	model: "BAAI/bge-large-en-v1.5"
//	baseUrl: "http://localhost:8000"
//	chunkSize: 512
//	batchSizes: [1, 4, 16, 64, 256]
//	concurrencies: [1, 4, 16, 64]
//	numRequests: 200
//	resultDir: "results"
//	requestTimeout: 5m
type Sweep struct {
	// Model is the model identifier sent with every request.
	Model string `yaml:"model"`

	// BaseURL is the embedding server base URL.
	BaseURL string `yaml:"baseUrl"`

	// ChunkSize is the approximate token count per synthetic text.
	ChunkSize int `yaml:"chunkSize"`

	// BatchSizes and Concurrencies span the sweep's cartesian product.
	BatchSizes    []int `yaml:"batchSizes"`
	Concurrencies []int `yaml:"concurrencies"`

	// NumRequests is the request count per sweep point.
	NumRequests int `yaml:"numRequests"`

	// ResultDir receives one JSON record per sweep point.
	ResultDir string `yaml:"resultDir"`

	// Seed fixes the synthetic text generator so repeated runs produce
	// identical payloads.
	Seed int64 `yaml:"seed"`

	// RequestTimeout is the generous per-request upper bound.
	RequestTimeout Duration `yaml:"requestTimeout"`

	// PowerInterval is the power sampler poll period.
	PowerInterval Duration `yaml:"powerInterval"`

	// DisablePower skips NVML initialization entirely.
	DisablePower bool `yaml:"disablePower"`
}

// Load reads a sweep configuration from a YAML file.
func Load(path string) (*Sweep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var sweep Sweep
	if err := yaml.Unmarshal(data, &sweep); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &sweep, nil
}

// ApplyDefaults fills unset fields with the standard sweep matrix.
func (s *Sweep) ApplyDefaults() {
	if s.BaseURL == "" {
		s.BaseURL = "http://localhost:8000"
	}
	if len(s.BatchSizes) == 0 {
		s.BatchSizes = []int{1, 4, 16, 64, 256}
	}
	if len(s.Concurrencies) == 0 {
		s.Concurrencies = []int{1, 4, 16, 64}
	}
	if s.NumRequests == 0 {
		s.NumRequests = 200
	}
	if s.ResultDir == "" {
		s.ResultDir = "results"
	}
	if s.Seed == 0 {
		s.Seed = 42
	}
	if s.RequestTimeout == 0 {
		s.RequestTimeout = Duration(5 * time.Minute)
	}
	if s.PowerInterval == 0 {
		s.PowerInterval = Duration(100 * time.Millisecond)
	}
}

// Validate checks the configuration for values the sweep cannot run with.
func (s *Sweep) Validate() error {
	if s.Model == "" {
		return fmt.Errorf("model is required")
	}
	if s.BaseURL == "" {
		return fmt.Errorf("baseUrl is required")
	}
	if s.ChunkSize < 1 {
		return fmt.Errorf("chunkSize must be at least 1, got %d", s.ChunkSize)
	}
	if s.NumRequests < 1 {
		return fmt.Errorf("numRequests must be at least 1, got %d", s.NumRequests)
	}
	for _, b := range s.BatchSizes {
		if b < 1 {
			return fmt.Errorf("batch sizes must be at least 1, got %d", b)
		}
	}
	for _, c := range s.Concurrencies {
		if c < 1 {
			return fmt.Errorf("concurrencies must be at least 1, got %d", c)
		}
	}
	return nil
}

// MaxConcurrency returns the highest configured concurrency, used to size
// the HTTP connection pool.
func (s *Sweep) MaxConcurrency() int {
	max := 1
	for _, c := range s.Concurrencies {
		if c > max {
			max = c
		}
	}
	return max
}

// ParseIntList parses a comma-separated list like "1,4,16,64".
func ParseIntList(value string) ([]int, error) {
	parts := strings.Split(value, ",")
	values := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q in list", part)
		}
		values = append(values, n)
	}
	return values, nil
}
