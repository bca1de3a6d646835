package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sweep.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
model: "org/embed-model"
baseUrl: "http://10.0.0.5:8000"
chunkSize: 512
batchSizes: [1, 8]
concurrencies: [2, 4]
numRequests: 50
resultDir: "out"
requestTimeout: 2m
powerInterval: 250ms
`)

	sweep, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if sweep.Model != "org/embed-model" {
		t.Errorf("unexpected model %q", sweep.Model)
	}
	if sweep.ChunkSize != 512 {
		t.Errorf("unexpected chunkSize %d", sweep.ChunkSize)
	}
	if len(sweep.BatchSizes) != 2 || sweep.BatchSizes[1] != 8 {
		t.Errorf("unexpected batchSizes %v", sweep.BatchSizes)
	}
	if time.Duration(sweep.RequestTimeout) != 2*time.Minute {
		t.Errorf("unexpected requestTimeout %v", sweep.RequestTimeout)
	}
	if time.Duration(sweep.PowerInterval) != 250*time.Millisecond {
		t.Errorf("unexpected powerInterval %v", sweep.PowerInterval)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, "model: m\nrequestTimeout: soon\n")

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestApplyDefaults(t *testing.T) {
	sweep := &Sweep{Model: "m", ChunkSize: 128}
	sweep.ApplyDefaults()

	if sweep.BaseURL != "http://localhost:8000" {
		t.Errorf("unexpected default baseUrl %q", sweep.BaseURL)
	}
	if len(sweep.BatchSizes) != 5 {
		t.Errorf("unexpected default batchSizes %v", sweep.BatchSizes)
	}
	if len(sweep.Concurrencies) != 4 {
		t.Errorf("unexpected default concurrencies %v", sweep.Concurrencies)
	}
	if sweep.NumRequests != 200 {
		t.Errorf("unexpected default numRequests %d", sweep.NumRequests)
	}
	if sweep.Seed != 42 {
		t.Errorf("unexpected default seed %d", sweep.Seed)
	}
	if time.Duration(sweep.RequestTimeout) != 5*time.Minute {
		t.Errorf("unexpected default requestTimeout %v", sweep.RequestTimeout)
	}
}

func TestValidate(t *testing.T) {
	valid := &Sweep{Model: "m", ChunkSize: 128}
	valid.ApplyDefaults()
	if err := valid.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	cases := []struct {
		name  string
		mod   func(*Sweep)
	}{
		{"missing model", func(s *Sweep) { s.Model = "" }},
		{"zero chunk size", func(s *Sweep) { s.ChunkSize = 0 }},
		{"zero num requests", func(s *Sweep) { s.NumRequests = 0 }},
		{"zero batch size", func(s *Sweep) { s.BatchSizes = []int{1, 0} }},
		{"zero concurrency", func(s *Sweep) { s.Concurrencies = []int{0} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sweep := &Sweep{Model: "m", ChunkSize: 128}
			sweep.ApplyDefaults()
			tc.mod(sweep)
			if err := sweep.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestMaxConcurrency(t *testing.T) {
	sweep := &Sweep{Concurrencies: []int{4, 64, 16}}
	if got := sweep.MaxConcurrency(); got != 64 {
		t.Errorf("expected 64, got %d", got)
	}
}

func TestParseIntList(t *testing.T) {
	values, err := ParseIntList("1, 4,16,64")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{1, 4, 16, 64}
	if len(values) != len(want) {
		t.Fatalf("expected %v, got %v", want, values)
	}
	for i := range want {
		if values[i] != want[i] {
			t.Errorf("expected %v, got %v", want, values)
		}
	}

	if _, err := ParseIntList("1,two,3"); err == nil {
		t.Error("expected error for non-integer entry")
	}
}
