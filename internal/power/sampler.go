// Package power samples instantaneous device power draw concurrently with a
// benchmark run, producing a time-averaged reading for the measured window.
package power

import (
	"sync"
	"time"
)

// DefaultInterval is the poll period between samples.
const DefaultInterval = 100 * time.Millisecond

// stopWait bounds how long Stop waits for the poll goroutine to exit. A
// source stuck inside a device read is abandoned rather than allowed to
// block sweep completion.
const stopWait = 2 * time.Second

// DeviceSource enumerates metric-producing devices and reads their
// instantaneous power draw. A nil DeviceSource is the supported degraded
// mode: the sampler becomes a no-op and downstream power fields stay absent.
type DeviceSource interface {
	DeviceCount() int
	// PowerWatts reads one device's instantaneous draw.
	PowerWatts(index int) (float64, error)
	Close() error
}

// Sampler polls a DeviceSource at a fixed interval on its own goroutine.
// The sample sequence is owned by the poll goroutine during collection;
// Stop reads it back only after the goroutine has been signalled.
//
// A Sampler covers one measurement window: Start once, Stop once.
type Sampler struct {
	source   DeviceSource
	interval time.Duration

	mu      sync.Mutex
	samples []float64

	stop    chan struct{}
	done    chan struct{}
	started bool
}

// NewSampler creates a sampler over source. A zero interval selects
// DefaultInterval; a nil source yields a no-op sampler.
func NewSampler(source DeviceSource, interval time.Duration) *Sampler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sampler{
		source:   source,
		interval: interval,
	}
}

// Start launches the polling loop. Harmless when the source is absent or the
// sampler was already started.
func (s *Sampler) Start() {
	if s.source == nil || s.started {
		return
	}
	s.started = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run()
}

// run wakes every interval, sums the instantaneous draw across all devices
// (skipping any device whose read fails), and appends one sample. A tick
// where every device read fails contributes nothing.
func (s *Sampler) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			total := 0.0
			read := 0
			for i := 0; i < s.source.DeviceCount(); i++ {
				watts, err := s.source.PowerWatts(i)
				if err != nil {
					continue
				}
				total += watts
				read++
			}
			if read == 0 {
				continue
			}
			s.mu.Lock()
			s.samples = append(s.samples, total)
			s.mu.Unlock()
		}
	}
}

// Stop signals the loop to exit at its next wake, waits up to stopWait, and
// returns the arithmetic mean of all collected samples. ok is false when the
// source is absent or no samples were collected.
func (s *Sampler) Stop() (meanWatts float64, ok bool) {
	if s.source == nil || !s.started {
		return 0, false
	}

	close(s.stop)
	select {
	case <-s.done:
	case <-time.After(stopWait):
		// Loop is stuck in a device read; abandon it. The mutex still
		// makes the samples slice safe to read.
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.samples) == 0 {
		return 0, false
	}

	total := 0.0
	for _, w := range s.samples {
		total += w
	}
	return total / float64(len(s.samples)), true
}
