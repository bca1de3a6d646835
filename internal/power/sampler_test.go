package power

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// fakeSource serves fixed per-device readings; devices with a NaN-like
// sentinel of -1 fail their reads.
type fakeSource struct {
	watts  []float64
	reads  atomic.Int64
	closed atomic.Bool
}

func (s *fakeSource) DeviceCount() int { return len(s.watts) }

func (s *fakeSource) PowerWatts(index int) (float64, error) {
	s.reads.Add(1)
	if s.watts[index] < 0 {
		return 0, errors.New("device read failed")
	}
	return s.watts[index], nil
}

func (s *fakeSource) Close() error {
	s.closed.Store(true)
	return nil
}

func TestSampler_ConstantReading(t *testing.T) {
	source := &fakeSource{watts: []float64{100, 150}}
	s := NewSampler(source, 5*time.Millisecond)

	s.Start()
	time.Sleep(60 * time.Millisecond)
	mean, ok := s.Stop()

	if !ok {
		t.Fatal("expected samples, got none")
	}
	if mean != 250 {
		t.Errorf("expected mean 250 (sum across devices), got %f", mean)
	}
}

func TestSampler_FailingDeviceSkipped(t *testing.T) {
	source := &fakeSource{watts: []float64{100, -1, 50}}
	s := NewSampler(source, 5*time.Millisecond)

	s.Start()
	time.Sleep(60 * time.Millisecond)
	mean, ok := s.Stop()

	if !ok {
		t.Fatal("expected samples despite one failing device")
	}
	if mean != 150 {
		t.Errorf("expected mean 150 from healthy devices, got %f", mean)
	}
}

func TestSampler_AllDevicesFailing(t *testing.T) {
	source := &fakeSource{watts: []float64{-1, -1}}
	s := NewSampler(source, 5*time.Millisecond)

	s.Start()
	time.Sleep(40 * time.Millisecond)
	_, ok := s.Stop()

	if ok {
		t.Error("expected no samples when every device read fails")
	}
	if source.reads.Load() == 0 {
		t.Error("loop should keep polling failing devices")
	}
}

func TestSampler_NilSourceIsNoop(t *testing.T) {
	s := NewSampler(nil, time.Millisecond)

	s.Start()
	mean, ok := s.Stop()

	if ok || mean != 0 {
		t.Errorf("nil source must report absent, got mean=%f ok=%v", mean, ok)
	}
}

func TestSampler_StopWithoutSamples(t *testing.T) {
	// Interval far longer than the window: the loop never ticks.
	source := &fakeSource{watts: []float64{100}}
	s := NewSampler(source, time.Hour)

	s.Start()
	_, ok := s.Stop()

	if ok {
		t.Error("expected absent result when no tick occurred")
	}
}

func TestSampler_StopIdempotentWindow(t *testing.T) {
	// Start twice must not spawn a second loop; Stop still terminates.
	source := &fakeSource{watts: []float64{10}}
	s := NewSampler(source, 5*time.Millisecond)

	s.Start()
	s.Start()
	time.Sleep(25 * time.Millisecond)

	if _, ok := s.Stop(); !ok {
		t.Error("expected samples from single loop")
	}
}
