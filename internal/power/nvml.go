package power

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// nvmlSource reads per-GPU power draw through NVML. The library is
// initialized once at open and shut down when the source is closed; callers
// register Close at process scope so teardown runs on every exit path.
type nvmlSource struct {
	count  int
	logger *slog.Logger
}

// OpenNVML initializes the NVML subsystem and returns a source over all
// visible GPUs. A host without a driver (or without GPUs) is a supported
// degraded mode, not an error: the return is nil and power sampling is
// disabled for the whole run.
func OpenNVML(logger *slog.Logger) DeviceSource {
	if logger == nil {
		logger = slog.Default()
	}

	if ret := nvml.Init(); ret != nvml.SUCCESS {
		logger.Warn("NVML unavailable, power sampling disabled",
			slog.String("reason", nvml.ErrorString(ret)))
		return nil
	}

	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS {
		logger.Warn("NVML device enumeration failed, power sampling disabled",
			slog.String("reason", nvml.ErrorString(ret)))
		nvml.Shutdown()
		return nil
	}
	if count == 0 {
		logger.Warn("no NVML devices found, power sampling disabled")
		nvml.Shutdown()
		return nil
	}

	logger.Info("NVML initialized", slog.Int("devices", count))

	return &nvmlSource{count: count, logger: logger}
}

func (s *nvmlSource) DeviceCount() int {
	return s.count
}

// PowerWatts reads one GPU's instantaneous draw. NVML reports milliwatts.
func (s *nvmlSource) PowerWatts(index int) (float64, error) {
	device, ret := nvml.DeviceGetHandleByIndex(index)
	if ret != nvml.SUCCESS {
		return 0, fmt.Errorf("device %d handle: %s", index, nvml.ErrorString(ret))
	}

	milliwatts, ret := device.GetPowerUsage()
	if ret != nvml.SUCCESS {
		return 0, fmt.Errorf("device %d power: %s", index, nvml.ErrorString(ret))
	}

	return float64(milliwatts) / 1000.0, nil
}

func (s *nvmlSource) Close() error {
	if ret := nvml.Shutdown(); ret != nvml.SUCCESS {
		return errors.New("nvml shutdown: " + nvml.ErrorString(ret))
	}
	return nil
}
