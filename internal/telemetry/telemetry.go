// Package telemetry samples host resource state around the processing
// pipeline. Snapshots are cheap, side-effect-free reads and never fail the
// caller's path: probes that error report zero values, and GPU metrics are
// simply omitted when no accelerator is reachable.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/sirupsen/logrus"
)

// Snapshot is a point-in-time read of host resource usage.
type Snapshot struct {
	CPUPercent  float64     `json:"cpu_usage_percent"`
	RAMPercent  float64     `json:"ram_usage_percent"`
	DiskPercent float64     `json:"disk_usage_percent"`
	GPU         *GPUMetrics `json:"gpu,omitempty"`
}

// Collector reads host metrics. gpuEnabled gates the accelerator probe so
// CPU-only deployments never pay for a failing nvidia-smi call.
type Collector struct {
	diskPath   string
	gpuEnabled bool
	log        *logrus.Logger
}

// NewCollector creates a Collector sampling disk usage at diskPath
// (usually "/").
func NewCollector(diskPath string, gpuEnabled bool, log *logrus.Logger) *Collector {
	if diskPath == "" {
		diskPath = "/"
	}
	return &Collector{diskPath: diskPath, gpuEnabled: gpuEnabled, log: log}
}

// Snapshot reads CPU, RAM and disk usage, plus GPU metrics when enabled and
// present. It never returns an error.
func (c *Collector) Snapshot() Snapshot {
	var snap Snapshot

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		snap.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		snap.RAMPercent = vm.UsedPercent
	}
	if du, err := disk.Usage(c.diskPath); err == nil {
		snap.DiskPercent = du.UsedPercent
	}
	if c.gpuEnabled {
		snap.GPU = probeGPU()
	}

	return snap
}

// Sampler collects snapshots at a fixed cadence on its own goroutine. Its
// lifetime is bounded by the context it was started with, so it stops as
// soon as the operation being measured finishes.
type Sampler struct {
	mu      sync.Mutex
	samples []Snapshot
	cancel  context.CancelFunc
	done    chan struct{}
}

// StartSampler begins sampling every interval until ctx is cancelled or Stop
// is called.
func (c *Collector) StartSampler(ctx context.Context, interval time.Duration) *Sampler {
	ctx, cancel := context.WithCancel(ctx)
	s := &Sampler{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				snap := c.Snapshot()
				s.mu.Lock()
				s.samples = append(s.samples, snap)
				s.mu.Unlock()
			}
		}
	}()

	return s
}

// Stop halts sampling, waits for the goroutine to exit, and returns every
// snapshot taken.
func (s *Sampler) Stop() []Snapshot {
	s.cancel()
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.samples
}
