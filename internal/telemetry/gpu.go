package telemetry

import (
	"os/exec"
	"strconv"
	"strings"
)

// GPUMetrics holds accelerator utilization and memory usage.
type GPUMetrics struct {
	UtilizationPercent float64 `json:"gpu_usage_percent"`
	MemoryUsedMB       float64 `json:"gpu_memory_used_mb"`
	MemoryTotalMB      float64 `json:"gpu_memory_total_mb"`
}

// probeGPU queries the first GPU through nvidia-smi. Any failure (no binary,
// no device, parse error) returns nil so the snapshot stays usable.
func probeGPU() *GPUMetrics {
	out, err := exec.Command("nvidia-smi",
		"--query-gpu=utilization.gpu,memory.used,memory.total",
		"--format=csv,noheader,nounits",
	).Output()
	if err != nil {
		return nil
	}

	line := strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0])
	fields := strings.Split(line, ",")
	if len(fields) != 3 {
		return nil
	}

	values := make([]float64, 3)
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil
		}
		values[i] = v
	}

	return &GPUMetrics{
		UtilizationPercent: values[0],
		MemoryUsedMB:       values[1],
		MemoryTotalMB:      values[2],
	}
}
