// Package sysmon provides system-wide CPU and memory usage sampling.
package sysmon

import (
	"context"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Stats holds a single snapshot of system-wide resource usage.
type Stats struct {
	CPUPercent float64 `json:"cpu_percent"` // 0.0 .. 100.0
	MemPercent float64 `json:"mem_percent"` // 0.0 .. 100.0
	// Available is false when neither reading could be taken.
	Available bool `json:"available"`
}

// Sample collects a single system-wide CPU and memory snapshot.
// CPU uses interval=0 (delta since last call), so the first sample of a
// process may report 0. Readings that fail are left at zero.
func Sample(ctx context.Context) Stats {
	var s Stats
	cpuPcts, err := cpu.PercentWithContext(ctx, 0, false)
	if err == nil && len(cpuPcts) > 0 {
		s.CPUPercent = cpuPcts[0]
		s.Available = true
	}
	vmem, err := mem.VirtualMemoryWithContext(ctx)
	if err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
		s.Available = true
	}
	return s
}
