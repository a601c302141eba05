package system

import (
	"context"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// HostStats is a best-effort snapshot of the machine and this process. Any
// field gopsutil cannot read on the platform stays zero.
type HostStats struct {
	Platform     string
	CPUModel     string
	LogicalCPUs  int
	MemTotal     uint64
	MemAvailable uint64
	Load1        float64
	ProcessRSS   uint64
	Goroutines   int
}

func CollectHostStats(ctx context.Context) HostStats {
	s := HostStats{
		LogicalCPUs: runtime.NumCPU(),
		Goroutines:  runtime.NumGoroutine(),
	}

	if info, err := host.InfoWithContext(ctx); err == nil {
		s.Platform = info.Platform + " " + info.PlatformVersion + " (" + info.KernelArch + ")"
	}
	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
		s.CPUModel = infos[0].ModelName
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil && n > 0 {
		s.LogicalCPUs = n
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		s.MemTotal = vm.Total
		s.MemAvailable = vm.Available
	}
	if avg, err := load.AvgWithContext(ctx); err == nil {
		s.Load1 = avg.Load1
	}
	if p, err := process.NewProcessWithContext(ctx, int32(os.Getpid())); err == nil {
		if mi, err := p.MemoryInfoWithContext(ctx); err == nil {
			s.ProcessRSS = mi.RSS
		}
	}
	return s
}
