package engine

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ivlev/math2video/internal/system"
)

func writeReport(ctx context.Context, w io.Writer, build string, res *Result) {
	if w == nil {
		return
	}
	if build == "" {
		build = "dev"
	}
	fps := 0.0
	if s := res.Timings.Total.Seconds(); s > 0 {
		fps = float64(res.Ticks) / s
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	host := system.CollectHostStats(ctx)

	fmt.Fprintf(w,
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Render: %s (%s)\n"+
			"Total Time: %.2fs\n"+
			"Resolve: %.2fs\n"+
			"Simulate+Capture: %.2fs\n"+
			"Finalize: %.2fs\n"+
			"Ticks: %d | Effective FPS: %.2f\n"+
			"Output: %s, %s, %s\n"+
			"First frame: %d content blocks, %.1f%% of the frame\n"+
			"Frame buffers allocated: %d\n"+
			"Host: %s | %d CPUs | load %.2f | RSS %s\n"+
			"----------------------------\n",
		build,
		res.ID, res.Resolution.Origin,
		res.Timings.Total.Seconds(),
		res.Timings.Resolve.Seconds(),
		res.Timings.Simulate.Seconds(),
		res.Timings.Finalize.Seconds(),
		res.Ticks, fps,
		res.Artifact.Capability, res.Artifact.MimeType, humanize.Bytes(uint64(len(res.Artifact.Data))),
		len(res.FirstFrame.Blocks), res.FirstFrame.Fraction()*100,
		system.PoolAllocations(),
		host.CPUModel, host.LogicalCPUs, host.Load1, humanize.Bytes(host.ProcessRSS),
	)
}
