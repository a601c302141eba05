package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ivlev/math2video/internal/system"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Report ffmpeg capabilities and host resources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCtx, cancel := signalContext(cmd)
			defer cancel()

			rows := [][]string{}
			ffmpeg, err := system.FindFFmpeg(cfg.Video.FFmpegPath)
			if err != nil {
				rows = append(rows,
					[]string{"ffmpeg", "not found"},
					[]string{"output without ffmpeg", cfg.Video.Fallback},
				)
			} else {
				rows = append(rows,
					[]string{"ffmpeg", ffmpeg},
					[]string{"h264 encoder", system.GetBestH264Encoder(runCtx, ffmpeg)},
					[]string{"libvpx-vp9", yesNo(system.HasEncoder(runCtx, ffmpeg, "libvpx-vp9"))},
					[]string{"drawtext filter", yesNo(system.CheckFilterSupport(runCtx, ffmpeg, "drawtext"))},
				)
			}
			if cfg.Generator.Disabled || cfg.Generator.ResolveAPIKey() == "" {
				rows = append(rows, []string{"generator", "keyword fallback only"})
			} else {
				rows = append(rows, []string{"generator", cfg.Generator.Model})
			}

			host := system.CollectHostStats(runCtx)
			rows = append(rows,
				[]string{"platform", host.Platform},
				[]string{"cpu", fmt.Sprintf("%s (%d logical)", host.CPUModel, host.LogicalCPUs)},
				[]string{"memory", fmt.Sprintf("%s available of %s", humanize.Bytes(host.MemAvailable), humanize.Bytes(host.MemTotal))},
				[]string{"load (1m)", fmt.Sprintf("%.2f", host.Load1)},
			)

			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Check", "Value"}, rows, nil))
			return nil
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
