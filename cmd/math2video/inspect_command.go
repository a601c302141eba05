package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/ivlev/math2video/internal/engine"
	"github.com/ivlev/math2video/internal/instruction"
	"github.com/ivlev/math2video/internal/scene"
	"github.com/ivlev/math2video/internal/source"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var (
		scriptPath string
		object     int
		anim       animationFlags
	)

	cmd := &cobra.Command{
		Use:   "inspect [prompt]",
		Short: "Simulate a prompt without rendering and show per-object motion",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			anim.apply(cmd, &cfg.Animation)
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			runCtx, cancel := signalContext(cmd)
			defer cancel()

			var (
				list   []instruction.Instruction
				origin string
			)
			prompt := strings.TrimSpace(strings.Join(args, " "))
			switch {
			case scriptPath != "":
				script, err := loadScript(scriptPath)
				if err != nil {
					return err
				}
				list, origin = script.Instructions, string(source.OriginScript)
			case prompt != "":
				res := source.NewResolverFromConfig(cfg.Generator, logger).ResolveDetailed(runCtx, prompt)
				list, origin = res.Instructions, string(res.Origin)
				if res.Group != "" {
					origin += "/" + res.Group
				}
			default:
				return errors.New("a prompt or --script is required")
			}

			tr, err := engine.TraceInstructions(runCtx, list, cfg.Animation.FPS, cfg.Animation.Duration, logger)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "[*] Source: %s | Duration: %.2fs @ %d FPS | Ticks: %d | Placeholders: %d\n",
				origin, tr.Clock.Total, tr.Clock.FPS, tr.Clock.Ticks(), tr.Placeholders)

			final := tr.Final()
			rows := make([][]string, 0, len(list))
			for i, in := range list {
				row := []string{fmt.Sprintf("%d", i), string(in.Type), tr.Kinds[i], fmt.Sprintf("%.2f", in.Duration)}
				if i < len(final) {
					row = append(row, describe(final[i]))
				}
				rows = append(rows, row)
			}
			fmt.Fprintln(w, renderTable(
				[]string{"#", "Type", "Rule", "Duration", "Final state"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
			))

			series := tr.Series(object)
			if len(series) == 0 {
				return fmt.Errorf("object %d out of range [0,%d)", object, len(list))
			}
			fmt.Fprintln(w, asciigraph.Plot(series,
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption(fmt.Sprintf("object %d (%s) over %d ticks", object, tr.Kinds[object], len(series))),
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&scriptPath, "script", "", "Inspect an instruction script instead of a prompt")
	cmd.Flags().IntVar(&object, "object", 0, "Object index to plot")
	anim.register(cmd)
	return cmd
}

func describe(s scene.Snapshot) string {
	switch s.Kind {
	case "vector":
		if s.Direction != nil {
			return fmt.Sprintf("dir=(%.3f, %.3f, %.3f)", s.Direction.X, s.Direction.Y, s.Direction.Z)
		}
	case "graph":
		if n := len(s.Points); n > 0 {
			return fmt.Sprintf("%d points, y0=%.3f y%d=%.3f", n, s.Points[0].Y, n-1, s.Points[n-1].Y)
		}
	case "placeholder":
		return "-"
	}
	return fmt.Sprintf("rot=(%.3f, %.3f, %.3f) scale=%.3f", s.Rotation.X, s.Rotation.Y, s.Rotation.Z, s.Scale.X)
}
