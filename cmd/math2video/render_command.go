package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ivlev/math2video/internal/engine"
	"github.com/ivlev/math2video/internal/instruction"
	"github.com/ivlev/math2video/internal/source"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var (
		outPath    string
		scriptPath string
		anim       animationFlags
		out        outputFlags
	)

	cmd := &cobra.Command{
		Use:   "render [prompt]",
		Short: "Render one prompt or instruction script",
		Example: `  math2video render "What is an Eigenvector?"
  math2video render --script eigen.yaml -o out/eigen.mp4 --fps 60`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			anim.apply(cmd, &cfg.Animation)
			out.apply(cmd, cfg)

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			prompt := strings.TrimSpace(strings.Join(args, " "))
			if prompt == "" && scriptPath == "" {
				return errors.New("a prompt or --script is required")
			}

			runCtx, cancel := signalContext(cmd)
			defer cancel()

			r, err := engine.NewRenderer(runCtx, cfg, logger)
			if err != nil {
				return withHint(err)
			}

			var res *engine.Result
			if scriptPath != "" {
				script, err := loadScript(scriptPath)
				if err != nil {
					return err
				}
				if res, err = r.RenderInstructions(runCtx, script.Instructions, nil); err != nil {
					return withHint(err)
				}
				res.Prompt = script.Prompt
			} else {
				if res, err = r.RenderDetailed(runCtx, prompt, nil); err != nil {
					return withHint(err)
				}
			}

			target := outPath
			if target == "" {
				target = filepath.Join("output", res.Filename())
			}
			saved, err := writeArtifact(target, res.Artifact)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "[*] Saved %s (%s, %s, %d frames, %s)\n",
				saved, res.Artifact.Capability, res.Artifact.MimeType, res.Artifact.Frames,
				humanize.Bytes(uint64(len(res.Artifact.Data))))
			if saved != target {
				fmt.Fprintf(w, "[!] Extension changed to match the %s output\n", res.Artifact.Capability)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default output/<prompt>.<ext>)")
	cmd.Flags().StringVar(&scriptPath, "script", "", "Render an instruction script (or the newest one in a directory)")
	anim.register(cmd)
	out.register(cmd)
	return cmd
}

// loadScript reads a script file, or the newest script when path is a
// directory.
func loadScript(path string) (*instruction.Script, error) {
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		if path, err = instruction.LatestScript(path); err != nil {
			return nil, err
		}
	}
	src, err := source.NewScriptSource(path)
	if err != nil {
		return nil, err
	}
	script, _, err := src.Load(0)
	return script, err
}

func withHint(err error) error {
	if hint := engine.Hint(err); hint != "" {
		return fmt.Errorf("%w\n    hint: %s", err, hint)
	}
	return err
}
