package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ivlev/math2video/internal/engine"
	"github.com/ivlev/math2video/internal/source"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var (
		prompts    []string
		scriptsDir string
		jobs       int
		outDir     string
		anim       animationFlags
		out        outputFlags
	)

	cmd := &cobra.Command{
		Use:     "batch [prompt...]",
		Short:   "Render several prompts concurrently",
		Example: `  math2video batch -p "fourier series" -p "matrix multiplication" --jobs 2
  math2video batch --scripts scripts/ --out-dir output/scripts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			anim.apply(cmd, &cfg.Animation)
			out.apply(cmd, cfg)
			if cmd.Flags().Changed("jobs") {
				cfg.Batch.Jobs = jobs
			}

			var work []engine.Job
			for _, p := range append(prompts, args...) {
				if p = strings.TrimSpace(p); p != "" {
					work = append(work, engine.Job{Prompt: p})
				}
			}
			if scriptsDir != "" {
				scripted, err := scriptJobs(scriptsDir)
				if err != nil {
					return err
				}
				work = append(work, scripted...)
			}
			if len(work) == 0 {
				return errors.New("no prompts or scripts given")
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			runCtx, cancel := signalContext(cmd)
			defer cancel()

			r, err := engine.NewRenderer(runCtx, cfg, logger)
			if err != nil {
				return withHint(err)
			}

			items, batchErr := r.RenderJobs(runCtx, work, nil, cfg.Batch.Jobs)

			rows := make([][]string, 0, len(items))
			for _, it := range items {
				if it.Err != nil {
					rows = append(rows, []string{it.Prompt, "-", "-", "-", "failed: " + firstLine(it.Err)})
					continue
				}
				res := it.Result
				// the ID suffix keeps same-prompt renders apart
				name := strings.TrimSuffix(res.Filename(), res.Artifact.Ext()) + "-" + res.ID[:8] + res.Artifact.Ext()
				saved, err := writeArtifact(filepath.Join(outDir, name), res.Artifact)
				if err != nil {
					batchErr = errors.Join(batchErr, err)
					saved = "failed: " + err.Error()
				}
				rows = append(rows, []string{
					it.Prompt,
					originLabel(res),
					string(res.Artifact.Capability),
					humanize.Bytes(uint64(len(res.Artifact.Data))),
					saved,
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Prompt", "Source", "Output", "Size", "File"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			if batchErr != nil {
				return withHint(batchErr)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&prompts, "prompt", "p", nil, "Prompt to render (repeatable)")
	cmd.Flags().StringVar(&scriptsDir, "scripts", "", "Also render every script in this directory")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "Concurrent renders (default batch.jobs)")
	cmd.Flags().StringVar(&outDir, "out-dir", "output", "Directory for rendered files")
	anim.register(cmd)
	out.register(cmd)
	return cmd
}

func scriptJobs(path string) ([]engine.Job, error) {
	src, err := source.NewScriptSource(path)
	if err != nil {
		return nil, err
	}
	jobs := make([]engine.Job, 0, src.Count())
	for i := 0; i < src.Count(); i++ {
		script, _, err := src.Load(i)
		if err != nil {
			return nil, err
		}
		label := script.Prompt
		if label == "" {
			label = filepath.Base(src.Path(i))
		}
		jobs = append(jobs, engine.Job{Prompt: label, Instructions: script.Instructions})
	}
	return jobs, nil
}

func originLabel(res *engine.Result) string {
	if res.Resolution.Group != "" {
		return string(res.Resolution.Origin) + "/" + res.Resolution.Group
	}
	return string(res.Resolution.Origin)
}

func firstLine(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return msg[:i]
	}
	return msg
}
