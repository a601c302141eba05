package engine

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/math2video/internal/config"
	"github.com/ivlev/math2video/internal/instruction"
)

// Job is one batch entry. When Instructions is set the prompt is only a
// label and the instruction source is skipped.
type Job struct {
	Prompt       string
	Instructions []instruction.Instruction
}

// BatchItem is the outcome of one job.
type BatchItem struct {
	Prompt string
	Result *Result
	Err    error
}

// RenderBatch renders prompts as isolated pipelines, at most limit at a time.
func (r *Renderer) RenderBatch(ctx context.Context, prompts []string, anim *config.Animation, limit int) ([]BatchItem, error) {
	jobs := make([]Job, len(prompts))
	for i, p := range prompts {
		jobs[i].Prompt = p
	}
	return r.RenderJobs(ctx, jobs, anim, limit)
}

// RenderJobs runs every job even when some fail; the returned error joins
// every failure.
func (r *Renderer) RenderJobs(ctx context.Context, jobs []Job, anim *config.Animation, limit int) ([]BatchItem, error) {
	if limit <= 0 {
		limit = r.cfg.Batch.Jobs
	}
	items := make([]BatchItem, len(jobs))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, job := range jobs {
		items[i].Prompt = job.Prompt
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				items[i].Err = err
				return nil
			}
			if job.Instructions != nil {
				items[i].Result, items[i].Err = r.RenderInstructions(ctx, job.Instructions, anim)
				if items[i].Result != nil {
					items[i].Result.Prompt = job.Prompt
				}
			} else {
				items[i].Result, items[i].Err = r.RenderDetailed(ctx, job.Prompt, anim)
			}
			if items[i].Err == nil {
				r.logger.Info("[>] Ready", "index", i+1, "of", len(jobs), "prompt", job.Prompt)
			}
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for i, it := range items {
		if it.Err != nil {
			errs = append(errs, fmt.Errorf("job %d %q: %w", i, it.Prompt, it.Err))
		}
	}
	return items, errors.Join(errs...)
}
