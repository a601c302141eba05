package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ivlev/math2video/internal/analyzer"
	"github.com/ivlev/math2video/internal/config"
	"github.com/ivlev/math2video/internal/instruction"
	"github.com/ivlev/math2video/internal/renderer"
	"github.com/ivlev/math2video/internal/scene"
	"github.com/ivlev/math2video/internal/source"
	"github.com/ivlev/math2video/internal/video"
)

// Timings splits one render's wall time by stage.
type Timings struct {
	Resolve  time.Duration
	Simulate time.Duration // tick loop, capture and frame hand-off included
	Finalize time.Duration // sink close: waiting on the encoder
	Total    time.Duration
}

// Result is everything a caller may want to know about a finished render.
type Result struct {
	ID           string
	Prompt       string
	Resolution   source.Resolution
	Artifact     video.Artifact
	Ticks        int
	Placeholders int
	FirstFrame   analyzer.Coverage // visible content of frame 0
	Timings      Timings
}

// Renderer runs prompt -> instructions -> scene -> frames -> artifact. It is
// safe for concurrent use; every call owns its scene, clock and buffers.
type Renderer struct {
	cfg       *config.Config
	resolver  *source.Resolver
	assembler video.Assembler
	detector  *analyzer.ContrastDetector
	logger    *slog.Logger
	report    io.Writer
}

type Option func(*Renderer)

func WithResolver(r *source.Resolver) Option {
	return func(rn *Renderer) { rn.resolver = r }
}

func WithAssembler(a video.Assembler) Option {
	return func(rn *Renderer) { rn.assembler = a }
}

// WithReportWriter sets where the performance report goes when
// show_stats is on. Defaults to stdout.
func WithReportWriter(w io.Writer) Option {
	return func(rn *Renderer) { rn.report = w }
}

func NewRenderer(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Renderer, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Renderer{
		cfg:      cfg,
		detector: analyzer.NewContrastDetector(),
		logger:   logger,
		report:   os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.resolver == nil {
		r.resolver = source.NewResolverFromConfig(cfg.Generator, logger)
	}
	if r.assembler == nil {
		a, err := video.NewAssembler(ctx, cfg.Video, logger)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEncodingFailure, err)
		}
		r.assembler = a
	}
	return r, nil
}

func (r *Renderer) Config() *config.Config { return r.cfg }

func (r *Renderer) Assembler() video.Assembler { return r.assembler }

// Render resolves the prompt and renders it. A nil anim uses the configured
// animation section.
func (r *Renderer) Render(ctx context.Context, prompt string, anim *config.Animation) (video.Artifact, error) {
	res, err := r.RenderDetailed(ctx, prompt, anim)
	if err != nil {
		return video.Artifact{}, err
	}
	return res.Artifact, nil
}

func (r *Renderer) RenderDetailed(ctx context.Context, prompt string, anim *config.Animation) (*Result, error) {
	a, err := r.animation(anim)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	logger := r.logger.With("render_id", id)
	logger.Info("[*] render started", "prompt", prompt)

	start := time.Now()
	res := r.resolver.ResolveDetailed(ctx, prompt)
	resolveTime := time.Since(start)

	out, err := r.run(ctx, id, logger, res, a)
	if err != nil {
		return nil, err
	}
	out.Prompt = prompt
	out.Timings.Resolve = resolveTime
	out.Timings.Total = time.Since(start)
	r.finish(ctx, logger, out)
	return out, nil
}

// RenderInstructions skips the instruction source. The list is used as is,
// unknown types included.
func (r *Renderer) RenderInstructions(ctx context.Context, list []instruction.Instruction, anim *config.Animation) (*Result, error) {
	a, err := r.animation(anim)
	if err != nil {
		return nil, err
	}
	if err := instruction.ValidateAll(list); err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}

	id := uuid.NewString()
	logger := r.logger.With("render_id", id)
	logger.Info("[*] render started", "instructions", len(list))

	start := time.Now()
	res := source.Resolution{Instructions: instruction.CloneAll(list), Origin: source.OriginScript}
	out, err := r.run(ctx, id, logger, res, a)
	if err != nil {
		return nil, err
	}
	out.Timings.Total = time.Since(start)
	r.finish(ctx, logger, out)
	return out, nil
}

func (r *Renderer) animation(anim *config.Animation) (config.Animation, error) {
	a := r.cfg.Animation
	if anim != nil {
		a = *anim
	}
	if err := a.Validate(); err != nil {
		return config.Animation{}, err
	}
	return a, nil
}

func (r *Renderer) run(ctx context.Context, id string, logger *slog.Logger, res source.Resolution, anim config.Animation) (*Result, error) {
	total := TotalDuration(res.Instructions, anim.Duration)
	clock, err := NewClock(anim.FPS, total)
	if err != nil {
		return nil, err
	}

	sc := scene.Build(res.Instructions, logger)
	defer sc.Discard()

	capt, err := renderer.NewCapturer(r.cfg.Render, anim)
	if err != nil {
		return nil, wrap(ErrCaptureFailure, id, "setup", -1, err)
	}

	params := config.ClipParams{
		Width:        anim.Width,
		Height:       anim.Height,
		FPS:          anim.FPS,
		Duration:     total,
		FadeDuration: r.cfg.Video.FadeDuration,
		Debug:        r.cfg.Video.Debug,
	}
	sink, err := r.assembler.Begin(ctx, params)
	if err != nil {
		return nil, wrap(ErrEncodingFailure, id, "begin", -1, err)
	}

	logger.Info("[*] simulating",
		"origin", string(res.Origin),
		"objects", len(res.Instructions),
		"duration", total,
		"fps", anim.FPS,
		"ticks", clock.Ticks(),
		"resolution", fmt.Sprintf("%dx%d", anim.Width, anim.Height),
		"output", string(r.assembler.Capability()),
	)

	var first analyzer.Coverage
	simStart := time.Now()
	sim := NewSimulator(sc, clock)
	err = sim.Run(ctx, func(i int, elapsed, normalized float64) error {
		frame, err := capt.Capture(sc, i, elapsed, normalized)
		if err != nil {
			return wrap(ErrCaptureFailure, id, "capture", i, err)
		}
		if i == 0 {
			first = r.detector.Detect(frame.Image)
			if first.Empty() {
				logger.Warn("[!] first frame has no visible content, objects may be outside the camera view")
			}
		}
		werr := sink.WriteFrame(frame)
		frame.Release()
		if werr != nil {
			return wrap(ErrEncodingFailure, id, "encode", i, werr)
		}
		return nil
	})
	simTime := time.Since(simStart)
	if err != nil {
		sink.Abort()
		// a killed encoder reports a broken pipe; the context is the real cause
		if cerr := ctx.Err(); cerr != nil {
			logger.Warn("[!] render cancelled, frames dropped", "completed_ticks", sim.Done())
			return nil, &RenderError{ID: id, Stage: "cancelled", Tick: sim.Done(), Err: cerr}
		}
		logger.Error("[!] render failed", "completed_ticks", sim.Done(), "error", err)
		return nil, err
	}

	closeStart := time.Now()
	art, err := sink.Close()
	if err != nil {
		return nil, wrap(ErrEncodingFailure, id, "finalize", -1, err)
	}

	return &Result{
		ID:           id,
		Resolution:   res,
		Artifact:     art,
		Ticks:        sim.Done(),
		Placeholders: sc.Placeholders(),
		FirstFrame:   first,
		Timings: Timings{
			Simulate: simTime,
			Finalize: time.Since(closeStart),
		},
	}, nil
}

func (r *Renderer) finish(ctx context.Context, logger *slog.Logger, res *Result) {
	logger.Info("[*] render finished",
		"capability", string(res.Artifact.Capability),
		"mime", res.Artifact.MimeType,
		"frames", res.Artifact.Frames,
		"bytes", len(res.Artifact.Data),
		"total", res.Timings.Total.Round(time.Millisecond),
	)
	if res.Artifact.Capability == video.CapabilityStill {
		logger.Warn("[!] output is a single still frame, not a video", "captured", res.Artifact.Captured)
	}
	if r.cfg.ShowStats {
		writeReport(ctx, r.report, r.cfg.BuildVersion, res)
	}
}

// Filename suggests an output name for a result: a slug of the prompt or
// the render ID, plus the artifact extension.
func (res *Result) Filename() string {
	name := slug(res.Prompt)
	if name == "" {
		name = res.ID
	}
	return name + res.Artifact.Ext()
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
		if b.Len() >= 48 {
			break
		}
	}
	return strings.TrimRight(b.String(), "-")
}
