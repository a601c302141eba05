package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ivlev/math2video/internal/config"
	"github.com/ivlev/math2video/internal/instruction"
)

// Generator produces free text that should contain an instruction array.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Origin records which path produced a resolution.
type Origin string

const (
	OriginGenerator Origin = "generator"
	OriginFallback  Origin = "fallback"
	OriginScript    Origin = "script"
)

// Resolution is the detailed result of Resolve.
type Resolution struct {
	Instructions []instruction.Instruction
	Origin       Origin
	Group        string        // fallback group name, empty for the generator
	Reason       error         // why the generator was not used, nil on success
	Elapsed      time.Duration // time spent in the generator
}

// Resolver turns a prompt into a non-empty instruction list. It never
// returns an error: every generator failure is logged and replaced by the
// keyword fallback.
type Resolver struct {
	gen     Generator
	timeout time.Duration
	logger  *slog.Logger
}

// NewResolver accepts a nil generator, which makes every call use the
// fallback.
func NewResolver(gen Generator, timeout time.Duration, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{gen: gen, timeout: timeout, logger: logger}
}

// NewResolverFromConfig wires the Gemini client when a key is available.
func NewResolverFromConfig(cfg config.Generator, logger *slog.Logger, opts ...GeminiOption) *Resolver {
	var gen Generator
	if client := NewGeminiFromConfig(cfg, opts...); client != nil {
		gen = client
	}
	return NewResolver(gen, time.Duration(cfg.TimeoutSeconds)*time.Second, logger)
}

func (r *Resolver) Resolve(ctx context.Context, prompt string) []instruction.Instruction {
	return r.ResolveDetailed(ctx, prompt).Instructions
}

func (r *Resolver) ResolveDetailed(ctx context.Context, prompt string) Resolution {
	if r.gen == nil {
		r.logger.Info("[*] generator disabled, using keyword fallback")
		return fallbackResolution(prompt, nil)
	}

	start := time.Now()
	list, err := r.generate(ctx, prompt)
	elapsed := time.Since(start)
	if err != nil {
		res := fallbackResolution(prompt, err)
		res.Elapsed = elapsed
		r.logger.Warn("[!] instruction generation failed, using fallback",
			"generator", r.gen.Name(),
			"kind", Kind(err),
			"group", res.Group,
			"error", err,
		)
		return res
	}

	r.logger.Info("[*] instructions generated",
		"generator", r.gen.Name(),
		"count", len(list),
		"elapsed", elapsed.Round(time.Millisecond),
	)
	return Resolution{Instructions: list, Origin: OriginGenerator, Elapsed: elapsed}
}

func (r *Resolver) generate(ctx context.Context, prompt string) ([]instruction.Instruction, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	text, err := r.gen.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, ErrSourceUnavailable) || errors.Is(err, ErrMalformedInstructions) {
			return nil, err
		}
		return nil, unavailable(err)
	}

	list, err := instruction.Parse(text)
	if err != nil {
		return nil, malformed(fmt.Errorf("%w (response: %s)", err, snippet(text)))
	}
	return list, nil
}

func fallbackResolution(prompt string, reason error) Resolution {
	group := Match(strings.TrimSpace(prompt))
	return Resolution{
		Instructions: group.Instructions(),
		Origin:       OriginFallback,
		Group:        group.Name,
		Reason:       reason,
	}
}
