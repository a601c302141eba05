package engine

import (
	"context"
	"log/slog"

	"github.com/ivlev/math2video/internal/instruction"
	"github.com/ivlev/math2video/internal/scene"
)

// Trace is a capture-free run of the simulator that records every
// object's snapshot at every tick.
type Trace struct {
	Clock        Clock
	Placeholders int
	Kinds        []string
	Ticks        [][]scene.Snapshot // [tick][object]
}

// TraceInstructions runs the scene without rendering. fps and override
// follow the same rules as a render.
func TraceInstructions(ctx context.Context, list []instruction.Instruction, fps int, override float64, logger *slog.Logger) (*Trace, error) {
	clock, err := NewClock(fps, TotalDuration(list, override))
	if err != nil {
		return nil, err
	}

	sc := scene.Build(list, logger)
	defer sc.Discard()

	tr := &Trace{
		Clock:        clock,
		Placeholders: sc.Placeholders(),
		Ticks:        make([][]scene.Snapshot, 0, clock.Ticks()),
	}
	for _, b := range sc.Bindings {
		tr.Kinds = append(tr.Kinds, b.Kind.String())
	}

	sim := NewSimulator(sc, clock)
	err = sim.Run(ctx, func(int, float64, float64) error {
		tr.Ticks = append(tr.Ticks, sc.Snapshots())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tr, nil
}

// Series is one object's scalar motion over the whole run.
func (t *Trace) Series(object int) []float64 {
	out := make([]float64, 0, len(t.Ticks))
	for _, snaps := range t.Ticks {
		if object < 0 || object >= len(snaps) {
			return nil
		}
		out = append(out, snaps[object].Scalar())
	}
	return out
}

// Final returns the snapshots after the last tick.
func (t *Trace) Final() []scene.Snapshot {
	if len(t.Ticks) == 0 {
		return nil
	}
	return t.Ticks[len(t.Ticks)-1]
}
