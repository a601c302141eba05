package scene

import (
	"log/slog"

	"github.com/ivlev/math2video/internal/instruction"
)

// Scene owns the bindings for one render. It is not safe for concurrent
// use; concurrent renders each build their own.
type Scene struct {
	Bindings []Binding

	placeholders int
	discarded    bool
}

// Build creates one binding per instruction, in order. Unknown types become
// empty placeholders and are logged; they never fail the build.
func Build(list []instruction.Instruction, logger *slog.Logger) *Scene {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scene{Bindings: make([]Binding, 0, len(list))}
	for i, in := range list {
		b, ok := newBinding(in)
		if !ok {
			s.placeholders++
			logger.Warn("[!] unknown instruction type, using placeholder",
				"index", i,
				"type", string(in.Type),
			)
		}
		s.Bindings = append(s.Bindings, b)
	}
	return s
}

// Advance runs every binding's update rule for elapsed time t.
func (s *Scene) Advance(t float64) {
	for i := range s.Bindings {
		s.Bindings[i].Advance(t)
	}
}

// Objects lists the scene objects in binding order.
func (s *Scene) Objects() []*Object {
	out := make([]*Object, 0, len(s.Bindings))
	for i := range s.Bindings {
		out = append(out, s.Bindings[i].Object)
	}
	return out
}

func (s *Scene) Snapshots() []Snapshot {
	out := make([]Snapshot, len(s.Bindings))
	for i := range s.Bindings {
		out[i] = s.Bindings[i].Snapshot()
	}
	return out
}

// Placeholders counts bindings created for unknown types.
func (s *Scene) Placeholders() int { return s.placeholders }

// Discard releases every binding. The scene must not be used afterwards.
func (s *Scene) Discard() {
	for i := range s.Bindings {
		s.Bindings[i].Object = nil
		s.Bindings[i].points = nil
	}
	s.Bindings = nil
	s.discarded = true
}

func (s *Scene) Discarded() bool { return s.discarded }
