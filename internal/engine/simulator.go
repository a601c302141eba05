package engine

import (
	"context"
	"errors"

	"github.com/ivlev/math2video/internal/scene"
)

var ErrSimulatorUsed = errors.New("simulator already ran")

type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return "idle"
	}
}

// TickFunc observes the scene after every binding advanced for a tick. It
// must finish before the next tick starts.
type TickFunc func(index int, elapsed, normalized float64) error

// Simulator drives a scene through its clock once.
type Simulator struct {
	scene *scene.Scene
	clock Clock
	state State
	done  int
}

func NewSimulator(s *scene.Scene, c Clock) *Simulator {
	return &Simulator{scene: s, clock: c}
}

func (s *Simulator) State() State { return s.state }

// Done is the number of ticks that fully completed.
func (s *Simulator) Done() int { return s.done }

func (s *Simulator) Clock() Clock { return s.clock }

// Run ticks from 0 to Ticks()-1. Cancellation is checked between ticks.
// A failed or cancelled run stays Running, with Done marking where it
// stopped.
func (s *Simulator) Run(ctx context.Context, onTick TickFunc) error {
	if s.state != StateIdle {
		return ErrSimulatorUsed
	}
	s.state = StateRunning

	n := s.clock.Ticks()
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		t := s.clock.Elapsed(i)
		s.scene.Advance(t)
		if onTick != nil {
			if err := onTick(i, t, s.clock.Normalized(i)); err != nil {
				return err
			}
		}
		s.done = i + 1
	}

	s.state = StateCompleted
	return nil
}
