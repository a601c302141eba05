package instruction

import (
	"errors"
	"fmt"
	"strings"
)

// Type names one animated primitive. The set is closed.
type Type string

const (
	Circle    Type = "circle"
	Vector    Type = "vector"
	Matrix    Type = "matrix"
	Graph     Type = "graph"
	Transform Type = "transform"
)

// Types lists the closed set in a stable order.
var Types = []Type{Circle, Vector, Matrix, Graph, Transform}

var (
	ErrUnknownType     = errors.New("unknown instruction type")
	ErrInvalidDuration = errors.New("duration must be a positive number of at most 3600 seconds")
	ErrMissingParams   = errors.New("parameters object is required")
)

// MaxSeconds bounds a single instruction's duration.
const MaxSeconds = 3600.0

// ParseType normalises case and surrounding space. The returned bool reports
// membership in the closed set; the normalised value is returned either way.
func ParseType(s string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

func (t Type) Valid() bool {
	switch t {
	case Circle, Vector, Matrix, Graph, Transform:
		return true
	}
	return false
}

func (t Type) String() string { return string(t) }

// Instruction describes one primitive, how it is drawn and how long it
// stays active.
type Instruction struct {
	Type       Type    `json:"type" yaml:"type"`
	Parameters Params  `json:"parameters" yaml:"parameters"`
	Duration   float64 `json:"duration" yaml:"duration"`
}

// Validate enforces the full contract: known type, parameters present and a
// positive duration.
func (in Instruction) Validate() error {
	if !in.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownType, in.Type)
	}
	return in.ValidateShape()
}

// ValidateShape checks everything except type membership. Hand-written
// scripts go through this so that unknown types can still be rendered as
// placeholders.
func (in Instruction) ValidateShape() error {
	if in.Parameters == nil {
		return ErrMissingParams
	}
	if !(in.Duration > 0) || in.Duration > MaxSeconds {
		return fmt.Errorf("%w, got %v", ErrInvalidDuration, in.Duration)
	}
	return nil
}

// Clone returns a deep copy so callers can mutate parameters freely.
func (in Instruction) Clone() Instruction {
	in.Parameters = in.Parameters.Clone()
	return in
}

// ValidateAll checks the shape of every element and fails on the first bad
// one. Unknown types pass; the scene renders them as placeholders.
func ValidateAll(list []Instruction) error {
	if len(list) == 0 {
		return ErrEmptyList
	}
	for i, in := range list {
		if err := in.ValidateShape(); err != nil {
			return fmt.Errorf("instruction %d: %w", i, err)
		}
	}
	return nil
}

// MaxDuration returns the longest duration in the list, 0 for an empty list.
func MaxDuration(list []Instruction) float64 {
	max := 0.0
	for _, in := range list {
		if in.Duration > max {
			max = in.Duration
		}
	}
	return max
}

// CloneAll deep-copies a list.
func CloneAll(list []Instruction) []Instruction {
	out := make([]Instruction, len(list))
	for i, in := range list {
		out[i] = in.Clone()
	}
	return out
}
