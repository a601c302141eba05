package scene

import (
	"image/color"
	"math"

	"github.com/ivlev/math2video/internal/instruction"
)

// Kind tags the update rule a binding runs.
type Kind int

const (
	KindPlaceholder Kind = iota
	KindCircle
	KindVector
	KindMatrix
	KindTransform
	KindGraph
)

func (k Kind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindVector:
		return "vector"
	case KindMatrix:
		return "matrix"
	case KindTransform:
		return "transform"
	case KindGraph:
		return "graph"
	default:
		return "placeholder"
	}
}

const circleSegments = 32

// Geometry limits for parameters that come from generated instructions.
const (
	MaxGridDivisions = 200
	MaxGraphPoints   = 1024
)

var (
	defaultDirection = Vec3{0, 1, 0}
	defaultGraph     = [][3]float64{{-1, -1, 0}, {1, 1, 0}}
)

// Binding pairs one object with the rule that mutates it. Advance dispatches
// on Kind.
type Binding struct {
	Kind     Kind
	Type     instruction.Type // as written in the instruction, may be unknown
	Object   *Object
	Duration float64

	length float64
	color  color.RGBA
	dir    Vec3
	points []Vec3
}

func newBinding(in instruction.Instruction) (Binding, bool) {
	p := in.Parameters
	b := Binding{Type: in.Type, Duration: in.Duration}

	switch in.Type {
	case instruction.Circle:
		b.Kind = KindCircle
		b.color = p.Color("color", 0x3b82f6)
		b.Object = Disk(p.Float("radius", 1), circleSegments, b.color)

	case instruction.Vector:
		b.Kind = KindVector
		b.length = p.Float("length", 1)
		b.color = p.Color("color", 0x8b5cf6)
		dir, ok := V(p.Float("x", 0), p.Float("y", 1), p.Float("z", 0)).Normalize()
		if !ok {
			dir = defaultDirection
		}
		b.dir = dir
		b.Object = Arrow(dir, b.length, b.color)

	case instruction.Matrix:
		b.Kind = KindMatrix
		b.Object = Grid(
			p.Float("size", 2),
			p.Int("divisions", 10),
			p.Color("color1", 0x888888),
			p.Color("color2", 0x444444),
		)

	case instruction.Transform:
		b.Kind = KindTransform
		b.color = p.Color("color", 0x00ff00)
		b.Object = Cube(b.color)
		s := p.Float("scale", 1)
		b.Object.Scale = Vec3{s, s, s}
		b.Object.Rotation = Vec3{p.Float("rotateX", 0), p.Float("rotateY", 0), p.Float("rotateZ", 0)}

	case instruction.Graph:
		b.Kind = KindGraph
		b.color = p.Color("color", 0xff00ff)
		pts := p.Points("points", defaultGraph)
		if len(pts) > MaxGraphPoints {
			pts = pts[:MaxGraphPoints]
		}
		for _, pt := range pts {
			b.points = append(b.points, Vec3{pt[0], pt[1], pt[2]})
		}
		b.Object = Polyline(b.points, b.color)

	default:
		b.Kind = KindPlaceholder
		b.Object = Placeholder(string(in.Type))
		return b, false
	}
	return b, true
}

// phase is the normalized angle (t/d)·2π for the instruction's own duration.
func (b *Binding) phase(t float64) float64 {
	if !(b.Duration > 0) {
		return 0
	}
	return t / b.Duration * 2 * math.Pi
}

// Advance applies the update rule for elapsed time t (seconds since start).
func (b *Binding) Advance(t float64) {
	o := b.Object
	switch b.Kind {
	case KindCircle:
		o.Rotation.Z = b.phase(t)

	case KindVector:
		a := b.phase(t)
		dir, ok := V(math.Cos(a), math.Sin(a), 0).Normalize()
		if !ok {
			dir = defaultDirection
		}
		b.dir = dir
		SetArrow(o, dir, b.length, b.color)

	case KindMatrix:
		o.Rotation.Y = b.phase(t)

	case KindTransform:
		// absolute in t, not normalized by duration
		o.Rotation.X = t
		o.Rotation.Y = t
		s := 1 + 0.5*math.Sin(t)
		o.Scale = Vec3{s, s, s}

	case KindGraph:
		// drift compounds: each tick adds to the already perturbed points
		for i := range b.points {
			b.points[i].Y += math.Sin(t+float64(i)) * 0.1
		}
		SetPolyline(o, b.points, b.color)
	}
}

// Snapshot is the per-object state after the last Advance.
type Snapshot struct {
	Kind      string `json:"kind"`
	Type      string `json:"type"`
	Rotation  Vec3   `json:"rotation"`
	Scale     Vec3   `json:"scale"`
	Direction *Vec3  `json:"direction,omitempty"`
	Points    []Vec3 `json:"points,omitempty"`
}

func (b *Binding) Snapshot() Snapshot {
	s := Snapshot{
		Kind:     b.Kind.String(),
		Type:     string(b.Type),
		Rotation: b.Object.Rotation,
		Scale:    b.Object.Scale,
	}
	if b.Kind == KindVector {
		d := b.dir
		s.Direction = &d
	}
	if b.Kind == KindGraph {
		s.Points = append([]Vec3(nil), b.points...)
	}
	return s
}

// Scalar picks the one value that best shows an object's motion.
func (s Snapshot) Scalar() float64 {
	switch s.Kind {
	case "circle":
		return s.Rotation.Z
	case "vector":
		if s.Direction != nil {
			return s.Direction.X
		}
	case "matrix":
		return s.Rotation.Y
	case "transform":
		return s.Scale.X
	case "graph":
		if len(s.Points) > 0 {
			return s.Points[0].Y
		}
	}
	return 0
}
