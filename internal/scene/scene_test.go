package scene

import (
	"bytes"
	"log/slog"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/ivlev/math2video/internal/instruction"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func TestTransformScaleAtHalfPi(t *testing.T) {
	s := Build([]instruction.Instruction{
		{Type: instruction.Transform, Parameters: instruction.Params{"scale": 2.0}, Duration: 5},
	}, nil)

	if got := s.Bindings[0].Object.Scale.X; got != 2 {
		t.Fatalf("initial scale should come from parameters, got %v", got)
	}

	s.Advance(math.Pi / 2)
	o := s.Bindings[0].Object
	if !near(o.Scale.X, 1.5) || !near(o.Scale.Y, 1.5) || !near(o.Scale.Z, 1.5) {
		t.Errorf("expected scale 1.5, got %+v", o.Scale)
	}
	if !near(o.Rotation.X, math.Pi/2) || !near(o.Rotation.Y, math.Pi/2) {
		t.Errorf("expected rotation x=y=t, got %+v", o.Rotation)
	}
}

func TestTransformKeepsRotateZ(t *testing.T) {
	s := Build([]instruction.Instruction{
		{Type: instruction.Transform, Parameters: instruction.Params{"rotateX": 1.0, "rotateZ": 0.25}, Duration: 5},
	}, nil)
	s.Advance(0)
	r := s.Bindings[0].Object.Rotation
	if r.X != 0 || r.Z != 0.25 {
		t.Errorf("expected x overwritten and z kept, got %+v", r)
	}
}

func TestNormalizedRotations(t *testing.T) {
	s := Build([]instruction.Instruction{
		{Type: instruction.Circle, Parameters: instruction.Params{}, Duration: 4},
		{Type: instruction.Matrix, Parameters: instruction.Params{}, Duration: 2},
	}, nil)

	s.Advance(1)
	if got := s.Bindings[0].Object.Rotation.Z; !near(got, math.Pi/2) {
		t.Errorf("circle: expected pi/2 at t=1,d=4, got %v", got)
	}
	if got := s.Bindings[1].Object.Rotation.Y; !near(got, math.Pi) {
		t.Errorf("matrix: expected pi at t=1,d=2, got %v", got)
	}
}

func TestVectorDirection(t *testing.T) {
	s := Build([]instruction.Instruction{
		{Type: instruction.Vector, Parameters: instruction.Params{"x": 3.0, "y": 4.0, "length": 2.0}, Duration: 4},
	}, nil)
	snap := s.Bindings[0].Snapshot()
	if !near(snap.Direction.X, 0.6) || !near(snap.Direction.Y, 0.8) {
		t.Errorf("initial direction should be normalized, got %+v", snap.Direction)
	}

	s.Advance(1) // quarter turn
	snap = s.Bindings[0].Snapshot()
	if !near(snap.Direction.X, 0) || !near(snap.Direction.Y, 1) || snap.Direction.Z != 0 {
		t.Errorf("expected (0,1,0), got %+v", snap.Direction)
	}

	// shaft ends at the neck, 0.8 of the length
	shaft := s.Bindings[0].Object.Segments[0]
	if !near(shaft.B.Y, 1.6) {
		t.Errorf("expected neck at y=1.6, got %+v", shaft.B)
	}
}

func TestZeroVectorFallsBack(t *testing.T) {
	s := Build([]instruction.Instruction{
		{Type: instruction.Vector, Parameters: instruction.Params{"x": 0.0, "y": 0.0, "z": 0.0}, Duration: 1},
	}, nil)
	if d := s.Bindings[0].Snapshot().Direction; *d != (Vec3{0, 1, 0}) {
		t.Errorf("expected default direction, got %+v", d)
	}
}

func TestGraphDriftIsCumulative(t *testing.T) {
	// Known quirk: every tick adds sin(t+i)*0.1 to the already moved point,
	// so two ticks at the same t move it twice.
	s := Build([]instruction.Instruction{
		{Type: instruction.Graph, Parameters: instruction.Params{}, Duration: 5},
	}, nil)

	s.Advance(1)
	s.Advance(1)
	pts := s.Bindings[0].Snapshot().Points
	if len(pts) != 2 {
		t.Fatalf("expected default two-point line, got %v", pts)
	}
	want0 := -1 + 2*math.Sin(1)*0.1
	want1 := 1 + 2*math.Sin(2)*0.1
	if !near(pts[0].Y, want0) || !near(pts[1].Y, want1) {
		t.Errorf("expected cumulative drift (%v, %v), got (%v, %v)", want0, want1, pts[0].Y, pts[1].Y)
	}
	if pts[0].X != -1 || pts[1].X != 1 {
		t.Errorf("x must not drift, got %+v", pts)
	}
}

func TestUnknownTypeIsPlaceholder(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	s := Build([]instruction.Instruction{
		{Type: "spiral", Parameters: instruction.Params{}, Duration: 2},
		{Type: instruction.Circle, Parameters: instruction.Params{}, Duration: 2},
	}, logger)

	if len(s.Bindings) != 2 || s.Placeholders() != 1 {
		t.Fatalf("expected 2 bindings with 1 placeholder, got %d/%d", len(s.Bindings), s.Placeholders())
	}
	ph := s.Bindings[0]
	if ph.Kind != KindPlaceholder || !ph.Object.Empty() {
		t.Errorf("expected empty placeholder, got %+v", ph)
	}
	before := ph.Snapshot()
	s.Advance(1.3)
	if !reflect.DeepEqual(before, s.Bindings[0].Snapshot()) {
		t.Error("placeholder must not change on advance")
	}
	if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), "spiral") {
		t.Errorf("expected warning naming the type, got %q", buf.String())
	}
}

func TestTickZeroIsIdentity(t *testing.T) {
	s := Build([]instruction.Instruction{
		{Type: instruction.Circle, Parameters: instruction.Params{}, Duration: 3},
		{Type: instruction.Matrix, Parameters: instruction.Params{}, Duration: 5},
		{Type: instruction.Vector, Parameters: instruction.Params{}, Duration: 5},
	}, nil)
	s.Advance(0)
	snaps := s.Snapshots()
	if snaps[0].Rotation.Z != 0 || snaps[1].Rotation.Y != 0 {
		t.Errorf("rotations at t=0 should be zero: %+v", snaps)
	}
	if *snaps[2].Direction != (Vec3{1, 0, 0}) {
		t.Errorf("vector at t=0 should point along x, got %+v", snaps[2].Direction)
	}
}

func TestGeometryShapes(t *testing.T) {
	if got := len(Disk(1, 32, instruction.RGB(0)).Segments); got != 64 {
		t.Errorf("disk: expected 64 segments, got %d", got)
	}
	grid := Grid(2, 10, instruction.RGB(0x888888), instruction.RGB(0x444444))
	if got := len(grid.Segments); got != 22 {
		t.Errorf("grid: expected 22 lines, got %d", got)
	}
	if grid.Segments[10].Color != instruction.RGB(0x888888) || grid.Segments[0].Color != instruction.RGB(0x444444) {
		t.Error("grid: centre line colors wrong")
	}
	cube := Cube(instruction.RGB(0x00ff00))
	if len(cube.Faces) != 6 || len(cube.Segments) != 12 {
		t.Errorf("cube: unexpected geometry %d faces %d edges", len(cube.Faces), len(cube.Segments))
	}
	arrow := Arrow(Vec3{0, 1, 0}, 1, instruction.RGB(0))
	if len(arrow.Faces) != arrowHeadSides+1 {
		t.Errorf("arrow: expected %d faces, got %d", arrowHeadSides+1, len(arrow.Faces))
	}
}

func TestRotateEulerOrder(t *testing.T) {
	// X then Z would give a different answer; XYZ order applies Z first.
	v := Vec3{1, 0, 0}.RotateEuler(Vec3{math.Pi / 2, 0, math.Pi / 2})
	if !near(v.X, 0) || !near(v.Y, 0) || !near(v.Z, 1) {
		t.Errorf("unexpected rotation result %+v", v)
	}
}

func TestDiscard(t *testing.T) {
	s := Build([]instruction.Instruction{{Type: instruction.Circle, Parameters: instruction.Params{}, Duration: 1}}, nil)
	s.Discard()
	if !s.Discarded() || len(s.Bindings) != 0 {
		t.Error("discard should drop all bindings")
	}
}

func TestGeometryLimits(t *testing.T) {
	grid := Grid(2, 1_000_000_000, instruction.RGB(0x888888), instruction.RGB(0x444444))
	if got, want := len(grid.Segments), 2*(MaxGridDivisions+1); got != want {
		t.Errorf("grid: expected %d lines, got %d", want, got)
	}

	pts := make([]any, MaxGraphPoints+500)
	for i := range pts {
		pts[i] = []any{float64(i), 0.0}
	}
	s := Build([]instruction.Instruction{
		{Type: instruction.Matrix, Parameters: instruction.Params{"divisions": 1e9}, Duration: 1},
		{Type: instruction.Graph, Parameters: instruction.Params{"points": pts}, Duration: 1},
	}, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	defer s.Discard()

	if got, want := len(s.Bindings[0].Object.Segments), 2*(MaxGridDivisions+1); got != want {
		t.Errorf("matrix: expected %d lines, got %d", want, got)
	}
	if got := len(s.Bindings[1].Snapshot().Points); got != MaxGraphPoints {
		t.Errorf("graph: expected %d points, got %d", MaxGraphPoints, got)
	}
}
