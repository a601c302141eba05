package scene

import (
	"image/color"
	"math"
)

// Segment is a line in object space.
type Segment struct {
	A, B  Vec3
	Color color.RGBA
}

// Face is a flat convex polygon in object space.
type Face struct {
	Points []Vec3
	Color  color.RGBA
}

// Object is one renderable scene node. Geometry is stored in object space and
// transformed by Scale, then Rotation (XYZ Euler), then Position.
type Object struct {
	Name     string
	Position Vec3
	Rotation Vec3
	Scale    Vec3
	Segments []Segment
	Faces    []Face
}

func newObject(name string) *Object {
	return &Object{Name: name, Scale: Vec3{1, 1, 1}}
}

// World maps an object-space point into world space.
func (o *Object) World(p Vec3) Vec3 {
	return p.Mul(o.Scale).RotateEuler(o.Rotation).Add(o.Position)
}

// Empty reports whether the object has nothing to draw.
func (o *Object) Empty() bool {
	return len(o.Segments) == 0 && len(o.Faces) == 0
}

// Disk is a flat circle in the XY plane drawn as a wireframe: rim plus the
// spokes of its triangle fan.
func Disk(radius float64, segments int, c color.RGBA) *Object {
	o := newObject("circle")
	if segments < 3 {
		segments = 3
	}
	rim := make([]Vec3, segments)
	for i := range rim {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		rim[i] = Vec3{radius * math.Cos(theta), radius * math.Sin(theta), 0}
	}
	for i := range rim {
		o.Segments = append(o.Segments,
			Segment{A: rim[i], B: rim[(i+1)%segments], Color: c},
			Segment{A: Vec3{}, B: rim[i], Color: c},
		)
	}
	return o
}

// Arrow builds a shaft and cone head from the origin along dir. The head is
// 0.2 of the length, its width 0.2 of the head length.
func Arrow(dir Vec3, length float64, c color.RGBA) *Object {
	o := newObject("vector")
	SetArrow(o, dir, length, c)
	return o
}

const arrowHeadSides = 5

// SetArrow rebuilds arrow geometry in place. dir must be a unit vector.
func SetArrow(o *Object, dir Vec3, length float64, c color.RGBA) {
	headLength := 0.2 * length
	radius := 0.5 * 0.2 * headLength
	neck := dir.Scale(length - headLength)
	tip := dir.Scale(length)

	o.Segments = append(o.Segments[:0], Segment{A: Vec3{}, B: neck, Color: c})
	o.Faces = o.Faces[:0]

	u, w := Basis(dir)
	ring := make([]Vec3, arrowHeadSides)
	for i := range ring {
		theta := 2 * math.Pi * float64(i) / arrowHeadSides
		off := u.Scale(radius * math.Cos(theta)).Add(w.Scale(radius * math.Sin(theta)))
		ring[i] = neck.Add(off)
	}
	for i := range ring {
		o.Faces = append(o.Faces, Face{Points: []Vec3{tip, ring[i], ring[(i+1)%arrowHeadSides]}, Color: c})
	}
	o.Faces = append(o.Faces, Face{Points: ring, Color: c})
}

// Grid is a square lattice in the XZ plane. The centre lines use c1, the
// rest c2. Divisions are clamped to [1, MaxGridDivisions].
func Grid(size float64, divisions int, c1, c2 color.RGBA) *Object {
	o := newObject("matrix")
	divisions = min(max(divisions, 1), MaxGridDivisions)
	half := size / 2
	step := size / float64(divisions)
	centre := divisions / 2
	for i := 0; i <= divisions; i++ {
		k := -half + float64(i)*step
		c := c2
		if i == centre {
			c = c1
		}
		o.Segments = append(o.Segments,
			Segment{A: Vec3{-half, 0, k}, B: Vec3{half, 0, k}, Color: c},
			Segment{A: Vec3{k, 0, -half}, B: Vec3{k, 0, half}, Color: c},
		)
	}
	return o
}

// Cube is a solid unit cube centred on the origin with darker edges.
func Cube(c color.RGBA) *Object {
	o := newObject("transform")
	h := 0.5
	v := [8]Vec3{
		{-h, -h, -h}, {h, -h, -h}, {h, h, -h}, {-h, h, -h},
		{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h},
	}
	quads := [6][4]int{
		{0, 1, 2, 3}, {4, 5, 6, 7}, {0, 1, 5, 4},
		{3, 2, 6, 7}, {0, 3, 7, 4}, {1, 2, 6, 5},
	}
	for _, q := range quads {
		o.Faces = append(o.Faces, Face{Points: []Vec3{v[q[0]], v[q[1]], v[q[2]], v[q[3]]}, Color: c})
	}
	edge := shade(c, 0.55)
	edges := [12][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}
	for _, e := range edges {
		o.Segments = append(o.Segments, Segment{A: v[e[0]], B: v[e[1]], Color: edge})
	}
	return o
}

// Polyline connects consecutive points.
func Polyline(points []Vec3, c color.RGBA) *Object {
	o := newObject("graph")
	SetPolyline(o, points, c)
	return o
}

func SetPolyline(o *Object, points []Vec3, c color.RGBA) {
	o.Segments = o.Segments[:0]
	for i := 1; i < len(points); i++ {
		o.Segments = append(o.Segments, Segment{A: points[i-1], B: points[i], Color: c})
	}
}

// Placeholder has no geometry.
func Placeholder(name string) *Object {
	return newObject(name)
}

func shade(c color.RGBA, f float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * f),
		G: uint8(float64(c.G) * f),
		B: uint8(float64(c.B) * f),
		A: c.A,
	}
}
