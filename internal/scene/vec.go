package scene

import "math"

type Vec3 struct {
	X, Y, Z float64
}

func V(x, y, z float64) Vec3 { return Vec3{x, y, z} }

func (a Vec3) Add(b Vec3) Vec3      { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3      { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Mul(b Vec3) Vec3      { return Vec3{a.X * b.X, a.Y * b.Y, a.Z * b.Z} }
func (a Vec3) Dot(b Vec3) float64   { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func (a Vec3) Len() float64         { return math.Sqrt(a.Dot(a)) }

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Normalize returns the unit vector and false for a zero or non-finite input.
func (a Vec3) Normalize() (Vec3, bool) {
	l := a.Len()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return Vec3{}, false
	}
	return a.Scale(1 / l), true
}

// RotateEuler applies an XYZ Euler rotation: Z first, then Y, then X.
func (a Vec3) RotateEuler(r Vec3) Vec3 {
	v := a
	if r.Z != 0 {
		s, c := math.Sincos(r.Z)
		v = Vec3{v.X*c - v.Y*s, v.X*s + v.Y*c, v.Z}
	}
	if r.Y != 0 {
		s, c := math.Sincos(r.Y)
		v = Vec3{v.X*c + v.Z*s, v.Y, -v.X*s + v.Z*c}
	}
	if r.X != 0 {
		s, c := math.Sincos(r.X)
		v = Vec3{v.X, v.Y*c - v.Z*s, v.Y*s + v.Z*c}
	}
	return v
}

// Basis returns two unit vectors perpendicular to n and to each other.
func Basis(n Vec3) (Vec3, Vec3) {
	ref := Vec3{0, 0, 1}
	if math.Abs(n.Z) > 0.9 {
		ref = Vec3{1, 0, 0}
	}
	u, _ := n.Cross(ref).Normalize()
	w, _ := n.Cross(u).Normalize()
	return u, w
}
