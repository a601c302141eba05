package renderer

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/ivlev/math2video/internal/scene"
)

type point struct{ X, Y float64 }

// primitive is one projected polygon ready to fill.
type primitive struct {
	poly  []point
	depth float64
	color color.RGBA
}

// clipNear keeps the part of a camera-space polygon with z >= near.
func clipNear(in []scene.Vec3, near float64) []scene.Vec3 {
	if len(in) == 0 {
		return nil
	}
	out := make([]scene.Vec3, 0, len(in)+2)
	prev := in[len(in)-1]
	prevIn := prev.Z >= near
	for _, cur := range in {
		curIn := cur.Z >= near
		if curIn != prevIn {
			t := (near - prev.Z) / (cur.Z - prev.Z)
			out = append(out, prev.Add(cur.Sub(prev).Scale(t)))
		}
		if curIn {
			out = append(out, cur)
		}
		prev, prevIn = cur, curIn
	}
	return out
}

// clipSegmentNear trims a camera-space segment to z >= near.
func clipSegmentNear(a, b scene.Vec3, near float64) (scene.Vec3, scene.Vec3, bool) {
	if a.Z < near && b.Z < near {
		return a, b, false
	}
	if a.Z < near {
		a = a.Add(b.Sub(a).Scale((near - a.Z) / (b.Z - a.Z)))
	} else if b.Z < near {
		b = b.Add(a.Sub(b).Scale((near - b.Z) / (a.Z - b.Z)))
	}
	return a, b, true
}

// clipRect runs Sutherland-Hodgman against an axis-aligned rectangle.
func clipRect(poly []point, minX, minY, maxX, maxY float64) []point {
	edges := []struct {
		inside func(p point) bool
		cross  func(a, b point) point
	}{
		{func(p point) bool { return p.X >= minX }, func(a, b point) point {
			t := (minX - a.X) / (b.X - a.X)
			return point{minX, a.Y + t*(b.Y-a.Y)}
		}},
		{func(p point) bool { return p.X <= maxX }, func(a, b point) point {
			t := (maxX - a.X) / (b.X - a.X)
			return point{maxX, a.Y + t*(b.Y-a.Y)}
		}},
		{func(p point) bool { return p.Y >= minY }, func(a, b point) point {
			t := (minY - a.Y) / (b.Y - a.Y)
			return point{a.X + t*(b.X-a.X), minY}
		}},
		{func(p point) bool { return p.Y <= maxY }, func(a, b point) point {
			t := (maxY - a.Y) / (b.Y - a.Y)
			return point{a.X + t*(b.X-a.X), maxY}
		}},
	}

	out := poly
	for _, e := range edges {
		if len(out) == 0 {
			return nil
		}
		in := out
		out = make([]point, 0, len(in)+2)
		prev := in[len(in)-1]
		for _, cur := range in {
			if e.inside(cur) {
				if !e.inside(prev) {
					out = append(out, e.cross(prev, cur))
				}
				out = append(out, cur)
			} else if e.inside(prev) {
				out = append(out, e.cross(prev, cur))
			}
			prev = cur
		}
	}
	return out
}

// strokeQuad widens a screen-space segment into a quad of the given width.
func strokeQuad(a, b point, width float64) []point {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	h := width / 2
	if l < 1e-9 {
		return []point{{a.X - h, a.Y - h}, {a.X + h, a.Y - h}, {a.X + h, a.Y + h}, {a.X - h, a.Y + h}}
	}
	nx, ny := -dy/l*h, dx/l*h
	return []point{
		{a.X + nx, a.Y + ny},
		{b.X + nx, b.Y + ny},
		{b.X - nx, b.Y - ny},
		{a.X - nx, a.Y - ny},
	}
}

func finite(p point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// filler rasterizes polygons into a frame through a reusable coverage mask.
type filler struct {
	raster *vector.Rasterizer
	mask   *image.Alpha
}

func newFiller(width, height int) *filler {
	r := vector.NewRasterizer(width, height)
	r.DrawOp = draw.Src
	return &filler{
		raster: r,
		mask:   image.NewAlpha(image.Rect(0, 0, width, height)),
	}
}

// fill composites one already clipped polygon over dst.
func (f *filler) fill(dst *image.RGBA, poly []point, c color.RGBA) {
	if len(poly) < 3 {
		return
	}
	minX, minY := poly[0].X, poly[0].Y
	maxX, maxY := minX, minY
	for _, p := range poly[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	bbox := image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	).Intersect(dst.Rect)
	if bbox.Empty() {
		return
	}

	ox, oy := float64(bbox.Min.X), float64(bbox.Min.Y)
	f.raster.Reset(bbox.Dx(), bbox.Dy())
	f.raster.MoveTo(float32(poly[0].X-ox), float32(poly[0].Y-oy))
	for _, p := range poly[1:] {
		f.raster.LineTo(float32(p.X-ox), float32(p.Y-oy))
	}
	f.raster.ClosePath()
	f.raster.Draw(f.mask, bbox, image.Opaque, image.Point{})

	draw.DrawMask(dst, bbox, image.NewUniform(c), image.Point{}, f.mask, bbox.Min, draw.Over)
}
