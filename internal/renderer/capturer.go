package renderer

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sort"

	"github.com/ivlev/math2video/internal/config"
	"github.com/ivlev/math2video/internal/instruction"
	"github.com/ivlev/math2video/internal/scene"
	"github.com/ivlev/math2video/internal/system"
)

var ErrCapture = errors.New("frame capture failed")

// Capturer rasterizes scene state into RGBA frames with a fixed camera. One
// capturer serves one render; it keeps scratch buffers between calls.
type Capturer struct {
	cam       *Camera
	clear     color.RGBA
	lineWidth float64
	hud       bool
	stamp     image.Image

	fill    *filler
	prims   []primitive
	buffers bufferPool
}

type bufferPool interface {
	Get(rect image.Rectangle) *image.RGBA
	Put(img *image.RGBA)
}

// sharedPool is the process-wide frame pool; Frame.Release returns to it.
type sharedPool struct{}

func (sharedPool) Get(rect image.Rectangle) *image.RGBA { return system.GetImage(rect) }
func (sharedPool) Put(img *image.RGBA)                  { system.PutImage(img) }

func NewCapturer(r config.Render, a config.Animation) (*Capturer, error) {
	pos := scene.Vec3{X: r.Camera[0], Y: r.Camera[1], Z: r.Camera[2]}
	cam, err := NewCamera(pos, scene.Vec3{}, r.FOV, r.Near, r.Far, a.Width, a.Height)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCapture, err)
	}

	clear := instruction.RGB(0x1a1a1a)
	if r.ClearColor != "" {
		hex, ok := instruction.ParseColor(r.ClearColor)
		if !ok {
			return nil, fmt.Errorf("%w: bad clear color %q", ErrCapture, r.ClearColor)
		}
		clear = instruction.RGB(hex)
	}

	lw := r.LineWidth
	if lw <= 0 {
		lw = 1.5
	}

	c := &Capturer{
		cam:       cam,
		clear:     clear,
		lineWidth: lw,
		hud:       r.HUD,
		fill:      newFiller(a.Width, a.Height),
		buffers:   sharedPool{},
	}
	if r.StampURL != "" {
		if c.stamp, err = renderStamp(r.StampURL, a.Width, a.Height); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Capturer) Camera() *Camera { return c.cam }

// Capture draws the current scene. It never mutates the scene.
func (c *Capturer) Capture(s *scene.Scene, index int, elapsed, normalized float64) (Frame, error) {
	if s == nil || s.Discarded() {
		return Frame{}, fmt.Errorf("%w: frame %d: no scene", ErrCapture, index)
	}

	rect := image.Rect(0, 0, c.cam.Width, c.cam.Height)
	img := c.buffers.Get(rect)
	if img.Rect != rect || len(img.Pix) != rect.Dx()*rect.Dy()*4 {
		c.buffers.Put(img)
		return Frame{}, fmt.Errorf("%w: frame %d: buffer is %v, want %v", ErrCapture, index, img.Rect, rect)
	}
	draw.Draw(img, rect, image.NewUniform(c.clear), image.Point{}, draw.Src)

	if err := c.collect(s); err != nil {
		c.buffers.Put(img)
		return Frame{}, fmt.Errorf("%w: frame %d: %w", ErrCapture, index, err)
	}
	for _, p := range c.prims {
		c.fill.fill(img, p.poly, p.color)
	}

	if c.hud {
		drawHUD(img, index, elapsed)
	}
	if c.stamp != nil {
		drawStamp(img, c.stamp)
	}

	return Frame{Index: index, Elapsed: elapsed, Normalized: normalized, Image: img}, nil
}

// collect projects every face and segment and sorts back to front.
func (c *Capturer) collect(s *scene.Scene) error {
	c.prims = c.prims[:0]
	w, h := float64(c.cam.Width), float64(c.cam.Height)
	pad := c.lineWidth + 1

	for _, o := range s.Objects() {
		if o == nil || o.Empty() {
			continue
		}

		for _, f := range o.Faces {
			view := make([]scene.Vec3, len(f.Points))
			for i, p := range f.Points {
				view[i] = c.cam.View(o.World(p))
			}
			view = clipNear(view, c.cam.Near)
			if len(view) < 3 || allBeyond(view, c.cam.Far) {
				continue
			}
			poly := make([]point, len(view))
			depth := 0.0
			for i, v := range view {
				x, y := c.cam.Screen(v)
				poly[i] = point{x, y}
				depth += v.Z
			}
			if !allFinite(poly) {
				return fmt.Errorf("non-finite projection in %s", o.Name)
			}
			poly = clipRect(poly, -pad, -pad, w+pad, h+pad)
			if len(poly) >= 3 {
				c.prims = append(c.prims, primitive{poly: poly, depth: depth / float64(len(view)), color: f.Color})
			}
		}

		for _, seg := range o.Segments {
			a, b, ok := clipSegmentNear(c.cam.View(o.World(seg.A)), c.cam.View(o.World(seg.B)), c.cam.Near)
			if !ok || (a.Z > c.cam.Far && b.Z > c.cam.Far) {
				continue
			}
			ax, ay := c.cam.Screen(a)
			bx, by := c.cam.Screen(b)
			quad := strokeQuad(point{ax, ay}, point{bx, by}, c.lineWidth)
			if !allFinite(quad) {
				return fmt.Errorf("non-finite projection in %s", o.Name)
			}
			quad = clipRect(quad, -pad, -pad, w+pad, h+pad)
			if len(quad) >= 3 {
				// lines sit slightly in front of faces at the same depth
				c.prims = append(c.prims, primitive{poly: quad, depth: (a.Z+b.Z)/2 - 1e-3, color: seg.Color})
			}
		}
	}

	sort.SliceStable(c.prims, func(i, j int) bool { return c.prims[i].depth > c.prims[j].depth })
	return nil
}

func allBeyond(view []scene.Vec3, far float64) bool {
	for _, v := range view {
		if v.Z <= far {
			return false
		}
	}
	return true
}

func allFinite(poly []point) bool {
	for _, p := range poly {
		if !finite(p) {
			return false
		}
	}
	return true
}
