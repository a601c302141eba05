package renderer

import (
	"fmt"
	"math"

	"github.com/ivlev/math2video/internal/scene"
)

// Camera is a fixed perspective camera looking at Target. FOV is the
// vertical field of view in degrees; the horizontal one follows the aspect.
type Camera struct {
	Position, Target, Up scene.Vec3
	FOV, Near, Far       float64
	Width, Height        int

	right, up, forward scene.Vec3
	focal              float64
}

func NewCamera(position, target scene.Vec3, fov, near, far float64, width, height int) (*Camera, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("camera: viewport must be positive, got %dx%d", width, height)
	}
	if fov <= 0 || fov >= 180 || near <= 0 || far <= near {
		return nil, fmt.Errorf("camera: bad projection fov=%v near=%v far=%v", fov, near, far)
	}
	c := &Camera{
		Position: position,
		Target:   target,
		Up:       scene.Vec3{Y: 1},
		FOV:      fov,
		Near:     near,
		Far:      far,
		Width:    width,
		Height:   height,
	}

	forward, ok := target.Sub(position).Normalize()
	if !ok {
		return nil, fmt.Errorf("camera: position and target coincide")
	}
	right, ok := forward.Cross(c.Up).Normalize()
	if !ok {
		// looking straight along Y
		c.Up = scene.Vec3{Z: -1}
		right, _ = forward.Cross(c.Up).Normalize()
	}
	c.forward = forward
	c.right = right
	c.up = right.Cross(forward)
	c.focal = float64(height) / 2 / math.Tan(fov*math.Pi/360)
	return c, nil
}

// Aspect is width over height.
func (c *Camera) Aspect() float64 {
	return float64(c.Width) / float64(c.Height)
}

// View maps a world point into camera space: x right, y up, z depth in
// front of the camera.
func (c *Camera) View(p scene.Vec3) scene.Vec3 {
	d := p.Sub(c.Position)
	return scene.Vec3{X: d.Dot(c.right), Y: d.Dot(c.up), Z: d.Dot(c.forward)}
}

// Screen projects a camera-space point with z >= Near into pixels.
func (c *Camera) Screen(v scene.Vec3) (float64, float64) {
	x := float64(c.Width)/2 + c.focal*v.X/v.Z
	y := float64(c.Height)/2 - c.focal*v.Y/v.Z
	return x, y
}
