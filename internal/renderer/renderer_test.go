package renderer

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/ivlev/math2video/internal/config"
	"github.com/ivlev/math2video/internal/instruction"
	"github.com/ivlev/math2video/internal/scene"
)

func smallConfig() (config.Render, config.Animation) {
	cfg := config.Default()
	cfg.Animation.Width = 160
	cfg.Animation.Height = 90
	return cfg.Render, cfg.Animation
}

func TestCameraProjection(t *testing.T) {
	cam, err := NewCamera(scene.Vec3{Z: 5}, scene.Vec3{}, 75, 0.1, 1000, 160, 90)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(cam.Aspect()-160.0/90.0) > 1e-12 {
		t.Errorf("unexpected aspect %v", cam.Aspect())
	}

	x, y := cam.Screen(cam.View(scene.Vec3{}))
	if math.Abs(x-80) > 1e-9 || math.Abs(y-45) > 1e-9 {
		t.Errorf("origin should project to centre, got (%v, %v)", x, y)
	}

	// half the vertical fov subtends half the frame height
	top := 5 * math.Tan(75*math.Pi/360)
	_, y = cam.Screen(cam.View(scene.Vec3{Y: top}))
	if math.Abs(y) > 1e-9 {
		t.Errorf("top edge should land on y=0, got %v", y)
	}

	xr, _ := cam.Screen(cam.View(scene.Vec3{X: 1}))
	if xr <= 80 {
		t.Errorf("+x should project right of centre, got %v", xr)
	}
}

func TestCameraRejectsBadSetup(t *testing.T) {
	if _, err := NewCamera(scene.Vec3{Z: 5}, scene.Vec3{}, 75, 0.1, 1000, 0, 90); err == nil {
		t.Error("expected error for zero width")
	}
	if _, err := NewCamera(scene.Vec3{}, scene.Vec3{}, 75, 0.1, 1000, 10, 10); err == nil {
		t.Error("expected error when position equals target")
	}
}

func TestCaptureDrawsScene(t *testing.T) {
	r, a := smallConfig()
	capt, err := NewCapturer(r, a)
	if err != nil {
		t.Fatal(err)
	}

	s := scene.Build([]instruction.Instruction{
		{Type: instruction.Transform, Parameters: instruction.Params{"color": 0x00ff00}, Duration: 1},
	}, nil)
	s.Advance(0)

	frame, err := capt.Capture(s, 3, 0.1, 0.1)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	defer frame.Release()

	if frame.Index != 3 || frame.Elapsed != 0.1 {
		t.Errorf("unexpected frame tags %+v", frame)
	}
	if got := frame.Image.RGBAAt(0, 0); got != instruction.RGB(0x1a1a1a) {
		t.Errorf("corner should be clear color, got %v", got)
	}
	if got := frame.Image.RGBAAt(80, 45); got.G < 0x80 || got.R > 0x40 {
		t.Errorf("centre should be covered by the green cube, got %v", got)
	}
}

func TestCaptureIsPure(t *testing.T) {
	r, a := smallConfig()
	capt, err := NewCapturer(r, a)
	if err != nil {
		t.Fatal(err)
	}
	s := scene.Build([]instruction.Instruction{
		{Type: instruction.Vector, Parameters: instruction.Params{}, Duration: 2},
	}, nil)
	s.Advance(0.5)
	before := s.Snapshots()

	f1, err := capt.Capture(s, 0, 0.5, 0.25)
	if err != nil {
		t.Fatal(err)
	}
	pix := append([]byte(nil), f1.Image.Pix...)
	f1.Release()

	f2, err := capt.Capture(s, 0, 0.5, 0.25)
	if err != nil {
		t.Fatal(err)
	}
	defer f2.Release()

	if string(pix) != string(f2.Image.Pix) {
		t.Error("capturing the same state twice gave different pixels")
	}
	if after := s.Snapshots(); after[0].Direction.X != before[0].Direction.X {
		t.Error("capture mutated the scene")
	}
}

func TestCaptureDiscardedScene(t *testing.T) {
	r, a := smallConfig()
	capt, err := NewCapturer(r, a)
	if err != nil {
		t.Fatal(err)
	}
	s := scene.Build(nil, nil)
	s.Discard()
	if _, err := capt.Capture(s, 0, 0, 0); !errors.Is(err, ErrCapture) {
		t.Fatalf("expected ErrCapture, got %v", err)
	}
}

func TestNewCapturerBadClearColor(t *testing.T) {
	r, a := smallConfig()
	r.ClearColor = "not-a-color"
	if _, err := NewCapturer(r, a); !errors.Is(err, ErrCapture) {
		t.Fatalf("expected ErrCapture, got %v", err)
	}
}

func TestOverlays(t *testing.T) {
	r, a := smallConfig()
	a.Width, a.Height = 320, 180
	r.HUD = true
	r.StampURL = "https://example.com/render/42"
	capt, err := NewCapturer(r, a)
	if err != nil {
		t.Fatal(err)
	}
	frame, err := capt.Capture(scene.Build(nil, nil), 0, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer frame.Release()

	hud := false
	for y := 8; y < 24 && !hud; y++ {
		for x := 8; x < 120; x++ {
			if frame.Image.RGBAAt(x, y) == hudColor {
				hud = true
				break
			}
		}
	}
	if !hud {
		t.Error("expected HUD text pixels in the top-left corner")
	}

	white := 0
	for y := 180 - 38; y < 180-8; y++ {
		for x := 320 - 38; x < 320-8; x++ {
			if frame.Image.RGBAAt(x, y) == (color.RGBA{0xff, 0xff, 0xff, 0xff}) {
				white++
			}
		}
	}
	if white == 0 {
		t.Error("expected QR stamp in the bottom-right corner")
	}
}

func TestClipRect(t *testing.T) {
	square := []point{{-10, -10}, {10, -10}, {10, 10}, {-10, 10}}
	got := clipRect(square, 0, 0, 5, 5)
	if len(got) != 4 {
		t.Fatalf("expected 4 vertices, got %v", got)
	}
	for _, p := range got {
		if p.X < 0 || p.X > 5 || p.Y < 0 || p.Y > 5 {
			t.Errorf("vertex outside clip rect: %v", p)
		}
	}
	if out := clipRect(square, 20, 20, 30, 30); len(out) != 0 {
		t.Errorf("expected empty result, got %v", out)
	}
}

func TestClipNear(t *testing.T) {
	tri := []scene.Vec3{{0, 0, -1}, {1, 0, 1}, {-1, 0, 1}}
	got := clipNear(tri, 0.1)
	for _, v := range got {
		if v.Z < 0.1-1e-12 {
			t.Errorf("vertex behind near plane: %v", v)
		}
	}
	if len(got) != 4 {
		t.Errorf("expected quad after clipping one corner, got %d vertices", len(got))
	}
}

type shortPool struct{ returned []*image.RGBA }

func (p *shortPool) Get(rect image.Rectangle) *image.RGBA {
	return &image.RGBA{Rect: rect, Stride: rect.Dx() * 4, Pix: make([]uint8, 4)}
}

func (p *shortPool) Put(img *image.RGBA) { p.returned = append(p.returned, img) }

func TestCaptureReturnsBadBuffer(t *testing.T) {
	r, a := smallConfig()
	capt, err := NewCapturer(r, a)
	if err != nil {
		t.Fatal(err)
	}
	pool := &shortPool{}
	capt.buffers = pool

	s := scene.Build([]instruction.Instruction{{Type: instruction.Circle, Parameters: instruction.Params{}, Duration: 1}}, nil)
	defer s.Discard()
	if _, err := capt.Capture(s, 0, 0, 0); !errors.Is(err, ErrCapture) {
		t.Fatalf("expected ErrCapture, got %v", err)
	}
	if len(pool.returned) != 1 {
		t.Errorf("expected the bad buffer to go back to the pool, got %d puts", len(pool.returned))
	}
}
