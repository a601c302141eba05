package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"math"

	"github.com/ivlev/math2video/internal/config"
	"github.com/ivlev/math2video/internal/renderer"
)

// cubePalette is the 6x6x6 web-safe color cube. Frames are mapped onto it by
// direct index arithmetic, which keeps encoding linear in the pixel count.
var cubePalette = func() color.Palette {
	p := make(color.Palette, 0, 216)
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				p = append(p, color.RGBA{uint8(r * 51), uint8(g * 51), uint8(b * 51), 0xff})
			}
		}
	}
	return p
}()

// GIFAssembler encodes every frame into an animated GIF. Used when ffmpeg
// is unavailable and the configured fallback asks for animation.
type GIFAssembler struct{}

func (GIFAssembler) Capability() Capability { return CapabilityAnimation }

func (GIFAssembler) Begin(ctx context.Context, p config.ClipParams) (Sink, error) {
	if p.Width <= 0 || p.Height <= 0 || p.FPS <= 0 {
		return nil, fmt.Errorf("%w: bad clip params %dx%d@%d", ErrEncoding, p.Width, p.Height, p.FPS)
	}
	return &gifSink{params: p, anim: &gif.GIF{}}, nil
}

type gifSink struct {
	params config.ClipParams
	anim   *gif.GIF
	guard  orderGuard
	done   bool
}

func (s *gifSink) WriteFrame(f renderer.Frame) error {
	if s.done {
		return fmt.Errorf("%w: sink already closed", ErrEncoding)
	}
	if err := s.guard.admit(f, s.params.Width, s.params.Height); err != nil {
		return err
	}
	s.anim.Image = append(s.anim.Image, quantize(f.Image))
	s.anim.Delay = append(s.anim.Delay, frameDelay(f.Index, s.params.FPS))
	return nil
}

func (s *gifSink) Close() (Artifact, error) {
	if s.done {
		return Artifact{}, fmt.Errorf("%w: sink already closed", ErrEncoding)
	}
	s.done = true
	n := len(s.anim.Image)
	if n == 0 {
		return Artifact{}, fmt.Errorf("%w: no frames written", ErrEncoding)
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, s.anim); err != nil {
		return Artifact{}, fmt.Errorf("%w: gif: %w", ErrEncoding, err)
	}
	s.anim = nil
	return Artifact{
		Data:       buf.Bytes(),
		MimeType:   "image/gif",
		Capability: CapabilityAnimation,
		Frames:     n,
		Captured:   n,
		Duration:   float64(n) / float64(s.params.FPS),
		Width:      s.params.Width,
		Height:     s.params.Height,
		Encoder:    "gif",
	}, nil
}

func (s *gifSink) Abort() {
	s.done = true
	s.anim = nil
}

// frameDelay spreads the 10ms GIF timer so the running total tracks the
// real clock: at 30 fps delays alternate 3,3,4.
func frameDelay(index, fps int) int {
	at := func(i int) int { return int(math.Round(float64(i) * 100 / float64(fps))) }
	d := at(index+1) - at(index)
	if d < 2 {
		// most viewers clamp anything below 2 to 10
		d = 2
	}
	return d
}

func quantize(src *image.RGBA) *image.Paletted {
	b := src.Bounds()
	dst := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), cubePalette)
	for y := 0; y < b.Dy(); y++ {
		row := src.Pix[(y)*src.Stride : (y)*src.Stride+b.Dx()*4]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+b.Dx()]
		for x := range out {
			r, g, bl := row[x*4], row[x*4+1], row[x*4+2]
			out[x] = uint8(level(r)*36 + level(g)*6 + level(bl))
		}
	}
	return dst
}

func level(v uint8) int {
	return (int(v) + 25) / 51
}
