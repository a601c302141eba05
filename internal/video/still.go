package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/ivlev/math2video/internal/config"
	"github.com/ivlev/math2video/internal/renderer"
)

// StillAssembler keeps only the first frame and emits it as PNG. The
// artifact is always labelled CapabilityStill.
type StillAssembler struct{}

func (StillAssembler) Capability() Capability { return CapabilityStill }

func (StillAssembler) Begin(ctx context.Context, p config.ClipParams) (Sink, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("%w: bad clip size %dx%d", ErrEncoding, p.Width, p.Height)
	}
	return &stillSink{params: p}, nil
}

type stillSink struct {
	params config.ClipParams
	first  *image.RGBA
	guard  orderGuard
	done   bool
}

func (s *stillSink) WriteFrame(f renderer.Frame) error {
	if s.done {
		return fmt.Errorf("%w: sink already closed", ErrEncoding)
	}
	if err := s.guard.admit(f, s.params.Width, s.params.Height); err != nil {
		return err
	}
	if s.first == nil {
		// the frame buffer goes back to the pool after this call
		cp := image.NewRGBA(f.Image.Rect)
		copy(cp.Pix, f.Image.Pix)
		s.first = cp
	}
	return nil
}

func (s *stillSink) Close() (Artifact, error) {
	if s.done {
		return Artifact{}, fmt.Errorf("%w: sink already closed", ErrEncoding)
	}
	s.done = true
	if s.first == nil {
		return Artifact{}, fmt.Errorf("%w: no frames written", ErrEncoding)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, s.first); err != nil {
		return Artifact{}, fmt.Errorf("%w: png: %w", ErrEncoding, err)
	}
	return Artifact{
		Data:       buf.Bytes(),
		MimeType:   "image/png",
		Capability: CapabilityStill,
		Frames:     1,
		Captured:   s.guard.next,
		Width:      s.params.Width,
		Height:     s.params.Height,
		Encoder:    "png",
	}, nil
}

func (s *stillSink) Abort() {
	s.done = true
	s.first = nil
}
