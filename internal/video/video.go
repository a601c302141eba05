package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"

	"github.com/ivlev/math2video/internal/config"
	"github.com/ivlev/math2video/internal/renderer"
)

var ErrEncoding = errors.New("encoding failed")

// Capability says what kind of payload an artifact really holds.
type Capability string

const (
	CapabilityVideo     Capability = "video"     // multi-frame container from ffmpeg
	CapabilityAnimation Capability = "animation" // multi-frame GIF
	CapabilityStill     Capability = "still"     // first frame only
)

// Artifact is the only durable output of a render.
type Artifact struct {
	Data       []byte
	MimeType   string
	Capability Capability
	Frames     int     // frames in the payload
	Captured   int     // frames the assembler received
	Duration   float64 // seconds of playback, 0 for a still
	Width      int
	Height     int
	Encoder    string
}

// Ext is the file extension matching the mime type.
func (a Artifact) Ext() string {
	switch a.MimeType {
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "image/gif":
		return ".gif"
	case "image/png":
		return ".png"
	default:
		return ".bin"
	}
}

// Sink accepts frames strictly in index order starting at 0.
type Sink interface {
	WriteFrame(f renderer.Frame) error
	Close() (Artifact, error)
	// Abort drops everything written so far. Safe to call after Close.
	Abort()
}

// Assembler opens sinks for one capability tier.
type Assembler interface {
	Capability() Capability
	Begin(ctx context.Context, p config.ClipParams) (Sink, error)
}

// Assemble writes a complete frame list through a fresh sink. Frames are not
// released.
func Assemble(ctx context.Context, a Assembler, frames []renderer.Frame, p config.ClipParams) (Artifact, error) {
	sink, err := a.Begin(ctx, p)
	if err != nil {
		return Artifact{}, err
	}
	for _, f := range frames {
		if err := ctx.Err(); err != nil {
			sink.Abort()
			return Artifact{}, err
		}
		if err := sink.WriteFrame(f); err != nil {
			sink.Abort()
			return Artifact{}, err
		}
	}
	return sink.Close()
}

// orderGuard enforces the frame sequence 0, 1, 2, ...
type orderGuard struct {
	next int
}

func (g *orderGuard) admit(f renderer.Frame, w, h int) error {
	if f.Index != g.next {
		return fmt.Errorf("%w: frame %d out of order, expected %d", ErrEncoding, f.Index, g.next)
	}
	if f.Image == nil {
		return fmt.Errorf("%w: frame %d has no image", ErrEncoding, f.Index)
	}
	if b := f.Image.Bounds(); b.Dx() != w || b.Dy() != h {
		return fmt.Errorf("%w: frame %d is %dx%d, expected %dx%d", ErrEncoding, f.Index, b.Dx(), b.Dy(), w, h)
	}
	g.next++
	return nil
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Rect, img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}
