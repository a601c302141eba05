package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/ivlev/math2video/internal/config"
)

// Render-level failures. Instruction source failures never surface here;
// they end in the keyword fallback.
var (
	ErrCaptureFailure  = errors.New("capture failure")
	ErrEncodingFailure = errors.New("encoding failure")
)

// RenderError ties a failure to one render and the tick it happened on.
// Tick is -1 when the failure came before or after the tick loop.
type RenderError struct {
	ID    string
	Stage string
	Tick  int
	Err   error
}

func (e *RenderError) Error() string {
	if e.Tick >= 0 {
		return fmt.Sprintf("render %s: %s at tick %d: %v", e.ID, e.Stage, e.Tick, e.Err)
	}
	return fmt.Sprintf("render %s: %s: %v", e.ID, e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

func wrap(marker error, id, stage string, tick int, err error) error {
	return &RenderError{
		ID:    id,
		Stage: stage,
		Tick:  tick,
		Err:   fmt.Errorf("%w: %w", marker, err),
	}
}

// Hint gives a short operator hint for an error returned by Render.
func Hint(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, config.ErrInvalid):
		return "fix the configuration or flags and run again"
	case errors.Is(err, ErrCaptureFailure):
		return "check render.camera, fov and the output resolution, then retry"
	case errors.Is(err, ErrEncodingFailure):
		return "install ffmpeg or set video.fallback to animation/still, then retry"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "the render was cancelled; run it again"
	default:
		return "retry the render"
	}
}
