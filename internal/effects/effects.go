package effects

import (
	"context"
	"fmt"
	"strings"

	"github.com/ivlev/math2video/internal/config"
	"github.com/ivlev/math2video/internal/system"
)

// Effect builds the ffmpeg -vf chain applied while encoding a clip.
type Effect interface {
	GenerateFilter(params config.ClipParams) string
}

// DefaultEffect forces even dimensions for yuv420p and adds optional fades
// and a debug frame counter.
type DefaultEffect struct {
	FFmpeg string // binary used to probe drawtext support
}

func (e *DefaultEffect) GenerateFilter(p config.ClipParams) string {
	filters := []string{"scale=trunc(iw/2)*2:trunc(ih/2)*2"}

	// fades need room for both ends
	if f := p.FadeDuration; f > 0 && p.Duration > 2*f {
		filters = append(filters,
			fmt.Sprintf("fade=t=in:st=0:d=%.3f", f),
			fmt.Sprintf("fade=t=out:st=%.3f:d=%.3f", p.Duration-f, f),
		)
	}

	if p.Debug && e.FFmpeg != "" && system.CheckFilterSupport(context.Background(), e.FFmpeg, "drawtext") {
		filters = append(filters,
			"drawtext=text='frame %{frame_num}':x=10:y=10:fontsize=24:fontcolor=yellow:box=1:boxcolor=black@0.5")
	}

	return strings.Join(filters, ",")
}
