package effects

import (
	"strings"
	"testing"

	"github.com/ivlev/math2video/internal/config"
)

func TestGenerateFilter(t *testing.T) {
	tests := []struct {
		name   string
		params config.ClipParams
		want   string
	}{
		{
			name:   "plain",
			params: config.ClipParams{Width: 1280, Height: 720, FPS: 30, Duration: 5},
			want:   "scale=trunc(iw/2)*2:trunc(ih/2)*2",
		},
		{
			name:   "fades",
			params: config.ClipParams{Width: 1280, Height: 720, FPS: 30, Duration: 5, FadeDuration: 0.5},
			want:   "scale=trunc(iw/2)*2:trunc(ih/2)*2,fade=t=in:st=0:d=0.500,fade=t=out:st=4.500:d=0.500",
		},
		{
			name:   "fade longer than half the clip is dropped",
			params: config.ClipParams{Duration: 1, FadeDuration: 0.5},
			want:   "scale=trunc(iw/2)*2:trunc(ih/2)*2",
		},
	}

	e := &DefaultEffect{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.GenerateFilter(tt.params); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDebugWithoutFFmpegSkipsDrawtext(t *testing.T) {
	e := &DefaultEffect{FFmpeg: "definitely-not-ffmpeg-binary"}
	got := e.GenerateFilter(config.ClipParams{Duration: 2, Debug: true})
	if strings.Contains(got, "drawtext") {
		t.Errorf("drawtext should need a probed ffmpeg, got %q", got)
	}
}
