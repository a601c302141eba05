package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ivlev/math2video/internal/config"
	"github.com/ivlev/math2video/internal/video"
)

// animationFlags override config.Animation only when set on the command
// line.
type animationFlags struct {
	width    int
	height   int
	fps      int
	duration float64
}

func (f *animationFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.width, "width", config.DefaultWidth, "Frame width")
	cmd.Flags().IntVar(&f.height, "height", config.DefaultHeight, "Frame height")
	cmd.Flags().IntVar(&f.fps, "fps", config.DefaultFPS, "Frames per second")
	cmd.Flags().Float64Var(&f.duration, "duration", 0, "Clip length in seconds (0 = longest instruction)")
}

func (f *animationFlags) apply(cmd *cobra.Command, a *config.Animation) {
	flags := cmd.Flags()
	if flags.Changed("width") {
		a.Width = f.width
	}
	if flags.Changed("height") {
		a.Height = f.height
	}
	if flags.Changed("fps") {
		a.FPS = f.fps
	}
	if flags.Changed("duration") {
		a.Duration = f.duration
	}
}

// outputFlags cover the video and overlay settings shared by render and
// batch.
type outputFlags struct {
	container string
	fallback  string
	fade      float64
	hud       bool
	stampURL  string
	stats     bool
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.container, "container", "mp4", "Video container: mp4 or webm")
	cmd.Flags().StringVar(&f.fallback, "fallback", config.FallbackStill, "Output when ffmpeg is missing: animation, still or none")
	cmd.Flags().Float64Var(&f.fade, "fade", 0, "Fade in/out length in seconds")
	cmd.Flags().BoolVar(&f.hud, "hud", false, "Draw frame index and time on every frame")
	cmd.Flags().StringVar(&f.stampURL, "stamp-url", "", "Draw a QR code for this URL in the corner")
	cmd.Flags().BoolVar(&f.stats, "stats", false, "Print a performance report after each render")
}

func (f *outputFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("container") {
		cfg.Video.Container = f.container
	}
	if flags.Changed("fallback") {
		cfg.Video.Fallback = f.fallback
	}
	if flags.Changed("fade") {
		cfg.Video.FadeDuration = f.fade
	}
	if flags.Changed("hud") {
		cfg.Render.HUD = f.hud
	}
	if flags.Changed("stamp-url") {
		cfg.Render.StampURL = f.stampURL
	}
	if flags.Changed("stats") {
		cfg.ShowStats = f.stats
	}
}

// outputPath makes the file extension match what was actually produced, so
// a still PNG is never saved as .mp4.
func outputPath(path string, art video.Artifact) string {
	ext := art.Ext()
	if cur := filepath.Ext(path); !strings.EqualFold(cur, ext) {
		path = strings.TrimSuffix(path, cur) + ext
	}
	return path
}

func writeArtifact(path string, art video.Artifact) (string, error) {
	path = outputPath(path, art)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, art.Data, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
