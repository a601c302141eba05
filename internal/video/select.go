package video

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ivlev/math2video/internal/config"
	"github.com/ivlev/math2video/internal/effects"
	"github.com/ivlev/math2video/internal/system"
)

// NewAssembler picks the richest tier the host supports. Without ffmpeg the
// configured fallback decides between GIF, a PNG still or a hard failure.
func NewAssembler(ctx context.Context, cfg config.Video, logger *slog.Logger) (Assembler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ffmpeg, err := system.FindFFmpeg(cfg.FFmpegPath)
	if err != nil {
		switch cfg.Fallback {
		case config.FallbackAnimation:
			logger.Warn("[!] ffmpeg not found, encoding an animated GIF instead", "error", err)
			return GIFAssembler{}, nil
		case config.FallbackStill:
			logger.Warn("[!] ffmpeg not found, output will be a still PNG of the first frame", "error", err)
			return StillAssembler{}, nil
		default:
			return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
		}
	}

	container := strings.ToLower(strings.TrimSpace(cfg.Container))
	if container == "" {
		container = "mp4"
	}
	encoder := strings.TrimSpace(cfg.Encoder)
	switch {
	case container == "webm":
		encoder = "libvpx-vp9"
	case encoder == "" || encoder == "auto":
		encoder = system.GetBestH264Encoder(ctx, ffmpeg)
	}

	logger.Info("[*] video encoder selected", "ffmpeg", ffmpeg, "encoder", encoder, "container", container)
	return &FFmpegEncoder{
		FFmpeg:    ffmpeg,
		Encoder:   encoder,
		Container: container,
		Quality:   cfg.Quality,
		Effect:    &effects.DefaultEffect{FFmpeg: ffmpeg},
		Logger:    logger,
	}, nil
}
