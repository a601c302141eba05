package system

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"
)

var ErrFFmpegNotFound = errors.New("ffmpeg not found")

const probeTimeout = 10 * time.Second

// InitResourceLimits raises the open file limit to 2048 (or the hard max).
// Parallel batch renders each hold an ffmpeg pipe set.
func InitResourceLimits(logger *slog.Logger) {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		logger.Warn("[!] could not read open file limit", "error", err)
		return
	}
	if rLimit.Cur >= 2048 {
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		logger.Warn("[!] could not raise open file limit", "error", err)
		return
	}
	logger.Debug("[*] open file limit raised", "limit", rLimit.Cur)
}

// FindFFmpeg resolves the configured binary name or path.
func FindFFmpeg(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		name = "ffmpeg"
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrFFmpegNotFound, name, err)
	}
	return path, nil
}

type probeKey struct {
	bin, what string
}

var (
	probeMu    sync.Mutex
	probeCache = map[probeKey]string{}
)

// cachedOutput runs `ffmpeg -hide_banner <flag>` once per binary and flag.
func cachedOutput(ctx context.Context, ffmpeg, flag string) (string, error) {
	key := probeKey{ffmpeg, flag}
	probeMu.Lock()
	out, ok := probeCache[key]
	probeMu.Unlock()
	if ok {
		return out, nil
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	raw, err := exec.CommandContext(ctx, ffmpeg, "-hide_banner", flag).CombinedOutput()
	if err != nil {
		return "", err
	}

	probeMu.Lock()
	probeCache[key] = string(raw)
	probeMu.Unlock()
	return string(raw), nil
}

// GetBestH264Encoder prefers VideoToolbox, then NVENC, then libx264.
func GetBestH264Encoder(ctx context.Context, ffmpeg string) string {
	out, err := cachedOutput(ctx, ffmpeg, "-encoders")
	if err != nil {
		return "libx264"
	}
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(out, name) {
			return name
		}
	}
	return "libx264"
}

// HasEncoder reports whether the ffmpeg build lists the named encoder.
func HasEncoder(ctx context.Context, ffmpeg, name string) bool {
	out, err := cachedOutput(ctx, ffmpeg, "-encoders")
	return err == nil && strings.Contains(out, " "+name+" ")
}

// CheckFilterSupport reports whether the ffmpeg build has the named filter.
func CheckFilterSupport(ctx context.Context, ffmpeg, filter string) bool {
	out, err := cachedOutput(ctx, ffmpeg, "-filters")
	if err != nil {
		return false
	}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == filter {
			return true
		}
	}
	return false
}

// DefaultQuality returns the per-encoder default: bitrate units of 100k for
// VideoToolbox, CQ for NVENC, CRF otherwise.
func DefaultQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75
	case "h264_nvenc":
		return 28
	case "libvpx-vp9":
		return 32
	default:
		return 23
	}
}

// QualityArgs maps a quality number to encoder flags. Zero picks the
// encoder default.
func QualityArgs(encoder string, quality int) []string {
	if quality <= 0 {
		quality = DefaultQuality(encoder)
	}
	switch encoder {
	case "h264_videotoolbox":
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	case "libvpx-vp9":
		return []string{"-crf", fmt.Sprintf("%d", quality), "-b:v", "0"}
	default:
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}
