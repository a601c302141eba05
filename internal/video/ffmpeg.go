package video

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/math2video/internal/config"
	"github.com/ivlev/math2video/internal/effects"
	"github.com/ivlev/math2video/internal/renderer"
	"github.com/ivlev/math2video/internal/system"
)

// FFmpegEncoder streams raw RGBA frames into ffmpeg over stdin.
type FFmpegEncoder struct {
	FFmpeg    string // resolved binary path
	Encoder   string // concrete encoder name, never "auto"
	Container string // mp4 or webm
	Quality   int
	Effect    effects.Effect
	Logger    *slog.Logger
}

func (e *FFmpegEncoder) Capability() Capability { return CapabilityVideo }

func (e *FFmpegEncoder) mimeType() string {
	if e.Container == "webm" {
		return "video/webm"
	}
	return "video/mp4"
}

func (e *FFmpegEncoder) buildFFmpegArgs(p config.ClipParams, outPath string) []string {
	filter := "null"
	if e.Effect != nil {
		filter = e.Effect.GenerateFilter(p)
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", p.Width, p.Height),
		"-framerate", fmt.Sprintf("%d", p.FPS),
		"-i", "-",
		"-vf", filter,
		"-r", fmt.Sprintf("%d", p.FPS),
		"-pix_fmt", "yuv420p",
		"-c:v", e.Encoder,
	}
	args = append(args, system.QualityArgs(e.Encoder, e.Quality)...)
	if e.Container != "webm" {
		args = append(args, "-movflags", "+faststart")
	}
	return append(args, outPath)
}

func (e *FFmpegEncoder) Begin(ctx context.Context, p config.ClipParams) (Sink, error) {
	tmpDir, err := os.MkdirTemp("", "math2video_")
	if err != nil {
		return nil, fmt.Errorf("%w: temp dir: %w", ErrEncoding, err)
	}
	outPath := filepath.Join(tmpDir, "out."+e.containerExt())

	cmd := exec.CommandContext(ctx, e.FFmpeg, e.buildFFmpegArgs(p, outPath)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("%w: stdin pipe: %w", ErrEncoding, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("%w: stderr pipe: %w", ErrEncoding, err)
	}
	if err := cmd.Start(); err != nil {
		os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("%w: ffmpeg start: %w", ErrEncoding, err)
	}

	s := &ffmpegSink{
		enc:     e,
		params:  p,
		cmd:     cmd,
		stdin:   stdin,
		tmpDir:  tmpDir,
		outPath: outPath,
	}
	s.drain.Go(func() error {
		_, err := io.Copy(&s.log, stderr)
		return err
	})

	if e.Logger != nil {
		e.Logger.Debug("[*] ffmpeg started", "encoder", e.Encoder, "container", e.Container, "size", fmt.Sprintf("%dx%d", p.Width, p.Height))
	}
	return s, nil
}

func (e *FFmpegEncoder) containerExt() string {
	if e.Container == "webm" {
		return "webm"
	}
	return "mp4"
}

type ffmpegSink struct {
	enc     *FFmpegEncoder
	params  config.ClipParams
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	tmpDir  string
	outPath string

	drain errgroup.Group
	log   lockedBuffer
	guard orderGuard

	once sync.Once
	done bool
}

func (s *ffmpegSink) WriteFrame(f renderer.Frame) error {
	if s.done {
		return fmt.Errorf("%w: sink already closed", ErrEncoding)
	}
	if err := s.guard.admit(f, s.params.Width, s.params.Height); err != nil {
		return err
	}
	if err := writeRawRGBA(s.stdin, f.Image); err != nil {
		return fmt.Errorf("%w: write frame %d: %w%s", ErrEncoding, f.Index, err, s.tail())
	}
	return nil
}

func (s *ffmpegSink) Close() (Artifact, error) {
	if s.done {
		return Artifact{}, fmt.Errorf("%w: sink already closed", ErrEncoding)
	}
	s.done = true
	defer s.cleanup()

	s.stdin.Close()
	_ = s.drain.Wait()
	if err := s.cmd.Wait(); err != nil {
		return Artifact{}, fmt.Errorf("%w: ffmpeg: %w%s", ErrEncoding, err, s.tail())
	}
	if s.guard.next == 0 {
		return Artifact{}, fmt.Errorf("%w: no frames written", ErrEncoding)
	}

	data, err := os.ReadFile(s.outPath)
	if err != nil {
		return Artifact{}, fmt.Errorf("%w: read output: %w", ErrEncoding, err)
	}
	return Artifact{
		Data:       data,
		MimeType:   s.enc.mimeType(),
		Capability: CapabilityVideo,
		Frames:     s.guard.next,
		Captured:   s.guard.next,
		Duration:   float64(s.guard.next) / float64(s.params.FPS),
		Width:      s.params.Width,
		Height:     s.params.Height,
		Encoder:    s.enc.Encoder,
	}, nil
}

func (s *ffmpegSink) Abort() {
	if !s.done {
		s.done = true
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		s.stdin.Close()
		_ = s.drain.Wait()
		_ = s.cmd.Wait()
	}
	s.cleanup()
}

func (s *ffmpegSink) cleanup() {
	s.once.Do(func() { os.RemoveAll(s.tmpDir) })
}

func (s *ffmpegSink) tail() string {
	msg := strings.TrimSpace(s.log.String())
	if msg == "" {
		return ""
	}
	if len(msg) > 400 {
		msg = "..." + msg[len(msg)-400:]
	}
	return "\nffmpeg: " + msg
}

// lockedBuffer collects ffmpeg stderr while frames are still being written.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
