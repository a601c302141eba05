package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	slogmulti "github.com/samber/slog-multi"

	"github.com/ivlev/math2video/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string // auto, console, json
	File   string // optional JSON log file, appended to
	Writer io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds a logger that fans records out to the console writer and, when
// File is set, to a JSON file. The returned closer releases the file.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))
	handlerOpts := &slog.HandlerOptions{Level: levelVar}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	var console slog.Handler
	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "", "auto":
		if isTerminal(w) {
			console = slog.NewTextHandler(w, handlerOpts)
		} else {
			console = slog.NewJSONHandler(w, handlerOpts)
		}
	case "console", "text":
		console = slog.NewTextHandler(w, handlerOpts)
	case "json":
		console = slog.NewJSONHandler(w, handlerOpts)
	default:
		return nil, nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	handlers := []slog.Handler{console}
	var closer io.Closer = nopCloser{}
	if path := strings.TrimSpace(opts.File); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, nil, fmt.Errorf("ensure log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file %s: %w", path, err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, handlerOpts))
		closer = f
	}

	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}

// NewFromConfig creates a logger from the log section of the app config.
func NewFromConfig(cfg config.Log) (*slog.Logger, io.Closer, error) {
	return New(Options{
		Level:  cfg.Level,
		Format: cfg.Format,
		File:   cfg.File,
	})
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
