package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWidth  = 1280
	DefaultHeight = 720
	// DefaultFPS matches the instruction renderer call site. The quick preview
	// path historically ran at 60; pass --fps 60 to reproduce it.
	DefaultFPS = 30

	DefaultCameraZ    = 5.0
	DefaultFOV        = 75.0
	DefaultNear       = 0.1
	DefaultFar        = 1000.0
	DefaultClearColor = "#1a1a1a"

	DefaultGeminiBaseURL  = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel    = "gemini-1.5-flash"
	DefaultGeminiKeyEnv   = "GEMINI_API_KEY"
	DefaultTimeoutSeconds = 20
	DefaultRetries        = 3

	DefaultQuality = 0 // 0 = pick per encoder
	DefaultJobs    = 2
)

// Fallback tiers for the video assembler when ffmpeg is unavailable.
const (
	FallbackNone      = "none"
	FallbackAnimation = "animation"
	FallbackStill     = "still"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Animation Animation `yaml:"animation" toml:"animation"`
	Render    Render    `yaml:"render" toml:"render"`
	Generator Generator `yaml:"generator" toml:"generator"`
	Video     Video     `yaml:"video" toml:"video"`
	Log       Log       `yaml:"log" toml:"log"`
	Batch     Batch     `yaml:"batch" toml:"batch"`
	ShowStats bool      `yaml:"show_stats" toml:"show_stats"`

	BuildVersion string `yaml:"-" toml:"-"`
}

// Animation is the per-render output shape. Duration overrides the clip
// length derived from the instructions when positive.
type Animation struct {
	Duration float64 `yaml:"duration" toml:"duration"`
	Width    int     `yaml:"width" toml:"width"`
	Height   int     `yaml:"height" toml:"height"`
	FPS      int     `yaml:"fps" toml:"fps"`
}

type Render struct {
	Camera     [3]float64 `yaml:"camera" toml:"camera"`
	FOV        float64    `yaml:"fov" toml:"fov"`
	Near       float64    `yaml:"near" toml:"near"`
	Far        float64    `yaml:"far" toml:"far"`
	ClearColor string     `yaml:"clear_color" toml:"clear_color"`
	LineWidth  float64    `yaml:"line_width" toml:"line_width"`
	HUD        bool       `yaml:"hud" toml:"hud"`
	StampURL   string     `yaml:"stamp_url" toml:"stamp_url"`
}

type Generator struct {
	Disabled       bool   `yaml:"disabled" toml:"disabled"`
	APIKey         string `yaml:"api_key" toml:"api_key"`
	APIKeyEnv      string `yaml:"api_key_env" toml:"api_key_env"`
	BaseURL        string `yaml:"base_url" toml:"base_url"`
	Model          string `yaml:"model" toml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds" toml:"timeout_seconds"`
	Retries        int    `yaml:"retries" toml:"retries"`
	Level          string `yaml:"level" toml:"level"`
	Style          string `yaml:"style" toml:"style"`
	Enrich         bool   `yaml:"enrich" toml:"enrich"`
}

type Video struct {
	FFmpegPath   string  `yaml:"ffmpeg_path" toml:"ffmpeg_path"`
	Container    string  `yaml:"container" toml:"container"`
	Encoder      string  `yaml:"encoder" toml:"encoder"`
	Quality      int     `yaml:"quality" toml:"quality"`
	FadeDuration float64 `yaml:"fade" toml:"fade"`
	Fallback     string  `yaml:"fallback" toml:"fallback"`
	Debug        bool    `yaml:"debug" toml:"debug"`
}

type Log struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
	File   string `yaml:"file" toml:"file"`
}

type Batch struct {
	Jobs int `yaml:"jobs" toml:"jobs"`
}

// ClipParams carries what the post-filter chain needs to know about one
// encoded clip.
type ClipParams struct {
	Width, Height int
	FPS           int
	Duration      float64
	FadeDuration  float64
	Debug         bool
}

func Default() *Config {
	return &Config{
		Animation: Animation{
			Width:  DefaultWidth,
			Height: DefaultHeight,
			FPS:    DefaultFPS,
		},
		Render: Render{
			Camera:     [3]float64{0, 0, DefaultCameraZ},
			FOV:        DefaultFOV,
			Near:       DefaultNear,
			Far:        DefaultFar,
			ClearColor: DefaultClearColor,
			LineWidth:  1.5,
		},
		Generator: Generator{
			APIKeyEnv:      DefaultGeminiKeyEnv,
			BaseURL:        DefaultGeminiBaseURL,
			Model:          DefaultGeminiModel,
			TimeoutSeconds: DefaultTimeoutSeconds,
			Retries:        DefaultRetries,
			Level:          "intermediate",
			Style:          "educational",
		},
		Video: Video{
			FFmpegPath: "ffmpeg",
			Container:  "mp4",
			Encoder:    "auto",
			Quality:    DefaultQuality,
			Fallback:   FallbackStill,
		},
		Log: Log{
			Level:  "info",
			Format: "auto",
		},
		Batch: Batch{Jobs: DefaultJobs},
	}
}

// Load reads a YAML or TOML file on top of the defaults. The format is picked
// by extension; anything that is not .toml is parsed as YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		data, err = toml.Marshal(cfg)
	default:
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ResolveAPIKey returns the configured key, falling back to the environment
// variable named by APIKeyEnv.
func (g Generator) ResolveAPIKey() string {
	if key := strings.TrimSpace(g.APIKey); key != "" {
		return key
	}
	if g.APIKeyEnv == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(g.APIKeyEnv))
}

func (a Animation) Validate() error {
	if a.Width <= 0 || a.Height <= 0 {
		return fmt.Errorf("%w: resolution must be positive, got %dx%d", ErrInvalid, a.Width, a.Height)
	}
	if a.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalid, a.FPS)
	}
	if a.Duration < 0 {
		return fmt.Errorf("%w: duration override must not be negative, got %f", ErrInvalid, a.Duration)
	}
	return nil
}

func (c *Config) Validate() error {
	if err := c.Animation.Validate(); err != nil {
		return err
	}
	r := c.Render
	if r.FOV <= 0 || r.FOV >= 180 {
		return fmt.Errorf("%w: fov must be in (0, 180), got %f", ErrInvalid, r.FOV)
	}
	if r.Near <= 0 || r.Far <= r.Near {
		return fmt.Errorf("%w: clip planes must satisfy 0 < near < far, got %f/%f", ErrInvalid, r.Near, r.Far)
	}
	switch c.Video.Fallback {
	case FallbackNone, FallbackAnimation, FallbackStill:
	default:
		return fmt.Errorf("%w: unknown video fallback %q", ErrInvalid, c.Video.Fallback)
	}
	switch c.Video.Container {
	case "mp4", "webm":
	default:
		return fmt.Errorf("%w: unsupported container %q", ErrInvalid, c.Video.Container)
	}
	if c.Video.FadeDuration < 0 {
		return fmt.Errorf("%w: fade must not be negative", ErrInvalid)
	}
	if c.Generator.TimeoutSeconds <= 0 {
		return fmt.Errorf("%w: generator timeout must be positive", ErrInvalid)
	}
	if c.Batch.Jobs <= 0 {
		return fmt.Errorf("%w: batch jobs must be positive", ErrInvalid)
	}
	return nil
}
