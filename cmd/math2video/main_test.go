package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ivlev/math2video/internal/instruction"
	"github.com/ivlev/math2video/internal/video"
)

// writeTestConfig disables the generator and points ffmpeg at a binary that
// does not exist, so renders always take the GIF path.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "math2video.yaml")
	data := `generator:
  disabled: true
video:
  ffmpeg_path: definitely-not-ffmpeg-binary
  fallback: animation
log:
  level: error
  format: console
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestKeywordsCommand(t *testing.T) {
	out, err := runCLI(t, "keywords")
	if err != nil {
		t.Fatalf("keywords failed: %v", err)
	}
	for _, want := range []string{"eigen", "fourier, series", "(anything else)", "vector + vector + matrix"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestInstructionsCommandWritesScript(t *testing.T) {
	cfg := writeTestConfig(t)
	script := filepath.Join(t.TempDir(), "eigen.yaml")

	if _, err := runCLI(t, "--config", cfg, "instructions", "What is an Eigenvector?", "--out", script); err != nil {
		t.Fatalf("instructions failed: %v", err)
	}
	s, err := instruction.ReadScript(script)
	if err != nil {
		t.Fatalf("ReadScript failed: %v", err)
	}
	if s.Origin != "fallback" || len(s.Instructions) != 3 {
		t.Errorf("unexpected script %+v", s)
	}
}

func TestRenderCommandFallsBackToGIF(t *testing.T) {
	cfg := writeTestConfig(t)
	target := filepath.Join(t.TempDir(), "clip.mp4")

	out, err := runCLI(t, "--config", cfg, "render", "Show matrix multiplication",
		"-o", target, "--width", "32", "--height", "18", "--duration", "0.2")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	gifPath := strings.TrimSuffix(target, ".mp4") + ".gif"
	data, err := os.ReadFile(gifPath)
	if err != nil {
		t.Fatalf("expected %s: %v\n%s", gifPath, err, out)
	}
	if !bytes.HasPrefix(data, []byte("GIF8")) {
		t.Error("output is not a GIF")
	}
	if !strings.Contains(out, "animation") || !strings.Contains(out, "Extension changed") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestRenderCommandNeedsInput(t *testing.T) {
	cfg := writeTestConfig(t)
	if _, err := runCLI(t, "--config", cfg, "render"); err == nil {
		t.Error("expected an error without prompt or script")
	}
}

func TestInspectCommand(t *testing.T) {
	cfg := writeTestConfig(t)
	out, err := runCLI(t, "--config", cfg, "inspect", "Show matrix multiplication", "--object", "1")
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	if !strings.Contains(out, "Ticks: 150") || !strings.Contains(out, "transform") {
		t.Errorf("unexpected output:\n%s", out)
	}

	if _, err := runCLI(t, "--config", cfg, "inspect", "circle", "--object", "9"); err == nil {
		t.Error("expected an out of range error")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		path string
		mime string
		want string
	}{
		{"out/a.mp4", "video/mp4", "out/a.mp4"},
		{"out/a.mp4", "image/png", "out/a.png"},
		{"a", "image/gif", "a.gif"},
		{"a.MP4", "video/mp4", "a.MP4"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.path, video.Artifact{MimeType: tt.mime}); got != tt.want {
			t.Errorf("outputPath(%q, %s) = %q, want %q", tt.path, tt.mime, got, tt.want)
		}
	}
}

func TestBatchCommandRendersScripts(t *testing.T) {
	cfg := writeTestConfig(t)
	scripts := t.TempDir()
	script := &instruction.Script{
		Prompt: "spinning circle",
		Instructions: []instruction.Instruction{
			{Type: instruction.Circle, Parameters: instruction.Params{"radius": 1.5}, Duration: 1},
		},
	}
	if err := instruction.WriteScript(script, filepath.Join(scripts, "circle.yaml")); err != nil {
		t.Fatal(err)
	}
	outDir := t.TempDir()

	out, err := runCLI(t, "--config", cfg, "batch", "--scripts", scripts, "-p", "vector projection",
		"--out-dir", outDir, "--width", "32", "--height", "18", "--duration", "0.1", "--jobs", "2")
	if err != nil {
		t.Fatalf("batch failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "spinning circle") || !strings.Contains(out, "fallback/vector") {
		t.Errorf("unexpected table:\n%s", out)
	}

	gifs, _ := filepath.Glob(filepath.Join(outDir, "*.gif"))
	if len(gifs) != 2 {
		t.Errorf("expected 2 GIFs, got %v", gifs)
	}
}
