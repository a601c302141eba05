package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewJSONToBuffer(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(Options{Level: "debug", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer closer.Close()

	logger.Debug("tick", "index", 3)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected json record, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "tick" {
		t.Errorf("unexpected msg %v", rec["msg"])
	}
}

func TestAutoFormatOnNonTerminalIsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hello")
	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Errorf("expected json output for non-terminal writer, got %q", buf.String())
	}
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Level: "warn", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestFanoutToFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "render.log")
	logger, closer, err := New(Options{Format: "console", Writer: &buf, File: path})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("frame captured", "index", 0)
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "frame captured") {
		t.Errorf("file missing record: %q", data)
	}
	if !strings.Contains(buf.String(), "frame captured") {
		t.Errorf("console missing record: %q", buf.String())
	}
}

func TestUnknownFormat(t *testing.T) {
	if _, _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
