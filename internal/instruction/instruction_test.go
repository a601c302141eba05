package instruction

import (
	"errors"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestParseValid(t *testing.T) {
	text := "Sure! Here you go:\n```json\n" +
		`[{"type":"circle","parameters":{"radius":2,"color":"#ff0000"},"duration":3},` +
		`{"type":"Vector","parameters":{},"duration":1.5}]` + "\n```"

	list, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 instructions, got %d", len(list))
	}
	if list[0].Type != Circle || list[0].Parameters.Float("radius", 1) != 2 {
		t.Errorf("unexpected first instruction %+v", list[0])
	}
	if got := list[0].Parameters.Color("color", 0); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("unexpected color %v", got)
	}
	if list[1].Type != Vector || list[1].Duration != 1.5 {
		t.Errorf("unexpected second instruction %+v", list[1])
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"no brackets", "no brackets here", ErrNoArray},
		{"reversed brackets", "] oops [", ErrNoArray},
		{"empty array", "[]", ErrEmptyList},
		{"missing duration", `[{"type":"circle","parameters":{},"duration":2},{"type":"vector","parameters":{}}]`, ErrInvalidDuration},
		{"string duration", `[{"type":"circle","parameters":{},"duration":"2"}]`, ErrInvalidDuration},
		{"zero duration", `[{"type":"circle","parameters":{},"duration":0}]`, ErrInvalidDuration},
		{"huge duration", `[{"type":"circle","parameters":{},"duration":1e308}]`, ErrInvalidDuration},
		{"duration over an hour", `[{"type":"circle","parameters":{},"duration":3601}]`, ErrInvalidDuration},
		{"unknown type", `[{"type":"spiral","parameters":{},"duration":2}]`, ErrUnknownType},
		{"missing parameters", `[{"type":"graph","duration":2}]`, ErrMissingParams},
		{"parameters not object", `[{"type":"graph","parameters":[1,2],"duration":2}]`, ErrMissingParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := Parse(tt.text)
			if err == nil {
				t.Fatalf("expected error, got %+v", list)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseBadJSON(t *testing.T) {
	if _, err := Parse(`[{"type": "circle",]`); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := Parse(`[1, 2]`); err == nil {
		t.Fatal("expected error for non-object elements")
	}
}

func TestParamsDefaults(t *testing.T) {
	p := Params{
		"radius": 0.0,
		"size":   "3",
		"bad":    []any{1},
		"points": []any{[]any{1.0, 2.0}, []any{3.0, 4.0, 5.0}},
		"broken": []any{[]any{1.0}},
		"color":  float64(0x00ff00),
		"named":  "Purple",
	}

	if got := p.Float("radius", 1); got != 0 {
		t.Errorf("explicit zero should be honoured, got %v", got)
	}
	if got := p.Float("missing", 1); got != 1 {
		t.Errorf("missing should default, got %v", got)
	}
	if got := p.Float("bad", 7); got != 7 {
		t.Errorf("non-number should default, got %v", got)
	}
	if got := p.Int("size", 2); got != 3 {
		t.Errorf("numeric string should parse, got %v", got)
	}
	huge := Params{"up": 1e300, "down": -1e300}
	if got := huge.Int("up", 0); got != math.MaxInt32 {
		t.Errorf("large values should saturate, got %v", got)
	}
	if got := huge.Int("down", 0); got != math.MinInt32 {
		t.Errorf("large negative values should saturate, got %v", got)
	}

	pts := p.Points("points", nil)
	if len(pts) != 2 || pts[0] != [3]float64{1, 2, 0} || pts[1] != [3]float64{3, 4, 5} {
		t.Errorf("unexpected points %v", pts)
	}
	def := [][3]float64{{-1, -1, 0}, {1, 1, 0}}
	if got := p.Points("broken", def); len(got) != 2 || got[0] != def[0] {
		t.Errorf("malformed points should default, got %v", got)
	}

	if got := p.Color("color", 0); got != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("unexpected numeric color %v", got)
	}
	if got := p.Color("named", 0); got != RGB(0x8b5cf6) {
		t.Errorf("unexpected named color %v", got)
	}
	if got := p.Color("missing", 0x123456); got != RGB(0x123456) {
		t.Errorf("unexpected default color %v", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	in := Instruction{
		Type:       Graph,
		Parameters: Params{"points": []any{[]any{1.0, 1.0, 0.0}}},
		Duration:   5,
	}
	cp := in.Clone()
	cp.Parameters["points"].([]any)[0].([]any)[0] = 9.0

	if in.Parameters.Points("points", nil)[0][0] != 1 {
		t.Fatal("clone shares nested slices with the original")
	}
}

func TestMaxDuration(t *testing.T) {
	list := []Instruction{{Duration: 2}, {Duration: 5}, {Duration: 3.5}}
	if got := MaxDuration(list); got != 5 {
		t.Errorf("expected 5, got %v", got)
	}
	if got := MaxDuration(nil); got != 0 {
		t.Errorf("expected 0 for empty list, got %v", got)
	}
}

func TestScriptRoundTrip(t *testing.T) {
	dir := t.TempDir()
	script := &Script{
		Prompt: "fourier series",
		Instructions: []Instruction{
			{Type: Circle, Parameters: Params{"radius": 1.0, "color": 0x3b82f6}, Duration: 5},
			{Type: Graph, Parameters: Params{"points": [][3]float64{{0, 0, 0}, {1, 1, 0}}}, Duration: 2},
		},
	}

	for _, name := range []string{"script.yaml", "script.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := WriteScript(script, path); err != nil {
				t.Fatalf("WriteScript failed: %v", err)
			}
			loaded, err := ReadScript(path)
			if err != nil {
				t.Fatalf("ReadScript failed: %v", err)
			}
			if loaded.Version != ScriptVersion || loaded.Prompt != script.Prompt {
				t.Errorf("unexpected header %+v", loaded)
			}
			if len(loaded.Instructions) != 2 {
				t.Fatalf("expected 2 instructions, got %d", len(loaded.Instructions))
			}
			if got := loaded.Instructions[0].Parameters.Color("color", 0); got != RGB(0x3b82f6) {
				t.Errorf("color lost: %v", got)
			}
			pts := loaded.Instructions[1].Parameters.Points("points", nil)
			if len(pts) != 2 || pts[1] != [3]float64{1, 1, 0} {
				t.Errorf("points lost: %v", pts)
			}
		})
	}
}

func TestReadScriptKeepsUnknownTypes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spiral.yaml")
	data := []byte("version: \"1\"\ninstructions:\n  - type: spiral\n    duration: 2\n  - type: Circle\n    parameters:\n      radius: 0x10\n    duration: 1\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	script, err := ReadScript(path)
	if err != nil {
		t.Fatalf("ReadScript failed: %v", err)
	}
	if script.Instructions[0].Type != "spiral" || script.Instructions[0].Parameters == nil {
		t.Errorf("unexpected placeholder instruction %+v", script.Instructions[0])
	}
	if script.Instructions[1].Type != Circle {
		t.Errorf("type not normalised: %q", script.Instructions[1].Type)
	}
	if got := script.Instructions[1].Parameters.Float("radius", 1); got != 16 {
		t.Errorf("expected hex radius 16, got %v", got)
	}
}

func TestReadScriptRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	data := []byte("instructions:\n  - type: circle\n    duration: -1\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadScript(path); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
}

func TestValidateAll(t *testing.T) {
	tests := []struct {
		name string
		list []Instruction
		want error
	}{
		{"empty", nil, ErrEmptyList},
		{"unknown type passes", []Instruction{{Type: "spiral", Parameters: Params{}, Duration: 1}}, nil},
		{"missing parameters", []Instruction{{Type: Circle, Duration: 1}}, ErrMissingParams},
		{"too long", []Instruction{{Type: Circle, Parameters: Params{}, Duration: 1}, {Type: Vector, Parameters: Params{}, Duration: MaxSeconds + 1}}, ErrInvalidDuration},
		{"at the limit", []Instruction{{Type: Circle, Parameters: Params{}, Duration: MaxSeconds}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAll(tt.list)
			if tt.want == nil {
				if err != nil {
					t.Errorf("unexpected error %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
