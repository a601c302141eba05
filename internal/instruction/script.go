package instruction

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const ScriptVersion = "1"

// Script is an instruction list saved to disk, usually produced by the
// instructions command and replayed by render --script.
type Script struct {
	Version      string        `json:"version" yaml:"version"`
	Prompt       string        `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Origin       string        `json:"origin,omitempty" yaml:"origin,omitempty"`
	Instructions []Instruction `json:"instructions" yaml:"instructions"`
}

// WriteScript writes a script as YAML, or JSON for a .json path.
func WriteScript(script *Script, path string) error {
	if script.Version == "" {
		script.Version = ScriptVersion
	}

	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(script, "", "  ")
	} else {
		data, err = yaml.Marshal(script)
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ReadScript loads a script. Unknown instruction types are let through so
// the scene builder can substitute placeholders; everything else must hold.
func ReadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var script Script
	if isJSON(path) {
		err = json.Unmarshal(data, &script)
	} else {
		err = yaml.Unmarshal(data, &script)
	}
	if err != nil {
		return nil, fmt.Errorf("parse script %s: %w", path, err)
	}
	if len(script.Instructions) == 0 {
		return nil, fmt.Errorf("script %s: %w", path, ErrEmptyList)
	}

	for i := range script.Instructions {
		in := &script.Instructions[i]
		if t, ok := ParseType(string(in.Type)); ok {
			in.Type = t
		}
		// an omitted parameters block means "all defaults"
		if in.Parameters == nil {
			in.Parameters = Params{}
		}
		if err := in.ValidateShape(); err != nil {
			return nil, fmt.Errorf("script %s: instruction %d: %w", path, i, err)
		}
	}

	return &script, nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
