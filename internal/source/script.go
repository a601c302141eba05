package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ivlev/math2video/internal/instruction"
)

// ScriptSource serves pre-written instruction scripts from a single file or
// from every .yaml/.yml/.json file in a directory, in name order.
type ScriptSource struct {
	paths []string
}

func NewScriptSource(path string) (*ScriptSource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var paths []string
	if fi.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if instruction.IsScriptFile(entry.Name()) {
				paths = append(paths, filepath.Join(path, entry.Name()))
			}
		}
		sort.Strings(paths)
	} else {
		paths = []string{path}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no instruction scripts in %s", path)
	}

	return &ScriptSource{paths: paths}, nil
}

func (s *ScriptSource) Count() int {
	return len(s.paths)
}

func (s *ScriptSource) Path(index int) string {
	return s.paths[index]
}

// Load reads one script. The returned resolution is tagged OriginScript.
func (s *ScriptSource) Load(index int) (*instruction.Script, Resolution, error) {
	if index < 0 || index >= len(s.paths) {
		return nil, Resolution{}, fmt.Errorf("script index %d out of range [0,%d)", index, len(s.paths))
	}
	script, err := instruction.ReadScript(s.paths[index])
	if err != nil {
		return nil, Resolution{}, err
	}
	return script, Resolution{Instructions: script.Instructions, Origin: OriginScript}, nil
}
