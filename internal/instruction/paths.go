package instruction

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ScriptPath returns a timestamped script filename inside dir.
func ScriptPath(dir string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("script_%s.yaml", now.Format("2006-01-02_15-04-05")))
}

// IsScriptFile reports whether the extension is one ReadScript understands.
func IsScriptFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// LatestScript finds the most recently modified script in dir.
func LatestScript(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read scripts directory: %w", err)
	}

	type candidate struct {
		path string
		mod  time.Time
	}
	var scripts []candidate
	for _, entry := range entries {
		if entry.IsDir() || !IsScriptFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		scripts = append(scripts, candidate{filepath.Join(dir, entry.Name()), info.ModTime()})
	}
	if len(scripts) == 0 {
		return "", fmt.Errorf("no instruction scripts found in %s", dir)
	}

	// newest first; names break ties so equal mtimes stay deterministic
	sort.Slice(scripts, func(i, j int) bool {
		if !scripts[i].mod.Equal(scripts[j].mod) {
			return scripts[i].mod.After(scripts[j].mod)
		}
		return scripts[i].path > scripts[j].path
	})
	return scripts[0].path, nil
}
