// Package scripts discovers Lua scripts for the sharing runtime.
package scripts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"sharingd/internal/common/fsutil"
)

// Script is a Lua file found on disk.
type Script struct {
	// Name is the file name without the .lua extension.
	Name string
	// Path is the absolute file path.
	Path string
}

// LoadDir scans dir (non-recursively) for *.lua files and returns them
// sorted by name. A leading '~' is expanded.
func LoadDir(dir string) ([]Script, error) {
	abs, err := fsutil.ResolveDir(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var out []Script
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.EqualFold(filepath.Ext(name), ".lua") {
			continue
		}
		out = append(out, Script{
			Name: strings.TrimSuffix(name, filepath.Ext(name)),
			Path: filepath.Join(abs, name),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
