// Package fsutil resolves user supplied paths such as the scripts directory.
package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotDir is returned by ResolveDir when the path names a file.
var ErrNotDir = errors.New("not a directory")

// ExpandHome replaces a leading "~" or "~/" with the user's home directory.
// Other paths, including "~user", are returned unchanged.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// ResolveDir expands path, makes it absolute and checks that it is an
// existing directory. A missing directory yields an error matching
// os.ErrNotExist.
func ResolveDir(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty directory path")
	}
	expanded, err := ExpandHome(path)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("abs path: %w", err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return abs, err
	}
	if !fi.IsDir() {
		return abs, fmt.Errorf("%s: %w", abs, ErrNotDir)
	}
	return abs, nil
}
