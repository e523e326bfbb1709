// Package loader finds and reads mod files on disk.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// modExtensions are the file suffixes Discover picks up from a directory.
var modExtensions = []string{".txt", ".blcm", ".blcmm", ".mod"}

// Resolve turns an exec argument into a path. One pair of surrounding
// quotes is removed and relative paths are joined to root.
func Resolve(root, target string) (string, error) {
	target = strings.TrimSpace(target)
	if len(target) >= 2 {
		first, last := target[0], target[len(target)-1]
		if (first == '"' || first == '\'') && first == last {
			target = target[1 : len(target)-1]
		}
	}
	if strings.TrimSpace(target) == "" {
		return "", fmt.Errorf("no file given")
	}
	if filepath.IsAbs(target) || root == "" {
		return filepath.Clean(target), nil
	}
	return filepath.Join(root, target), nil
}

// ReadFile reads a mod file's raw bytes.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mod file %s: %w", path, err)
	}
	return data, nil
}

// Discover lists the mod files directly inside dir, sorted by name.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading mod directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !isModFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no mod files found in %s", dir)
	}
	sort.Strings(files)
	return files, nil
}

// Expand replaces every directory in paths with the mod files inside it.
func Expand(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		files, err := Discover(p)
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	return out, nil
}

func isModFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, m := range modExtensions {
		if ext == m {
			return true
		}
	}
	return false
}
