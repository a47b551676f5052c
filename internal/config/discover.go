// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// ErrNotInProject is returned by ProjectRootOf when no enclosing directory
// holds a Flutter manifest.
var ErrNotInProject = errors.New("not inside a Flutter project")

// skippedDirs are never searched for projects.
var skippedDirs = []string{
	"**/.*",
	"**/build",
	"**/node_modules",
	"**/ios/Pods",
}

// FindProjects returns the absolute roots of every Flutter project below dir
// (dir included), sorted. A project is a directory whose pubspec.yaml has a
// flutter section.
func FindProjects(ctx context.Context, dir string) ([]string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	var roots []string
	fsys := os.DirFS(absDir)
	err = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if p == "." {
				return walkErr
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if p != "." && matchesAny(skippedDirs, p) {
				return fs.SkipDir
			}
			return nil
		}

		if ok, _ := doublestar.Match("**/"+ManifestFileName, p); !ok {
			return nil
		}
		if isFlutterManifest(fsys, p) {
			roots = append(roots, filepath.Join(absDir, filepath.FromSlash(path.Dir(p))))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover projects in %s: %w", absDir, err)
	}

	slices.Sort(roots)
	return roots, nil
}

func matchesAny(patterns []string, p string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
	}
	return false
}

// isFlutterManifest reports whether the manifest at p declares a flutter key.
func isFlutterManifest(fsys fs.FS, p string) bool {
	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return false
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return false
	}
	_, ok := doc["flutter"]
	return ok
}

// ProjectRootOf returns the nearest directory at or above p whose
// pubspec.yaml declares a flutter section.
func ProjectRootOf(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if info, statErr := os.Stat(abs); statErr == nil && !info.IsDir() {
		abs = filepath.Dir(abs)
	}

	for dir := abs; ; dir = filepath.Dir(dir) {
		if isFlutterManifest(os.DirFS(dir), ManifestFileName) {
			return dir, nil
		}
		if filepath.Dir(dir) == dir {
			return "", fmt.Errorf("%w: %s", ErrNotInProject, p)
		}
	}
}
