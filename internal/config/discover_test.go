// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestFindProjects(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	flutter := "name: x\nflutter:\n  assets: [a/]\n"
	files := map[string]string{
		"pubspec.yaml":                          flutter,
		"apps/mobile/pubspec.yaml":              flutter,
		"packages/dart_only/pubspec.yaml":       "name: dart_only\n",
		"packages/ui_kit/pubspec.yaml":          "name: ui_kit\nflutter:\n",
		"node_modules/thing/pubspec.yaml":       flutter,
		"apps/mobile/build/x/pubspec.yaml":      flutter,
		".dart_tool/cache/pubspec.yaml":         flutter,
		"apps/broken/pubspec.yaml":              "name: [",
		"apps/mobile/lib/generated/assets.dart": "",
	}
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := FindProjects(context.Background(), root)
	if err != nil {
		t.Fatalf("FindProjects() error: %v", err)
	}

	want := []string{
		root,
		filepath.Join(root, "apps", "mobile"),
		filepath.Join(root, "packages", "ui_kit"),
	}
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Errorf("FindProjects() = %v, want %v", got, want)
	}
}

func TestFindProjectsMissingDir(t *testing.T) {
	t.Parallel()

	if _, err := FindProjects(context.Background(), filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("FindProjects() on a missing directory should fail")
	}
}

func TestProjectRootOf(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for rel, content := range map[string]string{
		"pubspec.yaml":                  "name: app\nflutter:\n",
		"packages/core/pubspec.yaml":    "name: core\n",
		"packages/core/assets/logo.png": "png",
	} {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	for _, p := range []string{
		root,
		filepath.Join(root, "packages", "core", "assets"),
		filepath.Join(root, "packages", "core", "assets", "logo.png"),
		filepath.Join(root, "packages", "core", "assets", "not-yet-created.png"),
	} {
		got, err := ProjectRootOf(p)
		if err != nil {
			t.Errorf("ProjectRootOf(%s) error: %v", p, err)
			continue
		}
		if got != root {
			t.Errorf("ProjectRootOf(%s) = %s, want %s", p, got, root)
		}
	}
}

func TestProjectRootOfOutsideProject(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := ProjectRootOf(dir); !errors.Is(err, ErrNotInProject) {
		t.Errorf("ProjectRootOf() error = %v, want ErrNotInProject", err)
	}
}
