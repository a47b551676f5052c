// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	app, err := NewApp(Dependencies{Stdout: &out, Stderr: &out})
	if err != nil {
		t.Fatalf("NewApp() error: %v", err)
	}
	t.Cleanup(func() {
		if err := app.Watchers.StopAll(); err != nil {
			t.Errorf("StopAll() error: %v", err)
		}
	})
	return app, &out
}

const watchedManifest = `name: demo
flutter:
  assets:
    - assets/
`

func TestWatchProjectRegeneratesOnChange(t *testing.T) {
	t.Parallel()

	root := writeProject(t, map[string]string{
		"pubspec.yaml":    watchedManifest,
		"assets/logo.png": "",
	})
	app, out := newTestApp(t)
	app.Settings.Debounce = "50ms"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := app.watchProject(ctx, root); err != nil {
		t.Fatalf("watchProject() error: %v", err)
	}
	if app.Watchers.Len() != 1 {
		t.Fatalf("Watchers.Len() = %d, want 1", app.Watchers.Len())
	}

	generated := filepath.Join(root, "lib", "generated", "assets.dart")
	if !strings.Contains(out.String(), "Generated 1 asset constants") {
		t.Errorf("initial generation not announced:\n%s", out.String())
	}

	if err := os.WriteFile(filepath.Join(root, "assets", "splash.png"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		data, err := os.ReadFile(generated)
		if err == nil && strings.Contains(string(data), "static const String splash = 'assets/splash.png';") {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("generated file not updated after asset change:\n%s", data)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

// waitForGenerated polls the generated file until it contains want.
func waitForGenerated(t *testing.T, root, want string) {
	t.Helper()
	generated := filepath.Join(root, "lib", "generated", "assets.dart")
	deadline := time.Now().Add(5 * time.Second)
	for {
		data, err := os.ReadFile(generated)
		if err == nil && strings.Contains(string(data), want) {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("generated file never contained %q:\n%s", want, data)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestWatchProjectReloadsOnManifestEdit(t *testing.T) {
	t.Parallel()

	root := writeProject(t, map[string]string{
		"pubspec.yaml":    watchedManifest,
		"assets/logo.png": "",
	})
	app, _ := newTestApp(t)
	app.Settings.Debounce = "50ms"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := app.watchProject(ctx, root); err != nil {
		t.Fatalf("watchProject() error: %v", err)
	}
	first, ok := app.Watchers.Get(root)
	if !ok {
		t.Fatal("no watcher registered")
	}

	manifest := filepath.Join(root, "pubspec.yaml")
	if err := os.WriteFile(manifest, []byte(watchedManifest+"    - fonts/\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "fonts"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "fonts", "title.ttf"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	waitForGenerated(t, root, "static const String title = 'fonts/title.ttf';")

	deadline := time.Now().Add(5 * time.Second)
	for {
		w, ok := app.Watchers.Get(root)
		if ok && w != first && w.IsRunning() {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("watcher was not replaced after the manifest edit")
		}
		time.Sleep(20 * time.Millisecond)
	}
	if first.IsRunning() {
		t.Error("replaced watcher still running")
	}
	if app.Watchers.Len() != 1 {
		t.Errorf("Watchers.Len() = %d, want 1", app.Watchers.Len())
	}

	// The replacement watches the root added by the edit.
	if err := os.WriteFile(filepath.Join(root, "fonts", "body.ttf"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	waitForGenerated(t, root, "static const String body = 'fonts/body.ttf';")

	// Option changes apply without restarting.
	edited := watchedManifest + "    - fonts/\nflutter_assets_generator:\n  naming_style: snake_case\n"
	if err := os.WriteFile(manifest, []byte(edited), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "assets", "big-logo.png"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	waitForGenerated(t, root, "static const String big_logo = 'assets/big-logo.png';")
}

func TestWatchProjectHonorsSwitches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		manifest string
		autoGen  bool
	}{
		{
			name:     "auto_detection disabled",
			manifest: watchedManifest + "flutter_assets_generator:\n  auto_detection: false\n",
			autoGen:  true,
		},
		{
			name:     "auto_generation disabled",
			manifest: watchedManifest,
			autoGen:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := writeProject(t, map[string]string{
				"pubspec.yaml":    tt.manifest,
				"assets/logo.png": "",
			})
			app, _ := newTestApp(t)
			app.Settings.AutoGeneration = tt.autoGen

			if err := app.watchProject(context.Background(), root); err != nil {
				t.Fatalf("watchProject() error: %v", err)
			}
			if app.Watchers.Len() != 0 {
				t.Errorf("Watchers.Len() = %d, want 0", app.Watchers.Len())
			}
			if _, err := os.Stat(filepath.Join(root, "lib", "generated", "assets.dart")); err != nil {
				t.Errorf("initial generation missing: %v", err)
			}
		})
	}
}

func TestWatchProjectInvalidConfig(t *testing.T) {
	t.Parallel()

	app, out := newTestApp(t)
	if err := app.watchProject(context.Background(), t.TempDir()); err != nil {
		t.Fatalf("watchProject() error: %v", err)
	}
	if app.Watchers.Len() != 0 {
		t.Errorf("Watchers.Len() = %d, want 0", app.Watchers.Len())
	}
	if !strings.Contains(out.String(), "failed to load manifest") {
		t.Errorf("failure not reported:\n%s", out.String())
	}
}

func TestConfigureFallsBackOnBadSettings(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bad := filepath.Join(dir, "config.cue")
	if err := os.WriteFile(bad, []byte(`debounce: 12`), 0o644); err != nil {
		t.Fatal(err)
	}

	app, out := newTestApp(t)
	if err := app.configure(context.Background(), &rootFlagValues{configPath: bad}, true); err != nil {
		t.Fatalf("configure() error: %v", err)
	}
	if !strings.Contains(out.String(), "Warning: ") {
		t.Errorf("missing warning:\n%s", out.String())
	}
	if app.Settings.Debounce != "300ms" {
		t.Errorf("Debounce = %q, want the default", app.Settings.Debounce)
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain error", errors.New("boom"), ExitFailure},
		{"usage", usageError(errors.New("bad flag")), ExitUsage},
		{"bare exit error", &ExitError{Code: ExitFailure}, ExitFailure},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("%s: exitCode() = %d, want %d", tt.name, got, tt.want)
		}
	}
	if usageError(nil) != nil {
		t.Error("usageError(nil) should be nil")
	}
}
