// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

const testDebounce = 100 * time.Millisecond

// recorder collects OnChange invocations.
type recorder struct {
	mu    sync.Mutex
	calls [][]string
	times []time.Time
	ch    chan []string
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan []string, 32)}
}

func (r *recorder) onChange(_ context.Context, changed []string) error {
	r.mu.Lock()
	r.calls = append(r.calls, changed)
	r.times = append(r.times, time.Now())
	r.mu.Unlock()
	r.ch <- changed
	return nil
}

// calledAt returns when the i-th callback ran.
func (r *recorder) calledAt(i int) time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.times[i]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// next waits for the next callback.
func (r *recorder) next(t *testing.T) []string {
	t.Helper()
	select {
	case changed := <-r.ch:
		return changed
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for OnChange")
		return nil
	}
}

// waitFor consumes callbacks until one contains want.
func (r *recorder) waitFor(t *testing.T, want string) []string {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case changed := <-r.ch:
			if slices.Contains(changed, want) {
				return changed
			}
		case <-deadline:
			t.Fatalf("timed out waiting for a change to %q", want)
			return nil
		}
	}
}

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(p, []byte(rel), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func startWatcher(t *testing.T, cfg Config) *Watcher {
	t.Helper()
	if cfg.Debounce == 0 {
		cfg.Debounce = testDebounce
	}
	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	t.Cleanup(func() {
		if err := w.Stop(); err != nil {
			t.Errorf("Stop() error: %v", err)
		}
	})
	return w
}

func TestWatcherDebounceCollapsesEvents(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "assets/keep.png")
	rec := newRecorder()
	startWatcher(t, Config{Project: dir, Roots: []string{"assets/"}, OnChange: rec.onChange})

	firstWrite := time.Now()
	var lastWrite time.Time
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		lastWrite = time.Now()
		writeFile(t, dir, "assets/"+name)
		time.Sleep(10 * time.Millisecond)
	}

	changed := rec.next(t)
	time.Sleep(3 * testDebounce)

	if n := rec.count(); n != 1 {
		t.Errorf("OnChange called %d times, want 1", n)
	}
	// The callback fires on the trailing edge: a full quiet period after the
	// last write, never right after the first one.
	fired := rec.calledAt(0)
	if d := fired.Sub(firstWrite); d < testDebounce {
		t.Errorf("OnChange fired %v after the first write, want at least %v", d, testDebounce)
	}
	if d := fired.Sub(lastWrite); d < testDebounce {
		t.Errorf("OnChange fired %v after the last write, want at least %v", d, testDebounce)
	}
	for _, want := range []string{"assets/a.png", "assets/b.png", "assets/c.png"} {
		if !slices.Contains(changed, want) {
			t.Errorf("changed = %v, missing %q", changed, want)
		}
	}
	if !slices.IsSorted(changed) {
		t.Errorf("changed = %v, want sorted", changed)
	}
}

func TestWatcherIgnoresNoise(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, rel := range []string{"lib/generated/assets.dart", "build/x.png", ".dart_tool/x", "assets/keep.png"} {
		writeFile(t, dir, rel)
	}
	rec := newRecorder()
	startWatcher(t, Config{
		Project:   dir,
		Roots:     []string{"."},
		OutputDir: "lib/generated",
		Ignore:    []string{"**/*.tmp"},
		OnChange:  rec.onChange,
	})

	for _, rel := range []string{
		"lib/generated/assets.dart",
		"build/x.png",
		".dart_tool/x",
		"assets/.DS_Store",
		"assets/icon.png.swp",
		"assets/draft.tmp",
	} {
		writeFile(t, dir, rel)
	}
	time.Sleep(2 * testDebounce)
	writeFile(t, dir, "assets/sentinel.png")

	changed := rec.waitFor(t, "assets/sentinel.png")
	if !slices.Equal(changed, []string{"assets/sentinel.png"}) {
		t.Errorf("changed = %v, want only the sentinel", changed)
	}
}

func TestWatcherFileRoot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "res/logo.png")
	writeFile(t, dir, "res/readme.md")
	rec := newRecorder()
	startWatcher(t, Config{Project: dir, Roots: []string{"res/logo.png"}, OnChange: rec.onChange})

	writeFile(t, dir, "res/readme.md")
	time.Sleep(2 * testDebounce)
	if n := rec.count(); n != 0 {
		t.Fatalf("sibling of a file root triggered %d callbacks", n)
	}

	writeFile(t, dir, "res/logo.png")
	if changed := rec.next(t); !slices.Equal(changed, []string{"res/logo.png"}) {
		t.Errorf("changed = %v, want [res/logo.png]", changed)
	}
}

func TestWatcherOutsideRootsIgnored(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "assets/a.png")
	writeFile(t, dir, "lib/main.dart")
	rec := newRecorder()
	startWatcher(t, Config{Project: dir, Roots: []string{"assets"}, OnChange: rec.onChange})

	writeFile(t, dir, "lib/main.dart")
	time.Sleep(2 * testDebounce)
	if n := rec.count(); n != 0 {
		t.Errorf("change outside the asset roots triggered %d callbacks", n)
	}
}

func TestWatcherPicksUpNewDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "assets/a.png")
	rec := newRecorder()
	startWatcher(t, Config{Project: dir, Roots: []string{"assets"}, OnChange: rec.onChange})

	if err := os.Mkdir(filepath.Join(dir, "assets", "icons"), 0o755); err != nil {
		t.Fatal(err)
	}
	rec.waitFor(t, "assets/icons")

	writeFile(t, dir, "assets/icons/new.png")
	rec.waitFor(t, "assets/icons/new.png")
}

func TestWatcherPicksUpMissingRoot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := newRecorder()
	startWatcher(t, Config{Project: dir, Roots: []string{"fonts/ttf/"}, OnChange: rec.onChange})

	writeFile(t, dir, "fonts/ttf/a.ttf")

	deadline := time.After(5 * time.Second)
	for seen := false; !seen; {
		select {
		case changed := <-rec.ch:
			seen = slices.ContainsFunc(changed, func(p string) bool {
				return p == "fonts" || strings.HasPrefix(p, "fonts/")
			})
		case <-deadline:
			t.Fatal("creating a missing root never triggered OnChange")
		}
	}

	writeFile(t, dir, "fonts/ttf/b.ttf")
	rec.waitFor(t, "fonts/ttf/b.ttf")
}

func TestWatcherSkipIfBusy(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "assets/keep.png")

	var (
		active    atomic.Int32
		maxActive atomic.Int32
		calls     atomic.Int32
		started   = make(chan struct{})
		release   = make(chan struct{})
		second    = make(chan []string, 1)
	)

	startWatcher(t, Config{
		Project:  dir,
		Roots:    []string{"assets"},
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			n := active.Add(1)
			defer active.Add(-1)
			if n > maxActive.Load() {
				maxActive.Store(n)
			}
			switch calls.Add(1) {
			case 1:
				close(started)
				<-release
			case 2:
				second <- changed
			}
			return nil
		},
	})

	writeFile(t, dir, "assets/a.png")
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("first callback never started")
	}

	writeFile(t, dir, "assets/b.png")
	time.Sleep(200 * time.Millisecond)
	close(release)

	select {
	case changed := <-second:
		if !slices.Contains(changed, "assets/b.png") {
			t.Errorf("deferred changes = %v, want assets/b.png", changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("deferred changes were never delivered")
	}
	if m := maxActive.Load(); m != 1 {
		t.Errorf("max concurrent callbacks = %d, want 1", m)
	}
}

func TestWatcherCallbackErrorKeepsRunning(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "assets/a.png")
	calls := make(chan struct{}, 8)
	w := startWatcher(t, Config{
		Project: dir,
		Roots:   []string{"assets"},
		OnChange: func(context.Context, []string) error {
			calls <- struct{}{}
			return errors.New("boom")
		},
	})

	for range 2 {
		writeFile(t, dir, "assets/a.png")
		select {
		case <-calls:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for OnChange")
		}
		time.Sleep(2 * testDebounce)
	}
	if !w.IsRunning() {
		t.Error("watcher stopped after a callback error")
	}
}

func TestWatcherLifecycle(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := New(Config{Project: dir, Roots: []string{"missing"}})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if w.IsRunning() {
		t.Error("new watcher reports running")
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() before Start = %v, want nil", err)
	}

	ctx := context.Background()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() with a missing root error: %v", err)
	}
	if err := w.Start(ctx); err != nil {
		t.Errorf("second Start() error: %v", err)
	}
	if !w.IsRunning() {
		t.Error("started watcher reports not running")
	}

	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error: %v", err)
	}
	if w.IsRunning() {
		t.Error("stopped watcher reports running")
	}

	if err := w.Start(ctx); err != nil {
		t.Fatalf("restart error: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() after restart error: %v", err)
	}
}

func TestWatcherStopsWithContext(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Project: t.TempDir(), Roots: []string{"."}})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	cancel()

	deadline := time.Now().Add(5 * time.Second)
	for w.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("watcher still running after context cancellation")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error: %v", err)
	}
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}); !errors.Is(err, ErrNoProject) {
		t.Errorf("New(empty) error = %v, want ErrNoProject", err)
	}
	if _, err := New(Config{Project: t.TempDir(), Ignore: []string{"[unclosed"}}); err == nil {
		t.Error("New() with an invalid ignore pattern succeeded")
	}
}

func TestIgnoreMatching(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Project: t.TempDir(), OutputDir: "lib/generated/", Ignore: []string{"**/raw/**"}})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	tests := []struct {
		rel  string
		want bool
	}{
		{".git/HEAD", true},
		{"assets/.hidden.png", true},
		{"assets/.cache/a.png", true},
		{"build/app/x.png", true},
		{"packages/foo/build/x.png", true},
		{".dart_tool/package_config.json", true},
		{"node_modules/x/y.js", true},
		{"assets/icon.png.swp", true},
		{"assets/icon.png~", true},
		{"lib/generated/assets.dart", true},
		{"assets/raw/x.png", true},
		{"assets/icon.png", false},
		{"assets/builder/x.png", false},
		{"lib/generated_old/x.dart", false},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			t.Parallel()

			if got := w.isIgnored(tt.rel); got != tt.want {
				t.Errorf("isIgnored(%q) = %v, want %v", tt.rel, got, tt.want)
			}
		})
	}
}

func TestDefaultIgnoresReturnsCopy(t *testing.T) {
	t.Parallel()

	got := DefaultIgnores()
	got[0] = "mutated"
	if DefaultIgnores()[0] == "mutated" {
		t.Error("DefaultIgnores() exposes the package slice")
	}
}
