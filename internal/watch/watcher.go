// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last relevant event before
// OnChange fires.
const DefaultDebounce = 300 * time.Millisecond

// ErrNoProject is returned by New when Config.Project is empty.
var ErrNoProject = errors.New("watch: project root is required")

// defaultIgnores are excluded from every watcher: hidden entries, build
// outputs, tool caches and editor swap files.
var defaultIgnores = []string{
	"**/.*",
	"**/.*/**",
	"**/build/**",
	"**/.dart_tool/**",
	"**/node_modules/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
}

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Project is the project root. Relative values are resolved against
		// the working directory.
		Project string

		// Roots are the declared asset paths, relative to Project. A root may
		// name a directory (watched recursively) or a single file.
		Roots []string

		// OutputDir is the directory of the generated file, relative to
		// Project. Changes below it never trigger OnChange.
		OutputDir string

		// Ignore are additional doublestar patterns, matched against paths
		// relative to Project.
		Ignore []string

		// Debounce is the quiet period before OnChange fires. Zero or negative
		// values fall back to DefaultDebounce.
		Debounce time.Duration

		// Logger receives watcher diagnostics. nil discards them.
		Logger *log.Logger

		// OnChange receives the sorted, deduplicated changed paths relative
		// to Project. Returned errors are logged.
		OnChange func(ctx context.Context, changed []string) error
	}

	// Watcher monitors one project's asset roots. Start and Stop may be
	// called repeatedly; at most one event loop runs at a time.
	Watcher struct {
		project  string
		dirRoots []string
		fileRoot map[string]struct{}
		ignores  []string
		debounce time.Duration
		logger   *log.Logger
		onChange func(ctx context.Context, changed []string) error

		mu  sync.Mutex
		run *run
	}

	// run is the state of one Start..Stop cycle.
	run struct {
		fsw    *fsnotify.Watcher
		cancel context.CancelFunc
		done   chan struct{}
		err    error
	}
)

// New validates cfg and creates a stopped Watcher.
func New(cfg Config) (*Watcher, error) {
	if strings.TrimSpace(cfg.Project) == "" {
		return nil, ErrNoProject
	}
	project, err := filepath.Abs(cfg.Project)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve project root: %w", err)
	}

	if err := validatePatterns(cfg.Ignore); err != nil {
		return nil, err
	}

	ignores := make([]string, 0, len(defaultIgnores)+len(cfg.Ignore)+1)
	ignores = append(ignores, defaultIgnores...)
	if out := cleanRel(cfg.OutputDir); out != "" && out != "." {
		ignores = append(ignores, out+"/**")
	}
	ignores = append(ignores, cfg.Ignore...)

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	w := &Watcher{
		project:  project,
		fileRoot: make(map[string]struct{}),
		ignores:  ignores,
		debounce: debounce,
		logger:   logger.With("project", project),
		onChange: cfg.OnChange,
	}

	for _, root := range cfg.Roots {
		rel := cleanRel(root)
		if rel == "" {
			rel = "."
		}
		info, statErr := os.Stat(filepath.Join(project, filepath.FromSlash(rel)))
		if statErr == nil && !info.IsDir() {
			w.fileRoot[rel] = struct{}{}
			continue
		}
		w.dirRoots = append(w.dirRoots, rel)
	}

	return w, nil
}

// Project returns the absolute project root.
func (w *Watcher) Project() string {
	return w.project
}

// Start registers the asset roots and launches the event loop. Missing roots
// are logged and picked up once they are created. Calling Start on a running
// Watcher is a no-op.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.run != nil && !isClosed(w.run.done) {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	if err := w.addRoots(fsw); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			w.logger.Warn("close after init failure", "err", closeErr)
		}
		return err
	}

	loopCtx, cancel := context.WithCancel(ctx)
	r := &run{fsw: fsw, cancel: cancel, done: make(chan struct{})}
	w.run = r

	go func() {
		defer close(r.done)
		r.err = w.loop(loopCtx, fsw)
	}()

	w.logger.Debug("watcher started", "dirs", len(fsw.WatchList()))
	return nil
}

// Stop ends the event loop, cancels any pending callback and closes the
// fsnotify handles. It waits for the loop to exit and returns the fatal
// error that ended it, if any. Stop on a stopped Watcher returns nil.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	r := w.run
	w.run = nil
	w.mu.Unlock()

	if r == nil {
		return nil
	}
	r.cancel()
	<-r.done
	return r.err
}

// IsRunning reports whether the event loop is active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.run != nil && !isClosed(w.run.done)
}

// loop processes events until ctx is canceled or a fatal error occurs.
func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) error {
	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		busy    atomic.Bool
	)

	// fire may run after ctx is canceled because it is scheduled by
	// time.AfterFunc; the ctx check drops those late fires.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !busy.CompareAndSwap(false, true) {
			w.logger.Debug("generation still running, deferring changes")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer busy.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		w.logger.Debug("assets changed", "count", len(changed))
		if w.onChange == nil {
			return
		}
		if err := w.onChange(ctx, changed); err != nil {
			w.logger.Error("regeneration failed", "err", err)
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := fsw.Close(); err != nil {
			w.logger.Warn("close fsnotify", "err", err)
		}
		w.logger.Debug("watcher stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if evt.Op == fsnotify.Chmod {
				continue
			}

			rel, relevant := w.relevant(evt.Name)
			if evt.Has(fsnotify.Create) {
				if relevant {
					w.maybeAddDir(fsw, evt.Name)
				} else if w.adoptRoots(fsw, w.rel(evt.Name)) {
					rel, relevant = w.rel(evt.Name), true
				}
			}
			if !relevant {
				continue
			}

			mu.Lock()
			pending[rel] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				w.logger.Error("watcher stopped on fatal error", "err", err)
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("fsnotify error", "err", err)
		}
	}
}

// addRoots registers every non-ignored directory below the directory roots
// and the parent directory of each file root.
func (w *Watcher) addRoots(fsw *fsnotify.Watcher) error {
	for _, root := range w.dirRoots {
		if err := w.watchRoot(fsw, root); err != nil {
			return err
		}
	}

	for _, file := range slices.Sorted(maps.Keys(w.fileRoot)) {
		dir := filepath.Dir(filepath.Join(w.project, filepath.FromSlash(file)))
		if err := fsw.Add(dir); err != nil {
			w.logger.Warn("cannot watch asset file", "file", file, "err", err)
		}
	}
	return nil
}

// watchRoot adds the tree of a directory root. A root that does not exist
// yet is logged and its deepest existing ancestor is watched instead, so its
// creation is seen.
func (w *Watcher) watchRoot(fsw *fsnotify.Watcher, root string) error {
	abs := filepath.Join(w.project, filepath.FromSlash(root))
	_, statErr := os.Stat(abs)
	if statErr == nil {
		return w.addTree(fsw, abs)
	}
	w.logger.Warn("asset root unreadable, waiting for it", "root", root, "err", statErr)

	for dir := filepath.Dir(abs); ; dir = filepath.Dir(dir) {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			if err := fsw.Add(dir); err != nil {
				w.logger.Warn("cannot watch for missing asset root", "root", root, "dir", dir, "err", err)
			}
			return nil
		}
		if dir == w.project || dir == filepath.Dir(dir) {
			return nil
		}
	}
}

// adoptRoots re-registers the directory roots below rel, a path that was
// just created. It reports whether any of them exists now.
func (w *Watcher) adoptRoots(fsw *fsnotify.Watcher, rel string) bool {
	if rel == "" || rel == "." || strings.HasPrefix(rel, "../") {
		return false
	}
	appeared := false
	for _, root := range w.dirRoots {
		if !strings.HasPrefix(root, rel+"/") {
			continue
		}
		if err := w.watchRoot(fsw, root); err != nil {
			w.logger.Warn("watch new asset root", "root", root, "err", err)
			continue
		}
		if _, err := os.Stat(filepath.Join(w.project, filepath.FromSlash(root))); err == nil {
			appeared = true
		}
	}
	return appeared
}

// addTree walks root and adds every directory that is not ignored.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, root string) error {
	walkErr := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("skipping inaccessible path", "path", p, "err", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && w.isIgnored(w.rel(p)) {
			return filepath.SkipDir
		}
		if addErr := fsw.Add(p); addErr != nil {
			return fmt.Errorf("watch: add directory %q: %w", p, addErr)
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("watch: walk asset root: %w", walkErr)
	}
	return nil
}

// maybeAddDir extends the watch to a directory created after Start.
func (w *Watcher) maybeAddDir(fsw *fsnotify.Watcher, p string) {
	info, err := os.Stat(p)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.addTree(fsw, p); err != nil {
		w.logger.Warn("add new directory", "path", p, "err", err)
	}
}

// relevant reports whether an event path belongs to a declared root and is
// not ignored. It returns the path relative to the project.
func (w *Watcher) relevant(name string) (string, bool) {
	rel := w.rel(name)
	if rel == "" || strings.HasPrefix(rel, "../") || w.isIgnored(rel) {
		return "", false
	}
	if _, ok := w.fileRoot[rel]; ok {
		return rel, true
	}
	for _, root := range w.dirRoots {
		if root == "." || rel == root || strings.HasPrefix(rel, root+"/") {
			return rel, true
		}
	}
	return "", false
}

// rel converts an absolute path to a slash-separated project-relative path.
func (w *Watcher) rel(p string) string {
	r, err := filepath.Rel(w.project, p)
	if err != nil {
		return ""
	}
	return filepath.ToSlash(r)
}

// isIgnored reports whether rel matches any ignore pattern.
func (w *Watcher) isIgnored(rel string) bool {
	for _, pat := range w.ignores {
		if matched, err := doublestar.Match(pat, rel); err == nil && matched {
			return true
		}
	}
	return false
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}

// validatePatterns checks that every pattern is a valid doublestar glob.
func validatePatterns(patterns []string) error {
	for _, pat := range patterns {
		if _, err := doublestar.Match(pat, ""); err != nil {
			return fmt.Errorf("watch: invalid ignore pattern %q: %w", pat, err)
		}
	}
	return nil
}

// cleanRel normalizes a declared relative path: slashes, no "./" prefix and
// no trailing slash.
func cleanRel(p string) string {
	p = strings.TrimSpace(filepath.ToSlash(p))
	if p == "" {
		return ""
	}
	p = path.Clean(p)
	if p == "." {
		return "."
	}
	return strings.TrimSuffix(p, "/")
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
