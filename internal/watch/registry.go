// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"sync"
)

// Registry owns at most one running Watcher per project root.
type Registry struct {
	mu       sync.Mutex
	watchers map[string]*Watcher
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{watchers: make(map[string]*Watcher)}
}

// Replace stops the watcher currently registered for cfg.Project, if any,
// then creates and starts a new one.
func (r *Registry) Replace(ctx context.Context, cfg Config) (*Watcher, error) {
	w, err := New(cfg)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.watchers[w.Project()]; ok {
		delete(r.watchers, w.Project())
		if stopErr := old.Stop(); stopErr != nil {
			w.logger.Warn("previous watcher ended with error", "err", stopErr)
		}
	}

	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	r.watchers[w.Project()] = w
	return w, nil
}

// Get returns the watcher registered for project.
func (r *Registry) Get(project string) (*Watcher, bool) {
	key, err := key(project)
	if err != nil {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.watchers[key]
	return w, ok
}

// Stop stops and removes the watcher for project. Unknown projects are a
// no-op.
func (r *Registry) Stop(project string) error {
	key, err := key(project)
	if err != nil {
		return err
	}

	r.mu.Lock()
	w, ok := r.watchers[key]
	delete(r.watchers, key)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	return w.Stop()
}

// StopAll stops every registered watcher and empties the registry.
func (r *Registry) StopAll() error {
	r.mu.Lock()
	watchers := r.watchers
	r.watchers = make(map[string]*Watcher)
	r.mu.Unlock()

	var errs []error
	for _, project := range slices.Sorted(maps.Keys(watchers)) {
		if err := watchers[project].Stop(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", project, err))
		}
	}
	return errors.Join(errs...)
}

// Projects returns the registered project roots, sorted.
func (r *Registry) Projects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Sorted(maps.Keys(r.watchers))
}

// Len returns the number of registered watchers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.watchers)
}

func key(project string) (string, error) {
	abs, err := filepath.Abs(project)
	if err != nil {
		return "", fmt.Errorf("watch: resolve project root: %w", err)
	}
	return abs, nil
}
