// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"slices"

	"github.com/assetgen/assetgen/internal/config"
	"github.com/assetgen/assetgen/internal/watch"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func newWatchCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [dir...]",
		Short: "Regenerate whenever declared assets change",
		Long: `Generate once for every given project (default: the current
directory), then watch the declared asset paths and regenerate after each
burst of changes. Editing pubspec.yaml reloads the project: new asset paths
and generator options apply without a restart. Runs until interrupted.

Projects with auto_detection: false are generated but not watched. The
auto_generation user setting turns watching off entirely.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			return runWatch(cmd.Context(), app, args)
		},
	}
}

func runWatch(ctx context.Context, app *App, dirs []string) error {
	if app.Logger.GetLevel() > log.InfoLevel {
		app.Logger.SetLevel(log.InfoLevel)
	}

	for _, dir := range dirs {
		if err := app.watchProject(ctx, dir); err != nil {
			fmt.Fprintln(app.stderr, ErrorStyle.Render("✗ ")+formatErrorForDisplay(err, app.verbose))
		}
	}
	defer func() {
		if err := app.Watchers.StopAll(); err != nil {
			app.Logger.Error("stop watchers", "err", err)
		}
	}()

	if app.Watchers.Len() == 0 {
		fmt.Fprintln(app.stdout, WarningStyle.Render("!")+" Nothing to watch")
		return nil
	}

	fmt.Fprintf(app.stdout, "\n%s Watching %d project(s) for changes (Ctrl+C to stop)...\n", CmdStyle.Render("→"), app.Watchers.Len())
	<-ctx.Done()
	return nil
}

// watchProject runs the initial generation for dir and registers a watcher
// for it when the project and the user settings allow it.
func (a *App) watchProject(ctx context.Context, dir string) error {
	proj, err := a.Config.Project(ctx, dir)
	if err != nil {
		a.Notifier.Notify(a.Pipeline.Run(ctx, dir), true)
		return nil
	}

	a.Notifier.Notify(a.Pipeline.Run(ctx, proj.Root), true)

	switch {
	case !a.Settings.AutoGeneration:
		a.Logger.Info("auto_generation disabled in settings, not watching", "project", proj.Root)
		return nil
	case !proj.Generator.AutoDetection:
		a.Logger.Info("auto_detection disabled, not watching", "project", proj.Root)
		return nil
	}

	_, err = a.Watchers.Replace(ctx, a.watchConfig(ctx, proj))
	if err != nil {
		return fmt.Errorf("watch %s: %w", proj.Root, err)
	}
	return nil
}

// reloadProject handles a manifest edit: the project is loaded again,
// regenerated and its watcher replaced with one for the new asset paths. An
// invalid manifest keeps the current watcher so a fix is picked up.
func (a *App) reloadProject(ctx context.Context, root string) error {
	proj, err := a.Config.Project(ctx, root)
	if err != nil {
		a.Notifier.Notify(a.Pipeline.Run(ctx, root), false)
		return nil
	}

	a.Logger.Info("manifest changed, reloading", "project", proj.Root)
	a.Notifier.Notify(a.Pipeline.Run(ctx, proj.Root), false)

	if !proj.Generator.AutoDetection {
		a.Logger.Info("auto_detection disabled, no longer watching", "project", proj.Root)
		return a.Watchers.Stop(proj.Root)
	}
	if _, err := a.Watchers.Replace(ctx, a.watchConfig(ctx, proj)); err != nil {
		return fmt.Errorf("rewatch %s: %w", proj.Root, err)
	}
	return nil
}

// watchConfig builds the watcher settings for proj. Every burst of changes
// reruns the pipeline, which logs the outcome; no notification is shown. The
// manifest is watched as a single-file root; its edits go through
// reloadProject under ctx, which outlives the watcher being replaced.
func (a *App) watchConfig(ctx context.Context, proj *config.Project) watch.Config {
	debounce, err := a.Settings.DebounceDuration()
	if err != nil {
		a.Logger.Warn("invalid debounce setting, using default", "debounce", a.Settings.Debounce, "err", err)
	}

	root := proj.Root
	return watch.Config{
		Project:   root,
		Roots:     append(slices.Clone(proj.AssetPaths), config.ManifestFileName),
		OutputDir: proj.OutputDir(),
		Debounce:  debounce,
		Logger:    a.Logger,
		OnChange: func(runCtx context.Context, changed []string) error {
			if slices.Contains(changed, config.ManifestFileName) {
				return a.reloadProject(ctx, root)
			}
			a.Logger.Debug("assets changed", "project", root, "paths", changed)
			a.Notifier.Notify(a.Pipeline.Run(runCtx, root), false)
			return nil
		},
	}
}
