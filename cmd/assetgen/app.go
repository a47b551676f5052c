// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/assetgen/assetgen/internal/asset"
	"github.com/assetgen/assetgen/internal/config"
	"github.com/assetgen/assetgen/internal/issue"
	"github.com/assetgen/assetgen/internal/pipeline"
	"github.com/assetgen/assetgen/internal/watch"

	"github.com/charmbracelet/log"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: command handlers receive an App and delegate
	// through its services.
	App struct {
		Config   config.Provider
		Pipeline *pipeline.Pipeline
		Watchers *watch.Registry
		Notifier Notifier
		Logger   *log.Logger

		// Settings are the user settings, loaded before every command.
		Settings *config.Settings

		settingsPath  string
		verbose       bool
		fixedNotifier bool
		stdout        io.Writer
		stderr        io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config   config.Provider
		Scanner  pipeline.Scanner
		Renderer pipeline.Renderer
		Sink     pipeline.Sink
		Watchers *watch.Registry
		// Notifier replaces the terminal notifier. A supplied notifier is
		// kept as is when settings load.
		Notifier Notifier
		Logger   *log.Logger
		Stdout   io.Writer
		Stderr   io.Writer
	}

	// rootFlagValues holds the persistent flags of the root command.
	rootFlagValues struct {
		verbose    bool
		configPath string
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Logger == nil {
		deps.Logger = log.NewWithOptions(deps.Stderr, log.Options{
			Prefix: config.AppName,
			Level:  log.WarnLevel,
		})
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Scanner == nil {
		deps.Scanner = asset.NewScanner(deps.Logger)
	}
	if deps.Watchers == nil {
		deps.Watchers = watch.NewRegistry()
	}

	defaults := config.DefaultSettings()
	app := &App{
		Config: deps.Config,
		Pipeline: pipeline.New(pipeline.Dependencies{
			Config:   deps.Config,
			Scanner:  deps.Scanner,
			Renderer: deps.Renderer,
			Sink:     deps.Sink,
			Logger:   deps.Logger,
		}),
		Watchers:      deps.Watchers,
		Notifier:      deps.Notifier,
		Logger:        deps.Logger,
		Settings:      defaults,
		fixedNotifier: deps.Notifier != nil,
		stdout:        deps.Stdout,
		stderr:        deps.Stderr,
	}
	if app.Notifier == nil {
		app.Notifier = app.newNotifier()
	}
	return app, nil
}

// skipSettingsAnnotation marks commands that manage the settings file
// itself and run without loading it.
const skipSettingsAnnotation = "assetgen/skip-settings"

// configure loads user settings and applies them together with the root
// flags. A settings file that cannot be loaded is reported and the defaults
// are used.
func (a *App) configure(ctx context.Context, flags *rootFlagValues, loadSettings bool) error {
	settings := config.DefaultSettings()
	path := ""
	if loadSettings {
		loaded, resolved, err := config.LoadSettings(ctx, config.LoadOptions{ConfigFilePath: flags.configPath})
		switch {
		case errors.Is(err, context.Canceled):
			return err
		case err != nil:
			fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, flags.verbose))
		default:
			settings, path = loaded, resolved
		}
	}

	a.Settings = settings
	a.settingsPath = path
	a.verbose = flags.verbose || settings.UI.Verbose
	if a.verbose {
		a.Logger.SetLevel(log.DebugLevel)
	}
	if !a.fixedNotifier {
		a.Notifier = a.newNotifier()
	}
	return nil
}

func (a *App) newNotifier() Notifier {
	return NewTerminalNotifier(a.stdout, a.stderr, a.Logger, NotifierOptions{
		Enabled:   a.Settings.ShowNotifications,
		Verbose:   a.verbose,
		StylePath: string(a.Settings.UI.ColorScheme),
	})
}

// formatErrorForDisplay formats an error for user display. ActionableErrors
// use their Format method, which shows the full chain in verbose mode.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}
