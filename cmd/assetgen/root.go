// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// newRootCommand builds the command tree around app.
func newRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	root := &cobra.Command{
		Use:   "assetgen",
		Short: "Generate Dart constants for Flutter assets",
		Long: TitleStyle.Render("assetgen") + SubtitleStyle.Render(" - Dart constants for Flutter assets") + `

assetgen reads the asset paths declared under flutter.assets in
pubspec.yaml, scans them and writes a Dart class with one constant per
asset. Options live in the flutter_assets_generator section.

` + SubtitleStyle.Render("Examples:") + `
  assetgen generate              Generate for the project in the current directory
  assetgen generate --all        Generate for every project below the current directory
  assetgen watch                 Regenerate whenever an asset changes
  assetgen add assets/icons      Declare a directory under flutter.assets
  assetgen lookup logo           Print the asset path of a constant`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_, skip := cmd.Annotations[skipSettingsAnnotation]
			return app.configure(cmd.Context(), flags, !skip)
		},
	}

	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "settings file (default is $HOME/.config/assetgen/config.cue)")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	root.AddCommand(
		newGenerateCommand(app),
		newWatchCommand(app),
		newAddCommand(app),
		newLookupCommand(app),
		newProjectsCommand(app),
		newConfigCommand(app, flags),
	)
	return root
}

// usageArgs turns argument validation failures into usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return usageError(validate(cmd, args))
	}
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Main runs the CLI and returns the process exit code.
func Main() int {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return ExitFailure
	}

	err = fang.Execute(
		context.Background(),
		newRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	)
	return exitCode(err)
}

// Execute runs the CLI and exits. It is called by main.main().
func Execute() {
	os.Exit(Main())
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}
