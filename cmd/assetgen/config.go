// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/assetgen/assetgen/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `assetgen config` command tree.
func newConfigCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect assetgen configuration",
		Long: `Inspect assetgen configuration.

Project options are read from the flutter_assets_generator section of
pubspec.yaml. User settings are stored in:
  - Linux: ~/.config/assetgen/config.cue
  - macOS: ~/Library/Application Support/assetgen/config.cue
  - Windows: %APPDATA%\assetgen\config.cue`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show [dir]",
		Short: "Show user settings and the project's generator options",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return showConfig(cmd.Context(), app, dir)
		},
	})

	var format string
	dumpCmd := &cobra.Command{
		Use:   "dump [dir]",
		Short: "Output the resolved project configuration",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := config.Format(strings.ToLower(format))
			if ok, errs := f.IsValid(); !ok {
				return usageError(errs[0])
			}
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			proj, err := app.Config.Project(cmd.Context(), dir)
			if err != nil {
				return err
			}
			data, err := config.Encode(proj, f)
			if err != nil {
				return err
			}
			_, err = app.stdout.Write(data)
			return err
		},
	}
	dumpCmd.Flags().StringVar(&format, "format", string(config.FormatYAML), "output format: yaml, toml or cue")
	cfgCmd.AddCommand(dumpCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:         "init",
		Short:       "Create the default settings file",
		Args:        usageArgs(cobra.NoArgs),
		Annotations: map[string]string{skipSettingsAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return initSettings(app, rootFlags)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:         "path",
		Short:       "Show the settings file path",
		Args:        usageArgs(cobra.NoArgs),
		Annotations: map[string]string{skipSettingsAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := config.SettingsPath(config.LoadOptions{ConfigFilePath: rootFlags.configPath})
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, p)
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App, dir string) error {
	w := app.stdout
	key := CmdStyle.Render
	value := SuccessStyle.Render

	fmt.Fprintln(w, TitleStyle.Render("User settings"))
	if app.settingsPath != "" {
		fmt.Fprintf(w, "%s: %s\n", key("file"), app.settingsPath)
	} else {
		fmt.Fprintf(w, "%s: %s\n", key("file"), SubtitleStyle.Render("(using defaults)"))
	}
	s := app.Settings
	fmt.Fprintf(w, "%s: %s\n", key("auto_generation"), value(fmt.Sprint(s.AutoGeneration)))
	fmt.Fprintf(w, "%s: %s\n", key("show_notifications"), value(fmt.Sprint(s.ShowNotifications)))
	fmt.Fprintf(w, "%s: %s\n", key("debounce"), value(s.Debounce))
	fmt.Fprintf(w, "%s:\n", key("ui"))
	fmt.Fprintf(w, "  verbose: %s\n", value(fmt.Sprint(s.UI.Verbose)))
	fmt.Fprintf(w, "  color_scheme: %s\n", value(string(s.UI.ColorScheme)))

	fmt.Fprintln(w)
	proj, err := app.Config.Project(ctx, dir)
	if err != nil {
		fmt.Fprintln(w, TitleStyle.Render("Project"))
		fmt.Fprintf(w, "%s %s\n", WarningStyle.Render("!"), formatErrorForDisplay(err, app.verbose))
		return nil
	}

	g := proj.Generator
	fmt.Fprintln(w, TitleStyle.Render("Project ")+SubtitleStyle.Render(proj.Root))
	fmt.Fprintf(w, "%s: %s\n", key("name"), value(proj.PackageName))
	fmt.Fprintf(w, "%s:\n", key("assets"))
	for _, p := range proj.AssetPaths {
		fmt.Fprintf(w, "  - %s\n", value(p))
	}
	fmt.Fprintf(w, "%s:\n", key(config.GeneratorSection))
	fmt.Fprintf(w, "  output: %s\n", value(proj.OutputPath()))
	fmt.Fprintf(w, "  class_name: %s\n", value(g.ClassName))
	fmt.Fprintf(w, "  naming_style: %s\n", value(string(g.NamingStyle)))
	fmt.Fprintf(w, "  named_with_parent: %s\n", value(fmt.Sprint(g.NamedWithParent)))
	fmt.Fprintf(w, "  filename_split_pattern: %s\n", value(g.FilenameSplitPattern))
	fmt.Fprintf(w, "  leading_with_package_name: %s\n", value(fmt.Sprint(g.LeadingWithPackageName)))
	fmt.Fprintf(w, "  auto_detection: %s\n", value(fmt.Sprint(g.AutoDetection)))
	fmt.Fprintf(w, "  sort_assets: %s\n", value(fmt.Sprint(g.SortAssets)))
	if len(g.PathIgnore) == 0 {
		fmt.Fprintf(w, "  path_ignore: %s\n", SubtitleStyle.Render("(none)"))
	} else {
		fmt.Fprintln(w, "  path_ignore:")
		for _, rule := range g.PathIgnore {
			fmt.Fprintf(w, "    - %s\n", value(rule))
		}
	}
	return nil
}

func initSettings(app *App, rootFlags *rootFlagValues) error {
	opts := config.LoadOptions{ConfigFilePath: rootFlags.configPath}
	p, err := config.SettingsPath(opts)
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(p); statErr == nil {
		fmt.Fprintf(app.stdout, "%s Settings file already exists at %s\n", SubtitleStyle.Render("·"), p)
		return nil
	}

	if p, err = config.CreateDefaultSettings(opts); err != nil {
		return fmt.Errorf("failed to create settings: %w", err)
	}
	fmt.Fprintf(app.stdout, "%s Created default settings at %s\n", SuccessStyle.Render("✓"), p)
	return nil
}
