// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/assetgen/assetgen/internal/config"

	"github.com/spf13/cobra"
)

func newAddCommand(app *App) *cobra.Command {
	var generate bool

	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Declare a file or directory under flutter.assets",
		Long: `Add path to the flutter.assets list of the enclosing Flutter project.
Directories are declared with a trailing slash. The list is kept sorted and
existing entries are left untouched.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			root, err := config.ProjectRootOf(target)
			if err != nil {
				return &ExitError{Code: ExitFailure, Err: fmt.Errorf("%s is not in a Flutter project", args[0])}
			}

			entry, err := config.AddAssetPath(root, target)
			switch {
			case errors.Is(err, config.ErrAssetAlreadyDeclared):
				fmt.Fprintf(app.stdout, "%s %s\n", SubtitleStyle.Render("·"), "Asset path already exists: "+displayPath(root, target))
			case err != nil:
				return err
			default:
				fmt.Fprintf(app.stdout, "%s Added to assets: %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(entry))
			}

			if !generate {
				return nil
			}
			out := app.Pipeline.Run(cmd.Context(), root)
			app.Notifier.Notify(out, true)
			if out.Err != nil {
				cmd.SilenceErrors = true
				return &ExitError{Code: ExitFailure}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&generate, "generate", false, "regenerate the constants file afterwards")
	return cmd
}
