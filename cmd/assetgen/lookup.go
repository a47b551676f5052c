// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/assetgen/assetgen/internal/render"

	"github.com/spf13/cobra"
)

func newLookupCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <name> [dir]",
		Short: "Print the asset path bound to a generated constant",
		Long: `Read the generated constants file of the project in dir (default: the
current directory) and print the asset path of the constant name. The name
may be qualified with the class name, as in Assets.logo.`,
		Args: usageArgs(cobra.RangeArgs(1, 2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 2 {
				dir = args[1]
			}

			proj, err := app.Config.Project(cmd.Context(), dir)
			if err != nil {
				return err
			}

			generated := filepath.Join(proj.Root, filepath.FromSlash(proj.OutputPath()))
			constants, err := render.LookupFile(generated)
			if err != nil {
				return &ExitError{Code: ExitFailure, Err: fmt.Errorf("read %s: %w (run `assetgen generate` first)", proj.OutputPath(), err)}
			}

			name := strings.TrimPrefix(args[0], proj.Generator.ClassName+".")
			value, ok := constants[name]
			if !ok {
				return &ExitError{Code: ExitFailure, Err: fmt.Errorf("no asset constant named %q in %s", name, proj.OutputPath())}
			}

			app.Logger.Debug("constants read", "file", proj.OutputPath(), "count", len(constants))
			fmt.Fprintln(app.stdout, value)

			rel := strings.TrimPrefix(value, "packages/"+proj.PackageName+"/")
			if _, statErr := os.Stat(filepath.Join(proj.Root, filepath.FromSlash(rel))); statErr != nil {
				fmt.Fprintf(app.stderr, "%s Asset file not found: %s\n", WarningStyle.Render("!"), rel)
			}
			return nil
		},
	}
}
