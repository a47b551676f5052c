// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/assetgen/assetgen/internal/config"
	"github.com/assetgen/assetgen/internal/issue"

	"github.com/spf13/cobra"
)

func newProjectsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "projects [dir]",
		Short: "List the Flutter projects below dir",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			roots, err := config.FindProjects(cmd.Context(), dir)
			if err != nil {
				return err
			}
			if len(roots) == 0 {
				fmt.Fprintln(app.stdout, SubtitleStyle.Render("No Flutter projects found"))
				return nil
			}

			base, err := filepath.Abs(dir)
			if err != nil {
				return err
			}
			for _, root := range roots {
				proj, loadErr := app.Config.Project(cmd.Context(), root)
				if loadErr != nil {
					fmt.Fprintf(app.stdout, "%s %s\n", CmdStyle.Render(displayPath(base, root)), ErrorStyle.Render("("+issue.KindOf(loadErr).String()+")"))
					continue
				}
				fmt.Fprintf(app.stdout, "%s %s\n", CmdStyle.Render(displayPath(base, root)),
					SubtitleStyle.Render(fmt.Sprintf("(%s, %d asset path(s) → %s)", proj.PackageName, len(proj.AssetPaths), proj.OutputPath())))
			}
			return nil
		},
	}
}
