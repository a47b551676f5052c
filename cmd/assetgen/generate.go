// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/assetgen/assetgen/internal/config"
	"github.com/assetgen/assetgen/internal/pipeline"

	"github.com/spf13/cobra"
)

type generateFlagValues struct {
	all    bool
	dryRun bool
}

func newGenerateCommand(app *App) *cobra.Command {
	flags := &generateFlagValues{}

	cmd := &cobra.Command{
		Use:   "generate [dir]",
		Short: "Generate the asset constants file",
		Long: `Generate the Dart constants file for the Flutter project in dir
(default: the current directory).

Names are assigned in scan order: declared asset paths in order, each
walked depth-first in lexical order. When two files map to the same name the
first one scanned keeps it. Set sort_assets: true to order by path instead.

With --all, every Flutter project below dir is generated, one after the
other. With --dry-run nothing is written; the diff against the current
file is printed instead.`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runGenerate(cmd, app, flags, dir)
		},
	}

	cmd.Flags().BoolVar(&flags.all, "all", false, "generate for every Flutter project below dir")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "print the changes instead of writing them")
	return cmd
}

func runGenerate(cmd *cobra.Command, app *App, flags *generateFlagValues, dir string) error {
	ctx := cmd.Context()

	p := app.Pipeline
	if flags.dryRun {
		p = p.WithOptions(pipeline.RunOptions{DryRun: true})
	}

	var outcomes []pipeline.Outcome
	if flags.all {
		roots, err := config.FindProjects(ctx, dir)
		if err != nil {
			return err
		}
		if len(roots) == 0 {
			return &ExitError{Code: ExitFailure, Err: fmt.Errorf("no Flutter projects found in %s", dir)}
		}
		outcomes = p.RunAll(ctx, roots)
		app.Notifier.NotifyAll(outcomes, true)
	} else {
		out := p.Run(ctx, dir)
		app.Notifier.Notify(out, true)
		outcomes = []pipeline.Outcome{out}
	}

	if flags.dryRun {
		for _, out := range outcomes {
			printDryRun(app.stdout, out)
		}
	}

	for _, out := range outcomes {
		if out.Err != nil {
			cmd.SilenceErrors = true
			return &ExitError{Code: ExitFailure}
		}
	}
	return nil
}

// printDryRun prints the diff a dry run computed.
func printDryRun(w io.Writer, out pipeline.Outcome) {
	if !out.Success {
		return
	}
	location := displayPath(out.Project, out.OutputLocation)
	if out.Diff == "" {
		fmt.Fprintf(w, "%s %s\n", SubtitleStyle.Render("No changes to"), location)
		return
	}

	fmt.Fprintf(w, "\n%s\n", TitleStyle.Render(location))
	for _, line := range strings.SplitAfter(out.Diff, "\n") {
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "+"):
			fmt.Fprint(w, diffAddStyle.Render(strings.TrimSuffix(line, "\n"))+"\n")
		case strings.HasPrefix(line, "-"):
			fmt.Fprint(w, diffDelStyle.Render(strings.TrimSuffix(line, "\n"))+"\n")
		default:
			fmt.Fprint(w, line)
		}
	}
}
