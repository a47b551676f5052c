// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/assetgen/assetgen/internal/issue"
	"github.com/assetgen/assetgen/internal/pipeline"

	"github.com/charmbracelet/log"
)

const (
	// maxListedConflicts caps the conflict list of one notification.
	maxListedConflicts = 5
	// maxListedExcluded caps the excluded-path list of one notification.
	maxListedExcluded = 10
)

type (
	// Notifier reports generation outcomes. Outcomes are always logged by
	// the pipeline; announce adds a visible notification on top.
	Notifier interface {
		Notify(out pipeline.Outcome, announce bool)
		NotifyAll(outs []pipeline.Outcome, announce bool)
	}

	// NotifierOptions configures the terminal notifier.
	NotifierOptions struct {
		// Enabled turns visible notifications on. When false outcomes are
		// only logged.
		Enabled bool
		// Verbose adds the error chain and the help card to failures.
		Verbose bool
		// StylePath selects the glamour style for help cards.
		StylePath string
	}

	terminalNotifier struct {
		stdout io.Writer
		stderr io.Writer
		logger *log.Logger
		opts   NotifierOptions
	}
)

// NewTerminalNotifier creates a Notifier writing styled summaries to stdout
// and failures to stderr.
func NewTerminalNotifier(stdout, stderr io.Writer, logger *log.Logger, opts NotifierOptions) Notifier {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &terminalNotifier{stdout: stdout, stderr: stderr, logger: logger, opts: opts}
}

func (n *terminalNotifier) Notify(out pipeline.Outcome, announce bool) {
	if !announce || !n.opts.Enabled {
		return
	}

	switch {
	case out.Err != nil:
		n.failure(out)
	case !out.Success:
		fmt.Fprintf(n.stdout, "%s %s %s\n", WarningStyle.Render("!"), out.Message, SubtitleStyle.Render("("+out.Project+")"))
		n.skipped(out)
	default:
		n.success(out)
		n.skipped(out)
	}
}

func (n *terminalNotifier) NotifyAll(outs []pipeline.Outcome, announce bool) {
	for _, out := range outs {
		n.Notify(out, announce)
	}

	succeeded := 0
	for _, out := range outs {
		if out.Success {
			succeeded++
		}
	}
	failed := len(outs) - succeeded

	if !announce || !n.opts.Enabled {
		n.logger.Info("generation finished", "projects", len(outs), "succeeded", succeeded, "failed", failed)
		return
	}

	fmt.Fprintln(n.stdout)
	if failed == 0 {
		fmt.Fprintf(n.stdout, "%s Generated assets for %d project(s)\n", SuccessStyle.Render("✓"), succeeded)
		return
	}
	fmt.Fprintf(n.stdout, "%s Generated assets for %d project(s), %d failed\n", WarningStyle.Render("!"), succeeded, failed)
}

func (n *terminalNotifier) success(out pipeline.Outcome) {
	fmt.Fprintf(n.stdout, "%s %s → %s\n", SuccessStyle.Render("✓"), out.Message, CmdStyle.Render(displayPath(out.Project, out.OutputLocation)))

	if out.ConflictCount > 0 {
		fmt.Fprintf(n.stdout, "%s %d naming conflict(s) resolved:\n", WarningStyle.Render("!"), out.ConflictCount)
		for i, c := range out.Conflicts {
			if i == maxListedConflicts {
				fmt.Fprintf(n.stdout, "    %s\n", SubtitleStyle.Render(fmt.Sprintf("… and %d more", len(out.Conflicts)-maxListedConflicts)))
				break
			}
			fmt.Fprintf(n.stdout, "    %s ← %s %s\n",
				CmdStyle.Render(c.Name), c.Source.RelativePath,
				SubtitleStyle.Render("(conflicted with "+c.ConflictedWith+")"))
		}
	}

	if out.ExcludedCount > 0 {
		fmt.Fprintf(n.stdout, "%s %d path(s) excluded by path_ignore\n", SubtitleStyle.Render("·"), out.ExcludedCount)
		if n.opts.Verbose {
			for i, p := range out.ExcludedPaths {
				if i == maxListedExcluded {
					fmt.Fprintf(n.stdout, "    %s\n", SubtitleStyle.Render(fmt.Sprintf("… and %d more", len(out.ExcludedPaths)-maxListedExcluded)))
					break
				}
				fmt.Fprintf(n.stdout, "    %s\n", VerboseStyle.Render(p))
			}
		}
	}
}

// skipped lists the asset paths the scan could not read.
func (n *terminalNotifier) skipped(out pipeline.Outcome) {
	if len(out.Skipped) == 0 {
		return
	}
	fmt.Fprintf(n.stdout, "%s %d asset path(s) could not be read and were skipped:\n", WarningStyle.Render("!"), len(out.Skipped))
	for _, s := range out.Skipped {
		fmt.Fprintf(n.stdout, "    %s\n", CmdStyle.Render(s.Resource))
		if n.opts.Verbose && s.Cause != nil {
			fmt.Fprintf(n.stdout, "      %s\n", VerboseStyle.Render(s.Cause.Error()))
		}
	}
	if n.opts.Verbose {
		n.helpCard(n.stdout, issue.KindRootUnreadable)
	}
}

func (n *terminalNotifier) failure(out pipeline.Outcome) {
	fmt.Fprintf(n.stderr, "%s %s\n", ErrorStyle.Render("✗"), out.Err.Format(n.opts.Verbose))
	if n.opts.Verbose {
		n.helpCard(n.stderr, out.Err.Kind)
	}
}

// helpCard prints the rendered markdown help for kind.
func (n *terminalNotifier) helpCard(w io.Writer, kind issue.Kind) {
	card := issue.Get(kind)
	if card == nil {
		return
	}
	rendered, err := card.Render(n.opts.StylePath)
	if err != nil {
		n.logger.Debug("render help card", "err", err)
		return
	}
	fmt.Fprint(w, rendered)
}

// displayPath shows p relative to base when p lies below it.
func displayPath(base, p string) string {
	if base == "" || p == "" {
		return p
	}
	rel, err := filepath.Rel(base, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return p
	}
	return filepath.ToSlash(rel)
}
