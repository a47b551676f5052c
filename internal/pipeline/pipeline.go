// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/assetgen/assetgen/internal/asset"
	"github.com/assetgen/assetgen/internal/config"
	"github.com/assetgen/assetgen/internal/issue"
	"github.com/assetgen/assetgen/internal/naming"
	"github.com/assetgen/assetgen/internal/output"
	"github.com/assetgen/assetgen/internal/render"

	"github.com/charmbracelet/log"
)

type (
	// Scanner discovers the assets of a project.
	Scanner interface {
		Scan(ctx context.Context, req asset.ScanRequest) (asset.ScanResult, error)
	}

	// Renderer turns assignments into source text.
	Renderer interface {
		Render(assignments []naming.Assignment, className string) string
	}

	// Sink persists rendered text and reads back the current version.
	Sink interface {
		Write(projectRoot, outputLocation, text string) (string, error)
		Read(projectRoot, outputLocation string) (string, error)
	}

	// Dependencies defines the injection points for building a Pipeline. Nil
	// fields are replaced with production defaults by New.
	Dependencies struct {
		Config   config.Provider
		Scanner  Scanner
		Renderer Renderer
		Sink     Sink
		Logger   *log.Logger
	}

	// RunOptions tunes a run.
	RunOptions struct {
		// DryRun renders and diffs against the current file without writing.
		DryRun bool
	}

	// Pipeline runs generations. Runs for the same project root are
	// serialized; runs for different projects are independent.
	Pipeline struct {
		config   config.Provider
		scanner  Scanner
		renderer Renderer
		sink     Sink
		logger   *log.Logger
		opts     RunOptions
		locks    *projectLocks
	}

	projectLocks struct {
		mu    sync.Mutex
		locks map[string]*sync.Mutex
	}
)

// New builds a Pipeline from deps.
func New(deps Dependencies) *Pipeline {
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard)
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Scanner == nil {
		deps.Scanner = asset.NewScanner(deps.Logger)
	}
	if deps.Renderer == nil {
		deps.Renderer = render.Dart{}
	}
	if deps.Sink == nil {
		deps.Sink = output.FileSink{}
	}

	return &Pipeline{
		config:   deps.Config,
		scanner:  deps.Scanner,
		renderer: deps.Renderer,
		sink:     deps.Sink,
		logger:   deps.Logger,
		locks:    &projectLocks{locks: make(map[string]*sync.Mutex)},
	}
}

// WithOptions returns a Pipeline using opts. The copy shares the per-project
// locks of p, so runs through either are still serialized.
func (p *Pipeline) WithOptions(opts RunOptions) *Pipeline {
	cp := *p
	cp.opts = opts
	return &cp
}

// RunAll runs every project in order, one at a time, and returns one outcome
// per root. A canceled context stops before the next project; the remaining
// roots get a failed outcome.
func (p *Pipeline) RunAll(ctx context.Context, roots []string) []Outcome {
	outcomes := make([]Outcome, 0, len(roots))
	for _, root := range roots {
		outcomes = append(outcomes, p.Run(ctx, root))
	}
	return outcomes
}

// Run performs one generation for the project at root.
func (p *Pipeline) Run(ctx context.Context, root string) (out Outcome) {
	start := time.Now()
	out = Outcome{Project: root, DryRun: p.opts.DryRun}

	unlock := p.locks.lock(lockKey(root))
	defer unlock()

	defer func() {
		if r := recover(); r != nil {
			out = out.failed(issue.New(issue.KindUnknown, "generate assets", root, fmt.Errorf("panic: %v", r)))
		}
		out.Duration = time.Since(start)
		p.logOutcome(out)
	}()

	if err := ctx.Err(); err != nil {
		return out.failed(issue.Classify(err, "generate assets"))
	}

	proj, err := p.config.Project(ctx, root)
	if err != nil {
		return out.failed(issue.Classify(err, "load configuration"))
	}
	out.Project = proj.Root
	logger := p.logger.With("project", proj.Root)
	logger.Debug("configuration resolved",
		"roots", len(proj.AssetPaths),
		"style", proj.Generator.NamingStyle,
		"output", proj.OutputPath(),
	)

	result, err := p.scanner.Scan(ctx, proj.ScanRequest())
	if err != nil {
		return out.failed(issue.Classify(err, "scan assets"))
	}
	out.IncludedCount = result.IncludedCount
	out.ExcludedCount = result.ExcludedCount()
	out.ExcludedPaths = result.ExcludedPaths
	out.Skipped = result.Skipped
	logger.Debug("assets scanned", "included", out.IncludedCount, "excluded", out.ExcludedCount, "skipped", len(out.Skipped))

	if result.IncludedCount == 0 {
		out.Message = "No assets found to generate"
		return out
	}

	entries := result.Assets
	if proj.Generator.SortAssets {
		entries = naming.SortEntries(entries)
	}
	out.Assignments = naming.NewGenerator(proj.Policy()).Generate(entries)
	out.Conflicts = naming.DetectConflicts(out.Assignments)
	out.ConflictCount = len(out.Conflicts)
	logger.Debug("names assigned", "constants", len(out.Assignments), "conflicts", out.ConflictCount)

	text := p.renderer.Render(out.Assignments, proj.Generator.ClassName)
	out.OutputLocation = output.Location(proj.Root, proj.OutputPath())

	current, readErr := p.sink.Read(proj.Root, proj.OutputPath())
	if readErr != nil {
		logger.Debug("cannot read current output", "err", readErr)
	}

	if p.opts.DryRun {
		out.Rendered = text
		out.Diff = output.Diff(current, text)
		out.Unchanged = readErr == nil && current == text
		out.Success = true
		out.Message = fmt.Sprintf("Would generate %d asset constants", len(out.Assignments))
		return out
	}

	if readErr == nil && current == text {
		out.Unchanged = true
		out.Success = true
		out.Message = fmt.Sprintf("Generated %d asset constants (up to date)", len(out.Assignments))
		return out
	}

	written, err := p.sink.Write(proj.Root, proj.OutputPath(), text)
	if err != nil {
		return out.failed(issue.Classify(err, "write generated file"))
	}
	out.OutputLocation = written
	out.Success = true
	out.Message = fmt.Sprintf("Generated %d asset constants", len(out.Assignments))
	return out
}

func (p *Pipeline) logOutcome(out Outcome) {
	logger := p.logger.With("project", out.Project, "duration", out.Duration.Round(time.Millisecond))
	switch {
	case out.Err != nil:
		logger.Error("generation failed", "kind", out.Err.Kind, "err", out.Err)
	case !out.Success:
		logger.Warn(out.Message, "excluded", out.ExcludedCount, "skipped", len(out.Skipped))
	default:
		logger.Info(out.Message,
			"conflicts", out.ConflictCount,
			"excluded", out.ExcludedCount,
			"skipped", len(out.Skipped),
			"output", out.OutputLocation,
		)
	}
}

// lock acquires the mutex for key and returns its release function.
func (l *projectLocks) lock(key string) func() {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

func lockKey(root string) string {
	if abs, err := filepath.Abs(root); err == nil {
		return abs
	}
	return filepath.Clean(root)
}
