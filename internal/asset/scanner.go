// SPDX-License-Identifier: MPL-2.0

package asset

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/assetgen/assetgen/internal/issue"

	"github.com/charmbracelet/log"
)

// densityVariantDir matches resolution-variant buckets such as 2.0x, 3x or
// Mx. Flutter resolves those at runtime from the base asset, so they are
// never scanned as assets of their own.
var densityVariantDir = regexp.MustCompile(`(?i)^(\d+\.?\d*x|[MN]x)$`)

type (
	// ScanRequest describes one scan.
	ScanRequest struct {
		// Roots are the declared asset paths, relative to ProjectRoot. A
		// trailing "/" is accepted and ignored.
		Roots []string
		// ProjectRoot is the absolute project directory.
		ProjectRoot string
		// Ignore are the project's ignore rules.
		Ignore []string
		// PackagePrefix enables the "packages/<PackageName>/" asset path prefix.
		PackagePrefix bool
		// PackageName is the project's package name.
		PackageName string
	}

	// Scanner walks declared asset roots.
	Scanner struct {
		logger *log.Logger
	}
)

// NewScanner creates a Scanner. A nil logger discards output.
func NewScanner(logger *log.Logger) *Scanner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Scanner{logger: logger}
}

// IsDensityVariantDir reports whether name is a density-variant directory.
func IsDensityVariantDir(name string) bool {
	return densityVariantDir.MatchString(name)
}

// Scan walks every declared root and returns the included assets plus the
// paths dropped by ignore rules. Unreadable roots and sub-directories are
// logged and skipped; the only error returned is ctx cancellation.
func (s *Scanner) Scan(ctx context.Context, req ScanRequest) (ScanResult, error) {
	filter := NewFilter(req.Ignore)
	pkg := ""
	if req.PackagePrefix {
		pkg = req.PackageName
	}

	var (
		result ScanResult
		seen   = make(map[string]struct{})
	)

	add := func(absPath string) {
		entry := NewEntry(req.ProjectRoot, absPath, pkg)
		if _, dup := seen[entry.RelativePath]; dup {
			return
		}
		seen[entry.RelativePath] = struct{}{}

		if rule, excluded := filter.Match(entry.RelativePath); excluded {
			s.logger.Debug("asset excluded", "path", entry.RelativePath, "rule", rule)
			result.ExcludedPaths = append(result.ExcludedPaths, entry.RelativePath)
			return
		}
		result.Assets = append(result.Assets, entry)
	}

	for _, declared := range req.Roots {
		if err := ctx.Err(); err != nil {
			return ScanResult{}, err
		}

		root := resolveRoot(req.ProjectRoot, declared)
		info, err := os.Stat(root)
		if err != nil {
			s.logger.Warn("asset root unreadable, skipping", "root", declared, "err", err)
			result.Skipped = append(result.Skipped, unreadable(declared, err))
			continue
		}

		if !info.IsDir() {
			if info.Mode().IsRegular() {
				add(root)
			}
			continue
		}

		skip := func(p string, err error) {
			result.Skipped = append(result.Skipped, unreadable(NewEntry(req.ProjectRoot, p, "").RelativePath, err))
		}
		if err := s.walk(ctx, root, add, skip); err != nil {
			return ScanResult{}, err
		}
	}

	result.IncludedCount = len(result.Assets)
	return result, nil
}

// walk visits every regular file below root, skipping hidden entries and
// density-variant directories. Unreadable directories are reported to skip.
func (s *Scanner) walk(ctx context.Context, root string, visit func(absPath string), skip func(p string, err error)) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Best-effort: an unreadable directory drops its subtree only.
			s.logger.Warn("cannot read asset directory, skipping", "path", p, "err", walkErr)
			skip(p, walkErr)
			if d != nil && d.IsDir() && p != root {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == root {
			return nil
		}

		name := d.Name()
		if strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if IsDensityVariantDir(name) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type().IsRegular() {
			visit(p)
		}
		return nil
	})
}

func unreadable(path string, err error) *issue.ActionableError {
	return issue.NewErrorContext().
		WithKind(issue.KindRootUnreadable).
		WithOperation("read asset path").
		WithResource(path).
		WithSuggestion("Check the path declared under flutter.assets in pubspec.yaml").
		Wrap(err).
		Build()
}

// resolveRoot joins a declared asset path onto the project root.
func resolveRoot(projectRoot, declared string) string {
	declared = strings.TrimSuffix(normalize(declared), "/")
	if filepath.IsAbs(declared) {
		return filepath.Clean(declared)
	}
	return filepath.Join(projectRoot, filepath.FromSlash(declared))
}
