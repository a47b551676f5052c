// SPDX-License-Identifier: MPL-2.0

package asset

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/assetgen/assetgen/internal/issue"
)

type (
	// Entry is one asset file. Entries are values and are never mutated after
	// the scanner creates them; RelativePath is their identity.
	Entry struct {
		// AbsolutePath is the file's location on disk.
		AbsolutePath string
		// RelativePath is the project-root relative path with forward slashes.
		RelativePath string
		// Filename is the base name including the extension.
		Filename string
		// Extension is the file extension without the leading dot.
		Extension string
		// ParentDir is the name of the directory containing the file.
		ParentDir string
		// AssetPath is the value written into the generated file:
		// RelativePath, optionally prefixed with "packages/<name>/".
		AssetPath string
	}

	// ScanResult is the outcome of one scan. It is built fresh per scan.
	ScanResult struct {
		Assets        []Entry
		IncludedCount int
		// ExcludedPaths lists the relative paths dropped by ignore rules.
		ExcludedPaths []string
		// Skipped holds one issue.KindRootUnreadable error per declared root
		// or sub-directory that could not be read. The scan went on without
		// them.
		Skipped []*issue.ActionableError
	}
)

// ExcludedCount returns the number of files dropped by ignore rules.
func (r ScanResult) ExcludedCount() int {
	return len(r.ExcludedPaths)
}

// NewEntry builds an Entry for the file at absPath inside projectRoot.
// When packageName is non-empty the asset path gets a "packages/<name>/"
// prefix.
func NewEntry(projectRoot, absPath, packageName string) Entry {
	rel, err := filepath.Rel(projectRoot, absPath)
	if err != nil {
		rel = absPath
	}
	rel = normalize(rel)

	filename := filepath.Base(absPath)
	assetPath := rel
	if packageName != "" {
		assetPath = path.Join("packages", packageName, rel)
	}

	return Entry{
		AbsolutePath: absPath,
		RelativePath: rel,
		Filename:     filename,
		Extension:    strings.TrimPrefix(filepath.Ext(filename), "."),
		ParentDir:    filepath.Base(filepath.Dir(absPath)),
		AssetPath:    assetPath,
	}
}

// normalize converts Windows separators to forward slashes regardless of
// the host platform.
func normalize(p string) string {
	return strings.ReplaceAll(filepath.ToSlash(p), `\`, "/")
}
