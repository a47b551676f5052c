// SPDX-License-Identifier: MPL-2.0

package output

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/assetgen/assetgen/internal/issue"
)

// FileSink writes generated files below a project root.
type FileSink struct{}

// Location resolves a slash-separated output location against projectRoot.
func Location(projectRoot, outputLocation string) string {
	return filepath.Join(projectRoot, filepath.FromSlash(outputLocation))
}

// Write stores text at outputLocation, creating parent directories. The file
// is replaced atomically so readers never observe a partial write. It
// returns the absolute path written; failures carry issue.KindOutputWrite.
func (FileSink) Write(projectRoot, outputLocation, text string) (string, error) {
	target := Location(projectRoot, outputLocation)

	if err := writeAtomic(target, []byte(text)); err != nil {
		return "", issue.NewErrorContext().
			WithKind(issue.KindOutputWrite).
			WithOperation("write generated file").
			WithResource(target).
			WithSuggestion("Check write permissions for " + filepath.Dir(target)).
			Wrap(err).
			Build()
	}
	return target, nil
}

// Read returns the current content at outputLocation, or "" when the file
// does not exist yet.
func (FileSink) Read(projectRoot, outputLocation string) (string, error) {
	data, err := os.ReadFile(Location(projectRoot, outputLocation))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read generated file: %w", err)
	}
	return string(data), nil
}

func writeAtomic(target string, data []byte) (err error) {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name()) // best-effort cleanup
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(target), err)
	}
	return nil
}
