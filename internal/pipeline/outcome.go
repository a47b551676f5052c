// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"time"

	"github.com/assetgen/assetgen/internal/issue"
	"github.com/assetgen/assetgen/internal/naming"
)

// Outcome is the result of one run.
type Outcome struct {
	// Project is the project root, absolute once configuration resolved.
	Project string
	// Success is set when assignments were produced and persisted (or
	// rendered, for a dry run).
	Success bool
	// DryRun marks outcomes of runs that did not write.
	DryRun bool
	// Unchanged is set when the generated text matched the file on disk.
	Unchanged bool

	Assignments   []naming.Assignment
	Conflicts     []naming.Assignment
	IncludedCount int
	ExcludedCount int
	ConflictCount int
	ExcludedPaths []string

	// OutputLocation is the absolute path of the generated file.
	OutputLocation string
	// Rendered and Diff are only filled by dry runs.
	Rendered string
	Diff     string

	// Skipped holds the non-fatal issue.KindRootUnreadable errors of asset
	// paths the scan could not read.
	Skipped []*issue.ActionableError

	// Err is the classified failure, nil on success and for the non-fatal
	// "nothing to generate" outcome.
	Err      *issue.ActionableError
	Message  string
	Duration time.Duration
}

// Kind returns the failure kind, or issue.KindUnknown when the run did not
// fail.
func (o Outcome) Kind() issue.Kind {
	if o.Err == nil {
		return issue.KindUnknown
	}
	return o.Err.Kind
}

func (o Outcome) failed(err *issue.ActionableError) Outcome {
	o.Success = false
	o.Err = err
	o.Message = err.Error()
	return o
}
