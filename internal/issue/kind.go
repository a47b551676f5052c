// SPDX-License-Identifier: MPL-2.0

package issue

import "errors"

const (
	// KindUnknown is the classification of errors that carry no kind.
	KindUnknown Kind = iota
	// KindConfigMissing means the project manifest (pubspec.yaml) does not exist.
	KindConfigMissing
	// KindConfigInvalid means the manifest could not be parsed or holds an
	// out-of-range generator option.
	KindConfigInvalid
	// KindNoAssets means the manifest declares no asset paths.
	KindNoAssets
	// KindRootUnreadable means a declared asset root could not be read. The
	// scanner skips the root and records the error in ScanResult.Skipped.
	KindRootUnreadable
	// KindOutputWrite means the generated file could not be written.
	KindOutputWrite
)

// Kind classifies an ActionableError.
type Kind int

// String returns the stable identifier of the kind.
func (k Kind) String() string {
	switch k {
	case KindConfigMissing:
		return "config_missing"
	case KindConfigInvalid:
		return "config_invalid"
	case KindNoAssets:
		return "no_assets"
	case KindRootUnreadable:
		return "root_unreadable"
	case KindOutputWrite:
		return "output_write"
	default:
		return "unknown"
	}
}

// Kinds returns every kind, KindUnknown last.
func Kinds() []Kind {
	return []Kind{
		KindConfigMissing,
		KindConfigInvalid,
		KindNoAssets,
		KindRootUnreadable,
		KindOutputWrite,
		KindUnknown,
	}
}

// KindOf returns the kind of the outermost ActionableError in err's chain,
// or KindUnknown when there is none.
func KindOf(err error) Kind {
	var ae *ActionableError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

// Classify converts any error into an ActionableError. Errors that already
// are (or wrap) an ActionableError are returned unchanged; anything else is
// wrapped as KindUnknown under the given operation.
func Classify(err error, operation string) *ActionableError {
	if err == nil {
		return nil
	}
	var ae *ActionableError
	if errors.As(err, &ae) {
		return ae
	}
	return &ActionableError{
		Kind:      KindUnknown,
		Operation: operation,
		Cause:     err,
	}
}
