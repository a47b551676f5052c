// SPDX-License-Identifier: MPL-2.0

package naming

import (
	"errors"
	"fmt"
	"regexp"
)

const (
	// StyleCamel produces names like myIcon.
	StyleCamel Style = "camelCase"
	// StyleSnake produces names like my_icon.
	StyleSnake Style = "snake_case"
	// StylePascal produces names like MyIcon.
	StylePascal Style = "PascalCase"

	// DefaultSplitPattern separates filename words on dashes and underscores.
	DefaultSplitPattern = "[-_]"
)

var (
	// ErrInvalidStyle is returned when a Style value is not recognized.
	ErrInvalidStyle = errors.New("invalid naming style")
	// ErrInvalidSplitPattern is returned when a split pattern does not compile.
	ErrInvalidSplitPattern = errors.New("invalid filename split pattern")
)

type (
	// Style is a casing convention for generated names.
	Style string

	// InvalidStyleError is returned when a Style value is not recognized.
	// It wraps ErrInvalidStyle for errors.Is() compatibility.
	InvalidStyleError struct {
		Value Style
	}

	// InvalidSplitPatternError is returned when a split pattern is not a
	// valid regular expression. It wraps ErrInvalidSplitPattern.
	InvalidSplitPatternError struct {
		Pattern string
		Err     error
	}

	// Policy controls how names are derived. It is immutable once built.
	Policy struct {
		Style           Style
		SplitPattern    *regexp.Regexp
		GroupWithParent bool
		// ClassName is the enclosing generated class. A member may not share
		// its name, so such names are escaped like reserved words.
		ClassName string
	}
)

// Styles returns every supported style.
func Styles() []Style {
	return []Style{StyleCamel, StyleSnake, StylePascal}
}

// String returns the style name.
func (s Style) String() string { return string(s) }

// IsValid returns whether the Style is one of the defined styles.
func (s Style) IsValid() (bool, []error) {
	switch s {
	case StyleCamel, StyleSnake, StylePascal:
		return true, nil
	default:
		return false, []error{&InvalidStyleError{Value: s}}
	}
}

// Error implements the error interface.
func (e *InvalidStyleError) Error() string {
	return fmt.Sprintf("invalid naming style %q (valid: camelCase, snake_case, PascalCase)", e.Value)
}

// Unwrap returns ErrInvalidStyle for errors.Is() compatibility.
func (e *InvalidStyleError) Unwrap() error { return ErrInvalidStyle }

// Error implements the error interface.
func (e *InvalidSplitPatternError) Error() string {
	return fmt.Sprintf("invalid filename split pattern %q: %v", e.Pattern, e.Err)
}

// Unwrap returns ErrInvalidSplitPattern for errors.Is() compatibility.
func (e *InvalidSplitPatternError) Unwrap() error { return ErrInvalidSplitPattern }

// NewPolicy validates style and compiles pattern. An empty pattern selects
// DefaultSplitPattern.
func NewPolicy(style Style, pattern string, groupWithParent bool) (Policy, error) {
	if ok, errs := style.IsValid(); !ok {
		return Policy{}, errs[0]
	}
	if pattern == "" {
		pattern = DefaultSplitPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Policy{}, &InvalidSplitPatternError{Pattern: pattern, Err: err}
	}
	return Policy{Style: style, SplitPattern: re, GroupWithParent: groupWithParent}, nil
}

// DefaultPolicy returns camelCase, "[-_]" splitting, parent grouping on.
func DefaultPolicy() Policy {
	return Policy{
		Style:           StyleCamel,
		SplitPattern:    regexp.MustCompile(DefaultSplitPattern),
		GroupWithParent: true,
	}
}
