// SPDX-License-Identifier: MPL-2.0

package asset

import "strings"

type (
	// IgnoreRule excludes asset paths. A rule ending in "/" is a directory rule
	// and matches any path containing that directory segment sequence
	// ("temp/" matches "assets/temp/x.png" but not "assets/template/x.png");
	// any other rule matches any path containing it as a substring.
	IgnoreRule string

	// Filter decides asset inclusion from an ordered list of ignore rules.
	// It is read-only once built and safe for concurrent use.
	Filter struct {
		rules []IgnoreRule
	}
)

// IsDirectory reports whether the rule targets a directory segment.
func (r IgnoreRule) IsDirectory() bool {
	return strings.HasSuffix(string(r), "/")
}

// Matches reports whether rel (forward-slash, project-relative) is excluded
// by this rule. Empty rules never match.
func (r IgnoreRule) Matches(rel string) bool {
	if r == "" {
		return false
	}
	return strings.Contains(rel, string(r))
}

// NewFilter builds a Filter. Blank rules are dropped.
func NewFilter(rules []string) *Filter {
	f := &Filter{rules: make([]IgnoreRule, 0, len(rules))}
	for _, r := range rules {
		if strings.TrimSpace(r) == "" {
			continue
		}
		f.rules = append(f.rules, IgnoreRule(r))
	}
	return f
}

// Rules returns a copy of the filter's rules.
func (f *Filter) Rules() []IgnoreRule {
	out := make([]IgnoreRule, len(f.rules))
	copy(out, f.rules)
	return out
}

// Match returns the first rule that excludes rel.
func (f *Filter) Match(rel string) (IgnoreRule, bool) {
	rel = normalize(rel)
	for _, r := range f.rules {
		if r.Matches(rel) {
			return r, true
		}
	}
	return "", false
}

// Excluded reports whether any rule excludes rel.
func (f *Filter) Excluded(rel string) bool {
	_, ok := f.Match(rel)
	return ok
}
