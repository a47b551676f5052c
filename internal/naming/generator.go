// SPDX-License-Identifier: MPL-2.0

package naming

import (
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/assetgen/assetgen/internal/asset"
)

type (
	// Assignment binds a generated name to an asset.
	Assignment struct {
		// Name is the generated constant name, unique within one run.
		Name string
		// Value is the asset path written into the generated file.
		Value string
		// Source is the asset the name was generated for.
		Source asset.Entry
		// Conflicted is set when the unqualified name was already taken.
		Conflicted bool
		// ConflictedWith is the relative path of the asset that took the
		// unqualified name first.
		ConflictedWith string
	}

	// Generator assigns names under one Policy. A Generator holds no state
	// between Generate calls and is safe for concurrent use.
	Generator struct {
		policy Policy
	}
)

// NewGenerator creates a Generator for policy.
func NewGenerator(policy Policy) *Generator {
	return &Generator{policy: policy}
}

// Policy returns the generator's policy.
func (g *Generator) Policy() Policy {
	return g.policy
}

// Candidate returns the unqualified name for filename.
func (g *Generator) Candidate(filename string) string {
	return g.policy.identifier(Preprocess(filename))
}

// Generate assigns a unique name to every entry, in the given order.
func (g *Generator) Generate(entries []asset.Entry) []Assignment {
	taken := make(map[string]asset.Entry, len(entries))
	out := make([]Assignment, 0, len(entries))

	for _, e := range entries {
		a := Assignment{
			Name:   g.Candidate(e.Filename),
			Value:  e.AssetPath,
			Source: e,
		}

		if prior, clash := taken[a.Name]; clash {
			a.Conflicted = true
			a.ConflictedWith = prior.RelativePath
			a.Name = g.resolve(e, a.Name, taken)
		}

		taken[a.Name] = e
		out = append(out, a)
	}

	return out
}

// resolve finds a free name for e after conflicting was found taken.
func (g *Generator) resolve(e asset.Entry, conflicting string, taken map[string]asset.Entry) string {
	free := func(name string) bool {
		_, used := taken[name]
		return !used
	}

	base := Preprocess(e.Filename)

	if g.policy.GroupWithParent {
		if name := g.policy.identifier(qualify([]string{e.ParentDir}, base)); free(name) {
			return name
		}
	}

	dirs := dirSegments(e.RelativePath)
	for i := len(dirs) - 1; i >= 0; i-- {
		if name := g.policy.identifier(qualify(dirs[i:], base)); free(name) {
			return name
		}
	}

	for n := 2; ; n++ {
		if name := conflicting + strconv.Itoa(n); free(name) {
			return name
		}
	}
}

// dirSegments returns the directory components of a slash-separated
// relative path, outermost first.
func dirSegments(rel string) []string {
	dir := path.Dir(rel)
	if dir == "." || dir == "/" {
		return nil
	}
	return strings.Split(strings.Trim(dir, "/"), "/")
}

// DetectConflicts returns the assignments whose unqualified name collided
// with an earlier asset. It never changes names.
func DetectConflicts(assignments []Assignment) []Assignment {
	var out []Assignment
	for _, a := range assignments {
		if a.Conflicted {
			out = append(out, a)
		}
	}
	return out
}

// SortEntries returns a copy of entries ordered by RelativePath, which makes
// naming independent of directory read order.
func SortEntries(entries []asset.Entry) []asset.Entry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b asset.Entry) int {
		return strings.Compare(a.RelativePath, b.RelativePath)
	})
	return out
}
