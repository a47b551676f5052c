// SPDX-License-Identifier: MPL-2.0

// Package naming maps asset files to unique, language-safe constant names.
//
// A Generator converts each filename to a candidate identifier under a Policy
// (casing style, split pattern, parent grouping). When a candidate is already
// taken by an earlier asset in the same run, the later asset is marked as
// conflicted and gets a qualified name: first its parent directory, then
// progressively more of its path, and finally a numeric suffix. The first
// asset to claim a name keeps it, so the input order matters.
package naming
