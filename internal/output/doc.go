// SPDX-License-Identifier: MPL-2.0

// Package output persists generated source and compares it with what is
// already on disk.
package output
