// SPDX-License-Identifier: MPL-2.0

// Package asset turns the asset roots declared in a project manifest into a
// filtered list of asset files.
//
// The Scanner walks each declared root, skipping hidden entries and
// density-variant directories (2.0x, 3x, Mx, ...), and applies the project's
// ignore rules through a Filter. It never sorts: entries appear in the order
// the filesystem returned them.
package asset
