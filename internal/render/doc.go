// SPDX-License-Identifier: MPL-2.0

// Package render turns name assignments into Dart source and reads generated
// files back.
package render
