// SPDX-License-Identifier: MPL-2.0

// Package pipeline runs one generation for a project: resolve configuration,
// scan the declared asset roots, assign names, render and persist.
//
// Every failure is reported through the returned Outcome; Run never returns
// an error and never panics past its own boundary.
package pipeline
