// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs generation when a project's declared asset roots
// change.
//
// A Watcher registers every directory below the declared roots with fsnotify
// and coalesces bursts of events into one debounced callback carrying the set
// of changed paths. A Registry owns one Watcher per project.
package watch
