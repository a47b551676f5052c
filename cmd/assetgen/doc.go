// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the assetgen CLI.
//
// The Cobra command tree is built around an App, the composition root that
// owns the generation pipeline, the watcher registry and the terminal
// notifier. Commands delegate to those services and only format results.
package cmd
