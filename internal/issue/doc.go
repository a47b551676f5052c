// SPDX-License-Identifier: MPL-2.0

// Package issue provides typed, actionable errors for asset generation.
//
// Every failure that can end a generation run carries a Kind attached at the
// point where it happened (configuration stage, scan stage, write stage), so
// callers classify errors with errors.As instead of inspecting message text.
// Each Kind also has a Markdown help card with remediation steps that the CLI
// renders in verbose mode.
package issue
