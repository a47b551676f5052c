// SPDX-License-Identifier: MPL-2.0

// Package config resolves everything assetgen needs to know about a project
// and about the user.
//
// Project configuration lives in the Flutter manifest (pubspec.yaml): the
// declared asset paths under flutter.assets and the generator options under
// flutter_assets_generator. The manifest is read with Viper, where every
// option has a registered default, and the generator section is validated
// against an embedded CUE schema (manifest_schema.cue).
//
// User settings are read from ~/.config/assetgen/config.cue (XDG equivalent
// on Linux, ~/Library/Application Support/assetgen on macOS, %APPDATA% on
// Windows) and validated against config_schema.cue.
package config
