// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/assetgen/assetgen/internal/cueutil"
	"github.com/assetgen/assetgen/internal/issue"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "assetgen"
	// SettingsFileName is the name of the settings file (without extension).
	SettingsFileName = "config"
	// SettingsFileExt is the settings file extension.
	SettingsFileExt = "cue"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the assetgen settings directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// SettingsPath returns the settings file location selected by opts.
func SettingsPath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		return opts.ConfigFilePath, nil
	}
	dir := opts.ConfigDirPath
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, SettingsFileName+"."+SettingsFileExt), nil
}

// LoadSettings loads user settings and returns them with the path they were
// read from. A missing default settings file yields DefaultSettings and an
// empty path; a missing explicit file is an error.
func LoadSettings(ctx context.Context, opts LoadOptions) (*Settings, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load settings canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()

	defaults := DefaultSettings()
	v.SetDefault("auto_generation", defaults.AutoGeneration)
	v.SetDefault("show_notifications", defaults.ShowNotifications)
	v.SetDefault("debounce", defaults.Debounce)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.color_scheme", string(defaults.UI.ColorScheme))

	settingsPath, err := SettingsPath(opts)
	if err != nil {
		return nil, "", err
	}

	resolvedPath := ""
	switch {
	case fileExists(settingsPath):
		if err := loadCUEIntoViper(v, settingsPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithKind(issue.KindConfigInvalid).
				WithOperation("load settings").
				WithResource(settingsPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Run 'assetgen config show' to see the default settings").
				Wrap(err).
				Build()
		}
		resolvedPath = settingsPath
	case opts.ConfigFilePath != "":
		return nil, "", issue.NewErrorContext().
			WithKind(issue.KindConfigMissing).
			WithOperation("load settings").
			WithResource(opts.ConfigFilePath).
			WithSuggestion("Verify the file path is correct").
			WithSuggestion("Run 'assetgen config init' to create a settings file").
			Wrap(fmt.Errorf("settings file not found: %s", opts.ConfigFilePath)).
			Build()
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, "", fmt.Errorf("failed to parse settings: %w", err)
	}
	if ok, errs := s.IsValid(); !ok {
		return nil, "", issue.New(issue.KindConfigInvalid, "validate settings", resolvedPath, errors.Join(errs...))
	}

	return &s, resolvedPath, nil
}

// loadCUEIntoViper validates a CUE settings file against #Config and merges
// it into v on top of the registered defaults.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read settings file: %w", err)
	}

	values, err := cueutil.DecodeFile(configSchema, "#Config", data,
		cueutil.WithFilename(path),
		cueutil.WithConcrete(false),
	)
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(values); err != nil {
		return fmt.Errorf("failed to merge settings: %w", err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDefaultSettings writes the default settings file to the location
// selected by opts unless one exists. It returns the file path.
func CreateDefaultSettings(opts LoadOptions) (string, error) {
	settingsPath, err := SettingsPath(opts)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(settingsPath); err == nil {
		return settingsPath, nil
	}

	if err := os.MkdirAll(filepath.Dir(settingsPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(settingsPath, []byte(GenerateCUE(DefaultSettings())), 0o644); err != nil {
		return "", fmt.Errorf("failed to write settings file: %w", err)
	}
	return settingsPath, nil
}

// GenerateCUE renders settings as a CUE document accepted by #Config.
func GenerateCUE(s *Settings) string {
	var sb strings.Builder

	sb.WriteString("// assetgen settings\n\n")
	fmt.Fprintf(&sb, "auto_generation: %v\n", s.AutoGeneration)
	fmt.Fprintf(&sb, "show_notifications: %v\n", s.ShowNotifications)
	fmt.Fprintf(&sb, "debounce: %q\n", s.Debounce)

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", s.UI.Verbose)
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", s.UI.ColorScheme)
	sb.WriteString("}\n")

	return sb.String()
}
