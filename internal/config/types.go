// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/assetgen/assetgen/internal/naming"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// FormatYAML dumps configuration as YAML.
	FormatYAML Format = "yaml"
	// FormatTOML dumps configuration as TOML.
	FormatTOML Format = "toml"
	// FormatCUE dumps configuration as CUE.
	FormatCUE Format = "cue"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidFormat is returned when a Format value is not recognized.
	ErrInvalidFormat = errors.New("invalid format")
	// ErrInvalidGenerator is the sentinel error wrapped by InvalidGeneratorError.
	ErrInvalidGenerator = errors.New("invalid generator config")
	// ErrInvalidSettings is the sentinel error wrapped by InvalidSettingsError.
	ErrInvalidSettings = errors.New("invalid settings")

	identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// Format is a configuration dump format.
	Format string

	// InvalidFormatError is returned when a Format value is not recognized.
	// It wraps ErrInvalidFormat for errors.Is() compatibility.
	InvalidFormatError struct {
		Value Format
	}

	// InvalidGeneratorError collects the field errors of a Generator.
	// It wraps ErrInvalidGenerator for errors.Is() compatibility.
	InvalidGeneratorError struct {
		FieldErrors []error
	}

	// InvalidSettingsError collects the field errors of Settings.
	// It wraps ErrInvalidSettings for errors.Is() compatibility.
	InvalidSettingsError struct {
		FieldErrors []error
	}

	// Generator is the flutter_assets_generator section of the manifest.
	Generator struct {
		// OutputDir is the directory under lib/ that receives the generated file.
		OutputDir string `json:"output_dir" mapstructure:"output_dir" yaml:"output_dir" toml:"output_dir"`
		// OutputFilename is the generated file name without the .dart extension.
		OutputFilename string `json:"output_filename" mapstructure:"output_filename" yaml:"output_filename" toml:"output_filename"`
		// AutoDetection enables regeneration on asset changes.
		AutoDetection bool `json:"auto_detection" mapstructure:"auto_detection" yaml:"auto_detection" toml:"auto_detection"`
		// ClassName is the generated class name.
		ClassName string `json:"class_name" mapstructure:"class_name" yaml:"class_name" toml:"class_name"`
		// NamingStyle is the casing of generated names.
		NamingStyle naming.Style `json:"naming_style" mapstructure:"naming_style" yaml:"naming_style" toml:"naming_style"`
		// NamedWithParent qualifies conflicting names with their parent directory.
		NamedWithParent bool `json:"named_with_parent" mapstructure:"named_with_parent" yaml:"named_with_parent" toml:"named_with_parent"`
		// FilenameSplitPattern is the regular expression separating words.
		FilenameSplitPattern string `json:"filename_split_pattern" mapstructure:"filename_split_pattern" yaml:"filename_split_pattern" toml:"filename_split_pattern"`
		// LeadingWithPackageName prefixes asset paths with packages/<name>/.
		LeadingWithPackageName bool `json:"leading_with_package_name" mapstructure:"leading_with_package_name" yaml:"leading_with_package_name" toml:"leading_with_package_name"`
		// PathIgnore are substring ignore rules.
		PathIgnore []string `json:"path_ignore" mapstructure:"path_ignore" yaml:"path_ignore" toml:"path_ignore"`
		// SortAssets orders assets by relative path before naming. Off, names
		// follow scan order: declared paths in order, each walked depth-first
		// in lexical order.
		SortAssets bool `json:"sort_assets" mapstructure:"sort_assets" yaml:"sort_assets" toml:"sort_assets"`
	}

	// Settings holds the per-user preferences.
	Settings struct {
		// AutoGeneration lets `assetgen watch` regenerate on changes.
		AutoGeneration bool `json:"auto_generation" mapstructure:"auto_generation"`
		// ShowNotifications prints a summary after every announced run.
		ShowNotifications bool `json:"show_notifications" mapstructure:"show_notifications"`
		// Debounce is the quiet period before the watcher regenerates.
		Debounce string `json:"debounce" mapstructure:"debounce"`
		// UI configures terminal output.
		UI UISettings `json:"ui" mapstructure:"ui"`
	}

	// UISettings configures terminal output.
	UISettings struct {
		// Verbose enables debug logging and detailed error output.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// ColorScheme selects the glamour style for help cards.
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
	}
)

// String returns the string representation of the ColorScheme.
func (c ColorScheme) String() string { return string(c) }

// IsValid returns whether the ColorScheme is one of the defined color schemes.
func (c ColorScheme) IsValid() (bool, []error) {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: c}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// Formats returns every supported dump format.
func Formats() []Format {
	return []Format{FormatYAML, FormatTOML, FormatCUE}
}

// String returns the string representation of the Format.
func (f Format) String() string { return string(f) }

// IsValid returns whether the Format is one of the defined formats.
func (f Format) IsValid() (bool, []error) {
	switch f {
	case FormatYAML, FormatTOML, FormatCUE:
		return true, nil
	default:
		return false, []error{&InvalidFormatError{Value: f}}
	}
}

// Error implements the error interface for InvalidFormatError.
func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid format %q (valid: yaml, toml, cue)", e.Value)
}

// Unwrap returns ErrInvalidFormat for errors.Is() compatibility.
func (e *InvalidFormatError) Unwrap() error { return ErrInvalidFormat }

// DefaultGenerator returns the generator options used when the manifest does
// not set them.
func DefaultGenerator() Generator {
	return Generator{
		OutputDir:              "generated",
		OutputFilename:         "assets",
		AutoDetection:          true,
		ClassName:              "Assets",
		NamingStyle:            naming.StyleCamel,
		NamedWithParent:        true,
		FilenameSplitPattern:   naming.DefaultSplitPattern,
		LeadingWithPackageName: false,
		PathIgnore:             []string{},
		SortAssets:             false,
	}
}

// IsValid checks the constraints the CUE schema cannot express: the naming
// style and the split pattern must be usable by the naming package.
func (g Generator) IsValid() (bool, []error) {
	var errs []error
	if _, err := g.Policy(); err != nil {
		errs = append(errs, err)
	}
	if !identifierPattern.MatchString(g.ClassName) {
		errs = append(errs, fmt.Errorf("class_name %q is not a valid identifier", g.ClassName))
	}
	if strings.TrimSpace(g.OutputFilename) == "" {
		errs = append(errs, errors.New("output_filename must not be empty"))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidGeneratorError{FieldErrors: errs}}
	}
	return true, nil
}

// Policy builds the naming policy described by the generator options.
func (g Generator) Policy() (naming.Policy, error) {
	policy, err := naming.NewPolicy(g.NamingStyle, g.FilenameSplitPattern, g.NamedWithParent)
	if err != nil {
		return naming.Policy{}, err
	}
	policy.ClassName = g.ClassName
	return policy, nil
}

// Error implements the error interface for InvalidGeneratorError.
func (e *InvalidGeneratorError) Error() string {
	return fmt.Sprintf("invalid generator config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidGenerator for errors.Is() compatibility.
func (e *InvalidGeneratorError) Unwrap() error { return ErrInvalidGenerator }

// DefaultSettings returns the settings used when no config file exists.
func DefaultSettings() *Settings {
	return &Settings{
		AutoGeneration:    true,
		ShowNotifications: true,
		Debounce:          "300ms",
		UI: UISettings{
			Verbose:     false,
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// DebounceDuration parses Debounce.
func (s Settings) DebounceDuration() (time.Duration, error) {
	d, err := time.ParseDuration(s.Debounce)
	if err != nil {
		return 0, fmt.Errorf("debounce: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("debounce: %s must be positive", s.Debounce)
	}
	return d, nil
}

// IsValid returns whether the settings hold usable values.
func (s Settings) IsValid() (bool, []error) {
	var errs []error
	if _, err := s.DebounceDuration(); err != nil {
		errs = append(errs, err)
	}
	if valid, fieldErrs := s.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidSettingsError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidSettingsError.
func (e *InvalidSettingsError) Error() string {
	return fmt.Sprintf("invalid settings: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidSettings for errors.Is() compatibility.
func (e *InvalidSettingsError) Unwrap() error { return ErrInvalidSettings }
