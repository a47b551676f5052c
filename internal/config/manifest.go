// SPDX-License-Identifier: MPL-2.0

package config

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/assetgen/assetgen/internal/asset"
	"github.com/assetgen/assetgen/internal/cueutil"
	"github.com/assetgen/assetgen/internal/issue"
	"github.com/assetgen/assetgen/internal/naming"

	"github.com/spf13/viper"
)

const (
	// ManifestFileName is the Flutter project manifest.
	ManifestFileName = "pubspec.yaml"

	// GeneratorSection is the manifest key holding the generator options.
	GeneratorSection = "flutter_assets_generator"
)

//go:embed manifest_schema.cue
var manifestSchema string

type (
	// Project is the resolved configuration of one Flutter project.
	Project struct {
		// Root is the absolute project directory.
		Root string
		// ManifestPath is the absolute path of pubspec.yaml.
		ManifestPath string
		// PackageName is the manifest's name field.
		PackageName string
		// AssetPaths are the entries declared under flutter.assets.
		AssetPaths []string
		// Generator holds the generator options with defaults applied.
		Generator Generator

		policy naming.Policy
	}

	// manifest mirrors the parts of pubspec.yaml assetgen reads.
	manifest struct {
		Name    string `mapstructure:"name"`
		Flutter struct {
			// Assets entries are strings or, in newer Flutter versions,
			// maps with a "path" key.
			Assets []any `mapstructure:"assets"`
		} `mapstructure:"flutter"`
		Generator Generator `mapstructure:"flutter_assets_generator"`
	}
)

// OutputPath returns the slash-separated location of the generated file,
// relative to Root: lib/<output_dir>/<output_filename>.dart.
func (p *Project) OutputPath() string {
	return path.Join("lib", p.Generator.OutputDir, p.Generator.OutputFilename+".dart")
}

// OutputDir returns the slash-separated output directory relative to Root.
func (p *Project) OutputDir() string {
	return path.Join("lib", p.Generator.OutputDir)
}

// Policy returns the naming policy for the project. Options that do not
// form a valid policy fall back to naming.DefaultPolicy.
func (p *Project) Policy() naming.Policy {
	if p.policy.SplitPattern != nil {
		return p.policy
	}
	policy, err := p.Generator.Policy()
	if err != nil {
		policy = naming.DefaultPolicy()
		policy.ClassName = p.Generator.ClassName
	}
	return policy
}

// ScanRequest builds the scanner input for the project.
func (p *Project) ScanRequest() asset.ScanRequest {
	return asset.ScanRequest{
		Roots:         p.AssetPaths,
		ProjectRoot:   p.Root,
		Ignore:        p.Generator.PathIgnore,
		PackagePrefix: p.Generator.LeadingWithPackageName,
		PackageName:   p.PackageName,
	}
}

// LoadProject reads and validates the manifest of the project at root.
// Returned errors are *issue.ActionableError carrying KindConfigMissing,
// KindConfigInvalid or KindNoAssets.
func LoadProject(ctx context.Context, root string) (*Project, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load manifest canceled: %w", ctx.Err())
	default:
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, issue.New(issue.KindConfigMissing, "resolve project root", root, err)
	}
	manifestPath := filepath.Join(absRoot, ManifestFileName)

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, issue.NewErrorContext().
				WithKind(issue.KindConfigMissing).
				WithOperation("load manifest").
				WithResource(manifestPath).
				WithSuggestion("Run assetgen from the Flutter project root or pass the project directory").
				Wrap(err).
				Build()
		}
		return nil, issue.New(issue.KindConfigInvalid, "read manifest", manifestPath, err)
	}

	m, err := decodeManifest(data, manifestPath)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithKind(issue.KindConfigInvalid).
			WithOperation("parse manifest").
			WithResource(manifestPath).
			WithSuggestion("Check the YAML syntax of " + ManifestFileName).
			WithSuggestion("Verify the " + GeneratorSection + " values with 'assetgen config show'").
			Wrap(err).
			Build()
	}

	if ok, errs := m.Generator.IsValid(); !ok {
		return nil, issue.NewErrorContext().
			WithKind(issue.KindConfigInvalid).
			WithOperation("validate " + GeneratorSection).
			WithResource(manifestPath).
			WithSuggestion("naming_style must be camelCase, snake_case or PascalCase").
			WithSuggestion("filename_split_pattern must be a valid regular expression").
			Wrap(errors.Join(errs...)).
			Build()
	}
	policy, _ := m.Generator.Policy()

	assetPaths, err := declaredAssets(m.Flutter.Assets)
	if err != nil {
		return nil, issue.New(issue.KindConfigInvalid, "parse flutter.assets", manifestPath, err)
	}
	if len(assetPaths) == 0 {
		return nil, issue.NewErrorContext().
			WithKind(issue.KindNoAssets).
			WithOperation("read asset declarations").
			WithResource(manifestPath).
			WithSuggestion("Declare asset paths under flutter.assets").
			WithSuggestion("Or run 'assetgen add <path>'").
			Build()
	}

	return &Project{
		Root:         absRoot,
		ManifestPath: manifestPath,
		PackageName:  m.Name,
		AssetPaths:   assetPaths,
		Generator:    m.Generator,
		policy:       policy,
	}, nil
}

// decodeManifest reads pubspec.yaml through Viper with every generator
// default registered, then validates the generator section with CUE.
func decodeManifest(data []byte, filename string) (*manifest, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	defaults := DefaultGenerator()
	v.SetDefault(GeneratorSection+".output_dir", defaults.OutputDir)
	v.SetDefault(GeneratorSection+".output_filename", defaults.OutputFilename)
	v.SetDefault(GeneratorSection+".auto_detection", defaults.AutoDetection)
	v.SetDefault(GeneratorSection+".class_name", defaults.ClassName)
	v.SetDefault(GeneratorSection+".naming_style", string(defaults.NamingStyle))
	v.SetDefault(GeneratorSection+".named_with_parent", defaults.NamedWithParent)
	v.SetDefault(GeneratorSection+".filename_split_pattern", defaults.FilenameSplitPattern)
	v.SetDefault(GeneratorSection+".leading_with_package_name", defaults.LeadingWithPackageName)
	v.SetDefault(GeneratorSection+".path_ignore", defaults.PathIgnore)
	v.SetDefault(GeneratorSection+".sort_assets", defaults.SortAssets)

	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, filename); err != nil {
		return nil, err
	}
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	// A present but empty section decodes as nil.
	if section, ok := v.Get(GeneratorSection).(map[string]any); ok {
		if err := cueutil.ValidateValue(manifestSchema, "#Generator", section,
			cueutil.WithFilename(filename+": "+GeneratorSection),
		); err != nil {
			return nil, err
		}
	}

	var m manifest
	if err := v.Unmarshal(&m); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if m.Generator.PathIgnore == nil {
		m.Generator.PathIgnore = []string{}
	}
	return &m, nil
}

// declaredAssets normalizes flutter.assets entries to path strings.
func declaredAssets(entries []any) ([]string, error) {
	out := make([]string, 0, len(entries))
	for i, e := range entries {
		var p string
		switch v := e.(type) {
		case string:
			p = v
		case map[string]any:
			s, ok := v["path"].(string)
			if !ok {
				return nil, fmt.Errorf("flutter.assets[%d]: missing path", i)
			}
			p = s
		default:
			return nil, fmt.Errorf("flutter.assets[%d]: unsupported entry %v", i, e)
		}
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}
