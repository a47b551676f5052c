// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/assetgen/assetgen/internal/issue"
	"github.com/assetgen/assetgen/internal/naming"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ManifestFileName), []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
}

func TestLoadProjectDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeManifest(t, dir, `name: demo_app
flutter:
  uses-material-design: true
  assets:
    - assets/images/
    - assets/data/config.json
`)

	p, err := LoadProject(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadProject() error: %v", err)
	}

	if p.PackageName != "demo_app" {
		t.Errorf("PackageName = %q, want demo_app", p.PackageName)
	}
	if want := []string{"assets/images/", "assets/data/config.json"}; !slices.Equal(p.AssetPaths, want) {
		t.Errorf("AssetPaths = %v, want %v", p.AssetPaths, want)
	}

	def := DefaultGenerator()
	g := p.Generator
	if g.OutputDir != def.OutputDir || g.OutputFilename != def.OutputFilename || g.ClassName != def.ClassName ||
		g.NamingStyle != def.NamingStyle || g.NamedWithParent != def.NamedWithParent ||
		g.FilenameSplitPattern != def.FilenameSplitPattern || g.LeadingWithPackageName != def.LeadingWithPackageName ||
		g.AutoDetection != def.AutoDetection || g.SortAssets != def.SortAssets || len(g.PathIgnore) != 0 {
		t.Errorf("Generator = %+v, want defaults %+v", g, def)
	}

	if got := p.OutputPath(); got != "lib/generated/assets.dart" {
		t.Errorf("OutputPath() = %q", got)
	}
	if got := p.OutputDir(); got != "lib/generated" {
		t.Errorf("OutputDir() = %q", got)
	}
	if p.Policy().Style != naming.StyleCamel || !p.Policy().GroupWithParent {
		t.Errorf("Policy() = %+v", p.Policy())
	}
}

func TestLoadProjectOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeManifest(t, dir, `name: demo_app
flutter:
  assets:
    - assets/
    - path: assets/flavored/
      flavors: [free]
flutter_assets_generator:
  output_dir: gen/res
  output_filename: r
  class_name: R
  naming_style: snake_case
  named_with_parent: false
  leading_with_package_name: true
  path_ignore:
    - temp/
    - .DS_Store
  sort_assets: true
`)

	p, err := LoadProject(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadProject() error: %v", err)
	}

	if want := []string{"assets/", "assets/flavored/"}; !slices.Equal(p.AssetPaths, want) {
		t.Errorf("AssetPaths = %v, want %v", p.AssetPaths, want)
	}
	g := p.Generator
	if g.NamingStyle != naming.StyleSnake || g.NamedWithParent || !g.LeadingWithPackageName || !g.SortAssets {
		t.Errorf("Generator = %+v", g)
	}
	if g.ClassName != "R" || !g.AutoDetection {
		t.Errorf("Generator = %+v, want class R and default auto_detection", g)
	}
	if got := p.Policy().ClassName; got != "R" {
		t.Errorf("Policy().ClassName = %q, want R", got)
	}
	if got := p.OutputPath(); got != "lib/gen/res/r.dart" {
		t.Errorf("OutputPath() = %q", got)
	}

	req := p.ScanRequest()
	if req.ProjectRoot != p.Root || !req.PackagePrefix || req.PackageName != "demo_app" {
		t.Errorf("ScanRequest() = %+v", req)
	}
	if !slices.Equal(req.Ignore, []string{"temp/", ".DS_Store"}) {
		t.Errorf("ScanRequest().Ignore = %v", req.Ignore)
	}
}

func TestLoadProjectErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		manifest string // empty means no manifest
		want     issue.Kind
	}{
		{"missing manifest", "", issue.KindConfigMissing},
		{"broken yaml", "name: [unclosed\n", issue.KindConfigInvalid},
		{"no assets", "name: x\nflutter:\n  uses-material-design: true\n", issue.KindNoAssets},
		{"no flutter section", "name: x\n", issue.KindNoAssets},
		{"unknown style", "name: x\nflutter:\n  assets: [a/]\nflutter_assets_generator:\n  naming_style: kebab-case\n", issue.KindConfigInvalid},
		{"bad split pattern", "name: x\nflutter:\n  assets: [a/]\nflutter_assets_generator:\n  filename_split_pattern: \"[\"\n", issue.KindConfigInvalid},
		{"bad class name", "name: x\nflutter:\n  assets: [a/]\nflutter_assets_generator:\n  class_name: 1Assets\n", issue.KindConfigInvalid},
		{"unknown key", "name: x\nflutter:\n  assets: [a/]\nflutter_assets_generator:\n  naming_stlye: snake_case\n", issue.KindConfigInvalid},
		{"wrong type", "name: x\nflutter:\n  assets: [a/]\nflutter_assets_generator:\n  path_ignore: temp/\n", issue.KindConfigInvalid},
		{"bad asset entry", "name: x\nflutter:\n  assets:\n    - flavors: [free]\n", issue.KindConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			if tt.manifest != "" {
				writeManifest(t, dir, tt.manifest)
			}

			_, err := LoadProject(context.Background(), dir)
			if err == nil {
				t.Fatal("LoadProject() should fail")
			}
			if got := issue.KindOf(err); got != tt.want {
				t.Errorf("KindOf(%v) = %s, want %s", err, got, tt.want)
			}
		})
	}
}

func TestLoadProjectCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := LoadProject(ctx, t.TempDir()); err == nil {
		t.Error("LoadProject() with canceled context should fail")
	}
}

func TestProviderReadsFreshManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeManifest(t, dir, "name: x\nflutter:\n  assets: [a/]\n")
	provider := NewProvider()

	p, err := provider.Project(context.Background(), dir)
	if err != nil {
		t.Fatalf("Project() error: %v", err)
	}
	if p.Generator.ClassName != "Assets" {
		t.Errorf("ClassName = %q", p.Generator.ClassName)
	}

	writeManifest(t, dir, "name: x\nflutter:\n  assets: [a/]\nflutter_assets_generator:\n  class_name: Res\n")
	p, err = provider.Project(context.Background(), dir)
	if err != nil {
		t.Fatalf("Project() error: %v", err)
	}
	if p.Generator.ClassName != "Res" {
		t.Errorf("ClassName after edit = %q, want Res", p.Generator.ClassName)
	}
}

func TestProjectPolicyWithoutLoad(t *testing.T) {
	t.Parallel()

	p := &Project{Generator: DefaultGenerator()}
	p.Generator.NamingStyle = naming.StylePascal
	if got := p.Policy(); got.Style != naming.StylePascal || got.SplitPattern == nil {
		t.Errorf("Policy() = %+v", got)
	}

	p.Generator.NamingStyle = "bogus"
	if got := p.Policy(); got.Style != naming.StyleCamel {
		t.Errorf("invalid options should fall back to the default policy, got %+v", got)
	}
}
