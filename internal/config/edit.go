// SPDX-License-Identifier: MPL-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/assetgen/assetgen/internal/issue"

	"gopkg.in/yaml.v3"
)

var (
	// ErrAssetAlreadyDeclared is returned when the path is already listed
	// under flutter.assets.
	ErrAssetAlreadyDeclared = errors.New("asset path already declared")
	// ErrOutsideProject is returned when the path does not lie inside the
	// project root.
	ErrOutsideProject = errors.New("path is outside the project")
)

// AddAssetPath declares target under flutter.assets in the manifest of the
// project at root and returns the entry written. Directories are written
// with a trailing "/". The list is kept sorted; comments and the order of
// other keys are preserved.
func AddAssetPath(root, target string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}

	entry, err := assetEntry(absRoot, target)
	if err != nil {
		return "", err
	}

	manifestPath := filepath.Join(absRoot, ManifestFileName)
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		kind := issue.KindConfigInvalid
		if errors.Is(err, fs.ErrNotExist) {
			kind = issue.KindConfigMissing
		}
		return "", issue.New(kind, "read manifest", manifestPath, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", issue.New(issue.KindConfigInvalid, "parse manifest", manifestPath, err)
	}
	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	top := doc.Content[0]
	if top.Kind != yaml.MappingNode {
		return "", issue.New(issue.KindConfigInvalid, "parse manifest", manifestPath,
			errors.New("top level is not a mapping"))
	}

	flutter := ensureChild(top, "flutter", yaml.MappingNode)
	assets := ensureChild(flutter, "assets", yaml.SequenceNode)
	if flutter == nil || assets == nil {
		return "", issue.New(issue.KindConfigInvalid, "parse manifest", manifestPath,
			errors.New("flutter.assets has an unexpected type"))
	}

	for _, item := range assets.Content {
		if sameAsset(assetNodePath(item), entry) {
			return "", fmt.Errorf("%w: %s", ErrAssetAlreadyDeclared, entry)
		}
	}

	assets.Content = append(assets.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: entry})
	slices.SortStableFunc(assets.Content, func(a, b *yaml.Node) int {
		return strings.Compare(assetNodePath(a), assetNodePath(b))
	})

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return "", fmt.Errorf("encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode manifest: %w", err)
	}

	info, err := os.Stat(manifestPath)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(manifestPath, buf.Bytes(), info.Mode().Perm()); err != nil {
		return "", issue.New(issue.KindOutputWrite, "write manifest", manifestPath, err)
	}
	return entry, nil
}

// assetEntry converts target into a slash-separated path relative to root,
// with a trailing "/" for directories.
func assetEntry(root, target string) (string, error) {
	abs := target
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(root, target)
	}

	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideProject, target)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("add asset %s: %w", target, err)
	}

	entry := filepath.ToSlash(rel)
	if info.IsDir() {
		entry += "/"
	}
	return entry, nil
}

// ensureChild returns the value node for key in mapping, creating it with
// the given kind when absent or null. It returns nil when the existing value
// has another kind.
func ensureChild(mapping *yaml.Node, key string, kind yaml.Kind) *yaml.Node {
	if mapping == nil {
		return nil
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value != key {
			continue
		}
		value := mapping.Content[i+1]
		if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
			value.Kind, value.Tag, value.Value = kind, "", ""
		}
		if value.Kind != kind {
			return nil
		}
		return value
	}

	value := &yaml.Node{Kind: kind}
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value,
	)
	return value
}

// assetNodePath returns the path of a flutter.assets item, which is either
// a scalar or a mapping with a path key.
func assetNodePath(n *yaml.Node) string {
	if n.Kind == yaml.ScalarNode {
		return n.Value
	}
	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].Value == "path" {
				return n.Content[i+1].Value
			}
		}
	}
	return ""
}

func sameAsset(a, b string) bool {
	return strings.TrimSuffix(a, "/") == strings.TrimSuffix(b, "/")
}
