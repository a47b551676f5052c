// SPDX-License-Identifier: MPL-2.0

package config

import (
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/format"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type (
	// document is the resolved view of a manifest written by Encode.
	document struct {
		Name      string         `json:"name" yaml:"name" toml:"name"`
		Flutter   flutterSection `json:"flutter" yaml:"flutter" toml:"flutter"`
		Generator Generator      `json:"flutter_assets_generator" yaml:"flutter_assets_generator" toml:"flutter_assets_generator"`
	}

	flutterSection struct {
		Assets []string `json:"assets" yaml:"assets" toml:"assets"`
	}
)

// Encode renders the resolved configuration of p, defaults included.
func Encode(p *Project, f Format) ([]byte, error) {
	if ok, errs := f.IsValid(); !ok {
		return nil, errs[0]
	}

	doc := document{
		Name:      p.PackageName,
		Flutter:   flutterSection{Assets: p.AssetPaths},
		Generator: p.Generator,
	}

	switch f {
	case FormatTOML:
		return toml.Marshal(doc)
	case FormatCUE:
		v := cuecontext.New().Encode(doc)
		if v.Err() != nil {
			return nil, v.Err()
		}
		return format.Node(v.Syntax())
	default:
		return yaml.Marshal(doc)
	}
}
