// SPDX-License-Identifier: MPL-2.0

package config

import "context"

type (
	// Provider resolves project configuration.
	Provider interface {
		Project(ctx context.Context, root string) (*Project, error)
	}

	// LoadOptions defines explicit settings loading inputs.
	LoadOptions struct {
		// ConfigFilePath forces loading from a specific settings file when set.
		ConfigFilePath string
		// ConfigDirPath overrides the settings directory lookup when set.
		ConfigDirPath string
	}

	manifestProvider struct{}
)

// NewProvider creates a Provider that reads <root>/pubspec.yaml on every call.
func NewProvider() Provider {
	return &manifestProvider{}
}

// Project loads the manifest of the project at root.
func (p *manifestProvider) Project(ctx context.Context, root string) (*Project, error) {
	return LoadProject(ctx, root)
}
