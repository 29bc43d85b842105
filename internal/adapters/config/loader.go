// Package config parses verify.yaml into a domain.Graph.
package config

import (
	"bytes"
	"os"
	"path/filepath"

	"go.trai.ch/verify/internal/core/domain"
	"go.trai.ch/verify/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*FileConfigLoader)(nil)

// Filename is the conventional name of a project's verification config.
const Filename = "verify.yaml"

// FileConfigLoader implements ports.ConfigLoader using a YAML file named
// Filename in the project root.
type FileConfigLoader struct{}

// NewLoader creates a new FileConfigLoader.
func NewLoader() *FileConfigLoader {
	return &FileConfigLoader{}
}

// Load reads and parses projectRoot's verify.yaml into a validated graph.
func (l *FileConfigLoader) Load(projectRoot string) (*domain.Graph, error) {
	return Load(filepath.Join(projectRoot, Filename))
}

// Load reads a configuration file from the given path and returns a
// validated domain.Graph. Subproject paths are resolved relative to the
// config file's own directory.
func Load(path string) (*domain.Graph, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled project configuration
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "read config file"), "path", path)
	}

	var file fileSchema
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // spec.md §6: "Unknown fields are rejected."
	if err := dec.Decode(&file); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "parse config file"), "path", path)
	}

	dir := filepath.Dir(path)
	g := domain.NewGraph()

	for _, item := range file.Verifications {
		check := item.toCheck()

		if check.HasPath {
			subDir := filepath.Join(dir, filepath.FromSlash(item.Path))
			subConfig := filepath.Join(subDir, Filename)
			if _, err := os.Stat(subConfig); err != nil {
				return nil, zerr.With(zerr.Wrap(err, "subproject config not found"), "path", subConfig)
			}
			check.Path = subDir
		}

		if err := g.AddCheck(check); err != nil {
			return nil, err
		}
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}

	return g, nil
}
