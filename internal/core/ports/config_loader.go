package ports

import "go.trai.ch/verify/internal/core/domain"

// ConfigLoader reads a project's verify.yaml and returns its validated
// dependency graph.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration rooted at projectRoot and returns the
	// check graph. It returns a config error (exit code 2 at the CLI
	// boundary) for any malformed input.
	Load(projectRoot string) (*domain.Graph, error)
}
