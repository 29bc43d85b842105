package ports

import "go.trai.ch/verify/internal/core/domain"

// MetadataExtractor applies a check's metadata patterns (spec.md §4.5) to
// its captured command output.
//
//go:generate go run go.uber.org/mock/mockgen -source=metadata.go -destination=mocks/mock_metadata.go -package=mocks
type MetadataExtractor interface {
	// Extract runs each pattern in patterns against output and returns the
	// extracted, typed values keyed by field name. A pattern with no match
	// in output is simply absent from the result, not an error.
	Extract(output string, patterns map[string]domain.MetadataPattern) map[string]any
}
