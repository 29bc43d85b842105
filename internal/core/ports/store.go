package ports

import "go.trai.ch/verify/internal/core/domain"

// CacheStore loads and atomically persists a project's lock file (spec.md
// §3, §6). Load tolerates a missing file (returns an empty document) and
// treats a version mismatch as empty.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type CacheStore interface {
	Load(path string) (*domain.CacheDocument, error)
	Save(path string, doc *domain.CacheDocument) error
}
