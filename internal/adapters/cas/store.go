// Package cas implements the lock-file cache store: a single committable
// JSON document (spec.md §3, §6) persisted with atomic temp-file-then-
// rename writes so a crash or interrupt never leaves a corrupt file.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/verify/internal/core/domain"
	"go.trai.ch/verify/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.CacheStore = (*Store)(nil)

// Store implements ports.CacheStore over a flat JSON lock file.
type Store struct {
	mu sync.Mutex
}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{}
}

// Load reads and decodes the lock file at path. A missing file, an empty
// file, or a version mismatch all yield a fresh empty document rather than
// an error.
func (s *Store) Load(path string) (*domain.CacheDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	//nolint:gosec // path is caller-controlled project configuration
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.NewCacheDocument(), nil
		}
		return nil, zerr.With(zerr.Wrap(err, "read lock file"), "path", path)
	}
	if len(data) == 0 {
		return domain.NewCacheDocument(), nil
	}

	var doc domain.CacheDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "unmarshal lock file"), "path", path)
	}
	if doc.Version != domain.CacheVersion {
		return domain.NewCacheDocument(), nil
	}
	if doc.Checks == nil {
		doc.Checks = make(map[string]domain.CacheEntry)
	}

	return &doc, nil
}

// Save atomically overwrites the lock file at path with doc: the document
// is marshalled, written to a sibling temp file, and renamed into place so
// a concurrent reader or an interrupted process never observes a partial
// write.
func (s *Store) Save(path string, doc *domain.CacheDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "marshal lock file")
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "create lock file directory"), "path", dir)
	}

	tmp, err := os.CreateTemp(dir, ".verify.lock.*.tmp")
	if err != nil {
		return zerr.Wrap(err, "create temp lock file")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck // best effort cleanup if rename fails

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.Wrap(err, "write temp lock file")
	}
	if err := tmp.Close(); err != nil {
		return zerr.Wrap(err, "close temp lock file")
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return zerr.With(zerr.Wrap(err, "rename temp lock file into place"), "path", path)
	}

	return nil
}
