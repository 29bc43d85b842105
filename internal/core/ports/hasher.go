package ports

import "go.trai.ch/verify/internal/core/domain"

// Hasher computes the fingerprints spec.md §4.1 defines: a file-set
// fingerprint over a check's cache_paths, and a config fingerprint over a
// check's execution-affecting fields.
//
//go:generate mockgen -destination=mocks/hasher_mock.go -package=mocks -source=hasher.go
type Hasher interface {
	// HashFileSet resolves cachePaths (relative to projectRoot) and
	// returns the file-set fingerprint together with the individual file
	// fingerprints keyed by forward-slash, project-relative path.
	HashFileSet(projectRoot string, cachePaths []string) (contentHash string, fileHashes map[string]domain.FileHash, err error)

	// HashFile returns the fingerprint of a single file's contents,
	// dereferencing symlinks.
	HashFile(path string) (domain.FileHash, error)

	// ConfigHash returns the check's config fingerprint (spec.md §4.1):
	// command, cache_paths, timeout_secs, per_file, and metadata
	// patterns, in that order; name and depends_on are excluded.
	ConfigHash(check *domain.Check) string
}
