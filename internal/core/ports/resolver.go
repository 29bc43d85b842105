package ports

// Globber resolves glob patterns (spec.md §4.1 cache_paths) to concrete,
// de-duplicated, project-relative file paths. A pattern matching zero files
// is not an error — the caller proceeds with the empty set.
//
//go:generate mockgen -destination=mocks/resolver_mock.go -package=mocks -source=resolver.go
type Globber interface {
	Resolve(root string, patterns []string) ([]string, error)
}
