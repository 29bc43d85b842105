package domain

// CacheVersion is the current lock-file format version (spec.md §3).
// A document whose Version field does not match is treated as empty.
const CacheVersion = 4

// FileHash is the fingerprint and size of a single file at the moment it
// was last recorded, used for per-file progress tracking.
type FileHash struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// CacheEntry is the persisted state for a single check (spec.md §3).
type CacheEntry struct {
	ConfigHash string `json:"config_hash"`

	// ContentHash is nullable: null means "never successfully completed as
	// a whole", distinct from the zero value of a string.
	ContentHash *string `json:"content_hash"`

	// FileHashes is present only for per-file checks, tracking partial
	// progress across a stale-file set.
	FileHashes map[string]FileHash `json:"file_hashes,omitempty"`

	// Metadata holds extracted metric values, typed per
	// original_source/src/metadata.rs::MetadataValue (int64, float64, or
	// string).
	Metadata map[string]any `json:"metadata,omitempty"`
}

// CacheDocument is the full lock-file contents (spec.md §6): a version
// integer and a map from check name to CacheEntry.
type CacheDocument struct {
	Version int                   `json:"version"`
	Checks  map[string]CacheEntry `json:"checks"`
}

// NewCacheDocument returns an empty, current-version document.
func NewCacheDocument() *CacheDocument {
	return &CacheDocument{
		Version: CacheVersion,
		Checks:  make(map[string]CacheEntry),
	}
}

// Get returns the entry for name, or (zero, false) if absent.
func (d *CacheDocument) Get(name string) (CacheEntry, bool) {
	e, ok := d.Checks[name]
	return e, ok
}

// Put stores (or replaces) the entry for name.
func (d *CacheDocument) Put(name string, e CacheEntry) {
	if d.Checks == nil {
		d.Checks = make(map[string]CacheEntry)
	}
	d.Checks[name] = e
}

// Clear removes the named entries, or every entry when names is empty
// (spec.md §4.7 `clean`).
func (d *CacheDocument) Clear(names []string) {
	if len(names) == 0 {
		d.Checks = make(map[string]CacheEntry)
		return
	}
	for _, n := range names {
		delete(d.Checks, n)
	}
}
