package fs

import (
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"go.trai.ch/verify/internal/core/domain"
	"go.trai.ch/verify/internal/core/ports"
	"go.trai.ch/zerr"
	"lukechampine.com/blake3"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher implements ports.Hasher using BLAKE3 (spec.md §4.1).
type Hasher struct {
	globber ports.Globber
}

// NewHasher creates a new Hasher.
func NewHasher(globber ports.Globber) *Hasher {
	return &Hasher{globber: globber}
}

// HashFile streams path's contents through BLAKE3 in 64KB chunks.
func (h *Hasher) HashFile(path string) (domain.FileHash, error) {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		return domain.FileHash{}, zerr.With(zerr.Wrap(err, "open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck

	hasher := blake3.New(32, nil)
	buf := make([]byte, 64*1024)
	size, err := io.CopyBuffer(hasher, f, buf)
	if err != nil {
		return domain.FileHash{}, zerr.With(zerr.Wrap(err, "hash file contents"), "path", path)
	}

	return domain.FileHash{
		Hash: hex.EncodeToString(hasher.Sum(nil)),
		Size: size,
	}, nil
}

// HashFileSet resolves cachePaths and combines the per-file fingerprints
// into a single file-set fingerprint: for each sorted (path, hash) pair it
// writes "path:hash\n" into a combining BLAKE3 hasher. An empty cachePaths
// set, or a glob matching nothing, yields the well-defined hash of empty
// input rather than an error.
func (h *Hasher) HashFileSet(projectRoot string, cachePaths []string) (string, map[string]domain.FileHash, error) {
	paths, err := h.globber.Resolve(projectRoot, cachePaths)
	if err != nil {
		return "", nil, err
	}
	sort.Strings(paths)

	fileHashes := make(map[string]domain.FileHash, len(paths))
	combined := blake3.New(32, nil)

	for _, relPath := range paths {
		fh, err := h.HashFile(filepath.Join(projectRoot, filepath.FromSlash(relPath)))
		if err != nil {
			return "", nil, err
		}
		fileHashes[relPath] = fh

		_, _ = combined.Write([]byte(relPath))
		_, _ = combined.Write([]byte{':'})
		_, _ = combined.Write([]byte(fh.Hash))
		_, _ = combined.Write([]byte{'\n'})
	}

	return hex.EncodeToString(combined.Sum(nil)), fileHashes, nil
}

// ConfigHash fingerprints the execution-affecting fields of a check:
// command, cache_paths (as written, order-preserving), timeout_secs,
// per_file, and metadata patterns (sorted by field name). Name and
// depends_on are deliberately excluded: renaming a check or rewiring the
// graph must not invalidate it. Unlike HashFileSet's content_hash,
// cache_paths order here is significant: reordering patterns in
// verify.yaml changes config_hash.
func (h *Hasher) ConfigHash(check *domain.Check) string {
	hasher := blake3.New(32, nil)

	_, _ = hasher.Write([]byte(check.Command))
	_, _ = hasher.Write([]byte{0})

	for _, p := range check.CachePaths {
		_, _ = hasher.Write([]byte(p))
		_, _ = hasher.Write([]byte{0})
	}
	_, _ = hasher.Write([]byte{0})

	_, _ = hasher.Write([]byte(strconv.Itoa(check.TimeoutSecs)))
	_, _ = hasher.Write([]byte{0})
	_, _ = hasher.Write([]byte(strconv.FormatBool(check.PerFile)))
	_, _ = hasher.Write([]byte{0})

	fields := make([]string, 0, len(check.Metadata))
	for field := range check.Metadata {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		pat := check.Metadata[field]
		_, _ = hasher.Write([]byte(field))
		_, _ = hasher.Write([]byte{0})
		_, _ = hasher.Write([]byte(pat.Regex))
		_, _ = hasher.Write([]byte{0})
		_, _ = hasher.Write([]byte(pat.Replacement))
		_, _ = hasher.Write([]byte{0})
		_, _ = hasher.Write([]byte(strconv.FormatBool(pat.HasReplace)))
		_, _ = hasher.Write([]byte{0})
	}

	return hex.EncodeToString(hasher.Sum(nil))
}
