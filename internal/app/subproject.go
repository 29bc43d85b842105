package app

import (
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/verify/internal/core/domain"
	"go.trai.ch/zerr"
)

// visitedSet guards one top-level invocation's sub-project recursion
// against re-entering the same canonicalised project root twice (spec.md
// §4.3: "a visited-set of canonicalised paths is maintained and re-entry
// is treated as an immediate error"). It is shared across every recursive
// call spawned by a single Run or Status, including concurrent
// sub-project nodes within the same wave.
//
// Canonicalised paths are keyed by their xxhash, and the canonical string
// is stored alongside each key: a re-entry is reported only when the hash
// matches and the stored path text is equal, so a 64-bit hash collision
// between two different paths is not mistaken for a re-entry.
type visitedSet struct {
	mu   sync.Mutex
	seen map[uint64]string
}

func newVisitedSet() *visitedSet {
	return &visitedSet{seen: make(map[uint64]string)}
}

func (v *visitedSet) enter(path string) error {
	canon, err := filepath.Abs(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "resolve sub-project path"), "path", path)
	}
	canon = filepath.Clean(canon)
	key := xxhash.Sum64String(canon)

	v.mu.Lock()
	defer v.mu.Unlock()
	if prior, ok := v.seen[key]; ok && prior == canon {
		return zerr.With(zerr.Wrap(domain.ErrSubprojectReentry, "enter sub-project"), "path", canon)
	}
	v.seen[key] = canon
	return nil
}
