// Package trailer implements the commit-trailer protocol (spec.md §4.6):
// computing the combined hash for every tracked, non-aggregate check,
// formatting/parsing the "Verified: name:hash,..." trailer line, and the
// sign/check/sync operations built on top of it.
package trailer

import (
	"encoding/hex"
	"sort"
	"strings"

	"lukechampine.com/blake3"

	"go.trai.ch/verify/internal/core/domain"
	"go.trai.ch/verify/internal/core/ports"
	"go.trai.ch/zerr"
)

// truncatedLength is the trailer's compact hash width (spec.md §4.6: "not
// a cryptographic binding... 32 bits is sufficient").
const truncatedLength = 8

// CombinedHash returns the full 64-hex-char BLAKE3 digest of
// config_hash||content_hash for one tracked check (spec.md §4.6 hash,
// §9 glossary). Aggregate, untracked, and sub-project checks have no
// combined hash.
func CombinedHash(configHash, contentHash string) string {
	h := blake3.New(32, nil)
	_, _ = h.Write([]byte(configHash))
	_, _ = h.Write([]byte(contentHash))
	return hex.EncodeToString(h.Sum(nil))
}

// Truncate returns the trailer-length prefix of a full hash.
func Truncate(hash string) string {
	if len(hash) <= truncatedLength {
		return hash
	}
	return hash[:truncatedLength]
}

// Entry is one check's combined hash, full and truncated.
type Entry struct {
	Name  string
	Full  string
	Short string
}

// Diff is one entry's comparison outcome for `check` (spec.md §4.6
// "per-check diff").
type Diff struct {
	Name       string
	InTrailer  bool
	Computable bool
	Matches    bool
	Expected   string
	Actual     string
}

// ComputeAll walks g in wave order and returns the combined hash for every
// tracked, non-aggregate check. When onlyVerified is non-nil, checks whose
// status there is not Verified are skipped: "sign" passes its verdict map
// so that only fresh checks are signed, while "hash", "check" and "sync"
// pass nil and compute over every such check regardless of freshness.
func ComputeAll(g *domain.Graph, hasher ports.Hasher, projectRoot string, onlyVerified map[string]domain.Status) ([]Entry, error) {
	var entries []Entry
	for _, wave := range g.Waves() {
		for _, name := range wave {
			check, ok := g.Get(name)
			if !ok || !check.IsTrackedNonAggregate() {
				continue
			}
			if onlyVerified != nil && onlyVerified[name.String()] != domain.StatusVerified {
				continue
			}
			configHash := hasher.ConfigHash(&check)
			contentHash, _, err := hasher.HashFileSet(projectRoot, check.CachePaths)
			if err != nil {
				return nil, zerr.With(zerr.Wrap(err, "hash file set"), "check", name.String())
			}
			full := CombinedHash(configHash, contentHash)
			entries = append(entries, Entry{Name: name.String(), Full: full, Short: Truncate(full)})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Format renders entries as the trailer value "name:short,name:short,..."
// in name-sorted order (spec.md §4.6 sign).
func Format(entries []Entry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.Name + ":" + e.Short
	}
	return strings.Join(parts, ",")
}

// Parse reads a trailer value "name:short,..." into a name->short map.
func Parse(value string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(value, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, hash, found := strings.Cut(pair, ":")
		if found {
			out[name] = hash
		}
	}
	return out
}

// Sign writes the Verified trailer into the commit message file at
// commitMsgPath, computed over every currently-Verified tracked check
// (spec.md §4.6 sign).
func Sign(vc ports.VCS, commitMsgPath string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	return vc.WriteTrailer(commitMsgPath, Format(entries))
}

// Check compares the HEAD commit's Verified trailer against the freshly
// computed combined hash of every tracked, non-aggregate check (spec.md
// §4.6 check). If name is non-empty, the comparison is narrowed to that
// one entry.
func Check(current []Entry, trailerValue string, name string) []Diff {
	inTrailer := Parse(trailerValue)
	currentByName := make(map[string]Entry, len(current))
	for _, e := range current {
		currentByName[e.Name] = e
	}

	names := make(map[string]bool)
	for n := range inTrailer {
		names[n] = true
	}
	for n := range currentByName {
		names[n] = true
	}

	var diffs []Diff
	for n := range names {
		if name != "" && n != name {
			continue
		}
		expected, haveTrailer := inTrailer[n]
		e, haveCurrent := currentByName[n]
		d := Diff{Name: n, InTrailer: haveTrailer, Computable: haveCurrent, Expected: expected}
		if haveCurrent {
			d.Actual = e.Short
		}
		d.Matches = haveTrailer && haveCurrent && expected == e.Short
		diffs = append(diffs, d)
	}
	sort.Slice(diffs, func(i, j int) bool { return diffs[i].Name < diffs[j].Name })
	return diffs
}

// AllMatch reports whether every trailer entry matches a current check
// and every tracked non-aggregate check is present in the trailer — the
// exit-0 condition for `check` (spec.md §4.6, §6).
func AllMatch(diffs []Diff) bool {
	for _, d := range diffs {
		if d.InTrailer != d.Computable || !d.Matches {
			return false
		}
	}
	return true
}

// FindConsistent walks history (most recent first) and returns the index
// of the first entry whose trailer is fully consistent with the current
// combined hashes (spec.md §4.6 sync: "first commit whose Verified
// trailer is consistent with the current file state"). Returns -1 if
// none match.
func FindConsistent(history []string, current []Entry) int {
	currentByName := make(map[string]Entry, len(current))
	for _, e := range current {
		currentByName[e.Name] = e
	}

	for i, value := range history {
		entries := Parse(value)
		if len(entries) == 0 {
			continue
		}
		consistent := true
		for name, short := range entries {
			e, ok := currentByName[name]
			if !ok || e.Short != short {
				consistent = false
				break
			}
		}
		if consistent {
			return i
		}
	}
	return -1
}
