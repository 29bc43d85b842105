// Package resolver implements the staleness resolver (spec.md §4.4): it
// classifies every check in a graph as Verified, Unverified(reason), or
// Untracked by comparing freshly computed fingerprints against the cache
// document. The resolver never writes the cache; callers (the executor,
// the status command) act on its output.
package resolver

import (
	"sort"

	"go.trai.ch/verify/internal/core/domain"
	"go.trai.ch/verify/internal/core/ports"
	"go.trai.ch/zerr"
)

// SubprojectStatus, when non-nil, lets the resolver classify sub-project
// nodes by recursively evaluating the nested project (used by `status`;
// `run` always recurses unconditionally instead of consulting this).
type SubprojectStatus func(check domain.Check) (domain.Status, error)

// Fingerprints carries the fresh config/content hashes the resolver
// computed for a tracked check, handed back so callers (the executor)
// don't need to recompute them before executing.
type Fingerprints struct {
	ConfigHash  string
	ContentHash string
	FileHashes  map[string]domain.FileHash
}

// Result is one check's classification plus the fresh fingerprints that
// produced it (zero value for aggregate/untracked/sub-project checks).
type Result struct {
	Verdict      domain.Verdict
	Fingerprints Fingerprints
}

// ResolveGraph classifies every check in g, in wave order so that each
// check's dependencies have already been classified by the time it is
// resolved. subStatus may be nil; when nil, sub-project nodes resolve to
// Unverified(NeverRun) (forcing `run` to recurse, which is always safe).
func ResolveGraph(
	projectRoot string,
	g *domain.Graph,
	cache *domain.CacheDocument,
	hasher ports.Hasher,
	subStatus SubprojectStatus,
) (map[string]Result, error) {
	results := make(map[string]Result, g.Len())
	depStatus := make(map[domain.InternedString]domain.Status, g.Len())

	for _, wave := range g.Waves() {
		for _, name := range wave {
			check, ok := g.Get(name)
			if !ok {
				continue
			}
			res, err := resolveOne(projectRoot, check, cache, hasher, depStatus, subStatus)
			if err != nil {
				return nil, err
			}
			results[name.String()] = res
			depStatus[name] = res.Verdict.Status
		}
	}

	return results, nil
}

func resolveOne(
	projectRoot string,
	check domain.Check,
	cache *domain.CacheDocument,
	hasher ports.Hasher,
	depStatus map[domain.InternedString]domain.Status,
	subStatus SubprojectStatus,
) (Result, error) {
	switch check.Kind() {
	case domain.KindAggregate:
		return resolveAggregate(check, depStatus), nil
	case domain.KindUntracked:
		return Result{Verdict: domain.Verdict{Check: check.Name, Status: domain.StatusUntracked}}, nil
	case domain.KindSubproject:
		return resolveSubproject(check, subStatus)
	default:
		return resolveTracked(projectRoot, check, cache, hasher, depStatus)
	}
}

// resolveAggregate implements spec.md §4.4: Verified iff every dependency
// is Verified, else Unverified(DependencyUnverified) naming the first
// offending dependency in declaration order.
func resolveAggregate(check domain.Check, depStatus map[domain.InternedString]domain.Status) Result {
	for _, dep := range check.Dependencies {
		if depStatus[dep] != domain.StatusVerified {
			return Result{Verdict: domain.Verdict{
				Check:           check.Name,
				Status:          domain.StatusUnverified,
				Reason:          domain.ReasonDependencyUnverified,
				StaleDependency: dep.String(),
			}}
		}
	}
	return Result{Verdict: domain.Verdict{Check: check.Name, Status: domain.StatusVerified}}
}

func resolveSubproject(check domain.Check, subStatus SubprojectStatus) (Result, error) {
	if subStatus == nil {
		return Result{Verdict: domain.Verdict{
			Check:  check.Name,
			Status: domain.StatusUnverified,
			Reason: domain.ReasonNeverRun,
		}}, nil
	}
	status, err := subStatus(check)
	if err != nil {
		return Result{}, zerr.With(zerr.Wrap(err, "resolve sub-project status"), "check", check.Name.String())
	}
	v := domain.Verdict{Check: check.Name, Status: status}
	if status != domain.StatusVerified {
		v.Reason = domain.ReasonFilesChanged
	}
	return Result{Verdict: v}, nil
}

// resolveTracked implements the precedence of spec.md §4.4: NeverRun >
// ConfigChanged > DependencyUnverified > FilesChanged.
func resolveTracked(
	projectRoot string,
	check domain.Check,
	cache *domain.CacheDocument,
	hasher ports.Hasher,
	depStatus map[domain.InternedString]domain.Status,
) (Result, error) {
	configHash := hasher.ConfigHash(&check)
	contentHash, fileHashes, err := hasher.HashFileSet(projectRoot, check.CachePaths)
	if err != nil {
		return Result{}, zerr.With(zerr.Wrap(err, "hash file set"), "check", check.Name.String())
	}
	fp := Fingerprints{ConfigHash: configHash, ContentHash: contentHash, FileHashes: fileHashes}

	entry, ok := cache.Get(check.Name.String())
	switch {
	case !ok || entry.ContentHash == nil:
		return Result{Verdict: unverified(check.Name, domain.ReasonNeverRun, "", 0), Fingerprints: fp}, nil

	case entry.ConfigHash != configHash:
		return Result{Verdict: unverified(check.Name, domain.ReasonConfigChanged, "", 0), Fingerprints: fp}, nil
	}

	for _, dep := range check.Dependencies {
		if depStatus[dep] != domain.StatusVerified {
			return Result{Verdict: unverified(check.Name, domain.ReasonDependencyUnverified, dep.String(), 0), Fingerprints: fp}, nil
		}
	}

	if *entry.ContentHash != contentHash {
		changed := diffFiles(entry.FileHashes, fileHashes)
		return Result{
			Verdict:      unverifiedFiles(check.Name, changed),
			Fingerprints: fp,
		}, nil
	}

	return Result{Verdict: domain.Verdict{Check: check.Name, Status: domain.StatusVerified}, Fingerprints: fp}, nil
}

func unverified(name domain.InternedString, reason domain.Reason, staleDep string, changedCount int) domain.Verdict {
	return domain.Verdict{
		Check:            name,
		Status:           domain.StatusUnverified,
		Reason:           reason,
		StaleDependency:  staleDep,
		ChangedFileCount: changedCount,
	}
}

func unverifiedFiles(name domain.InternedString, changed []string) domain.Verdict {
	return domain.Verdict{
		Check:            name,
		Status:           domain.StatusUnverified,
		Reason:           domain.ReasonFilesChanged,
		ChangedFileCount: len(changed),
		ChangedFiles:     changed,
	}
}

// diffFiles reports every path whose fingerprint changed, was added, or
// was removed between old and fresh file-hash maps. Used only for display
// (spec.md §4.4 "the count of differing files is recorded").
func diffFiles(old, fresh map[string]domain.FileHash) []string {
	var changed []string
	for path, fh := range fresh {
		if oldFH, ok := old[path]; !ok || oldFH.Hash != fh.Hash {
			changed = append(changed, path)
		}
	}
	for path := range old {
		if _, ok := fresh[path]; !ok {
			changed = append(changed, path)
		}
	}
	sort.Strings(changed)
	return changed
}
