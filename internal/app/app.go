// Package app wires the engine's ports together into the operations the
// CLI drives: run, status, clean, and the commit-trailer protocol
// (hash/sign/check/sync).
package app

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"

	"go.trai.ch/verify/internal/core/domain"
	"go.trai.ch/verify/internal/core/ports"
	"go.trai.ch/verify/internal/engine/resolver"
	"go.trai.ch/verify/internal/engine/scheduler"
	"go.trai.ch/verify/internal/engine/trailer"
	"go.trai.ch/zerr"
)

// LockFilename is the conventional name of a project's persisted cache
// document (spec.md §6).
const LockFilename = "verify.lock"

// App is the application layer: every operation the CLI exposes, built
// from the engine's ports. It holds no per-invocation state, so a single
// App instance is safe to reuse and to share across concurrent commands.
type App struct {
	configLoader ports.ConfigLoader
	hasher       ports.Hasher
	store        ports.CacheStore
	executor     ports.Executor
	metadata     ports.MetadataExtractor
	logger       ports.Logger
	vc           ports.VCS
	tracer       ports.Tracer
}

// New creates an App from its ports. tracer may be nil; Run then executes
// without span instrumentation.
func New(
	configLoader ports.ConfigLoader,
	hasher ports.Hasher,
	store ports.CacheStore,
	executor ports.Executor,
	metadata ports.MetadataExtractor,
	logger ports.Logger,
	vc ports.VCS,
	tracer ports.Tracer,
) *App {
	return &App{
		configLoader: configLoader,
		hasher:       hasher,
		store:        store,
		executor:     executor,
		metadata:     metadata,
		logger:       logger,
		vc:           vc,
		tracer:       tracer,
	}
}

// RunOptions configures one `run` invocation (spec.md §4.7).
type RunOptions struct {
	Targets []string
	Force   bool
	Tee     io.Writer
}

// Run loads projectRoot's graph, resolves staleness, and executes the
// selected, non-Verified checks wave by wave, recursing into sub-projects
// through the same mechanism (spec.md §4.3, §4.5, §4.7).
func (a *App) Run(ctx context.Context, projectRoot string, opts RunOptions) (*scheduler.Summary, error) {
	return a.runProject(ctx, projectRoot, opts, newVisitedSet())
}

func (a *App) runProject(ctx context.Context, projectRoot string, opts RunOptions, visited *visitedSet) (*scheduler.Summary, error) {
	if err := visited.enter(projectRoot); err != nil {
		return nil, err
	}

	graph, err := a.configLoader.Load(projectRoot)
	if err != nil {
		return nil, err
	}

	// A sub-project re-entry anywhere below this project fails the run.
	var reentryOnce sync.Once
	var reentryErr error
	subRunner := func(ctx context.Context, path string, force bool) (domain.RunResult, error) {
		summary, err := a.runProject(ctx, path, RunOptions{Force: force, Tee: opts.Tee}, visited)
		if err != nil {
			if errors.Is(err, domain.ErrSubprojectReentry) {
				reentryOnce.Do(func() { reentryErr = err })
			}
			return domain.RunFailure, err
		}
		if summary.Failed() > 0 {
			return domain.RunFailure, nil
		}
		return domain.RunSuccess, nil
	}

	sched := scheduler.New(a.executor, a.hasher, a.store, a.metadata, a.logger, a.tracer, subRunner)
	summary, err := sched.Run(ctx, projectRoot, lockPath(projectRoot), graph, scheduler.Options{
		Targets: opts.Targets,
		Force:   opts.Force,
		Tee:     opts.Tee,
	})
	if err == nil && reentryErr != nil {
		return nil, reentryErr
	}
	return summary, err
}

// Status loads projectRoot's graph and cache and returns every check's
// current verdict without executing anything (spec.md §4.4, §4.7
// `status`), recursing into sub-projects to derive their aggregate
// status.
func (a *App) Status(projectRoot string) (map[string]domain.Verdict, error) {
	results, err := a.statusProject(projectRoot, newVisitedSet())
	if err != nil {
		return nil, err
	}
	verdicts := make(map[string]domain.Verdict, len(results))
	for name, r := range results {
		verdicts[name] = r.Verdict
	}
	return verdicts, nil
}

// StatusRecord is one check's classification plus its last-recorded
// metadata, shaped for the JSON presentation spec.md §6 describes: "an
// array of { name, status, reason?, stale_dependency?, metadata? }
// records."
type StatusRecord struct {
	Name            string         `json:"name"`
	Status          string         `json:"status"`
	Reason          string         `json:"reason,omitempty"`
	StaleDependency string         `json:"stale_dependency,omitempty"`
	ChangedFiles    int            `json:"changed_file_count,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// StatusRecords is Status reshaped for the CLI's --json presentation
// (spec.md §6), additionally surfacing each check's last-recorded
// metadata from the cache document.
func (a *App) StatusRecords(projectRoot string) ([]StatusRecord, error) {
	doc, err := a.store.Load(lockPath(projectRoot))
	if err != nil {
		return nil, err
	}
	results, err := a.statusProject(projectRoot, newVisitedSet())
	if err != nil {
		return nil, err
	}

	records := make([]StatusRecord, 0, len(results))
	for name, r := range results {
		rec := StatusRecord{
			Name:            name,
			Status:          r.Verdict.Status.String(),
			StaleDependency: r.Verdict.StaleDependency,
			ChangedFiles:    r.Verdict.ChangedFileCount,
		}
		if r.Verdict.Status == domain.StatusUnverified {
			rec.Reason = r.Verdict.Reason.String()
		}
		if entry, ok := doc.Get(name); ok {
			rec.Metadata = entry.Metadata
		}
		records = append(records, rec)
	}
	return records, nil
}

func (a *App) statusProject(projectRoot string, visited *visitedSet) (map[string]resolver.Result, error) {
	if err := visited.enter(projectRoot); err != nil {
		return nil, err
	}

	graph, err := a.configLoader.Load(projectRoot)
	if err != nil {
		return nil, err
	}

	doc, err := a.store.Load(lockPath(projectRoot))
	if err != nil {
		return nil, err
	}

	subStatus := func(check domain.Check) (domain.Status, error) {
		sub, err := a.statusProject(check.Path, visited)
		if err != nil {
			return domain.StatusUnverified, err
		}
		return aggregateStatus(sub), nil
	}

	return resolver.ResolveGraph(projectRoot, graph, doc, a.hasher, subStatus)
}

// aggregateStatus reduces a sub-project's own check verdicts to a single
// status for its parent node: Verified iff every check in the nested
// project is Verified.
func aggregateStatus(results map[string]resolver.Result) domain.Status {
	for _, r := range results {
		if r.Verdict.Status != domain.StatusVerified {
			return domain.StatusUnverified
		}
	}
	return domain.StatusVerified
}

// Clean removes one named check's cache entry, or the whole document when
// name is empty (spec.md §4.7 `clean`).
func (a *App) Clean(projectRoot string, name string) error {
	path := lockPath(projectRoot)
	doc, err := a.store.Load(path)
	if err != nil {
		return err
	}
	if name == "" {
		doc.Clear(nil)
	} else {
		doc.Clear([]string{name})
	}
	return a.store.Save(path, doc)
}

// Hash computes the combined hash of every tracked, non-aggregate check
// in projectRoot's graph, regardless of current staleness (spec.md §4.6
// `hash`).
func (a *App) Hash(projectRoot string) ([]trailer.Entry, error) {
	graph, err := a.configLoader.Load(projectRoot)
	if err != nil {
		return nil, err
	}
	return trailer.ComputeAll(graph, a.hasher, projectRoot, nil)
}

// Sign computes the combined hash of every currently-Verified tracked
// check and writes the `Verified` trailer into the commit message file at
// commitMsgPath (spec.md §4.6 `sign`).
func (a *App) Sign(projectRoot, commitMsgPath string) error {
	graph, err := a.configLoader.Load(projectRoot)
	if err != nil {
		return err
	}
	doc, err := a.store.Load(lockPath(projectRoot))
	if err != nil {
		return err
	}
	results, err := resolver.ResolveGraph(projectRoot, graph, doc, a.hasher, nil)
	if err != nil {
		return err
	}
	statusByName := make(map[string]domain.Status, len(results))
	for name, r := range results {
		statusByName[name] = r.Verdict.Status
	}

	entries, err := trailer.ComputeAll(graph, a.hasher, projectRoot, statusByName)
	if err != nil {
		return err
	}
	return trailer.Sign(a.vc, commitMsgPath, entries)
}

// Check reads the HEAD commit's Verified trailer and compares it against
// the freshly computed combined hash of every tracked, non-aggregate
// check (spec.md §4.6 `check`). name narrows the comparison to one entry
// when non-empty. The returned bool is the exit-0 condition.
func (a *App) Check(projectRoot string, name string) ([]trailer.Diff, bool, error) {
	graph, err := a.configLoader.Load(projectRoot)
	if err != nil {
		return nil, false, err
	}
	current, err := trailer.ComputeAll(graph, a.hasher, projectRoot, nil)
	if err != nil {
		return nil, false, err
	}

	history, err := a.vc.ReadTrailerHistory(projectRoot, 1)
	if err != nil {
		return nil, false, zerr.Wrap(err, "read HEAD trailer")
	}
	var value string
	if len(history) > 0 {
		value = history[0]
	}

	diffs := trailer.Check(current, value, name)
	return diffs, trailer.AllMatch(diffs), nil
}

// DefaultSyncDepth is how many recent commits `sync` inspects when the
// caller does not override it (spec.md §4.6 "default 20").
const DefaultSyncDepth = 20

// Sync walks up to maxDepth recent commits for the first one whose
// Verified trailer is fully consistent with the current file state, and
// seeds the local cache from its entries, never overwriting an
// already-Verified check (spec.md §4.6 `sync`). Returns the number of
// entries seeded.
func (a *App) Sync(projectRoot string, maxDepth int) (int, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultSyncDepth
	}

	graph, err := a.configLoader.Load(projectRoot)
	if err != nil {
		return 0, err
	}
	path := lockPath(projectRoot)
	doc, err := a.store.Load(path)
	if err != nil {
		return 0, err
	}

	verdicts, err := resolver.ResolveGraph(projectRoot, graph, doc, a.hasher, nil)
	if err != nil {
		return 0, err
	}
	current, err := trailer.ComputeAll(graph, a.hasher, projectRoot, nil)
	if err != nil {
		return 0, err
	}

	history, err := a.vc.ReadTrailerHistory(projectRoot, maxDepth)
	if err != nil {
		return 0, zerr.Wrap(err, "read trailer history")
	}

	idx := trailer.FindConsistent(history, current)
	if idx < 0 {
		return 0, nil
	}
	matched := trailer.Parse(history[idx])

	seeded := 0
	for _, e := range current {
		short, ok := matched[e.Name]
		if !ok || short != e.Short {
			continue
		}
		if v, ok := verdicts[e.Name]; ok && v.Verdict.Status == domain.StatusVerified {
			continue
		}

		check, ok := graph.Get(domain.NewInternedString(e.Name))
		if !ok {
			continue
		}
		configHash := a.hasher.ConfigHash(&check)
		contentHash, fileHashes, err := a.hasher.HashFileSet(projectRoot, check.CachePaths)
		if err != nil {
			return seeded, zerr.With(zerr.Wrap(err, "hash file set during sync"), "check", e.Name)
		}
		doc.Put(e.Name, domain.CacheEntry{ConfigHash: configHash, ContentHash: &contentHash, FileHashes: fileHashes})
		seeded++
	}

	if seeded > 0 {
		if err := a.store.Save(path, doc); err != nil {
			return seeded, err
		}
	}
	return seeded, nil
}

func lockPath(projectRoot string) string {
	return filepath.Join(projectRoot, LockFilename)
}
