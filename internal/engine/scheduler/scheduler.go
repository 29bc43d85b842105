// Package scheduler implements the wave-based execution engine (spec.md
// §4.2, §4.5): it partitions a project's check graph into parallel-safe
// waves, runs the selected, non-Verified checks with bounded fan-out, and
// persists the lock file incrementally so an interrupt never loses
// already-proven progress.
package scheduler

import (
	"context"
	"io"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"go.trai.ch/verify/internal/core/domain"
	"go.trai.ch/verify/internal/core/ports"
	"go.trai.ch/verify/internal/engine/resolver"
	"go.trai.ch/zerr"
)

// SubprojectRunner executes a nested project rooted at path (spec.md
// §4.3) and returns its terminal status. The caller (the application
// layer) owns config loading, cache-file naming, and the re-entry guard
// across the whole recursive run.
type SubprojectRunner func(ctx context.Context, path string, force bool) (domain.RunResult, error)

// Options configures one Run invocation.
type Options struct {
	// Targets, when non-empty, restricts selection to the transitive
	// closure of these check names. Empty means "every check".
	Targets []string
	// Force re-executes every selected check regardless of staleness.
	Force bool
	// Parallelism bounds concurrent command invocations; 0 defaults to
	// runtime.NumCPU().
	Parallelism int
	// Tee, when set, receives a real-time copy of every command's
	// combined output (spec.md §4.5 --verbose).
	Tee io.Writer
}

// Outcome is the terminal result of one selected check.
type Outcome struct {
	Name     string
	Result   domain.RunResult
	Verdict  domain.Verdict
	Metadata map[string]any
	Output   string
}

// Summary aggregates every Outcome from one Run call.
type Summary struct {
	Outcomes []Outcome
}

// Passed, Failed, Skipped report wave-execution tallies (spec.md §4.7 run
// summary; Untracked checks that succeed count as Passed).
func (s *Summary) Passed() int  { return s.count(domain.RunSuccess) }
func (s *Summary) Failed() int  { return s.count(domain.RunFailure) + s.count(domain.RunTimedOut) }
func (s *Summary) Skipped() int { return s.count(domain.RunSkipped) }

func (s *Summary) count(r domain.RunResult) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Result == r {
			n++
		}
	}
	return n
}

// Scheduler owns the adapters needed to execute checks and persist their
// outcomes for one project. The app layer creates a new Scheduler for each
// project it runs, sub-projects included, so Options.Parallelism bounds the
// checks running at once within one wave of one project; a sub-project run
// spawned from a node is bounded separately and is not counted against
// its parent's limit.
type Scheduler struct {
	executor  ports.Executor
	hasher    ports.Hasher
	store     ports.CacheStore
	metadata  ports.MetadataExtractor
	logger    ports.Logger
	tracer    ports.Tracer
	subRunner SubprojectRunner

	cacheMu sync.Mutex
}

// New creates a Scheduler. subRunner may be nil if the graph never
// contains sub-project nodes. tracer may be nil, in which case no spans
// are created.
func New(executor ports.Executor, hasher ports.Hasher, store ports.CacheStore, metadata ports.MetadataExtractor, logger ports.Logger, tracer ports.Tracer, subRunner SubprojectRunner) *Scheduler {
	return &Scheduler{
		executor:  executor,
		hasher:    hasher,
		store:     store,
		metadata:  metadata,
		logger:    logger,
		tracer:    tracer,
		subRunner: subRunner,
	}
}

// Run resolves staleness for every check in g, then executes the selected,
// non-Verified ones wave by wave (spec.md §4.5). The lock file at lockPath
// is updated incrementally as each check (or, for per-file checks, each
// file) succeeds.
func (s *Scheduler) Run(ctx context.Context, projectRoot, lockPath string, g *domain.Graph, opts Options) (*Summary, error) {
	doc, err := s.store.Load(lockPath)
	if err != nil {
		return nil, err
	}

	selected, err := selection(g, opts.Targets)
	if err != nil {
		return nil, err
	}

	verdicts, err := resolver.ResolveGraph(projectRoot, g, doc, s.hasher, nil)
	if err != nil {
		return nil, err
	}

	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	summary := &Summary{}
	runStatus := make(map[domain.InternedString]domain.RunResult, len(selected))

	for _, wave := range g.Waves() {
		names := waveMembers(wave, selected)
		if len(names) == 0 {
			continue
		}

		if s.tracer != nil {
			planned := make([]string, len(names))
			for i, n := range names {
				planned[i] = n.String()
			}
			s.tracer.EmitPlan(ctx, planned)
		}

		outcomes := make([]Outcome, len(names))
		group, gctx := errgroup.WithContext(ctx)
		group.SetLimit(parallelism)

		for i, name := range names {
			i, name := i, name
			group.Go(func() error {
				check, _ := g.Get(name)
				outcomes[i] = s.runTraced(gctx, projectRoot, lockPath, doc, check, verdicts[name.String()], runStatus, opts)
				return nil
			})
		}
		_ = group.Wait() // runOne never returns an error; failures are encoded in Outcome.Result

		for i, name := range names {
			runStatus[name] = outcomes[i].Result
			summary.Outcomes = append(summary.Outcomes, outcomes[i])
		}
	}

	return summary, nil
}

// selection resolves the targets closure (spec.md §4.7): every check when
// targets is empty, otherwise the transitive dependency closure of the
// named targets.
func selection(g *domain.Graph, targets []string) (map[domain.InternedString]bool, error) {
	if len(targets) == 0 {
		all := make(map[domain.InternedString]bool, g.Len())
		for _, n := range g.Names() {
			all[n] = true
		}
		return all, nil
	}
	return g.TransitiveClosure(domain.NewInternedStrings(targets))
}

func waveMembers(wave []domain.InternedString, selected map[domain.InternedString]bool) []domain.InternedString {
	var out []domain.InternedString
	for _, n := range wave {
		if selected[n] {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// runTraced wraps runOne in a span named after the check when a tracer is
// configured, recording its terminal RunResult and, on failure or timeout,
// an ErrCheckFailed span error naming the check (spec.md §4.7 plan/outcome, surfaced
// via OpenTelemetry rather than a bespoke event log).
func (s *Scheduler) runTraced(
	ctx context.Context,
	projectRoot, lockPath string,
	doc *domain.CacheDocument,
	check domain.Check,
	verdict resolver.Result,
	runStatus map[domain.InternedString]domain.RunResult,
	opts Options,
) Outcome {
	if s.tracer == nil {
		return s.runOne(ctx, projectRoot, lockPath, doc, check, verdict, runStatus, opts)
	}

	ctx, span := s.tracer.Start(ctx, check.Name.String())
	defer span.End()

	out := s.runOne(ctx, projectRoot, lockPath, doc, check, verdict, runStatus, opts)

	span.SetAttribute("result", out.Result.String())
	if out.Result == domain.RunFailure || out.Result == domain.RunTimedOut {
		span.RecordError(zerr.With(domain.ErrCheckFailed, "check", check.Name.String()))
	}
	return out
}

// runOne executes (or skips) a single check once its dependency-gating
// decision is known. It never returns an error: I/O failures are reported
// as a RunFailure Outcome (spec.md §7 IOError: "abort the offending check
// as failed; continue other independent checks").
func (s *Scheduler) runOne(
	ctx context.Context,
	projectRoot, lockPath string,
	doc *domain.CacheDocument,
	check domain.Check,
	verdict resolver.Result,
	runStatus map[domain.InternedString]domain.RunResult,
	opts Options,
) Outcome {
	out := Outcome{Name: check.Name.String(), Verdict: verdict.Verdict}

	if !depsSucceeded(check, runStatus) {
		out.Result = domain.RunSkipped
		return out
	}

	switch check.Kind() {
	case domain.KindAggregate:
		out.Result = domain.RunSuccess
		return out

	case domain.KindSubproject:
		return s.runSubproject(ctx, check, opts, out)

	case domain.KindUntracked:
		return s.runUntracked(ctx, projectRoot, check, opts, out)

	default: // KindTracked
		if verdict.Verdict.Status == domain.StatusVerified && !opts.Force {
			out.Result = domain.RunSuccess
			return out
		}
		return s.runTracked(ctx, projectRoot, lockPath, doc, check, verdict, opts, out)
	}
}

func depsSucceeded(check domain.Check, runStatus map[domain.InternedString]domain.RunResult) bool {
	for _, dep := range check.Dependencies {
		if runStatus[dep] != domain.RunSuccess {
			return false
		}
	}
	return true
}

func (s *Scheduler) runSubproject(ctx context.Context, check domain.Check, opts Options, out Outcome) Outcome {
	if s.subRunner == nil {
		out.Result = domain.RunFailure
		return out
	}
	result, err := s.subRunner(ctx, check.Path, opts.Force)
	if err != nil {
		if s.logger != nil {
			s.logger.Error(zerr.With(zerr.Wrap(err, "sub-project run failed"), "check", check.Name.String()))
		}
		out.Result = domain.RunFailure
		return out
	}
	out.Result = result
	return out
}

func (s *Scheduler) runUntracked(ctx context.Context, projectRoot string, check domain.Check, opts Options, out Outcome) Outcome {
	res, err := s.executor.Run(ctx, ports.ExecRequest{
		Command:     check.Command,
		ProjectRoot: projectRoot,
		TimeoutSecs: check.TimeoutSecs,
		Tee:         opts.Tee,
	})
	if err != nil {
		if s.logger != nil {
			s.logger.Error(zerr.With(zerr.Wrap(err, "untracked check failed to run"), "check", check.Name.String()))
		}
		out.Result = domain.RunFailure
		return out
	}
	out.Output = res.Output
	if res.TimedOut {
		out.Result = domain.RunTimedOut
		return out
	}
	if !res.Success {
		out.Result = domain.RunFailure
		return out
	}
	if s.metadata != nil {
		out.Metadata = s.metadata.Extract(res.Output, check.Metadata)
	}
	out.Result = domain.RunSuccess
	return out
}

func (s *Scheduler) runTracked(
	ctx context.Context,
	projectRoot, lockPath string,
	doc *domain.CacheDocument,
	check domain.Check,
	verdict resolver.Result,
	opts Options,
	out Outcome,
) Outcome {
	if check.PerFile {
		return s.runPerFile(ctx, projectRoot, lockPath, doc, check, verdict, opts, out)
	}
	return s.runWholeCheck(ctx, projectRoot, lockPath, doc, check, verdict, opts, out)
}

func (s *Scheduler) runWholeCheck(
	ctx context.Context,
	projectRoot, lockPath string,
	doc *domain.CacheDocument,
	check domain.Check,
	verdict resolver.Result,
	opts Options,
	out Outcome,
) Outcome {
	res, err := s.executor.Run(ctx, ports.ExecRequest{
		Command:     check.Command,
		ProjectRoot: projectRoot,
		TimeoutSecs: check.TimeoutSecs,
		Tee:         opts.Tee,
	})
	if err != nil {
		s.clearContentHashOnFailure(lockPath, doc, check.Name.String())
		out.Result = domain.RunFailure
		return out
	}
	out.Output = res.Output

	if res.TimedOut || !res.Success {
		s.clearContentHashOnFailure(lockPath, doc, check.Name.String())
		if res.TimedOut {
			out.Result = domain.RunTimedOut
		} else {
			out.Result = domain.RunFailure
		}
		return out
	}

	var metadata map[string]any
	if s.metadata != nil {
		metadata = s.metadata.Extract(res.Output, check.Metadata)
	}
	contentHash := verdict.Fingerprints.ContentHash
	s.persist(lockPath, doc, check.Name.String(), domain.CacheEntry{
		ConfigHash:  verdict.Fingerprints.ConfigHash,
		ContentHash: &contentHash,
		FileHashes:  verdict.Fingerprints.FileHashes,
		Metadata:    metadata,
	})
	out.Metadata = metadata
	out.Result = domain.RunSuccess
	return out
}

// runPerFile implements spec.md §4.5's per-file execution: stale files run
// sequentially; each success is persisted immediately so an interrupt
// never loses proven files; the first failure halts the remaining files.
func (s *Scheduler) runPerFile(
	ctx context.Context,
	projectRoot, lockPath string,
	doc *domain.CacheDocument,
	check domain.Check,
	verdict resolver.Result,
	opts Options,
	out Outcome,
) Outcome {
	prior, _ := doc.Get(check.Name.String())
	fresh := verdict.Fingerprints.FileHashes

	stale := staleFiles(prior.FileHashes, fresh)
	fileHashes := copyFileHashes(prior.FileHashes)
	var combinedOutput string
	var lastMetadata map[string]any

	for _, f := range stale {
		res, err := s.executor.Run(ctx, ports.ExecRequest{
			Command:     check.Command,
			ProjectRoot: projectRoot,
			TimeoutSecs: check.TimeoutSecs,
			VerifyFile:  f,
			Tee:         opts.Tee,
		})
		if err != nil || res.TimedOut || !res.Success {
			s.persist(lockPath, doc, check.Name.String(), domain.CacheEntry{
				ConfigHash:  verdict.Fingerprints.ConfigHash,
				ContentHash: nil,
				FileHashes:  fileHashes,
				Metadata:    prior.Metadata,
			})
			if res.TimedOut {
				out.Result = domain.RunTimedOut
			} else {
				out.Result = domain.RunFailure
			}
			out.Output = combinedOutput + res.Output
			return out
		}

		combinedOutput += res.Output
		fileHashes[f] = fresh[f]
		if s.metadata != nil {
			if m := s.metadata.Extract(res.Output, check.Metadata); m != nil {
				lastMetadata = m
			}
		}
		// Interrupt-safe incremental write: this file's success survives
		// even if the process is killed before the next file starts.
		s.persist(lockPath, doc, check.Name.String(), domain.CacheEntry{
			ConfigHash:  verdict.Fingerprints.ConfigHash,
			ContentHash: nil,
			FileHashes:  fileHashes,
			Metadata:    prior.Metadata,
		})
	}

	contentHash := verdict.Fingerprints.ContentHash
	if lastMetadata == nil {
		lastMetadata = prior.Metadata
	}
	s.persist(lockPath, doc, check.Name.String(), domain.CacheEntry{
		ConfigHash:  verdict.Fingerprints.ConfigHash,
		ContentHash: &contentHash,
		FileHashes:  fresh,
		Metadata:    lastMetadata,
	})
	out.Output = combinedOutput
	out.Metadata = lastMetadata
	out.Result = domain.RunSuccess
	return out
}

// staleFiles returns, in sorted order, every path in fresh whose
// fingerprint differs from (or is absent from) prior.
func staleFiles(prior map[string]domain.FileHash, fresh map[string]domain.FileHash) []string {
	var out []string
	for path, fh := range fresh {
		if p, ok := prior[path]; !ok || p.Hash != fh.Hash {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}

func copyFileHashes(m map[string]domain.FileHash) map[string]domain.FileHash {
	out := make(map[string]domain.FileHash, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// persist updates doc's entry for name under the scheduler's single
// serialising critical section (spec.md §5) and atomically rewrites the
// lock file.
func (s *Scheduler) persist(lockPath string, doc *domain.CacheDocument, name string, entry domain.CacheEntry) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	doc.Put(name, entry)
	if err := s.store.Save(lockPath, doc); err != nil && s.logger != nil {
		s.logger.Error(zerr.With(zerr.Wrap(err, "save lock file"), "path", lockPath))
	}
}

// clearContentHashOnFailure implements spec.md §4.5: "After a failed
// whole-check run, the cache entry is updated to clear content_hash
// (null) and the prior file_hashes remain." A check that has never
// succeeded gets no entry at all.
func (s *Scheduler) clearContentHashOnFailure(lockPath string, doc *domain.CacheDocument, name string) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	entry, ok := doc.Get(name)
	if !ok {
		return
	}
	entry.ContentHash = nil
	doc.Put(name, entry)
	if err := s.store.Save(lockPath, doc); err != nil && s.logger != nil {
		s.logger.Error(zerr.With(zerr.Wrap(err, "save lock file"), "path", lockPath))
	}
}
