package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/verify/internal/app"
	"go.trai.ch/verify/internal/core/domain"
	"go.trai.ch/verify/internal/core/ports"
)

type fakeLoader struct {
	graphs map[string]*domain.Graph
	errs   map[string]error
}

func (f *fakeLoader) Load(projectRoot string) (*domain.Graph, error) {
	if err, ok := f.errs[projectRoot]; ok {
		return nil, err
	}
	g, ok := f.graphs[projectRoot]
	if !ok {
		return nil, errors.New("no config for " + projectRoot)
	}
	return g, nil
}

type fakeHasher struct{}

func (fakeHasher) HashFileSet(string, []string) (string, map[string]domain.FileHash, error) {
	return "content", nil, nil
}
func (fakeHasher) HashFile(string) (domain.FileHash, error) { return domain.FileHash{}, nil }
func (fakeHasher) ConfigHash(c *domain.Check) string         { return "config:" + c.Name.String() }

type fakeStore struct {
	docs map[string]*domain.CacheDocument
}

func newFakeStore() *fakeStore { return &fakeStore{docs: map[string]*domain.CacheDocument{}} }

func (f *fakeStore) Load(path string) (*domain.CacheDocument, error) {
	if d, ok := f.docs[path]; ok {
		return d, nil
	}
	return domain.NewCacheDocument(), nil
}
func (f *fakeStore) Save(path string, doc *domain.CacheDocument) error {
	f.docs[path] = doc
	return nil
}

type fakeExecutor struct {
	calls   []string
	results map[string]ports.ExecResult
}

func (f *fakeExecutor) Run(_ context.Context, req ports.ExecRequest) (ports.ExecResult, error) {
	f.calls = append(f.calls, req.Command)
	if r, ok := f.results[req.Command]; ok {
		return r, nil
	}
	return ports.ExecResult{Success: true}, nil
}

type fakeMetadata struct{}

func (fakeMetadata) Extract(string, map[string]domain.MetadataPattern) map[string]any { return nil }

type fakeLogger struct{}

func (fakeLogger) Info(string) {}
func (fakeLogger) Warn(string) {}
func (fakeLogger) Error(error) {}

type fakeVCS struct {
	history []string
	written map[string]string
}

func newFakeVCS() *fakeVCS { return &fakeVCS{written: map[string]string{}} }

func (f *fakeVCS) ReadTrailerHistory(string, int) ([]string, error) { return f.history, nil }
func (f *fakeVCS) WriteTrailer(commitMsgPath, value string) error {
	f.written[commitMsgPath] = value
	return nil
}

func buildGraph(t *testing.T, checks ...domain.Check) *domain.Graph {
	t.Helper()
	g := domain.NewGraph()
	for _, c := range checks {
		require.NoError(t, g.AddCheck(c))
	}
	require.NoError(t, g.Validate())
	return g
}

func TestApp_RunExecutesUntrackedCheckEveryTime(t *testing.T) {
	root := t.TempDir()
	g := buildGraph(t, domain.Check{Name: domain.NewInternedString("lint"), Command: "echo lint", HasCommand: true})
	loader := &fakeLoader{graphs: map[string]*domain.Graph{root: g}}
	exec := &fakeExecutor{}

	a := app.New(loader, fakeHasher{}, newFakeStore(), exec, fakeMetadata{}, fakeLogger{}, newFakeVCS(), nil)

	summary, err := a.Run(context.Background(), root, app.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Passed())
	assert.Equal(t, []string{"echo lint"}, exec.calls)

	_, err = a.Run(context.Background(), root, app.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"echo lint", "echo lint"}, exec.calls)
}

func TestApp_RunIdempotentOnTrackedCheck(t *testing.T) {
	root := t.TempDir()
	g := buildGraph(t, domain.Check{
		Name: domain.NewInternedString("build"), Command: "echo build", HasCommand: true,
		CachePaths: []string{"**/*.go"},
	})
	loader := &fakeLoader{graphs: map[string]*domain.Graph{root: g}}
	exec := &fakeExecutor{}
	store := newFakeStore()

	a := app.New(loader, fakeHasher{}, store, exec, fakeMetadata{}, fakeLogger{}, newFakeVCS(), nil)

	_, err := a.Run(context.Background(), root, app.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"echo build"}, exec.calls)

	_, err = a.Run(context.Background(), root, app.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"echo build"}, exec.calls, "second run must not re-execute a Verified check")
}

func TestApp_StatusReportsDependencyUnverifiedForAggregate(t *testing.T) {
	root := t.TempDir()
	g := buildGraph(t,
		domain.Check{Name: domain.NewInternedString("build"), Command: "echo build", HasCommand: true, CachePaths: []string{"*.go"}},
		domain.Check{Name: domain.NewInternedString("test"), Command: "echo test", HasCommand: true, CachePaths: []string{"*.go"}},
		domain.Check{
			Name: domain.NewInternedString("all"),
			Dependencies: domain.NewInternedStrings([]string{"build", "test"}),
		},
	)
	loader := &fakeLoader{graphs: map[string]*domain.Graph{root: g}}
	a := app.New(loader, fakeHasher{}, newFakeStore(), &fakeExecutor{}, fakeMetadata{}, fakeLogger{}, newFakeVCS(), nil)

	verdicts, err := a.Status(root)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnverified, verdicts["all"].Status)
	assert.Equal(t, domain.ReasonDependencyUnverified, verdicts["all"].Reason)
}

func TestApp_Clean(t *testing.T) {
	root := t.TempDir()
	store := newFakeStore()
	path := root + "/verify.lock"
	hash := "abc"
	doc := domain.NewCacheDocument()
	doc.Put("build", domain.CacheEntry{ConfigHash: "x", ContentHash: &hash})
	doc.Put("lint", domain.CacheEntry{ConfigHash: "y", ContentHash: &hash})
	store.docs[path] = doc

	a := app.New(&fakeLoader{}, fakeHasher{}, store, &fakeExecutor{}, fakeMetadata{}, fakeLogger{}, newFakeVCS(), nil)

	require.NoError(t, a.Clean(root, "build"))
	_, ok := store.docs[path].Get("build")
	assert.False(t, ok)
	_, ok = store.docs[path].Get("lint")
	assert.True(t, ok)
}

func TestApp_SignThenCheckRoundTrips(t *testing.T) {
	root := t.TempDir()
	g := buildGraph(t, domain.Check{
		Name: domain.NewInternedString("build"), Command: "echo build", HasCommand: true,
		CachePaths: []string{"**/*.go"},
	})
	loader := &fakeLoader{graphs: map[string]*domain.Graph{root: g}}
	store := newFakeStore()
	vc := newFakeVCS()

	a := app.New(loader, fakeHasher{}, store, &fakeExecutor{}, fakeMetadata{}, fakeLogger{}, vc, nil)

	_, err := a.Run(context.Background(), root, app.RunOptions{})
	require.NoError(t, err)

	require.NoError(t, a.Sign(root, "COMMIT_MSG"))
	vc.history = []string{vc.written["COMMIT_MSG"]}

	diffs, ok, err := a.Check(root, "")
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, diffs, 1)
	assert.True(t, diffs[0].Matches)
}

func TestApp_SubprojectReentryIsAnError(t *testing.T) {
	root := t.TempDir()
	g := buildGraph(t, domain.Check{Name: domain.NewInternedString("nested"), Path: root, HasPath: true})
	loader := &fakeLoader{graphs: map[string]*domain.Graph{root: g}}

	a := app.New(loader, fakeHasher{}, newFakeStore(), &fakeExecutor{}, fakeMetadata{}, fakeLogger{}, newFakeVCS(), nil)

	_, err := a.Run(context.Background(), root, app.RunOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSubprojectReentry)
}

func TestApp_SyncSeedsCacheFromConsistentHistory(t *testing.T) {
	root := t.TempDir()
	g := buildGraph(t, domain.Check{
		Name: domain.NewInternedString("build"), Command: "echo build", HasCommand: true,
		CachePaths: []string{"**/*.go"},
	})
	loader := &fakeLoader{graphs: map[string]*domain.Graph{root: g}}
	store := newFakeStore()
	vc := newFakeVCS()

	a := app.New(loader, fakeHasher{}, store, &fakeExecutor{}, fakeMetadata{}, fakeLogger{}, vc, nil)

	entries, err := a.Hash(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	vc.history = []string{"build:" + entries[0].Short}

	seeded, err := a.Sync(root, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, seeded)

	verdicts, err := a.Status(root)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusVerified, verdicts["build"].Status)
}
