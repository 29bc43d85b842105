package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/verify/internal/adapters/config"
	"go.trai.ch/verify/internal/core/domain"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "verify.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_BasicChecks(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
verifications:
  - name: build
    command: go build ./...
    cache_paths:
      - "**/*.go"
  - name: test
    command: go test ./...
    depends_on: [build]
    cache_paths:
      - "**/*.go"
`)

	g, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())

	build, ok := g.Get(domain.NewInternedString("build"))
	require.True(t, ok)
	assert.Equal(t, domain.KindTracked, build.Kind())

	waves := g.Waves()
	require.Len(t, waves, 2)
	assert.Equal(t, "build", waves[0][0].String())
	assert.Equal(t, "test", waves[1][0].String())
}

func TestLoad_UntrackedCheckHasNoCachePaths(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
verifications:
  - name: smoke
    command: ./smoke.sh
`)

	g, err := config.Load(path)
	require.NoError(t, err)
	c, ok := g.Get(domain.NewInternedString("smoke"))
	require.True(t, ok)
	assert.Equal(t, domain.KindUntracked, c.Kind())
}

func TestLoad_MetadataPatternVariants(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
verifications:
  - name: coverage
    command: go test -cover ./...
    cache_paths: ["**/*.go"]
    metadata:
      coverage: 'coverage: (\d+\.\d+)%'
      duration: ['took (\d+)ms', '$1']
`)

	g, err := config.Load(path)
	require.NoError(t, err)
	c, ok := g.Get(domain.NewInternedString("coverage"))
	require.True(t, ok)

	cov := c.Metadata["coverage"]
	assert.False(t, cov.HasReplace)
	assert.Equal(t, `coverage: (\d+\.\d+)%`, cov.Regex)

	dur := c.Metadata["duration"]
	assert.True(t, dur.HasReplace)
	assert.Equal(t, "$1", dur.Replacement)
}

func TestLoad_MissingDependencyIsRejected(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
verifications:
  - name: test
    command: go test ./...
    depends_on: [nonexistent]
`)

	_, err := config.Load(path)
	assert.ErrorIs(t, err, domain.ErrMissingDependency)
}

func TestLoad_SelfDependencyIsRejected(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
verifications:
  - name: test
    command: go test ./...
    depends_on: [test]
`)

	_, err := config.Load(path)
	assert.ErrorIs(t, err, domain.ErrSelfDependency)
}

func TestLoad_ItemWithNeitherCommandNorPathIsAggregate(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
verifications:
  - name: build
    command: go build ./...
    cache_paths: ["**/*.go"]
  - name: test
    command: go test ./...
    cache_paths: ["**/*.go"]
  - name: all
    depends_on: [build, test]
`)

	g, err := config.Load(path)
	require.NoError(t, err)
	all, ok := g.Get(domain.NewInternedString("all"))
	require.True(t, ok)
	assert.Equal(t, domain.KindAggregate, all.Kind())
}

func TestLoad_ItemWithBothCommandAndPathIsRejected(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
verifications:
  - name: mystery
    command: echo hi
    path: ./sub
`)

	_, err := config.Load(path)
	require.Error(t, err)
}

func TestLoad_SubprojectPathMustExist(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
verifications:
  - name: frontend
    path: ./frontend
`)

	_, err := config.Load(path)
	require.Error(t, err)
}

func TestLoad_SubprojectResolved(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "frontend"), 0o755))
	writeConfig(t, filepath.Join(dir, "frontend"), `
verifications:
  - name: lint
    command: npm run lint
`)
	path := writeConfig(t, dir, `
verifications:
  - name: frontend
    path: ./frontend
`)

	g, err := config.Load(path)
	require.NoError(t, err)
	c, ok := g.Get(domain.NewInternedString("frontend"))
	require.True(t, ok)
	assert.Equal(t, domain.KindSubproject, c.Kind())
	assert.Equal(t, filepath.Join(dir, "frontend"), c.Path)
}

func TestLoad_PerFileWithoutCachePathsRejected(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
verifications:
  - name: fmt
    command: gofmt -l
    per_file: true
`)

	_, err := config.Load(path)
	assert.ErrorIs(t, err, domain.ErrPerFileRequiresCommand)
}

func TestLoad_DuplicateNameRejected(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
verifications:
  - name: test
    command: go test ./...
  - name: test
    command: go test -race ./...
`)

	_, err := config.Load(path)
	assert.ErrorIs(t, err, domain.ErrCheckAlreadyExists)
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
verifications:
  - name: test
    command: go test ./...
    retries: 3
`)

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoad_UnknownTopLevelFieldRejected(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
verifications:
  - name: test
    command: go test ./...
extra_top_level_field: true
`)

	_, err := config.Load(path)
	assert.Error(t, err)
}
