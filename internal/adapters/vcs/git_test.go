package vcs_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/verify/internal/adapters/vcs"
)

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run(t, dir, "init", "-q")
	run(t, dir, "config", "user.email", "test@example.com")
	run(t, dir, "config", "user.name", "Test")
	return dir
}

func run(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoErrorf(t, err, "git %v: %s", args, out)
}

func commit(t *testing.T, dir, message string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte(message), 0o644))
	run(t, dir, "add", "-A")
	run(t, dir, "commit", "-q", "-m", message)
}

func TestGit_WriteThenReadTrailer(t *testing.T) {
	dir := initRepo(t)
	commit(t, dir, "initial")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("second"), 0o644))
	run(t, dir, "add", "-A")

	msgPath := filepath.Join(dir, "COMMIT_MSG")
	require.NoError(t, os.WriteFile(msgPath, []byte("feat: add thing\n"), 0o644))

	g := vcs.New()
	require.NoError(t, g.WriteTrailer(msgPath, "build:a1b2c3d4,lint:e5f6a7b8"))

	cmd := exec.Command("git", "commit", "-q", "-F", msgPath)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoErrorf(t, err, "%s", out)

	values, err := g.ReadTrailerHistory(dir, 5)
	require.NoError(t, err)
	require.NotEmpty(t, values)
	require.Contains(t, values[0], "build:a1b2c3d4")
}

func TestGit_ReadTrailerHistoryEmptyWhenNoTrailers(t *testing.T) {
	dir := initRepo(t)
	commit(t, dir, "initial")

	g := vcs.New()
	values, err := g.ReadTrailerHistory(dir, 5)
	require.NoError(t, err)
	require.Empty(t, values)
}
