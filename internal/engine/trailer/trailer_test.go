package trailer_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/verify/internal/engine/trailer"
)

func TestCombinedHash_Deterministic(t *testing.T) {
	h1 := trailer.CombinedHash("config_abc", "content_xyz")
	h2 := trailer.CombinedHash("config_abc", "content_xyz")
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}

func TestCombinedHash_ChangesOnEitherInput(t *testing.T) {
	base := trailer.CombinedHash("config", "content")
	assert.NotEqual(t, base, trailer.CombinedHash("config2", "content"))
	assert.NotEqual(t, base, trailer.CombinedHash("config", "content2"))
}

func TestTruncate(t *testing.T) {
	full := "a1b2c3d4e5f6a7b8c9d0e1f23a4b5c6d7e8f9a0b1c2d3e4f5a6b7c8d9e0f1a2"
	assert.Equal(t, "a1b2c3d4", trailer.Truncate(full))
	assert.Equal(t, "abc", trailer.Truncate("abc"))
}

func TestFormat(t *testing.T) {
	entries := []trailer.Entry{
		{Name: "lint", Short: "c9d0e1f2"},
		{Name: "build", Short: "a1b2c3d4"},
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	assert.Equal(t, "build:a1b2c3d4,lint:c9d0e1f2", trailer.Format(entries))
}

func TestParse(t *testing.T) {
	parsed := trailer.Parse("build:a1b2c3d4,lint:e5f6a7b8")
	assert.Equal(t, map[string]string{"build": "a1b2c3d4", "lint": "e5f6a7b8"}, parsed)
}

func TestParse_Empty(t *testing.T) {
	assert.Empty(t, trailer.Parse(""))
}

func TestCheck_AllMatch(t *testing.T) {
	current := []trailer.Entry{{Name: "build", Short: "a1b2c3d4"}, {Name: "lint", Short: "e5f6a7b8"}}
	diffs := trailer.Check(current, "build:a1b2c3d4,lint:e5f6a7b8", "")
	assert.True(t, trailer.AllMatch(diffs))
}

func TestCheck_MissingEntryFails(t *testing.T) {
	current := []trailer.Entry{{Name: "build", Short: "a1b2c3d4"}, {Name: "lint", Short: "e5f6a7b8"}}
	diffs := trailer.Check(current, "build:a1b2c3d4", "")
	assert.False(t, trailer.AllMatch(diffs))
}

func TestCheck_MismatchedHashFails(t *testing.T) {
	current := []trailer.Entry{{Name: "build", Short: "a1b2c3d4"}}
	diffs := trailer.Check(current, "build:ffffffff", "")
	assert.False(t, trailer.AllMatch(diffs))
	assert.Len(t, diffs, 1)
	assert.False(t, diffs[0].Matches)
}

func TestCheck_NarrowToOneName(t *testing.T) {
	current := []trailer.Entry{{Name: "build", Short: "a1b2c3d4"}, {Name: "lint", Short: "e5f6a7b8"}}
	diffs := trailer.Check(current, "build:a1b2c3d4", "build")
	assert.Len(t, diffs, 1)
	assert.Equal(t, "build", diffs[0].Name)
}

func TestFindConsistent(t *testing.T) {
	current := []trailer.Entry{{Name: "build", Short: "a1b2c3d4"}}
	history := []string{"build:ffffffff", "build:a1b2c3d4", "build:00000000"}
	assert.Equal(t, 1, trailer.FindConsistent(history, current))
}

func TestFindConsistent_NoneMatch(t *testing.T) {
	current := []trailer.Entry{{Name: "build", Short: "a1b2c3d4"}}
	history := []string{"build:ffffffff"}
	assert.Equal(t, -1, trailer.FindConsistent(history, current))
}
