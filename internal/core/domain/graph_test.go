package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/verify/internal/core/domain"
)

func trackedCheck(name string, deps ...string) domain.Check {
	return domain.Check{
		Name:         domain.NewInternedString(name),
		Command:      "true",
		HasCommand:   true,
		CachePaths:   []string{"**/*.go"},
		Dependencies: domain.NewInternedStrings(deps),
	}
}

func aggregateCheck(name string, deps ...string) domain.Check {
	return domain.Check{
		Name:         domain.NewInternedString(name),
		Dependencies: domain.NewInternedStrings(deps),
	}
}

func buildGraph(t *testing.T, checks ...domain.Check) *domain.Graph {
	t.Helper()
	g := domain.NewGraph()
	for _, c := range checks {
		require.NoError(t, g.AddCheck(c))
	}
	return g
}

func TestGraph_NoDeps_SingleWave(t *testing.T) {
	g := buildGraph(t, trackedCheck("a"), trackedCheck("b"))
	require.NoError(t, g.Validate())

	waves := g.Waves()
	require.Len(t, waves, 1)
	assert.ElementsMatch(t, []string{"a", "b"}, namesOf(waves[0]))
}

func TestGraph_LinearChain(t *testing.T) {
	g := buildGraph(t, trackedCheck("a"), trackedCheck("b", "a"), trackedCheck("c", "b"))
	require.NoError(t, g.Validate())

	waves := g.Waves()
	require.Len(t, waves, 3)
	assert.Equal(t, []string{"a"}, namesOf(waves[0]))
	assert.Equal(t, []string{"b"}, namesOf(waves[1]))
	assert.Equal(t, []string{"c"}, namesOf(waves[2]))
}

func TestGraph_Diamond(t *testing.T) {
	g := buildGraph(t,
		trackedCheck("a"),
		trackedCheck("b", "a"),
		trackedCheck("c", "a"),
		trackedCheck("d", "b", "c"),
	)
	require.NoError(t, g.Validate())

	waves := g.Waves()
	require.Len(t, waves, 3)
	assert.Equal(t, []string{"a"}, namesOf(waves[0]))
	assert.ElementsMatch(t, []string{"b", "c"}, namesOf(waves[1]))
	assert.Equal(t, []string{"d"}, namesOf(waves[2]))
}

func TestGraph_WideParallelThenConverge(t *testing.T) {
	g := buildGraph(t,
		trackedCheck("a"), trackedCheck("b"), trackedCheck("c"),
		aggregateCheck("all", "a", "b", "c"),
	)
	require.NoError(t, g.Validate())

	waves := g.Waves()
	require.Len(t, waves, 2)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, namesOf(waves[0]))
	assert.Equal(t, []string{"all"}, namesOf(waves[1]))
}

func TestGraph_TwoIndependentChains(t *testing.T) {
	g := buildGraph(t,
		trackedCheck("a1"), trackedCheck("a2", "a1"),
		trackedCheck("b1"), trackedCheck("b2", "b1"),
	)
	require.NoError(t, g.Validate())

	waves := g.Waves()
	require.Len(t, waves, 2)
	assert.ElementsMatch(t, []string{"a1", "b1"}, namesOf(waves[0]))
	assert.ElementsMatch(t, []string{"a2", "b2"}, namesOf(waves[1]))
}

func TestGraph_SelfLoop_Rejected(t *testing.T) {
	g := buildGraph(t, trackedCheck("a", "a"))
	err := g.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSelfDependency)
}

func TestGraph_TwoNodeCycle_Rejected(t *testing.T) {
	g := buildGraph(t, trackedCheck("a", "b"), trackedCheck("b", "a"))
	err := g.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCycleDetected)
}

func TestGraph_ThreeNodeCycle_Rejected(t *testing.T) {
	g := buildGraph(t, trackedCheck("a", "c"), trackedCheck("b", "a"), trackedCheck("c", "b"))
	err := g.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCycleDetected)
}

func TestGraph_UnknownDependency_Rejected(t *testing.T) {
	g := buildGraph(t, trackedCheck("a", "ghost"))
	err := g.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingDependency)
}

func TestGraph_DuplicateName_Rejected(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddCheck(trackedCheck("a")))
	err := g.AddCheck(trackedCheck("a"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCheckAlreadyExists)
}

func TestGraph_AmbiguousDefinition_Rejected(t *testing.T) {
	c := trackedCheck("a")
	c.HasPath = true
	c.Path = "sub"
	g := buildGraph(t, c)
	err := g.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAmbiguousDefinition)
}

func TestGraph_PerFileWithoutCachePaths_Rejected(t *testing.T) {
	c := domain.Check{
		Name:       domain.NewInternedString("a"),
		Command:    "true",
		HasCommand: true,
		PerFile:    true,
	}
	g := buildGraph(t, c)
	err := g.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPerFileRequiresCommand)
}

func TestGraph_TransitiveClosure(t *testing.T) {
	g := buildGraph(t,
		trackedCheck("a"),
		trackedCheck("b", "a"),
		trackedCheck("c", "b"),
		trackedCheck("unrelated"),
	)
	require.NoError(t, g.Validate())

	closure, err := g.TransitiveClosure(domain.NewInternedStrings([]string{"c"}))
	require.NoError(t, err)
	assert.Len(t, closure, 3)
	assert.True(t, closure[domain.NewInternedString("a")])
	assert.True(t, closure[domain.NewInternedString("b")])
	assert.True(t, closure[domain.NewInternedString("c")])
	assert.False(t, closure[domain.NewInternedString("unrelated")])
}

func TestGraph_TransitiveClosure_UnknownTarget(t *testing.T) {
	g := buildGraph(t, trackedCheck("a"))
	require.NoError(t, g.Validate())

	_, err := g.TransitiveClosure(domain.NewInternedStrings([]string{"ghost"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoTargetsResolved)
}

func TestGraph_Dependents(t *testing.T) {
	g := buildGraph(t, trackedCheck("a"), trackedCheck("b", "a"), trackedCheck("c", "a"))
	require.NoError(t, g.Validate())

	deps := g.Dependents(domain.NewInternedString("a"))
	assert.ElementsMatch(t, []string{"b", "c"}, namesOf(deps))
}

func namesOf(ns []domain.InternedString) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.String()
	}
	return out
}
