// Package domain contains the core domain models for the verification
// engine: checks, the dependency graph over them, wave scheduling, and the
// cache document shape.
package domain

import (
	"sort"

	"go.trai.ch/zerr"
)

// Graph represents the dependency graph of checks for one project.
type Graph struct {
	checks map[InternedString]Check
	// order preserves insertion order, used to break ties deterministically
	// when no other ordering is specified (e.g. config file order).
	order []InternedString
	waves [][]InternedString
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		checks: make(map[InternedString]Check),
	}
}

// AddCheck adds a check to the graph. It returns an error if a check with
// the same name already exists.
func (g *Graph) AddCheck(c Check) error {
	if _, exists := g.checks[c.Name]; exists {
		return zerr.With(zerr.Wrap(ErrCheckAlreadyExists, "add check"), "check", c.Name.String())
	}
	g.checks[c.Name] = c
	g.order = append(g.order, c.Name)
	return nil
}

// Get returns the check with the given name.
func (g *Graph) Get(name InternedString) (Check, bool) {
	c, ok := g.checks[name]
	return c, ok
}

// Names returns all check names in the order they were added.
func (g *Graph) Names() []InternedString {
	out := make([]InternedString, len(g.order))
	copy(out, g.order)
	return out
}

// Len reports the number of checks in the graph.
func (g *Graph) Len() int {
	return len(g.checks)
}

// Validate checks every invariant spec.md §3 requires at graph-build time:
// all depends_on entries resolve, no self-loops, no cycles, and command
// and path are mutually exclusive (neither is an Aggregate check, not an
// error), with per_file requiring a command and non-empty cache_paths. On
// success it computes the execution waves.
func (g *Graph) Validate() error {
	for _, name := range g.order {
		c := g.checks[name]

		if c.HasCommand && c.HasPath {
			return zerr.With(zerr.Wrap(ErrAmbiguousDefinition, "validate check"), "check", name.String())
		}
		if c.PerFile && (!c.HasCommand || len(c.CachePaths) == 0) {
			return zerr.With(zerr.Wrap(ErrPerFileRequiresCommand, "validate check"), "check", name.String())
		}

		for _, dep := range c.Dependencies {
			if dep == name {
				return zerr.With(zerr.Wrap(ErrSelfDependency, "validate check"), "check", name.String())
			}
			if _, ok := g.checks[dep]; !ok {
				return zerr.With(zerr.With(zerr.Wrap(ErrMissingDependency, "validate check"), "check", name.String()), "dependency", dep.String())
			}
		}
	}

	if err := g.detectCycle(); err != nil {
		return err
	}

	g.computeWaves()
	return nil
}

// detectCycle runs a DFS with a three-colour visited map (0 unvisited,
// 1 in-progress, 2 done) and reports the cycle closed by the first back
// edge it meets, starting at the node that edge returns to. Nodes are
// visited in insertion order, so the report is deterministic; it is not
// necessarily the shortest cycle in the graph.
func (g *Graph) detectCycle() error {
	visited := make(map[InternedString]int, len(g.checks))
	var path []InternedString

	var visit func(u InternedString) error
	visit = func(u InternedString) error {
		visited[u] = 1
		path = append(path, u)

		for _, dep := range g.checks[u].Dependencies {
			switch visited[dep] {
			case 1:
				return g.buildCycleError(path, dep)
			case 0:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		return nil
	}

	for _, name := range g.order {
		if visited[name] == 0 {
			if err := visit(name); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Graph) buildCycleError(path []InternedString, dep InternedString) error {
	startIdx := 0
	for i, node := range path {
		if node == dep {
			startIdx = i
			break
		}
	}
	cyclePath := ""
	for i := startIdx; i < len(path); i++ {
		cyclePath += path[i].String() + " -> "
	}
	cyclePath += dep.String()
	return zerr.With(zerr.Wrap(ErrCycleDetected, "validate graph"), "cycle", cyclePath)
}

// computeWaves partitions the graph into waves by iterated peeling (spec.md
// §4.2): wave 0 is every node with no dependencies, wave i+1 is every
// remaining node whose dependencies are all in waves <= i. Ordering within
// a wave is by name for reproducibility.
func (g *Graph) computeWaves() {
	done := make(map[InternedString]bool, len(g.checks))
	remaining := make([]InternedString, len(g.order))
	copy(remaining, g.order)

	var waves [][]InternedString
	for len(remaining) > 0 {
		var wave []InternedString
		var next []InternedString
		for _, name := range remaining {
			ready := true
			for _, dep := range g.checks[name].Dependencies {
				if !done[dep] {
					ready = false
					break
				}
			}
			if ready {
				wave = append(wave, name)
			} else {
				next = append(next, name)
			}
		}
		// Validate() guarantees acyclicity, so an empty wave here cannot
		// happen; guard anyway to avoid an infinite loop if called without
		// Validate.
		if len(wave) == 0 {
			break
		}
		sort.Slice(wave, func(i, j int) bool { return wave[i].String() < wave[j].String() })
		for _, name := range wave {
			done[name] = true
		}
		waves = append(waves, wave)
		remaining = next
	}
	g.waves = waves
}

// Waves returns the execution waves computed by the last successful
// Validate call.
func (g *Graph) Waves() [][]InternedString {
	out := make([][]InternedString, len(g.waves))
	copy(out, g.waves)
	return out
}

// Dependents returns the names of checks that directly depend on name.
func (g *Graph) Dependents(name InternedString) []InternedString {
	var out []InternedString
	for _, n := range g.order {
		for _, dep := range g.checks[n].Dependencies {
			if dep == name {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

// TransitiveClosure returns the set of check names reachable by following
// depends_on edges backward (i.e. name, its dependencies, and their
// dependencies) starting from the given targets. Used to select nodes for
// `run <targets>` (spec.md §4.7).
func (g *Graph) TransitiveClosure(targets []InternedString) (map[InternedString]bool, error) {
	seen := make(map[InternedString]bool)
	var visit func(n InternedString) error
	visit = func(n InternedString) error {
		if seen[n] {
			return nil
		}
		c, ok := g.checks[n]
		if !ok {
			return zerr.With(zerr.Wrap(ErrNoTargetsResolved, "resolve targets"), "target", n.String())
		}
		seen[n] = true
		for _, dep := range c.Dependencies {
			if err := visit(dep); err != nil {
				return err
			}
		}
		return nil
	}
	for _, t := range targets {
		if err := visit(t); err != nil {
			return nil, err
		}
	}
	return seen, nil
}
