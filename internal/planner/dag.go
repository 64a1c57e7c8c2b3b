package planner

import (
	"sort"

	"avular-packages/internal/types"
)

// edgeKind distinguishes a Pre-Depends edge (target must be configured
// before source unpacks) from a Depends edge (target need only be
// unpacked first), so cycle breaking can prefer to violate the weaker
// constraint.
type edgeKind int

const (
	edgeDepends edgeKind = iota
	edgePreDepends
)

type edge struct {
	from, to string
	kind     edgeKind
}

// buildEdges restricts Depends/Pre-Depends relations to units present in
// target (the install set), skipping a relation entirely when none of
// its alternatives resolve inside target — that case was already
// validated by the resolver, so it is not re-checked here.
func buildEdges(target map[string]*types.PackageUnit) []edge {
	var edges []edge
	names := sortedKeys(target)
	for _, name := range names {
		unit := target[name]
		edges = append(edges, relationEdges(name, unit, types.RelationDepends, edgeDepends, target)...)
		edges = append(edges, relationEdges(name, unit, types.RelationPreDepends, edgePreDepends, target)...)
	}
	return edges
}

func relationEdges(name string, unit *types.PackageUnit, kind types.RelationKind, ek edgeKind, target map[string]*types.PackageUnit) []edge {
	var out []edge
	for _, rel := range unit.Relations[kind] {
		for _, atom := range rel.Atoms {
			if _, ok := target[atom.Name]; ok {
				out = append(out, edge{from: name, to: atom.Name, kind: ek})
			}
		}
	}
	return out
}

// topoOrder returns a deterministic topological order over target's
// names such that, for every edge a->b (a depends on b), b precedes a.
// Cycles are broken by dropping the weakest (Depends, not Pre-Depends)
// edge available in the remaining subgraph, minimizing the number of
// half-configured states the break introduces; a
// cycle formed entirely of Pre-Depends edges breaks on its
// lexicographically first remaining edge instead, since no weaker edge
// exists to sacrifice.
func topoOrder(target map[string]*types.PackageUnit) []string {
	names := sortedKeys(target)
	edges := buildEdges(target)

	inDegree := map[string]int{}
	dependents := map[string][]edge // to -> edges whose "from" depends on "to"
	for _, n := range names {
		inDegree[n] = 0
	}
	for _, e := range edges {
		inDegree[e.from]++
		dependents[e.to] = append(dependents[e.to], e)
	}

	var order []string
	remaining := map[string]bool{}
	for _, n := range names {
		remaining[n] = true
	}

	for len(remaining) > 0 {
		ready := readyNodes(remaining, inDegree)
		if len(ready) == 0 {
			edges = breakOneCycleEdge(edges, remaining)
			inDegree = recomputeInDegree(names, edges, remaining)
			continue
		}
		sort.Strings(ready)
		pick := ready[0]
		order = append(order, pick)
		delete(remaining, pick)
		for _, e := range dependents[pick] {
			if remaining[e.from] {
				inDegree[e.from]--
			}
		}
	}

	return order
}

func readyNodes(remaining map[string]bool, inDegree map[string]int) []string {
	var ready []string
	for n := range remaining {
		if inDegree[n] == 0 {
			ready = append(ready, n)
		}
	}
	return ready
}

// breakOneCycleEdge removes the first Depends edge (ordered
// deterministically) whose endpoints are both still unresolved,
// preferring it over a Pre-Depends edge so the broken constraint is the
// weaker "unpack before" one rather than "configure before".
func breakOneCycleEdge(edges []edge, remaining map[string]bool) []edge {
	candidates := make([]edge, 0, len(edges))
	for _, e := range edges {
		if remaining[e.from] && remaining[e.to] {
			candidates = append(candidates, e)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].kind != candidates[j].kind {
			return candidates[i].kind == edgeDepends // weak edges first
		}
		if candidates[i].from != candidates[j].from {
			return candidates[i].from < candidates[j].from
		}
		return candidates[i].to < candidates[j].to
	})
	if len(candidates) == 0 {
		return edges
	}
	victim := candidates[0]

	out := make([]edge, 0, len(edges))
	dropped := false
	for _, e := range edges {
		if !dropped && e == victim {
			dropped = true
			continue
		}
		out = append(out, e)
	}
	return out
}

func recomputeInDegree(names []string, edges []edge, remaining map[string]bool) map[string]int {
	inDegree := map[string]int{}
	for _, n := range names {
		if remaining[n] {
			inDegree[n] = 0
		}
	}
	for _, e := range edges {
		if remaining[e.from] && remaining[e.to] {
			inDegree[e.from]++
		}
	}
	return inDegree
}

func sortedKeys(m map[string]*types.PackageUnit) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
