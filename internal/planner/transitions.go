// Package planner turns a resolved ResolverModel and the current
// InstalledSet into a validated, ordered ActionPlan. The dependency-walk
// shape (BFS over a visited set, building an edge graph before sorting
// it) is an ordering pass over an already-resolved model.
package planner

import (
	"sort"

	"avular-packages/internal/debversion"
	"avular-packages/internal/pool"
	"avular-packages/internal/types"
)

// computeTransitions diffs model against installed, producing one
// Transition per name that appears in either side.
func computeTransitions(model types.ResolverModel, installed types.InstalledSet) []types.Transition {
	names := map[string]bool{}
	for name := range model.Install {
		names[name] = true
	}
	for name := range installed.Versions {
		names[name] = true
	}

	var out []types.Transition
	for name := range names {
		var from, to *debversion.Version
		if v, ok := installed.Versions[name]; ok {
			v := v
			from = &v
		}
		if v, ok := model.Install[name]; ok {
			v := v
			to = &v
		}
		t := types.Transition{Name: name, From: from, To: to}
		if t.IsChange() {
			out = append(out, t)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// findUnit resolves a (name, version) pair to its PackageUnit via the
// pool's exact candidate list, returning false when the exact version is
// no longer present (e.g. a currently-installed version purged from the
// pool's source repositories). A (name, version) pair can be carried by
// units of more than one architecture; nativeArch picks among them,
// preferring an exact arch match, falling back to "all" (the two
// architectures the resolver's encoding admits), and finally to whatever
// is left so a plan is still produced for a foreign-arch installed unit.
func findUnit(p *pool.Pool, name string, version debversion.Version, nativeArch string) (*types.PackageUnit, bool) {
	var allMatch, anyMatch *types.PackageUnit
	for _, u := range p.Lookup(name) {
		if debversion.Compare(u.Version, version) != debversion.Equal {
			continue
		}
		if u.Architecture == nativeArch {
			return u, true
		}
		if u.Architecture == "all" && allMatch == nil {
			allMatch = u
		}
		if anyMatch == nil {
			anyMatch = u
		}
	}
	if allMatch != nil {
		return allMatch, true
	}
	if anyMatch != nil {
		return anyMatch, true
	}
	return nil, false
}

func isIgnored(name string, ignore map[string]bool) bool {
	return ignore[name]
}
