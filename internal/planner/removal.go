package planner

import (
	"sort"

	"avular-packages/internal/pool"
	"avular-packages/internal/types"
)

// removalOrder returns removeNames ordered so that a unit is removed
// only after everything that (still, among the removal set) depends on
// it — the reverse of topoOrder over the currently-installed DAG,
// restricted to the removal set. Names whose
// installed version is no longer present in the pool are treated as
// having no edges: they are still removed, just without ordering
// constraints relative to other removals.
func removalOrder(p *pool.Pool, installed types.InstalledSet, removeNames map[string]bool, nativeArch string) []string {
	target := map[string]*types.PackageUnit{}
	for name := range removeNames {
		v, ok := installed.Versions[name]
		if !ok {
			continue
		}
		if u, ok := findUnit(p, name, v, nativeArch); ok {
			target[name] = u
		}
	}

	order := topoOrder(target)
	reversed := make([]string, 0, len(removeNames))
	seen := map[string]bool{}
	for i := len(order) - 1; i >= 0; i-- {
		reversed = append(reversed, order[i])
		seen[order[i]] = true
	}
	// Names with no pool entry (and therefore no edges) are appended in
	// their natural sorted order, after the ones that were placed by the
	// dependency walk.
	var leftover []string
	for name := range removeNames {
		if !seen[name] {
			leftover = append(leftover, name)
		}
	}
	if len(leftover) > 0 {
		sort.Strings(leftover)
		reversed = append(reversed, leftover...)
	}
	return reversed
}
