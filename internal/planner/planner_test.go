package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avular-packages/internal/debversion"
	"avular-packages/internal/pool"
	"avular-packages/internal/types"
)

func addUnit(t *testing.T, p *pool.Pool, name, version string, relations map[types.RelationKind][]types.Relation) {
	t.Helper()
	_, err := p.Add(types.PackageUnit{
		Name:         name,
		Version:      debversion.MustParse(version),
		Architecture: "amd64",
		Relations:    relations,
	})
	require.NoError(t, err)
}

func dependsOn(names ...string) map[types.RelationKind][]types.Relation {
	var atoms []types.RelationAtom
	for _, n := range names {
		atoms = append(atoms, types.RelationAtom{Name: n})
	}
	return map[types.RelationKind][]types.Relation{
		types.RelationDepends: {{Atoms: atoms}},
	}
}

func actionKinds(plan types.ActionPlan) []string {
	var out []string
	for _, a := range plan.Actions {
		out = append(out, string(a.Kind)+":"+a.Name)
	}
	return out
}

// S1 trivial install: a depends b, both freshly installed.
func TestS1PlanOrder(t *testing.T) {
	p := pool.New()
	addUnit(t, p, "a", "1", dependsOn("b"))
	addUnit(t, p, "b", "1", nil)

	model := types.ResolverModel{Install: map[string]debversion.Version{
		"a": debversion.MustParse("1"),
		"b": debversion.MustParse("1"),
	}}

	plan, err := Plan(p, model, types.NewInstalledSet(), Options{})
	require.NoError(t, err)

	kinds := actionKinds(plan)
	assert.Equal(t, []string{
		"fetch:a", "fetch:b",
		"unpack:b", "configure:b",
		"unpack:a", "configure:a",
	}, kinds)
}

// S2 upgrade with conflict: removal of c=0.5 must precede unpack of b=2.
func TestS2PlanRemovalBeforeConflictingInstall(t *testing.T) {
	p := pool.New()
	geTwo, err := debversion.RangeParse([]debversion.Atom{{Op: debversion.OpGE, Version: debversion.MustParse("2")}})
	require.NoError(t, err)
	addUnit(t, p, "a", "2", map[types.RelationKind][]types.Relation{
		types.RelationDepends: {{Atoms: []types.RelationAtom{{Name: "b", Range: &geTwo}}}},
	})
	ltOne, err := debversion.RangeParse([]debversion.Atom{{Op: debversion.OpLT, Version: debversion.MustParse("1")}})
	require.NoError(t, err)
	addUnit(t, p, "b", "2", map[types.RelationKind][]types.Relation{
		types.RelationBreaks: {{Atoms: []types.RelationAtom{{Name: "c", Range: &ltOne}}}},
	})
	addUnit(t, p, "a", "1", nil)
	addUnit(t, p, "c", "0.5", nil)

	installed := types.NewInstalledSet()
	installed.Versions["a"] = debversion.MustParse("1")
	installed.Versions["c"] = debversion.MustParse("0.5")

	model := types.ResolverModel{
		Install: map[string]debversion.Version{
			"a": debversion.MustParse("2"),
			"b": debversion.MustParse("2"),
		},
		Remove: []string{"c"},
	}

	plan, err := Plan(p, model, installed, Options{})
	require.NoError(t, err)

	removeIdx, unpackBIdx := -1, -1
	for i, a := range plan.Actions {
		if a.Kind == types.ActionRemove && a.Name == "c" {
			removeIdx = i
		}
		if a.Kind == types.ActionUnpack && a.Name == "b" {
			unpackBIdx = i
		}
	}
	require.NotEqual(t, -1, removeIdx)
	require.NotEqual(t, -1, unpackBIdx)
	assert.Less(t, removeIdx, unpackBIdx)
}

// Pre-Depends must be configured, not merely unpacked, before a
// dependent unit unpacks.
func TestPreDependsConfiguredBeforeUnpack(t *testing.T) {
	p := pool.New()
	addUnit(t, p, "a", "1", map[types.RelationKind][]types.Relation{
		types.RelationPreDepends: {{Atoms: []types.RelationAtom{{Name: "b"}}}},
	})
	addUnit(t, p, "b", "1", nil)

	model := types.ResolverModel{Install: map[string]debversion.Version{
		"a": debversion.MustParse("1"),
		"b": debversion.MustParse("1"),
	}}

	plan, err := Plan(p, model, types.NewInstalledSet(), Options{})
	require.NoError(t, err)

	var configuredB, unpackedA int
	for i, a := range plan.Actions {
		if a.Kind == types.ActionConfigure && a.Name == "b" {
			configuredB = i
		}
		if a.Kind == types.ActionUnpack && a.Name == "a" {
			unpackedA = i
		}
	}
	assert.Less(t, configuredB, unpackedA)
}

// Ignorerules forbid scheduling a removal for a matching name.
func TestIgnoreRulesForbidRemoval(t *testing.T) {
	p := pool.New()
	addUnit(t, p, "a", "1", nil)

	installed := types.NewInstalledSet()
	installed.Versions["a"] = debversion.MustParse("1")
	installed.Versions["kept"] = debversion.MustParse("1")

	model := types.ResolverModel{Install: map[string]debversion.Version{
		"a": debversion.MustParse("1"),
	}}

	plan, err := Plan(p, model, installed, Options{Ignore: []string{"kept"}})
	require.NoError(t, err)

	for _, a := range plan.Actions {
		assert.NotEqual(t, "kept", a.Name)
	}
}

// A no-op transition (installed version equals target version) emits no
// actions for that name.
func TestNoChangeTransitionOmitted(t *testing.T) {
	p := pool.New()
	addUnit(t, p, "a", "1", nil)

	installed := types.NewInstalledSet()
	installed.Versions["a"] = debversion.MustParse("1")

	model := types.ResolverModel{Install: map[string]debversion.Version{
		"a": debversion.MustParse("1"),
	}}

	plan, err := Plan(p, model, installed, Options{})
	require.NoError(t, err)
	assert.Empty(t, plan.Actions)
}

// An orphaned recommendation is left installed unless RemoveRecommends
// is set.
func TestOrphanedRecommendationKeptByDefault(t *testing.T) {
	p := pool.New()
	addUnit(t, p, "a", "1", nil)

	installed := types.NewInstalledSet()
	installed.Versions["a"] = debversion.MustParse("1")
	installed.Versions["libfoo-doc"] = debversion.MustParse("1")

	model := types.ResolverModel{Install: map[string]debversion.Version{
		"a": debversion.MustParse("1"),
	}}
	addedBy := map[string]string{"libfoo-doc": "a"}

	plan, err := Plan(p, model, installed, Options{AddedBy: addedBy})
	require.NoError(t, err)
	for _, act := range plan.Actions {
		assert.NotEqual(t, "libfoo-doc", act.Name)
	}

	plan, err = Plan(p, model, installed, Options{AddedBy: addedBy, RemoveRecommends: true})
	require.NoError(t, err)
	var removed bool
	for _, act := range plan.Actions {
		if act.Kind == types.ActionRemove && act.Name == "libfoo-doc" {
			removed = true
		}
	}
	assert.True(t, removed)
}

// Already-cached units get no Fetch action.
func TestCachedUnitsSkipFetch(t *testing.T) {
	p := pool.New()
	addUnit(t, p, "a", "1", nil)

	model := types.ResolverModel{Install: map[string]debversion.Version{
		"a": debversion.MustParse("1"),
	}}

	units := p.Lookup("a")
	require.Len(t, units, 1)
	cached := map[types.Key]bool{units[0].Key(): true}

	plan, err := Plan(p, model, types.NewInstalledSet(), Options{Cached: cached})
	require.NoError(t, err)

	for _, a := range plan.Actions {
		assert.NotEqual(t, types.ActionFetch, a.Kind)
	}
}
