package resolver

import (
	"context"
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

func request(name string) types.BlueprintSet {
	return types.BlueprintSet{Requests: []types.BlueprintRequest{{Name: name}}}
}

// S1 trivial install
func TestS1TrivialInstall(t *testing.T) {
	p := pool.New()
	addUnit(t, p, "a", "1", dependsOn("b"))
	addUnit(t, p, "b", "1", nil)

	model, err := Resolve(context.Background(), p, request("a"), types.NewInstalledSet(), Flags{})
	require.NoError(t, err)

	assert.Equal(t, "1", model.Install["a"].String())
	assert.Equal(t, "1", model.Install["b"].String())
}

// S2 upgrade with conflict
func TestS2UpgradeWithConflict(t *testing.T) {
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
	addUnit(t, p, "c", "1", nil)

	installed := types.NewInstalledSet()
	installed.Versions["a"] = debversion.MustParse("1")
	installed.Versions["c"] = debversion.MustParse("0.5")

	model, err := Resolve(context.Background(), p, request("a"), installed, Flags{})
	require.NoError(t, err)

	assert.Equal(t, "2", model.Install["a"].String())
	assert.Equal(t, "2", model.Install["b"].String())
	assert.Equal(t, "1", model.Install["c"].String())
}

// S3 unsatisfiable
func TestS3Unsatisfiable(t *testing.T) {
	p := pool.New()
	addUnit(t, p, "a", "1", dependsOn("b"))
	addUnit(t, p, "b", "1", map[types.RelationKind][]types.Relation{
		types.RelationConflicts: {{Atoms: []types.RelationAtom{{Name: "a"}}}},
	})

	_, err := Resolve(context.Background(), p, request("a"), types.NewInstalledSet(), Flags{})
	require.Error(t, err)
	var unsolvable *types.Unsolvable
	require.ErrorAs(t, err, &unsolvable)
}

// S4 version range with latest-preferred
func TestS4VersionRangeLatestPreferred(t *testing.T) {
	p := pool.New()
	addUnit(t, p, "x", "1.0", nil)
	addUnit(t, p, "x", "1.5", nil)
	addUnit(t, p, "x", "2.0", nil)

	r, err := debversion.RangeParse([]debversion.Atom{
		{Op: debversion.OpGE, Version: debversion.MustParse("1.0")},
		{Op: debversion.OpLT, Version: debversion.MustParse("2.0")},
	})
	require.NoError(t, err)

	blueprint := types.BlueprintSet{Requests: []types.BlueprintRequest{{Name: "x", Range: &r}}}
	model, err := Resolve(context.Background(), p, blueprint, types.NewInstalledSet(), Flags{})
	require.NoError(t, err)
	assert.Equal(t, "1.5", model.Install["x"].String())
}

// S5 recommends honored
func TestS5RecommendsHonored(t *testing.T) {
	p := pool.New()
	addUnit(t, p, "e", "1", map[types.RelationKind][]types.Relation{
		types.RelationRecommends: {{Atoms: []types.RelationAtom{{Name: "f"}}}},
	})
	addUnit(t, p, "f", "1", nil)

	model, err := Resolve(context.Background(), p, request("e"), types.NewInstalledSet(), Flags{})
	require.NoError(t, err)
	assert.Contains(t, model.Install, "f")

	model2, err := Resolve(context.Background(), p, request("e"), types.NewInstalledSet(), Flags{NoRecommends: true})
	require.NoError(t, err)
	assert.NotContains(t, model2.Install, "f")
}

// S6 minimality: an orphaned package not required by anything must not
// appear in the model.
func TestS6Minimality(t *testing.T) {
	p := pool.New()
	addUnit(t, p, "a", "1", nil)
	addUnit(t, p, "g", "1", nil)

	model, err := Resolve(context.Background(), p, request("a"), types.NewInstalledSet(), Flags{})
	require.NoError(t, err)
	assert.NotContains(t, model.Install, "g")
}
