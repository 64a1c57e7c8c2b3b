package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avular-packages/internal/debversion"
	"avular-packages/internal/types"
)

func unit(name, version string) types.PackageUnit {
	return types.PackageUnit{
		Name:         name,
		Version:      debversion.MustParse(version),
		Architecture: "amd64",
	}
}

func TestAddRejectsDuplicateKey(t *testing.T) {
	p := New()
	_, err := p.Add(unit("a", "1.0"))
	require.NoError(t, err)
	_, err = p.Add(unit("a", "1.0"))
	require.Error(t, err)
}

func TestLookupOrdersDescending(t *testing.T) {
	p := New()
	_, _ = p.Add(unit("a", "1.0"))
	_, _ = p.Add(unit("a", "2.0"))
	_, _ = p.Add(unit("a", "1.5"))

	got := p.Lookup("a")
	require.Len(t, got, 3)
	assert.Equal(t, "2.0", got[0].Version.String())
	assert.Equal(t, "1.5", got[1].Version.String())
	assert.Equal(t, "1.0", got[2].Version.String())
}

func TestResolveAtomUnknownNameIsEmpty(t *testing.T) {
	p := New()
	got := p.ResolveAtom(types.RelationAtom{Name: "ghost"})
	assert.Empty(t, got)
}

func TestResolveAtomRespectsRange(t *testing.T) {
	p := New()
	_, _ = p.Add(unit("a", "1.0"))
	_, _ = p.Add(unit("a", "2.0"))

	r, err := debversion.RangeParse([]debversion.Atom{{Op: debversion.OpGE, Version: debversion.MustParse("1.5")}})
	require.NoError(t, err)

	got := p.ResolveAtom(types.RelationAtom{Name: "a", Range: &r})
	require.Len(t, got, 1)
	assert.Equal(t, "2.0", got[0].Version.String())
}

func TestResolveAtomIncludesProviders(t *testing.T) {
	p := New()
	provider := unit("libfoo-impl", "1.0")
	provider.Relations = map[types.RelationKind][]types.Relation{
		types.RelationProvides: {{Atoms: []types.RelationAtom{{Name: "libfoo"}}}},
	}
	_, _ = p.Add(provider)

	got := p.ResolveAtom(types.RelationAtom{Name: "libfoo"})
	require.Len(t, got, 1)
	assert.Equal(t, "libfoo-impl", got[0].Name)
}
