package metadata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avular-packages/internal/types"
)

const samplePackages = `Package: a
Version: 1.0-1
Architecture: amd64
Depends: b (>= 1.0), c
Pre-Depends: d
Recommends: e
Breaks: f (<< 2.0)
Provides: virtual-a
Essential: yes
Priority: required
Filename: pool/a_1.0-1_amd64.deb
Size: 1234
SHA256: abc123

Package: malformed
this line has no colon separating a key from a value

Package: b
Version: 1.0
Architecture: amd64
`

func TestParsePackagesSkipsMalformedStanzas(t *testing.T) {
	units, err := ParsePackages(strings.NewReader(samplePackages), types.Origin{Repo: "main"})
	require.NoError(t, err)
	require.Len(t, units, 2)

	a := units[0]
	assert.Equal(t, "a", a.Name)
	assert.Equal(t, "1.0-1", a.Version.String())
	assert.True(t, a.Essential)
	assert.Equal(t, types.PriorityRequired, a.Priority)
	assert.Equal(t, int64(1234), a.Size)
	assert.Equal(t, "pool/a_1.0-1_amd64.deb", a.RepoPath)
	assert.Nil(t, a.Files)

	require.Len(t, a.Relations[types.RelationDepends], 2)
	require.Len(t, a.Relations[types.RelationPreDepends], 1)
	assert.Equal(t, "d", a.Relations[types.RelationPreDepends][0].Atoms[0].Name)
	require.Len(t, a.Relations[types.RelationProvides], 1)
	assert.Equal(t, "virtual-a", a.Relations[types.RelationProvides][0].Atoms[0].Name)

	assert.Equal(t, "b", units[1].Name)
}

func TestParseRelationFieldAlternatives(t *testing.T) {
	rels, err := parseRelationField("a (>= 1.0) | b, c")
	require.NoError(t, err)
	require.Len(t, rels, 2)
	require.Len(t, rels[0].Atoms, 2)
	assert.Equal(t, "a", rels[0].Atoms[0].Name)
	assert.Equal(t, "b", rels[0].Atoms[1].Name)
	assert.Equal(t, "c", rels[1].Atoms[0].Name)
}

func TestParseRelationFieldMalformedConstraint(t *testing.T) {
	_, err := parseRelationField("a (nonsense)")
	assert.Error(t, err)
}
