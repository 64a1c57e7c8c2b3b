package debversion

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInvalid(t *testing.T) {
	_, err := Parse("")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVersionSyntax)
}

// TestTotalOrder checks the canonical Debian version ordering fixture.
func TestTotalOrder(t *testing.T) {
	raw := []string{"1.0~rc1", "1.0", "1.0a", "1.0-1", "1:0.9", "2.0~beta"}
	versions := make([]Version, len(raw))
	for i, s := range raw {
		v, err := Parse(s)
		require.NoError(t, err)
		versions[i] = v
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i].Less(versions[j]) })

	got := make([]string, len(versions))
	for i, v := range versions {
		got[i] = v.String()
	}
	assert.Equal(t, []string{"1.0~rc1", "1.0", "1.0a", "1.0-1", "2.0~beta", "1:0.9"}, got)
}

func TestCompareTildePreRelease(t *testing.T) {
	a := MustParse("1.0~rc1")
	b := MustParse("1.0")
	assert.True(t, a.Less(b))
}

func TestEpochDominates(t *testing.T) {
	a := MustParse("1:0.1")
	b := MustParse("99.0")
	assert.True(t, a.Greater(b))
}
