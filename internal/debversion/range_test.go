package debversion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func atom(op Op, v string) Atom {
	return Atom{Op: op, Version: MustParse(v)}
}

func TestRangeParseIntersection(t *testing.T) {
	r, err := RangeParse([]Atom{atom(OpGE, "1.0"), atom(OpLT, "2.0")})
	require.NoError(t, err)

	assert.True(t, RangeContains(r, MustParse("1.0")))
	assert.True(t, RangeContains(r, MustParse("1.5")))
	assert.False(t, RangeContains(r, MustParse("2.0")))
	assert.False(t, RangeContains(r, MustParse("0.9")))
}

func TestRangeParseContradiction(t *testing.T) {
	_, err := RangeParse([]Atom{atom(OpGE, "2.0"), atom(OpLT, "1.0")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrContradictoryRange)
}

func TestRangeParseContradictoryEquals(t *testing.T) {
	_, err := RangeParse([]Atom{atom(OpEQ, "1.0"), atom(OpEQ, "2.0")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrContradictoryRange)
}

func TestRangeParseEqualsOutsideBound(t *testing.T) {
	_, err := RangeParse([]Atom{atom(OpGE, "2.0"), atom(OpEQ, "1.0")})
	require.Error(t, err)
}

func TestRangeParseEmptyIsUnbounded(t *testing.T) {
	r, err := RangeParse(nil)
	require.NoError(t, err)
	assert.True(t, RangeContains(r, MustParse("0.0.1")))
}

// TestRangeSoundness checks that range_contains of the intersection
// equals the AND of range_contains over each atom.
func TestRangeSoundness(t *testing.T) {
	atoms := []Atom{atom(OpGE, "1.0"), atom(OpLE, "3.0")}
	r, err := RangeParse(atoms)
	require.NoError(t, err)

	for _, v := range []string{"0.5", "1.0", "2.0", "3.0", "3.1"} {
		want := true
		parsed := MustParse(v)
		for _, a := range atoms {
			switch a.Op {
			case OpGE:
				want = want && !parsed.Less(a.Version)
			case OpLE:
				want = want && !parsed.Greater(a.Version)
			}
		}
		assert.Equal(t, want, RangeContains(r, parsed), "version %s", v)
	}
}
