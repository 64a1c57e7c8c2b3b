package blueprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avular-packages/internal/debversion"
	"avular-packages/internal/types"
)

func geRange(v string) *debversion.VersionRange {
	r, err := debversion.RangeParse([]debversion.Atom{{Op: debversion.OpGE, Version: debversion.MustParse(v)}})
	if err != nil {
		panic(err)
	}
	return &r
}

func TestMergeDisjointNames(t *testing.T) {
	set, err := Merge(
		[]types.BlueprintRequest{{Name: "a", Source: "user"}},
		[]types.BlueprintRequest{{Name: "b", Source: "vendor"}},
	)
	require.NoError(t, err)
	assert.Len(t, set.Requests, 2)
}

func TestMergeContradictoryRangeIsHardError(t *testing.T) {
	_, err := Merge(
		[]types.BlueprintRequest{{Name: "a", Source: "user", Range: geRange("2.0")}},
		[]types.BlueprintRequest{{Name: "a", Source: "vendor", Range: geRange("1.0")}},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, debversion.ErrContradictoryRange)
}

func TestMergeIdenticalRangeOK(t *testing.T) {
	set, err := Merge(
		[]types.BlueprintRequest{{Name: "a", Source: "user", Range: geRange("1.0")}},
		[]types.BlueprintRequest{{Name: "a", Source: "vendor", Range: geRange("1.0")}},
	)
	require.NoError(t, err)
	require.Len(t, set.Requests, 1)
}
