package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPatchesEmpty(t *testing.T) {
	text := []byte("unchanged")
	out, err := ApplyPatches(text, nil)
	require.NoError(t, err)
	assert.Equal(t, "unchanged", string(out))
}

func TestApplyPatchesInsertion(t *testing.T) {
	out, err := ApplyPatches([]byte("<Root>"), []Patch{
		{Start: 5, End: 5, Replacement: " flag={true}"},
	})
	require.NoError(t, err)
	assert.Equal(t, "<Root flag={true}>", string(out))
}

func TestApplyPatchesReplacement(t *testing.T) {
	out, err := ApplyPatches([]byte("call(Target)"), []Patch{
		{Start: 0, End: 12, Replacement: "call(Target, props.flag)"},
	})
	require.NoError(t, err)
	assert.Equal(t, "call(Target, props.flag)", string(out))
}

func TestApplyPatchesMultipleAreOrderIndependent(t *testing.T) {
	text := []byte("aaa bbb ccc")
	patches := []Patch{
		{Start: 8, End: 11, Replacement: "C"},
		{Start: 0, End: 3, Replacement: "A"},
		{Start: 4, End: 7, Replacement: "B"},
	}

	out, err := ApplyPatches(text, patches)
	require.NoError(t, err)
	assert.Equal(t, "A B C", string(out))

	// Offsets always index the original text, whatever the slice order.
	reversed := []Patch{patches[2], patches[1], patches[0]}
	out2, err := ApplyPatches(text, reversed)
	require.NoError(t, err)
	assert.Equal(t, string(out), string(out2))
}

func TestApplyPatchesAdjacentRangesAllowed(t *testing.T) {
	// [0,2) and [2,4) share a boundary but do not overlap.
	out, err := ApplyPatches([]byte("abcd"), []Patch{
		{Start: 0, End: 2, Replacement: "X"},
		{Start: 2, End: 4, Replacement: "Y"},
	})
	require.NoError(t, err)
	assert.Equal(t, "XY", string(out))
}

func TestApplyPatchesRejectsOutOfRange(t *testing.T) {
	_, err := ApplyPatches([]byte("short"), []Patch{
		{Start: 3, End: 99, Replacement: "x"},
	})
	require.ErrorIs(t, err, ErrInvalidPatch)

	_, err = ApplyPatches([]byte("short"), []Patch{
		{Start: 4, End: 2, Replacement: "x"},
	})
	require.ErrorIs(t, err, ErrInvalidPatch)
}

func TestApplyPatchesRejectsOverlap(t *testing.T) {
	_, err := ApplyPatches([]byte("0123456789"), []Patch{
		{Start: 0, End: 5, Replacement: "a"},
		{Start: 4, End: 8, Replacement: "b"},
	})
	require.ErrorIs(t, err, ErrInvalidPatch)
}

func TestApplyPatchesOriginalUntouched(t *testing.T) {
	text := []byte("<Root>")
	_, err := ApplyPatches(text, []Patch{
		{Start: 5, End: 5, Replacement: " x={false}"},
	})
	require.NoError(t, err)
	assert.Equal(t, "<Root>", string(text))
}
