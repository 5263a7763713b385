package bch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupFindsTableEntry(t *testing.T) {
	p, ok := Lookup(Short, 9720, 12)
	require.True(t, ok, "expected (Short, 9720, 12) to be in the table")
	require.Equal(t, 9720, p.N)
	require.Equal(t, 12, p.T)
	require.Equal(t, Short, p.Frame)
}

func TestLookupMissingEntry(t *testing.T) {
	_, ok := Lookup(Short, 1, 1)
	require.False(t, ok, "expected (Short, 1, 1) to be absent")
}

func TestFrameTypeString(t *testing.T) {
	require.Equal(t, "short", Short.String())
	require.Equal(t, "normal", Normal.String())
}
