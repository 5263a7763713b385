package bitpack

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetGetRoundTrip(t *testing.T) {
	b := New(17)
	for i := 0; i < b.Len(); i++ {
		b.Set(i, byte(i%2))
	}
	for i := 0; i < b.Len(); i++ {
		require.Equal(t, byte(i%2), b.Get(i), "bit %d", i)
	}
}

func TestFromBytesMasksTail(t *testing.T) {
	b := FromBytes([]byte{0xFF, 0xFF}, 12)
	require.Equal(t, byte(0xFF), b.Bytes()[0])
	require.Equal(t, byte(0xF0), b.Bytes()[1], "bits beyond Len() must be zeroed")
}

func TestCloneIsIndependent(t *testing.T) {
	a := New(8)
	a.Set(0, 1)
	b := a.Clone()
	b.Set(0, 0)
	require.Equal(t, byte(1), a.Get(0))
	require.Equal(t, byte(0), b.Get(0))
}

func TestSliceExtractsSubrange(t *testing.T) {
	b := FromBytes([]byte{0b10110100}, 8)
	sub := b.Slice(2, 6)
	require.Equal(t, 4, sub.Len())
	expect := []byte{1, 1, 0, 1}
	for i, e := range expect {
		require.Equal(t, e, sub.Get(i), "bit %d", i)
	}
}

func TestEqual(t *testing.T) {
	a := FromBytes([]byte{0xAB, 0xCD}, 16)
	b := FromBytes([]byte{0xAB, 0xCD}, 16)
	c := FromBytes([]byte{0xAB, 0xCE}, 16)
	require.True(t, Equal(a, b))
	require.False(t, Equal(a, c))
}

func TestFlip(t *testing.T) {
	b := New(4)
	b.Flip(0)
	require.Equal(t, byte(1), b.Get(0))
	b.Flip(0)
	require.Equal(t, byte(0), b.Get(0))
}
