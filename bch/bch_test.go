package bch

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/3dfxuser/gr-dvbs2rx/bitpack"
)

func TestNewCodecRejectsNonPositiveT(t *testing.T) {
	_, err := NewCodec(Params{Frame: Short, N: 100, T: 0})
	require.ErrorIs(t, err, ErrInvalidParams)
}

func TestNewCodecRejectsTooSmallN(t *testing.T) {
	_, err := NewCodec(Params{Frame: Short, N: 10, T: 12})
	require.ErrorIs(t, err, ErrInvalidParams)
}

func TestNewCodecDerivesKFromGeneratorDegree(t *testing.T) {
	c, err := NewCodec(Params{Frame: Short, N: 9720, T: 12})
	require.NoError(t, err)
	const wantK = 9552 // spec.md's worked example
	require.Equal(t, wantK, c.K())
}

// TestWorkedExampleShort9720CorrectsTwelveErrors uses spec.md §8's
// (N=9720, K=9552, t=12) short FECFRAME parameters: one random message
// with t=12 bit flips at random positions must decode Ok, report 12
// corrections, and return the original message.
func TestWorkedExampleShort9720CorrectsTwelveErrors(t *testing.T) {
	c, err := NewCodec(Params{Frame: Short, N: 9720, T: 12})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(9720))
	msg := bitpack.New(c.K())
	for i := 0; i < c.K(); i++ {
		msg.Set(i, byte(rng.Intn(2)))
	}
	cw := c.Encode(msg)
	require.Equal(t, 9720, cw.Len())

	positions := rng.Perm(c.N())[:12]
	rx := cw.Clone()
	for _, p := range positions {
		rx.Flip(p)
	}

	got, res := c.Decode(rx)
	require.True(t, res.Ok)
	require.Equal(t, 12, res.Corrected)
	require.True(t, bitpack.Equal(got, msg), "decoded message differs from original after correcting 12 errors")
}

func TestCodecAccessors(t *testing.T) {
	c := smallCodec(t)
	require.Equal(t, 120, c.Params().N)
	require.Equal(t, 4, c.Params().T)
	require.Equal(t, 120, c.N())

	g := c.Generator()
	require.Equal(t, byte(1), g[0])
	require.Equal(t, byte(1), g[len(g)-1])

	g[0] = 0 // mutating the returned slice must not affect the codec
	require.Equal(t, byte(1), c.Generator()[0], "Generator() leaked internal storage")
}
