package bch

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/3dfxuser/gr-dvbs2rx/bitpack"
)

func smallCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec(Params{Frame: Short, N: 120, T: 4})
	require.NoError(t, err)
	return c
}

func TestEncodeIsSystematic(t *testing.T) {
	c := smallCodec(t)
	msg := bitpack.New(c.K())
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < c.K(); i++ {
		msg.Set(i, byte(rng.Intn(2)))
	}
	cw := c.Encode(msg)
	require.Equal(t, c.N(), cw.Len())
	for i := 0; i < c.K(); i++ {
		require.Equal(t, msg.Get(i), cw.Get(i), "codeword bit %d", i)
	}
}

func TestEncodeIsCodewordUnderGenerator(t *testing.T) {
	c := smallCodec(t)
	msg := bitpack.New(c.K())
	msg.Set(0, 1)
	msg.Set(3, 1)
	cw := c.Encode(msg)

	gf := getGFTable(primPolyShort)
	for i := 1; i <= 2*c.params.T-1; i += 2 {
		alphaI := gf.exp(i)
		var acc uint32
		pow := uint32(1)
		for p := c.N() - 1; p >= 0; p-- {
			acc ^= gf.mul(uint32(cw.Get(p)), pow)
			pow = gf.mul(pow, alphaI)
		}
		require.Equal(t, uint32(0), acc, "codeword(alpha^%d)", i)
	}
}

func TestEncodeFastPathMatchesReference(t *testing.T) {
	c := smallCodec(t)
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 2000; trial++ {
		msg := bitpack.New(c.K())
		for i := 0; i < c.K(); i++ {
			msg.Set(i, byte(rng.Intn(2)))
		}
		fast := c.enc.Encode(msg)
		ref := c.enc.encodeReference(msg)
		require.True(t, bitpack.Equal(fast, ref), "trial %d: fast-path and reference encodings differ for message %v", trial, msg.Bytes())
	}
}

func TestEncodeFastPathMatchesReferenceNonByteAlignedK(t *testing.T) {
	c, err := NewCodec(Params{Frame: Short, N: 128, T: 5})
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 500; trial++ {
		msg := bitpack.New(c.K())
		for i := 0; i < c.K(); i++ {
			msg.Set(i, byte(rng.Intn(2)))
		}
		fast := c.enc.Encode(msg)
		ref := c.enc.encodeReference(msg)
		require.True(t, bitpack.Equal(fast, ref), "trial %d: fast-path and reference encodings differ", trial)
	}
}

func TestEncodePanicsOnWrongLength(t *testing.T) {
	c := smallCodec(t)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for wrong-length message")
		}
	}()
	c.Encode(bitpack.New(c.K() + 1))
}
