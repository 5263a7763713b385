// Package bch implements the binary BCH encoder and decoder used as the
// outer FEC layer of a DVB-S2 FECFRAME, plus the shortened-code, packed
// encoding, and failure-detecting decoding behavior that layer needs in
// practice. See SPEC_FULL.md §4 for the full derivation this package
// follows.
package bch

import "github.com/3dfxuser/gr-dvbs2rx/bitpack"

// Codec encodes and decodes one (FrameType, N, t) BCH configuration. It
// is safe for concurrent use: everything it holds is built once at
// construction and never mutated afterward, including the GF(2^m)
// tables shared (behind gfCache) with any other Codec on the same
// FrameType.
type Codec struct {
	params    Params
	k         int
	generator []byte
	enc       *encoder
	dec       *decoder
}

// NewCodec builds the GF(2^m) tables, generator polynomial, and the
// encoder/decoder state for params. K is derived from the generator's
// degree rather than looked up, so any (Frame, N, T) satisfying the
// field constraints works even if absent from dvbs2Table.
func NewCodec(params Params) (*Codec, error) {
	if params.T < 1 {
		return nil, errConstruction("t must be positive, got %d", params.T)
	}
	if params.N <= 0 {
		return nil, errConstruction("n must be positive, got %d", params.N)
	}

	pp, err := params.Frame.primPoly()
	if err != nil {
		return nil, err
	}
	return newCodecFromGF(getGFTable(pp), params)
}

// NewCodecGF builds a Codec directly from a field degree m and primitive
// polynomial, bypassing the FrameType/dvbs2Table lookup. This is how
// refseq builds its PLSC-sized BCH code over GF(64) (m=6), which the
// FECFRAME table has no entry for.
func NewCodecGF(m int, primitivePoly uint32, n, t int) (*Codec, error) {
	if t < 1 {
		return nil, errConstruction("t must be positive, got %d", t)
	}
	if n <= 0 {
		return nil, errConstruction("n must be positive, got %d", n)
	}
	gf := getGFTable(primPoly{m: m, poly: primitivePoly})
	return newCodecFromGF(gf, Params{Frame: Custom, N: n, T: t})
}

func newCodecFromGF(gf *gfTable, params Params) (*Codec, error) {
	if params.N > int(gf.mask) {
		return nil, errConstruction("n=%d exceeds field order %d", params.N, gf.mask)
	}

	g, err := buildGenerator(gf, params.T)
	if err != nil {
		return nil, err
	}
	d := len(g) - 1
	k := params.N - d
	if k <= 0 {
		return nil, errConstruction("n=%d too small for t=%d (parity degree %d)", params.N, params.T, d)
	}

	return &Codec{
		params:    params,
		k:         k,
		generator: g,
		enc:       newEncoder(k, params.N, g),
		dec:       newDecoder(gf, params.N, k, params.T),
	}, nil
}

// Params returns the configuration the codec was built from.
func (c *Codec) Params() Params { return c.params }

// K returns the message length in bits, derived from the generator
// polynomial's degree at construction time.
func (c *Codec) K() int { return c.k }

// N returns the codeword length in bits.
func (c *Codec) N() int { return c.params.N }

// Generator returns the generator polynomial's coefficients, g[i] being
// the coefficient of x^i, with g[0]=1 and g[deg(g)]=1.
func (c *Codec) Generator() []byte {
	out := make([]byte, len(c.generator))
	copy(out, c.generator)
	return out
}

// Encode appends parity to msg (which must be exactly K bits) and
// returns the resulting N-bit systematic codeword.
func (c *Codec) Encode(msg bitpack.Bits) bitpack.Bits {
	return c.enc.Encode(msg)
}

// Decode attempts to correct rx (which must be exactly N bits) and
// returns the recovered K-bit message along with the correction
// outcome.
func (c *Codec) Decode(rx bitpack.Bits) (bitpack.Bits, DecodeResult) {
	return c.dec.Decode(rx)
}
