package bch

import "github.com/3dfxuser/gr-dvbs2rx/bitpack"

// DecodeResult reports the outcome of a decode attempt. A failed
// decode is not reported as an error: an uncorrectable received word is
// an expected operating condition on a noisy channel, not a programming
// or configuration fault, so callers test Ok rather than unwrapping an
// error chain (see SPEC_FULL.md §7).
type DecodeResult struct {
	Corrected int
	Ok        bool
}

// decoder computes syndromes, runs Berlekamp-Massey to find the error
// locator polynomial, and uses Chien search to translate its roots into
// bit positions to flip.
type decoder struct {
	gf   *gfTable
	n, k int
	t    int
}

func newDecoder(gf *gfTable, n, k, t int) *decoder {
	return &decoder{gf: gf, n: n, k: k, t: t}
}

// syndromes evaluates the received word at alpha^1..alpha^(2t) via
// Horner's rule. Position p of rx carries the coefficient of x^(n-1-p),
// so Horner proceeds in increasing p order, exactly mirroring the degree
// ordering the encoder produces codewords in.
func (d *decoder) syndromes(rx bitpack.Bits) []uint32 {
	s := make([]uint32, 2*d.t+1) // 1-indexed; s[0] unused
	for i := 1; i <= 2*d.t; i++ {
		alphaI := d.gf.exp(i)
		var result uint32
		for p := 0; p < d.n; p++ {
			result = d.gf.mul(result, alphaI) ^ uint32(rx.Get(p))
		}
		s[i] = result
	}
	return s
}

func allZero(s []uint32) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != 0 {
			return false
		}
	}
	return true
}

// berlekampMassey finds the error locator polynomial's coefficients
// from the syndrome sequence, following the standard iterative
// construction (as in, e.g., Morelos-Zaragoza's bch3.c and equivalently
// stated in Lin & Costello): maintain a current connection polynomial
// and the last polynomial that produced a length change, correcting the
// discrepancy at each step and only growing the polynomial's degree
// when the discrepancy cannot be absorbed by the existing degree.
// Returns the locator coefficients c[0..L] with c[0]=1, and L.
func (d *decoder) berlekampMassey(s []uint32) ([]uint32, int) {
	twoT := 2 * d.t
	c := make([]uint32, twoT+2)
	b := make([]uint32, twoT+2)
	c[0] = 1
	b[0] = 1
	l := 0
	mShift := 1
	bCoeff := uint32(1)

	for n := 0; n < twoT; n++ {
		discrepancy := s[n+1]
		for i := 1; i <= l; i++ {
			discrepancy ^= d.gf.mul(c[i], s[n+1-i])
		}

		if discrepancy == 0 {
			mShift++
			continue
		}

		coef := d.gf.mul(discrepancy, d.gf.inv(bCoeff))

		if 2*l <= n {
			t := make([]uint32, len(c))
			copy(t, c)
			for i := 0; i+mShift < len(c); i++ {
				c[i+mShift] ^= d.gf.mul(coef, b[i])
			}
			l = n + 1 - l
			copy(b, t)
			bCoeff = discrepancy
			mShift = 1
		} else {
			for i := 0; i+mShift < len(c); i++ {
				c[i+mShift] ^= d.gf.mul(coef, b[i])
			}
			mShift++
		}
	}

	return c, l
}

// chienSearch evaluates the locator polynomial c (degree l) at
// alpha^(-j) for every codeword position j, returning the set of bit
// positions (in rx's array-index convention) whose corresponding root
// was found. A root at alpha^(-j) means position x^j is in error; since
// array position p carries x^(n-1-p), that is bit position n-1-j.
func (d *decoder) chienSearch(c []uint32, l int) []int {
	var positions []int
	for j := 0; j < d.n; j++ {
		var acc uint32
		for i := 0; i <= l; i++ {
			if c[i] == 0 {
				continue
			}
			acc ^= d.gf.mul(c[i], d.gf.exp(-i*j))
		}
		if acc == 0 {
			positions = append(positions, d.n-1-j)
		}
	}
	return positions
}

// Decode attempts to correct rx (an n-bit received word) and strip its
// parity, returning the recovered k-bit message. Ok is false whenever
// the locator degree exceeds t, the Chien search finds a root count
// different from that degree, or the corrected word still has nonzero
// syndromes. A received word that lies within t bits of a different
// codeword passes all three checks and is decoded to that codeword with
// Ok true.
func (d *decoder) Decode(rx bitpack.Bits) (bitpack.Bits, DecodeResult) {
	if rx.Len() != d.n {
		panic("bch: decoder given received word of wrong length")
	}

	s := d.syndromes(rx)
	if allZero(s) {
		return rx.Slice(0, d.k), DecodeResult{Corrected: 0, Ok: true}
	}

	c, l := d.berlekampMassey(s)
	if l > d.t {
		pkgLogger.Warn("decode failure: locator degree %d exceeds t=%d", l, d.t)
		return bitpack.Bits{}, DecodeResult{Ok: false}
	}

	positions := d.chienSearch(c, l)
	if len(positions) != l {
		pkgLogger.Warn("decode failure: chien search found %d roots, locator degree %d", len(positions), l)
		return bitpack.Bits{}, DecodeResult{Ok: false}
	}

	corrected := rx.Clone()
	for _, p := range positions {
		corrected.Flip(p)
	}

	if !allZero(d.syndromes(corrected)) {
		pkgLogger.Warn("decode failure: corrected word still has nonzero syndromes, miscorrection suspected")
		return bitpack.Bits{}, DecodeResult{Ok: false}
	}
	pkgLogger.Debug("corrected %d errors", len(positions))

	return corrected.Slice(0, d.k), DecodeResult{Corrected: len(positions), Ok: true}
}
