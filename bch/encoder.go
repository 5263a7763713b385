package bch

import (
	"github.com/klauspost/cpuid/v2"

	"github.com/3dfxuser/gr-dvbs2rx/bitpack"
)

// encoder holds everything needed to turn a K-bit message into a
// systematic N-bit BCH codeword: the tap vector derived from the
// generator polynomial, a precomputed byte table for the fast path, and
// the outer-loop unroll width chosen from the host's vector width.
type encoder struct {
	k, n, d  int
	regBytes int
	fb       []byte
	table    [256][]byte
	wordSize int
}

// wordSizeForHost picks how many bytes of the fast path to advance per
// unrolled iteration. DVB-S2 FECFRAMEs are processed in bulk on
// general-purpose CPUs, so the only thing worth adapting to the host is
// how wide a chunk the loop below works on between bounds checks;
// klauspost/cpuid/v2 already reports exactly the AVX2/AVX512 tier info
// the corpus's cpuid-aware code (e.g. the RRC filter path) keys off of.
func wordSizeForHost() int {
	if cpuid.CPU.X64Level() >= 3 {
		return 8
	}
	return 4
}

// newEncoder derives the tap vector from g's low-order coefficients.
// g has degree d = len(g)-1 and is monic (g[d] == 1); the register only
// ever needs the lower d coefficients because the leading term is the
// bit the register shifts out, not one it stores.
func newEncoder(k, n int, g []byte) *encoder {
	d := len(g) - 1
	regBytes := (d + 7) / 8
	fb := make([]byte, regBytes)
	for j := 0; j < d; j++ {
		if g[d-1-j] != 0 {
			fb[j/8] |= 1 << uint(7-j%8)
		}
	}
	return &encoder{
		k:        k,
		n:        n,
		d:        d,
		regBytes: regBytes,
		fb:       fb,
		table:    buildByteTable(fb, regBytes),
		wordSize: wordSizeForHost(),
	}
}

// Encode runs msg (exactly k bits) through the division register and
// appends the d-bit remainder as parity, producing an n-bit systematic
// codeword: message bits unchanged in the first k positions, parity in
// the last d. Message bits are consumed in bit-packed MSB-first order,
// matching bitpack.Bits' own convention, so the codeword's bit i is the
// coefficient of x^(n-1-i) exactly as derived in SPEC_FULL.md §4.2.
func (e *encoder) Encode(msg bitpack.Bits) bitpack.Bits {
	if msg.Len() != e.k {
		panic("bch: encoder given message of wrong length")
	}

	reg := make([]byte, e.regBytes)
	fullBytes := e.k / 8
	tailBits := e.k % 8

	msgBytes := msg.Bytes()
	i := 0
	for ; i+e.wordSize <= fullBytes; i += e.wordSize {
		for j := 0; j < e.wordSize; j++ {
			lfsrStepByte(reg, e.table, msgBytes[i+j])
		}
	}
	for ; i < fullBytes; i++ {
		lfsrStepByte(reg, e.table, msgBytes[i])
	}
	for b := 0; b < tailBits; b++ {
		lfsrStepBit(reg, e.fb, msg.Get(fullBytes*8+b))
	}

	out := bitpack.New(e.n)
	for i := 0; i < e.k; i++ {
		out.Set(i, msg.Get(i))
	}
	for i := 0; i < e.d; i++ {
		out.Set(e.k+i, regBit(reg, i))
	}
	return out
}

// encodeReference is the bit-at-a-time twin of Encode, used only by
// tests to certify the byte-table fast path produces identical output
// (spec.md §8 property 5). It shares lfsrStepBit with the fast path but
// never touches the table, so an equivalence failure localizes to
// buildByteTable rather than to the division recurrence itself.
func (e *encoder) encodeReference(msg bitpack.Bits) bitpack.Bits {
	if msg.Len() != e.k {
		panic("bch: encoder given message of wrong length")
	}
	reg := make([]byte, e.regBytes)
	for i := 0; i < e.k; i++ {
		lfsrStepBit(reg, e.fb, msg.Get(i))
	}
	out := bitpack.New(e.n)
	for i := 0; i < e.k; i++ {
		out.Set(i, msg.Get(i))
	}
	for i := 0; i < e.d; i++ {
		out.Set(e.k+i, regBit(reg, i))
	}
	return out
}
