package refseq

import (
	"sync"

	"github.com/3dfxuser/gr-dvbs2rx/bch"
	"github.com/3dfxuser/gr-dvbs2rx/bitpack"
)

// primPolyPLSC is the degree-6 primitive polynomial (1+x+x^6) used to
// build the small BCH code protecting the 7-bit PLSC dataword.
const primPolyPLSC uint32 = 1<<6 | 1<<1 | 1<<0

var (
	plscCodecOnce sync.Once
	plscCodec     *bch.Codec
)

func getPLSCCodec() *bch.Codec {
	plscCodecOnce.Do(func() {
		c, err := bch.NewCodecGF(6, primPolyPLSC, 63, 1)
		if err != nil {
			panic("refseq: failed to build PLSC codec: " + err.Error())
		}
		plscCodec = c
	})
	return plscCodec
}

// EncodePLSC BCH-encodes a 7-bit PLSC dataword (0..127) into the 64-bit
// codeword carried by the PLSC portion of the PLHEADER: a 63-bit
// algebraic codeword (dataword in the low 7 bits of the code's 57-bit
// message space, the rest zero) followed by one fixed trailing bit that
// pads out to the real PLHEADER's 64-symbol PLSC footprint.
func EncodePLSC(dataword uint8) uint64 {
	c := getPLSCCodec()
	msg := bitpack.New(c.K())
	for i := 0; i < 7; i++ {
		msg.Set(c.K()-1-i, (dataword>>uint(i))&1)
	}
	cw := c.Encode(msg)

	var codeword uint64
	for i := 0; i < cw.Len(); i++ {
		codeword = (codeword << 1) | uint64(cw.Get(i))
	}
	return (codeword << 1) // trailing pad bit is always 0
}

// DecodePLSC recovers the 7-bit PLSC dataword from a 64-bit received
// PLSC codeword, correcting up to the BCH(63,57) code's guaranteed
// single-bit error.
func DecodePLSC(codeword uint64) (uint8, bool) {
	c := getPLSCCodec()
	rx := bitpack.New(c.N())
	for i := 0; i < c.N(); i++ {
		bit := (codeword >> uint(64-1-i)) & 1
		rx.Set(i, byte(bit))
	}
	msg, res := c.Decode(rx)
	if !res.Ok {
		return 0, false
	}
	var dataword uint8
	for i := 0; i < 7; i++ {
		dataword |= msg.Get(c.K()-1-i) << uint(i)
	}
	return dataword, true
}

// PLSCSequence returns the 64-symbol, pi/2-BPSK-modulated, Gold-scrambled
// sequence a receiver expects for a given 7-bit PLSC dataword. It is the
// data-aided reference used by estimate_coarse(full=true) and
// estimate_plheader_phase to reconstruct the known 90-symbol PLHEADER
// (26-symbol SOF, from SOF, concatenated with this 64-symbol PLSC part).
func PLSCSequence(plsc uint8) [64]complex128 {
	codeword := EncodePLSC(plsc & 0x7F)
	bits := make([]byte, 64)
	for i := range bits {
		bit := byte((codeword >> uint(63-i)) & 1)
		bits[i] = bit ^ plscScramble[i%63]
	}
	var out [64]complex128
	copy(out[:], bpskModulate(bits))
	return out
}
