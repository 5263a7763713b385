package bch

import "fmt"

// FrameType selects the DVB-S2 FECFRAME size class, which in turn fixes
// the BCH mother code's field degree m per spec.md §3.
type FrameType int

const (
	// Short covers FECFRAMEs with N < 16200, using m = 14.
	Short FrameType = iota
	// Normal covers the 64800-bit FECFRAME class, using m = 16.
	Normal
	// Custom marks a Codec built by NewCodecGF from an explicit field
	// degree and primitive polynomial rather than the FECFRAME table
	// (e.g. the PLSC-sized GF(64) code refseq builds).
	Custom
)

func (f FrameType) String() string {
	switch f {
	case Short:
		return "short"
	case Normal:
		return "normal"
	case Custom:
		return "custom"
	default:
		return fmt.Sprintf("FrameType(%d)", int(f))
	}
}

func (f FrameType) primPoly() (primPoly, error) {
	switch f {
	case Short:
		return primPolyShort, nil
	case Normal:
		return primPolyNormal, nil
	default:
		return primPoly{}, errConstruction("unknown frame type %d", int(f))
	}
}

// Params identifies one entry of the DVB-S2 BCH parameter table: the
// FECFRAME class, codeword length N, and error-correction capability t.
// K is not part of Params because it is derived at construction time
// from the generator polynomial's degree (see SPEC_FULL.md §3) — the
// same (FrameType, t) pair always yields the same parity length N-K
// regardless of how much the mother code is shortened down to N.
type Params struct {
	Frame FrameType
	N     int
	T     int
}

// dvbs2Table enumerates the supported (FrameType, N, t) triples. It is
// not exhaustive of the full ETSI EN 302 307-1 BCH annex — only a subset
// of entries is listed, including the worked example's (Short, 9720, 12);
// K is derived rather than tabulated, per DESIGN.md.
var dvbs2Table = []Params{
	{Frame: Short, N: 3240, T: 12},
	{Frame: Short, N: 6480, T: 12},
	{Frame: Short, N: 9720, T: 12}, // spec.md §8's worked example (K=9552)
	{Frame: Short, N: 14400, T: 12},
	{Frame: Normal, N: 16200, T: 12},
	{Frame: Normal, N: 32400, T: 12},
	{Frame: Normal, N: 48600, T: 10},
	{Frame: Normal, N: 64800, T: 12},
}

// Lookup reports whether (frame, n, t) appears in the DVB-S2 parameter
// table, returning the canonical Params value if so.
func Lookup(frame FrameType, n, t int) (Params, bool) {
	for _, p := range dvbs2Table {
		if p.Frame == frame && p.N == n && p.T == t {
			return p, true
		}
	}
	return Params{}, false
}
