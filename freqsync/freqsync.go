// Package freqsync implements the DVB-S2 physical-layer frequency
// synchronizer: coarse, multi-frame, data-aided carrier frequency offset
// estimation from the PLHEADER, and fine, pilot-aided estimation once the
// coarse loop has converged. See SPEC_FULL.md §4.5 for the full
// derivation.
package freqsync

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/3dfxuser/gr-dvbs2rx/refseq"
)

// fineFoffsetCorrRange is the normalized frequency offset magnitude
// below which the residual carrier offset is small enough for
// pilot-based fine estimation to be valid (1 / (2*(1440+90))).
const fineFoffsetCorrRange = 3.268e-4

const (
	sofLen     = 26
	plheaderLen = 90
	pilotLen   = 36
	payloadSlot = 1440
)

// Sync holds a frequency synchronizer's accumulated state. It owns all
// its scratch buffers; construct one per worker goroutine for
// concurrent use.
type Sync struct {
	period int
	iFrame int

	coarseFoffset   float64
	coarseCorrected bool

	fineFoffset   float64
	fineEstReady  bool

	anglePilot [22]float64
	populated  [22]bool

	frameThetaSOF  []float64
	frameThetaFull []float64

	wSOF  []float64
	wFull []float64

	ppPLHeader [plheaderLen]complex128
}

// New constructs a synchronizer that refreshes its coarse estimate every
// period frames.
func New(period int) *Sync {
	if period < 1 {
		panic("freqsync: period must be positive")
	}
	s := &Sync{
		period:         period,
		frameThetaSOF:  make([]float64, period),
		frameThetaFull: make([]float64, period),
		wSOF:           triangularWindow(sofLen - 1),
		wFull:          triangularWindow(plheaderLen - 1),
	}
	return s
}

// triangularWindow builds the unbiased Luise & Reggiannini weight
// window w_k = 3/(L*(L^2-1)) * (L^2 - (2k-L)^2) for k in [0, L).
func triangularWindow(l int) []float64 {
	w := make([]float64, l)
	fl := float64(l)
	norm := 3.0 / (fl * (fl*fl - 1))
	for k := range w {
		fk := float64(k)
		term := fl*fl - (2*fk-fl)*(2*fk-fl)
		w[k] = norm * term
	}
	return w
}

func wrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// lag1Angles removes modulation from in using ref, computes the lag-1
// autocorrelation sequence, and returns its principal-value angles
// (length len(ref)-1).
func lag1Angles(in, ref []complex128) []float64 {
	n := len(ref)
	derot := make([]complex128, n)
	for i := range derot {
		derot[i] = in[i] * cmplx.Conj(ref[i])
	}
	angles := make([]float64, n-1)
	for k := 0; k < n-1; k++ {
		corr := derot[k+1] * cmplx.Conj(derot[k])
		angles[k] = cmplx.Phase(corr)
	}
	return angles
}

// EstimateCoarse accumulates one frame of autocorrelation evidence
// toward the coarse frequency offset estimate. full selects whether the
// full 90-symbol PLHEADER (SOF + PLSC reconstructed from plsc) or only
// the 26-symbol SOF is used as the data-aided reference. It returns true
// exactly on the period-th accumulated frame, at which point
// CoarseFoffset is refreshed and CoarseCorrected may latch.
func (s *Sync) EstimateCoarse(in []complex128, full bool, plsc uint8) bool {
	var ref []complex128
	var weights []float64
	var slot []float64

	if full {
		ref = make([]complex128, 0, plheaderLen)
		ref = append(ref, refseq.SOF[:]...)
		plscSeq := refseq.PLSCSequence(plsc)
		ref = append(ref, plscSeq[:]...)
		weights = s.wFull
		slot = s.frameThetaFull
	} else {
		ref = refseq.SOF[:]
		weights = s.wSOF
		slot = s.frameThetaSOF
	}

	angles := lag1Angles(in, ref)
	// The window sums to 2, so normalize by its sum to get a weighted
	// mean per-symbol phase increment.
	theta := floats.Dot(weights, angles) / floats.Sum(weights)
	slot[s.iFrame%s.period] = theta

	s.iFrame++
	if s.iFrame%s.period != 0 {
		return false
	}

	thetaAvg := stat.Mean(slot, nil)
	s.coarseFoffset = thetaAvg / (2 * math.Pi)
	pkgLogger.Debug("coarse update: foffset=%.6g corrected=%v", s.coarseFoffset, s.coarseCorrected)
	if !s.coarseCorrected && math.Abs(s.coarseFoffset) < fineFoffsetCorrRange {
		s.coarseCorrected = true
		pkgLogger.Info("coarse correction achieved, foffset=%.6g", s.coarseFoffset)
	}
	return true
}

func phaseOf(in, ref []complex128) float64 {
	var sum complex128
	for i := range ref {
		sum += in[i] * cmplx.Conj(ref[i])
	}
	return cmplx.Phase(sum)
}

// EstimateSOFPhase returns the average phase of a received SOF segment
// relative to the known SOF reference, without updating any stored
// per-segment phase.
func (s *Sync) EstimateSOFPhase(in []complex128) float64 {
	return phaseOf(in, refseq.SOF[:])
}

// EstimatePLHeaderPhase returns the average phase of a received
// 90-symbol PLHEADER relative to the PLSC-dependent reference, storing
// the result for use by DerotatePLHeader and EstimateFinePilotMode.
func (s *Sync) EstimatePLHeaderPhase(in []complex128, plsc uint8) float64 {
	ref := make([]complex128, 0, plheaderLen)
	ref = append(ref, refseq.SOF[:]...)
	plscSeq := refseq.PLSCSequence(plsc)
	ref = append(ref, plscSeq[:]...)

	phase := phaseOf(in, ref)
	s.anglePilot[0] = phase
	s.populated[0] = true
	return phase
}

// EstimatePilotPhase returns the average phase of a received 36-symbol
// pilot block at index iBlk (0..20) within the current PLFRAME, storing
// the result into the per-segment phase buffer.
func (s *Sync) EstimatePilotPhase(in []complex128, iBlk int) float64 {
	if iBlk < 0 || iBlk+1 >= len(s.anglePilot) {
		panic("freqsync: pilot block index out of range")
	}
	phase := phaseOf(in, refseq.PilotRef[:])
	s.anglePilot[iBlk+1] = phase
	s.populated[iBlk+1] = true
	return phase
}

// StartFrame clears the per-segment phase buffer ahead of processing a
// new PLFRAME. Callers must invoke this before each frame's
// EstimatePLHeaderPhase/EstimatePilotPhase calls so EstimateFinePilotMode
// can tell which segments this frame actually populated.
func (s *Sync) StartFrame() {
	for i := range s.populated {
		s.populated[i] = false
	}
}

// EstimateFinePilotMode computes the fine, pilot-aided normalized
// frequency offset from the phases of the PLHEADER and nPilotBlks pilot
// blocks accumulated this frame via EstimatePLHeaderPhase and
// EstimatePilotPhase. It panics if CoarseCorrected is false or if any of
// the required segment phases were not populated this frame — per
// SPEC_FULL.md §7, these are fatal programmer errors, not input-dependent
// failures.
func (s *Sync) EstimateFinePilotMode(nPilotBlks int) {
	if !s.coarseCorrected {
		panic("freqsync: EstimateFinePilotMode called before coarse correction")
	}
	if nPilotBlks < 1 {
		panic("freqsync: EstimateFinePilotMode requires at least one pilot block")
	}
	for i := 0; i <= nPilotBlks; i++ {
		if !s.populated[i] {
			panic("freqsync: EstimateFinePilotMode called with unpopulated segment phase")
		}
	}

	freqEst := make([]float64, nPilotBlks)
	weight := make([]float64, nPilotBlks)
	for j := 0; j < nPilotBlks; j++ {
		span := float64(payloadSlot + pilotLen)
		if j == 0 {
			span = float64(payloadSlot + plheaderLen)
		}
		diff := wrapAngle(s.anglePilot[j+1] - s.anglePilot[j])
		freqEst[j] = diff / (2 * math.Pi * span)
		weight[j] = span
	}

	s.fineFoffset = stat.Mean(freqEst, weight)
	s.fineEstReady = true
	pkgLogger.Debug("fine update: foffset=%.6g over %d pilot blocks", s.fineFoffset, nPilotBlks)
}

// DerotatePLHeader removes the PLHEADER phase estimate (and, in open
// loop mode, the coarse frequency offset estimate's residual rotation)
// from in, storing the result for retrieval via PLHeader. Open loop is
// meant for use before an external derotator block has converged, e.g.
// while still acquiring frame lock.
func (s *Sync) DerotatePLHeader(in []complex128, openLoop bool) {
	phase := s.anglePilot[0]
	rot := cmplx.Exp(complex(0, -phase))
	for k := 0; k < plheaderLen; k++ {
		v := in[k] * rot
		if openLoop {
			v *= cmplx.Exp(complex(0, -2*math.Pi*s.coarseFoffset*float64(k)))
		}
		s.ppPLHeader[k] = v
	}
}

// PLHeader returns the most recently derotated PLHEADER.
func (s *Sync) PLHeader() [plheaderLen]complex128 { return s.ppPLHeader }

// GetPLHeaderPhase returns the most recent PLHEADER phase estimate.
func (s *Sync) GetPLHeaderPhase() float64 { return s.anglePilot[0] }

// GetPilotPhase returns the phase estimate for pilot block iBlk (0..20).
func (s *Sync) GetPilotPhase(iBlk int) float64 { return s.anglePilot[iBlk+1] }

// GetCoarseFoffset returns the most recent coarse normalized frequency
// offset estimate, in cycles/symbol.
func (s *Sync) GetCoarseFoffset() float64 { return s.coarseFoffset }

// GetFineFoffset returns the most recent fine normalized frequency
// offset estimate, in cycles/symbol.
func (s *Sync) GetFineFoffset() float64 { return s.fineFoffset }

// IsCoarseCorrected reports whether the residual frequency offset has
// fallen below the fine estimator's range. Once true, it never reverts.
func (s *Sync) IsCoarseCorrected() bool { return s.coarseCorrected }

// HasFineFoffsetEst reports whether a fine frequency offset estimate is
// available.
func (s *Sync) HasFineFoffsetEst() bool { return s.fineEstReady }
