// Package metrics combines acoustic, spectral, pause, and linguistic features
// into the composite delivery indices the rubric scores: clarity, tone
// variability, and pacing, plus the full set of pass-through measurements the
// report exposes.
//
// Every formula here is a fixed, documented contract — deterministic,
// side-effect free, and re-derivable solely from the declared inputs. Ratios
// are clamped to [0, 1] unless documented otherwise, and non-finite input
// values are zeroed before use so NaN and Inf can never propagate into a
// report.
package metrics

import (
	"math"

	"github.com/MrWong99/cadenza/pkg/provider/prosody"
	"github.com/MrWong99/cadenza/pkg/provider/spectral"
)

// AcousticFeatures and SpectralFeatures alias the provider measurement
// bundles so aggregation code reads in domain terms without re-declaring the
// wire types.
type (
	AcousticFeatures = prosody.Features
	SpectralFeatures = spectral.Features
)

// RawFeatureSet is the immutable input bundle for aggregation: the resolved
// recording duration, the transcript, and the two measurement bundles.
type RawFeatureSet struct {
	// DurationSec is the total recording duration, resolved by the caller
	// (acoustic duration preferred, transcription duration as fallback).
	DurationSec float64

	// Transcript is the raw transcript text.
	Transcript string

	Acoustic AcousticFeatures
	Spectral SpectralFeatures
}

// Sanitized returns a copy of r with every non-finite value replaced by
// zero. Aggregate calls this internally; it is exported so provider adapters
// can pre-clean partial results.
func (r RawFeatureSet) Sanitized() RawFeatureSet {
	out := r
	out.DurationSec = finiteOrZero(r.DurationSec)

	a := &out.Acoustic
	a.DurationSec = finiteOrZero(a.DurationSec)
	a.F0MeanHz = finiteOrZero(a.F0MeanHz)
	a.F0StdHz = finiteOrZero(a.F0StdHz)
	a.F0RangeHz = finiteOrZero(a.F0RangeHz)
	a.IntensityMeanDB = finiteOrZero(a.IntensityMeanDB)
	a.IntensityStdDB = finiteOrZero(a.IntensityStdDB)
	a.Jitter = finiteOrZero(a.Jitter)
	a.Shimmer = finiteOrZero(a.Shimmer)
	a.HNRMeanDB = finiteOrZero(a.HNRMeanDB)
	a.CPPSDB = finiteOrZero(a.CPPSDB)
	a.RateVarWin = finiteOrZero(a.RateVarWin)
	a.F0VarWin = finiteOrZero(a.F0VarWin)
	a.IntensityVarWin = finiteOrZero(a.IntensityVarWin)
	a.FinalFallRatio = finiteOrZero(a.FinalFallRatio)
	a.FinalRiseRatio = finiteOrZero(a.FinalRiseRatio)

	s := &out.Spectral
	s.RMSMean = finiteOrZero(s.RMSMean)
	s.RMSStd = finiteOrZero(s.RMSStd)
	s.TempoBPM = finiteOrZero(s.TempoBPM)
	s.SpectralCentroidMean = finiteOrZero(s.SpectralCentroidMean)
	s.SpectralCentroidStd = finiteOrZero(s.SpectralCentroidStd)

	return out
}

// finiteOrZero zeroes NaN and ±Inf.
func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
