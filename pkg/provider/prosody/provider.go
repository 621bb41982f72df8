// Package prosody defines the Provider interface for acoustic voice-quality
// measurement backends.
//
// A prosody provider measures pitch, loudness, and voice-quality statistics
// from a recording: F0 distribution, jitter, shimmer, harmonics-to-noise
// ratio, cepstral peak prominence, windowed stability, and utterance-final
// pitch movement. These feed the clarity, tone, confidence, and cadence
// scoring downstream.
//
// Implementations must be safe for concurrent use.
package prosody

import "context"

// Features is the acoustic measurement bundle for one recording. Fields a
// backend cannot measure are left at zero; consumers treat zero as "not
// measured", never as an error.
type Features struct {
	// DurationSec is the audio duration in seconds as measured by the
	// backend.
	DurationSec float64 `json:"duration_sec"`

	// F0 statistics over voiced frames, in Hz.
	F0MeanHz  float64 `json:"f0_mean_hz"`
	F0StdHz   float64 `json:"f0_std_hz"`
	F0RangeHz float64 `json:"f0_range_hz"`

	// Intensity statistics in dB.
	IntensityMeanDB float64 `json:"intensity_mean_db"`
	IntensityStdDB  float64 `json:"intensity_std_db"`

	// Jitter and Shimmer are local cycle-to-cycle variation ratios
	// (0.01 = 1%).
	Jitter  float64 `json:"jitter_local"`
	Shimmer float64 `json:"shimmer_local"`

	// HNRMeanDB is the mean harmonics-to-noise ratio; CPPSDB the smoothed
	// cepstral peak prominence. Both are voice-clarity measures in dB.
	HNRMeanDB float64 `json:"hnr_mean_db"`
	CPPSDB    float64 `json:"cpps_smooth_db"`

	// Windowed stability: mean per-window standard deviation of speaking
	// rate, F0, and intensity over 3-second windows.
	RateVarWin      float64 `json:"rate_var_win"`
	F0VarWin        float64 `json:"f0_var_win"`
	IntensityVarWin float64 `json:"intensity_var_win"`

	// FinalFallRatio and FinalRiseRatio are the fractions of
	// utterance-final pitch slopes that fall or rise.
	FinalFallRatio float64 `json:"final_fall_ratio"`
	FinalRiseRatio float64 `json:"final_rise_ratio"`
}

// Provider is the abstraction over any acoustic measurement backend.
type Provider interface {
	// Analyze measures the recording at wavPath and returns its acoustic
	// features. Returns an error if the file cannot be processed; partially
	// measured features with zeroed gaps are a valid success result.
	Analyze(ctx context.Context, wavPath string) (Features, error)
}
