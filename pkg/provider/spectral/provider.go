// Package spectral defines the Provider interface for signal-level energy and
// rhythm measurement backends.
//
// A spectral provider measures frame-level RMS energy, beat tempo, and
// spectral centroid statistics from a recording. These complement the
// pitch-centric prosody features with loudness texture and musical pulse,
// which feed the cadence scoring downstream.
//
// Implementations must be safe for concurrent use.
package spectral

import "context"

// Features is the spectral measurement bundle for one recording. Fields a
// backend cannot measure are left at zero.
type Features struct {
	// RMS energy statistics over analysis frames, in linear amplitude.
	RMSMean float64 `json:"rms_mean"`
	RMSStd  float64 `json:"rms_std"`

	// TempoBPM is the estimated beat tempo in beats per minute.
	TempoBPM float64 `json:"tempo_bpm"`

	// Spectral centroid statistics in Hz; a brightness proxy.
	SpectralCentroidMean float64 `json:"spectral_centroid_mean"`
	SpectralCentroidStd  float64 `json:"spectral_centroid_std"`
}

// Provider is the abstraction over any spectral measurement backend.
type Provider interface {
	// Extract measures the recording at wavPath and returns its spectral
	// features. Returns an error if the file cannot be processed.
	Extract(ctx context.Context, wavPath string) (Features, error)
}
