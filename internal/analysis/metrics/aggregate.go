package metrics

import (
	"github.com/MrWong99/cadenza/internal/analysis/linguistic"
	"github.com/MrWong99/cadenza/internal/analysis/pause"
)

// Derived is the computed metric mapping for one analysis. All values are
// finite; ratios are clamped to [0, 1] unless documented otherwise (wpm and
// the Hz/dB pass-throughs are unbounded). Field names are a stable JSON
// contract — dashboards and exporters key off them directly.
type Derived struct {
	DurationSec float64 `json:"duration_sec"`
	WordCount   int     `json:"word_count"`

	// WPM is words per minute of total duration (not speech time).
	WPM float64 `json:"wpm"`

	FillerCount int     `json:"filler_count"`
	FillerRatio float64 `json:"filler_ratio"`

	// ClarityIndex blends voice quality, intelligibility, and articulation
	// into [0, 1]; higher is better.
	ClarityIndex float64 `json:"clarity_index"`

	// ToneVariability blends pitch, intensity, and contour variation into
	// [0, 1]; higher means livelier delivery.
	ToneVariability float64 `json:"tone_variability"`

	// PacingScore blends the WPM band score with pause quality into [0, 1].
	PacingScore float64 `json:"pacing_score"`

	PauseRatio     float64 `json:"pause_ratio"`
	GoodPauseRatio float64 `json:"good_pause_ratio"`
	BadPauseRatio  float64 `json:"bad_pause_ratio"`

	ArticulationRate float64 `json:"articulation_rate"`
	SyllableCount    int     `json:"syllable_count"`
	SpeechTimeSec    float64 `json:"speech_time_sec"`
	TargetRangeMet   bool    `json:"target_range_met"`

	RepairCount int     `json:"repair_count"`
	RepairRate  float64 `json:"repair_rate"`

	CoherenceScore   float64 `json:"coherence_score"`
	SentenceCount    int     `json:"sentence_count"`
	CoherenceDetails string  `json:"coherence_details"`

	// Acoustic and spectral pass-throughs, sanitised.
	PitchStdHz          float64 `json:"pitch_std_hz"`
	PitchRangeHz        float64 `json:"pitch_range_hz"`
	IntensityStdDB      float64 `json:"intensity_std_db"`
	HNRMeanDB           float64 `json:"hnr_mean_db"`
	CPPSDB              float64 `json:"cpps_db"`
	Jitter              float64 `json:"jitter"`
	Shimmer             float64 `json:"shimmer"`
	F0VarWin            float64 `json:"f0_var_win"`
	IntensityVarWin     float64 `json:"intensity_var_win"`
	RateVarWin          float64 `json:"rate_var_win"`
	FinalFallRatio      float64 `json:"final_fall_ratio"`
	FinalRiseRatio      float64 `json:"final_rise_ratio"`
	RMSMean             float64 `json:"rms_mean"`
	TempoBPM            float64 `json:"tempo_bpm"`
	SpectralCentroidStd float64 `json:"spectral_centroid_std"`
}

// Aggregate combines the sanitised raw features, the pause summary, and the
// linguistic features into the derived metric set. It is a pure function:
// identical inputs always produce bit-identical outputs.
func Aggregate(raw RawFeatureSet, pauses pause.Summary, ling linguistic.Features) Derived {
	raw = raw.Sanitized()
	a := raw.Acoustic

	d := Derived{
		DurationSec: raw.DurationSec,
		WordCount:   ling.WordCount,

		FillerCount: ling.FillerCount,
		FillerRatio: ling.FillerRatio,

		PauseRatio:     pauses.PauseRatio,
		GoodPauseRatio: pauses.GoodPauseRatio,
		BadPauseRatio:  pauses.BadPauseRatio,

		ArticulationRate: ling.ArticulationRate,
		SyllableCount:    ling.SyllableCount,
		SpeechTimeSec:    ling.SpeechTimeSec,
		TargetRangeMet:   ling.TargetRangeMet,

		RepairCount: ling.RepairCount,
		RepairRate:  ling.RepairRate,

		CoherenceScore:   ling.CoherenceScore,
		SentenceCount:    ling.SentenceCount,
		CoherenceDetails: ling.CoherenceDetails,

		PitchStdHz:          a.F0StdHz,
		PitchRangeHz:        a.F0RangeHz,
		IntensityStdDB:      a.IntensityStdDB,
		HNRMeanDB:           a.HNRMeanDB,
		CPPSDB:              a.CPPSDB,
		Jitter:              a.Jitter,
		Shimmer:             a.Shimmer,
		F0VarWin:            a.F0VarWin,
		IntensityVarWin:     a.IntensityVarWin,
		RateVarWin:          a.RateVarWin,
		FinalFallRatio:      a.FinalFallRatio,
		FinalRiseRatio:      a.FinalRiseRatio,
		RMSMean:             raw.Spectral.RMSMean,
		TempoBPM:            raw.Spectral.TempoBPM,
		SpectralCentroidStd: raw.Spectral.SpectralCentroidStd,
	}

	if raw.DurationSec > 0 {
		d.WPM = float64(ling.WordCount) / (raw.DurationSec / 60.0)
	}

	d.ClarityIndex = clarityIndex(a, ling.ArticulationRate)
	d.ToneVariability = toneVariability(a)
	d.PacingScore = pacingScore(d.WPM, pauses.GoodPauseRatio, pauses.BadPauseRatio)

	return d
}

// ── clarity ──────────────────────────────────────────────────────────────────

// clarityIndex is 0.4·voice quality + 0.4·intelligibility + 0.2·articulation
// score, clamped to [0, 1].
func clarityIndex(a AcousticFeatures, articulationRate float64) float64 {
	vq := voiceQuality(a)
	intel := intelligibility(articulationRate)
	artic := clamp01((articulationRate - 2.0) / 3.0)
	return clamp01(0.4*vq + 0.4*intel + 0.2*artic)
}

// voiceQuality rewards harmonicity (HNR over 10–25 dB) and cepstral
// prominence (CPPs over 5–15 dB) and subtracts penalties that grow with
// jitter and shimmer. Jitter saturates its penalty at 3% and shimmer at 10%,
// roughly where perceivable roughness plateaus.
func voiceQuality(a AcousticFeatures) float64 {
	score := 0.35*norm(a.HNRMeanDB, 10, 25) +
		0.35*norm(a.CPPSDB, 5, 15) -
		0.15*clamp01(a.Jitter/0.03) -
		0.15*clamp01(a.Shimmer/0.10)
	return clamp01(score)
}

// intelligibility is 1.0 inside the comfortable 3.5–5.5 syl/s articulation
// band, decays proportionally below it, and loses half a point per extra
// syl/s above it.
func intelligibility(rate float64) float64 {
	switch {
	case rate >= 3.5 && rate <= 5.5:
		return 1.0
	case rate < 3.5:
		if rate <= 0 {
			return 0
		}
		return rate / 3.5
	default:
		return clamp01(1.0 - (rate-5.5)/2.0)
	}
}

// ── tone ─────────────────────────────────────────────────────────────────────

// toneVariability is 0.6·pitch + 0.25·intensity + 0.15·contour, each
// component in [0, 1].
func toneVariability(a AcousticFeatures) float64 {
	return clamp01(0.6*pitchScore(a.F0StdHz, a.F0RangeHz) +
		0.25*clamp01(a.IntensityStdDB/8.0) +
		0.15*(0.5*clamp01(a.FinalFallRatio)+0.5*clamp01(a.FinalRiseRatio)))
}

// pitchScore averages the normalised F0 standard deviation (50 Hz scale) and
// F0 range (200 Hz scale), halves the result below 0.2 to penalise monotone
// delivery, and compresses everything above 0.8 so extreme variation cannot
// dominate.
func pitchScore(f0Std, f0Range float64) float64 {
	s := (clamp01(f0Std/50.0) + clamp01(f0Range/200.0)) / 2.0
	if s < 0.2 {
		return s / 2.0
	}
	if s > 0.8 {
		return 0.8 + (s-0.8)*0.2
	}
	return s
}

// ── pacing ───────────────────────────────────────────────────────────────────

// pacingScore is 0.6·wpm band score + 0.4·pause quality.
func pacingScore(wpm, goodPauseRatio, badPauseRatio float64) float64 {
	return clamp01(0.6*WPMScore(wpm) + 0.4*PauseQuality(goodPauseRatio, badPauseRatio))
}

// WPMScore is a step function over nested comprehension bands around the
// 140–160 WPM sweet spot. Exported because the rubric's Pacing category
// reports it as a component.
func WPMScore(wpm float64) float64 {
	switch {
	case wpm >= 140 && wpm <= 160:
		return 1.0
	case wpm >= 130 && wpm <= 170:
		return 0.8
	case wpm >= 120 && wpm <= 180:
		return 0.6
	default:
		return 0.3
	}
}

// PauseQuality scores the pause-time quality mix: the ideal-band fraction
// minus a 0.3-weighted penalty for the short/long fraction, clamped to
// [0, 1]. Exported because the rubric's Engagement category reuses it.
func PauseQuality(goodRatio, badRatio float64) float64 {
	return clamp01(goodRatio - 0.3*badRatio)
}

// ── helpers ──────────────────────────────────────────────────────────────────

// norm maps x linearly from [lo, hi] onto [0, 1], clamped.
func norm(x, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	return clamp01((x - lo) / (hi - lo))
}

// clamp01 clamps v to [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
