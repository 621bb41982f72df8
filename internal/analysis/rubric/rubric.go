// Package rubric turns the derived metric set into a weighted seven-category
// scorecard. Each category maps a raw score in [0, 1] onto a 1–5 band and
// carries a short explanation citing the numbers that drove it, so a report
// reader can see why a band was awarded without re-deriving the math.
package rubric

import (
	"fmt"

	"github.com/MrWong99/cadenza/internal/analysis/metrics"
)

// Category names. The scorecard always contains all seven, in this order.
const (
	Clarity    = "Clarity"
	Confidence = "Confidence"
	Tone       = "Tone"
	Pacing     = "Pacing"
	Engagement = "Engagement"
	Cadence    = "Cadence"
	Flow       = "Flow"
)

// Category is one scored rubric dimension.
type Category struct {
	Name        string  `json:"name"`
	WeightPct   int     `json:"weight_pct"`
	Score       int     `json:"score"` // 1–5 band
	Raw         float64 `json:"raw"`   // pre-band score in [0, 1]
	Explanation string  `json:"explanation"`

	// ComponentBreakdown maps each sub-component that fed Raw to its value
	// in [0, 1], so a UI can show which term dragged a band down.
	ComponentBreakdown map[string]float64 `json:"component_breakdown"`
}

// Scorecard is the complete rubric result.
type Scorecard struct {
	Categories []Category `json:"categories"`

	// Overall is the weight-averaged band score in [1, 5].
	Overall float64 `json:"overall"`
}

// Cutoffs are the descending raw-score thresholds for bands 5 through 2;
// anything below the last cutoff is band 1. Must be strictly decreasing.
type Cutoffs struct {
	Five  float64 `yaml:"five" json:"five"`
	Four  float64 `yaml:"four" json:"four"`
	Three float64 `yaml:"three" json:"three"`
	Two   float64 `yaml:"two" json:"two"`
}

// DefaultCutoffs returns the standard band thresholds.
func DefaultCutoffs() Cutoffs {
	return Cutoffs{Five: 0.85, Four: 0.75, Three: 0.65, Two: 0.55}
}

// Validate reports an error if the cutoffs are not strictly decreasing
// within (0, 1).
func (c Cutoffs) Validate() error {
	if !(c.Five > c.Four && c.Four > c.Three && c.Three > c.Two) {
		return fmt.Errorf("rubric: cutoffs must be strictly decreasing, got %.2f/%.2f/%.2f/%.2f",
			c.Five, c.Four, c.Three, c.Two)
	}
	if c.Two <= 0 || c.Five >= 1 {
		return fmt.Errorf("rubric: cutoffs must lie within (0, 1), got %.2f..%.2f", c.Two, c.Five)
	}
	return nil
}

// Band maps a raw score onto the 1–5 band.
func (c Cutoffs) Band(raw float64) int {
	switch {
	case raw >= c.Five:
		return 5
	case raw >= c.Four:
		return 4
	case raw >= c.Three:
		return 3
	case raw >= c.Two:
		return 2
	default:
		return 1
	}
}

// Score evaluates every category against the derived metrics and returns the
// populated scorecard. Weights sum to 100.
func Score(d metrics.Derived, cutoffs Cutoffs) Scorecard {
	cats := []Category{
		scoreClarity(d),
		scoreConfidence(d),
		scoreTone(d),
		scorePacing(d),
		scoreEngagement(d),
		scoreCadence(d),
		scoreFlow(d),
	}

	var overall float64
	for i := range cats {
		cats[i].Score = cutoffs.Band(cats[i].Raw)
		overall += float64(cats[i].WeightPct) * float64(cats[i].Score)
	}
	overall /= 100.0

	return Scorecard{Categories: cats, Overall: overall}
}

func scoreClarity(d metrics.Derived) Category {
	return Category{
		Name:      Clarity,
		WeightPct: 20,
		Raw:       d.ClarityIndex,
		Explanation: fmt.Sprintf(
			"clarity index %.2f from voice quality (HNR %.1f dB, CPPs %.1f dB, jitter %.1f%%, shimmer %.1f%%) and articulation rate %.1f syl/s",
			d.ClarityIndex, d.HNRMeanDB, d.CPPSDB, d.Jitter*100, d.Shimmer*100, d.ArticulationRate),
		ComponentBreakdown: map[string]float64{
			"clarity_index": clamp01(d.ClarityIndex),
		},
	}
}

// scoreConfidence blends a hesitation term (pauses offset by vocal
// projection) with a steadiness term (windowed pitch and loudness
// variability). Heavy pausing and wobbly delivery both read as uncertainty.
func scoreConfidence(d metrics.Derived) Category {
	hesitation := clamp01(1.1 - 1.8*d.PauseRatio + 0.03*d.IntensityStdDB)
	steadiness := clamp01(1.0 - 0.5*clamp01(d.F0VarWin/30.0) - 0.5*clamp01(d.IntensityVarWin/6.0))
	raw := clamp01(0.7*hesitation + 0.3*steadiness)
	return Category{
		Name:      Confidence,
		WeightPct: 15,
		Raw:       raw,
		Explanation: fmt.Sprintf(
			"pause ratio %.0f%% with intensity spread %.1f dB (hesitation %.2f), windowed pitch/loudness steadiness %.2f",
			d.PauseRatio*100, d.IntensityStdDB, hesitation, steadiness),
		ComponentBreakdown: map[string]float64{
			"hesitation": hesitation,
			"steadiness": steadiness,
		},
	}
}

func scoreTone(d metrics.Derived) Category {
	return Category{
		Name:      Tone,
		WeightPct: 15,
		Raw:       d.ToneVariability,
		Explanation: fmt.Sprintf(
			"tone variability %.2f from pitch spread %.1f Hz over a %.0f Hz range and intensity spread %.1f dB",
			d.ToneVariability, d.PitchStdHz, d.PitchRangeHz, d.IntensityStdDB),
		ComponentBreakdown: map[string]float64{
			"tone_variability": clamp01(d.ToneVariability),
		},
	}
}

func scorePacing(d metrics.Derived) Category {
	return Category{
		Name:      Pacing,
		WeightPct: 15,
		Raw:       d.PacingScore,
		Explanation: fmt.Sprintf(
			"%.0f WPM with %.0f%% of pause time in the ideal band and %.0f%% in short/long pauses",
			d.WPM, d.GoodPauseRatio*100, d.BadPauseRatio*100),
		ComponentBreakdown: map[string]float64{
			"wpm_score":     metrics.WPMScore(d.WPM),
			"pause_quality": metrics.PauseQuality(d.GoodPauseRatio, d.BadPauseRatio),
		},
	}
}

// scoreEngagement rewards lively tone plus natural speech texture: a small
// amount of fillers and well-placed pauses sound human, while none at all
// sounds read and too many sound unprepared.
func scoreEngagement(d metrics.Derived) Category {
	comfort := FillerComfort(d.FillerRatio)
	texture := 0.5*comfort + 0.5*metrics.PauseQuality(d.GoodPauseRatio, d.BadPauseRatio)
	raw := clamp01(0.6*d.ToneVariability + 0.4*texture)
	return Category{
		Name:      Engagement,
		WeightPct: 15,
		Raw:       raw,
		Explanation: fmt.Sprintf(
			"tone variability %.2f, filler ratio %.1f%% (comfort %.2f), pause placement quality %.2f",
			d.ToneVariability, d.FillerRatio*100, comfort, metrics.PauseQuality(d.GoodPauseRatio, d.BadPauseRatio)),
		ComponentBreakdown: map[string]float64{
			"tone_variability": clamp01(d.ToneVariability),
			"filler_comfort":   comfort,
			"pause_quality":    metrics.PauseQuality(d.GoodPauseRatio, d.BadPauseRatio),
		},
	}
}

// scoreCadence rewards a steady local speaking rate and a musical pulse: low
// windowed rate variance, ideal pauses, and a tempo in the conversational
// 80–140 BPM band.
func scoreCadence(d metrics.Derived) Category {
	steadiness := 1.0 - clamp01(d.RateVarWin/30.0)
	tempo := tempoScore(d.TempoBPM)
	raw := clamp01(0.6*steadiness + 0.4*(0.5*d.GoodPauseRatio+0.5*tempo))
	return Category{
		Name:      Cadence,
		WeightPct: 10,
		Raw:       raw,
		Explanation: fmt.Sprintf(
			"rate steadiness %.2f (windowed variance %.1f), tempo %.0f BPM (score %.2f), ideal pauses %.0f%%",
			steadiness, d.RateVarWin, d.TempoBPM, tempo, d.GoodPauseRatio*100),
		ComponentBreakdown: map[string]float64{
			"rate_steadiness":   steadiness,
			"tempo_score":       tempo,
			"ideal_pause_ratio": clamp01(d.GoodPauseRatio),
		},
	}
}

// scoreFlow penalises self-repairs (full penalty at a 10% repair rate) and
// rewards sentence-to-sentence coherence.
func scoreFlow(d metrics.Derived) Category {
	fluency := 1.0 - clamp01(d.RepairRate/0.10)
	raw := clamp01(0.5*fluency + 0.5*d.CoherenceScore)
	return Category{
		Name:      Flow,
		WeightPct: 10,
		Raw:       raw,
		Explanation: fmt.Sprintf(
			"%d self-repairs (rate %.1f%%, fluency %.2f), topic coherence %.2f over %d sentences",
			d.RepairCount, d.RepairRate*100, fluency, d.CoherenceScore, d.SentenceCount),
		ComponentBreakdown: map[string]float64{
			"fluency":   fluency,
			"coherence": clamp01(d.CoherenceScore),
		},
	}
}

// FillerComfort scores the filler ratio on a plateau curve: zero fillers
// score 0.8 (reads as scripted), ramping to 1.0 at 2%, holding through 5%,
// then decaying linearly to 0 at 15%.
func FillerComfort(ratio float64) float64 {
	switch {
	case ratio < 0:
		return 0.8
	case ratio < 0.02:
		return 0.8 + 0.2*(ratio/0.02)
	case ratio <= 0.05:
		return 1.0
	case ratio < 0.15:
		return clamp01((0.15 - ratio) / 0.10)
	default:
		return 0
	}
}

// tempoScore is 1.0 in the 80–140 BPM band and decays linearly to 0 over the
// 40 BPM on either side. A tempo of 0 (spectral backend unavailable) scores 0.
func tempoScore(bpm float64) float64 {
	switch {
	case bpm >= 80 && bpm <= 140:
		return 1.0
	case bpm > 40 && bpm < 80:
		return (bpm - 40) / 40.0
	case bpm > 140 && bpm < 180:
		return (180 - bpm) / 40.0
	default:
		return 0
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
