package metrics_test

import (
	"math"
	"testing"

	"github.com/MrWong99/cadenza/internal/analysis/linguistic"
	"github.com/MrWong99/cadenza/internal/analysis/metrics"
	"github.com/MrWong99/cadenza/internal/analysis/pause"
)

const tolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestAggregate_PacingIdealBand(t *testing.T) {
	raw := metrics.RawFeatureSet{DurationSec: 60}
	pauses := pause.Summary{GoodPauseRatio: 0.6, BadPauseRatio: 0.1}
	ling := linguistic.Features{WordCount: 150}

	d := metrics.Aggregate(raw, pauses, ling)

	if !almostEqual(d.WPM, 150) {
		t.Fatalf("WPM = %v, want 150", d.WPM)
	}
	// 0.6·1.0 + 0.4·(0.6 − 0.3·0.1) = 0.828
	if !almostEqual(d.PacingScore, 0.828) {
		t.Errorf("PacingScore = %v, want 0.828", d.PacingScore)
	}
}

func TestAggregate_WPMBands(t *testing.T) {
	tests := []struct {
		name      string
		wordCount int
		want      float64 // pacing with zero pause quality
	}{
		{"ideal 150", 150, 0.6},
		{"outer band 135", 135, 0.48},
		{"wide band 125", 125, 0.36},
		{"too slow 90", 90, 0.18},
		{"too fast 200", 200, 0.18},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := metrics.Aggregate(
				metrics.RawFeatureSet{DurationSec: 60},
				pause.Summary{},
				linguistic.Features{WordCount: tt.wordCount},
			)
			if !almostEqual(d.PacingScore, tt.want) {
				t.Errorf("PacingScore = %v, want %v", d.PacingScore, tt.want)
			}
		})
	}
}

func TestAggregate_ZeroDuration(t *testing.T) {
	d := metrics.Aggregate(metrics.RawFeatureSet{}, pause.Summary{}, linguistic.Features{WordCount: 10})
	if d.WPM != 0 {
		t.Errorf("WPM = %v, want 0 for zero duration", d.WPM)
	}
}

func TestAggregate_ClarityComponents(t *testing.T) {
	raw := metrics.RawFeatureSet{
		DurationSec: 30,
		Acoustic: metrics.AcousticFeatures{
			HNRMeanDB: 25, // norm → 1.0
			CPPSDB:    15, // norm → 1.0
			Jitter:    0,
			Shimmer:   0,
		},
	}
	ling := linguistic.Features{ArticulationRate: 4.5} // band → intelligibility 1.0, artic (4.5−2)/3
	d := metrics.Aggregate(raw, pause.Summary{}, ling)

	// voice quality 0.7, intelligibility 1.0, articulation 0.8333…
	want := 0.4*0.7 + 0.4*1.0 + 0.2*(2.5/3.0)
	if !almostEqual(d.ClarityIndex, want) {
		t.Errorf("ClarityIndex = %v, want %v", d.ClarityIndex, want)
	}
}

func TestAggregate_ClarityPenalties(t *testing.T) {
	base := metrics.RawFeatureSet{
		DurationSec: 30,
		Acoustic:    metrics.AcousticFeatures{HNRMeanDB: 25, CPPSDB: 15},
	}
	noisy := base
	noisy.Acoustic.Jitter = 0.05   // saturates penalty at 0.15
	noisy.Acoustic.Shimmer = 0.20  // saturates penalty at 0.15
	ling := linguistic.Features{ArticulationRate: 4.5}

	clean := metrics.Aggregate(base, pause.Summary{}, ling)
	rough := metrics.Aggregate(noisy, pause.Summary{}, ling)

	if rough.ClarityIndex >= clean.ClarityIndex {
		t.Fatalf("jitter/shimmer should lower clarity: clean=%v rough=%v", clean.ClarityIndex, rough.ClarityIndex)
	}
	if diff := clean.ClarityIndex - rough.ClarityIndex; !almostEqual(diff, 0.4*0.3) {
		t.Errorf("clarity penalty = %v, want 0.12", diff)
	}
}

func TestAggregate_ToneMonotoneHalved(t *testing.T) {
	// pitch component 0.1 → halved to 0.05.
	raw := metrics.RawFeatureSet{
		DurationSec: 30,
		Acoustic:    metrics.AcousticFeatures{F0StdHz: 5, F0RangeHz: 20},
	}
	d := metrics.Aggregate(raw, pause.Summary{}, linguistic.Features{})
	if want := 0.6 * 0.05; !almostEqual(d.ToneVariability, want) {
		t.Errorf("ToneVariability = %v, want %v", d.ToneVariability, want)
	}
}

func TestAggregate_ToneHighVariationCompressed(t *testing.T) {
	// pitch component 1.0 → compressed to 0.8 + 0.2·0.2 = 0.84.
	raw := metrics.RawFeatureSet{
		DurationSec: 30,
		Acoustic:    metrics.AcousticFeatures{F0StdHz: 100, F0RangeHz: 400},
	}
	d := metrics.Aggregate(raw, pause.Summary{}, linguistic.Features{})
	if want := 0.6 * 0.84; !almostEqual(d.ToneVariability, want) {
		t.Errorf("ToneVariability = %v, want %v", d.ToneVariability, want)
	}
}

func TestAggregate_SanitizesNonFinite(t *testing.T) {
	raw := metrics.RawFeatureSet{
		DurationSec: 30,
		Acoustic: metrics.AcousticFeatures{
			F0MeanHz:  math.NaN(),
			F0StdHz:   math.Inf(1),
			HNRMeanDB: math.Inf(-1),
			Jitter:    math.NaN(),
		},
		Spectral: metrics.SpectralFeatures{TempoBPM: math.NaN()},
	}
	d := metrics.Aggregate(raw, pause.Summary{}, linguistic.Features{})

	for name, v := range map[string]float64{
		"PitchStdHz":      d.PitchStdHz,
		"HNRMeanDB":       d.HNRMeanDB,
		"Jitter":          d.Jitter,
		"TempoBPM":        d.TempoBPM,
		"ClarityIndex":    d.ClarityIndex,
		"ToneVariability": d.ToneVariability,
		"PacingScore":     d.PacingScore,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("%s = %v, want finite", name, v)
		}
	}
}

func TestAggregate_Deterministic(t *testing.T) {
	raw := metrics.RawFeatureSet{
		DurationSec: 42.5,
		Acoustic: metrics.AcousticFeatures{
			F0StdHz: 31.2, F0RangeHz: 140, IntensityStdDB: 4.4,
			HNRMeanDB: 18.1, CPPSDB: 11.3, Jitter: 0.012, Shimmer: 0.04,
			FinalFallRatio: 0.5, FinalRiseRatio: 0.2,
		},
		Spectral: metrics.SpectralFeatures{RMSMean: 0.08, TempoBPM: 104},
	}
	pauses := pause.Summary{PauseRatio: 0.22, GoodPauseRatio: 0.5, BadPauseRatio: 0.2}
	ling := linguistic.Features{WordCount: 98, ArticulationRate: 4.1, FillerRatio: 0.03}

	a := metrics.Aggregate(raw, pauses, ling)
	b := metrics.Aggregate(raw, pauses, ling)
	if a != b {
		t.Fatalf("Aggregate is not deterministic:\n a=%+v\n b=%+v", a, b)
	}
}

func TestAggregate_CompositesClamped(t *testing.T) {
	raw := metrics.RawFeatureSet{
		DurationSec: 60,
		Acoustic: metrics.AcousticFeatures{
			F0StdHz: 1e6, F0RangeHz: 1e6, IntensityStdDB: 1e6,
			HNRMeanDB: 1e6, CPPSDB: 1e6,
			FinalFallRatio: 5, FinalRiseRatio: 5,
		},
	}
	pauses := pause.Summary{GoodPauseRatio: 1}
	ling := linguistic.Features{WordCount: 150, ArticulationRate: 4.5}

	d := metrics.Aggregate(raw, pauses, ling)
	for name, v := range map[string]float64{
		"ClarityIndex":    d.ClarityIndex,
		"ToneVariability": d.ToneVariability,
		"PacingScore":     d.PacingScore,
	} {
		if v < 0 || v > 1 {
			t.Errorf("%s = %v, want within [0, 1]", name, v)
		}
	}
}

func TestPauseQuality(t *testing.T) {
	tests := []struct {
		good, bad, want float64
	}{
		{0.6, 0.1, 0.57},
		{0, 1, 0},
		{1, 0, 1},
		{0.1, 0.9, 0},
	}
	for _, tt := range tests {
		if got := metrics.PauseQuality(tt.good, tt.bad); !almostEqual(got, tt.want) {
			t.Errorf("PauseQuality(%v, %v) = %v, want %v", tt.good, tt.bad, got, tt.want)
		}
	}
}
