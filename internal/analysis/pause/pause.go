// Package pause converts word-level transcription timestamps into a segmented
// timeline of silence intervals and a per-quality histogram.
//
// A pause is any gap of at least Thresholds.MinPause seconds between the end
// of one word and the start of the next. Leading silence (before the first
// word) and trailing silence (after the last word) are treated identically to
// internal gaps — both indicate dead air in a presentation.
//
// Pauses are bucketed by duration:
//
//	short:  d < ShortMax                 — choppy, often audio-gating artefacts
//	ideal:  GoodMin ≤ d ≤ GoodMax        — rewarded rhetorical pauses
//	long:   d ≥ LongMin                  — penalised dead air
//	medium: everything in between        — neutral
//
// Analyze is a pure function: it never mutates its input, never errors, and
// degrades gracefully to a zero Summary for empty word lists or zero duration.
package pause

import (
	"fmt"
	"math"
	"slices"
)

// epsilon guards every division against zero duration or zero pause time.
const epsilon = 1e-8

// Word is a single transcribed word with its timing, as reported by the
// transcription collaborator. Collections of Words are not necessarily
// time-sorted; Analyze sorts internally.
type Word struct {
	// Text is the transcribed word.
	Text string `json:"text"`

	// Start is the word onset in seconds from the beginning of the recording.
	Start float64 `json:"start"`

	// End is the word offset in seconds. End ≥ Start for well-formed input.
	End float64 `json:"end"`

	// Confidence is the recognizer's confidence in [0, 1]. Zero when the
	// backend does not report confidence.
	Confidence float64 `json:"confidence"`
}

// Interval is a single pause on the recording timeline. End > Start always
// holds for intervals emitted by Analyze.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the interval length in seconds.
func (iv Interval) Duration() float64 {
	return iv.End - iv.Start
}

// Thresholds holds the five tunable pause-band boundaries, all in seconds.
// The zero value is not useful; start from DefaultThresholds.
type Thresholds struct {
	// MinPause is the gap floor: inter-word gaps shorter than this are not
	// counted as pauses at all.
	MinPause float64 `yaml:"min_pause" json:"min_pause"`

	// ShortMax is the exclusive upper bound of the "short" bucket.
	ShortMax float64 `yaml:"short_max" json:"short_max"`

	// GoodMin and GoodMax bound the inclusive "ideal" rhetorical-pause band.
	GoodMin float64 `yaml:"good_min" json:"good_min"`
	GoodMax float64 `yaml:"good_max" json:"good_max"`

	// LongMin is the inclusive lower bound of the "long" bucket.
	LongMin float64 `yaml:"long_min" json:"long_min"`
}

// DefaultThresholds returns the pause bands used when none are configured.
// The defaults are reasonable for presentation speech.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinPause: 0.12,
		ShortMax: 0.20,
		GoodMin:  0.25,
		GoodMax:  0.60,
		LongMin:  1.00,
	}
}

// Validate reports whether the thresholds describe a coherent set of bands:
// all non-negative and ordered MinPause <= ShortMax <= GoodMin <= GoodMax <=
// LongMin.
func (th Thresholds) Validate() error {
	if th.MinPause < 0 {
		return fmt.Errorf("pause: min_pause must not be negative, got %g", th.MinPause)
	}
	if th.ShortMax < th.MinPause {
		return fmt.Errorf("pause: short_max (%g) must not be below min_pause (%g)", th.ShortMax, th.MinPause)
	}
	if th.GoodMin < th.ShortMax {
		return fmt.Errorf("pause: good_min (%g) must not be below short_max (%g)", th.GoodMin, th.ShortMax)
	}
	if th.GoodMax < th.GoodMin {
		return fmt.Errorf("pause: good_max (%g) must not be below good_min (%g)", th.GoodMax, th.GoodMin)
	}
	if th.LongMin < th.GoodMax {
		return fmt.Errorf("pause: long_min (%g) must not be below good_max (%g)", th.LongMin, th.GoodMax)
	}
	return nil
}

// BucketStats accumulates the pauses assigned to one quality bucket.
type BucketStats struct {
	// Count is the number of pauses in the bucket.
	Count int `json:"count"`

	// Seconds is the summed duration of all pauses in the bucket.
	Seconds float64 `json:"seconds"`

	// RatePerMin is Count normalised per minute of total recording time.
	// Computed uniformly for all buckets; whether to display it is a
	// presentation-layer decision.
	RatePerMin float64 `json:"rate_per_min"`
}

// Histogram partitions the pause set into the four quality buckets. Every
// pause belongs to exactly one bucket, so the bucket counts sum to the total
// pause count and the bucket seconds sum to the total pause duration.
type Histogram struct {
	Short  BucketStats `json:"short"`
	Ideal  BucketStats `json:"ideal"`
	Medium BucketStats `json:"medium"`
	Long   BucketStats `json:"long"`
}

// TotalSeconds returns the summed pause seconds across all buckets.
func (h Histogram) TotalSeconds() float64 {
	return h.Short.Seconds + h.Ideal.Seconds + h.Medium.Seconds + h.Long.Seconds
}

// TotalCount returns the summed pause count across all buckets.
func (h Histogram) TotalCount() int {
	return h.Short.Count + h.Ideal.Count + h.Medium.Count + h.Long.Count
}

// Summary is the full output of pause segmentation for one recording.
// Field names are a stable JSON contract consumed by dashboards and exporters.
type Summary struct {
	// SpeechSec is total duration minus pause duration, floored at zero.
	SpeechSec float64 `json:"speech_duration_sec"`

	// PauseSec is the summed duration of all detected pauses.
	PauseSec float64 `json:"pause_duration_sec"`

	// PauseRatio is PauseSec over total recording duration.
	PauseRatio float64 `json:"pause_ratio"`

	// PauseCount is the number of detected pauses.
	PauseCount int `json:"pause_count"`

	// Intervals lists every pause in timeline order.
	Intervals []Interval `json:"pauses"`

	// Buckets is the quality histogram over Intervals.
	Buckets Histogram `json:"pause_bins"`

	// GoodPauseRatio is the fraction of total pause time spent in the ideal
	// band. BadPauseRatio is the fraction spent in the short and long bands.
	GoodPauseRatio float64 `json:"good_pause_ratio"`
	BadPauseRatio  float64 `json:"bad_pause_ratio"`

	// Thresholds echoes the bands used, so a stored report is reproducible.
	Thresholds Thresholds `json:"thresholds"`
}

// Analyze segments the recording timeline into pauses and buckets them.
//
// words may be unsorted and may be empty; totalDuration is the recording
// length in seconds. The walk keeps a prevEnd cursor starting at zero: each
// gap of at least th.MinPause before a word's start is emitted as a pause,
// then prevEnd advances to max(prevEnd, word.End) so that overlapping word
// timestamps never produce negative gaps. After the last word a trailing
// pause is emitted when totalDuration − prevEnd ≥ th.MinPause.
//
// Analyze never fails: zero words with a sufficiently long duration yield a
// single pause spanning the whole recording, and non-positive durations yield
// an all-zero Summary.
func Analyze(words []Word, totalDuration float64, th Thresholds) Summary {
	sorted := slices.Clone(words)
	slices.SortStableFunc(sorted, func(a, b Word) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		}
		return 0
	})

	var intervals []Interval
	prevEnd := 0.0
	for _, w := range sorted {
		if w.Start-prevEnd >= th.MinPause {
			intervals = append(intervals, Interval{Start: prevEnd, End: w.Start})
		}
		prevEnd = math.Max(prevEnd, w.End)
	}
	if totalDuration-prevEnd >= th.MinPause {
		intervals = append(intervals, Interval{Start: prevEnd, End: totalDuration})
	}

	var pauseSec float64
	for _, iv := range intervals {
		pauseSec += iv.Duration()
	}

	s := Summary{
		SpeechSec:  math.Max(0, totalDuration-pauseSec),
		PauseSec:   pauseSec,
		PauseRatio: pauseSec / (totalDuration + epsilon),
		PauseCount: len(intervals),
		Intervals:  intervals,
		Thresholds: th,
	}

	for _, iv := range intervals {
		d := iv.Duration()
		switch {
		case d < th.ShortMax:
			s.Buckets.Short.Count++
			s.Buckets.Short.Seconds += d
		case d >= th.GoodMin && d <= th.GoodMax:
			s.Buckets.Ideal.Count++
			s.Buckets.Ideal.Seconds += d
		case d >= th.LongMin:
			s.Buckets.Long.Count++
			s.Buckets.Long.Seconds += d
		default:
			s.Buckets.Medium.Count++
			s.Buckets.Medium.Seconds += d
		}
	}

	minutes := totalDuration / 60.0
	if minutes > 0 {
		s.Buckets.Short.RatePerMin = float64(s.Buckets.Short.Count) / minutes
		s.Buckets.Ideal.RatePerMin = float64(s.Buckets.Ideal.Count) / minutes
		s.Buckets.Medium.RatePerMin = float64(s.Buckets.Medium.Count) / minutes
		s.Buckets.Long.RatePerMin = float64(s.Buckets.Long.Count) / minutes
	}

	totalPause := math.Max(pauseSec, epsilon)
	s.GoodPauseRatio = s.Buckets.Ideal.Seconds / totalPause
	s.BadPauseRatio = (s.Buckets.Short.Seconds + s.Buckets.Long.Seconds) / totalPause

	return s
}
