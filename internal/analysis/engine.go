// Package analysis orchestrates a full delivery analysis: transcription,
// acoustic and spectral measurement, pause segmentation, linguistic feature
// extraction, metric aggregation, rubric scoring, and coaching.
//
// The pipeline has exactly one fatal dependency, transcription. Every other
// provider degrades gracefully: a failed prosody or spectral measurement
// zeroes its feature block, a failed coach leaves the report without
// feedback, and in both cases the report records what was skipped. The same
// inputs always produce the same metrics and scores; only the coach text is
// non-deterministic.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/cadenza/internal/analysis/linguistic"
	"github.com/MrWong99/cadenza/internal/analysis/metrics"
	"github.com/MrWong99/cadenza/internal/analysis/pause"
	"github.com/MrWong99/cadenza/internal/analysis/rubric"
	"github.com/MrWong99/cadenza/internal/observe"
	"github.com/MrWong99/cadenza/pkg/provider/asr"
	"github.com/MrWong99/cadenza/pkg/provider/coach"
	"github.com/MrWong99/cadenza/pkg/provider/prosody"
	"github.com/MrWong99/cadenza/pkg/provider/spectral"
)

// InvalidInputError reports a recording that cannot be analysed at all, as
// opposed to a provider failing on a valid one.
type InvalidInputError struct {
	Path   string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("analysis: invalid input %q: %s", e.Path, e.Reason)
}

// Engine runs the analysis pipeline. Construct it with New; the zero value is
// not usable. Engine is safe for concurrent use as long as its providers are.
type Engine struct {
	asr       asr.Provider
	prosody   prosody.Provider
	spectral  spectral.Provider
	coach     coach.Provider
	extractor *linguistic.Extractor

	thresholds pause.Thresholds
	cutoffs    rubric.Cutoffs
	metrics    *observe.Metrics
}

// Option is a functional option for configuring an Engine.
type Option func(*Engine)

// WithProsody attaches an acoustic measurement provider. Without one, all
// acoustic features stay zero and the report notes the gap.
func WithProsody(p prosody.Provider) Option {
	return func(e *Engine) { e.prosody = p }
}

// WithSpectral attaches a spectral measurement provider. Without one, all
// spectral features stay zero and the report notes the gap.
func WithSpectral(p spectral.Provider) Option {
	return func(e *Engine) { e.spectral = p }
}

// WithCoach attaches a feedback provider. Without one, reports carry no
// coach feedback.
func WithCoach(p coach.Provider) Option {
	return func(e *Engine) { e.coach = p }
}

// WithPauseThresholds overrides the pause classification thresholds.
func WithPauseThresholds(th pause.Thresholds) Option {
	return func(e *Engine) { e.thresholds = th }
}

// WithCutoffs overrides the rubric band cutoffs.
func WithCutoffs(c rubric.Cutoffs) Option {
	return func(e *Engine) { e.cutoffs = c }
}

// WithMetrics overrides the observability instruments, mainly for tests.
func WithMetrics(m *observe.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New creates an Engine. asrProvider is the only mandatory provider;
// extractor must be non-nil (use linguistic.New(linguistic.DefaultConfig())).
func New(asrProvider asr.Provider, extractor *linguistic.Extractor, opts ...Option) (*Engine, error) {
	if asrProvider == nil {
		return nil, fmt.Errorf("analysis: asr provider must not be nil")
	}
	if extractor == nil {
		return nil, fmt.Errorf("analysis: linguistic extractor must not be nil")
	}

	e := &Engine{
		asr:        asrProvider,
		extractor:  extractor,
		thresholds: pause.DefaultThresholds(),
		cutoffs:    rubric.DefaultCutoffs(),
	}
	for _, o := range opts {
		o(e)
	}
	if e.metrics == nil {
		e.metrics = observe.DefaultMetrics()
	}
	if err := e.cutoffs.Validate(); err != nil {
		return nil, err
	}
	if err := e.thresholds.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Analyze runs the full pipeline over the recording at wavPath and returns
// the report.
//
// Transcription failure is fatal. Prosody, spectral, and coach failures
// degrade the report instead: the failed stage is logged, counted, and noted
// in the report's Warnings (or CoachError) field.
func (e *Engine) Analyze(ctx context.Context, wavPath string) (*Report, error) {
	if wavPath == "" {
		return nil, &InvalidInputError{Path: wavPath, Reason: "empty path"}
	}

	start := time.Now()
	ctx, span := observe.StartSpan(ctx, "analysis.Analyze")
	defer span.End()
	log := observe.Logger(ctx)

	var (
		transcription *asr.Result
		acoustic      prosody.Features
		spectralFeats spectral.Features

		// One slot per concurrent stage so the goroutines never share a slice.
		prosodyWarn  string
		spectralWarn string
	)

	// The three measurement providers are independent; run them together.
	// Only the transcription goroutine can fail the group.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t := time.Now()
		res, err := e.asr.Transcribe(gctx, wavPath)
		e.metrics.ASRDuration.Record(gctx, time.Since(t).Seconds())
		if err != nil {
			e.metrics.RecordProviderError(gctx, "asr", "asr")
			return fmt.Errorf("analysis: transcribe: %w", err)
		}
		e.metrics.RecordProviderRequest(gctx, "asr", "asr", "ok")
		transcription = res
		return nil
	})
	if e.prosody != nil {
		g.Go(func() error {
			t := time.Now()
			feats, err := e.prosody.Analyze(gctx, wavPath)
			e.metrics.ProsodyDuration.Record(gctx, time.Since(t).Seconds())
			if err != nil {
				e.metrics.RecordProviderError(gctx, "prosody", "prosody")
				log.Warn("prosody measurement failed, continuing without acoustic features", "error", err)
				prosodyWarn = "prosody: " + err.Error()
				return nil
			}
			e.metrics.RecordProviderRequest(gctx, "prosody", "prosody", "ok")
			acoustic = feats
			return nil
		})
	} else {
		prosodyWarn = "prosody: no provider configured"
	}
	if e.spectral != nil {
		g.Go(func() error {
			t := time.Now()
			feats, err := e.spectral.Extract(gctx, wavPath)
			e.metrics.SpectralDuration.Record(gctx, time.Since(t).Seconds())
			if err != nil {
				e.metrics.RecordProviderError(gctx, "spectral", "spectral")
				log.Warn("spectral measurement failed, continuing without spectral features", "error", err)
				spectralWarn = "spectral: " + err.Error()
				return nil
			}
			e.metrics.RecordProviderRequest(gctx, "spectral", "spectral", "ok")
			spectralFeats = feats
			return nil
		})
	} else {
		spectralWarn = "spectral: no provider configured"
	}
	if err := g.Wait(); err != nil {
		e.metrics.RecordAnalysis(ctx, "error")
		return nil, err
	}
	if transcription == nil {
		e.metrics.RecordAnalysis(ctx, "error")
		return nil, &InvalidInputError{Path: wavPath, Reason: "transcription backend returned no result"}
	}

	var warnings []string
	if prosodyWarn != "" {
		warnings = append(warnings, prosodyWarn)
	}
	if spectralWarn != "" {
		warnings = append(warnings, spectralWarn)
	}

	// Acoustic duration is measured from the decoded signal and is the more
	// trustworthy total; the transcription duration covers the silent-file
	// case where prosody was skipped.
	duration := acoustic.DurationSec
	if duration <= 0 {
		duration = transcription.DurationSec
	}

	pauses := pause.Analyze(toPauseWords(transcription.Words), duration, e.thresholds)

	t := time.Now()
	ling := e.extractor.Extract(ctx, transcription.Text, duration, pauses.PauseRatio)
	e.metrics.CoherenceDuration.Record(ctx, time.Since(t).Seconds())

	derived := metrics.Aggregate(metrics.RawFeatureSet{
		DurationSec: duration,
		Transcript:  transcription.Text,
		Acoustic:    acoustic,
		Spectral:    spectralFeats,
	}, pauses, ling)

	card := rubric.Score(derived, e.cutoffs)

	report := &Report{
		Audio:      wavPath,
		Language:   transcription.Language,
		Transcript: transcription.Text,
		Words:      transcription.Words,
		Pauses:     pauses,
		Metrics:    derived,
		Rubric:     card,
		Warnings:   warnings,
	}

	e.runCoach(ctx, report)

	e.metrics.AnalysisDuration.Record(ctx, time.Since(start).Seconds())
	status := "ok"
	if len(warnings) > 0 || report.CoachError != "" {
		status = "degraded"
	}
	e.metrics.RecordAnalysis(ctx, status)
	log.Info("analysis complete",
		"audio", wavPath,
		"duration_sec", duration,
		"words", len(transcription.Words),
		"overall", card.Overall,
		"status", status,
	)
	return report, nil
}

// runCoach fills in the report's Feedback field, best-effort. Any failure is
// recorded on the report itself so a degraded report still round-trips as
// valid JSON.
func (e *Engine) runCoach(ctx context.Context, report *Report) {
	if e.coach == nil {
		return
	}

	metricsJSON, err := json.Marshal(report.Metrics)
	if err != nil {
		report.CoachError = "encode metrics: " + err.Error()
		return
	}
	rubricJSON, err := json.Marshal(report.Rubric)
	if err != nil {
		report.CoachError = "encode rubric: " + err.Error()
		return
	}

	t := time.Now()
	feedback, err := e.coach.Coach(ctx, coach.Request{
		Transcript: report.Transcript,
		Metrics:    metricsJSON,
		Rubric:     rubricJSON,
	})
	e.metrics.CoachDuration.Record(ctx, time.Since(t).Seconds())
	if err != nil {
		e.metrics.RecordProviderError(ctx, "coach", "coach")
		observe.Logger(ctx).Warn("coach failed, report ships without feedback", "error", err)
		report.CoachError = err.Error()
		return
	}
	e.metrics.RecordProviderRequest(ctx, "coach", "coach", "ok")
	report.Feedback = feedback
}

// toPauseWords converts transcription words into the pause segmenter's input.
func toPauseWords(words []asr.Word) []pause.Word {
	out := make([]pause.Word, len(words))
	for i, w := range words {
		out[i] = pause.Word{
			Text:       w.Text,
			Start:      w.Start,
			End:        w.End,
			Confidence: w.Confidence,
		}
	}
	return out
}
