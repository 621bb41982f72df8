package analysis_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MrWong99/cadenza/internal/analysis"
	"github.com/MrWong99/cadenza/internal/analysis/linguistic"
	"github.com/MrWong99/cadenza/internal/analysis/rubric"
	"github.com/MrWong99/cadenza/pkg/provider/asr"
	asrmock "github.com/MrWong99/cadenza/pkg/provider/asr/mock"
	coachmock "github.com/MrWong99/cadenza/pkg/provider/coach/mock"
	"github.com/MrWong99/cadenza/pkg/provider/prosody"
	prosodymock "github.com/MrWong99/cadenza/pkg/provider/prosody/mock"
	"github.com/MrWong99/cadenza/pkg/provider/spectral"
	spectralmock "github.com/MrWong99/cadenza/pkg/provider/spectral/mock"
)

func newExtractor(t *testing.T) *linguistic.Extractor {
	t.Helper()
	ex, err := linguistic.New(linguistic.DefaultConfig())
	if err != nil {
		t.Fatalf("linguistic.New() error = %v", err)
	}
	return ex
}

// steadyResult builds a transcription of n words spoken at a fixed rate, with
// a deliberate rhetorical pause in the middle.
func steadyResult(n int) *asr.Result {
	words := make([]asr.Word, n)
	var sb strings.Builder
	t := 0.0
	for i := range words {
		if i == n/2 {
			t += 0.4 // ideal-band pause
		}
		words[i] = asr.Word{Text: "steady", Start: t, End: t + 0.3, Confidence: 0.95}
		t = words[i].End + 0.05
		sb.WriteString("steady ")
	}
	return &asr.Result{
		Language:    "en",
		DurationSec: t,
		Text:        strings.TrimSpace(sb.String()),
		Words:       words,
	}
}

func TestNew_Validation(t *testing.T) {
	ex := newExtractor(t)

	if _, err := analysis.New(nil, ex); err == nil {
		t.Error("New(nil asr) error = nil, want error")
	}
	if _, err := analysis.New(&asrmock.Provider{}, nil); err == nil {
		t.Error("New(nil extractor) error = nil, want error")
	}
	if _, err := analysis.New(&asrmock.Provider{}, ex,
		analysis.WithCutoffs(rubric.Cutoffs{Five: 0.5, Four: 0.6, Three: 0.3, Two: 0.2}),
	); err == nil {
		t.Error("New(non-decreasing cutoffs) error = nil, want error")
	}
}

func TestAnalyze_FullPipeline(t *testing.T) {
	asrProv := &asrmock.Provider{Result: steadyResult(40)}
	prosodyProv := &prosodymock.Provider{Features: prosody.Features{
		DurationSec:     asrProv.Result.DurationSec,
		F0MeanHz:        120,
		F0StdHz:         32,
		F0RangeHz:       140,
		IntensityMeanDB: 62,
		IntensityStdDB:  6,
		Jitter:          0.01,
		Shimmer:         0.04,
		HNRMeanDB:       18,
		CPPSDB:          11,
		FinalFallRatio:  0.7,
		FinalRiseRatio:  0.1,
	}}
	spectralProv := &spectralmock.Provider{Features: spectral.Features{
		RMSMean:  0.12,
		TempoBPM: 110,
	}}
	coachProv := &coachmock.Provider{Feedback: "- Slow down at transitions."}

	eng, err := analysis.New(asrProv, newExtractor(t),
		analysis.WithProsody(prosodyProv),
		analysis.WithSpectral(spectralProv),
		analysis.WithCoach(coachProv),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	report, err := eng.Analyze(context.Background(), "talk.wav")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if report.Audio != "talk.wav" {
		t.Errorf("Audio = %q, want %q", report.Audio, "talk.wav")
	}
	if report.Language != "en" {
		t.Errorf("Language = %q, want %q", report.Language, "en")
	}
	if report.Transcript == "" {
		t.Error("Transcript is empty")
	}
	if len(report.Words) != 40 {
		t.Errorf("len(Words) = %d, want 40", len(report.Words))
	}
	if report.Metrics.WordCount != 40 {
		t.Errorf("Metrics.WordCount = %d, want 40", report.Metrics.WordCount)
	}
	if report.Metrics.WPM <= 0 {
		t.Errorf("Metrics.WPM = %g, want > 0", report.Metrics.WPM)
	}
	if report.Pauses.PauseCount == 0 {
		t.Error("Pauses.PauseCount = 0, want the mid-talk pause detected")
	}
	if got := len(report.Rubric.Categories); got != 7 {
		t.Errorf("len(Rubric.Categories) = %d, want 7", got)
	}
	if report.Rubric.Overall < 1 || report.Rubric.Overall > 5 {
		t.Errorf("Rubric.Overall = %g, want within [1, 5]", report.Rubric.Overall)
	}
	if report.Feedback != coachProv.Feedback {
		t.Errorf("Feedback = %q, want %q", report.Feedback, coachProv.Feedback)
	}
	if report.CoachError != "" {
		t.Errorf("CoachError = %q, want empty", report.CoachError)
	}
	if len(report.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", report.Warnings)
	}

	// Every provider must have been called with the recording path.
	for name, got := range map[string]int{
		"asr":      asrProv.CallCount(),
		"prosody":  prosodyProv.CallCount(),
		"spectral": spectralProv.CallCount(),
		"coach":    coachProv.CallCount(),
	} {
		if got != 1 {
			t.Errorf("%s CallCount() = %d, want 1", name, got)
		}
	}
	req := coachProv.CoachCalls[0].Req
	if req.Transcript != report.Transcript {
		t.Error("coach received a different transcript than the report carries")
	}
	if !strings.Contains(string(req.Metrics), `"wpm"`) {
		t.Error("coach metrics JSON missing wpm field")
	}
	if !strings.Contains(string(req.Rubric), `"overall"`) {
		t.Error("coach rubric JSON missing overall field")
	}
}

func TestAnalyze_EmptyPath(t *testing.T) {
	eng, err := analysis.New(&asrmock.Provider{}, newExtractor(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = eng.Analyze(context.Background(), "")
	var invErr *analysis.InvalidInputError
	if !errors.As(err, &invErr) {
		t.Fatalf("Analyze(\"\") error = %v, want *InvalidInputError", err)
	}
}

// nilResultASR simulates a misbehaving backend that reports success without
// producing a result.
type nilResultASR struct{}

func (nilResultASR) Transcribe(context.Context, string) (*asr.Result, error) {
	return nil, nil
}

func TestAnalyze_NilTranscriptionIsInvalidInput(t *testing.T) {
	eng, err := analysis.New(nilResultASR{}, newExtractor(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = eng.Analyze(context.Background(), "talk.wav")
	var invErr *analysis.InvalidInputError
	if !errors.As(err, &invErr) {
		t.Fatalf("Analyze() error = %v, want *InvalidInputError", err)
	}
}

func TestAnalyze_TranscriptionFailureIsFatal(t *testing.T) {
	wantErr := errors.New("model not loaded")
	eng, err := analysis.New(&asrmock.Provider{Err: wantErr}, newExtractor(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	report, err := eng.Analyze(context.Background(), "talk.wav")
	if !errors.Is(err, wantErr) {
		t.Errorf("Analyze() error = %v, want wrapping %v", err, wantErr)
	}
	if report != nil {
		t.Error("Analyze() report != nil on transcription failure")
	}
}

func TestAnalyze_ProsodyFailureDegrades(t *testing.T) {
	eng, err := analysis.New(&asrmock.Provider{Result: steadyResult(20)}, newExtractor(t),
		analysis.WithProsody(&prosodymock.Provider{Err: errors.New("sidecar down")}),
		analysis.WithSpectral(&spectralmock.Provider{Features: spectral.Features{TempoBPM: 100}}),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	report, err := eng.Analyze(context.Background(), "talk.wav")
	if err != nil {
		t.Fatalf("Analyze() error = %v, want degraded report", err)
	}
	if len(report.Warnings) != 1 || !strings.Contains(report.Warnings[0], "prosody") {
		t.Errorf("Warnings = %v, want a single prosody warning", report.Warnings)
	}
	if report.Metrics.PitchStdHz != 0 || report.Metrics.HNRMeanDB != 0 {
		t.Error("acoustic metrics should be zero when prosody fails")
	}
	if report.Metrics.TempoBPM != 100 {
		t.Errorf("Metrics.TempoBPM = %g, want 100 from the surviving spectral stage", report.Metrics.TempoBPM)
	}
	if len(report.Rubric.Categories) != 7 {
		t.Error("rubric must still be scored on a degraded report")
	}
}

func TestAnalyze_NoOptionalProviders(t *testing.T) {
	eng, err := analysis.New(&asrmock.Provider{Result: steadyResult(10)}, newExtractor(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	report, err := eng.Analyze(context.Background(), "talk.wav")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(report.Warnings) != 2 {
		t.Errorf("Warnings = %v, want prosody and spectral noted as unconfigured", report.Warnings)
	}
	if report.Feedback != "" || report.CoachError != "" {
		t.Errorf("Feedback = %q, CoachError = %q, want both empty without a coach", report.Feedback, report.CoachError)
	}
	// Duration falls back to the transcription's own measurement.
	if report.Metrics.DurationSec <= 0 {
		t.Errorf("Metrics.DurationSec = %g, want > 0", report.Metrics.DurationSec)
	}
}

func TestAnalyze_CoachFailureDegrades(t *testing.T) {
	eng, err := analysis.New(&asrmock.Provider{Result: steadyResult(10)}, newExtractor(t),
		analysis.WithCoach(&coachmock.Provider{Err: errors.New("llm unavailable")}),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	report, err := eng.Analyze(context.Background(), "talk.wav")
	if err != nil {
		t.Fatalf("Analyze() error = %v, want degraded report", err)
	}
	if report.Feedback != "" {
		t.Errorf("Feedback = %q, want empty", report.Feedback)
	}
	if !strings.Contains(report.CoachError, "llm unavailable") {
		t.Errorf("CoachError = %q, want the coach failure recorded", report.CoachError)
	}
}

func TestAnalyze_EmptyRecording(t *testing.T) {
	eng, err := analysis.New(&asrmock.Provider{Result: &asr.Result{DurationSec: 5}}, newExtractor(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	report, err := eng.Analyze(context.Background(), "silence.wav")
	if err != nil {
		t.Fatalf("Analyze() error = %v, want a valid low-scoring report", err)
	}
	if report.Metrics.WordCount != 0 || report.Metrics.WPM != 0 {
		t.Errorf("WordCount = %d, WPM = %g, want zeros for a silent recording",
			report.Metrics.WordCount, report.Metrics.WPM)
	}
	if len(report.Rubric.Categories) != 7 {
		t.Error("rubric must still be scored for a silent recording")
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	newEngine := func() *analysis.Engine {
		eng, err := analysis.New(&asrmock.Provider{Result: steadyResult(30)}, newExtractor(t),
			analysis.WithProsody(&prosodymock.Provider{Features: prosody.Features{F0StdHz: 25, HNRMeanDB: 15}}),
		)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		return eng
	}

	a, err := newEngine().Analyze(context.Background(), "talk.wav")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	b, err := newEngine().Analyze(context.Background(), "talk.wav")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if a.Metrics != b.Metrics {
		t.Error("identical inputs produced different metrics")
	}
	if a.Rubric.Overall != b.Rubric.Overall {
		t.Errorf("Overall differs between runs: %g vs %g", a.Rubric.Overall, b.Rubric.Overall)
	}
}
