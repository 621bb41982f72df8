package analysis

import (
	"github.com/MrWong99/cadenza/internal/analysis/metrics"
	"github.com/MrWong99/cadenza/internal/analysis/pause"
	"github.com/MrWong99/cadenza/internal/analysis/rubric"
	"github.com/MrWong99/cadenza/pkg/provider/asr"
)

// Report is the complete result of one analysis run. It marshals to the JSON
// document the CLI prints and is self-contained: the thresholds and cutoffs
// that shaped the numbers are embedded, so a stored report stays
// interpretable after the defaults change.
type Report struct {
	// Audio is the path of the analysed recording.
	Audio string `json:"audio"`

	// Language is the language the transcriber detected or was forced to.
	Language string `json:"language,omitempty"`

	// Transcript is the full transcribed text.
	Transcript string `json:"transcript"`

	// Words carries the word-level timestamps the pause segmentation ran on.
	Words []asr.Word `json:"words,omitempty"`

	// Pauses is the pause segmentation summary.
	Pauses pause.Summary `json:"pauses"`

	// Metrics holds every derived delivery metric.
	Metrics metrics.Derived `json:"metrics"`

	// Rubric is the scored seven-category rubric.
	Rubric rubric.Scorecard `json:"rubric"`

	// Feedback is the coach's text. Empty when no coach is configured or the
	// coach failed; see CoachError.
	Feedback string `json:"feedback,omitempty"`

	// CoachError explains a missing Feedback. A report with a CoachError is
	// degraded, not failed.
	CoachError string `json:"coach_error,omitempty"`

	// Warnings lists measurement stages that were skipped or failed. Metrics
	// depending on a skipped stage are zero, not absent.
	Warnings []string `json:"warnings,omitempty"`
}
