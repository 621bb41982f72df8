// Package asr defines the Provider interface for batch speech recognition
// backends.
//
// An ASR provider transcribes a complete recording in one call and returns
// the full text together with word-level timings. The word timings are the
// primary product: downstream pause segmentation needs the start and end of
// every word, not just the prose.
//
// Implementations must be safe for concurrent use.
package asr

import "context"

// Word is a single recognised word with its position in the recording.
type Word struct {
	// Text is the word as recognised, without surrounding whitespace.
	Text string `json:"text"`

	// Start and End are offsets from the beginning of the recording, in
	// seconds. End is always >= Start.
	Start float64 `json:"start"`
	End   float64 `json:"end"`

	// Confidence is the recognition probability in [0, 1]. May be zero if
	// the backend does not report per-word confidence.
	Confidence float64 `json:"confidence"`
}

// Result is a complete transcription of one recording.
type Result struct {
	// Language is the language the backend recognised or was configured
	// with, as a short code such as "en".
	Language string `json:"language"`

	// DurationSec is the audio duration in seconds as measured from the
	// decoded samples.
	DurationSec float64 `json:"duration_sec"`

	// Text is the full transcript with normalised single-space joins.
	Text string `json:"text"`

	// Words holds the per-word timings in recording order. May be empty for
	// a silent recording.
	Words []Word `json:"words"`
}

// Provider is the abstraction over any batch ASR backend.
type Provider interface {
	// Transcribe reads the audio file at wavPath and returns its full
	// transcription. The file must be a RIFF/WAV container with 16-bit
	// signed little-endian PCM samples.
	//
	// Returns an error if the file cannot be read or decoded, or if the
	// backend fails. A silent recording is not an error: it yields a Result
	// with empty Text and Words.
	Transcribe(ctx context.Context, wavPath string) (*Result, error)
}
