// Package whisper provides an asr.Provider backed by the whisper.cpp CGO
// bindings. The whisper.cpp static library (libwhisper.a) and headers
// (whisper.h) must be available at link time via LIBRARY_PATH and
// C_INCLUDE_PATH environment variables.
//
// The model is loaded once at construction and shared across all Transcribe
// calls; each call creates its own whisper context, so concurrent
// transcriptions do not interfere.
//
// Usage:
//
//	p, err := whisper.New("models/ggml-base.en.bin", whisper.WithLanguage("en"))
//	result, err := p.Transcribe(ctx, "talk.wav")
//	p.Close()
package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/MrWong99/cadenza/pkg/provider/asr"
	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

const defaultLanguage = "en"

// Compile-time assertion that Provider satisfies asr.Provider.
var _ asr.Provider = (*Provider)(nil)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithLanguage sets the language code for transcription (e.g., "en", "de").
// Defaults to "en".
func WithLanguage(lang string) Option {
	return func(p *Provider) { p.language = lang }
}

// WithThreads sets the number of CPU threads whisper.cpp may use per
// inference. Zero (the default) lets the bindings pick.
func WithThreads(n int) Option {
	return func(p *Provider) { p.threads = n }
}

// Provider implements asr.Provider using a locally loaded whisper.cpp model.
type Provider struct {
	model    whisperlib.Model
	language string
	threads  int
}

// New creates a Provider that loads the whisper.cpp model from the given file
// path. The caller must call Close when the provider is no longer needed.
func New(modelPath string, opts ...Option) (*Provider, error) {
	if modelPath == "" {
		return nil, errors.New("whisper: modelPath must not be empty")
	}
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: load model %q: %w", modelPath, err)
	}

	p := &Provider{
		model:    model,
		language: defaultLanguage,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Close releases the whisper model.
func (p *Provider) Close() error {
	if p.model != nil {
		return p.model.Close()
	}
	return nil
}

// Transcribe decodes the WAV file at wavPath, runs whisper.cpp inference with
// token timestamps enabled, and assembles the word-level result.
func (p *Provider) Transcribe(ctx context.Context, wavPath string) (*asr.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("whisper: context already cancelled: %w", err)
	}

	data, err := os.ReadFile(wavPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: read %q: %w", wavPath, err)
	}
	samples, sampleRate, err := decodeWAV(data)
	if err != nil {
		return nil, fmt.Errorf("whisper: decode %q: %w", wavPath, err)
	}

	duration := 0.0
	if sampleRate > 0 {
		duration = float64(len(samples)) / float64(sampleRate)
	}

	// Each whisper context is NOT thread-safe, but the model can be shared
	// across goroutines, so a fresh context per call is the cheap option.
	wctx, err := p.model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("whisper: create context: %w", err)
	}
	if err := wctx.SetLanguage(p.language); err != nil {
		return nil, fmt.Errorf("whisper: set language %q: %w", p.language, err)
	}
	wctx.SetTokenTimestamps(true)
	if p.threads > 0 {
		wctx.SetThreads(uint(p.threads))
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("whisper: process audio: %w", err)
	}

	var (
		parts []string
		words []asr.Word
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("whisper: cancelled while reading segments: %w", err)
		}
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("whisper: read segment: %w", err)
		}
		text := strings.TrimSpace(segment.Text)
		if text != "" {
			parts = append(parts, text)
		}
		words = append(words, segmentWords(segment)...)
	}

	return &asr.Result{
		Language:    p.language,
		DurationSec: duration,
		Text:        strings.Join(parts, " "),
		Words:       words,
	}, nil
}

// segmentWords merges a segment's subword tokens into words. Whisper tokens
// carry a leading space when they open a new word, so a space-prefixed token
// starts a word and suffix tokens extend the current one. Special markers
// such as "[_BEG_]" are skipped.
func segmentWords(segment whisperlib.Segment) []asr.Word {
	var (
		words   []asr.Word
		cur     strings.Builder
		curWord asr.Word
		probSum float64
		tokens  int
	)

	flush := func() {
		if cur.Len() == 0 {
			return
		}
		curWord.Text = cur.String()
		if tokens > 0 {
			curWord.Confidence = probSum / float64(tokens)
		}
		words = append(words, curWord)
		cur.Reset()
		curWord = asr.Word{}
		probSum = 0
		tokens = 0
	}

	for _, tok := range segment.Tokens {
		text := tok.Text
		if text == "" || (strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]")) {
			continue
		}

		if strings.HasPrefix(text, " ") || cur.Len() == 0 {
			flush()
			curWord.Start = tok.Start.Seconds()
		}
		cur.WriteString(strings.TrimSpace(text))
		curWord.End = tok.End.Seconds()
		probSum += float64(tok.P)
		tokens++
	}
	flush()

	return words
}
