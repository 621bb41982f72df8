// Package linguistic derives delivery features from transcript text: the
// articulation rate in syllables per second of actual speech time, filler-word
// usage, self-repair disfluencies, and the semantic coherence of adjacent
// sentences.
//
// The extractor is configured once with static word/pattern sets (versioned
// configuration data, so locales or domains can swap them without touching
// scoring logic) and is then safe for concurrent use. All features except
// coherence are computed purely in-process; coherence calls an optional
// embeddings provider and falls back to a neutral default when none is
// available.
package linguistic

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/MrWong99/cadenza/pkg/provider/embeddings"
)

// epsilon guards ratio divisions against zero word counts.
const epsilon = 1e-8

// Config holds the static word and pattern sets the extractor scans for.
// The zero value is not useful; start from DefaultConfig.
type Config struct {
	// FillerWords are single-token fillers counted case-insensitively
	// (e.g., "um", "uh", "like").
	FillerWords []string `yaml:"filler_words"`

	// FillerPhrases are multi-word fillers matched as consecutive token
	// sequences (e.g., "you know", "sort of").
	FillerPhrases []string `yaml:"filler_phrases"`

	// RepairPatterns are case-insensitive regular expressions matching
	// self-repair phrasings ("I mean" and variants). Each match counts as
	// one repair.
	RepairPatterns []string `yaml:"repair_patterns"`

	// RepetitionSimilarity is the Jaro-Winkler threshold above which two
	// adjacent words of four or more letters are treated as a stutter
	// repetition ("belie believe"). Identical adjacent words always count.
	RepetitionSimilarity float64 `yaml:"repetition_similarity"`
}

// Validate reports an error when RepetitionSimilarity lies outside (0, 1].
// Zero is allowed; it selects the [DefaultConfig] threshold.
func (c Config) Validate() error {
	if c.RepetitionSimilarity != 0 && (c.RepetitionSimilarity < 0 || c.RepetitionSimilarity > 1) {
		return fmt.Errorf("linguistic: repetition_similarity %g outside (0, 1]", c.RepetitionSimilarity)
	}
	return nil
}

// DefaultConfig returns the built-in English word and pattern sets.
func DefaultConfig() Config {
	return Config{
		FillerWords:   []string{"um", "uh", "erm", "er", "like"},
		FillerPhrases: []string{"you know", "sort of", "kind of"},
		RepairPatterns: []string{
			`\bI\s+mean\b`,
			`\bno,\s*I\s+mean\b`,
			`\bwell,\s*I\s+mean\b`,
			`\byou\s+know\s+what\s+I\s+mean\b`,
			`\bactually,\s*I\s+mean\b`,
			`\bI\s+guess\s+I\s+mean\b`,
			`\bso\s+I\s+mean\b`,
			`\bwhat\s+I\s+mean\s+is\b`,
		},
		RepetitionSimilarity: 0.92,
	}
}

// RepairMatch records the matches of one repair pattern for report detail.
type RepairMatch struct {
	// Pattern is the source pattern, or "word repetition" for the
	// repetition detector.
	Pattern string `json:"pattern"`

	// Count is the number of matches of this pattern.
	Count int `json:"matches"`

	// Examples holds up to three matched text fragments.
	Examples []string `json:"examples,omitempty"`
}

// Features is the full linguistic feature set for one transcript.
type Features struct {
	// WordCount is the number of alphabetic word tokens.
	WordCount int `json:"word_count"`

	// SyllableCount is the summed syllable estimate over all words.
	SyllableCount int `json:"syllable_count"`

	// SpeechTimeSec is duration × (1 − pause_ratio): the time actually
	// spent speaking.
	SpeechTimeSec float64 `json:"speech_time_sec"`

	// ArticulationRate is syllables per second of speech time. Zero when
	// there is no speech time.
	ArticulationRate float64 `json:"articulation_rate"`

	// TargetRangeMet reports whether ArticulationRate falls in the
	// comfortable 3.5–5.5 syl/s band.
	TargetRangeMet bool `json:"target_range_met"`

	// FillerCount and FillerRatio track filler usage against WordCount.
	FillerCount int     `json:"filler_count"`
	FillerRatio float64 `json:"filler_ratio"`

	// RepairCount and RepairRate track self-repair disfluencies against
	// WordCount; Repairs holds per-pattern detail.
	RepairCount int           `json:"repair_count"`
	RepairRate  float64       `json:"repair_rate"`
	Repairs     []RepairMatch `json:"repair_details,omitempty"`

	// SentenceCount is the number of non-empty sentences found.
	SentenceCount int `json:"sentence_count"`

	// CoherenceScore is the mean cosine similarity of adjacent sentence
	// embeddings, clamped to [0, 1], or the neutral 0.5 default when no
	// embeddings backend is available or fewer than two sentences exist.
	CoherenceScore float64 `json:"coherence_score"`

	// AvgSimilarity is the unclamped mean similarity (zero when coherence
	// was defaulted).
	AvgSimilarity float64 `json:"avg_similarity"`

	// CoherenceDetails is a human-readable status string explaining how
	// CoherenceScore was obtained.
	CoherenceDetails string `json:"coherence_details"`
}

// Option is a functional option for configuring an [Extractor].
type Option func(*Extractor)

// WithEmbeddings attaches an embeddings provider used for sentence coherence.
// When nil (the default), coherence falls back to the neutral score.
func WithEmbeddings(p embeddings.Provider) Option {
	return func(e *Extractor) {
		e.embedder = p
	}
}

// Extractor computes [Features] from transcript text. It is read-only after
// construction and safe for concurrent use.
type Extractor struct {
	fillerWords   map[string]struct{}
	fillerPhrases [][]string
	patterns      []*regexp.Regexp
	patternSrc    []string
	repSimilarity float64
	embedder      embeddings.Provider
}

// New constructs an [Extractor] from cfg. It returns an error when any repair
// pattern fails to compile or the repetition similarity lies outside (0, 1],
// which makes a bad pattern set a startup failure rather than a silent
// scoring gap. A zero RepetitionSimilarity takes the [DefaultConfig] value;
// a Jaro-Winkler threshold of 0 would count every adjacent word pair as a
// stutter.
func New(cfg Config, opts ...Option) (*Extractor, error) {
	if cfg.RepetitionSimilarity == 0 {
		cfg.RepetitionSimilarity = DefaultConfig().RepetitionSimilarity
	}
	if cfg.RepetitionSimilarity < 0 || cfg.RepetitionSimilarity > 1 {
		return nil, fmt.Errorf("linguistic: repetition_similarity %g outside (0, 1]", cfg.RepetitionSimilarity)
	}
	e := &Extractor{
		fillerWords:   make(map[string]struct{}, len(cfg.FillerWords)),
		repSimilarity: cfg.RepetitionSimilarity,
	}
	for _, w := range cfg.FillerWords {
		e.fillerWords[strings.ToLower(w)] = struct{}{}
	}
	for _, p := range cfg.FillerPhrases {
		tokens := Tokenize(p)
		if len(tokens) > 1 {
			e.fillerPhrases = append(e.fillerPhrases, tokens)
		}
	}
	for _, src := range cfg.RepairPatterns {
		re, err := regexp.Compile(`(?i)` + src)
		if err != nil {
			return nil, fmt.Errorf("linguistic: compile repair pattern %q: %w", src, err)
		}
		e.patterns = append(e.patterns, re)
		e.patternSrc = append(e.patternSrc, src)
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Extract computes the full feature set for text. durationSec is the total
// recording duration and pauseRatio the fraction of it spent in pauses (from
// the pause segmenter).
//
// Extract never fails: empty text yields zero counts and the neutral
// coherence default, and an unavailable embeddings backend degrades to the
// same default with an explanatory status string.
func (e *Extractor) Extract(ctx context.Context, text string, durationSec, pauseRatio float64) Features {
	words := Tokenize(text)

	f := Features{WordCount: len(words)}

	// Articulation rate.
	for _, w := range words {
		f.SyllableCount += CountSyllables(w)
	}
	f.SpeechTimeSec = durationSec * (1.0 - pauseRatio)
	if len(words) > 0 && f.SpeechTimeSec > 0 {
		f.ArticulationRate = float64(f.SyllableCount) / f.SpeechTimeSec
	} else {
		f.SpeechTimeSec = max(f.SpeechTimeSec, 0)
	}
	f.TargetRangeMet = f.ArticulationRate >= 3.5 && f.ArticulationRate <= 5.5

	// Fillers.
	f.FillerCount = e.countFillers(words)
	f.FillerRatio = float64(f.FillerCount) / (float64(len(words)) + epsilon)

	// Self-repairs.
	f.Repairs = e.detectRepairs(text, words)
	for _, r := range f.Repairs {
		f.RepairCount += r.Count
	}
	f.RepairRate = float64(f.RepairCount) / float64(max(len(words), 1))

	// Coherence.
	f.CoherenceScore, f.SentenceCount, f.AvgSimilarity, f.CoherenceDetails = e.coherence(ctx, text)

	return f
}

// countFillers counts single-token fillers plus multi-word filler phrases
// over the tokenised transcript. Phrase matches consume their tokens so a
// phrase is never double-counted as its constituent words.
func (e *Extractor) countFillers(words []string) int {
	count := 0
	i := 0
	for i < len(words) {
		matched := 0
		for _, phrase := range e.fillerPhrases {
			if len(phrase) > len(words)-i {
				continue
			}
			hit := true
			for j, p := range phrase {
				if words[i+j] != p {
					hit = false
					break
				}
			}
			if hit && len(phrase) > matched {
				matched = len(phrase)
			}
		}
		if matched > 0 {
			count++
			i += matched
			continue
		}
		if _, ok := e.fillerWords[words[i]]; ok {
			count++
		}
		i++
	}
	return count
}
