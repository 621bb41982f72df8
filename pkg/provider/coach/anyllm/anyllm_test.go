package anyllm

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/MrWong99/cadenza/pkg/provider/coach"
)

// ── New ───────────────────────────────────────────────────────────────────────

func TestNew_EmptyProviderName(t *testing.T) {
	if _, err := New("", "mistral:7b"); err == nil {
		t.Fatal("expected error for empty provider name")
	}
}

func TestNew_EmptyModel(t *testing.T) {
	if _, err := New("ollama", ""); err == nil {
		t.Fatal("expected error for empty model")
	}
}

func TestNew_UnsupportedProvider(t *testing.T) {
	_, err := New("watson", "some-model")
	if err == nil {
		t.Fatal("expected error for unsupported provider")
	}
	if !strings.Contains(err.Error(), "watson") {
		t.Errorf("error should name the provider: %v", err)
	}
}

func TestNewOllama(t *testing.T) {
	p, err := NewOllama("mistral:7b")
	if err != nil {
		t.Fatalf("NewOllama: %v", err)
	}
	if p.model != "mistral:7b" {
		t.Errorf("model = %q", p.model)
	}
}

// ── buildPrompt ───────────────────────────────────────────────────────────────

func TestBuildPrompt(t *testing.T) {
	req := coach.Request{
		Transcript: "Good evening everyone. Tonight I want to talk about tides.",
		Metrics:    json.RawMessage(`{"wpm": 148.2, "clarity_index": 0.81}`),
		Rubric:     json.RawMessage(`{"overall": 4.1}`),
	}

	prompt := buildPrompt(req)

	for _, want := range []string{
		"Metrics:\n",
		`"wpm": 148.2`,
		"Rubric Scores:\n",
		`"overall": 4.1`,
		"Transcript (excerpt):\n",
		"talk about tides",
		"Write feedback",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt is missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildPrompt_TruncatesTranscript(t *testing.T) {
	req := coach.Request{
		Transcript: strings.Repeat("word ", 1000), // 5000 bytes
		Metrics:    json.RawMessage(`{}`),
		Rubric:     json.RawMessage(`{}`),
	}
	prompt := buildPrompt(req)

	start := strings.Index(prompt, "Transcript (excerpt):\n")
	end := strings.Index(prompt, "\n\nWrite feedback")
	if start < 0 || end < 0 || end <= start {
		t.Fatalf("prompt sections missing:\n%s", prompt)
	}
	got := prompt[start+len("Transcript (excerpt):\n") : end]
	if len(got) > transcriptExcerptLen {
		t.Errorf("excerpt is %d bytes, want at most %d", len(got), transcriptExcerptLen)
	}
}

// ── excerpt ───────────────────────────────────────────────────────────────────

func TestExcerpt(t *testing.T) {
	if got := excerpt("short", 1200); got != "short" {
		t.Errorf("short input should pass through, got %q", got)
	}

	long := strings.Repeat("a", 2000)
	if got := excerpt(long, 1200); len(got) != 1200 {
		t.Errorf("got %d bytes, want 1200", len(got))
	}
}

func TestExcerpt_DoesNotSplitRunes(t *testing.T) {
	// "é" is two bytes; a cut limit of 3 lands mid-rune.
	s := "aéé"
	got := excerpt(s, 2)
	if !utf8.ValidString(got) {
		t.Errorf("excerpt produced invalid UTF-8: %q", got)
	}
	if got != "a" {
		t.Errorf("got %q, want %q", got, "a")
	}
}
