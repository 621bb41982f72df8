// Package coach defines the Provider interface for feedback-generation
// backends.
//
// A coach provider turns a finished analysis — transcript, derived metrics,
// and rubric scores — into short prose coaching tips. Coaching is the only
// non-deterministic step of an analysis and is always best-effort: callers
// must treat a coach failure as a degraded report, never a failed one.
//
// Implementations must be safe for concurrent use.
package coach

import (
	"context"
	"encoding/json"
)

// Request carries everything a coach needs to write feedback. The metric and
// rubric payloads are passed as rendered JSON so backends stay decoupled from
// the analysis types and can inline them into prompts verbatim.
type Request struct {
	// Transcript is the full transcript text. Backends may truncate it to
	// fit prompt budgets.
	Transcript string

	// Metrics is the derived metric mapping, JSON-encoded.
	Metrics json.RawMessage

	// Rubric is the scored rubric, JSON-encoded.
	Rubric json.RawMessage
}

// Provider is the abstraction over any coaching backend.
type Provider interface {
	// Coach generates prioritised feedback for the analysed delivery.
	// Returns the feedback text, or an error if the backend fails or ctx is
	// cancelled.
	Coach(ctx context.Context, req Request) (string, error)
}
