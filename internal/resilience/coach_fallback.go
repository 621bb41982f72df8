package resilience

import (
	"context"

	"github.com/MrWong99/cadenza/pkg/provider/coach"
)

// CoachFallback implements [coach.Provider] with automatic failover across
// multiple LLM backends. Each backend has its own circuit breaker; when the
// primary fails or its breaker is open, the next healthy fallback is tried.
type CoachFallback struct {
	group *FallbackGroup[coach.Provider]
}

// Compile-time interface assertion.
var _ coach.Provider = (*CoachFallback)(nil)

// NewCoachFallback creates a [CoachFallback] with primary as the preferred
// backend.
func NewCoachFallback(primary coach.Provider, primaryName string, cfg FallbackConfig) *CoachFallback {
	return &CoachFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional coach provider as a fallback.
func (f *CoachFallback) AddFallback(name string, provider coach.Provider) {
	f.group.AddFallback(name, provider)
}

// Coach sends the request to the first healthy provider and returns its
// feedback. If the primary fails, subsequent fallbacks are tried.
func (f *CoachFallback) Coach(ctx context.Context, req coach.Request) (string, error) {
	return ExecuteWithResult(f.group, func(p coach.Provider) (string, error) {
		return p.Coach(ctx, req)
	})
}
