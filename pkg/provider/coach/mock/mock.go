// Package mock provides a test double for the coach package interfaces.
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/cadenza/pkg/provider/coach"
)

// CoachCall records a single invocation of Provider.Coach.
type CoachCall struct {
	// Ctx is the context passed to Coach.
	Ctx context.Context
	// Req is the request passed to Coach.
	Req coach.Request
}

// Provider is a mock implementation of coach.Provider.
type Provider struct {
	mu sync.Mutex

	// Feedback is returned by Coach when Err is nil.
	Feedback string

	// Err, if non-nil, is returned as the error from Coach.
	Err error

	// CoachCalls records every call to Coach in order.
	CoachCalls []CoachCall
}

// Coach records the call and returns Feedback, Err.
func (p *Provider) Coach(ctx context.Context, req coach.Request) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CoachCalls = append(p.CoachCalls, CoachCall{Ctx: ctx, Req: req})
	if p.Err != nil {
		return "", p.Err
	}
	return p.Feedback, nil
}

// CallCount returns the number of Coach calls. Thread-safe.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.CoachCalls)
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CoachCalls = nil
}

// Ensure Provider implements coach.Provider at compile time.
var _ coach.Provider = (*Provider)(nil)
