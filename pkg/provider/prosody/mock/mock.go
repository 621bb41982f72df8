// Package mock provides a test double for the prosody package interfaces.
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/cadenza/pkg/provider/prosody"
)

// AnalyzeCall records a single invocation of Provider.Analyze.
type AnalyzeCall struct {
	// Ctx is the context passed to Analyze.
	Ctx context.Context
	// WavPath is the file path passed to Analyze.
	WavPath string
}

// Provider is a mock implementation of prosody.Provider.
type Provider struct {
	mu sync.Mutex

	// Features is returned by Analyze when Err is nil.
	Features prosody.Features

	// Err, if non-nil, is returned as the error from Analyze.
	Err error

	// AnalyzeCalls records every call to Analyze in order.
	AnalyzeCalls []AnalyzeCall
}

// Analyze records the call and returns Features, Err.
func (p *Provider) Analyze(ctx context.Context, wavPath string) (prosody.Features, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.AnalyzeCalls = append(p.AnalyzeCalls, AnalyzeCall{Ctx: ctx, WavPath: wavPath})
	if p.Err != nil {
		return prosody.Features{}, p.Err
	}
	return p.Features, nil
}

// CallCount returns the number of Analyze calls. Thread-safe.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.AnalyzeCalls)
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.AnalyzeCalls = nil
}

// Ensure Provider implements prosody.Provider at compile time.
var _ prosody.Provider = (*Provider)(nil)
