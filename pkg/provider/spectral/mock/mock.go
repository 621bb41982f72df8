// Package mock provides a test double for the spectral package interfaces.
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/cadenza/pkg/provider/spectral"
)

// ExtractCall records a single invocation of Provider.Extract.
type ExtractCall struct {
	// Ctx is the context passed to Extract.
	Ctx context.Context
	// WavPath is the file path passed to Extract.
	WavPath string
}

// Provider is a mock implementation of spectral.Provider.
type Provider struct {
	mu sync.Mutex

	// Features is returned by Extract when Err is nil.
	Features spectral.Features

	// Err, if non-nil, is returned as the error from Extract.
	Err error

	// ExtractCalls records every call to Extract in order.
	ExtractCalls []ExtractCall
}

// Extract records the call and returns Features, Err.
func (p *Provider) Extract(ctx context.Context, wavPath string) (spectral.Features, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ExtractCalls = append(p.ExtractCalls, ExtractCall{Ctx: ctx, WavPath: wavPath})
	if p.Err != nil {
		return spectral.Features{}, p.Err
	}
	return p.Features, nil
}

// CallCount returns the number of Extract calls. Thread-safe.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.ExtractCalls)
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ExtractCalls = nil
}

// Ensure Provider implements spectral.Provider at compile time.
var _ spectral.Provider = (*Provider)(nil)
