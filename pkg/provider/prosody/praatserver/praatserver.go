// Package praatserver provides a prosody provider backed by a Praat analysis
// sidecar.
//
// The sidecar is a small HTTP service wrapping Praat/parselmouth, the
// reference implementation for jitter, shimmer, HNR, and CPPs measurement.
// It exposes a single POST /analyze endpoint that accepts a JSON body with
// the recording path and responds with the full acoustic feature set:
//
//	POST /analyze
//	{"path": "/recordings/talk.wav"}
//	→ {"duration_sec": 61.2, "f0_mean_hz": 182.4, "jitter_local": 0.011, ...}
//
// The recording path must be reachable from the sidecar, which in practice
// means a shared volume or running both processes on the same host.
//
// Example usage:
//
//	p, err := praatserver.New("http://localhost:9810")
//	feats, err := p.Analyze(ctx, "/recordings/talk.wav")
package praatserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MrWong99/cadenza/pkg/provider/prosody"
)

// DefaultTimeout bounds a single analysis request. Praat analysis of a long
// recording is CPU-bound and can legitimately take tens of seconds.
const DefaultTimeout = 120 * time.Second

// Ensure Provider implements the prosody.Provider interface at compile time.
var _ prosody.Provider = (*Provider)(nil)

// Provider implements prosody.Provider against a Praat analysis sidecar.
// Provider is safe for concurrent use.
type Provider struct {
	baseURL    string
	httpClient *http.Client
}

// Option is a functional option for Provider.
type Option func(*Provider)

// WithTimeout overrides the per-request timeout. A zero or negative value
// keeps DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client entirely, for callers
// that need custom transports. Overrides WithTimeout.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		if c != nil {
			p.httpClient = c
		}
	}
}

// New constructs a Provider that connects to the Praat sidecar at baseURL
// (e.g., "http://localhost:9810"). baseURL must be non-empty; a trailing
// slash is stripped automatically.
func New(baseURL string, opts ...Option) (*Provider, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("praatserver: baseURL must not be empty")
	}
	p := &Provider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// analyzeRequest is the JSON request body sent to the sidecar's /analyze
// endpoint.
type analyzeRequest struct {
	Path string `json:"path"`
}

// Analyze implements prosody.Provider by submitting the recording path to the
// sidecar and decoding the returned feature set.
//
// Returns an error if the HTTP request fails, the sidecar returns a non-200
// status, the response cannot be decoded, or ctx is cancelled.
func (p *Provider) Analyze(ctx context.Context, wavPath string) (prosody.Features, error) {
	var feats prosody.Features

	body, err := json.Marshal(analyzeRequest{Path: wavPath})
	if err != nil {
		return feats, fmt.Errorf("praatserver: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return feats, fmt.Errorf("praatserver: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return feats, fmt.Errorf("praatserver: http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return feats, fmt.Errorf("praatserver: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if err := json.NewDecoder(resp.Body).Decode(&feats); err != nil {
		return feats, fmt.Errorf("praatserver: decode response: %w", err)
	}
	return feats, nil
}
