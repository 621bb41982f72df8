// Package librosaserver provides a spectral provider backed by a librosa
// analysis sidecar.
//
// The sidecar is a small HTTP service wrapping librosa for RMS energy, beat
// tempo, and spectral centroid measurement. It exposes a single POST /extract
// endpoint that accepts a JSON body with the recording path and responds with
// the spectral feature set:
//
//	POST /extract
//	{"path": "/recordings/talk.wav"}
//	→ {"rms_mean": 0.081, "tempo_bpm": 104.2, "spectral_centroid_mean": 1843.0, ...}
//
// The recording path must be reachable from the sidecar, which in practice
// means a shared volume or running both processes on the same host.
//
// Example usage:
//
//	p, err := librosaserver.New("http://localhost:9811")
//	feats, err := p.Extract(ctx, "/recordings/talk.wav")
package librosaserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MrWong99/cadenza/pkg/provider/spectral"
)

// DefaultTimeout bounds a single extraction request.
const DefaultTimeout = 120 * time.Second

// Ensure Provider implements the spectral.Provider interface at compile time.
var _ spectral.Provider = (*Provider)(nil)

// Provider implements spectral.Provider against a librosa analysis sidecar.
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

// New constructs a Provider that connects to the librosa sidecar at baseURL
// (e.g., "http://localhost:9811"). baseURL must be non-empty; a trailing
// slash is stripped automatically.
func New(baseURL string, opts ...Option) (*Provider, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("librosaserver: baseURL must not be empty")
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

// extractRequest is the JSON request body sent to the sidecar's /extract
// endpoint.
type extractRequest struct {
	Path string `json:"path"`
}

// Extract implements spectral.Provider by submitting the recording path to
// the sidecar and decoding the returned feature set.
//
// Returns an error if the HTTP request fails, the sidecar returns a non-200
// status, the response cannot be decoded, or ctx is cancelled.
func (p *Provider) Extract(ctx context.Context, wavPath string) (spectral.Features, error) {
	var feats spectral.Features

	body, err := json.Marshal(extractRequest{Path: wavPath})
	if err != nil {
		return feats, fmt.Errorf("librosaserver: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/extract", bytes.NewReader(body))
	if err != nil {
		return feats, fmt.Errorf("librosaserver: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return feats, fmt.Errorf("librosaserver: http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return feats, fmt.Errorf("librosaserver: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if err := json.NewDecoder(resp.Body).Decode(&feats); err != nil {
		return feats, fmt.Errorf("librosaserver: decode response: %w", err)
	}
	return feats, nil
}
