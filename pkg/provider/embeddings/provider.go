// Package embeddings defines the Provider interface for sentence-embedding
// backends.
//
// An embeddings provider wraps a service that maps text strings to dense
// float32 vectors (e.g., OpenAI text-embedding-3 or a local Ollama model
// such as nomic-embed-text or all-minilm). Cadenza uses these vectors for a
// single purpose: scoring the semantic coherence of adjacent transcript
// sentences. The coherence stage is optional — when no provider is
// configured the analysis falls back to a neutral score instead of failing.
//
// Implementations must be safe for concurrent use.
package embeddings

import "context"

// Provider is the abstraction over any text-embedding backend.
//
// All vectors returned by a single Provider instance share the same
// dimensionality. Callers must not mix vectors from different Provider
// instances in one similarity computation.
//
// Implementations must be safe for concurrent use.
type Provider interface {
	// Embed computes the embedding vector for a single text string. Returns
	// an error if the request fails or ctx is cancelled.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch computes embedding vectors for a slice of text strings in a
	// single provider call. The returned slice has the same length as texts
	// and the i-th element corresponds to texts[i].
	//
	// Returns an error if any single embedding fails or if ctx is cancelled.
	// Partial results are not returned — on error the entire slice is nil.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// ModelID returns the provider-specific model identifier (e.g.,
	// "text-embedding-3-small", "nomic-embed-text"). Useful for logging and
	// for the coherence status string in reports.
	ModelID() string
}
