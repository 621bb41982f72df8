package linguistic

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
)

// neutralCoherence is the score reported when coherence cannot be computed:
// too few sentences, no embeddings backend, or a backend failure. Neutral
// rather than zero, so a missing optional collaborator does not read as an
// incoherent speaker.
const neutralCoherence = 0.5

// sentenceSplit separates sentences on terminal punctuation.
var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// splitSentences returns the non-empty, trimmed sentences of text.
func splitSentences(text string) []string {
	parts := sentenceSplit.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// coherence scores how semantically connected adjacent sentences are: the
// mean cosine similarity of their embedding vectors, clamped to [0, 1].
//
// Degradations never surface as errors. With fewer than two sentences or no
// embeddings provider the neutral default is returned; a provider failure
// likewise falls back to the default with the error recorded in the status
// string.
func (e *Extractor) coherence(ctx context.Context, text string) (score float64, sentenceCount int, avgSimilarity float64, details string) {
	sentences := splitSentences(text)
	if len(sentences) < 2 {
		return neutralCoherence, len(sentences), 0, "not enough sentences for coherence analysis"
	}
	if e.embedder == nil {
		return neutralCoherence, len(sentences), 0, "no embeddings backend configured"
	}

	vectors, err := e.embedder.EmbedBatch(ctx, sentences)
	if err != nil {
		return neutralCoherence, len(sentences), 0,
			fmt.Sprintf("embeddings backend %s failed: %v", e.embedder.ModelID(), err)
	}

	var sum float64
	pairs := 0
	for i := 0; i+1 < len(vectors); i++ {
		sum += cosineSimilarity(vectors[i], vectors[i+1])
		pairs++
	}
	if pairs == 0 {
		return neutralCoherence, len(sentences), 0, "no adjacent sentence pairs"
	}

	avg := sum / float64(pairs)
	clamped := math.Min(1.0, math.Max(0.0, avg))
	return clamped, len(sentences), avg,
		fmt.Sprintf("average similarity %.3f over %d pairs (%s)", avg, pairs, e.embedder.ModelID())
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths or zero-magnitude vectors score zero.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
