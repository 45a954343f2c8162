package domain

import "context"

// Document is a single piece of feedback text plus optional scalar metadata.
// Documents are never mutated after validation.
type Document struct {
	ID       string
	Text     string
	Metadata map[string]any
}

// Record is a document persisted in the retrieval index together with its embedding.
type Record struct {
	ID        string
	Text      string
	Metadata  map[string]any
	Embedding []float64
}

// SearchResult is a ranked hit from the retrieval index. Distance is 1 - cosine
// similarity, so lower is closer.
type SearchResult struct {
	ID       string
	Text     string
	Distance float64
	Metadata map[string]any
}

// Filter restricts a search to records whose metadata matches every key exactly.
type Filter map[string]any

// Matches reports whether the metadata satisfies every constraint in f.
func (f Filter) Matches(metadata map[string]any) bool {
	for k, want := range f {
		got, ok := metadata[k]
		if !ok || !scalarEqual(got, want) {
			return false
		}
	}
	return true
}

func scalarEqual(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
		return false
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// EmotionScorer classifies each text into a distribution over the canonical labels.
// The result has one entry per input, in input order.
type EmotionScorer interface {
	Score(ctx context.Context, texts []string) ([]EmotionScore, error)
}

// Summarizer produces a brief extractive summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
