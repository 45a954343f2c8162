package hashing

import (
	"context"
	"hash/fnv"
	"math"

	"feedsight/internal/textproc"
)

const defaultDimension = 384

// Embedder maps tokens and adjacent token pairs into a fixed number of
// buckets with signed feature hashing. It needs no corpus, so vectors from
// different batches share one space and can live in the same index.
type Embedder struct {
	dimension int
}

// NewEmbedder creates a hashing embedder with the given dimension (384 when <= 0).
func NewEmbedder(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = defaultDimension
	}
	return &Embedder{dimension: dimension}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "hashing" }

// Prepare is a no-op: the feature space is fixed.
func (e *Embedder) Prepare(corpus []string) error { return nil }

// Dimension returns the dimensionality of the produced embedding vectors.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed returns the L2-normalized hashed feature vector of text. Text made
// only of stopwords is hashed over all its words instead; only text without
// any letters maps to the zero vector.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float64, e.dimension)
	tokens := textproc.Tokenize(text)
	if len(tokens) == 0 {
		tokens = textproc.Words(text)
	}
	for i, tok := range tokens {
		e.add(vec, tok, 1)
		if i > 0 {
			// bigrams weigh less than unigrams
			e.add(vec, tokens[i-1]+" "+tok, 0.5)
		}
	}
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

func (e *Embedder) add(vec []float64, feature string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	idx := int(sum % uint64(e.dimension))
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[idx] += weight
}
