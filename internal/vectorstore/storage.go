package vectorstore

import (
	"context"
	"math"
	"sort"

	"feedsight/internal/domain"
)

// Storage abstracts a vector database backend. Search ranks by cosine
// distance (1 - cosine similarity), ascending, ties broken by id.
type Storage interface {
	Init(ctx context.Context, dimension int) error
	// StoredDimension reports the dimension of an existing persisted index, or
	// 0 when nothing has been initialized yet.
	StoredDimension(ctx context.Context) (int, error)
	Upsert(ctx context.Context, records []domain.Record) error
	Search(ctx context.Context, vector []float64, topK int, filter domain.Filter) ([]domain.SearchResult, error)
	// Get returns the record with id, or an apperr not-found error.
	Get(ctx context.Context, id string) (*domain.Record, error)
	Delete(ctx context.Context, ids []string) error
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
	Close() error
}

// CosineDistance returns 1 - cosine similarity; a zero vector is at distance 1
// from everything.
func CosineDistance(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	for _, x := range a {
		na += x * x
	}
	for _, x := range b {
		nb += x * x
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// Rank sorts results by ascending distance, ties by id, and keeps topK.
func Rank(results []domain.SearchResult, topK int) []domain.SearchResult {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].ID < results[j].ID
	})
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results
}

// CopyMetadata returns a shallow copy so callers cannot mutate stored records.
func CopyMetadata(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
