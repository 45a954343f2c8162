package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"feedsight/internal/domain"
)

func TestCosineDistance(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0, CosineDistance([]float64{1, 2}, []float64{2, 4}), 1e-12)
	assert.InDelta(t, 1, CosineDistance([]float64{1, 0}, []float64{0, 1}), 1e-12)
	assert.InDelta(t, 2, CosineDistance([]float64{1, 0}, []float64{-1, 0}), 1e-12)
	assert.Equal(t, 1.0, CosineDistance([]float64{0, 0}, []float64{1, 0}))
}

func TestRankBreaksTiesByID(t *testing.T) {
	t.Parallel()

	res := Rank([]domain.SearchResult{
		{ID: "b", Distance: 0.5},
		{ID: "a", Distance: 0.5},
		{ID: "c", Distance: 0.1},
	}, 2)
	assert.Equal(t, []string{"c", "a"}, []string{res[0].ID, res[1].ID})
}
