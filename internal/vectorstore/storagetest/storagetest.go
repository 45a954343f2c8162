// Package storagetest holds behavior checks shared by every vectorstore.Storage.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedsight/internal/apperr"
	"feedsight/internal/domain"
	"feedsight/internal/vectorstore"
)

// Run exercises a fresh store returned by newStore for each subtest.
func Run(t *testing.T, newStore func(t *testing.T) vectorstore.Storage) {
	t.Helper()
	ctx := context.Background()

	seed := func(t *testing.T) vectorstore.Storage {
		s := newStore(t)
		require.NoError(t, s.Init(ctx, 3))
		require.NoError(t, s.Upsert(ctx, []domain.Record{
			{ID: "a", Text: "shipping late", Metadata: map[string]any{"team": "ops"}, Embedding: []float64{1, 0, 0}},
			{ID: "b", Text: "app crashes", Metadata: map[string]any{"team": "eng"}, Embedding: []float64{0, 1, 0}},
			{ID: "c", Text: "slow shipping", Metadata: map[string]any{"team": "ops"}, Embedding: []float64{0.9, 0.1, 0}},
		}))
		return s
	}

	t.Run("stored dimension follows init", func(t *testing.T) {
		s := newStore(t)
		dim, err := s.StoredDimension(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, dim)
		require.NoError(t, s.Init(ctx, 3))
		dim, err = s.StoredDimension(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, dim)
	})

	t.Run("search ranks by distance", func(t *testing.T) {
		s := seed(t)
		res, err := s.Search(ctx, []float64{1, 0, 0}, 2, nil)
		require.NoError(t, err)
		require.Len(t, res, 2)
		assert.Equal(t, "a", res[0].ID)
		assert.InDelta(t, 0, res[0].Distance, 1e-9)
		assert.Equal(t, "c", res[1].ID)
		assert.LessOrEqual(t, res[0].Distance, res[1].Distance)
	})

	t.Run("search applies filter", func(t *testing.T) {
		s := seed(t)
		res, err := s.Search(ctx, []float64{1, 0, 0}, 5, domain.Filter{"team": "eng"})
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, "b", res[0].ID)
		assert.Equal(t, "app crashes", res[0].Text)
	})

	t.Run("get and upsert replace", func(t *testing.T) {
		s := seed(t)
		require.NoError(t, s.Upsert(ctx, []domain.Record{
			{ID: "a", Text: "shipping fixed", Metadata: map[string]any{"team": "ops"}, Embedding: []float64{0, 0, 1}},
		}))
		r, err := s.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "shipping fixed", r.Text)
		assert.Equal(t, []float64{0, 0, 1}, r.Embedding)

		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		_, err = s.Get(ctx, "missing")
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		s := seed(t)
		err := s.Upsert(ctx, []domain.Record{{ID: "x", Text: "x", Embedding: []float64{1}}})
		assert.Error(t, err)
	})

	t.Run("delete and clear", func(t *testing.T) {
		s := seed(t)
		require.NoError(t, s.Delete(ctx, []string{"a", "unknown"}))
		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		require.NoError(t, s.Clear(ctx))
		n, err = s.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
		res, err := s.Search(ctx, []float64{1, 0, 0}, 5, nil)
		require.NoError(t, err)
		assert.Empty(t, res)
	})
}
