package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedsight/internal/db"
	"feedsight/internal/domain"
	"feedsight/internal/vectorstore"
	"feedsight/internal/vectorstore/storagetest"
)

func TestStorage(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) vectorstore.Storage {
		conn, err := db.NewSQLiteDB(db.MemoryDSN)
		require.NoError(t, err)
		s := NewOwnedStorage(conn)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestReopenKeepsRecordsAndDimension(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.db")

	conn, err := db.NewSQLiteDB(path)
	require.NoError(t, err)
	s := NewOwnedStorage(conn)
	require.NoError(t, s.Init(ctx, 2))
	require.NoError(t, s.Upsert(ctx, []domain.Record{
		{ID: "doc_0", Text: "late delivery", Metadata: map[string]any{"rating": 2.0}, Embedding: []float64{0.6, 0.8}},
	}))
	require.NoError(t, s.Close())

	conn, err = db.NewSQLiteDB(path)
	require.NoError(t, err)
	s = NewOwnedStorage(conn)
	defer s.Close()

	dim, err := s.StoredDimension(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, dim)

	assert.Error(t, s.Init(ctx, 3))
	require.NoError(t, s.Init(ctx, 2))

	r, err := s.Get(ctx, "doc_0")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.6, 0.8}, r.Embedding)
	assert.Equal(t, map[string]any{"rating": 2.0}, r.Metadata)

	res, err := s.Search(ctx, []float64{0.6, 0.8}, 1, domain.Filter{"rating": 2})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.InDelta(t, 0, res[0].Distance, 1e-9)
}

func TestEncodeRoundTrip(t *testing.T) {
	t.Parallel()

	v := []float64{0, -1.5, 3.25}
	assert.Equal(t, v, decode(encode(v)))
}
