package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedsight/internal/domain"
	"feedsight/internal/vectorstore"
	"feedsight/internal/vectorstore/storagetest"
)

func TestStorage(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) vectorstore.Storage { return NewStorage() })
}

func TestGetReturnsCopy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := NewStorage()
	require.NoError(t, s.Init(ctx, 2))
	require.NoError(t, s.Upsert(ctx, []domain.Record{{ID: "a", Text: "x", Metadata: map[string]any{"k": "v"}, Embedding: []float64{1, 0}}}))

	r, err := s.Get(ctx, "a")
	require.NoError(t, err)
	r.Metadata["k"] = "changed"
	r.Embedding[0] = 9

	again, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "v", again.Metadata["k"])
	assert.Equal(t, 1.0, again.Embedding[0])
}
