package tfidf

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedRequiresPrepare(t *testing.T) {
	t.Parallel()

	_, err := NewEmbedder().Embed(context.Background(), "slow shipping")
	require.Error(t, err)
}

func TestPrepareAndEmbed(t *testing.T) {
	t.Parallel()

	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{
		"shipping was slow",
		"checkout crashed twice",
		"shipping cost too high",
	}))
	assert.Equal(t, "tfidf", e.Name())
	assert.Equal(t, 7, e.Dimension())

	vec, err := e.Embed(context.Background(), "slow slow shipping")
	require.NoError(t, err)
	require.Len(t, vec, e.Dimension())

	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)

	unknown, err := e.Embed(context.Background(), "zebra")
	require.NoError(t, err)
	for _, v := range unknown {
		assert.Zero(t, v)
	}
}

func TestPrepareRejectsEmptyCorpus(t *testing.T) {
	t.Parallel()

	require.Error(t, NewEmbedder().Prepare(nil))
	require.Error(t, NewEmbedder().Prepare([]string{"the and of"}))
}

func TestTerm(t *testing.T) {
	t.Parallel()

	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{"beta alpha"}))
	assert.Equal(t, "alpha", e.Term(0))
	assert.Equal(t, "beta", e.Term(1))
	assert.Equal(t, "", e.Term(5))
}
