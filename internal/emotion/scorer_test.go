package emotion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedsight/internal/domain"
)

func TestLexiconScorerPreservesOrder(t *testing.T) {
	t.Parallel()

	texts := []string{
		"I love this, it is amazing",
		"This is terrible, I hate it",
		"The package arrived on Tuesday",
	}
	scores, err := NewLexiconScorer().Score(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, scores, 3)

	assert.Equal(t, domain.Joy, scores[0].Dominant)
	assert.Equal(t, domain.SentimentPositive, scores[0].Sentiment)
	assert.Equal(t, domain.Anger, scores[1].Dominant)
	assert.Equal(t, domain.SentimentNegative, scores[1].Sentiment)
	assert.Equal(t, domain.Neutral, scores[2].Dominant)
	assert.Zero(t, scores[2].Compound)
}

func TestLexiconScorerEmptyText(t *testing.T) {
	t.Parallel()

	scores, err := NewLexiconScorer().Score(context.Background(), []string{"", "   \t"})
	require.NoError(t, err)
	for _, s := range scores {
		assert.Equal(t, domain.Neutral, s.Dominant)
		assert.Equal(t, 1.0, s.Scores[domain.Neutral])
		assert.Zero(t, s.Compound)
		assert.Equal(t, 1.0, s.Neu)
	}
}

func TestLexiconScorerNegation(t *testing.T) {
	t.Parallel()

	s := NewLexiconScorer().ScoreOne("The food was not good")
	assert.Less(t, s.Compound, 0.0)
	assert.Equal(t, domain.SentimentNegative, s.Sentiment)
	assert.Equal(t, domain.Neutral, s.Dominant)
}

func TestLexiconScorerBoundsAndArgmax(t *testing.T) {
	t.Parallel()

	texts := []string{
		"Extremely frustrated!!! Worst support ever, totally useless and rude.",
		"Wow, what a surprise, I'm amazed",
		"I'm worried and a little scared about the data breach",
		"Sadly the update was a letdown",
	}
	scores, err := NewLexiconScorer().Score(context.Background(), texts)
	require.NoError(t, err)
	for _, s := range scores {
		assert.GreaterOrEqual(t, s.Compound, -1.0)
		assert.LessOrEqual(t, s.Compound, 1.0)
		sum := 0.0
		for _, v := range s.Scores {
			assert.GreaterOrEqual(t, v, 0.0)
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
		assert.Equal(t, domain.ArgmaxLabel(s.Scores), s.Dominant)
	}
	assert.Equal(t, domain.Anger, scores[0].Dominant)
	assert.Equal(t, domain.Surprise, scores[1].Dominant)
	assert.Equal(t, domain.Fear, scores[2].Dominant)
	assert.Equal(t, domain.Sadness, scores[3].Dominant)
}

func TestLexiconScorerCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLexiconScorer().Score(ctx, []string{"fine"})
	require.ErrorIs(t, err, context.Canceled)
}
