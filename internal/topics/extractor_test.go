package topics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedsight/internal/apperr"
	"feedsight/internal/config"
	"feedsight/internal/domain"
)

var shipping = []string{
	"delivery was late and the courier never called",
	"slow delivery, parcel arrived damaged",
	"delivery took three weeks",
	"the courier left my delivery in the rain",
	"delivery tracking never updated",
	"fast delivery but wrong parcel",
}

var crashes = []string{
	"the app crashes on login",
	"app freezes when I open settings",
	"new app update broke notifications",
	"app keeps logging me out",
	"cannot upload photos in the app",
	"app drains battery overnight",
}

func interleave(a, b []string) []string {
	var out []string
	for i := range a {
		out = append(out, a[i], b[i])
	}
	return out
}

type fakeEmbedder struct {
	calls    int
	embedErr error
}

func (f *fakeEmbedder) Name() string             { return "fake" }
func (f *fakeEmbedder) Prepare(_ []string) error { return nil }
func (f *fakeEmbedder) Dimension() int           { return 2 }
func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float64, error) {
	f.calls++
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return []float64{1, 0}, nil
}

func TestExtractBelowMinimumSkipsEmbedding(t *testing.T) {
	t.Parallel()

	fake := &fakeEmbedder{}
	ex := NewExtractor(func() domain.Embedder { return fake }, config.TopicsConfig{MinDocuments: 10}, nil)

	model, err := ex.Extract(context.Background(), shipping[:5], domain.DefaultAnalysisOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, model.Result.NumTopics)
	assert.Empty(t, model.Result.Topics)
	assert.NotEmpty(t, model.Result.Reason)
	assert.True(t, model.Result.Empty())
	assert.Zero(t, fake.calls)
	assert.Nil(t, model.RepresentativeDocs(0, 3))
}

func TestExtractEmbeddingFailureIsAnalysisError(t *testing.T) {
	t.Parallel()

	fake := &fakeEmbedder{embedErr: errors.New("model unavailable")}
	ex := NewExtractor(func() domain.Embedder { return fake }, config.TopicsConfig{MinDocuments: 10}, nil)

	_, err := ex.Extract(context.Background(), interleave(shipping, crashes), domain.DefaultAnalysisOptions())
	require.Error(t, err)
	assert.Equal(t, apperr.KindAnalysis, apperr.KindOf(err))
	assert.Equal(t, "topic_extraction", apperr.StageOf(err))
}

func TestExtractSeparatesThemes(t *testing.T) {
	t.Parallel()

	texts := interleave(shipping, crashes)
	ex := NewExtractor(nil, config.TopicsConfig{MinDocuments: 10}, nil)
	opts := domain.DefaultAnalysisOptions()
	opts.MinTopicSize = 6

	model, err := ex.Extract(context.Background(), texts, opts)
	require.NoError(t, err)
	res := model.Result

	require.Equal(t, 2, res.NumTopics)
	assert.Equal(t, 0, res.Outliers)
	assert.Equal(t, 0, res.Topics[0].ID)
	assert.Equal(t, 1, res.Topics[1].ID)
	assert.Equal(t, "delivery", res.Topics[0].Keywords[0])
	assert.Equal(t, "app", res.Topics[1].Keywords[0])
	for _, topic := range res.Topics {
		assert.Equal(t, 6, topic.Count)
		assert.Len(t, topic.Scores, len(topic.Keywords))
		for i := 1; i < len(topic.Scores); i++ {
			assert.GreaterOrEqual(t, topic.Scores[i-1], topic.Scores[i])
		}
		assert.Empty(t, topic.RepresentativeDocs)
	}
	for i, a := range res.Assignments {
		assert.Equal(t, i%2, a)
	}

	reps := model.RepresentativeDocs(0, 3)
	require.Len(t, reps, 3)
	for _, r := range reps {
		assert.Contains(t, shipping, r)
	}
	assert.Nil(t, model.RepresentativeDocs(domain.OutlierTopicID, 3))

	filled := model.WithRepresentatives(1, 2)
	assert.Len(t, filled.Topics[0].RepresentativeDocs, 2)
	assert.Empty(t, filled.Topics[1].RepresentativeDocs)
	assert.Empty(t, model.Result.Topics[0].RepresentativeDocs)
}

func TestExtractCountInvariant(t *testing.T) {
	t.Parallel()

	texts := append(interleave(shipping, crashes),
		"support agent was friendly",
		"pricing page is confusing",
		"love the new dark mode",
	)
	ex := NewExtractor(nil, config.TopicsConfig{MinDocuments: 10, OutlierSimilarity: 0.05}, nil)

	for _, minSize := range []int{1, 2, 3, 5} {
		opts := domain.DefaultAnalysisOptions()
		opts.MinTopicSize = minSize
		model, err := ex.Extract(context.Background(), texts, opts)
		require.NoError(t, err)

		sum := 0
		for _, topic := range model.Result.Topics {
			assert.NotEqual(t, domain.OutlierTopicID, topic.ID)
			assert.GreaterOrEqual(t, topic.Count, minSize)
			sum += topic.Count
		}
		assert.Equal(t, len(texts), sum+model.Result.Outliers, "min size %d", minSize)
		assert.Equal(t, len(model.Result.Topics), model.Result.NumTopics)
		assert.LessOrEqual(t, model.Result.NumTopics, opts.MaxTopics)
	}
}
