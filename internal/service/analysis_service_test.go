package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedsight/internal/apperr"
	"feedsight/internal/config"
	"feedsight/internal/db"
	"feedsight/internal/domain"
	"feedsight/internal/emotion"
	"feedsight/internal/embedding/hashing"
	"feedsight/internal/embedding/tfidf"
	"feedsight/internal/feedback"
	"feedsight/internal/retrieval"
	"feedsight/internal/synthesis"
	"feedsight/internal/topics"
	"feedsight/internal/vectorstore/memory"
)

type stubScorer struct {
	calls atomic.Int32
	err   error
	block bool
	short bool
}

func (s *stubScorer) Score(ctx context.Context, texts []string) ([]domain.EmotionScore, error) {
	s.calls.Add(1)
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	out, err := emotion.NewLexiconScorer().Score(ctx, texts)
	if s.short {
		return out[:len(out)-1], err
	}
	return out, err
}

type failingEmbedder struct{ domain.Embedder }

func (failingEmbedder) Embed(context.Context, string) ([]float64, error) {
	return nil, errors.New("embedding backend unavailable")
}

var batch = []string{
	"The delivery was late and the box was damaged",
	"My delivery arrived two weeks late",
	"Late delivery again, the courier lost my box",
	"Delivery was slow and the box was crushed",
	"The courier delivery was late and rude",
	"Delivery tracking showed late arrival for my box",
	"I love the new app design, it is beautiful",
	"The app design is clean and I love the colors",
	"Great app, love the design and the speed",
	"Beautiful app design, love using it every day",
	"The new app design makes me happy",
	"Love the app, the design is great",
}

func newService(t *testing.T, scorer emotion.Scorer, factory topics.EmbedderFactory, timeout time.Duration) *AnalysisService {
	t.Helper()
	return NewAnalysisService(Deps{
		Scorer:      scorer,
		Extractor:   topics.NewExtractor(factory, config.TopicsConfig{}, nil),
		Synthesizer: synthesis.NewSynthesizer(nil, synthesis.DefaultThresholds(), config.SummarizerConfig{}, nil),
		Timeout:     timeout,
	})
}

func TestExecuteCompletes(t *testing.T) {
	t.Parallel()

	svc := newService(t, emotion.NewLexiconScorer(), nil, 0)
	run := NewRun()
	report, err := svc.Execute(context.Background(), run, Request{Texts: batch, Options: domain.DefaultAnalysisOptions()})
	require.NoError(t, err)

	assert.Equal(t, StateComplete, run.State())
	assert.Equal(t, []State{StateIdle, StateValidating, StateAnalyzing, StateSynthesizing, StateComplete}, run.History())
	assert.Same(t, report, run.Report())
	assert.Equal(t, 12, report.Statistics.TotalFeedback)
	assert.NotEmpty(t, report.Recommendations)
	assert.NotEmpty(t, report.Summary)
	assert.NotEmpty(t, report.ExecutiveSummary)

	counted := report.Topics.Outliers
	for i, tp := range report.Topics.Topics {
		counted += tp.Count
		if i < synthesis.DefaultThresholds().TopThemes {
			assert.NotEmpty(t, tp.RepresentativeDocs)
		}
	}
	assert.Equal(t, len(batch), counted)
}

func TestRepresentativesOnlyForReportedThemes(t *testing.T) {
	t.Parallel()

	th := synthesis.DefaultThresholds()
	th.TopThemes = 1
	svc := NewAnalysisService(Deps{
		Scorer:      emotion.NewLexiconScorer(),
		Extractor:   topics.NewExtractor(nil, config.TopicsConfig{}, nil),
		Synthesizer: synthesis.NewSynthesizer(nil, th, config.SummarizerConfig{}, nil),
	})
	report, err := svc.Analyze(context.Background(), batch, domain.DefaultAnalysisOptions())
	require.NoError(t, err)
	require.NotEmpty(t, report.Topics.Topics)

	for i, tp := range report.Topics.Topics {
		if i == 0 {
			assert.NotEmpty(t, tp.RepresentativeDocs)
			continue
		}
		assert.Empty(t, tp.RepresentativeDocs, "topic %d", tp.ID)
	}
}

func TestValidationFailureNeverScores(t *testing.T) {
	t.Parallel()

	scorer := &stubScorer{}
	svc := newService(t, scorer, nil, 0)
	run := NewRun()
	_, err := svc.Execute(context.Background(), run, Request{Texts: []string{"", "too short"}, Options: domain.DefaultAnalysisOptions()})

	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, StageValidating, apperr.StageOf(err))
	assert.Equal(t, StateFailed, run.State())
	assert.Equal(t, []State{StateIdle, StateValidating, StateFailed}, run.History())
	assert.Zero(t, scorer.calls.Load())
	assert.Nil(t, run.Report())
	assert.Len(t, run.Validation().Errors, 2)
}

func TestScoringFailureIsFatal(t *testing.T) {
	t.Parallel()

	for name, scorer := range map[string]*stubScorer{
		"error":    {err: errors.New("model down")},
		"mismatch": {short: true},
	} {
		t.Run(name, func(t *testing.T) {
			svc := newService(t, scorer, nil, 0)
			run := NewRun()
			report, err := svc.Execute(context.Background(), run, Request{Texts: batch, Options: domain.DefaultAnalysisOptions()})

			assert.Nil(t, report)
			assert.Equal(t, apperr.KindScoring, apperr.KindOf(err))
			assert.Equal(t, StageScoring, apperr.StageOf(err))
			assert.Equal(t, StateFailed, run.State())
			assert.Equal(t, err, run.Err())
		})
	}
}

func TestTopicFailureIsFatal(t *testing.T) {
	t.Parallel()

	factory := func() domain.Embedder { return failingEmbedder{tfidf.NewEmbedder()} }
	svc := newService(t, emotion.NewLexiconScorer(), factory, 0)
	_, err := svc.Analyze(context.Background(), batch, domain.DefaultAnalysisOptions())

	assert.Equal(t, apperr.KindAnalysis, apperr.KindOf(err))
	assert.Equal(t, StageTopicExtraction, apperr.StageOf(err))
}

func TestTopicsSkipped(t *testing.T) {
	t.Parallel()

	var built atomic.Int32
	factory := func() domain.Embedder {
		built.Add(1)
		return tfidf.NewEmbedder()
	}
	svc := newService(t, emotion.NewLexiconScorer(), factory, 0)

	opts := domain.DefaultAnalysisOptions()
	opts.IncludeTopics = false
	report, err := svc.Analyze(context.Background(), batch, opts)
	require.NoError(t, err)
	assert.Equal(t, "topics disabled by request", report.Topics.Reason)
	assert.Zero(t, report.Topics.NumTopics)

	report, err = svc.Analyze(context.Background(), batch[:5], domain.DefaultAnalysisOptions())
	require.NoError(t, err)
	assert.Equal(t, "topics skipped: 5 < minimum 10", report.Topics.Reason)
	assert.NotEmpty(t, report.Recommendations)
	assert.Zero(t, built.Load())
}

func TestSummaryOptional(t *testing.T) {
	t.Parallel()

	svc := newService(t, emotion.NewLexiconScorer(), nil, 0)
	opts := domain.DefaultAnalysisOptions()
	opts.IncludeSummary = false
	report, err := svc.Analyze(context.Background(), batch[:4], opts)
	require.NoError(t, err)
	assert.Empty(t, report.Summary)
}

func TestTimeoutFailsRun(t *testing.T) {
	t.Parallel()

	svc := newService(t, &stubScorer{block: true}, nil, 20*time.Millisecond)
	run := NewRun()
	_, err := svc.Execute(context.Background(), run, Request{Texts: batch, Options: domain.DefaultAnalysisOptions()})

	assert.Equal(t, apperr.KindTimeout, apperr.KindOf(err))
	assert.Equal(t, StageScoring, apperr.StageOf(err))
	assert.Equal(t, StateFailed, run.State())
}

func TestRunIsSingleUse(t *testing.T) {
	t.Parallel()

	svc := newService(t, emotion.NewLexiconScorer(), nil, 0)
	run := NewRun()
	_, err := svc.Execute(context.Background(), run, Request{Texts: batch[:3], Options: domain.DefaultAnalysisOptions()})
	require.NoError(t, err)

	_, err = svc.Execute(context.Background(), run, Request{Texts: batch[:3]})
	assert.Error(t, err)
	assert.Equal(t, StateComplete, run.State())
}

func TestStateNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "synthesizing", StateSynthesizing.String())
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateAnalyzing.Terminal())
	assert.False(t, canTransition(StateIdle, StateComplete))
	assert.True(t, canTransition(StateAnalyzing, StateFailed))
}

func newStoredService(t *testing.T) *AnalysisService {
	t.Helper()
	conn, err := db.NewSQLiteDB(db.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	index := retrieval.NewIndex(hashing.NewEmbedder(256), memory.NewStorage(), retrieval.IDSequential, nil)
	require.NoError(t, index.Open(context.Background()))
	return NewAnalysisService(Deps{
		Scorer:      emotion.NewLexiconScorer(),
		Extractor:   topics.NewExtractor(nil, config.TopicsConfig{}, nil),
		Synthesizer: synthesis.NewSynthesizer(nil, synthesis.DefaultThresholds(), config.SummarizerConfig{}, nil),
		Index:       index,
		Repo:        feedback.NewRepository(conn),
	})
}

func TestSubmitAndAnalyzeFeedback(t *testing.T) {
	ctx := context.Background()
	svc := newStoredService(t)

	b, err := svc.Submit(ctx, "survey", append([]string{"meh"}, batch...), nil)
	require.NoError(t, err)
	assert.Len(t, b.Texts, len(batch))

	report, err := svc.AnalyzeFeedback(ctx, b.ID, domain.DefaultAnalysisOptions())
	require.NoError(t, err)
	assert.Equal(t, b.ID, report.FeedbackID)
	assert.Equal(t, len(batch), report.Statistics.TotalFeedback)

	_, err = svc.AnalyzeFeedback(ctx, "missing", domain.DefaultAnalysisOptions())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, StageLoading, apperr.StageOf(err))
}

func TestIndexFeedback(t *testing.T) {
	ctx := context.Background()
	svc := newStoredService(t)

	long := strings.Repeat("The refund process is slow. ", 7)
	b, err := svc.Submit(ctx, "", []string{batch[0], long}, []map[string]any{{"channel": "email"}, {"channel": "chat"}})
	require.NoError(t, err)

	ids, err := svc.IndexFeedback(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{
		fmt.Sprintf("%s_0_0", b.ID),
		fmt.Sprintf("%s_1_0", b.ID),
		fmt.Sprintf("%s_1_1", b.ID),
	}, ids)

	again, err := svc.IndexFeedback(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, ids, again)
	n, err := svc.Index().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	res, err := svc.Search(ctx, "box damaged delivery", 1, domain.Filter{"feedback_id": b.ID})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, ids[0], res[0].ID)
	assert.Equal(t, "email", res[0].Metadata["channel"])
}
