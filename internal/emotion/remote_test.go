package emotion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedsight/internal/apperr"
	"feedsight/internal/config"
	"feedsight/internal/domain"
)

func TestRemoteScorerMapsLabelsInOrder(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		var req remoteRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"love it", "this is disgusting"}, req.Inputs)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([][]labelScore{
			{{"joy", 0.9}, {"neutral", 0.1}},
			{{"disgust", 0.5}, {"anger", 0.3}, {"sadness", 0.2}},
		})
	}))
	defer srv.Close()

	s := NewRemoteScorer(RemoteConfig{URL: srv.URL, Token: "tok", RetryDelay: time.Millisecond})
	scores, err := s.Score(context.Background(), []string{"love it", "  ", "this is disgusting"})
	require.NoError(t, err)
	require.Len(t, scores, 3)

	assert.Equal(t, domain.Joy, scores[0].Dominant)
	assert.Equal(t, domain.SentimentPositive, scores[0].Sentiment)
	assert.Equal(t, domain.Neutral, scores[1].Dominant)
	assert.Equal(t, domain.Anger, scores[2].Dominant)
	assert.InDelta(t, 0.8, scores[2].Scores[domain.Anger], 1e-9)
}

func TestRemoteScorerDecodesUnlabelledJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(`[[{"label":"sadness","score":0.7},{"label":"joy","score":0.3}],[{"label":"fear","score":1}]]`))
	}))
	defer srv.Close()

	s := NewRemoteScorer(RemoteConfig{URL: srv.URL, RetryDelay: time.Millisecond})
	scores, err := s.Score(context.Background(), []string{"it broke again", "scary update"})
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, domain.Sadness, scores[0].Dominant)
	assert.InDelta(t, 0.7, scores[0].Scores[domain.Sadness], 1e-9)
	assert.Equal(t, domain.Fear, scores[1].Dominant)
}

func TestRemoteScorerInvalidBody(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte("model loading"))
	}))
	defer srv.Close()

	s := NewRemoteScorer(RemoteConfig{URL: srv.URL, RetryDelay: time.Millisecond})
	_, err := s.Score(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindScoring, apperr.KindOf(err))
	assert.Equal(t, int32(remoteAttempts), atomic.LoadInt32(&calls))
}

func TestRemoteScorerBatchFailure(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewRemoteScorer(RemoteConfig{URL: srv.URL, RetryDelay: time.Millisecond})
	_, err := s.Score(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindScoring, apperr.KindOf(err))
	assert.Equal(t, "scoring", apperr.StageOf(err))
	assert.Equal(t, int32(remoteAttempts), atomic.LoadInt32(&calls))
}

func TestRemoteScorerClientErrorNotRetried(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewRemoteScorer(RemoteConfig{URL: srv.URL, RetryDelay: time.Millisecond})
	_, err := s.Score(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindScoring, apperr.KindOf(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRemoteScorerMalformedBatch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[[{"label":"joy","score":1}]]`))
	}))
	defer srv.Close()

	s := NewRemoteScorer(RemoteConfig{URL: srv.URL, RetryDelay: time.Millisecond})
	_, err := s.Score(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindScoring, apperr.KindOf(err))
}

func TestRemoteScorerAllEmptySkipsCall(t *testing.T) {
	t.Parallel()

	s := NewRemoteScorer(RemoteConfig{URL: "http://127.0.0.1:1"})
	scores, err := s.Score(context.Background(), []string{"", " "})
	require.NoError(t, err)
	assert.Len(t, scores, 2)
}

func TestNewScorer(t *testing.T) {
	t.Parallel()

	s, err := New(config.ScorerConfig{Type: "lexicon"})
	require.NoError(t, err)
	assert.IsType(t, &LexiconScorer{}, s)

	_, err = New(config.ScorerConfig{Type: "remote"})
	require.Error(t, err)

	_, err = New(config.ScorerConfig{Type: "bert"})
	require.Error(t, err)
}
