package emotion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-resty/resty/v2"

	"feedsight/internal/apperr"
	"feedsight/internal/domain"
)

const remoteAttempts = 3

// RemoteScorer classifies emotions with a hosted text-classification model
// (Hugging Face inference API shape) and keeps polarity from the lexicon,
// which the classification model does not produce.
type RemoteScorer struct {
	url      string
	token    string
	client   *resty.Client
	polarity *LexiconScorer
	delay    time.Duration
}

// RemoteConfig configures a RemoteScorer.
type RemoteConfig struct {
	URL     string
	Token   string
	Timeout time.Duration
	// RetryDelay is the pause between attempts; 0 means one second.
	RetryDelay time.Duration
}

func NewRemoteScorer(cfg RemoteConfig) *RemoteScorer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &RemoteScorer{
		url:      cfg.URL,
		token:    cfg.Token,
		client:   client,
		polarity: NewLexiconScorer(),
		delay:    delay,
	}
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type remoteRequest struct {
	Inputs     []string       `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Score sends every non-empty text in one batch. A failed batch fails the
// whole call with a scoring error; empty texts get the neutral score locally.
func (s *RemoteScorer) Score(ctx context.Context, texts []string) ([]domain.EmotionScore, error) {
	out := make([]domain.EmotionScore, len(texts))
	var batch []string
	var positions []int
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			out[i] = domain.NeutralScore()
			continue
		}
		batch = append(batch, t)
		positions = append(positions, i)
	}
	if len(batch) == 0 {
		return out, nil
	}

	var result [][]labelScore
	err := retry.Do(
		func() error {
			var err error
			result, err = s.post(ctx, batch)
			return err
		},
		retry.Attempts(remoteAttempts),
		retry.Delay(s.delay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
	)
	if err != nil {
		return nil, apperr.Scoring(err, "emotion model invocation failed").WithStage("scoring")
	}
	if len(result) != len(batch) {
		return nil, apperr.Scoring(
			fmt.Errorf("got %d results for %d texts", len(result), len(batch)),
			"emotion model returned a malformed batch",
		).WithStage("scoring")
	}

	for j, labels := range result {
		i := positions[j]
		score := s.polarity.ScoreOne(texts[i])
		score.Scores = mapLabels(labels)
		score.Dominant = domain.ArgmaxLabel(score.Scores)
		out[i] = score
	}
	return out, nil
}

func (s *RemoteScorer) post(ctx context.Context, batch []string) ([][]labelScore, error) {
	var result [][]labelScore
	req := s.client.R().
		SetContext(ctx).
		SetBody(remoteRequest{Inputs: batch, Parameters: map[string]any{"top_k": nil}})
	if s.token != "" {
		req = req.SetAuthToken(s.token)
	}
	resp, err := req.Post(s.url)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, &statusError{code: resp.StatusCode(), status: resp.Status()}
	}
	// inference servers do not always label the body as JSON, so decode it
	// regardless of Content-Type
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("decode emotion model response: %w", err)
	}
	return result, nil
}

type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string { return "emotion model returned " + e.status }

// retryable rejects client errors; the same request would fail again.
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == http.StatusTooManyRequests
	}
	return true
}

// mapLabels folds model labels onto the canonical set. Disgust counts as anger;
// unknown labels are ignored.
func mapLabels(labels []labelScore) map[domain.Label]float64 {
	scores := make(map[domain.Label]float64, len(domain.Labels))
	for _, l := range domain.Labels {
		scores[l] = 0
	}
	for _, ls := range labels {
		name := domain.Label(strings.ToLower(ls.Label))
		if name == "disgust" {
			name = domain.Anger
		}
		if _, ok := scores[name]; ok {
			scores[name] += ls.Score
		}
	}
	return scores
}
