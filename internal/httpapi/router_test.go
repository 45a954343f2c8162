package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedsight/internal/app"
	"feedsight/internal/apperr"
	"feedsight/internal/config"
	"feedsight/internal/db"
	"feedsight/internal/feedback"
)

func newServer(t *testing.T) http.Handler {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	cfg.Database.Path = db.MemoryDSN
	a, err := app.Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return NewRouter(a.Service, feedback.NewRepository(a.DB), nil)
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

var feedbackTexts = []string{
	"The delivery was late and the box was damaged",
	"Support answered quickly and solved my problem",
	"The app keeps crashing when I upload photos",
}

func TestHealth(t *testing.T) {
	rec := do(t, newServer(t), http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestAnalyze(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/analyze", map[string]any{
		"feedback": feedbackTexts,
		"options":  map[string]any{"include_summary": false},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report struct {
		Summary         string   `json:"summary"`
		KeyInsights     []string `json:"key_insights"`
		Recommendations []string `json:"recommendations"`
		Statistics      struct {
			TotalFeedback int `json:"total_feedback"`
		} `json:"statistics"`
		Topics struct {
			Message string `json:"message"`
		} `json:"topics"`
	}
	decodeBody(t, rec, &report)
	assert.Empty(t, report.Summary)
	assert.NotEmpty(t, report.KeyInsights)
	assert.NotEmpty(t, report.Recommendations)
	assert.Equal(t, 3, report.Statistics.TotalFeedback)
	assert.Equal(t, "topics skipped: 3 < minimum 10", report.Topics.Message)
}

func TestAnalyzeValidationError(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/analyze", map[string]any{"feedback": []string{"", "hi"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body errorBody
	decodeBody(t, rec, &body)
	assert.Equal(t, "validation", body.Kind)
	assert.Equal(t, "validating", body.Stage)

	rec = do(t, h, http.MethodPost, "/api/v1/analyze", map[string]any{"texts": []string{"x"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeedbackLifecycle(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/feedback", map[string]any{"name": "q1", "feedback": feedbackTexts})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var up uploadResponse
	decodeBody(t, rec, &up)
	assert.Equal(t, 3, up.Count)

	rec = do(t, h, http.MethodPost, "/api/v1/feedback/"+up.FeedbackID+"/analyze", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var report struct {
		FeedbackID string `json:"feedback_id"`
	}
	decodeBody(t, rec, &report)
	assert.Equal(t, up.FeedbackID, report.FeedbackID)

	rec = do(t, h, http.MethodPost, "/api/v1/feedback/"+up.FeedbackID+"/index", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ids idsResponse
	decodeBody(t, rec, &ids)
	assert.Len(t, ids.IDs, 3)

	rec = do(t, h, http.MethodGet, "/api/v1/feedback", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/v1/feedback/"+up.FeedbackID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/feedback/"+up.FeedbackID+"/analyze", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/v1/feedback/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIndexEndpoints(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/index/documents", map[string]any{
		"documents": feedbackTexts,
		"metadata":  []map[string]any{{"team": "ops"}, {"team": "support"}, {"team": "mobile"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var ids idsResponse
	decodeBody(t, rec, &ids)
	assert.Equal(t, []string{"doc_0", "doc_1", "doc_2"}, ids.IDs)

	rec = do(t, h, http.MethodPost, "/api/v1/index/search", map[string]any{"query": "app crashing photos", "k": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	var hits []searchHit
	decodeBody(t, rec, &hits)
	require.Len(t, hits, 2)
	assert.Equal(t, "doc_2", hits[0].ID)
	assert.LessOrEqual(t, hits[0].Distance, hits[1].Distance)

	rec = do(t, h, http.MethodPost, "/api/v1/index/search", map[string]any{"query": "delivery", "filter": map[string]any{"team": "support"}})
	decodeBody(t, rec, &hits)
	require.Len(t, hits, 1)
	assert.Equal(t, "doc_1", hits[0].ID)

	rec = do(t, h, http.MethodPost, "/api/v1/index/search", map[string]any{"query": ""})
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/v1/index/documents/doc_0", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var doc documentResponse
	decodeBody(t, rec, &doc)
	assert.Equal(t, feedbackTexts[0], doc.Text)

	rec = do(t, h, http.MethodPost, "/api/v1/index/delete", map[string]any{"ids": []string{"doc_0"}})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/v1/index/documents/doc_0", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/index/stats", nil)
	assert.JSONEq(t, `{"documents":2,"dimension":384,"embedder":"hashing","id_strategy":"sequential"}`, rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/api/v1/index", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/v1/index/stats", nil)
	assert.Contains(t, rec.Body.String(), `"documents":0`)
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := map[apperr.Kind]int{
		apperr.KindValidation:    http.StatusBadRequest,
		apperr.KindNotFound:      http.StatusNotFound,
		apperr.KindTimeout:       http.StatusGatewayTimeout,
		apperr.KindScoring:       http.StatusBadGateway,
		apperr.KindAnalysis:      http.StatusUnprocessableEntity,
		apperr.KindConfiguration: http.StatusServiceUnavailable,
		apperr.KindInternal:      http.StatusInternalServerError,
	}
	for kind, want := range tests {
		assert.Equal(t, want, statusFor(kind), kind)
	}
}
