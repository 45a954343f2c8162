package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"feedsight/internal/apperr"
	"feedsight/internal/domain"
	"feedsight/internal/feedback"
	"feedsight/internal/logger"
	"feedsight/internal/retrieval"
	"feedsight/internal/service"
)

// Handler serves the analysis, feedback and index endpoints.
type Handler struct {
	svc   *service.AnalysisService
	index *retrieval.Index
	repo  feedback.Repository
	log   logger.Logger
}

func NewHandler(svc *service.AnalysisService, repo feedback.Repository, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{svc: svc, index: svc.Index(), repo: repo, log: log}
}

// optionsPayload leaves unset fields at their defaults.
type optionsPayload struct {
	IncludeSummary   *bool    `json:"include_summary"`
	IncludeTopics    *bool    `json:"include_topics"`
	MaxTopics        *int     `json:"max_topics"`
	MinTopicSize     *int     `json:"min_topic_size"`
	EmotionThreshold *float64 `json:"emotion_threshold"`
}

func (p *optionsPayload) resolve() domain.AnalysisOptions {
	opts := domain.DefaultAnalysisOptions()
	if p == nil {
		return opts
	}
	if p.IncludeSummary != nil {
		opts.IncludeSummary = *p.IncludeSummary
	}
	if p.IncludeTopics != nil {
		opts.IncludeTopics = *p.IncludeTopics
	}
	if p.MaxTopics != nil {
		opts.MaxTopics = *p.MaxTopics
	}
	if p.MinTopicSize != nil {
		opts.MinTopicSize = *p.MinTopicSize
	}
	if p.EmotionThreshold != nil {
		opts.EmotionThreshold = *p.EmotionThreshold
	}
	return opts
}

type analyzeRequest struct {
	Feedback []string        `json:"feedback"`
	Options  *optionsPayload `json:"options"`
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	report, err := h.svc.Analyze(r.Context(), req.Feedback, req.Options.resolve())
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, h.log, http.StatusOK, report)
}

type uploadRequest struct {
	Name     string           `json:"name"`
	Feedback []string         `json:"feedback"`
	Metadata []map[string]any `json:"metadata"`
}

type uploadResponse struct {
	FeedbackID string `json:"feedback_id"`
	Count      int    `json:"count"`
}

func (h *Handler) UploadFeedback(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	b, err := h.svc.Submit(r.Context(), req.Name, req.Feedback, req.Metadata)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, h.log, http.StatusCreated, uploadResponse{FeedbackID: b.ID, Count: len(b.Texts)})
}

func (h *Handler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	batches, err := h.repo.List(r.Context(), limit)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, h.log, http.StatusOK, batches)
}

func (h *Handler) GetFeedback(w http.ResponseWriter, r *http.Request) {
	b, err := h.repo.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, h.log, http.StatusOK, b)
}

func (h *Handler) DeleteFeedback(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type analyzeFeedbackRequest struct {
	Options *optionsPayload `json:"options"`
}

func (h *Handler) AnalyzeFeedback(w http.ResponseWriter, r *http.Request) {
	var req analyzeFeedbackRequest
	if r.ContentLength != 0 {
		if err := decode(w, r, &req); err != nil {
			respondError(w, h.log, err)
			return
		}
	}
	report, err := h.svc.AnalyzeFeedback(r.Context(), mux.Vars(r)["id"], req.Options.resolve())
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, h.log, http.StatusOK, report)
}

type idsResponse struct {
	IDs []string `json:"ids"`
}

func (h *Handler) IndexFeedback(w http.ResponseWriter, r *http.Request) {
	ids, err := h.svc.IndexFeedback(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, h.log, http.StatusOK, idsResponse{IDs: ids})
}

type addDocumentsRequest struct {
	Documents []string         `json:"documents"`
	Metadata  []map[string]any `json:"metadata"`
	IDs       []string         `json:"ids"`
}

func (h *Handler) AddDocuments(w http.ResponseWriter, r *http.Request) {
	var req addDocumentsRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	ids, err := h.index.Add(r.Context(), req.Documents, req.Metadata, req.IDs)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, h.log, http.StatusCreated, idsResponse{IDs: ids})
}

type searchRequest struct {
	Query     string        `json:"query"`
	Embedding []float64     `json:"embedding"`
	K         int           `json:"k"`
	Filter    domain.Filter `json:"filter"`
}

type searchHit struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Distance float64        `json:"distance"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	if req.K <= 0 {
		req.K = 5
	}
	var (
		res []domain.SearchResult
		err error
	)
	if len(req.Embedding) > 0 {
		res, err = h.index.SearchByEmbedding(r.Context(), req.Embedding, req.K, req.Filter)
	} else {
		res, err = h.index.Search(r.Context(), req.Query, req.K, req.Filter)
	}
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	hits := make([]searchHit, len(res))
	for i, s := range res {
		hits[i] = searchHit{ID: s.ID, Text: s.Text, Distance: s.Distance, Metadata: s.Metadata}
	}
	respondJSON(w, h.log, http.StatusOK, hits)
}

type documentResponse struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	rec, err := h.index.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, h.log, http.StatusOK, documentResponse{ID: rec.ID, Text: rec.Text, Metadata: rec.Metadata})
}

type deleteDocumentsRequest struct {
	IDs []string `json:"ids"`
}

func (h *Handler) DeleteDocuments(w http.ResponseWriter, r *http.Request) {
	var req deleteDocumentsRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	if len(req.IDs) == 0 {
		respondError(w, h.log, apperr.Validation("ids are required"))
		return
	}
	if err := h.index.Delete(r.Context(), req.IDs); err != nil {
		respondError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) IndexStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.index.Stats(r.Context())
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, h.log, http.StatusOK, st)
}

func (h *Handler) ClearIndex(w http.ResponseWriter, r *http.Request) {
	if err := h.index.Clear(r.Context()); err != nil {
		respondError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
