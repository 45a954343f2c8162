package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"feedsight/internal/feedback"
	"feedsight/internal/logger"
	"feedsight/internal/service"
)

// NewRouter mounts every endpoint under /api/v1.
func NewRouter(svc *service.AnalysisService, repo feedback.Repository, log logger.Logger) http.Handler {
	if log == nil {
		log = logger.NewNop()
	}
	r := mux.NewRouter()
	r.Use(Logging(log))
	r.Use(Recovery(log))

	h := NewHandler(svc, repo, log)
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, log, http.StatusOK, map[string]string{"status": "healthy"})
	}).Methods(http.MethodGet)

	api.HandleFunc("/analyze", h.Analyze).Methods(http.MethodPost)

	api.HandleFunc("/feedback", h.UploadFeedback).Methods(http.MethodPost)
	api.HandleFunc("/feedback", h.ListFeedback).Methods(http.MethodGet)
	api.HandleFunc("/feedback/{id}", h.GetFeedback).Methods(http.MethodGet)
	api.HandleFunc("/feedback/{id}", h.DeleteFeedback).Methods(http.MethodDelete)
	api.HandleFunc("/feedback/{id}/analyze", h.AnalyzeFeedback).Methods(http.MethodPost)
	api.HandleFunc("/feedback/{id}/index", h.IndexFeedback).Methods(http.MethodPost)

	api.HandleFunc("/index/documents", h.AddDocuments).Methods(http.MethodPost)
	api.HandleFunc("/index/documents/{id}", h.GetDocument).Methods(http.MethodGet)
	api.HandleFunc("/index/delete", h.DeleteDocuments).Methods(http.MethodPost)
	api.HandleFunc("/index/search", h.Search).Methods(http.MethodPost)
	api.HandleFunc("/index/stats", h.IndexStats).Methods(http.MethodGet)
	api.HandleFunc("/index", h.ClearIndex).Methods(http.MethodDelete)

	return r
}
