package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"feedsight/internal/apperr"
	"feedsight/internal/logger"
)

const (
	module       = "httpapi"
	maxBodyBytes = 10 << 20 // 10MB
)

type errorBody struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	Stage   string `json:"stage,omitempty"`
	Details string `json:"details,omitempty"`
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindInsufficientData:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindTimeout:
		return http.StatusGatewayTimeout
	case apperr.KindScoring, apperr.KindRetrieval:
		return http.StatusBadGateway
	case apperr.KindAnalysis, apperr.KindSynthesis:
		return http.StatusUnprocessableEntity
	case apperr.KindConfiguration:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, log logger.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error(module, "failed to encode response", map[string]interface{}{"error": err})
	}
}

func respondError(w http.ResponseWriter, log logger.Logger, err error) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)
	body := errorBody{Error: "internal server error", Kind: string(kind), Stage: apperr.StageOf(err)}
	var e *apperr.Error
	if status != http.StatusInternalServerError && errors.As(err, &e) {
		body.Error = e.Message
		body.Details = e.Details
	}
	log.Warn(module, "request failed", map[string]interface{}{
		"status": status,
		"kind":   body.Kind,
		"stage":  body.Stage,
		"error":  err.Error(),
	})
	respondJSON(w, log, status, body)
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		e := apperr.Validation("invalid request body")
		e.Details = err.Error()
		return e
	}
	return nil
}
