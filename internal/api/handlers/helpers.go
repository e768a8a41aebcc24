package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/zatekoja/trainingportal/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/trainingportal/pkg/errors"
	"go.opentelemetry.io/otel/trace"
)

// Helper functions

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps an application error to its status and message.
// Anything that is not an AppError is reported as a generic server error.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	logger := observability.LoggerFromContext(r.Context())

	appErr, ok := apperrors.As(err)
	if !ok {
		observability.RecordError(trace.SpanFromContext(r.Context()), err)
		logger.Error().Err(err).Msg("Unhandled error")
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	status := appErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		observability.RecordError(trace.SpanFromContext(r.Context()), err)
		logger.Error().Err(err).Int("status", status).Msg("Request failed")
	}
	respondWithError(w, status, appErr.Message)
}

func decodeJSON(r *http.Request, dest interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dest)
}

// pageParam returns the 1-indexed page from the query string
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
