package httpapi

import (
	"encoding/json"
	"net/http"

	"orderdesk/internal/apperr"
	"orderdesk/internal/logger"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError maps the core's two recoverable error kinds to 404/400;
// anything else is a storage fault and surfaces as 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case apperr.IsNotFound(err):
		writeErrorMsg(w, http.StatusNotFound, err.Error())
	case apperr.IsValidation(err):
		writeErrorMsg(w, http.StatusBadRequest, err.Error())
	default:
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeErrorMsg(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "No data provided")
		return false
	}
	return true
}
