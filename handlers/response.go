package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kevinaaaquil/library/backend/logger"
	"github.com/kevinaaaquil/library/backend/middleware"
	"github.com/kevinaaaquil/library/backend/service"
	"github.com/kevinaaaquil/library/backend/store"
)

type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// writeJSON serialises v as JSON and writes it to w with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

// writeServiceError maps a service or store failure to its HTTP status.
func writeServiceError(w http.ResponseWriter, log *logger.Logger, err error) {
	var serr *service.Error
	if errors.As(err, &serr) {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, service.ErrNotFound):
			status = http.StatusNotFound
		case serr.Reason == service.ReasonBusy:
			status = http.StatusConflict
		}
		writeError(w, status, serr.Reason, serr.Message)
		return
	}
	if errors.Is(err, store.ErrCorruptDocument) {
		log.Error("stored document is corrupt", "error", err)
		writeError(w, http.StatusInternalServerError, "CorruptDocument", "stored data is corrupt; restore from backup")
		return
	}
	log.Error("request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "Internal", "internal error")
}

// audit logs a completed write, tagged with the librarian when the request
// carried a token.
func audit(r *http.Request, log *logger.Logger, action string, keysAndValues ...interface{}) {
	if email, ok := middleware.EmailFromContext(r.Context()); ok {
		keysAndValues = append(keysAndValues, "librarian", email)
	}
	log.Info(action, keysAndValues...)
}
