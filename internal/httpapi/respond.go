package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"medlama-backend/internal/platform/logger"
)

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	Timestamp string            `json:"timestamp"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders err as the structured error envelope. Unexpected
// errors are logged with detail and surfaced as a generic internal error.
func WriteError(w http.ResponseWriter, log *logger.Logger, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		log.Error("unexpected error", "error", err)
		appErr = Internal("an unexpected error occurred")
	} else if appErr.Status >= http.StatusInternalServerError {
		log.Error("request failed", "code", appErr.Code, "error", appErr.Message)
	}

	WriteJSON(w, appErr.Status, errorEnvelope{Error: errorBody{
		Code:      appErr.Code,
		Message:   appErr.Message,
		Details:   appErr.Details,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}})
}

// DecodeJSON decodes a request body, mapping malformed input to a
// validation error.
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return Validation("request body is required", nil)
	}
	return nil
}
