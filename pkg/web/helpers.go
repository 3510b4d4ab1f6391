// Package web holds the HTTP plumbing shared by handlers: JSON responses,
// the error envelope, request validation and middleware.
package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// MsgUnexpected is the only message clients see for server-side failures.
const MsgUnexpected = "Unexpected error"

// ErrorResponse is the error envelope returned by every endpoint.
type ErrorResponse struct {
	Timestamp        time.Time         `json:"timestamp"`
	Status           int               `json:"status"`
	Error            string            `json:"error"`
	Message          string            `json:"message"`
	Path             string            `json:"path"`
	ValidationErrors map[string]string `json:"validation_errors,omitempty"`
}

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC() }

// NewErrorResponse builds the envelope for the given status and request.
func NewErrorResponse(r *http.Request, status int, message string) ErrorResponse {
	return ErrorResponse{
		Timestamp: now(),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      r.URL.Path,
	}
}

func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	// Handle nil payload
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// RespondError writes the error envelope with the given status and message.
func RespondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, message string) {
	RespondJSON(w, logger, status, NewErrorResponse(r, status, message))
}

// RespondInternalError writes a 500 envelope without leaking any detail.
func RespondInternalError(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	RespondError(w, r, logger, http.StatusInternalServerError, MsgUnexpected)
}

// RespondValidationError writes a 400 envelope carrying per-field failures.
// The message is the first failure in field order.
func RespondValidationError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, fieldErrors map[string]string, first string) {
	body := NewErrorResponse(r, http.StatusBadRequest, first)
	body.ValidationErrors = fieldErrors
	RespondJSON(w, logger, http.StatusBadRequest, body)
}
