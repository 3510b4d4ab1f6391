// Package logger provides slog helpers shared by the catalog service.
package logger

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5/middleware"
)

// RequestIDKey is the attribute key carrying the request id.
const RequestIDKey = "request_id"

// ContextHandler is a wrapper around slog.Handler that adds the request id
// found in the context to every record, unless a request id attribute was
// already attached with Logger.With.
type ContextHandler struct {
	slog.Handler
	hasReqID bool
}

// NewContextHandler creates a new ContextHandler.
func NewContextHandler(handler slog.Handler) *ContextHandler {
	return &ContextHandler{
		Handler: handler,
	}
}

// Handle processes a log record and adds context information.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.hasReqID {
		return h.Handler.Handle(ctx, r)
	}
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		r.AddAttrs(slog.String(RequestIDKey, reqID))
	}
	return h.Handler.Handle(ctx, r)
}

// WithAttrs returns a new ContextHandler with the given attributes added.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	hasReqID := h.hasReqID
	for _, a := range attrs {
		if a.Key == RequestIDKey {
			hasReqID = true
		}
	}
	return &ContextHandler{
		Handler:  h.Handler.WithAttrs(attrs),
		hasReqID: hasReqID,
	}
}

// WithGroup returns a new ContextHandler with the given group added.
func (h *ContextHandler) WithGroup(group string) slog.Handler {
	return &ContextHandler{
		Handler:  h.Handler.WithGroup(group),
		hasReqID: h.hasReqID,
	}
}
