// Package rest provides HTTP handlers for the catalog API.
package rest

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/storecatalog/internal/auth"
	cerrors "github.com/abgdnv/storecatalog/internal/errors"
	"github.com/abgdnv/storecatalog/internal/service"
	"github.com/abgdnv/storecatalog/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const (
	MsgProductNotFound      = "Product not found"
	MsgProductAlreadyExists = "Product already exists"
	MsgDataIntegrity        = "Data integrity violation"
)

// Handler serves the product endpoints.
type Handler struct {
	service  service.ProductService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new product Handler with the provided service.
func NewHandler(service service.ProductService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: web.NewValidator(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes mounts the product routes. Reads need READ, writes need WRITE.
func (h *Handler) RegisterRoutes(r chi.Router, guard *auth.Guard) {
	r.Route("/api/products", func(r chi.Router) {
		r.Use(guard.Authenticate)

		r.Group(func(r chi.Router) {
			r.Use(guard.RequirePermission(auth.PermissionRead))
			r.Get("/", h.FindAll)
			r.Get("/{code}", h.FindByCode)
		})
		r.Group(func(r chi.Router) {
			r.Use(guard.RequirePermission(auth.PermissionWrite))
			r.Post("/", h.Create)
			r.Patch("/{code}/price", h.ChangePrice)
			r.Put("/{code}", h.Update)
			r.Delete("/{code}", h.DeleteByCode)
		})
	})
}

// FindByCode retrieves a product by its code.
func (h *Handler) FindByCode(w http.ResponseWriter, r *http.Request) {
	mLogger := web.RequestLogger(h.logger, r)
	code := chi.URLParam(r, "code")

	mLogger.DebugContext(r.Context(), "Received request to find product by code", "code", code)
	found, err := h.service.FindByCode(r.Context(), code)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "code", code)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// FindAll lists products ordered by id, optionally paged by offset and limit.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := web.RequestLogger(h.logger, r)
	offset, ok := web.ParseOptionalGte(r, w, mLogger, "offset", 0)
	if !ok {
		return
	}
	limit, ok := web.ParseOptionalGt(r, w, mLogger, "limit", 0)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to find all products", "offset", offset, "limit", limit)
	list, err := h.service.FindAll(r.Context(), offset, limit)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondInternalError(w, r, mLogger)
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := web.RequestLogger(h.logger, r)
	var dto service.ProductCreateDto
	if !web.DecodeAndValidate(w, r, mLogger, h.validate, &dto) {
		return
	}

	created, err := h.service.Create(r.Context(), dto)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "code", dto.ProductCode)
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "code", created.ProductCode, "ID", created.ID)
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// ChangePrice replaces the price of a product.
func (h *Handler) ChangePrice(w http.ResponseWriter, r *http.Request) {
	mLogger := web.RequestLogger(h.logger, r)
	code := chi.URLParam(r, "code")
	var dto service.PriceChangeDto
	if !web.DecodeAndValidate(w, r, mLogger, h.validate, &dto) {
		return
	}

	updated, err := h.service.ChangePrice(r.Context(), code, dto.Price)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "code", code)
		return
	}
	mLogger.InfoContext(r.Context(), "Product price changed", "code", code, "price", updated.Price.String())
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// Update merges the fields present in the body onto the product.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := web.RequestLogger(h.logger, r)
	code := chi.URLParam(r, "code")
	var dto service.ProductPatchDto
	if !web.DecodeAndValidate(w, r, mLogger, h.validate, &dto) {
		return
	}

	updated, err := h.service.Update(r.Context(), code, dto)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "code", code)
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "code", code)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// DeleteByCode removes a product.
func (h *Handler) DeleteByCode(w http.ResponseWriter, r *http.Request) {
	mLogger := web.RequestLogger(h.logger, r)
	code := chi.URLParam(r, "code")

	if err := h.service.DeleteByCode(r.Context(), code); err != nil {
		h.respondServiceError(w, r, mLogger, err, "code", code)
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "code", code)
	web.RespondJSON(w, mLogger, http.StatusNoContent, nil)
}

// HealthCheck reports that the process is serving.
func HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintln(w, "OK")
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, args ...any) {
	switch {
	case errors.Is(err, cerrors.ErrProductNotFound):
		logger.WarnContext(r.Context(), "Product not found", args...)
		web.RespondError(w, r, logger, http.StatusNotFound, MsgProductNotFound)
	case errors.Is(err, cerrors.ErrProductAlreadyExists):
		logger.WarnContext(r.Context(), "Product already exists", args...)
		web.RespondError(w, r, logger, http.StatusBadRequest, MsgProductAlreadyExists)
	case errors.Is(err, cerrors.ErrDataIntegrity):
		logger.WarnContext(r.Context(), "Product rejected by store constraints", append(args, "error", err)...)
		web.RespondError(w, r, logger, http.StatusBadRequest, MsgDataIntegrity)
	default:
		logger.ErrorContext(r.Context(), "Error processing product request", append(args, "error", err)...)
		web.RespondInternalError(w, r, logger)
	}
}
