package rest

import (
	"context"
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
	MsgInvalidRole     = "Authority can be either 'USER', 'ADMIN' or 'OWNER'"
	MsgPasswordTooLong = "Password must not exceed 72 bytes"
)

// UserService is the part of the user service the handler needs.
type UserService interface {
	Register(ctx context.Context, dto service.RegisterUserDto) (*service.UserDto, error)
	FindByUsername(ctx context.Context, username string) (*service.UserDto, error)
}

// UserHandler serves account registration and the caller's own profile.
type UserHandler struct {
	service  UserService
	validate *validator.Validate
	logger   *slog.Logger
}

func NewUserHandler(service UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		service:  service,
		validate: web.NewValidator(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes mounts the user routes. Only OWNER may register accounts.
func (h *UserHandler) RegisterRoutes(r chi.Router, guard *auth.Guard) {
	r.Route("/api/users", func(r chi.Router) {
		r.Use(guard.Authenticate)
		r.With(guard.RequireRole(auth.RoleOwner)).Post("/", h.Register)
		r.Get("/me", h.Me)
	})
}

// Register creates a new account.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	mLogger := web.RequestLogger(h.logger, r)
	var dto service.RegisterUserDto
	if !web.DecodeAndValidate(w, r, mLogger, h.validate, &dto) {
		return
	}

	created, err := h.service.Register(r.Context(), dto)
	switch {
	case errors.Is(err, cerrors.ErrUserAlreadyExists):
		mLogger.WarnContext(r.Context(), "Username already taken", "username", dto.Username)
		web.RespondError(w, r, mLogger, http.StatusBadRequest, fmt.Sprintf("Username %s is already taken", dto.Username))
		return
	case errors.Is(err, cerrors.ErrInvalidRole):
		mLogger.WarnContext(r.Context(), "Invalid role", "role", dto.Role)
		web.RespondError(w, r, mLogger, http.StatusBadRequest, MsgInvalidRole)
		return
	case errors.Is(err, cerrors.ErrPasswordTooLong):
		mLogger.WarnContext(r.Context(), "Password too long", "username", dto.Username)
		web.RespondError(w, r, mLogger, http.StatusBadRequest, MsgPasswordTooLong)
		return
	case err != nil:
		mLogger.ErrorContext(r.Context(), "Error registering user", "error", err)
		web.RespondInternalError(w, r, mLogger)
		return
	}
	mLogger.InfoContext(r.Context(), "User registered", "username", created.Username, "role", created.Role)
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// Me returns the account of the authenticated caller.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	mLogger := web.RequestLogger(h.logger, r)
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		mLogger.ErrorContext(r.Context(), "No principal on an authenticated route")
		web.RespondInternalError(w, r, mLogger)
		return
	}

	me, err := h.service.FindByUsername(r.Context(), principal.Username)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error loading caller", "username", principal.Username, "error", err)
		web.RespondInternalError(w, r, mLogger)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, me)
}
