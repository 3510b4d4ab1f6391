package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	cerrors "github.com/abgdnv/storecatalog/internal/errors"
	"github.com/abgdnv/storecatalog/pkg/web"
)

const (
	MsgAuthenticationRequired = "Authentication required"
	MsgAccessDenied           = "Access denied"
)

// Authenticator checks a username and password pair.
// It returns ErrInvalidCredentials or ErrUserDisabled when the pair is rejected.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*Principal, error)
}

// Guard holds the authentication middleware and the per-route policies.
type Guard struct {
	authenticator Authenticator
	realm         string
	logger        *slog.Logger
}

func NewGuard(authenticator Authenticator, realm string, logger *slog.Logger) *Guard {
	return &Guard{authenticator: authenticator, realm: realm, logger: logger}
}

// Authenticate requires valid Basic credentials and stores the Principal in
// the request context.
func (g *Guard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := web.RequestLogger(g.logger, r)
		username, password, ok := r.BasicAuth()
		if !ok {
			logger.DebugContext(r.Context(), "Missing basic credentials", "path", r.URL.Path)
			g.challenge(w, r)
			return
		}

		principal, err := g.authenticator.Authenticate(r.Context(), username, password)
		if err != nil {
			if errors.Is(err, cerrors.ErrInvalidCredentials) || errors.Is(err, cerrors.ErrUserDisabled) {
				logger.WarnContext(r.Context(), "Authentication rejected", "username", username, "error", err)
				g.challenge(w, r)
				return
			}
			logger.ErrorContext(r.Context(), "Authentication failed", "error", err)
			web.RespondInternalError(w, r, g.logger)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), *principal)))
	})
}

// RequirePermission lets the request through only if the caller's role grants p.
func (g *Guard) RequirePermission(p Permission) func(http.Handler) http.Handler {
	return g.require(func(principal Principal) bool { return principal.Role.Has(p) })
}

// RequireRole lets the request through only for callers holding role.
func (g *Guard) RequireRole(role Role) func(http.Handler) http.Handler {
	return g.require(func(principal Principal) bool { return principal.Role == role })
}

func (g *Guard) require(allowed func(Principal) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFrom(r.Context())
			if !ok {
				g.challenge(w, r)
				return
			}
			if !allowed(principal) {
				web.RequestLogger(g.logger, r).WarnContext(r.Context(), "Access denied",
					"username", principal.Username, "role", principal.Role, "method", r.Method, "path", r.URL.Path)
				web.RespondError(w, r, g.logger, http.StatusForbidden, MsgAccessDenied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (g *Guard) challenge(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", fmt.Sprintf("Basic realm=%q", g.realm))
	web.RespondError(w, r, g.logger, http.StatusUnauthorized, MsgAuthenticationRequired)
}
