package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/odyssey-erp/storefront/internal/platform/httpx"
)

const msgNotLoggedIn = "You are not logged in! Please log in to get access."

type authenticator interface {
	Authenticate(ctx context.Context, token string) (*Identity, error)
}

// Gate guards protected routes.
type Gate struct {
	auth   authenticator
	logger *slog.Logger
}

// NewGate constructs a Gate.
func NewGate(auth authenticator, logger *slog.Logger) *Gate {
	return &Gate{auth: auth, logger: logger}
}

// Protect rejects requests without a valid session token and stores the identity in context.
func (g *Gate) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		if token == "" {
			httpx.RespondError(w, r, g.logger, httpx.Authentication(msgNotLoggedIn))
			return
		}
		identity, err := g.auth.Authenticate(r.Context(), token)
		if err != nil {
			if g.logger != nil {
				g.logger.Debug("session rejected", slog.String("path", r.URL.Path), slog.Any("error", err))
			}
			httpx.RespondError(w, r, g.logger, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), *identity)))
	})
}

// TokenFromRequest returns the bearer token, falling back to the session cookie.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			if token = strings.TrimSpace(token); token != "" {
				return token
			}
		}
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}
