package auth

import (
	"net/http"
	"strings"
	"time"
)

const (
	// CookieName carries the session token.
	CookieName = "jwt"
	// LoggedOutValue overwrites the token on logout.
	LoggedOutValue = "loggedout"

	logoutCookieTTL = 10 * time.Second
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Days int
	Now  func() time.Time
}

// CookieWriter sets and expires the session cookie.
type CookieWriter struct {
	days int
	now  func() time.Time
}

// NewCookieWriter builds a CookieWriter, defaulting to a 90 day cookie.
func NewCookieWriter(cfg CookieConfig) CookieWriter {
	days := cfg.Days
	if days <= 0 {
		days = 90
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return CookieWriter{days: days, now: now}
}

// Set writes token as an HttpOnly cookie, marked Secure for TLS or TLS-terminated requests.
func (c CookieWriter) Set(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  c.now().Add(time.Duration(c.days) * 24 * time.Hour),
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
	})
}

// Clear overwrites the session cookie with a short-lived placeholder.
func (c CookieWriter) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    LoggedOutValue,
		Path:     "/",
		Expires:  c.now().Add(logoutCookieTTL),
		HttpOnly: true,
	})
}

// IsSecureRequest reports whether the client connection is TLS, directly or via a proxy.
func IsSecureRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
