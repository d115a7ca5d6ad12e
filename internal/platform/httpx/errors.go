// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// Kind classifies a domain error. The set is closed; RespondError matches it exhaustively.
type Kind int

const (
	// KindValidation marks malformed or missing input.
	KindValidation Kind = iota + 1
	// KindAuthentication marks a missing, invalid or expired identity proof.
	KindAuthentication
	// KindAuthorization marks a valid identity lacking rights on the target.
	KindAuthorization
	// KindConflict marks a uniqueness violation.
	KindConflict
	// KindNotFound marks a referenced entity that does not exist.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindConflict:
		// Conflicts share 403 with authorization failures.
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error carrying a kind and a caller-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind so sentinel-style checks work.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Wrap attaches an underlying cause.
func (e *Error) Wrap(err error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Err: err}
}

// Sentinel kinds for errors.Is checks.
var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrUnauthorized = &Error{Kind: KindAuthentication}
	ErrForbidden    = &Error{Kind: KindAuthorization}
	ErrDuplicate    = &Error{Kind: KindConflict}
	ErrNotFound     = &Error{Kind: KindNotFound}
)

// Validation builds a KindValidation error.
func Validation(message string) *Error { return &Error{Kind: KindValidation, Message: message} }

// Authentication builds a KindAuthentication error.
func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

// Authorization builds a KindAuthorization error.
func Authorization(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

// Conflict builds a KindConflict error.
func Conflict(message string) *Error { return &Error{Kind: KindConflict, Message: message} }

// NotFound builds a KindNotFound error.
func NotFound(message string) *Error { return &Error{Kind: KindNotFound, Message: message} }

// KindOf reports the kind of err, if it is a domain error.
func KindOf(err error) (Kind, bool) {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind, true
	}
	return 0, false
}

const internalMessage = "Something went very wrong!"

// RespondError maps domain errors to the {status, message} envelope.
// Errors without a kind are logged and reported as a generic 500.
func RespondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var domainErr *Error
	if !errors.As(err, &domainErr) {
		if logger != nil {
			attrs := []any{slog.Any("error", err)}
			if r != nil {
				attrs = append(attrs, slog.String("method", r.Method), slog.String("path", r.URL.Path))
			}
			logger.Error("unhandled error", attrs...)
		}
		Fail(w, http.StatusInternalServerError, internalMessage)
		return
	}
	if domainErr.Err != nil && logger != nil {
		logger.Debug("request failed", slog.String("kind", domainErr.Kind.String()), slog.Any("error", domainErr.Err))
	}
	Fail(w, domainErr.Kind.Status(), domainErr.Message)
}
