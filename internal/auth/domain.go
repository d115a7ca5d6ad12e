package auth

import (
	"time"

	"github.com/google/uuid"
)

// Identity represents a registered user account.
type Identity struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"`
	PasswordChangedAt *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// ChangedPasswordAfter reports whether the password was changed after a token issued at iat.
// Both sides are compared at token precision; a token issued at the change instant stays valid.
func (i Identity) ChangedPasswordAfter(iat time.Time) bool {
	if i.PasswordChangedAt == nil {
		return false
	}
	return i.PasswordChangedAt.Truncate(tokenPrecision).After(iat.Truncate(tokenPrecision))
}

// Session is an identity paired with a freshly issued token.
type Session struct {
	Identity Identity
	Token    string
}

// SignupInput carries signup fields.
type SignupInput struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginInput carries login credentials.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordInput carries the password change form.
type ChangePasswordInput struct {
	PasswordCurrent string `json:"passwordCurrent" validate:"required"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// UpdateProfileInput carries the editable identity fields.
type UpdateProfileInput struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=120"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// Page selects a window of a listing.
type Page struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}
