package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/odyssey-erp/storefront/internal/platform/httpx"
)

const (
	msgTokenInvalid = "Invalid token. Please log in again."
	msgTokenExpired = "Your token has expired! Please log in again."
)

// tokenPrecision is the resolution of iat/exp; sub-second so a password change
// invalidates tokens issued earlier in the same second.
const tokenPrecision = time.Millisecond

func init() {
	jwt.TimePrecision = tokenPrecision
}

// TokenConfig parameterises the codec.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

// Claims are the verified contents of a session token.
type Claims struct {
	Subject   uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenCodec signs and verifies HS256 session tokens. It holds no mutable state.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec validates cfg and returns a codec.
func NewTokenCodec(cfg TokenConfig) (*TokenCodec, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("auth: token secret is required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("auth: token ttl must be positive")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &TokenCodec{secret: cfg.Secret, ttl: cfg.TTL, now: now}, nil
}

// TTL exposes the configured token lifetime.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for subject that expires after the configured TTL.
func (c *TokenCodec) Issue(subject uuid.UUID) (string, error) {
	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return token, nil
}

// Verify checks signature, structure and expiry. Every failure is an authentication error.
func (c *TokenCodec) Verify(token string) (Claims, error) {
	var parsed jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return Claims{}, mapJWTError(err)
	}
	subject, err := uuid.Parse(parsed.Subject)
	if err != nil {
		return Claims{}, httpx.Authentication(msgTokenInvalid).Wrap(err)
	}
	if parsed.IssuedAt == nil {
		return Claims{}, httpx.Authentication(msgTokenInvalid)
	}
	// Fractional numeric dates pass through float64; rounding restores the issued millisecond.
	return Claims{
		Subject:   subject,
		IssuedAt:  parsed.IssuedAt.Round(tokenPrecision),
		ExpiresAt: parsed.ExpiresAt.Round(tokenPrecision),
	}, nil
}

func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return httpx.Authentication(msgTokenExpired).Wrap(err)
	}
	return httpx.Authentication(msgTokenInvalid).Wrap(err)
}
