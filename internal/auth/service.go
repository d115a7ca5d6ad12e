package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/storefront/internal/platform/httpx"
)

const (
	msgUserExists         = "User already exists"
	msgMissingCredentials = "Please provide email and password!"
	msgBadCredentials     = "Incorrect email or password"
	msgUserGone           = "The user belonging to this token does no longer exist."
	msgPasswordChanged    = "User recently changed password! Please log in again."
	msgWrongPassword      = "Your current password is wrong."
	msgNotSelf            = "You can only update your own account"
	msgNothingToUpdate    = "Please provide name or email to update"
	msgEmailTaken         = "Email already in use"
	msgUserNotFound       = "No user found with that ID"
)

// Notifier receives signup events. Failures are logged and never fail the signup.
type Notifier interface {
	Welcome(ctx context.Context, identity Identity) error
}

// Service wraps authentication business rules.
type Service struct {
	repo      Repository
	codec     *TokenCodec
	logger    *slog.Logger
	notifier  Notifier
	validator *validator.Validate
	now       func() time.Time
	hashCost  int
	dummyHash []byte
}

// Option customises a Service.
type Option func(*Service)

// WithNotifier registers a signup notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

// NewService constructs a new Service.
func NewService(repo Repository, codec *TokenCodec, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:      repo,
		codec:     codec,
		logger:    logger,
		validator: httpx.NewValidator(),
		now:       time.Now,
		hashCost:  bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	// Compared on unknown emails so both login failures take the same time.
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("storefront-dummy-password"), s.hashCost)
	return s
}

// Signup creates an identity and issues its first token.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = NormalizeEmail(in.Email)
	if err := s.validator.Struct(in); err != nil {
		return nil, httpx.ValidationFrom(err)
	}

	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, httpx.Conflict(msgUserExists)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("auth: lookup email: %w", err)
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	identity := Identity{
		ID:           uuid.New(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, identity); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, httpx.Conflict(msgUserExists)
		}
		return nil, fmt.Errorf("auth: create identity: %w", err)
	}

	session, err := s.issue(identity)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		if err := s.notifier.Welcome(ctx, identity); err != nil {
			s.logger.Warn("welcome notification", slog.String("user_id", identity.ID.String()), slog.Any("error", err))
		}
	}
	return session, nil
}

// Login validates email/password credentials. Unknown email and wrong password fail identically.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	email := NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, httpx.Validation(msgMissingCredentials)
	}

	identity, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("auth: lookup email: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(in.Password))
		return nil, httpx.Authentication(msgBadCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(in.Password)); err != nil {
		return nil, httpx.Authentication(msgBadCredentials)
	}
	return s.issue(*identity)
}

// Authenticate verifies a session token and resolves the identity it names.
func (s *Service) Authenticate(ctx context.Context, token string) (*Identity, error) {
	claims, err := s.codec.Verify(token)
	if err != nil {
		return nil, err
	}
	identity, err := s.repo.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httpx.Authentication(msgUserGone)
		}
		return nil, fmt.Errorf("auth: load identity: %w", err)
	}
	if identity.ChangedPasswordAfter(claims.IssuedAt) {
		return nil, httpx.Authentication(msgPasswordChanged)
	}
	return identity, nil
}

// ChangePassword replaces the caller's password, invalidating every token issued before the change.
func (s *Service) ChangePassword(ctx context.Context, caller Identity, in ChangePasswordInput) (*Session, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, httpx.ValidationFrom(err)
	}
	current, err := s.repo.FindByID(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httpx.Authentication(msgUserGone)
		}
		return nil, fmt.Errorf("auth: load identity: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(current.PasswordHash), []byte(in.PasswordCurrent)); err != nil {
		return nil, httpx.Authentication(msgWrongPassword)
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	changedAt := s.now().UTC()
	if err := s.repo.UpdatePassword(ctx, current.ID, hash, changedAt); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httpx.Authentication(msgUserGone)
		}
		return nil, fmt.Errorf("auth: update password: %w", err)
	}
	current.PasswordHash = hash
	current.PasswordChangedAt = &changedAt
	current.UpdatedAt = changedAt
	return s.issue(*current)
}

// UpdateProfile edits name/email of target. Only the identity itself may do so.
func (s *Service) UpdateProfile(ctx context.Context, caller Identity, target uuid.UUID, in UpdateProfileInput) (*Identity, error) {
	if err := RequireOwner(target, caller, msgNotSelf); err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	if in.Email != nil {
		email := NormalizeEmail(*in.Email)
		in.Email = &email
	}
	if in.Name == nil && in.Email == nil {
		return nil, httpx.Validation(msgNothingToUpdate)
	}
	if err := s.validator.Struct(in); err != nil {
		return nil, httpx.ValidationFrom(err)
	}
	identity, err := s.repo.UpdateProfile(ctx, target, in.Name, in.Email)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken):
			return nil, httpx.Conflict(msgEmailTaken)
		case errors.Is(err, ErrNotFound):
			return nil, httpx.NotFound(msgUserNotFound)
		default:
			return nil, fmt.Errorf("auth: update profile: %w", err)
		}
	}
	return identity, nil
}

// Me reloads the caller's identity from the store.
func (s *Service) Me(ctx context.Context, caller Identity) (*Identity, error) {
	return s.GetUser(ctx, caller.ID)
}

// GetUser fetches an identity by id.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*Identity, error) {
	identity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httpx.NotFound(msgUserNotFound)
		}
		return nil, fmt.Errorf("auth: get user: %w", err)
	}
	return identity, nil
}

// ListUsers returns a page of identities and the total count.
func (s *Service) ListUsers(ctx context.Context, page Page) ([]Identity, int, error) {
	if page.Limit <= 0 || page.Limit > 1000 {
		page.Limit = 100
	}
	identities, total, err := s.repo.List(ctx, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("auth: list users: %w", err)
	}
	return identities, total, nil
}

func (s *Service) issue(identity Identity) (*Session, error) {
	token, err := s.codec.Issue(identity.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Identity: identity, Token: token}, nil
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", httpx.Validation("password must be at most 72 bytes").Wrap(err)
		}
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(hash), nil
}
