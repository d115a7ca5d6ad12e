package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates no identity matched the lookup.
	ErrNotFound = errors.New("auth: identity not found")
	// ErrEmailTaken indicates the unique email index rejected a write.
	ErrEmailTaken = errors.New("auth: email already registered")
)

const uniqueViolation = "23505"

// Repository defines persistence operations for identities.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Identity, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Identity, error)
	Create(ctx context.Context, identity Identity) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string, changedAt time.Time) error
	UpdateProfile(ctx context.Context, id uuid.UUID, name, email *string) (*Identity, error)
	List(ctx context.Context, limit, offset int) ([]Identity, int, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const identityColumns = `id, name, email, password_hash, password_changed_at, created_at, updated_at`

func scanIdentity(row pgx.Row) (*Identity, error) {
	var identity Identity
	err := row.Scan(
		&identity.ID,
		&identity.Name,
		&identity.Email,
		&identity.PasswordHash,
		&identity.PasswordChangedAt,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &identity, nil
}

// FindByEmail fetches an identity by its normalized email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Identity, error) {
	return scanIdentity(r.pool.QueryRow(ctx, `SELECT `+identityColumns+` FROM users WHERE email = $1`, email))
}

// FindByID fetches an identity by id.
func (r *PGRepository) FindByID(ctx context.Context, id uuid.UUID) (*Identity, error) {
	return scanIdentity(r.pool.QueryRow(ctx, `SELECT `+identityColumns+` FROM users WHERE id = $1`, id))
}

// Create inserts a new identity.
func (r *PGRepository) Create(ctx context.Context, identity Identity) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, password_changed_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		identity.ID, identity.Name, identity.Email, identity.PasswordHash, identity.PasswordChangedAt,
		identity.CreatedAt, identity.UpdatedAt,
	)
	return mapWriteError(err)
}

// UpdatePassword replaces the hash and stamps the change time in one statement.
func (r *PGRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string, changedAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1, password_changed_at = $2, updated_at = $2 WHERE id = $3`,
		hash, changedAt, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateProfile changes name and/or email; nil fields are left untouched.
func (r *PGRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name, email *string) (*Identity, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE users
		    SET name = COALESCE($1, name),
		        email = COALESCE($2, email),
		        updated_at = NOW()
		  WHERE id = $3
		RETURNING `+identityColumns,
		name, email, id,
	)
	identity, err := scanIdentity(row)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return identity, nil
}

// List returns a page of identities ordered by creation time with the total count.
func (r *PGRepository) List(ctx context.Context, limit, offset int) ([]Identity, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+identityColumns+` FROM users ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var identities []Identity
	for rows.Next() {
		identity, err := scanIdentity(rows)
		if err != nil {
			return nil, 0, err
		}
		identities = append(identities, *identity)
	}
	return identities, total, rows.Err()
}

func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	return err
}

var _ Repository = (*PGRepository)(nil)
