package products

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/storefront/internal/platform/db"
)

// ErrNotFound indicates no product matched, or none matched for the given owner.
var ErrNotFound = errors.New("products: not found")

// Repository defines persistence operations for products.
type Repository interface {
	List(ctx context.Context, owner uuid.UUID, q ListQuery) ([]Product, error)
	Count(ctx context.Context, owner uuid.UUID, name string) (int, error)
	ListByOwner(ctx context.Context, owner uuid.UUID) ([]Product, error)
	Get(ctx context.Context, id uuid.UUID) (*Product, error)
	InsertMany(ctx context.Context, products []Product) error
	Update(ctx context.Context, owner, id uuid.UUID, in UpdateInput, now time.Time) (*Product, error)
	Delete(ctx context.Context, owner, id uuid.UUID) error
	SetThumbnail(ctx context.Context, owner, id uuid.UUID, url string, now time.Time) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const productColumns = `id, product_owner_id, name, price, description, quantity, thumbnail, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Price, &p.Description, &p.Quantity, &p.Thumbnail, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func collect(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()
	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// ownerFilter renders the WHERE clause shared by List and Count.
func ownerFilter(owner uuid.UUID, name string) (string, []any) {
	where := `WHERE product_owner_id = $1`
	args := []any{owner}
	if name != "" {
		where += ` AND name ILIKE $2`
		args = append(args, containsPattern(name))
	}
	return where, args
}

func (r *repository) List(ctx context.Context, owner uuid.UUID, q ListQuery) ([]Product, error) {
	where, args := ownerFilter(owner, q.Name)
	query := fmt.Sprintf(`SELECT %s FROM products %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		productColumns, where, orderBy(q.Sort), len(args)+1, len(args)+2)
	args = append(args, q.Limit, q.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *repository) Count(ctx context.Context, owner uuid.UUID, name string) (int, error) {
	where, args := ownerFilter(owner, name)
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products `+where, args...).Scan(&total)
	return total, err
}

func (r *repository) ListByOwner(ctx context.Context, owner uuid.UUID) ([]Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE product_owner_id = $1 ORDER BY created_at DESC, id`, owner)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	return scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
}

// InsertMany writes every product in one batched transaction; either all rows land or none do.
func (r *repository) InsertMany(ctx context.Context, products []Product) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, p := range products {
			batch.Queue(
				`INSERT INTO products (id, product_owner_id, name, price, description, quantity, thumbnail, created_at, updated_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				p.ID, p.OwnerID, p.Name, p.Price, p.Description, p.Quantity, p.Thumbnail, p.CreatedAt, p.UpdatedAt,
			)
		}
		results := tx.SendBatch(ctx, batch)
		for range products {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return fmt.Errorf("products: insert batch: %w", err)
			}
		}
		return results.Close()
	})
}

func (r *repository) Update(ctx context.Context, owner, id uuid.UUID, in UpdateInput, now time.Time) (*Product, error) {
	return scanProduct(r.pool.QueryRow(ctx,
		`UPDATE products
		    SET name = COALESCE($1, name),
		        price = COALESCE($2, price),
		        description = COALESCE($3, description),
		        quantity = COALESCE($4, quantity),
		        updated_at = $5
		  WHERE id = $6 AND product_owner_id = $7
		RETURNING `+productColumns,
		in.Name, in.Price, in.Description, in.Quantity, now, id, owner,
	))
}

func (r *repository) Delete(ctx context.Context, owner, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1 AND product_owner_id = $2`, id, owner)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SetThumbnail(ctx context.Context, owner, id uuid.UUID, url string, now time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET thumbnail = $1, updated_at = $2 WHERE id = $3 AND product_owner_id = $4`,
		url, now, id, owner,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
