package postgres

import (
	"context"
	"errors"
	"fmt"

	domain "supermarket/backend/internal/domain/product"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation = "23505"

	nameConstraint = "products_name_key"
	skuConstraint  = "products_sku_key"

	productColumns = `id, name, sku, description, price::text, quantity, created_at, updated_at`
)

// ProductRepository persists products in PostgreSQL.
//
// Mutations take a SHARE ROW EXCLUSIVE lock on the table for the life of
// their transaction. That mode conflicts with itself and with the row locks
// taken by DELETE, so writers run one at a time, while plain SELECTs are not
// blocked.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository constructs a repository.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

var _ domain.Repository = (*ProductRepository)(nil)

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockProducts(ctx, tx); err != nil {
			return err
		}
		if rej, err := findConflicts(ctx, tx, product, ""); err != nil {
			return err
		} else if rej != nil {
			return rej
		}

		const query = `
INSERT INTO products (id, name, name_key, sku, description, price, quantity, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, $9)
`
		_, err := tx.Exec(ctx, query,
			product.ID,
			product.Name,
			domain.NameKey(product.Name),
			product.SKU,
			product.Description,
			product.Price.String(),
			product.Quantity,
			product.CreatedAt,
			product.UpdatedAt,
		)
		return mapWriteError(err)
	})
}

// GetByID fetches a product by id.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	product, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return product, nil
}

// List returns all products, newest first.
func (r *ProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC, seq DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

// Update writes every mutable field of product. id and created_at are never
// rewritten.
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockProducts(ctx, tx); err != nil {
			return err
		}
		if rej, err := findConflicts(ctx, tx, product, product.ID); err != nil {
			return err
		} else if rej != nil {
			return rej
		}

		const query = `
UPDATE products
SET name = $2,
    name_key = $3,
    sku = $4,
    description = $5,
    price = $6::numeric,
    quantity = $7,
    updated_at = $8
WHERE id = $1
`
		tag, err := tx.Exec(ctx, query,
			product.ID,
			product.Name,
			domain.NameKey(product.Name),
			product.SKU,
			product.Description,
			product.Price.String(),
			product.Quantity,
			product.UpdatedAt,
		)
		if err != nil {
			return mapWriteError(err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

// Delete removes a product by id.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM products WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func lockProducts(ctx context.Context, tx pgx.Tx) error {
	if _, err := tx.Exec(ctx, `LOCK TABLE products IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return fmt.Errorf("lock products: %w", err)
	}
	return nil
}

func findConflicts(ctx context.Context, tx pgx.Tx, product *domain.Product, excludeID string) (*domain.Rejection, error) {
	const query = `
SELECT
    coalesce(bool_or(name_key = $1), false),
    coalesce(bool_or($2::text IS NOT NULL AND sku = $2::text), false)
FROM products
WHERE id <> $3
  AND (name_key = $1 OR ($2::text IS NOT NULL AND sku = $2::text))
`
	var nameTaken, skuTaken bool
	if err := tx.QueryRow(ctx, query, domain.NameKey(product.Name), product.SKU, excludeID).Scan(&nameTaken, &skuTaken); err != nil {
		return nil, fmt.Errorf("check uniqueness: %w", err)
	}
	return domain.DuplicateRejection(nameTaken, skuTaken), nil
}

// mapWriteError turns a unique index violation that slipped past the locked
// check into the matching rejection.
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case nameConstraint:
			return domain.DuplicateRejection(true, false)
		case skuConstraint:
			return domain.DuplicateRejection(false, true)
		}
	}
	return err
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p     domain.Product
		price string
	)
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.SKU,
		&p.Description,
		&price,
		&p.Quantity,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Price, err = domain.ParsePrice(price); err != nil {
		return nil, err
	}
	return &p, nil
}
