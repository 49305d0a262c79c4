package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrProductNotFound = errors.New("product not found")

type ProductRepo struct {
	pool *pgxpool.Pool
}

func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

func (r *ProductRepo) Exists(ctx context.Context, productID int64) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}
	if productID <= 0 {
		return false, nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)
`, productID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check product exists: %w", err)
	}

	return exists, nil
}

func (r *ProductRepo) OwnerID(ctx context.Context, productID int64) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if productID <= 0 {
		return 0, fmt.Errorf("invalid product id")
	}

	var vendorID int64
	err := r.pool.QueryRow(ctx, `
SELECT vendor_id FROM products WHERE id = $1
`, productID).Scan(&vendorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrProductNotFound
		}
		return 0, fmt.Errorf("get product owner: %w", err)
	}

	return vendorID, nil
}

func (r *ProductRepo) Deactivate(ctx context.Context, productID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if productID <= 0 {
		return fmt.Errorf("invalid product id")
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE products
SET is_active = FALSE, updated_at = NOW()
WHERE id = $1
`, productID); err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}

	return nil
}
