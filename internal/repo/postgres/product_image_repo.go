package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrProductImageNotFound = errors.New("product image not found")

type ProductImageRepo struct {
	pool *pgxpool.Pool
}

func NewProductImageRepo(pool *pgxpool.Pool) *ProductImageRepo {
	return &ProductImageRepo{pool: pool}
}

func (r *ProductImageRepo) Exists(ctx context.Context, imageID int64) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}
	if imageID <= 0 {
		return false, nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM product_images WHERE id = $1)
`, imageID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check product image exists: %w", err)
	}

	return exists, nil
}

// OwnerID resolves the vendor through the owning product.
func (r *ProductImageRepo) OwnerID(ctx context.Context, imageID int64) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if imageID <= 0 {
		return 0, fmt.Errorf("invalid product image id")
	}

	var vendorID int64
	err := r.pool.QueryRow(ctx, `
SELECT p.vendor_id
FROM product_images pi
JOIN products p ON p.id = pi.product_id
WHERE pi.id = $1
`, imageID).Scan(&vendorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrProductImageNotFound
		}
		return 0, fmt.Errorf("get product image owner: %w", err)
	}

	return vendorID, nil
}

func (r *ProductImageRepo) Deactivate(ctx context.Context, imageID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if imageID <= 0 {
		return fmt.Errorf("invalid product image id")
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE product_images
SET is_active = FALSE, updated_at = NOW()
WHERE id = $1
`, imageID); err != nil {
		return fmt.Errorf("deactivate product image: %w", err)
	}

	return nil
}
