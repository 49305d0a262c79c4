package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrBannerNotFound = errors.New("banner not found")

type BannerRepo struct {
	pool *pgxpool.Pool
}

func NewBannerRepo(pool *pgxpool.Pool) *BannerRepo {
	return &BannerRepo{pool: pool}
}

func (r *BannerRepo) Exists(ctx context.Context, bannerID int64) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}
	if bannerID <= 0 {
		return false, nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM banners WHERE id = $1)
`, bannerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check banner exists: %w", err)
	}

	return exists, nil
}

func (r *BannerRepo) OwnerID(ctx context.Context, bannerID int64) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if bannerID <= 0 {
		return 0, fmt.Errorf("invalid banner id")
	}

	var vendorID int64
	err := r.pool.QueryRow(ctx, `
SELECT vendor_id FROM banners WHERE id = $1
`, bannerID).Scan(&vendorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrBannerNotFound
		}
		return 0, fmt.Errorf("get banner owner: %w", err)
	}

	return vendorID, nil
}

// MarkRejected moves the banner campaign to REJECTED on removal.
func (r *BannerRepo) MarkRejected(ctx context.Context, bannerID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if bannerID <= 0 {
		return fmt.Errorf("invalid banner id")
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE banners
SET status = 'REJECTED', updated_at = NOW()
WHERE id = $1
`, bannerID); err != nil {
		return fmt.Errorf("mark banner rejected: %w", err)
	}

	return nil
}
