package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrReviewNotFound = errors.New("review not found")

type ReviewRepo struct {
	pool *pgxpool.Pool
}

func NewReviewRepo(pool *pgxpool.Pool) *ReviewRepo {
	return &ReviewRepo{pool: pool}
}

func (r *ReviewRepo) Exists(ctx context.Context, reviewID int64) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}
	if reviewID <= 0 {
		return false, nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM reviews WHERE id = $1)
`, reviewID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check review exists: %w", err)
	}

	return exists, nil
}

// OwnerID resolves the vendor the reviewed product belongs to.
func (r *ReviewRepo) OwnerID(ctx context.Context, reviewID int64) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if reviewID <= 0 {
		return 0, fmt.Errorf("invalid review id")
	}

	var vendorID int64
	err := r.pool.QueryRow(ctx, `
SELECT p.vendor_id
FROM reviews rv
JOIN products p ON p.id = rv.product_id
WHERE rv.id = $1
`, reviewID).Scan(&vendorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrReviewNotFound
		}
		return 0, fmt.Errorf("get review owner: %w", err)
	}

	return vendorID, nil
}

// Delete hard-removes the review. Reviews are the only content type removed
// physically on moderation.
func (r *ReviewRepo) Delete(ctx context.Context, reviewID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if reviewID <= 0 {
		return fmt.Errorf("invalid review id")
	}

	if _, err := r.pool.Exec(ctx, `
DELETE FROM reviews
WHERE id = $1
`, reviewID); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	return nil
}
