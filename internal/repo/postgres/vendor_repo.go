package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrVendorNotFound = errors.New("vendor not found")

type VendorRepo struct {
	pool *pgxpool.Pool
}

type VendorRecord struct {
	ID          int64
	DisplayName string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewVendorRepo(pool *pgxpool.Pool) *VendorRepo {
	return &VendorRepo{pool: pool}
}

func (r *VendorRepo) GetByID(ctx context.Context, vendorID int64) (VendorRecord, error) {
	if r.pool == nil {
		return VendorRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if vendorID <= 0 {
		return VendorRecord{}, fmt.Errorf("invalid vendor id")
	}

	var rec VendorRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, display_name, is_active, created_at, updated_at
FROM vendors
WHERE id = $1
LIMIT 1
`, vendorID).Scan(&rec.ID, &rec.DisplayName, &rec.IsActive, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return VendorRecord{}, ErrVendorNotFound
		}
		return VendorRecord{}, fmt.Errorf("get vendor by id: %w", err)
	}

	return rec, nil
}

func (r *VendorRepo) Exists(ctx context.Context, vendorID int64) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}
	if vendorID <= 0 {
		return false, nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM vendors WHERE id = $1)
`, vendorID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check vendor exists: %w", err)
	}

	return exists, nil
}

// SetActive keeps the denormalized vendors.is_active flag in sync with
// discipline status.
func (r *VendorRepo) SetActive(ctx context.Context, vendorID int64, active bool) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if vendorID <= 0 {
		return fmt.Errorf("invalid vendor id")
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE vendors
SET is_active = $2, updated_at = NOW()
WHERE id = $1
`, vendorID, active); err != nil {
		return fmt.Errorf("set vendor active: %w", err)
	}

	return nil
}

func (r *VendorRepo) SetActiveTx(ctx context.Context, tx pgx.Tx, vendorID int64, active bool) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	if vendorID <= 0 {
		return fmt.Errorf("invalid vendor id")
	}

	if _, err := tx.Exec(ctx, `
UPDATE vendors
SET is_active = $2, updated_at = NOW()
WHERE id = $1
`, vendorID, active); err != nil {
		return fmt.Errorf("set vendor active: %w", err)
	}

	return nil
}
