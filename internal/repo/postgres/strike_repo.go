package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Vijayapardhu/risbow-backend-sub001/internal/domain/enums"
	"github.com/Vijayapardhu/risbow-backend-sub001/internal/domain/model"
)

var ErrStrikeNotFound = errors.New("vendor strike not found")

const strikeColumns = `
id, vendor_id, type, points, reason, evidence, order_id, product_id, issued_by, issued_at,
resolution, resolution_notes, resolved_at, resolved_by, appealed_at, appeal_reason, appeal_evidence`

type StrikeRepo struct {
	pool *pgxpool.Pool
}

func NewStrikeRepo(pool *pgxpool.Pool) *StrikeRepo {
	return &StrikeRepo{pool: pool}
}

type IssueStrikeParams struct {
	VendorID  int64
	Type      enums.StrikeType
	Points    int
	Reason    string
	Evidence  []string
	OrderID   *int64
	ProductID *int64
	IssuedBy  int64
	IssuedAt  time.Time
}

// InsertTx writes the strike inside the caller's transaction so the insert and
// the discipline recomputation commit or roll back together.
func (r *StrikeRepo) InsertTx(ctx context.Context, tx pgx.Tx, p IssueStrikeParams) (model.VendorStrike, error) {
	if tx == nil {
		return model.VendorStrike{}, fmt.Errorf("transaction is required")
	}
	if p.VendorID <= 0 {
		return model.VendorStrike{}, fmt.Errorf("invalid strike payload")
	}

	evidence := p.Evidence
	if evidence == nil {
		evidence = []string{}
	}

	row := tx.QueryRow(ctx, `
INSERT INTO vendor_strikes (
	vendor_id,
	type,
	points,
	reason,
	evidence,
	order_id,
	product_id,
	issued_by,
	issued_at,
	appeal_evidence
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, '{}')
RETURNING`+strikeColumns,
		p.VendorID, p.Type, p.Points, strings.TrimSpace(p.Reason), evidence,
		p.OrderID, p.ProductID, p.IssuedBy, p.IssuedAt.UTC())

	strike, err := scanStrike(row)
	if err != nil {
		return model.VendorStrike{}, fmt.Errorf("insert vendor strike: %w", err)
	}

	return strike, nil
}

// ActiveTotalsTx reads the vendor's unresolved strike count and point sum
// inside the issuance transaction, before the new strike lands.
func (r *StrikeRepo) ActiveTotalsTx(ctx context.Context, tx pgx.Tx, vendorID int64) (int, int, error) {
	if tx == nil {
		return 0, 0, fmt.Errorf("transaction is required")
	}

	var count, points int
	if err := tx.QueryRow(ctx, `
SELECT COUNT(*), COALESCE(SUM(points), 0)
FROM vendor_strikes
WHERE vendor_id = $1 AND resolution IS NULL
`, vendorID).Scan(&count, &points); err != nil {
		return 0, 0, fmt.Errorf("load active strike totals: %w", err)
	}

	return count, points, nil
}

func (r *StrikeRepo) ActiveTotals(ctx context.Context, vendorID int64) (int, int, error) {
	if r.pool == nil {
		return 0, 0, fmt.Errorf("postgres pool is nil")
	}

	var count, points int
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*), COALESCE(SUM(points), 0)
FROM vendor_strikes
WHERE vendor_id = $1 AND resolution IS NULL
`, vendorID).Scan(&count, &points); err != nil {
		return 0, 0, fmt.Errorf("load active strike totals: %w", err)
	}

	return count, points, nil
}

func (r *StrikeRepo) GetByID(ctx context.Context, strikeID int64) (model.VendorStrike, error) {
	if r.pool == nil {
		return model.VendorStrike{}, fmt.Errorf("postgres pool is nil")
	}
	if strikeID <= 0 {
		return model.VendorStrike{}, fmt.Errorf("invalid strike id")
	}

	row := r.pool.QueryRow(ctx, `
SELECT`+strikeColumns+`
FROM vendor_strikes
WHERE id = $1
LIMIT 1
`, strikeID)

	strike, err := scanStrike(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.VendorStrike{}, ErrStrikeNotFound
		}
		return model.VendorStrike{}, fmt.Errorf("get strike by id: %w", err)
	}

	return strike, nil
}

func (r *StrikeRepo) ListByVendor(ctx context.Context, vendorID int64) ([]model.VendorStrike, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if vendorID <= 0 {
		return nil, fmt.Errorf("invalid vendor id")
	}

	rows, err := r.pool.Query(ctx, `
SELECT`+strikeColumns+`
FROM vendor_strikes
WHERE vendor_id = $1
ORDER BY issued_at DESC, id DESC
`, vendorID)
	if err != nil {
		return nil, fmt.Errorf("list vendor strikes: %w", err)
	}
	defer rows.Close()

	strikes := make([]model.VendorStrike, 0, 8)
	for rows.Next() {
		strike, scanErr := scanStrike(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan vendor strike row: %w", scanErr)
		}
		strikes = append(strikes, strike)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vendor strikes: %w", err)
	}

	return strikes, nil
}

// MarkResolved is guarded on resolution IS NULL so a strike resolves once.
func (r *StrikeRepo) MarkResolved(
	ctx context.Context,
	strikeID int64,
	resolution enums.StrikeResolution,
	notes string,
	resolvedBy int64,
	resolvedAt time.Time,
) (model.VendorStrike, error) {
	if r.pool == nil {
		return model.VendorStrike{}, fmt.Errorf("postgres pool is nil")
	}
	if strikeID <= 0 {
		return model.VendorStrike{}, fmt.Errorf("invalid strike id")
	}

	row := r.pool.QueryRow(ctx, `
UPDATE vendor_strikes
SET
	resolution = $2,
	resolution_notes = NULLIF($3, ''),
	resolved_by = $4,
	resolved_at = $5
WHERE id = $1 AND resolution IS NULL
RETURNING`+strikeColumns, strikeID, resolution, strings.TrimSpace(notes), resolvedBy, resolvedAt.UTC())

	strike, err := scanStrike(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.VendorStrike{}, ErrStrikeNotFound
		}
		return model.VendorStrike{}, fmt.Errorf("mark strike resolved: %w", err)
	}

	return strike, nil
}

// MarkAppealed records the one allowed appeal while the strike is unresolved.
func (r *StrikeRepo) MarkAppealed(
	ctx context.Context,
	strikeID int64,
	reason string,
	evidence []string,
	appealedAt time.Time,
) (model.VendorStrike, error) {
	if r.pool == nil {
		return model.VendorStrike{}, fmt.Errorf("postgres pool is nil")
	}
	if strikeID <= 0 {
		return model.VendorStrike{}, fmt.Errorf("invalid strike id")
	}

	if evidence == nil {
		evidence = []string{}
	}

	row := r.pool.QueryRow(ctx, `
UPDATE vendor_strikes
SET
	appealed_at = $2,
	appeal_reason = NULLIF($3, ''),
	appeal_evidence = $4
WHERE id = $1 AND resolution IS NULL AND appealed_at IS NULL
RETURNING`+strikeColumns, strikeID, appealedAt.UTC(), strings.TrimSpace(reason), evidence)

	strike, err := scanStrike(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.VendorStrike{}, ErrStrikeNotFound
		}
		return model.VendorStrike{}, fmt.Errorf("mark strike appealed: %w", err)
	}

	return strike, nil
}

func scanStrike(row pgx.Row) (model.VendorStrike, error) {
	var strike model.VendorStrike
	err := row.Scan(
		&strike.ID,
		&strike.VendorID,
		&strike.Type,
		&strike.Points,
		&strike.Reason,
		&strike.Evidence,
		&strike.OrderID,
		&strike.ProductID,
		&strike.IssuedBy,
		&strike.IssuedAt,
		&strike.Resolution,
		&strike.ResolutionNotes,
		&strike.ResolvedAt,
		&strike.ResolvedBy,
		&strike.AppealedAt,
		&strike.AppealReason,
		&strike.AppealEvidence,
	)
	if err != nil {
		return model.VendorStrike{}, err
	}
	return strike, nil
}
