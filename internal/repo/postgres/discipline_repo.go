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

var ErrDisciplineNotFound = errors.New("vendor discipline not found")

const disciplineColumns = `
id, vendor_id, status, reason, started_at, ends_at, ended_at, applied_by, lifted_by, lift_reason`

type DisciplineRepo struct {
	pool *pgxpool.Pool
}

func NewDisciplineRepo(pool *pgxpool.Pool) *DisciplineRepo {
	return &DisciplineRepo{pool: pool}
}

type ApplyDisciplineParams struct {
	VendorID  int64
	Status    enums.DisciplineStatus
	Reason    string
	StartedAt time.Time
	EndsAt    *time.Time
	AppliedBy int64
}

// ExpireActiveTx terminates whatever active record the vendor carries so the
// one-active-record invariant holds before a new record is inserted.
func (r *DisciplineRepo) ExpireActiveTx(ctx context.Context, tx pgx.Tx, vendorID int64, endedAt time.Time) (int64, error) {
	if tx == nil {
		return 0, fmt.Errorf("transaction is required")
	}
	if vendorID <= 0 {
		return 0, fmt.Errorf("invalid vendor id")
	}

	tag, err := tx.Exec(ctx, `
UPDATE vendor_disciplines
SET status = 'EXPIRED', ended_at = $2
WHERE vendor_id = $1 AND status IN ('WARNING', 'SUSPENDED', 'BANNED')
`, vendorID, endedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("expire active discipline: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *DisciplineRepo) InsertTx(ctx context.Context, tx pgx.Tx, p ApplyDisciplineParams) (model.VendorDiscipline, error) {
	if tx == nil {
		return model.VendorDiscipline{}, fmt.Errorf("transaction is required")
	}
	if p.VendorID <= 0 {
		return model.VendorDiscipline{}, fmt.Errorf("invalid discipline payload")
	}

	var endsAt *time.Time
	if p.EndsAt != nil {
		v := p.EndsAt.UTC()
		endsAt = &v
	}

	row := tx.QueryRow(ctx, `
INSERT INTO vendor_disciplines (
	vendor_id,
	status,
	reason,
	started_at,
	ends_at,
	applied_by
) VALUES ($1, $2, $3, $4, $5, $6)
RETURNING`+disciplineColumns,
		p.VendorID, p.Status, strings.TrimSpace(p.Reason), p.StartedAt.UTC(), endsAt, p.AppliedBy)

	discipline, err := scanDiscipline(row)
	if err != nil {
		return model.VendorDiscipline{}, fmt.Errorf("insert vendor discipline: %w", err)
	}

	return discipline, nil
}

func (r *DisciplineRepo) GetByID(ctx context.Context, disciplineID int64) (model.VendorDiscipline, error) {
	if r.pool == nil {
		return model.VendorDiscipline{}, fmt.Errorf("postgres pool is nil")
	}
	if disciplineID <= 0 {
		return model.VendorDiscipline{}, fmt.Errorf("invalid discipline id")
	}

	row := r.pool.QueryRow(ctx, `
SELECT`+disciplineColumns+`
FROM vendor_disciplines
WHERE id = $1
LIMIT 1
`, disciplineID)

	discipline, err := scanDiscipline(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.VendorDiscipline{}, ErrDisciplineNotFound
		}
		return model.VendorDiscipline{}, fmt.Errorf("get discipline by id: %w", err)
	}

	return discipline, nil
}

func (r *DisciplineRepo) GetActiveByVendor(ctx context.Context, vendorID int64) (model.VendorDiscipline, error) {
	if r.pool == nil {
		return model.VendorDiscipline{}, fmt.Errorf("postgres pool is nil")
	}
	if vendorID <= 0 {
		return model.VendorDiscipline{}, fmt.Errorf("invalid vendor id")
	}

	row := r.pool.QueryRow(ctx, `
SELECT`+disciplineColumns+`
FROM vendor_disciplines
WHERE vendor_id = $1 AND status IN ('WARNING', 'SUSPENDED', 'BANNED')
ORDER BY started_at DESC, id DESC
LIMIT 1
`, vendorID)

	discipline, err := scanDiscipline(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.VendorDiscipline{}, ErrDisciplineNotFound
		}
		return model.VendorDiscipline{}, fmt.Errorf("get active discipline: %w", err)
	}

	return discipline, nil
}

func (r *DisciplineRepo) ListByVendor(ctx context.Context, vendorID int64) ([]model.VendorDiscipline, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if vendorID <= 0 {
		return nil, fmt.Errorf("invalid vendor id")
	}

	rows, err := r.pool.Query(ctx, `
SELECT`+disciplineColumns+`
FROM vendor_disciplines
WHERE vendor_id = $1
ORDER BY started_at DESC, id DESC
`, vendorID)
	if err != nil {
		return nil, fmt.Errorf("list vendor disciplines: %w", err)
	}
	defer rows.Close()

	disciplines := make([]model.VendorDiscipline, 0, 4)
	for rows.Next() {
		discipline, scanErr := scanDiscipline(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan vendor discipline row: %w", scanErr)
		}
		disciplines = append(disciplines, discipline)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vendor disciplines: %w", err)
	}

	return disciplines, nil
}

// MarkLifted is guarded on the active statuses; lifting a terminated record
// falls through to ErrDisciplineNotFound and the service maps the conflict.
func (r *DisciplineRepo) MarkLifted(ctx context.Context, disciplineID, liftedBy int64, reason string, endedAt time.Time) (model.VendorDiscipline, error) {
	if r.pool == nil {
		return model.VendorDiscipline{}, fmt.Errorf("postgres pool is nil")
	}
	if disciplineID <= 0 {
		return model.VendorDiscipline{}, fmt.Errorf("invalid discipline id")
	}

	row := r.pool.QueryRow(ctx, `
UPDATE vendor_disciplines
SET status = 'LIFTED', ended_at = $2, lifted_by = $3, lift_reason = NULLIF($4, '')
WHERE id = $1 AND status IN ('WARNING', 'SUSPENDED', 'BANNED')
RETURNING`+disciplineColumns, disciplineID, endedAt.UTC(), liftedBy, strings.TrimSpace(reason))

	discipline, err := scanDiscipline(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.VendorDiscipline{}, ErrDisciplineNotFound
		}
		return model.VendorDiscipline{}, fmt.Errorf("mark discipline lifted: %w", err)
	}

	return discipline, nil
}

type ExpiredDisciplineRecord struct {
	ID       int64
	VendorID int64
}

// ExpireDue sweeps lapsed suspensions. The CTE flips the discipline row and
// restores the vendor in one statement, so a record is expired and the vendor
// reactivated atomically; re-running the sweep matches nothing.
func (r *DisciplineRepo) ExpireDue(ctx context.Context, now time.Time) ([]ExpiredDisciplineRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
WITH expired AS (
	UPDATE vendor_disciplines
	SET status = 'EXPIRED', ended_at = $1
	WHERE status = 'SUSPENDED' AND ends_at IS NOT NULL AND ends_at <= $1
	RETURNING id, vendor_id
),
reactivated AS (
	UPDATE vendors v
	SET is_active = TRUE, updated_at = NOW()
	FROM expired e
	WHERE v.id = e.vendor_id
)
SELECT id, vendor_id FROM expired
`, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("expire due disciplines: %w", err)
	}
	defer rows.Close()

	expired := make([]ExpiredDisciplineRecord, 0, 4)
	for rows.Next() {
		var rec ExpiredDisciplineRecord
		if err := rows.Scan(&rec.ID, &rec.VendorID); err != nil {
			return nil, fmt.Errorf("scan expired discipline row: %w", err)
		}
		expired = append(expired, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expired disciplines: %w", err)
	}

	return expired, nil
}

func scanDiscipline(row pgx.Row) (model.VendorDiscipline, error) {
	var discipline model.VendorDiscipline
	err := row.Scan(
		&discipline.ID,
		&discipline.VendorID,
		&discipline.Status,
		&discipline.Reason,
		&discipline.StartedAt,
		&discipline.EndsAt,
		&discipline.EndedAt,
		&discipline.AppliedBy,
		&discipline.LiftedBy,
		&discipline.LiftReason,
	)
	if err != nil {
		return model.VendorDiscipline{}, err
	}
	return discipline, nil
}
