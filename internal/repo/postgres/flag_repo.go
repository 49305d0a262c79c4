package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Vijayapardhu/risbow-backend-sub001/internal/domain/enums"
	"github.com/Vijayapardhu/risbow-backend-sub001/internal/domain/model"
)

var (
	ErrFlagNotFound      = errors.New("content flag not found")
	ErrDuplicateOpenFlag = errors.New("open flag already exists for content")
)

const flagColumns = `
id, content_type, content_id, reason, description, priority, status, report_count,
is_auto_flagged, vendor_id, reported_by, assigned_to, action, moderation_notes,
moderated_by, moderated_at, created_at, updated_at`

type FlagRepo struct {
	pool *pgxpool.Pool
}

func NewFlagRepo(pool *pgxpool.Pool) *FlagRepo {
	return &FlagRepo{pool: pool}
}

type CreateFlagParams struct {
	ContentType   enums.ContentType
	ContentID     int64
	Reason        enums.FlagReason
	Description   string
	Priority      enums.FlagPriority
	IsAutoFlagged bool
	VendorID      *int64
	ReportedBy    *int64
}

// Insert creates a fresh flag with report_count = 1. A partial unique index on
// (content_type, content_id) over open statuses turns a racing duplicate into
// ErrDuplicateOpenFlag so the caller can fall back to the increment path.
func (r *FlagRepo) Insert(ctx context.Context, p CreateFlagParams) (model.ContentFlag, error) {
	if r.pool == nil {
		return model.ContentFlag{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO content_flags (
	content_type,
	content_id,
	reason,
	description,
	priority,
	status,
	report_count,
	is_auto_flagged,
	vendor_id,
	reported_by,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, 'PENDING', 1, $6, $7, $8, NOW(), NOW())
RETURNING`+flagColumns,
		p.ContentType, p.ContentID, p.Reason, strings.TrimSpace(p.Description),
		p.Priority, p.IsAutoFlagged, p.VendorID, p.ReportedBy)

	flag, err := scanFlag(row)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ContentFlag{}, ErrDuplicateOpenFlag
		}
		return model.ContentFlag{}, fmt.Errorf("insert content flag: %w", err)
	}

	return flag, nil
}

func (r *FlagRepo) GetOpenByContent(ctx context.Context, contentType enums.ContentType, contentID int64) (model.ContentFlag, error) {
	if r.pool == nil {
		return model.ContentFlag{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
SELECT`+flagColumns+`
FROM content_flags
WHERE content_type = $1 AND content_id = $2 AND status IN ('PENDING', 'UNDER_REVIEW')
LIMIT 1
`, contentType, contentID)

	flag, err := scanFlag(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ContentFlag{}, ErrFlagNotFound
		}
		return model.ContentFlag{}, fmt.Errorf("get open flag by content: %w", err)
	}

	return flag, nil
}

// IncrementReport bumps report_count atomically and force-upgrades priority to
// HIGH once the count reaches 3, never downgrading an already higher priority.
func (r *FlagRepo) IncrementReport(ctx context.Context, flagID int64) (model.ContentFlag, error) {
	if r.pool == nil {
		return model.ContentFlag{}, fmt.Errorf("postgres pool is nil")
	}
	if flagID <= 0 {
		return model.ContentFlag{}, fmt.Errorf("invalid flag id")
	}

	row := r.pool.QueryRow(ctx, `
UPDATE content_flags
SET
	report_count = report_count + 1,
	priority = CASE
		WHEN report_count + 1 >= 3 AND priority IN ('LOW', 'MEDIUM') THEN 'HIGH'
		ELSE priority
	END,
	updated_at = NOW()
WHERE id = $1 AND status IN ('PENDING', 'UNDER_REVIEW')
RETURNING`+flagColumns, flagID)

	flag, err := scanFlag(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ContentFlag{}, ErrFlagNotFound
		}
		return model.ContentFlag{}, fmt.Errorf("increment flag report count: %w", err)
	}

	return flag, nil
}

func (r *FlagRepo) GetByID(ctx context.Context, flagID int64) (model.ContentFlag, error) {
	if r.pool == nil {
		return model.ContentFlag{}, fmt.Errorf("postgres pool is nil")
	}
	if flagID <= 0 {
		return model.ContentFlag{}, fmt.Errorf("invalid flag id")
	}

	row := r.pool.QueryRow(ctx, `
SELECT`+flagColumns+`
FROM content_flags
WHERE id = $1
LIMIT 1
`, flagID)

	flag, err := scanFlag(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ContentFlag{}, ErrFlagNotFound
		}
		return model.ContentFlag{}, fmt.Errorf("get flag by id: %w", err)
	}

	return flag, nil
}

func (r *FlagRepo) Assign(ctx context.Context, flagID, moderatorID int64) (model.ContentFlag, error) {
	if r.pool == nil {
		return model.ContentFlag{}, fmt.Errorf("postgres pool is nil")
	}
	if flagID <= 0 || moderatorID <= 0 {
		return model.ContentFlag{}, fmt.Errorf("invalid assignment payload")
	}

	row := r.pool.QueryRow(ctx, `
UPDATE content_flags
SET status = 'UNDER_REVIEW', assigned_to = $2, updated_at = NOW()
WHERE id = $1 AND status IN ('PENDING', 'UNDER_REVIEW')
RETURNING`+flagColumns, flagID, moderatorID)

	flag, err := scanFlag(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ContentFlag{}, ErrFlagNotFound
		}
		return model.ContentFlag{}, fmt.Errorf("assign flag: %w", err)
	}

	return flag, nil
}

// MarkResolved is guarded on status so resolution stays one-shot even when two
// moderators race; the loser gets ErrFlagNotFound.
func (r *FlagRepo) MarkResolved(
	ctx context.Context,
	flagID int64,
	action enums.ModerationAction,
	notes string,
	moderatedBy int64,
	moderatedAt time.Time,
) (model.ContentFlag, error) {
	if r.pool == nil {
		return model.ContentFlag{}, fmt.Errorf("postgres pool is nil")
	}
	if flagID <= 0 {
		return model.ContentFlag{}, fmt.Errorf("invalid flag id")
	}

	row := r.pool.QueryRow(ctx, `
UPDATE content_flags
SET
	status = 'RESOLVED',
	action = $2,
	moderation_notes = NULLIF($3, ''),
	moderated_by = $4,
	moderated_at = $5,
	updated_at = NOW()
WHERE id = $1 AND status <> 'RESOLVED'
RETURNING`+flagColumns, flagID, action, strings.TrimSpace(notes), moderatedBy, moderatedAt.UTC())

	flag, err := scanFlag(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ContentFlag{}, ErrFlagNotFound
		}
		return model.ContentFlag{}, fmt.Errorf("mark flag resolved: %w", err)
	}

	return flag, nil
}

type QueueFilter struct {
	Status      *enums.FlagStatus
	Priority    *enums.FlagPriority
	ContentType *enums.ContentType
	AssignedTo  *int64
}

// ListQueue returns flags in the review order the queue guarantees:
// most severe first, then most reported, then oldest.
func (r *FlagRepo) ListQueue(ctx context.Context, filter QueueFilter, page, limit int) ([]model.ContentFlag, int64, error) {
	if r.pool == nil {
		return nil, 0, fmt.Errorf("postgres pool is nil")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	where := make([]string, 0, 4)
	args := make([]interface{}, 0, 6)

	if filter.Status != nil {
		args = append(args, *filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	} else {
		where = append(where, "status IN ('PENDING', 'UNDER_REVIEW')")
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		where = append(where, fmt.Sprintf("priority = $%d", len(args)))
	}
	if filter.ContentType != nil {
		args = append(args, *filter.ContentType)
		where = append(where, fmt.Sprintf("content_type = $%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		where = append(where, fmt.Sprintf("assigned_to = $%d", len(args)))
	}

	whereClause := "WHERE " + strings.Join(where, " AND ")

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM content_flags `+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count flag queue: %w", err)
	}

	args = append(args, limit, (page-1)*limit)
	rows, err := r.pool.Query(ctx, `
SELECT`+flagColumns+`
FROM content_flags
`+whereClause+`
ORDER BY
	CASE priority
		WHEN 'CRITICAL' THEN 4
		WHEN 'HIGH' THEN 3
		WHEN 'MEDIUM' THEN 2
		ELSE 1
	END DESC,
	report_count DESC,
	created_at ASC
LIMIT $`+fmt.Sprint(len(args)-1)+` OFFSET $`+fmt.Sprint(len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list flag queue: %w", err)
	}
	defer rows.Close()

	flags := make([]model.ContentFlag, 0, limit)
	for rows.Next() {
		flag, scanErr := scanFlag(rows)
		if scanErr != nil {
			return nil, 0, fmt.Errorf("scan flag queue row: %w", scanErr)
		}
		flags = append(flags, flag)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate flag queue: %w", err)
	}

	return flags, total, nil
}

type QueueStatsRecord struct {
	Pending              int64
	UnderReview          int64
	Resolved             int64
	AutoFlagged          int64
	OpenByPriority       map[enums.FlagPriority]int64
	AvgResolutionMinutes int64
}

func (r *FlagRepo) Stats(ctx context.Context) (QueueStatsRecord, error) {
	if r.pool == nil {
		return QueueStatsRecord{}, fmt.Errorf("postgres pool is nil")
	}

	stats := QueueStatsRecord{OpenByPriority: make(map[enums.FlagPriority]int64, 4)}

	if err := r.pool.QueryRow(ctx, `
SELECT
	COUNT(*) FILTER (WHERE status = 'PENDING'),
	COUNT(*) FILTER (WHERE status = 'UNDER_REVIEW'),
	COUNT(*) FILTER (WHERE status = 'RESOLVED'),
	COUNT(*) FILTER (WHERE is_auto_flagged AND status IN ('PENDING', 'UNDER_REVIEW')),
	COALESCE(ROUND(AVG(EXTRACT(EPOCH FROM (moderated_at - created_at)) / 60) FILTER (WHERE moderated_at IS NOT NULL)), 0)::BIGINT
FROM content_flags
`).Scan(&stats.Pending, &stats.UnderReview, &stats.Resolved, &stats.AutoFlagged, &stats.AvgResolutionMinutes); err != nil {
		return QueueStatsRecord{}, fmt.Errorf("load queue stats: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
SELECT priority, COUNT(*)
FROM content_flags
WHERE status IN ('PENDING', 'UNDER_REVIEW')
GROUP BY priority
`)
	if err != nil {
		return QueueStatsRecord{}, fmt.Errorf("load queue priority breakdown: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var priority enums.FlagPriority
		var count int64
		if err := rows.Scan(&priority, &count); err != nil {
			return QueueStatsRecord{}, fmt.Errorf("scan queue priority row: %w", err)
		}
		stats.OpenByPriority[priority] = count
	}
	if err := rows.Err(); err != nil {
		return QueueStatsRecord{}, fmt.Errorf("iterate queue priority rows: %w", err)
	}

	return stats, nil
}

type ModeratorPerformanceRecord struct {
	ModeratorID          int64
	ResolvedCount        int64
	ApprovedCount        int64
	RemovedCount         int64
	AvgResolutionMinutes int64
}

// ModeratorPerformance aggregates resolved flags per moderator since the cutoff.
// Resolution time is measured only over flags with a recorded moderated_at.
func (r *FlagRepo) ModeratorPerformance(ctx context.Context, since time.Time) ([]ModeratorPerformanceRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	moderated_by,
	COUNT(*),
	COUNT(*) FILTER (WHERE action = 'APPROVE'),
	COUNT(*) FILTER (WHERE action = 'REMOVE'),
	COALESCE(ROUND(AVG(EXTRACT(EPOCH FROM (moderated_at - created_at)) / 60)), 0)::BIGINT
FROM content_flags
WHERE moderated_by IS NOT NULL AND moderated_at IS NOT NULL AND moderated_at >= $1
GROUP BY moderated_by
ORDER BY COUNT(*) DESC
`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("load moderator performance: %w", err)
	}
	defer rows.Close()

	records := make([]ModeratorPerformanceRecord, 0, 8)
	for rows.Next() {
		var rec ModeratorPerformanceRecord
		if err := rows.Scan(&rec.ModeratorID, &rec.ResolvedCount, &rec.ApprovedCount, &rec.RemovedCount, &rec.AvgResolutionMinutes); err != nil {
			return nil, fmt.Errorf("scan moderator performance row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moderator performance rows: %w", err)
	}

	return records, nil
}

func scanFlag(row pgx.Row) (model.ContentFlag, error) {
	var flag model.ContentFlag
	err := row.Scan(
		&flag.ID,
		&flag.ContentType,
		&flag.ContentID,
		&flag.Reason,
		&flag.Description,
		&flag.Priority,
		&flag.Status,
		&flag.ReportCount,
		&flag.IsAutoFlagged,
		&flag.VendorID,
		&flag.ReportedBy,
		&flag.AssignedTo,
		&flag.Action,
		&flag.ModerationNotes,
		&flag.ModeratedBy,
		&flag.ModeratedAt,
		&flag.CreatedAt,
		&flag.UpdatedAt,
	)
	if err != nil {
		return model.ContentFlag{}, err
	}
	return flag, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
