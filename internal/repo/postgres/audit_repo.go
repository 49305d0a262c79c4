package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AuditRepo struct {
	pool *pgxpool.Pool
}

type AuditWriteRecord struct {
	ActorID      int64
	Action       string
	ResourceType string
	ResourceID   int64
	Details      map[string]any
	OccurredAt   time.Time
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

func (r *AuditRepo) Insert(ctx context.Context, rec AuditWriteRecord) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if rec.Action == "" {
		return fmt.Errorf("audit action is required")
	}

	details, err := json.Marshal(rec.Details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}

	occurredAt := rec.OccurredAt.UTC()
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO audit_log (
	id,
	actor_id,
	action,
	resource_type,
	resource_id,
	details,
	occurred_at,
	created_at
) VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, NOW())
`, uuid.NewString(), rec.ActorID, rec.Action, rec.ResourceType, rec.ResourceID, string(details), occurredAt); err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}

	return nil
}
