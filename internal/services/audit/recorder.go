package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	pgrepo "github.com/Vijayapardhu/risbow-backend-sub001/internal/repo/postgres"
)

type Sink interface {
	Insert(ctx context.Context, rec pgrepo.AuditWriteRecord) error
}

// Recorder is the fire-and-forget audit collaborator. A failed write is
// logged and swallowed; audit problems never fail a pipeline operation.
type Recorder struct {
	sink   Sink
	logger *zap.Logger
	now    func() time.Time
}

func NewRecorder(sink Sink, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		sink:   sink,
		logger: logger,
		now:    time.Now,
	}
}

func (r *Recorder) Record(ctx context.Context, actorID int64, action, resourceType string, resourceID int64, details map[string]any) {
	if r == nil || r.sink == nil {
		return
	}

	err := r.sink.Insert(ctx, pgrepo.AuditWriteRecord{
		ActorID:      actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
		OccurredAt:   r.now().UTC(),
	})
	if err != nil {
		r.logger.Warn("audit record failed",
			zap.String("action", action),
			zap.String("resource_type", resourceType),
			zap.Int64("resource_id", resourceID),
			zap.Error(err),
		)
	}
}
