package discipline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Vijayapardhu/risbow-backend-sub001/internal/domain/enums"
	"github.com/Vijayapardhu/risbow-backend-sub001/internal/domain/model"
	"github.com/Vijayapardhu/risbow-backend-sub001/internal/domain/rules"
	pgrepo "github.com/Vijayapardhu/risbow-backend-sub001/internal/repo/postgres"
	auditsvc "github.com/Vijayapardhu/risbow-backend-sub001/internal/services/audit"
)

const autoLiftReason = "auto-lifted after all strikes resolved"

var (
	ErrValidation          = errors.New("validation error")
	ErrVendorNotFound      = errors.New("vendor not found")
	ErrDisciplineNotFound  = errors.New("discipline record not found")
	ErrDisciplineNotActive = errors.New("discipline record is not active")
)

type Store interface {
	ExpireActiveTx(ctx context.Context, tx pgx.Tx, vendorID int64, endedAt time.Time) (int64, error)
	InsertTx(ctx context.Context, tx pgx.Tx, p pgrepo.ApplyDisciplineParams) (model.VendorDiscipline, error)
	GetByID(ctx context.Context, disciplineID int64) (model.VendorDiscipline, error)
	GetActiveByVendor(ctx context.Context, vendorID int64) (model.VendorDiscipline, error)
	ListByVendor(ctx context.Context, vendorID int64) ([]model.VendorDiscipline, error)
	MarkLifted(ctx context.Context, disciplineID, liftedBy int64, reason string, endedAt time.Time) (model.VendorDiscipline, error)
	ExpireDue(ctx context.Context, now time.Time) ([]pgrepo.ExpiredDisciplineRecord, error)
}

type VendorStore interface {
	Exists(ctx context.Context, vendorID int64) (bool, error)
	SetActive(ctx context.Context, vendorID int64, active bool) error
	SetActiveTx(ctx context.Context, tx pgx.Tx, vendorID int64, active bool) error
}

type StrikeCounter interface {
	ActiveTotals(ctx context.Context, vendorID int64) (int, int, error)
}

type Dependencies struct {
	Pool        *pgxpool.Pool
	Disciplines Store
	Vendors     VendorStore
	Strikes     StrikeCounter
	Audit       *auditsvc.Recorder
	Logger      *zap.Logger
}

type Service struct {
	disciplines Store
	vendors     VendorStore
	strikes     StrikeCounter
	audit       *auditsvc.Recorder
	logger      *zap.Logger
	thresholds  rules.DisciplineThresholds
	runTx       func(context.Context, func(context.Context, pgx.Tx) error) error
	now         func() time.Time
}

func NewService(deps Dependencies, thresholds rules.DisciplineThresholds) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pool := deps.Pool
	return &Service{
		disciplines: deps.Disciplines,
		vendors:     deps.Vendors,
		strikes:     deps.Strikes,
		audit:       deps.Audit,
		logger:      logger,
		thresholds:  thresholds,
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, pool, fn)
		},
		now: time.Now,
	}
}

// CheckAndApplyTx evaluates the escalation thresholds against the post-insert
// totals and opens the selected discipline inside the caller's transaction.
// It returns nil when the totals stay below every threshold.
func (s *Service) CheckAndApplyTx(ctx context.Context, tx pgx.Tx, vendorID int64, activeCount, activePoints int, appliedBy int64) (*model.VendorDiscipline, error) {
	if vendorID <= 0 {
		return nil, ErrValidation
	}
	if s.disciplines == nil || s.vendors == nil {
		return nil, fmt.Errorf("discipline service dependencies are not configured")
	}

	tier, ok := s.thresholds.SelectTier(activeCount, activePoints)
	if !ok {
		return nil, nil
	}

	reason := fmt.Sprintf("automatic escalation: %d active strikes, %d points", activeCount, activePoints)
	discipline, err := s.applyTx(ctx, tx, vendorID, tier.Status, reason, appliedBy, tier.DurationDays)
	if err != nil {
		return nil, err
	}

	return &discipline, nil
}

// Apply opens a discipline record by direct admin action, superseding any
// active one.
func (s *Service) Apply(ctx context.Context, vendorID int64, status enums.DisciplineStatus, reason string, adminID int64, durationDays int) (model.VendorDiscipline, error) {
	if vendorID <= 0 || adminID <= 0 || !status.Active() || durationDays < 0 {
		return model.VendorDiscipline{}, ErrValidation
	}
	if s.disciplines == nil || s.vendors == nil {
		return model.VendorDiscipline{}, fmt.Errorf("discipline service dependencies are not configured")
	}

	exists, err := s.vendors.Exists(ctx, vendorID)
	if err != nil {
		return model.VendorDiscipline{}, err
	}
	if !exists {
		return model.VendorDiscipline{}, ErrVendorNotFound
	}

	var discipline model.VendorDiscipline
	err = s.runTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		applied, applyErr := s.applyTx(ctx, tx, vendorID, status, reason, adminID, durationDays)
		if applyErr != nil {
			return applyErr
		}
		discipline = applied
		return nil
	})
	if err != nil {
		return model.VendorDiscipline{}, err
	}

	return discipline, nil
}

func (s *Service) applyTx(ctx context.Context, tx pgx.Tx, vendorID int64, status enums.DisciplineStatus, reason string, appliedBy int64, durationDays int) (model.VendorDiscipline, error) {
	now := s.now().UTC()

	expired, err := s.disciplines.ExpireActiveTx(ctx, tx, vendorID, now)
	if err != nil {
		return model.VendorDiscipline{}, err
	}
	if expired > 0 {
		s.logger.Info("superseded active discipline",
			zap.Int64("vendor_id", vendorID),
			zap.String("new_status", string(status)),
		)
	}

	var endsAt *time.Time
	if durationDays > 0 {
		v := now.AddDate(0, 0, durationDays)
		endsAt = &v
	}

	discipline, err := s.disciplines.InsertTx(ctx, tx, pgrepo.ApplyDisciplineParams{
		VendorID:  vendorID,
		Status:    status,
		Reason:    reason,
		StartedAt: now,
		EndsAt:    endsAt,
		AppliedBy: appliedBy,
	})
	if err != nil {
		return model.VendorDiscipline{}, err
	}

	// A warning restricts nothing; only suspension and ban take the vendor
	// off the marketplace.
	if status.Deactivating() {
		if err := s.vendors.SetActiveTx(ctx, tx, vendorID, false); err != nil {
			return model.VendorDiscipline{}, err
		}
	}

	s.audit.Record(ctx, appliedBy, "discipline.apply", "vendor_discipline", discipline.ID, map[string]any{
		"vendor_id": vendorID,
		"status":    string(status),
		"reason":    reason,
	})

	return discipline, nil
}

// Lift terminates an active discipline record manually and restores the
// vendor unconditionally (last writer wins on overlapping records).
func (s *Service) Lift(ctx context.Context, disciplineID, adminID int64, reason string) (model.VendorDiscipline, error) {
	if disciplineID <= 0 || adminID <= 0 {
		return model.VendorDiscipline{}, ErrValidation
	}
	if s.disciplines == nil || s.vendors == nil {
		return model.VendorDiscipline{}, fmt.Errorf("discipline service dependencies are not configured")
	}

	existing, err := s.disciplines.GetByID(ctx, disciplineID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrDisciplineNotFound) {
			return model.VendorDiscipline{}, ErrDisciplineNotFound
		}
		return model.VendorDiscipline{}, err
	}
	if !existing.Status.Active() {
		return model.VendorDiscipline{}, fmt.Errorf("%w: discipline %d is %s", ErrDisciplineNotActive, disciplineID, existing.Status)
	}

	lifted, err := s.disciplines.MarkLifted(ctx, disciplineID, adminID, reason, s.now().UTC())
	if err != nil {
		if errors.Is(err, pgrepo.ErrDisciplineNotFound) {
			// Lost a race with the expiry sweep; the record is no longer active.
			return model.VendorDiscipline{}, fmt.Errorf("%w: discipline %d", ErrDisciplineNotActive, disciplineID)
		}
		return model.VendorDiscipline{}, err
	}

	if err := s.vendors.SetActive(ctx, lifted.VendorID, true); err != nil {
		return model.VendorDiscipline{}, err
	}

	s.audit.Record(ctx, adminID, "discipline.lift", "vendor_discipline", lifted.ID, map[string]any{
		"vendor_id": lifted.VendorID,
		"reason":    reason,
	})

	return lifted, nil
}

// ProcessExpired sweeps lapsed suspensions; bans and warnings carry no end
// date and are never auto-expired.
func (s *Service) ProcessExpired(ctx context.Context) (int, error) {
	if s.disciplines == nil {
		return 0, fmt.Errorf("discipline service dependencies are not configured")
	}

	expired, err := s.disciplines.ExpireDue(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}

	for _, rec := range expired {
		s.audit.Record(ctx, 0, "discipline.expire", "vendor_discipline", rec.ID, map[string]any{
			"vendor_id": rec.VendorID,
		})
	}

	return len(expired), nil
}

// Reevaluate runs after a strike is overturned: once the vendor has no active
// strikes left, whatever discipline is still open gets auto-lifted.
func (s *Service) Reevaluate(ctx context.Context, vendorID, actorID int64) error {
	if vendorID <= 0 {
		return ErrValidation
	}
	if s.disciplines == nil || s.vendors == nil || s.strikes == nil {
		return fmt.Errorf("discipline service dependencies are not configured")
	}

	activeCount, _, err := s.strikes.ActiveTotals(ctx, vendorID)
	if err != nil {
		return err
	}
	if activeCount > 0 {
		return nil
	}

	active, err := s.disciplines.GetActiveByVendor(ctx, vendorID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrDisciplineNotFound) {
			return nil
		}
		return err
	}

	lifted, err := s.disciplines.MarkLifted(ctx, active.ID, actorID, autoLiftReason, s.now().UTC())
	if err != nil {
		if errors.Is(err, pgrepo.ErrDisciplineNotFound) {
			return nil
		}
		return err
	}

	if err := s.vendors.SetActive(ctx, vendorID, true); err != nil {
		return err
	}

	s.audit.Record(ctx, actorID, "discipline.auto_lift", "vendor_discipline", lifted.ID, map[string]any{
		"vendor_id": vendorID,
	})

	return nil
}

func (s *Service) VendorHistory(ctx context.Context, vendorID int64) ([]model.VendorDiscipline, error) {
	if vendorID <= 0 {
		return nil, ErrValidation
	}
	if s.disciplines == nil {
		return nil, fmt.Errorf("discipline service dependencies are not configured")
	}
	return s.disciplines.ListByVendor(ctx, vendorID)
}
