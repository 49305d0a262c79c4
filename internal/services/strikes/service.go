package strikes

import (
	"context"
	"errors"
	"fmt"
	"strings"
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

const signedEvidenceTTL = 5 * time.Minute

var (
	ErrValidation            = errors.New("validation error")
	ErrVendorNotFound        = errors.New("vendor not found")
	ErrStrikeNotFound        = errors.New("strike not found")
	ErrStrikeAlreadyResolved = errors.New("strike already resolved")
	ErrStrikeAlreadyAppealed = errors.New("strike already appealed")
	ErrAppealForbidden       = errors.New("strike belongs to a different vendor")
)

type Store interface {
	InsertTx(ctx context.Context, tx pgx.Tx, p pgrepo.IssueStrikeParams) (model.VendorStrike, error)
	ActiveTotalsTx(ctx context.Context, tx pgx.Tx, vendorID int64) (int, int, error)
	ActiveTotals(ctx context.Context, vendorID int64) (int, int, error)
	GetByID(ctx context.Context, strikeID int64) (model.VendorStrike, error)
	ListByVendor(ctx context.Context, vendorID int64) ([]model.VendorStrike, error)
	MarkResolved(ctx context.Context, strikeID int64, resolution enums.StrikeResolution, notes string, resolvedBy int64, resolvedAt time.Time) (model.VendorStrike, error)
	MarkAppealed(ctx context.Context, strikeID int64, reason string, evidence []string, appealedAt time.Time) (model.VendorStrike, error)
}

type VendorStore interface {
	Exists(ctx context.Context, vendorID int64) (bool, error)
}

// DisciplineEngine is invoked synchronously with the post-insert totals.
type DisciplineEngine interface {
	CheckAndApplyTx(ctx context.Context, tx pgx.Tx, vendorID int64, activeCount, activePoints int, appliedBy int64) (*model.VendorDiscipline, error)
	Reevaluate(ctx context.Context, vendorID, actorID int64) error
}

// VendorLocker serializes strike issuance per vendor (see VendorLockRepo).
type VendorLocker interface {
	WithVendorLock(ctx context.Context, vendorID int64, fn func(context.Context) error) error
}

type URLSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Dependencies struct {
	Pool       *pgxpool.Pool
	Strikes    Store
	Vendors    VendorStore
	Discipline DisciplineEngine
	Locker     VendorLocker
	Audit      *auditsvc.Recorder
	Signer     URLSigner
	Logger     *zap.Logger
}

type Service struct {
	strikes    Store
	vendors    VendorStore
	discipline DisciplineEngine
	locker     VendorLocker
	audit      *auditsvc.Recorder
	signer     URLSigner
	logger     *zap.Logger
	tables     rules.ScoringTables
	runTx      func(context.Context, func(context.Context, pgx.Tx) error) error
	now        func() time.Time
}

func NewService(deps Dependencies, tables rules.ScoringTables) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pool := deps.Pool
	return &Service{
		strikes:    deps.Strikes,
		vendors:    deps.Vendors,
		discipline: deps.Discipline,
		locker:     deps.Locker,
		audit:      deps.Audit,
		signer:     deps.Signer,
		logger:     logger,
		tables:     tables,
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, pool, fn)
		},
		now: time.Now,
	}
}

type IssueInput struct {
	VendorID  int64
	Type      enums.StrikeType
	Reason    string
	Evidence  []string
	OrderID   *int64
	ProductID *int64
	IssuedBy  int64
}

type IssueResult struct {
	Strike     model.VendorStrike
	Discipline *model.VendorDiscipline
}

// Issue records the strike and recomputes discipline from the post-insert
// totals in one transaction, serialized per vendor so concurrent strikes
// escalate to the tier both imply together.
func (s *Service) Issue(ctx context.Context, in IssueInput) (IssueResult, error) {
	if in.VendorID <= 0 || in.IssuedBy <= 0 || !in.Type.Valid() || strings.TrimSpace(in.Reason) == "" {
		return IssueResult{}, ErrValidation
	}
	if s.strikes == nil || s.vendors == nil || s.discipline == nil {
		return IssueResult{}, fmt.Errorf("strike service dependencies are not configured")
	}

	exists, err := s.vendors.Exists(ctx, in.VendorID)
	if err != nil {
		return IssueResult{}, err
	}
	if !exists {
		return IssueResult{}, fmt.Errorf("%w: vendor %d", ErrVendorNotFound, in.VendorID)
	}

	var result IssueResult
	issue := func(ctx context.Context) error {
		return s.runTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
			priorCount, priorPoints, totalsErr := s.strikes.ActiveTotalsTx(ctx, tx, in.VendorID)
			if totalsErr != nil {
				return totalsErr
			}

			strike, insertErr := s.strikes.InsertTx(ctx, tx, pgrepo.IssueStrikeParams{
				VendorID:  in.VendorID,
				Type:      in.Type,
				Points:    s.tables.PointsForStrike(in.Type),
				Reason:    in.Reason,
				Evidence:  in.Evidence,
				OrderID:   in.OrderID,
				ProductID: in.ProductID,
				IssuedBy:  in.IssuedBy,
				IssuedAt:  s.now().UTC(),
			})
			if insertErr != nil {
				return insertErr
			}

			discipline, checkErr := s.discipline.CheckAndApplyTx(
				ctx, tx, in.VendorID,
				priorCount+1, priorPoints+strike.Points,
				in.IssuedBy,
			)
			if checkErr != nil {
				return checkErr
			}

			result = IssueResult{Strike: strike, Discipline: discipline}
			return nil
		})
	}

	if s.locker != nil {
		err = s.locker.WithVendorLock(ctx, in.VendorID, issue)
	} else {
		err = issue(ctx)
	}
	if err != nil {
		return IssueResult{}, err
	}

	s.audit.Record(ctx, in.IssuedBy, "strike.issue", "vendor_strike", result.Strike.ID, map[string]any{
		"vendor_id": in.VendorID,
		"type":      string(in.Type),
		"points":    result.Strike.Points,
	})

	return result, nil
}

// Resolve closes a strike. An overturned strike drops out of the totals
// immediately, so discipline is re-evaluated under the vendor lock.
func (s *Service) Resolve(ctx context.Context, strikeID int64, resolution enums.StrikeResolution, notes string, resolvedBy int64) (model.VendorStrike, error) {
	if strikeID <= 0 || resolvedBy <= 0 || !resolution.Valid() {
		return model.VendorStrike{}, ErrValidation
	}
	if s.strikes == nil || s.discipline == nil {
		return model.VendorStrike{}, fmt.Errorf("strike service dependencies are not configured")
	}

	existing, err := s.strikes.GetByID(ctx, strikeID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrStrikeNotFound) {
			return model.VendorStrike{}, fmt.Errorf("%w: strike %d", ErrStrikeNotFound, strikeID)
		}
		return model.VendorStrike{}, err
	}
	if !existing.Active() {
		return model.VendorStrike{}, fmt.Errorf("%w: strike %d resolved as %s", ErrStrikeAlreadyResolved, strikeID, *existing.Resolution)
	}

	resolved, err := s.strikes.MarkResolved(ctx, strikeID, resolution, notes, resolvedBy, s.now().UTC())
	if err != nil {
		if errors.Is(err, pgrepo.ErrStrikeNotFound) {
			return model.VendorStrike{}, fmt.Errorf("%w: strike %d", ErrStrikeAlreadyResolved, strikeID)
		}
		return model.VendorStrike{}, err
	}

	if resolution == enums.StrikeResolutionOverturned {
		reevaluate := func(ctx context.Context) error {
			return s.discipline.Reevaluate(ctx, resolved.VendorID, resolvedBy)
		}
		if s.locker != nil {
			err = s.locker.WithVendorLock(ctx, resolved.VendorID, reevaluate)
		} else {
			err = reevaluate(ctx)
		}
		if err != nil {
			return model.VendorStrike{}, err
		}
	}

	s.audit.Record(ctx, resolvedBy, "strike.resolve", "vendor_strike", resolved.ID, map[string]any{
		"vendor_id":  resolved.VendorID,
		"resolution": string(resolution),
	})

	return resolved, nil
}

// FileAppeal records the vendor's one allowed appeal on an unresolved strike.
func (s *Service) FileAppeal(ctx context.Context, strikeID, vendorID int64, reason string, evidence []string) (model.VendorStrike, error) {
	if strikeID <= 0 || vendorID <= 0 || strings.TrimSpace(reason) == "" {
		return model.VendorStrike{}, ErrValidation
	}
	if s.strikes == nil {
		return model.VendorStrike{}, fmt.Errorf("strike service dependencies are not configured")
	}

	existing, err := s.strikes.GetByID(ctx, strikeID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrStrikeNotFound) {
			return model.VendorStrike{}, fmt.Errorf("%w: strike %d", ErrStrikeNotFound, strikeID)
		}
		return model.VendorStrike{}, err
	}
	if existing.VendorID != vendorID {
		return model.VendorStrike{}, fmt.Errorf("%w: strike %d", ErrAppealForbidden, strikeID)
	}
	if !existing.Active() {
		return model.VendorStrike{}, fmt.Errorf("%w: strike %d", ErrStrikeAlreadyResolved, strikeID)
	}
	if existing.Appealed() {
		return model.VendorStrike{}, fmt.Errorf("%w: strike %d", ErrStrikeAlreadyAppealed, strikeID)
	}

	appealed, err := s.strikes.MarkAppealed(ctx, strikeID, reason, evidence, s.now().UTC())
	if err != nil {
		if errors.Is(err, pgrepo.ErrStrikeNotFound) {
			// Guarded update matched nothing: strike raced into a resolved or
			// appealed state after the read above.
			return model.VendorStrike{}, fmt.Errorf("%w: strike %d", ErrStrikeAlreadyAppealed, strikeID)
		}
		return model.VendorStrike{}, err
	}

	s.audit.Record(ctx, vendorID, "strike.appeal", "vendor_strike", appealed.ID, map[string]any{
		"vendor_id": vendorID,
	})

	return appealed, nil
}

type VendorSummary struct {
	Strikes      []model.VendorStrike
	ActiveCount  int
	ActivePoints int
}

func (s *Service) VendorStrikes(ctx context.Context, vendorID int64) (VendorSummary, error) {
	if vendorID <= 0 {
		return VendorSummary{}, ErrValidation
	}
	if s.strikes == nil || s.vendors == nil {
		return VendorSummary{}, fmt.Errorf("strike service dependencies are not configured")
	}

	exists, err := s.vendors.Exists(ctx, vendorID)
	if err != nil {
		return VendorSummary{}, err
	}
	if !exists {
		return VendorSummary{}, fmt.Errorf("%w: vendor %d", ErrVendorNotFound, vendorID)
	}

	list, err := s.strikes.ListByVendor(ctx, vendorID)
	if err != nil {
		return VendorSummary{}, err
	}

	count, points, err := s.strikes.ActiveTotals(ctx, vendorID)
	if err != nil {
		return VendorSummary{}, err
	}

	return VendorSummary{Strikes: list, ActiveCount: count, ActivePoints: points}, nil
}

// GetStrike returns a single strike with evidence object keys presigned for
// viewing. Entries that are already URLs pass through untouched.
func (s *Service) GetStrike(ctx context.Context, strikeID int64) (model.VendorStrike, error) {
	if strikeID <= 0 {
		return model.VendorStrike{}, ErrValidation
	}
	if s.strikes == nil {
		return model.VendorStrike{}, fmt.Errorf("strike service dependencies are not configured")
	}

	strike, err := s.strikes.GetByID(ctx, strikeID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrStrikeNotFound) {
			return model.VendorStrike{}, fmt.Errorf("%w: strike %d", ErrStrikeNotFound, strikeID)
		}
		return model.VendorStrike{}, err
	}

	strike.Evidence = s.signEvidence(ctx, strike.Evidence)
	strike.AppealEvidence = s.signEvidence(ctx, strike.AppealEvidence)
	return strike, nil
}

func (s *Service) signEvidence(ctx context.Context, entries []string) []string {
	if s.signer == nil || len(entries) == 0 {
		return entries
	}

	signed := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasPrefix(entry, "http://") || strings.HasPrefix(entry, "https://") {
			signed = append(signed, entry)
			continue
		}
		url, err := s.signer.PresignGet(ctx, entry, signedEvidenceTTL)
		if err != nil {
			s.logger.Warn("presign evidence key failed", zap.String("key", entry), zap.Error(err))
			signed = append(signed, entry)
			continue
		}
		signed = append(signed, url)
	}
	return signed
}
