package strikes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Vijayapardhu/risbow-backend-sub001/internal/domain/enums"
	"github.com/Vijayapardhu/risbow-backend-sub001/internal/domain/model"
	"github.com/Vijayapardhu/risbow-backend-sub001/internal/domain/rules"
	pgrepo "github.com/Vijayapardhu/risbow-backend-sub001/internal/repo/postgres"
)

type strikeStoreStub struct {
	strikes map[int64]model.VendorStrike
	nextID  int64
}

func newStrikeStoreStub() *strikeStoreStub {
	return &strikeStoreStub{strikes: map[int64]model.VendorStrike{}}
}

func (s *strikeStoreStub) InsertTx(_ context.Context, _ pgx.Tx, p pgrepo.IssueStrikeParams) (model.VendorStrike, error) {
	s.nextID++
	strike := model.VendorStrike{
		ID:        s.nextID,
		VendorID:  p.VendorID,
		Type:      p.Type,
		Points:    p.Points,
		Reason:    p.Reason,
		Evidence:  p.Evidence,
		OrderID:   p.OrderID,
		ProductID: p.ProductID,
		IssuedBy:  p.IssuedBy,
		IssuedAt:  p.IssuedAt,
	}
	s.strikes[strike.ID] = strike
	return strike, nil
}

func (s *strikeStoreStub) totals(vendorID int64) (int, int) {
	count, points := 0, 0
	for _, strike := range s.strikes {
		if strike.VendorID == vendorID && strike.Active() {
			count++
			points += strike.Points
		}
	}
	return count, points
}

func (s *strikeStoreStub) ActiveTotalsTx(_ context.Context, _ pgx.Tx, vendorID int64) (int, int, error) {
	count, points := s.totals(vendorID)
	return count, points, nil
}

func (s *strikeStoreStub) ActiveTotals(_ context.Context, vendorID int64) (int, int, error) {
	count, points := s.totals(vendorID)
	return count, points, nil
}

func (s *strikeStoreStub) GetByID(_ context.Context, strikeID int64) (model.VendorStrike, error) {
	strike, ok := s.strikes[strikeID]
	if !ok {
		return model.VendorStrike{}, pgrepo.ErrStrikeNotFound
	}
	return strike, nil
}

func (s *strikeStoreStub) ListByVendor(_ context.Context, vendorID int64) ([]model.VendorStrike, error) {
	var out []model.VendorStrike
	for _, strike := range s.strikes {
		if strike.VendorID == vendorID {
			out = append(out, strike)
		}
	}
	return out, nil
}

func (s *strikeStoreStub) MarkResolved(_ context.Context, strikeID int64, resolution enums.StrikeResolution, notes string, resolvedBy int64, resolvedAt time.Time) (model.VendorStrike, error) {
	strike, ok := s.strikes[strikeID]
	if !ok || !strike.Active() {
		return model.VendorStrike{}, pgrepo.ErrStrikeNotFound
	}
	strike.Resolution = &resolution
	strike.ResolutionNotes = &notes
	strike.ResolvedBy = &resolvedBy
	strike.ResolvedAt = &resolvedAt
	s.strikes[strikeID] = strike
	return strike, nil
}

func (s *strikeStoreStub) MarkAppealed(_ context.Context, strikeID int64, reason string, evidence []string, appealedAt time.Time) (model.VendorStrike, error) {
	strike, ok := s.strikes[strikeID]
	if !ok || !strike.Active() || strike.Appealed() {
		return model.VendorStrike{}, pgrepo.ErrStrikeNotFound
	}
	strike.AppealedAt = &appealedAt
	strike.AppealReason = &reason
	strike.AppealEvidence = evidence
	s.strikes[strikeID] = strike
	return strike, nil
}

type vendorExistsStub struct {
	exists bool
}

func (s *vendorExistsStub) Exists(_ context.Context, _ int64) (bool, error) {
	return s.exists, nil
}

type disciplineEngineStub struct {
	checkCalls  []checkCall
	reevaluated []int64
	tier        *model.VendorDiscipline
	checkErr    error
}

type checkCall struct {
	vendorID int64
	count    int
	points   int
}

func (s *disciplineEngineStub) CheckAndApplyTx(_ context.Context, _ pgx.Tx, vendorID int64, activeCount, activePoints int, _ int64) (*model.VendorDiscipline, error) {
	s.checkCalls = append(s.checkCalls, checkCall{vendorID: vendorID, count: activeCount, points: activePoints})
	return s.tier, s.checkErr
}

func (s *disciplineEngineStub) Reevaluate(_ context.Context, vendorID, _ int64) error {
	s.reevaluated = append(s.reevaluated, vendorID)
	return nil
}

type lockerStub struct {
	held []int64
}

func (s *lockerStub) WithVendorLock(ctx context.Context, vendorID int64, fn func(context.Context) error) error {
	s.held = append(s.held, vendorID)
	return fn(ctx)
}

type signerStub struct {
	signed []string
}

func (s *signerStub) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	s.signed = append(s.signed, key)
	return "https://cdn.example.com/" + key + "?sig=abc", nil
}

func newStrikeService(store *strikeStoreStub, engine *disciplineEngineStub, locker *lockerStub, signer URLSigner) *Service {
	deps := Dependencies{
		Strikes:    store,
		Vendors:    &vendorExistsStub{exists: true},
		Discipline: engine,
		Signer:     signer,
	}
	if locker != nil {
		deps.Locker = locker
	}
	svc := NewService(deps, rules.DefaultScoringTables())
	svc.runTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return fn(ctx, nil)
	}
	return svc
}

func TestIssueAssignsPointsAndChecksDiscipline(t *testing.T) {
	store := newStrikeStoreStub()
	engine := &disciplineEngineStub{}
	locker := &lockerStub{}
	svc := newStrikeService(store, engine, locker, nil)

	res, err := svc.Issue(context.Background(), IssueInput{
		VendorID: 7,
		Type:     enums.StrikeTypeCounterfeitProduct,
		Reason:   "moderation: COUNTERFEIT",
		IssuedBy: 1,
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if res.Strike.Points != 5 {
		t.Fatalf("counterfeit strike should carry 5 points, got %d", res.Strike.Points)
	}
	if len(locker.held) != 1 || locker.held[0] != 7 {
		t.Fatalf("issuance must run under the vendor lock: %v", locker.held)
	}
	if len(engine.checkCalls) != 1 {
		t.Fatalf("discipline check should run once, got %d", len(engine.checkCalls))
	}
	if call := engine.checkCalls[0]; call.count != 1 || call.points != 5 {
		t.Fatalf("discipline check must see post-insert totals, got count=%d points=%d", call.count, call.points)
	}
}

func TestIssueAccumulatesActiveTotals(t *testing.T) {
	store := newStrikeStoreStub()
	engine := &disciplineEngineStub{}
	svc := newStrikeService(store, engine, nil, nil)

	inputs := []enums.StrikeType{
		enums.StrikeTypeLateShipment,      // 1 point
		enums.StrikeTypePolicyViolation,   // 3 points
		enums.StrikeTypeMisleadingListing, // 2 points
	}
	for _, st := range inputs {
		if _, err := svc.Issue(context.Background(), IssueInput{VendorID: 3, Type: st, Reason: "x", IssuedBy: 1}); err != nil {
			t.Fatalf("issue %s: %v", st, err)
		}
	}

	last := engine.checkCalls[len(engine.checkCalls)-1]
	if last.count != 3 || last.points != 6 {
		t.Fatalf("third check should see 3 strikes / 6 points, got %d / %d", last.count, last.points)
	}
}

func TestIssueRejectsInvalidInput(t *testing.T) {
	svc := newStrikeService(newStrikeStoreStub(), &disciplineEngineStub{}, nil, nil)

	tests := []struct {
		name string
		in   IssueInput
	}{
		{name: "missing vendor", in: IssueInput{Type: enums.StrikeTypeSpam, Reason: "r", IssuedBy: 1}},
		{name: "unknown type", in: IssueInput{VendorID: 1, Type: "NOPE", Reason: "r", IssuedBy: 1}},
		{name: "blank reason", in: IssueInput{VendorID: 1, Type: enums.StrikeTypeSpam, Reason: "  ", IssuedBy: 1}},
		{name: "missing issuer", in: IssueInput{VendorID: 1, Type: enums.StrikeTypeSpam, Reason: "r"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Issue(context.Background(), tt.in); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestIssueUnknownVendor(t *testing.T) {
	svc := NewService(Dependencies{
		Strikes:    newStrikeStoreStub(),
		Vendors:    &vendorExistsStub{exists: false},
		Discipline: &disciplineEngineStub{},
	}, rules.DefaultScoringTables())

	_, err := svc.Issue(context.Background(), IssueInput{VendorID: 99, Type: enums.StrikeTypeSpam, Reason: "r", IssuedBy: 1})
	if !errors.Is(err, ErrVendorNotFound) {
		t.Fatalf("expected ErrVendorNotFound, got %v", err)
	}
}

func TestResolveOverturnedTriggersReevaluation(t *testing.T) {
	store := newStrikeStoreStub()
	engine := &disciplineEngineStub{}
	locker := &lockerStub{}
	svc := newStrikeService(store, engine, locker, nil)

	res, err := svc.Issue(context.Background(), IssueInput{VendorID: 7, Type: enums.StrikeTypeSpam, Reason: "r", IssuedBy: 1})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	resolved, err := svc.Resolve(context.Background(), res.Strike.ID, enums.StrikeResolutionOverturned, "appeal accepted", 2)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Resolution == nil || *resolved.Resolution != enums.StrikeResolutionOverturned {
		t.Fatalf("unexpected resolution: %v", resolved.Resolution)
	}
	if len(engine.reevaluated) != 1 || engine.reevaluated[0] != 7 {
		t.Fatalf("overturn must re-evaluate discipline: %v", engine.reevaluated)
	}
}

func TestResolveUpheldSkipsReevaluation(t *testing.T) {
	store := newStrikeStoreStub()
	engine := &disciplineEngineStub{}
	svc := newStrikeService(store, engine, nil, nil)

	res, err := svc.Issue(context.Background(), IssueInput{VendorID: 7, Type: enums.StrikeTypeSpam, Reason: "r", IssuedBy: 1})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Resolve(context.Background(), res.Strike.ID, enums.StrikeResolutionUpheld, "stands", 2); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(engine.reevaluated) != 0 {
		t.Fatalf("upheld resolution must not re-evaluate discipline")
	}
}

func TestResolveTwiceFails(t *testing.T) {
	store := newStrikeStoreStub()
	svc := newStrikeService(store, &disciplineEngineStub{}, nil, nil)

	res, err := svc.Issue(context.Background(), IssueInput{VendorID: 7, Type: enums.StrikeTypeSpam, Reason: "r", IssuedBy: 1})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Resolve(context.Background(), res.Strike.ID, enums.StrikeResolutionUpheld, "", 2); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	_, err = svc.Resolve(context.Background(), res.Strike.ID, enums.StrikeResolutionModified, "", 2)
	if !errors.Is(err, ErrStrikeAlreadyResolved) {
		t.Fatalf("expected ErrStrikeAlreadyResolved, got %v", err)
	}
}

func TestFileAppeal(t *testing.T) {
	store := newStrikeStoreStub()
	svc := newStrikeService(store, &disciplineEngineStub{}, nil, nil)

	res, err := svc.Issue(context.Background(), IssueInput{VendorID: 7, Type: enums.StrikeTypeSpam, Reason: "r", IssuedBy: 1})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	t.Run("wrong vendor is forbidden", func(t *testing.T) {
		_, err := svc.FileAppeal(context.Background(), res.Strike.ID, 8, "not mine", nil)
		if !errors.Is(err, ErrAppealForbidden) {
			t.Fatalf("expected ErrAppealForbidden, got %v", err)
		}
	})

	t.Run("owner can appeal once", func(t *testing.T) {
		appealed, err := svc.FileAppeal(context.Background(), res.Strike.ID, 7, "the listing was genuine", []string{"receipts/1.pdf"})
		if err != nil {
			t.Fatalf("appeal: %v", err)
		}
		if appealed.AppealedAt == nil {
			t.Fatalf("appeal timestamp not set")
		}

		_, err = svc.FileAppeal(context.Background(), res.Strike.ID, 7, "again", nil)
		if !errors.Is(err, ErrStrikeAlreadyAppealed) {
			t.Fatalf("expected ErrStrikeAlreadyAppealed, got %v", err)
		}
	})

	t.Run("resolved strike cannot be appealed", func(t *testing.T) {
		other, err := svc.Issue(context.Background(), IssueInput{VendorID: 7, Type: enums.StrikeTypeSpam, Reason: "r", IssuedBy: 1})
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if _, err := svc.Resolve(context.Background(), other.Strike.ID, enums.StrikeResolutionUpheld, "", 2); err != nil {
			t.Fatalf("resolve: %v", err)
		}
		_, err = svc.FileAppeal(context.Background(), other.Strike.ID, 7, "too late", nil)
		if !errors.Is(err, ErrStrikeAlreadyResolved) {
			t.Fatalf("expected ErrStrikeAlreadyResolved, got %v", err)
		}
	})
}

func TestVendorStrikesSummaryExcludesResolved(t *testing.T) {
	store := newStrikeStoreStub()
	svc := newStrikeService(store, &disciplineEngineStub{}, nil, nil)

	first, err := svc.Issue(context.Background(), IssueInput{VendorID: 7, Type: enums.StrikeTypeFraud, Reason: "r", IssuedBy: 1})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Issue(context.Background(), IssueInput{VendorID: 7, Type: enums.StrikeTypeSpam, Reason: "r", IssuedBy: 1}); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Resolve(context.Background(), first.Strike.ID, enums.StrikeResolutionOverturned, "", 2); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	summary, err := svc.VendorStrikes(context.Background(), 7)
	if err != nil {
		t.Fatalf("vendor strikes: %v", err)
	}
	if len(summary.Strikes) != 2 {
		t.Fatalf("history should keep resolved strikes, got %d", len(summary.Strikes))
	}
	if summary.ActiveCount != 1 || summary.ActivePoints != 1 {
		t.Fatalf("active totals should drop the overturned strike, got count=%d points=%d", summary.ActiveCount, summary.ActivePoints)
	}
}

func TestGetStrikePresignsEvidenceKeys(t *testing.T) {
	store := newStrikeStoreStub()
	signer := &signerStub{}
	svc := newStrikeService(store, &disciplineEngineStub{}, nil, signer)

	res, err := svc.Issue(context.Background(), IssueInput{
		VendorID: 7,
		Type:     enums.StrikeTypeSpam,
		Reason:   "r",
		Evidence: []string{"evidence/shot.png", "https://example.com/external.png"},
		IssuedBy: 1,
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	strike, err := svc.GetStrike(context.Background(), res.Strike.ID)
	if err != nil {
		t.Fatalf("get strike: %v", err)
	}
	if len(signer.signed) != 1 || signer.signed[0] != "evidence/shot.png" {
		t.Fatalf("only object keys should be presigned, signed %v", signer.signed)
	}
	if strike.Evidence[1] != "https://example.com/external.png" {
		t.Fatalf("full URLs must pass through untouched: %s", strike.Evidence[1])
	}
}
