package discipline

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

type disciplineStoreStub struct {
	expiredVendors []int64
	inserted       []pgrepo.ApplyDisciplineParams
	active         *model.VendorDiscipline
	byID           map[int64]model.VendorDiscipline
	lifted         []liftedCall
	due            []pgrepo.ExpiredDisciplineRecord
	nextID         int64
}

type liftedCall struct {
	disciplineID int64
	liftedBy     int64
	reason       string
}

func (s *disciplineStoreStub) ExpireActiveTx(_ context.Context, _ pgx.Tx, vendorID int64, _ time.Time) (int64, error) {
	s.expiredVendors = append(s.expiredVendors, vendorID)
	if s.active != nil && s.active.VendorID == vendorID {
		s.active = nil
		return 1, nil
	}
	return 0, nil
}

func (s *disciplineStoreStub) InsertTx(_ context.Context, _ pgx.Tx, p pgrepo.ApplyDisciplineParams) (model.VendorDiscipline, error) {
	s.inserted = append(s.inserted, p)
	s.nextID++
	discipline := model.VendorDiscipline{
		ID:        s.nextID,
		VendorID:  p.VendorID,
		Status:    p.Status,
		Reason:    p.Reason,
		StartedAt: p.StartedAt,
		EndsAt:    p.EndsAt,
		AppliedBy: p.AppliedBy,
	}
	s.active = &discipline
	return discipline, nil
}

func (s *disciplineStoreStub) GetByID(_ context.Context, disciplineID int64) (model.VendorDiscipline, error) {
	if d, ok := s.byID[disciplineID]; ok {
		return d, nil
	}
	return model.VendorDiscipline{}, pgrepo.ErrDisciplineNotFound
}

func (s *disciplineStoreStub) GetActiveByVendor(_ context.Context, vendorID int64) (model.VendorDiscipline, error) {
	if s.active != nil && s.active.VendorID == vendorID {
		return *s.active, nil
	}
	return model.VendorDiscipline{}, pgrepo.ErrDisciplineNotFound
}

func (s *disciplineStoreStub) ListByVendor(_ context.Context, vendorID int64) ([]model.VendorDiscipline, error) {
	if s.active != nil && s.active.VendorID == vendorID {
		return []model.VendorDiscipline{*s.active}, nil
	}
	return nil, nil
}

func (s *disciplineStoreStub) MarkLifted(_ context.Context, disciplineID, liftedBy int64, reason string, endedAt time.Time) (model.VendorDiscipline, error) {
	s.lifted = append(s.lifted, liftedCall{disciplineID: disciplineID, liftedBy: liftedBy, reason: reason})

	if s.active != nil && s.active.ID == disciplineID {
		d := *s.active
		d.Status = enums.DisciplineStatusLifted
		d.EndedAt = &endedAt
		d.LiftedBy = &liftedBy
		s.active = nil
		return d, nil
	}
	if d, ok := s.byID[disciplineID]; ok && d.Status.Active() {
		d.Status = enums.DisciplineStatusLifted
		d.EndedAt = &endedAt
		d.LiftedBy = &liftedBy
		s.byID[disciplineID] = d
		return d, nil
	}
	return model.VendorDiscipline{}, pgrepo.ErrDisciplineNotFound
}

func (s *disciplineStoreStub) ExpireDue(_ context.Context, _ time.Time) ([]pgrepo.ExpiredDisciplineRecord, error) {
	due := s.due
	s.due = nil
	return due, nil
}

type vendorStoreStub struct {
	exists     bool
	activeSets []bool
}

func (s *vendorStoreStub) Exists(_ context.Context, _ int64) (bool, error) {
	return s.exists, nil
}

func (s *vendorStoreStub) SetActive(_ context.Context, _ int64, active bool) error {
	s.activeSets = append(s.activeSets, active)
	return nil
}

func (s *vendorStoreStub) SetActiveTx(_ context.Context, _ pgx.Tx, _ int64, active bool) error {
	s.activeSets = append(s.activeSets, active)
	return nil
}

type strikeCounterStub struct {
	count  int
	points int
}

func (s *strikeCounterStub) ActiveTotals(_ context.Context, _ int64) (int, int, error) {
	return s.count, s.points, nil
}

func newTestService(store *disciplineStoreStub, vendors *vendorStoreStub, counter *strikeCounterStub, now time.Time) *Service {
	svc := NewService(Dependencies{
		Disciplines: store,
		Vendors:     vendors,
		Strikes:     counter,
	}, rules.DefaultDisciplineThresholds())
	svc.runTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return fn(ctx, nil)
	}
	svc.now = func() time.Time { return now }
	return svc
}

func TestCheckAndApplyBelowThresholdsDoesNothing(t *testing.T) {
	store := &disciplineStoreStub{}
	svc := newTestService(store, &vendorStoreStub{exists: true}, &strikeCounterStub{}, time.Now())

	discipline, err := svc.CheckAndApplyTx(context.Background(), nil, 1, 0, 0, 10)
	if err != nil {
		t.Fatalf("check and apply: %v", err)
	}
	if discipline != nil {
		t.Fatalf("expected no discipline below thresholds, got %+v", discipline)
	}
	if len(store.inserted) != 0 {
		t.Fatalf("no record should be inserted below thresholds")
	}
}

func TestCheckAndApplyEscalationLadder(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		count      int
		points     int
		wantStatus enums.DisciplineStatus
		wantDays   int
	}{
		{name: "first strike warns", count: 1, points: 3, wantStatus: enums.DisciplineStatusWarning},
		{name: "second strike suspends a week", count: 2, points: 6, wantStatus: enums.DisciplineStatusSuspended, wantDays: 7},
		{name: "third strike suspends a month", count: 3, points: 9, wantStatus: enums.DisciplineStatusSuspended, wantDays: 30},
		{name: "fourth strike doubles", count: 4, points: 12, wantStatus: enums.DisciplineStatusSuspended, wantDays: 60},
		{name: "fifteen points bans", count: 3, points: 15, wantStatus: enums.DisciplineStatusBanned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &disciplineStoreStub{}
			vendors := &vendorStoreStub{exists: true}
			svc := newTestService(store, vendors, &strikeCounterStub{}, now)

			discipline, err := svc.CheckAndApplyTx(context.Background(), nil, 5, tt.count, tt.points, 10)
			if err != nil {
				t.Fatalf("check and apply: %v", err)
			}
			if discipline == nil {
				t.Fatalf("expected a discipline record")
			}
			if discipline.Status != tt.wantStatus {
				t.Fatalf("unexpected status: got %s want %s", discipline.Status, tt.wantStatus)
			}

			if tt.wantDays == 0 {
				if discipline.EndsAt != nil {
					t.Fatalf("expected indefinite discipline, got ends_at %v", discipline.EndsAt)
				}
			} else {
				if discipline.EndsAt == nil {
					t.Fatalf("expected ends_at for %d day suspension", tt.wantDays)
				}
				want := now.AddDate(0, 0, tt.wantDays)
				if !discipline.EndsAt.Equal(want) {
					t.Fatalf("unexpected ends_at: got %v want %v", discipline.EndsAt, want)
				}
			}

			if tt.wantStatus.Deactivating() {
				if len(vendors.activeSets) != 1 || vendors.activeSets[0] {
					t.Fatalf("vendor should be deactivated for %s", tt.wantStatus)
				}
			} else if len(vendors.activeSets) != 0 {
				t.Fatalf("a warning must not deactivate the vendor")
			}
		})
	}
}

func TestCheckAndApplySupersedesActiveRecord(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store := &disciplineStoreStub{
		active: &model.VendorDiscipline{ID: 1, VendorID: 5, Status: enums.DisciplineStatusWarning},
		nextID: 1,
	}
	svc := newTestService(store, &vendorStoreStub{exists: true}, &strikeCounterStub{}, now)

	discipline, err := svc.CheckAndApplyTx(context.Background(), nil, 5, 2, 6, 10)
	if err != nil {
		t.Fatalf("check and apply: %v", err)
	}
	if discipline.Status != enums.DisciplineStatusSuspended {
		t.Fatalf("unexpected status: %s", discipline.Status)
	}
	if len(store.expiredVendors) != 1 || store.expiredVendors[0] != 5 {
		t.Fatalf("prior active record should be expired first: %v", store.expiredVendors)
	}
}

func TestApplyRejectsUnknownVendor(t *testing.T) {
	svc := newTestService(&disciplineStoreStub{}, &vendorStoreStub{exists: false}, &strikeCounterStub{}, time.Now())

	_, err := svc.Apply(context.Background(), 99, enums.DisciplineStatusSuspended, "manual", 1, 7)
	if !errors.Is(err, ErrVendorNotFound) {
		t.Fatalf("expected ErrVendorNotFound, got %v", err)
	}
}

func TestLiftRestoresVendor(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	store := &disciplineStoreStub{
		active: &model.VendorDiscipline{ID: 3, VendorID: 7, Status: enums.DisciplineStatusSuspended},
		byID: map[int64]model.VendorDiscipline{
			3: {ID: 3, VendorID: 7, Status: enums.DisciplineStatusSuspended},
		},
	}
	vendors := &vendorStoreStub{exists: true}
	svc := newTestService(store, vendors, &strikeCounterStub{}, now)

	lifted, err := svc.Lift(context.Background(), 3, 1, "appeal accepted")
	if err != nil {
		t.Fatalf("lift: %v", err)
	}
	if lifted.Status != enums.DisciplineStatusLifted {
		t.Fatalf("unexpected status: %s", lifted.Status)
	}
	if len(vendors.activeSets) != 1 || !vendors.activeSets[0] {
		t.Fatalf("vendor should be reactivated on lift")
	}
}

func TestLiftRejectsTerminatedRecord(t *testing.T) {
	store := &disciplineStoreStub{
		byID: map[int64]model.VendorDiscipline{
			4: {ID: 4, VendorID: 7, Status: enums.DisciplineStatusExpired},
		},
	}
	svc := newTestService(store, &vendorStoreStub{exists: true}, &strikeCounterStub{}, time.Now())

	_, err := svc.Lift(context.Background(), 4, 1, "late lift")
	if !errors.Is(err, ErrDisciplineNotActive) {
		t.Fatalf("expected ErrDisciplineNotActive, got %v", err)
	}
}

func TestLiftUnknownRecord(t *testing.T) {
	svc := newTestService(&disciplineStoreStub{}, &vendorStoreStub{exists: true}, &strikeCounterStub{}, time.Now())

	_, err := svc.Lift(context.Background(), 404, 1, "missing")
	if !errors.Is(err, ErrDisciplineNotFound) {
		t.Fatalf("expected ErrDisciplineNotFound, got %v", err)
	}
}

func TestProcessExpiredCountsSweptRecords(t *testing.T) {
	store := &disciplineStoreStub{
		due: []pgrepo.ExpiredDisciplineRecord{
			{ID: 1, VendorID: 5},
			{ID: 2, VendorID: 6},
		},
	}
	svc := newTestService(store, &vendorStoreStub{exists: true}, &strikeCounterStub{}, time.Now())

	count, err := svc.ProcessExpired(context.Background())
	if err != nil {
		t.Fatalf("process expired: %v", err)
	}
	if count != 2 {
		t.Fatalf("unexpected expired count: %d", count)
	}

	// Sweep again: nothing left to expire.
	count, err = svc.ProcessExpired(context.Background())
	if err != nil {
		t.Fatalf("process expired again: %v", err)
	}
	if count != 0 {
		t.Fatalf("second sweep should be a no-op, got %d", count)
	}
}

func TestReevaluateAutoLiftsWhenNoActiveStrikes(t *testing.T) {
	store := &disciplineStoreStub{
		active: &model.VendorDiscipline{ID: 8, VendorID: 3, Status: enums.DisciplineStatusWarning},
	}
	vendors := &vendorStoreStub{exists: true}
	svc := newTestService(store, vendors, &strikeCounterStub{count: 0}, time.Now())

	if err := svc.Reevaluate(context.Background(), 3, 1); err != nil {
		t.Fatalf("reevaluate: %v", err)
	}
	if len(store.lifted) != 1 {
		t.Fatalf("expected one auto-lift, got %d", len(store.lifted))
	}
	if store.lifted[0].reason != autoLiftReason {
		t.Fatalf("unexpected lift reason: %s", store.lifted[0].reason)
	}
	if len(vendors.activeSets) != 1 || !vendors.activeSets[0] {
		t.Fatalf("vendor should be reactivated on auto-lift")
	}
}

func TestReevaluateKeepsDisciplineWhileStrikesRemain(t *testing.T) {
	store := &disciplineStoreStub{
		active: &model.VendorDiscipline{ID: 8, VendorID: 3, Status: enums.DisciplineStatusWarning},
	}
	svc := newTestService(store, &vendorStoreStub{exists: true}, &strikeCounterStub{count: 1, points: 3}, time.Now())

	if err := svc.Reevaluate(context.Background(), 3, 1); err != nil {
		t.Fatalf("reevaluate: %v", err)
	}
	if len(store.lifted) != 0 {
		t.Fatalf("discipline must stay while strikes remain")
	}
}

func TestReevaluateNoDisciplineIsNoop(t *testing.T) {
	svc := newTestService(&disciplineStoreStub{}, &vendorStoreStub{exists: true}, &strikeCounterStub{count: 0}, time.Now())

	if err := svc.Reevaluate(context.Background(), 3, 1); err != nil {
		t.Fatalf("reevaluate without discipline: %v", err)
	}
}
