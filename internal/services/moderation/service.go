package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Vijayapardhu/risbow-backend-sub001/internal/domain/enums"
	"github.com/Vijayapardhu/risbow-backend-sub001/internal/domain/model"
	pgrepo "github.com/Vijayapardhu/risbow-backend-sub001/internal/repo/postgres"
	auditsvc "github.com/Vijayapardhu/risbow-backend-sub001/internal/services/audit"
	contentsvc "github.com/Vijayapardhu/risbow-backend-sub001/internal/services/content"
	strikesvc "github.com/Vijayapardhu/risbow-backend-sub001/internal/services/strikes"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrFlagNotFound        = errors.New("flag not found")
	ErrFlagAlreadyResolved = errors.New("flag already resolved")
)

type FlagStore interface {
	GetByID(ctx context.Context, flagID int64) (model.ContentFlag, error)
	MarkResolved(ctx context.Context, flagID int64, action enums.ModerationAction, notes string, moderatedBy int64, moderatedAt time.Time) (model.ContentFlag, error)
}

type AdapterRegistry interface {
	AdapterFor(contentType enums.ContentType) (contentsvc.Adapter, bool)
}

// StrikeIssuer is the orchestration hook into the strike ledger.
type StrikeIssuer interface {
	Issue(ctx context.Context, in strikesvc.IssueInput) (strikesvc.IssueResult, error)
}

type Service struct {
	flags    FlagStore
	registry AdapterRegistry
	striker  StrikeIssuer
	audit    *auditsvc.Recorder
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(flags FlagStore, registry AdapterRegistry, striker StrikeIssuer, audit *auditsvc.Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		flags:    flags,
		registry: registry,
		striker:  striker,
		audit:    audit,
		logger:   logger,
		now:      time.Now,
	}
}

type ModerateInput struct {
	FlagID      int64
	Action      enums.ModerationAction
	Notes       string
	IssueStrike bool
	StrikeType  *enums.StrikeType
	ModeratedBy int64
}

// Result reports the outcome. StrikeError is set when the moderation itself
// succeeded but the follow-up strike could not be issued; the content
// mutation and flag resolution stand and an operator issues the strike by hand.
type Result struct {
	Flag        model.ContentFlag
	Strike      *model.VendorStrike
	Discipline  *model.VendorDiscipline
	StrikeError string
}

// Moderate applies the decided action to live content and closes the flag.
// Moderation is terminal: a second call on the same flag is rejected.
func (s *Service) Moderate(ctx context.Context, in ModerateInput) (Result, error) {
	if in.FlagID <= 0 || in.ModeratedBy <= 0 || !in.Action.Valid() {
		return Result{}, ErrValidation
	}
	if in.IssueStrike && in.StrikeType != nil && !in.StrikeType.Valid() {
		return Result{}, ErrValidation
	}
	if s.flags == nil || s.registry == nil {
		return Result{}, fmt.Errorf("moderation service dependencies are not configured")
	}

	flag, err := s.flags.GetByID(ctx, in.FlagID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrFlagNotFound) {
			return Result{}, fmt.Errorf("%w: flag %d", ErrFlagNotFound, in.FlagID)
		}
		return Result{}, err
	}
	if flag.Status == enums.FlagStatusResolved {
		return Result{}, fmt.Errorf("%w: flag %d", ErrFlagAlreadyResolved, in.FlagID)
	}

	if err := s.applyContentAction(ctx, flag, in.Action); err != nil {
		return Result{}, err
	}

	resolved, err := s.flags.MarkResolved(ctx, in.FlagID, in.Action, in.Notes, in.ModeratedBy, s.now().UTC())
	if err != nil {
		if errors.Is(err, pgrepo.ErrFlagNotFound) {
			return Result{}, fmt.Errorf("%w: flag %d", ErrFlagAlreadyResolved, in.FlagID)
		}
		return Result{}, err
	}

	result := Result{Flag: resolved}

	if in.IssueStrike && resolved.VendorID != nil && in.StrikeType != nil {
		issueResult, strikeErr := s.striker.Issue(ctx, strikesvc.IssueInput{
			VendorID:  *resolved.VendorID,
			Type:      *in.StrikeType,
			Reason:    strikeReason(resolved.Reason, in.Notes),
			ProductID: productIDForFlag(resolved),
			IssuedBy:  in.ModeratedBy,
		})
		if strikeErr != nil {
			// The moderation action is authoritative; surface the strike
			// failure separately instead of rolling back.
			s.logger.Error("strike issuance failed after moderation",
				zap.Int64("flag_id", resolved.ID),
				zap.Int64("vendor_id", *resolved.VendorID),
				zap.Error(strikeErr),
			)
			result.StrikeError = strikeErr.Error()
		} else {
			result.Strike = &issueResult.Strike
			result.Discipline = issueResult.Discipline
		}
	}

	s.audit.Record(ctx, in.ModeratedBy, "flag.moderate", "content_flag", resolved.ID, map[string]any{
		"action":       string(in.Action),
		"content_type": string(resolved.ContentType),
		"content_id":   resolved.ContentID,
		"strike":       result.Strike != nil,
	})

	return result, nil
}

func (s *Service) applyContentAction(ctx context.Context, flag model.ContentFlag, action enums.ModerationAction) error {
	adapter, ok := s.registry.AdapterFor(flag.ContentType)
	if !ok {
		return fmt.Errorf("no content adapter for %s", flag.ContentType)
	}

	switch action {
	case enums.ModerationActionRemove:
		return adapter.Remove(ctx, flag.ContentID)
	case enums.ModerationActionHide:
		return adapter.Hide(ctx, flag.ContentID)
	default:
		// APPROVE, EDIT and WARN mutate no content here; edits and warnings
		// are manual follow-ups outside the pipeline.
		return nil
	}
}

type BulkError struct {
	FlagID  int64  `json:"flag_id"`
	Message string `json:"message"`
}

type BulkResult struct {
	Success int         `json:"success"`
	Failed  int         `json:"failed"`
	Errors  []BulkError `json:"errors"`
}

// BulkModerate applies the same action to each flag independently; one bad
// flag never aborts the batch.
func (s *Service) BulkModerate(ctx context.Context, flagIDs []int64, action enums.ModerationAction, notes string, moderatedBy int64) (BulkResult, error) {
	if len(flagIDs) == 0 || moderatedBy <= 0 || !action.Valid() {
		return BulkResult{}, ErrValidation
	}

	result := BulkResult{Errors: make([]BulkError, 0)}
	for _, flagID := range flagIDs {
		_, err := s.Moderate(ctx, ModerateInput{
			FlagID:      flagID,
			Action:      action,
			Notes:       notes,
			ModeratedBy: moderatedBy,
		})
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, BulkError{FlagID: flagID, Message: err.Error()})
			continue
		}
		result.Success++
	}

	return result, nil
}

func strikeReason(flagReason enums.FlagReason, notes string) string {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return fmt.Sprintf("moderation: %s", flagReason)
	}
	return fmt.Sprintf("moderation: %s - %s", flagReason, notes)
}

func productIDForFlag(flag model.ContentFlag) *int64 {
	if flag.ContentType != enums.ContentTypeProduct {
		return nil
	}
	id := flag.ContentID
	return &id
}
