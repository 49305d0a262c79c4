package flags

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Vijayapardhu/risbow-backend-sub001/internal/domain/enums"
	"github.com/Vijayapardhu/risbow-backend-sub001/internal/domain/model"
	"github.com/Vijayapardhu/risbow-backend-sub001/internal/domain/rules"
	pgrepo "github.com/Vijayapardhu/risbow-backend-sub001/internal/repo/postgres"
	auditsvc "github.com/Vijayapardhu/risbow-backend-sub001/internal/services/audit"
	contentsvc "github.com/Vijayapardhu/risbow-backend-sub001/internal/services/content"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrContentNotFound     = errors.New("content not found")
	ErrFlagNotFound        = errors.New("flag not found")
	ErrFlagAlreadyResolved = errors.New("flag already resolved")
)

type Store interface {
	Insert(ctx context.Context, p pgrepo.CreateFlagParams) (model.ContentFlag, error)
	GetOpenByContent(ctx context.Context, contentType enums.ContentType, contentID int64) (model.ContentFlag, error)
	IncrementReport(ctx context.Context, flagID int64) (model.ContentFlag, error)
	GetByID(ctx context.Context, flagID int64) (model.ContentFlag, error)
	Assign(ctx context.Context, flagID, moderatorID int64) (model.ContentFlag, error)
	ListQueue(ctx context.Context, filter pgrepo.QueueFilter, page, limit int) ([]model.ContentFlag, int64, error)
	Stats(ctx context.Context) (pgrepo.QueueStatsRecord, error)
	ModeratorPerformance(ctx context.Context, since time.Time) ([]pgrepo.ModeratorPerformanceRecord, error)
}

type AdapterRegistry interface {
	AdapterFor(contentType enums.ContentType) (contentsvc.Adapter, bool)
}

type Config struct {
	Tables           rules.ScoringTables
	AutoFlagKeywords []string
}

type Service struct {
	flags    Store
	registry AdapterRegistry
	audit    *auditsvc.Recorder
	logger   *zap.Logger
	cfg      Config
	keywords []string
}

func NewService(flags Store, registry AdapterRegistry, audit *auditsvc.Recorder, logger *zap.Logger, cfg Config) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Tables.ReasonScores == nil {
		cfg.Tables = rules.DefaultScoringTables()
	}
	if len(cfg.AutoFlagKeywords) == 0 {
		cfg.AutoFlagKeywords = DefaultAutoFlagKeywords()
	}

	keywords := make([]string, 0, len(cfg.AutoFlagKeywords))
	for _, kw := range cfg.AutoFlagKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}

	return &Service{
		flags:    flags,
		registry: registry,
		audit:    audit,
		logger:   logger,
		cfg:      cfg,
		keywords: keywords,
	}
}

func DefaultAutoFlagKeywords() []string {
	return []string{
		"counterfeit",
		"replica",
		"knock-off",
		"weapon",
		"narcotic",
		"stolen",
		"unlicensed",
	}
}

type CreateInput struct {
	ContentType   enums.ContentType
	ContentID     int64
	Reason        enums.FlagReason
	Description   string
	ReportedBy    *int64
	IsAutoFlagged bool
}

// Create files a report. A repeat report on content with an open flag bumps
// the existing flag's report count instead of adding a row.
func (s *Service) Create(ctx context.Context, in CreateInput) (model.ContentFlag, error) {
	if in.ContentID <= 0 || !in.ContentType.Valid() || !in.Reason.Valid() {
		return model.ContentFlag{}, ErrValidation
	}
	if s.flags == nil || s.registry == nil {
		return model.ContentFlag{}, fmt.Errorf("flag service dependencies are not configured")
	}

	adapter, ok := s.registry.AdapterFor(in.ContentType)
	if !ok {
		return model.ContentFlag{}, ErrValidation
	}

	exists, err := adapter.Exists(ctx, in.ContentID)
	if err != nil {
		return model.ContentFlag{}, err
	}
	if !exists {
		return model.ContentFlag{}, fmt.Errorf("%w: %s %d", ErrContentNotFound, in.ContentType, in.ContentID)
	}

	if open, getErr := s.flags.GetOpenByContent(ctx, in.ContentType, in.ContentID); getErr == nil {
		return s.incrementExisting(ctx, open, in)
	} else if !errors.Is(getErr, pgrepo.ErrFlagNotFound) {
		return model.ContentFlag{}, getErr
	}

	vendorID, err := adapter.ResolveOwner(ctx, in.ContentID)
	if err != nil {
		return model.ContentFlag{}, err
	}

	flag, err := s.flags.Insert(ctx, pgrepo.CreateFlagParams{
		ContentType:   in.ContentType,
		ContentID:     in.ContentID,
		Reason:        in.Reason,
		Description:   in.Description,
		Priority:      s.cfg.Tables.PriorityForReason(in.Reason, in.IsAutoFlagged),
		IsAutoFlagged: in.IsAutoFlagged,
		VendorID:      vendorID,
		ReportedBy:    in.ReportedBy,
	})
	if err != nil {
		if errors.Is(err, pgrepo.ErrDuplicateOpenFlag) {
			// Lost the insert race; the winner's flag takes the increment.
			open, getErr := s.flags.GetOpenByContent(ctx, in.ContentType, in.ContentID)
			if getErr != nil {
				return model.ContentFlag{}, getErr
			}
			return s.incrementExisting(ctx, open, in)
		}
		return model.ContentFlag{}, err
	}

	s.recordFlagAudit(ctx, in, flag, "flag.create")
	return flag, nil
}

func (s *Service) incrementExisting(ctx context.Context, open model.ContentFlag, in CreateInput) (model.ContentFlag, error) {
	updated, err := s.flags.IncrementReport(ctx, open.ID)
	if err != nil {
		return model.ContentFlag{}, err
	}

	s.recordFlagAudit(ctx, in, updated, "flag.report")
	return updated, nil
}

func (s *Service) recordFlagAudit(ctx context.Context, in CreateInput, flag model.ContentFlag, action string) {
	var actor int64
	if in.ReportedBy != nil {
		actor = *in.ReportedBy
	}
	s.audit.Record(ctx, actor, action, "content_flag", flag.ID, map[string]any{
		"content_type": string(flag.ContentType),
		"content_id":   flag.ContentID,
		"reason":       string(flag.Reason),
		"report_count": flag.ReportCount,
		"priority":     string(flag.Priority),
	})
}

// Assign moves a flag under review. Reassignment to another moderator is
// silently allowed.
func (s *Service) Assign(ctx context.Context, flagID, moderatorID int64) (model.ContentFlag, error) {
	if flagID <= 0 || moderatorID <= 0 {
		return model.ContentFlag{}, ErrValidation
	}
	if s.flags == nil {
		return model.ContentFlag{}, fmt.Errorf("flag service dependencies are not configured")
	}

	existing, err := s.flags.GetByID(ctx, flagID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrFlagNotFound) {
			return model.ContentFlag{}, fmt.Errorf("%w: flag %d", ErrFlagNotFound, flagID)
		}
		return model.ContentFlag{}, err
	}
	if existing.Status == enums.FlagStatusResolved {
		return model.ContentFlag{}, fmt.Errorf("%w: flag %d", ErrFlagAlreadyResolved, flagID)
	}

	assigned, err := s.flags.Assign(ctx, flagID, moderatorID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrFlagNotFound) {
			return model.ContentFlag{}, fmt.Errorf("%w: flag %d", ErrFlagAlreadyResolved, flagID)
		}
		return model.ContentFlag{}, err
	}

	s.audit.Record(ctx, moderatorID, "flag.assign", "content_flag", assigned.ID, map[string]any{
		"moderator_id": moderatorID,
	})

	return assigned, nil
}

type QueuePage struct {
	Flags []model.ContentFlag
	Total int64
	Page  int
	Limit int
}

func (s *Service) Queue(ctx context.Context, filter pgrepo.QueueFilter, page, limit int) (QueuePage, error) {
	if s.flags == nil {
		return QueuePage{}, fmt.Errorf("flag service dependencies are not configured")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	items, total, err := s.flags.ListQueue(ctx, filter, page, limit)
	if err != nil {
		return QueuePage{}, err
	}

	return QueuePage{Flags: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *Service) Stats(ctx context.Context) (pgrepo.QueueStatsRecord, error) {
	if s.flags == nil {
		return pgrepo.QueueStatsRecord{}, fmt.Errorf("flag service dependencies are not configured")
	}
	return s.flags.Stats(ctx)
}

func (s *Service) ModeratorPerformance(ctx context.Context, since time.Time) ([]pgrepo.ModeratorPerformanceRecord, error) {
	if s.flags == nil {
		return nil, fmt.Errorf("flag service dependencies are not configured")
	}
	if since.IsZero() {
		since = time.Now().UTC().AddDate(0, -1, 0)
	}
	return s.flags.ModeratorPerformance(ctx, since)
}

// AutoFlag scans text against the keyword list and files a PROHIBITED flag on
// the first hit. At most one flag results per call.
func (s *Service) AutoFlag(ctx context.Context, contentType enums.ContentType, contentID int64, text string) (bool, error) {
	if contentID <= 0 || !contentType.Valid() {
		return false, ErrValidation
	}

	lowered := strings.ToLower(text)
	for _, kw := range s.keywords {
		if !strings.Contains(lowered, kw) {
			continue
		}

		_, err := s.Create(ctx, CreateInput{
			ContentType:   contentType,
			ContentID:     contentID,
			Reason:        enums.FlagReasonProhibited,
			Description:   fmt.Sprintf("auto-flagged: matched keyword %q", kw),
			IsAutoFlagged: true,
		})
		if err != nil {
			return false, err
		}
		return true, nil
	}

	return false, nil
}
