package dto

import (
	"time"

	"github.com/Vijayapardhu/risbow-backend-sub001/internal/domain/model"
)

type CreateFlagRequest struct {
	ContentType string `json:"content_type"`
	ContentID   int64  `json:"content_id"`
	Reason      string `json:"reason"`
	Description string `json:"description,omitempty"`
}

type ScanContentRequest struct {
	ContentType string `json:"content_type"`
	ContentID   int64  `json:"content_id"`
	Text        string `json:"text"`
}

type ScanContentResponse struct {
	Flagged bool `json:"flagged"`
}

type FlagResponse struct {
	ID              int64      `json:"id"`
	ContentType     string     `json:"content_type"`
	ContentID       int64      `json:"content_id"`
	Reason          string     `json:"reason"`
	Description     string     `json:"description,omitempty"`
	Priority        string     `json:"priority"`
	Status          string     `json:"status"`
	ReportCount     int        `json:"report_count"`
	IsAutoFlagged   bool       `json:"is_auto_flagged"`
	VendorID        *int64     `json:"vendor_id,omitempty"`
	AssignedTo      *int64     `json:"assigned_to,omitempty"`
	Action          *string    `json:"action,omitempty"`
	ModerationNotes *string    `json:"moderation_notes,omitempty"`
	ModeratedBy     *int64     `json:"moderated_by,omitempty"`
	ModeratedAt     *time.Time `json:"moderated_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func FlagFromModel(flag model.ContentFlag) FlagResponse {
	resp := FlagResponse{
		ID:              flag.ID,
		ContentType:     string(flag.ContentType),
		ContentID:       flag.ContentID,
		Reason:          string(flag.Reason),
		Description:     flag.Description,
		Priority:        string(flag.Priority),
		Status:          string(flag.Status),
		ReportCount:     flag.ReportCount,
		IsAutoFlagged:   flag.IsAutoFlagged,
		VendorID:        flag.VendorID,
		AssignedTo:      flag.AssignedTo,
		ModerationNotes: flag.ModerationNotes,
		ModeratedBy:     flag.ModeratedBy,
		ModeratedAt:     flag.ModeratedAt,
		CreatedAt:       flag.CreatedAt,
	}
	if flag.Action != nil {
		action := string(*flag.Action)
		resp.Action = &action
	}
	return resp
}

func FlagsFromModels(flags []model.ContentFlag) []FlagResponse {
	out := make([]FlagResponse, 0, len(flags))
	for _, flag := range flags {
		out = append(out, FlagFromModel(flag))
	}
	return out
}

type QueueResponse struct {
	Flags []FlagResponse `json:"flags"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type AssignFlagRequest struct {
	ModeratorID int64 `json:"moderator_id,omitempty"`
}

type QueueStatsResponse struct {
	Pending              int64            `json:"pending"`
	UnderReview          int64            `json:"under_review"`
	Resolved             int64            `json:"resolved"`
	AutoFlagged          int64            `json:"auto_flagged"`
	OpenByPriority       map[string]int64 `json:"open_by_priority"`
	AvgResolutionMinutes int64            `json:"avg_resolution_minutes"`
}

type ModeratorPerformanceResponse struct {
	Moderators []ModeratorPerformanceEntry `json:"moderators"`
}

type ModeratorPerformanceEntry struct {
	ModeratorID          int64 `json:"moderator_id"`
	ResolvedCount        int64 `json:"resolved_count"`
	ApprovedCount        int64 `json:"approved_count"`
	RemovedCount         int64 `json:"removed_count"`
	AvgResolutionMinutes int64 `json:"avg_resolution_minutes"`
}
