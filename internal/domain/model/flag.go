package model

import (
	"time"

	"github.com/Vijayapardhu/risbow-backend-sub001/internal/domain/enums"
)

type ContentFlag struct {
	ID              int64                   `json:"id"`
	ContentType     enums.ContentType       `json:"content_type"`
	ContentID       int64                   `json:"content_id"`
	Reason          enums.FlagReason        `json:"reason"`
	Description     string                  `json:"description"`
	Priority        enums.FlagPriority      `json:"priority"`
	Status          enums.FlagStatus        `json:"status"`
	ReportCount     int                     `json:"report_count"`
	IsAutoFlagged   bool                    `json:"is_auto_flagged"`
	VendorID        *int64                  `json:"vendor_id"`
	ReportedBy      *int64                  `json:"reported_by"`
	AssignedTo      *int64                  `json:"assigned_to"`
	Action          *enums.ModerationAction `json:"action"`
	ModerationNotes *string                 `json:"moderation_notes"`
	ModeratedBy     *int64                  `json:"moderated_by"`
	ModeratedAt     *time.Time              `json:"moderated_at"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}
