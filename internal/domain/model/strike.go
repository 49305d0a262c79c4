package model

import (
	"time"

	"github.com/Vijayapardhu/risbow-backend-sub001/internal/domain/enums"
)

type VendorStrike struct {
	ID        int64            `json:"id"`
	VendorID  int64            `json:"vendor_id"`
	Type      enums.StrikeType `json:"type"`
	Points    int              `json:"points"`
	Reason    string           `json:"reason"`
	Evidence  []string         `json:"evidence"`
	OrderID   *int64           `json:"order_id"`
	ProductID *int64           `json:"product_id"`
	IssuedBy  int64            `json:"issued_by"`
	IssuedAt  time.Time        `json:"issued_at"`

	Resolution      *enums.StrikeResolution `json:"resolution"`
	ResolutionNotes *string                 `json:"resolution_notes"`
	ResolvedAt      *time.Time              `json:"resolved_at"`
	ResolvedBy      *int64                  `json:"resolved_by"`

	AppealedAt     *time.Time `json:"appealed_at"`
	AppealReason   *string    `json:"appeal_reason"`
	AppealEvidence []string   `json:"appeal_evidence"`
}

// Active strikes are the only ones counted toward discipline thresholds.
func (s VendorStrike) Active() bool {
	return s.Resolution == nil
}

func (s VendorStrike) Appealed() bool {
	return s.AppealedAt != nil
}
