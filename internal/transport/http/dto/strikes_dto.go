package dto

import (
	"time"

	"github.com/Vijayapardhu/risbow-backend-sub001/internal/domain/model"
)

type IssueStrikeRequest struct {
	VendorID  int64    `json:"vendor_id"`
	Type      string   `json:"type"`
	Reason    string   `json:"reason"`
	Evidence  []string `json:"evidence,omitempty"`
	OrderID   *int64   `json:"order_id,omitempty"`
	ProductID *int64   `json:"product_id,omitempty"`
}

type ResolveStrikeRequest struct {
	Resolution string `json:"resolution"`
	Notes      string `json:"notes,omitempty"`
}

type AppealStrikeRequest struct {
	Reason   string   `json:"reason"`
	Evidence []string `json:"evidence,omitempty"`
}

type StrikeResponse struct {
	ID              int64      `json:"id"`
	VendorID        int64      `json:"vendor_id"`
	Type            string     `json:"type"`
	Points          int        `json:"points"`
	Reason          string     `json:"reason"`
	Evidence        []string   `json:"evidence,omitempty"`
	OrderID         *int64     `json:"order_id,omitempty"`
	ProductID       *int64     `json:"product_id,omitempty"`
	IssuedBy        int64      `json:"issued_by"`
	IssuedAt        time.Time  `json:"issued_at"`
	Resolution      *string    `json:"resolution,omitempty"`
	ResolutionNotes *string    `json:"resolution_notes,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy      *int64     `json:"resolved_by,omitempty"`
	AppealedAt      *time.Time `json:"appealed_at,omitempty"`
	AppealReason    *string    `json:"appeal_reason,omitempty"`
	AppealEvidence  []string   `json:"appeal_evidence,omitempty"`
}

func StrikeFromModel(strike model.VendorStrike) StrikeResponse {
	resp := StrikeResponse{
		ID:              strike.ID,
		VendorID:        strike.VendorID,
		Type:            string(strike.Type),
		Points:          strike.Points,
		Reason:          strike.Reason,
		Evidence:        strike.Evidence,
		OrderID:         strike.OrderID,
		ProductID:       strike.ProductID,
		IssuedBy:        strike.IssuedBy,
		IssuedAt:        strike.IssuedAt,
		ResolutionNotes: strike.ResolutionNotes,
		ResolvedAt:      strike.ResolvedAt,
		ResolvedBy:      strike.ResolvedBy,
		AppealedAt:      strike.AppealedAt,
		AppealReason:    strike.AppealReason,
		AppealEvidence:  strike.AppealEvidence,
	}
	if strike.Resolution != nil {
		resolution := string(*strike.Resolution)
		resp.Resolution = &resolution
	}
	return resp
}

type IssueStrikeResponse struct {
	Strike     StrikeResponse      `json:"strike"`
	Discipline *DisciplineResponse `json:"discipline,omitempty"`
}

type VendorStrikesResponse struct {
	Strikes      []StrikeResponse `json:"strikes"`
	ActiveCount  int              `json:"active_count"`
	ActivePoints int              `json:"active_points"`
}
