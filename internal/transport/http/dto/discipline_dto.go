package dto

import (
	"time"

	"github.com/Vijayapardhu/risbow-backend-sub001/internal/domain/model"
)

type ApplyDisciplineRequest struct {
	VendorID     int64  `json:"vendor_id"`
	Status       string `json:"status"`
	Reason       string `json:"reason"`
	DurationDays int    `json:"duration_days,omitempty"`
}

type LiftDisciplineRequest struct {
	Reason string `json:"reason"`
}

type DisciplineResponse struct {
	ID         int64      `json:"id"`
	VendorID   int64      `json:"vendor_id"`
	Status     string     `json:"status"`
	Reason     string     `json:"reason"`
	StartedAt  time.Time  `json:"started_at"`
	EndsAt     *time.Time `json:"ends_at,omitempty"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
	AppliedBy  int64      `json:"applied_by"`
	LiftedBy   *int64     `json:"lifted_by,omitempty"`
	LiftReason *string    `json:"lift_reason,omitempty"`
}

func DisciplineFromModel(d model.VendorDiscipline) DisciplineResponse {
	return DisciplineResponse{
		ID:         d.ID,
		VendorID:   d.VendorID,
		Status:     string(d.Status),
		Reason:     d.Reason,
		StartedAt:  d.StartedAt,
		EndsAt:     d.EndsAt,
		EndedAt:    d.EndedAt,
		AppliedBy:  d.AppliedBy,
		LiftedBy:   d.LiftedBy,
		LiftReason: d.LiftReason,
	}
}

func DisciplinesFromModels(records []model.VendorDiscipline) []DisciplineResponse {
	out := make([]DisciplineResponse, 0, len(records))
	for _, d := range records {
		out = append(out, DisciplineFromModel(d))
	}
	return out
}

type DisciplineHistoryResponse struct {
	Disciplines []DisciplineResponse `json:"disciplines"`
}

type SweepResponse struct {
	Expired int `json:"expired"`
}
