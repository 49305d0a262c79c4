package model

import (
	"time"

	"github.com/Vijayapardhu/risbow-backend-sub001/internal/domain/enums"
)

type VendorDiscipline struct {
	ID         int64                  `json:"id"`
	VendorID   int64                  `json:"vendor_id"`
	Status     enums.DisciplineStatus `json:"status"`
	Reason     string                 `json:"reason"`
	StartedAt  time.Time              `json:"started_at"`
	EndsAt     *time.Time             `json:"ends_at"`
	EndedAt    *time.Time             `json:"ended_at"`
	AppliedBy  int64                  `json:"applied_by"`
	LiftedBy   *int64                 `json:"lifted_by"`
	LiftReason *string                `json:"lift_reason"`
}
