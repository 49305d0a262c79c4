package handlers

import (
	"errors"
	"net/http"

	"github.com/Vijayapardhu/risbow-backend-sub001/internal/domain/enums"
	"github.com/Vijayapardhu/risbow-backend-sub001/internal/services/adminauth"
	discsvc "github.com/Vijayapardhu/risbow-backend-sub001/internal/services/discipline"
	"github.com/Vijayapardhu/risbow-backend-sub001/internal/transport/http/dto"
	httperrors "github.com/Vijayapardhu/risbow-backend-sub001/internal/transport/http/errors"
)

type DisciplineHandler struct {
	service *discsvc.Service
}

func NewDisciplineHandler(service *discsvc.Service) *DisciplineHandler {
	return &DisciplineHandler{service: service}
}

// Apply opens a discipline record by direct admin decision, outside the
// automatic escalation ladder.
func (h *DisciplineHandler) Apply(w http.ResponseWriter, r *http.Request) {
	identity, ok := adminauth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "DISCIPLINE_SERVICE_UNAVAILABLE", "discipline service is unavailable")
		return
	}

	var req dto.ApplyDisciplineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "request body is not valid json")
		return
	}

	discipline, err := h.service.Apply(r.Context(), req.VendorID, enums.DisciplineStatus(req.Status), req.Reason, identity.UserID, req.DurationDays)
	if err != nil {
		handleDisciplineError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.DisciplineFromModel(discipline))
}

func (h *DisciplineHandler) Lift(w http.ResponseWriter, r *http.Request) {
	identity, ok := adminauth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "DISCIPLINE_SERVICE_UNAVAILABLE", "discipline service is unavailable")
		return
	}

	disciplineID, ok := urlID(r, "disciplineID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid discipline id")
		return
	}

	var req dto.LiftDisciplineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "request body is not valid json")
		return
	}

	discipline, err := h.service.Lift(r.Context(), disciplineID, identity.UserID, req.Reason)
	if err != nil {
		handleDisciplineError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.DisciplineFromModel(discipline))
}

func (h *DisciplineHandler) VendorHistory(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "DISCIPLINE_SERVICE_UNAVAILABLE", "discipline service is unavailable")
		return
	}

	vendorID, ok := urlID(r, "vendorID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid vendor id")
		return
	}

	history, err := h.service.VendorHistory(r.Context(), vendorID)
	if err != nil {
		handleDisciplineError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.DisciplineHistoryResponse{
		Disciplines: dto.DisciplinesFromModels(history),
	})
}

// Sweep runs the expiry pass on demand; the scheduled loop runs the same
// code.
func (h *DisciplineHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "DISCIPLINE_SERVICE_UNAVAILABLE", "discipline service is unavailable")
		return
	}

	expired, err := h.service.ProcessExpired(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "expiry sweep failed")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SweepResponse{Expired: expired})
}

func handleDisciplineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, discsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "request validation failed")
	case errors.Is(err, discsvc.ErrVendorNotFound):
		writeNotFound(w, "VENDOR_NOT_FOUND", "vendor does not exist")
	case errors.Is(err, discsvc.ErrDisciplineNotFound):
		writeNotFound(w, "DISCIPLINE_NOT_FOUND", "discipline record does not exist")
	case errors.Is(err, discsvc.ErrDisciplineNotActive):
		writeBadRequest(w, "DISCIPLINE_NOT_ACTIVE", "discipline record is not active")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
