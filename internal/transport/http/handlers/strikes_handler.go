package handlers

import (
	"errors"
	"net/http"

	"github.com/Vijayapardhu/risbow-backend-sub001/internal/domain/enums"
	"github.com/Vijayapardhu/risbow-backend-sub001/internal/services/adminauth"
	strikesvc "github.com/Vijayapardhu/risbow-backend-sub001/internal/services/strikes"
	"github.com/Vijayapardhu/risbow-backend-sub001/internal/transport/http/dto"
	httperrors "github.com/Vijayapardhu/risbow-backend-sub001/internal/transport/http/errors"
)

type StrikesHandler struct {
	service *strikesvc.Service
}

func NewStrikesHandler(service *strikesvc.Service) *StrikesHandler {
	return &StrikesHandler{service: service}
}

// Issue records a manual strike outside the moderation flow.
func (h *StrikesHandler) Issue(w http.ResponseWriter, r *http.Request) {
	identity, ok := adminauth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "STRIKE_SERVICE_UNAVAILABLE", "strike service is unavailable")
		return
	}

	var req dto.IssueStrikeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "request body is not valid json")
		return
	}

	result, err := h.service.Issue(r.Context(), strikesvc.IssueInput{
		VendorID:  req.VendorID,
		Type:      enums.StrikeType(req.Type),
		Reason:    req.Reason,
		Evidence:  req.Evidence,
		OrderID:   req.OrderID,
		ProductID: req.ProductID,
		IssuedBy:  identity.UserID,
	})
	if err != nil {
		handleStrikeError(w, err)
		return
	}

	resp := dto.IssueStrikeResponse{Strike: dto.StrikeFromModel(result.Strike)}
	if result.Discipline != nil {
		discipline := dto.DisciplineFromModel(*result.Discipline)
		resp.Discipline = &discipline
	}

	httperrors.Write(w, http.StatusCreated, resp)
}

func (h *StrikesHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "STRIKE_SERVICE_UNAVAILABLE", "strike service is unavailable")
		return
	}

	strikeID, ok := urlID(r, "strikeID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid strike id")
		return
	}

	strike, err := h.service.GetStrike(r.Context(), strikeID)
	if err != nil {
		handleStrikeError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.StrikeFromModel(strike))
}

func (h *StrikesHandler) VendorStrikes(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "STRIKE_SERVICE_UNAVAILABLE", "strike service is unavailable")
		return
	}

	vendorID, ok := urlID(r, "vendorID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid vendor id")
		return
	}

	summary, err := h.service.VendorStrikes(r.Context(), vendorID)
	if err != nil {
		handleStrikeError(w, err)
		return
	}

	strikes := make([]dto.StrikeResponse, 0, len(summary.Strikes))
	for _, strike := range summary.Strikes {
		strikes = append(strikes, dto.StrikeFromModel(strike))
	}

	httperrors.Write(w, http.StatusOK, dto.VendorStrikesResponse{
		Strikes:      strikes,
		ActiveCount:  summary.ActiveCount,
		ActivePoints: summary.ActivePoints,
	})
}

// Resolve closes an open strike; an overturned strike triggers discipline
// re-evaluation.
func (h *StrikesHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	identity, ok := adminauth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "STRIKE_SERVICE_UNAVAILABLE", "strike service is unavailable")
		return
	}

	strikeID, ok := urlID(r, "strikeID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid strike id")
		return
	}

	var req dto.ResolveStrikeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "request body is not valid json")
		return
	}

	strike, err := h.service.Resolve(r.Context(), strikeID, enums.StrikeResolution(req.Resolution), req.Notes, identity.UserID)
	if err != nil {
		handleStrikeError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.StrikeFromModel(strike))
}

// Appeal files the vendor's one allowed appeal on their own strike.
func (h *StrikesHandler) Appeal(w http.ResponseWriter, r *http.Request) {
	identity, ok := adminauth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "STRIKE_SERVICE_UNAVAILABLE", "strike service is unavailable")
		return
	}

	strikeID, ok := urlID(r, "strikeID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid strike id")
		return
	}

	var req dto.AppealStrikeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "request body is not valid json")
		return
	}

	strike, err := h.service.FileAppeal(r.Context(), strikeID, identity.UserID, req.Reason, req.Evidence)
	if err != nil {
		handleStrikeError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.StrikeFromModel(strike))
}

func handleStrikeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, strikesvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "request validation failed")
	case errors.Is(err, strikesvc.ErrVendorNotFound):
		writeNotFound(w, "VENDOR_NOT_FOUND", "vendor does not exist")
	case errors.Is(err, strikesvc.ErrStrikeNotFound):
		writeNotFound(w, "STRIKE_NOT_FOUND", "strike does not exist")
	case errors.Is(err, strikesvc.ErrStrikeAlreadyResolved):
		writeBadRequest(w, "STRIKE_ALREADY_RESOLVED", "strike is already resolved")
	case errors.Is(err, strikesvc.ErrStrikeAlreadyAppealed):
		writeBadRequest(w, "STRIKE_ALREADY_APPEALED", "strike is already appealed")
	case errors.Is(err, strikesvc.ErrAppealForbidden):
		writeForbidden(w, "FORBIDDEN", "strike belongs to a different vendor")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
