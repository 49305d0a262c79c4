package handlers

import (
	"errors"
	"net/http"

	"github.com/Vijayapardhu/risbow-backend-sub001/internal/domain/enums"
	"github.com/Vijayapardhu/risbow-backend-sub001/internal/services/adminauth"
	modsvc "github.com/Vijayapardhu/risbow-backend-sub001/internal/services/moderation"
	"github.com/Vijayapardhu/risbow-backend-sub001/internal/transport/http/dto"
	httperrors "github.com/Vijayapardhu/risbow-backend-sub001/internal/transport/http/errors"
)

type ModerationHandler struct {
	service *modsvc.Service
}

func NewModerationHandler(service *modsvc.Service) *ModerationHandler {
	return &ModerationHandler{service: service}
}

// Moderate applies a decision to a flag. The decision is terminal.
func (h *ModerationHandler) Moderate(w http.ResponseWriter, r *http.Request) {
	identity, ok := adminauth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	flagID, ok := urlID(r, "flagID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid flag id")
		return
	}

	var req dto.ModerateFlagRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "request body is not valid json")
		return
	}

	input := modsvc.ModerateInput{
		FlagID:      flagID,
		Action:      enums.ModerationAction(req.Action),
		Notes:       req.Notes,
		IssueStrike: req.IssueStrike,
		ModeratedBy: identity.UserID,
	}
	if req.StrikeType != nil {
		strikeType := enums.StrikeType(*req.StrikeType)
		input.StrikeType = &strikeType
	}

	result, err := h.service.Moderate(r.Context(), input)
	if err != nil {
		handleModerationError(w, err)
		return
	}

	resp := dto.ModerateFlagResponse{
		Flag:        dto.FlagFromModel(result.Flag),
		StrikeError: result.StrikeError,
	}
	if result.Strike != nil {
		strike := dto.StrikeFromModel(*result.Strike)
		resp.Strike = &strike
	}
	if result.Discipline != nil {
		discipline := dto.DisciplineFromModel(*result.Discipline)
		resp.Discipline = &discipline
	}

	httperrors.Write(w, http.StatusOK, resp)
}

// BulkModerate applies one action to a batch of flags; failures are reported
// per flag and never abort the batch.
func (h *ModerationHandler) BulkModerate(w http.ResponseWriter, r *http.Request) {
	identity, ok := adminauth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	var req dto.BulkModerateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "request body is not valid json")
		return
	}

	result, err := h.service.BulkModerate(r.Context(), req.FlagIDs, enums.ModerationAction(req.Action), req.Notes, identity.UserID)
	if err != nil {
		handleModerationError(w, err)
		return
	}

	resp := dto.BulkModerateResponse{
		Success: result.Success,
		Failed:  result.Failed,
		Errors:  make([]dto.BulkModerateError, 0, len(result.Errors)),
	}
	for _, bulkErr := range result.Errors {
		resp.Errors = append(resp.Errors, dto.BulkModerateError{FlagID: bulkErr.FlagID, Message: bulkErr.Message})
	}

	httperrors.Write(w, http.StatusOK, resp)
}

func handleModerationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, modsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "request validation failed")
	case errors.Is(err, modsvc.ErrFlagNotFound):
		writeNotFound(w, "FLAG_NOT_FOUND", "flag does not exist")
	case errors.Is(err, modsvc.ErrFlagAlreadyResolved):
		writeBadRequest(w, "FLAG_ALREADY_RESOLVED", "flag is already resolved")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
