package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Vijayapardhu/risbow-backend-sub001/internal/domain/enums"
	pgrepo "github.com/Vijayapardhu/risbow-backend-sub001/internal/repo/postgres"
	"github.com/Vijayapardhu/risbow-backend-sub001/internal/services/adminauth"
	flagsvc "github.com/Vijayapardhu/risbow-backend-sub001/internal/services/flags"
	"github.com/Vijayapardhu/risbow-backend-sub001/internal/transport/http/dto"
	httperrors "github.com/Vijayapardhu/risbow-backend-sub001/internal/transport/http/errors"
)

type FlagsHandler struct {
	service *flagsvc.Service
}

func NewFlagsHandler(service *flagsvc.Service) *FlagsHandler {
	return &FlagsHandler{service: service}
}

// Create files a content report. Any authenticated caller may report;
// repeat reports bump the open flag instead of opening another.
func (h *FlagsHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := adminauth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "FLAG_SERVICE_UNAVAILABLE", "flag service is unavailable")
		return
	}

	var req dto.CreateFlagRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "request body is not valid json")
		return
	}

	reporter := identity.UserID
	flag, err := h.service.Create(r.Context(), flagsvc.CreateInput{
		ContentType: enums.ContentType(req.ContentType),
		ContentID:   req.ContentID,
		Reason:      enums.FlagReason(req.Reason),
		Description: req.Description,
		ReportedBy:  &reporter,
	})
	if err != nil {
		handleFlagError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.FlagFromModel(flag))
}

// Queue lists open flags ordered by priority, report count and age.
func (h *FlagsHandler) Queue(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "FLAG_SERVICE_UNAVAILABLE", "flag service is unavailable")
		return
	}

	filter := pgrepo.QueueFilter{}
	query := r.URL.Query()
	if v := query.Get("status"); v != "" {
		status := enums.FlagStatus(v)
		filter.Status = &status
	}
	if v := query.Get("priority"); v != "" {
		priority := enums.FlagPriority(v)
		filter.Priority = &priority
	}
	if v := query.Get("content_type"); v != "" {
		contentType := enums.ContentType(v)
		filter.ContentType = &contentType
	}
	if v := query.Get("assigned_to"); v != "" {
		assignedTo, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid assigned_to")
			return
		}
		filter.AssignedTo = &assignedTo
	}

	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	result, err := h.service.Queue(r.Context(), filter, page, limit)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load moderation queue")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.QueueResponse{
		Flags: dto.FlagsFromModels(result.Flags),
		Total: result.Total,
		Page:  result.Page,
		Limit: result.Limit,
	})
}

// Assign claims a flag for review. Without a moderator_id in the body the
// flag goes to the caller.
func (h *FlagsHandler) Assign(w http.ResponseWriter, r *http.Request) {
	identity, ok := adminauth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "FLAG_SERVICE_UNAVAILABLE", "flag service is unavailable")
		return
	}

	flagID, ok := urlID(r, "flagID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid flag id")
		return
	}

	moderatorID := identity.UserID
	if r.ContentLength > 0 {
		var req dto.AssignFlagRequest
		if err := decodeJSON(r, &req); err != nil {
			writeBadRequest(w, "INVALID_REQUEST", "request body is not valid json")
			return
		}
		if req.ModeratorID > 0 {
			moderatorID = req.ModeratorID
		}
	}

	flag, err := h.service.Assign(r.Context(), flagID, moderatorID)
	if err != nil {
		handleFlagError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.FlagFromModel(flag))
}

func (h *FlagsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "FLAG_SERVICE_UNAVAILABLE", "flag service is unavailable")
		return
	}

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load queue stats")
		return
	}

	byPriority := make(map[string]int64, len(stats.OpenByPriority))
	for priority, count := range stats.OpenByPriority {
		byPriority[string(priority)] = count
	}

	httperrors.Write(w, http.StatusOK, dto.QueueStatsResponse{
		Pending:              stats.Pending,
		UnderReview:          stats.UnderReview,
		Resolved:             stats.Resolved,
		AutoFlagged:          stats.AutoFlagged,
		OpenByPriority:       byPriority,
		AvgResolutionMinutes: stats.AvgResolutionMinutes,
	})
}

func (h *FlagsHandler) ModeratorPerformance(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "FLAG_SERVICE_UNAVAILABLE", "flag service is unavailable")
		return
	}

	var since time.Time
	if v := r.URL.Query().Get("since"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeBadRequest(w, "VALIDATION_ERROR", "since must be RFC3339")
			return
		}
		since = parsed
	}

	records, err := h.service.ModeratorPerformance(r.Context(), since)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load moderator performance")
		return
	}

	entries := make([]dto.ModeratorPerformanceEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, dto.ModeratorPerformanceEntry{
			ModeratorID:          rec.ModeratorID,
			ResolvedCount:        rec.ResolvedCount,
			ApprovedCount:        rec.ApprovedCount,
			RemovedCount:         rec.RemovedCount,
			AvgResolutionMinutes: rec.AvgResolutionMinutes,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.ModeratorPerformanceResponse{Moderators: entries})
}

// Scan runs the keyword scan over freshly ingested content and files an
// auto-flag on a match. Called by the catalog pipeline on create/update.
func (h *FlagsHandler) Scan(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "FLAG_SERVICE_UNAVAILABLE", "flag service is unavailable")
		return
	}

	var req dto.ScanContentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "request body is not valid json")
		return
	}

	flagged, err := h.service.AutoFlag(r.Context(), enums.ContentType(req.ContentType), req.ContentID, req.Text)
	if err != nil {
		handleFlagError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ScanContentResponse{Flagged: flagged})
}

func handleFlagError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, flagsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "request validation failed")
	case errors.Is(err, flagsvc.ErrContentNotFound):
		writeNotFound(w, "CONTENT_NOT_FOUND", "reported content does not exist")
	case errors.Is(err, flagsvc.ErrFlagNotFound):
		writeNotFound(w, "FLAG_NOT_FOUND", "flag does not exist")
	case errors.Is(err, flagsvc.ErrFlagAlreadyResolved):
		writeBadRequest(w, "FLAG_ALREADY_RESOLVED", "flag is already resolved")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
