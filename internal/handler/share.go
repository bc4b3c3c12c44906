package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eventwish/wishadmin/internal/handler/dto"
	"github.com/eventwish/wishadmin/internal/service"
)

// ShareHandler handles HTTP requests for share operations.
type ShareHandler struct {
	svc      *service.ShareService
	logger   *slog.Logger
	baseURL  string
	location *time.Location
}

// NewShareHandler creates a new ShareHandler.
func NewShareHandler(svc *service.ShareService, logger *slog.Logger, baseURL string, loc *time.Location) *ShareHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ShareHandler{
		svc:      svc,
		logger:   logger,
		baseURL:  baseURL,
		location: loc,
	}
}

// Create handles POST /api/v1/shares.
func (h *ShareHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	input := service.CreateShareInput{
		TemplateID:     req.TemplateID,
		CustomizedHTML: req.CustomizedHTML,
		CustomizedCSS:  req.CustomizedCSS,
		CustomizedJS:   req.CustomizedJS,
		RecipientName:  req.RecipientName,
		SenderName:     req.SenderName,
		Title:          req.Title,
		Description:    req.Description,
		SharedVia:      req.SharedVia,
	}

	share, err := h.svc.CreateShare(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("share_created",
		"share_id", share.ID,
		"short_code", share.ShortCode,
		"template_id", share.TemplateID,
	)

	response := dto.ToShareResponse(share, h.baseURL)
	writeJSON(w, http.StatusCreated, response)
}

// Get handles GET /api/v1/shares/{id}.
// Returns the share with its full engagement and re-share logs.
func (h *ShareHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Share ID is required")
		return
	}

	detail, err := h.svc.GetShareDetail(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	response := dto.ToShareDetailResponse(detail.Share, detail.Engagement, detail.ShareHistory, h.baseURL)
	writeJSON(w, http.StatusOK, response)
}

// GetByCode handles GET /api/v1/shares/code/{shortCode}.
func (h *ShareHandler) GetByCode(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")
	if shortCode == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_SHORT_CODE", "Short code is required")
		return
	}

	share, err := h.svc.GetShareByCode(r.Context(), shortCode)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	response := dto.ToShareResponse(share, h.baseURL)
	writeJSON(w, http.StatusOK, response)
}

// List handles GET /api/v1/shares.
func (h *ShareHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := 1
	if p := query.Get("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}

	pageSize := 0
	if ps := query.Get("page_size"); ps != "" {
		if parsed, err := strconv.Atoi(ps); err == nil && parsed > 0 {
			pageSize = parsed
		}
	}

	input := service.ListSharesInput{
		Query:      query.Get("q"),
		TimeFilter: query.Get("time_filter"),
		SortField:  query.Get("sort_field"),
		SortOrder:  query.Get("sort_order"),
		Page:       page,
		PageSize:   pageSize,
		Now:        time.Now(),
		Location:   h.location,
	}

	result, err := h.svc.ListShares(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	response := dto.ToShareListResponse(result.Shares, h.baseURL, result.Page, result.PageSize, result.TotalItems)
	writeJSON(w, http.StatusOK, response)
}

// Update handles PUT /api/v1/shares/{id}.
// The body is decoded as a raw field map so unknown and protected fields
// can be rejected by name.
func (h *ShareHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Share ID is required")
		return
	}

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	share, err := h.svc.UpdateShare(r.Context(), id, fields)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("share_updated",
		"share_id", share.ID,
		"short_code", share.ShortCode,
	)

	response := dto.ToShareResponse(share, h.baseURL)
	writeJSON(w, http.StatusOK, response)
}

// Delete handles DELETE /api/v1/shares/{id}.
func (h *ShareHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Share ID is required")
		return
	}

	if err := h.svc.DeleteShare(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("share_deleted", "share_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps service errors to HTTP responses.
func (h *ShareHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrShareNotFound):
		h.writeError(w, http.StatusNotFound, "SHARE_NOT_FOUND", "Share not found")
	case errors.Is(err, service.ErrTemplateNotFound):
		h.writeError(w, http.StatusUnprocessableEntity, "TEMPLATE_NOT_FOUND", "Template does not exist")
	case errors.Is(err, service.ErrTemplateInactive):
		h.writeError(w, http.StatusUnprocessableEntity, "TEMPLATE_INACTIVE", "Template is not active")
	case errors.Is(err, service.ErrMissingSnapshot):
		h.writeError(w, http.StatusBadRequest, "MISSING_SNAPSHOT", "Customized HTML content is required")
	case errors.Is(err, service.ErrInvalidPlatform):
		h.writeError(w, http.StatusBadRequest, "INVALID_PLATFORM", "Unknown sharing platform")
	case errors.Is(err, service.ErrInvalidTimeFilter):
		h.writeError(w, http.StatusBadRequest, "INVALID_TIME_FILTER", "Unknown time filter")
	case errors.Is(err, service.ErrRecorderOwnedField):
		h.writeError(w, http.StatusUnprocessableEntity, "INVARIANT_VIOLATION", "Engagement counters cannot be edited directly")
	case errors.Is(err, service.ErrFieldNotEditable):
		h.writeError(w, http.StatusUnprocessableEntity, "FIELD_NOT_EDITABLE", "Field cannot be edited")
	case errors.Is(err, service.ErrInvalidFieldValue):
		h.writeError(w, http.StatusBadRequest, "INVALID_FIELD_VALUE", "Field value must be a string")
	case errors.Is(err, service.ErrNoFieldsToUpdate):
		h.writeError(w, http.StatusBadRequest, "NO_FIELDS", "No editable fields in update")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *ShareHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
