package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eventwish/wishadmin/internal/handler/dto"
	"github.com/eventwish/wishadmin/internal/model"
	"github.com/eventwish/wishadmin/internal/service"
)

// EngagementHandler handles HTTP requests for engagement recording.
type EngagementHandler struct {
	svc    *service.EngagementService
	logger *slog.Logger
}

// NewEngagementHandler creates a new EngagementHandler.
func NewEngagementHandler(svc *service.EngagementService, logger *slog.Logger) *EngagementHandler {
	return &EngagementHandler{
		svc:    svc,
		logger: logger,
	}
}

// RecordView handles POST /api/v1/shares/{id}/views.
// When neither a user reference nor a viewer IP is supplied, the request's
// remote address identifies the viewer.
func (h *EngagementHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Share ID is required")
		return
	}

	var req dto.RecordViewRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
			return
		}
	}

	viewerIP := req.ViewerIP
	if req.UserID == "" && viewerIP == "" {
		viewerIP = remoteIP(r)
	}

	input := service.RecordViewInput{
		ShareID:  id,
		UserID:   req.UserID,
		ViewerIP: viewerIP,
	}

	if err := h.svc.RecordView(r.Context(), input); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("view_recorded",
		"share_id", id,
		"has_user", req.UserID != "",
	)

	w.WriteHeader(http.StatusNoContent)
}

// RecordEngagement handles POST /api/v1/shares/{id}/engagements.
func (h *EngagementHandler) RecordEngagement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Share ID is required")
		return
	}

	var req dto.RecordEngagementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	action := model.EngagementAction(req.Action)
	if err := h.svc.RecordEngagement(r.Context(), id, req.UserID, action); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("engagement_recorded",
		"share_id", id,
		"action", req.Action,
	)

	w.WriteHeader(http.StatusNoContent)
}

// RecordReshare handles POST /api/v1/shares/{id}/reshares.
func (h *EngagementHandler) RecordReshare(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Share ID is required")
		return
	}

	var req dto.RecordReshareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	platform := model.SharePlatform(req.Platform)
	if err := h.svc.RecordShare(r.Context(), id, platform); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("reshare_recorded",
		"share_id", id,
		"platform", req.Platform,
	)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps service errors to HTTP responses.
func (h *EngagementHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrShareNotFound):
		h.writeError(w, http.StatusNotFound, "SHARE_NOT_FOUND", "Share not found")
	case errors.Is(err, service.ErrInvalidAction):
		h.writeError(w, http.StatusBadRequest, "INVALID_ACTION", "Action must be LIKED or FAVORITED")
	case errors.Is(err, service.ErrInvalidPlatform):
		h.writeError(w, http.StatusBadRequest, "INVALID_PLATFORM", "Unknown sharing platform")
	case errors.Is(err, service.ErrMissingViewer):
		h.writeError(w, http.StatusBadRequest, "MISSING_VIEWER", "Viewer identity or IP is required")
	case errors.Is(err, service.ErrMissingUser):
		h.writeError(w, http.StatusBadRequest, "MISSING_USER", "User reference is required")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *EngagementHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// remoteIP strips the port from the request's remote address.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
