package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/eventwish/wishadmin/internal/handler/dto"
	"github.com/eventwish/wishadmin/internal/model"
	"github.com/eventwish/wishadmin/internal/service"
)

// AnalyticsHandler handles HTTP requests for the analytics rollup.
type AnalyticsHandler struct {
	svc    *service.AnalyticsService
	logger *slog.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(svc *service.AnalyticsService, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		svc:    svc,
		logger: logger,
	}
}

// GetShareAnalytics handles GET /api/v1/analytics/shares.
// The time_filter query parameter selects the window; omitting it means
// all-time.
func (h *AnalyticsHandler) GetShareAnalytics(w http.ResponseWriter, r *http.Request) {
	filter := model.TimeFilter(r.URL.Query().Get("time_filter"))

	report, err := h.svc.GetAnalytics(r.Context(), filter)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTimeFilter) {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
				Error: "Unknown time filter",
				Code:  "INVALID_TIME_FILTER",
			})
			return
		}
		h.logger.Error("internal_error", "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{
			Error: "An internal error occurred",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	writeJSON(w, http.StatusOK, dto.ToAnalyticsResponse(report))
}
