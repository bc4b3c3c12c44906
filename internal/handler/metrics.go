package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/eventwish/wishadmin/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "wishadmin_shares_created_total %d\n", snap.SharesCreated)
	writeMetric(w, "wishadmin_shares_updated_total %d\n", snap.SharesUpdated)
	writeMetric(w, "wishadmin_shares_deleted_total %d\n", snap.SharesDeleted)

	writeMetric(w, "wishadmin_share_cache_hits_total %d\n", snap.ShareCacheHits)
	writeMetric(w, "wishadmin_share_cache_misses_total %d\n", snap.ShareCacheMisses)

	writeMetric(w, "wishadmin_views_recorded_total %d\n", snap.ViewsRecorded)
	writeMetric(w, "wishadmin_unique_views_recorded_total %d\n", snap.UniqueViewsRecorded)
	writeMetric(w, "wishadmin_reshares_recorded_total %d\n", snap.ResharesRecorded)

	// Stable output order for the per-action series
	actions := make([]string, 0, len(snap.EngagementsByAction))
	for action := range snap.EngagementsByAction {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	for _, action := range actions {
		writeMetric(w, "wishadmin_engagements_recorded_total{action=%q} %d\n", action, snap.EngagementsByAction[action])
	}

	writeMetric(w, "wishadmin_analytics_cache_hits_total %d\n", snap.AnalyticsCacheHits)
	writeMetric(w, "wishadmin_analytics_cache_misses_total %d\n", snap.AnalyticsCacheMisses)
	writeMetric(w, "wishadmin_analytics_duration_seconds_count %d\n", snap.AnalyticsDurationCount)
	writeMetric(w, "wishadmin_analytics_duration_seconds_sum %.6f\n", float64(snap.AnalyticsDurationTotalNs)/1e9)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
