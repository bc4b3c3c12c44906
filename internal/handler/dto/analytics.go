package dto

import "github.com/eventwish/wishadmin/internal/model"

// AnalyticsResponse represents the analytics rollup in API responses.
type AnalyticsResponse struct {
	TimeFilter        string                `json:"time_filter"`
	TotalShares       int64                 `json:"total_shares"`
	TotalViews        int64                 `json:"total_views"`
	TotalUniqueViews  int64                 `json:"total_unique_views"`
	TopTemplates      []model.TemplateStat  `json:"top_templates"`
	SharingByPlatform []model.PlatformStat  `json:"sharing_by_platform"`
}

// ToAnalyticsResponse converts an AnalyticsReport to its response DTO.
// Slices are never null in the response, even for an empty window.
func ToAnalyticsResponse(report *model.AnalyticsReport) *AnalyticsResponse {
	resp := &AnalyticsResponse{
		TimeFilter:        string(report.TimeFilter),
		TotalShares:       report.TotalShares,
		TotalViews:        report.TotalViews,
		TotalUniqueViews:  report.TotalUniqueViews,
		TopTemplates:      report.TopTemplates,
		SharingByPlatform: report.SharingByPlatform,
	}
	if resp.TopTemplates == nil {
		resp.TopTemplates = []model.TemplateStat{}
	}
	if resp.SharingByPlatform == nil {
		resp.SharingByPlatform = []model.PlatformStat{}
	}
	return resp
}
