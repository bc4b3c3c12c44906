// Package model defines domain entities for the application.
package model

// TimeFilter names a calendar-relative analytics window.
type TimeFilter string

const (
	FilterAll       TimeFilter = "all"
	FilterToday     TimeFilter = "today"
	FilterYesterday TimeFilter = "yesterday"
	FilterLast7     TimeFilter = "last7days"
	FilterLast30    TimeFilter = "last30days"
	FilterThisMonth TimeFilter = "thisMonth"
	FilterLastMonth TimeFilter = "lastMonth"
)

// IsValid checks if the filter is one of the named windows.
// The empty filter means all-time.
func (f TimeFilter) IsValid() bool {
	switch f {
	case "", FilterAll, FilterToday, FilterYesterday, FilterLast7,
		FilterLast30, FilterThisMonth, FilterLastMonth:
		return true
	}
	return false
}

// TemplateStat is one row of the per-template leaderboard.
type TemplateStat struct {
	TemplateID string `json:"template_id"`
	Title      string `json:"title"`
	ShareCount int64  `json:"share_count"`
	ViewCount  int64  `json:"view_count"`
}

// PlatformStat is one row of the per-platform distribution.
type PlatformStat struct {
	Platform SharePlatform `json:"platform"`
	Count    int64         `json:"count"`
}

// AnalyticsReport is the derived rollup of share activity over a window.
// It is computed on demand and never persisted. The same window with no
// intervening writes always yields an identical report, so the report
// carries no generation timestamp.
type AnalyticsReport struct {
	TimeFilter        TimeFilter     `json:"time_filter"`
	TotalShares       int64          `json:"total_shares"`
	TotalViews        int64          `json:"total_views"`
	TotalUniqueViews  int64          `json:"total_unique_views"`
	TopTemplates      []TemplateStat `json:"top_templates"`
	SharingByPlatform []PlatformStat `json:"sharing_by_platform"`
}
