package service

import (
	"context"
	"sort"
	"time"

	"github.com/eventwish/wishadmin/internal/cache"
	"github.com/eventwish/wishadmin/internal/metrics"
	"github.com/eventwish/wishadmin/internal/model"
	"github.com/eventwish/wishadmin/internal/repository"
)

// deletedTemplateTitle labels leaderboard rows whose template was removed
// after its shares were created.
const deletedTemplateTitle = "(deleted template)"

// AnalyticsService computes the aggregate report for a time window.
// Read-only; shares are selected by creation time and their lifetime
// counters summed. A share created last month but viewed heavily this week
// therefore contributes all its views to last month's bucket. That
// matches how the admin dashboard has always bucketed activity and is
// asserted by tests rather than corrected here.
type AnalyticsService struct {
	analyticsRepo *repository.AnalyticsRepository
	repo          *repository.Repository
	cache         *cache.Cache
	metrics       metrics.Recorder
	topN          int
	location      *time.Location
	reportTTL     time.Duration
	now           func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService. topN bounds the
// template leaderboard; loc sets the calendar for day boundaries;
// reportTTL bounds how stale a cached report may be.
func NewAnalyticsService(analyticsRepo *repository.AnalyticsRepository, repo *repository.Repository, cacheClient *cache.Cache, recorder metrics.Recorder, topN int, loc *time.Location, reportTTL time.Duration) *AnalyticsService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if topN <= 0 {
		topN = 10
	}
	if loc == nil {
		loc = time.Local
	}
	return &AnalyticsService{
		analyticsRepo: analyticsRepo,
		repo:          repo,
		cache:         cacheClient,
		metrics:       recorder,
		topN:          topN,
		location:      loc,
		reportTTL:     reportTTL,
		now:           time.Now,
	}
}

// GetAnalytics computes the aggregate report for the named window.
// Reports are cached for a short TTL keyed by window name; within the TTL
// repeated queries return the identical report.
func (s *AnalyticsService) GetAnalytics(ctx context.Context, filter model.TimeFilter) (*model.AnalyticsReport, error) {
	if !filter.IsValid() {
		return nil, ErrInvalidTimeFilter
	}
	if filter == "" {
		filter = model.FilterAll
	}

	if cached, err := s.cache.GetAnalyticsReport(ctx, string(filter)); err == nil {
		s.metrics.IncAnalyticsCacheHit()
		return cached, nil
	}
	s.metrics.IncAnalyticsCacheMiss()

	started := s.now()
	start, end := ResolveWindow(filter, started, s.location)

	totals, err := s.analyticsRepo.GetShareTotals(ctx, start, end)
	if err != nil {
		return nil, err
	}

	groups, err := s.analyticsRepo.GetTemplateGroups(ctx, start, end)
	if err != nil {
		return nil, err
	}

	platforms, err := s.analyticsRepo.GetPlatformCounts(ctx, start, end)
	if err != nil {
		return nil, err
	}

	topTemplates, err := s.buildTopTemplates(ctx, groups)
	if err != nil {
		return nil, err
	}

	report := &model.AnalyticsReport{
		TimeFilter:        filter,
		TotalShares:       totals.TotalShares,
		TotalViews:        totals.TotalViews,
		TotalUniqueViews:  totals.TotalUniqueViews,
		TopTemplates:      topTemplates,
		SharingByPlatform: sortPlatformStats(platforms),
	}

	s.metrics.ObserveAnalyticsDuration(s.now().Sub(started))

	if err := s.cache.SetAnalyticsReport(ctx, string(filter), report, s.reportTTL); err != nil {
		_ = err // serving the report matters more than caching it
	}

	return report, nil
}

// buildTopTemplates orders, truncates and labels the template leaderboard.
func (s *AnalyticsService) buildTopTemplates(ctx context.Context, groups []repository.TemplateGroup) ([]model.TemplateStat, error) {
	ordered := sortTemplateGroups(groups)
	if len(ordered) > s.topN {
		ordered = ordered[:s.topN]
	}

	ids := make([]string, len(ordered))
	for i, g := range ordered {
		ids[i] = g.TemplateID
	}

	titles, err := s.repo.GetTemplateTitles(ctx, ids)
	if err != nil {
		return nil, err
	}

	stats := make([]model.TemplateStat, len(ordered))
	for i, g := range ordered {
		title, ok := titles[g.TemplateID]
		if !ok {
			title = deletedTemplateTitle
		}
		stats[i] = model.TemplateStat{
			TemplateID: g.TemplateID,
			Title:      title,
			ShareCount: g.ShareCount,
			ViewCount:  g.ViewCount,
		}
	}

	return stats, nil
}

// sortTemplateGroups orders the leaderboard by share count descending,
// breaking ties by view count descending and then template id ascending so
// the ordering is deterministic.
func sortTemplateGroups(groups []repository.TemplateGroup) []repository.TemplateGroup {
	ordered := make([]repository.TemplateGroup, len(groups))
	copy(ordered, groups)

	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.ShareCount != b.ShareCount {
			return a.ShareCount > b.ShareCount
		}
		if a.ViewCount != b.ViewCount {
			return a.ViewCount > b.ViewCount
		}
		return a.TemplateID < b.TemplateID
	})

	return ordered
}

// sortPlatformStats orders the platform distribution by count descending,
// breaking ties alphabetically by platform name.
func sortPlatformStats(stats []model.PlatformStat) []model.PlatformStat {
	ordered := make([]model.PlatformStat, len(stats))
	copy(ordered, stats)

	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Platform < b.Platform
	})

	return ordered
}
