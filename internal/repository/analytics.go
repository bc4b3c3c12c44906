package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/eventwish/wishadmin/internal/model"
)

// AnalyticsRepository provides read-only aggregation over the share
// collection. All queries select shares by creation time; the counters
// summed are the lifetime counters of the selected shares.
type AnalyticsRepository struct {
	repo *Repository
}

// NewAnalyticsRepository creates a new AnalyticsRepository.
func NewAnalyticsRepository(repo *Repository) *AnalyticsRepository {
	return &AnalyticsRepository{repo: repo}
}

// ShareTotals holds the window-wide counters.
type ShareTotals struct {
	TotalShares      int64
	TotalViews       int64
	TotalUniqueViews int64
}

// TemplateGroup is the unsorted per-template rollup.
type TemplateGroup struct {
	TemplateID string
	ShareCount int64
	ViewCount  int64
}

// windowClause builds the creation-time predicate. Nil bounds mean
// all-time.
func windowClause(start, end *time.Time) (string, []any) {
	conditions := make([]string, 0, 2)
	args := make([]any, 0, 2)

	if start != nil {
		args = append(args, *start)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if end != nil {
		args = append(args, *end)
		conditions = append(conditions, fmt.Sprintf("created_at < $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// GetShareTotals returns share count and summed view counters for the
// window. Empty windows come back as zeros, never NULL.
func (r *AnalyticsRepository) GetShareTotals(ctx context.Context, start, end *time.Time) (*ShareTotals, error) {
	where, args := windowClause(start, end)
	query := `
		SELECT COUNT(*), COALESCE(SUM(views), 0), COALESCE(SUM(unique_views), 0)
		FROM shares` + where

	var totals ShareTotals
	err := r.repo.pool.QueryRow(ctx, query, args...).Scan(
		&totals.TotalShares,
		&totals.TotalViews,
		&totals.TotalUniqueViews,
	)
	if err != nil {
		return nil, fmt.Errorf("query share totals: %w", err)
	}

	return &totals, nil
}

// GetTemplateGroups returns the per-template share and view sums for the
// window. Ordering and truncation are applied by the caller.
func (r *AnalyticsRepository) GetTemplateGroups(ctx context.Context, start, end *time.Time) ([]TemplateGroup, error) {
	where, args := windowClause(start, end)
	query := `
		SELECT template_id, COALESCE(SUM(share_count), 0), COALESCE(SUM(views), 0)
		FROM shares` + where + `
		GROUP BY template_id
	`

	rows, err := r.repo.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query template groups: %w", err)
	}
	defer rows.Close()

	groups := make([]TemplateGroup, 0)
	for rows.Next() {
		var g TemplateGroup
		if err := rows.Scan(&g.TemplateID, &g.ShareCount, &g.ViewCount); err != nil {
			return nil, fmt.Errorf("scan template group: %w", err)
		}
		groups = append(groups, g)
	}

	return groups, rows.Err()
}

// GetPlatformCounts returns the share count per creation platform for the
// window. Ordering is applied by the caller.
func (r *AnalyticsRepository) GetPlatformCounts(ctx context.Context, start, end *time.Time) ([]model.PlatformStat, error) {
	where, args := windowClause(start, end)
	query := `
		SELECT shared_via, COUNT(*)
		FROM shares` + where + `
		GROUP BY shared_via
	`

	rows, err := r.repo.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query platform counts: %w", err)
	}
	defer rows.Close()

	stats := make([]model.PlatformStat, 0)
	for rows.Next() {
		var s model.PlatformStat
		if err := rows.Scan(&s.Platform, &s.Count); err != nil {
			return nil, fmt.Errorf("scan platform count: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}
