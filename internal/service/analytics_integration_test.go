//go:build integration

package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/eventwish/wishadmin/internal/cache"
	"github.com/eventwish/wishadmin/internal/metrics"
	"github.com/eventwish/wishadmin/internal/model"
	"github.com/eventwish/wishadmin/internal/repository"
	"github.com/eventwish/wishadmin/internal/testutil"
)

// ============================================================================
// Analytics Service Integration Tests
// ============================================================================

func TestIntegrationAnalyticsService_EmptyWindow(t *testing.T) {
	env := newAnalyticsServiceTestEnv(t, 10)

	report, err := env.svc.GetAnalytics(env.ctx, model.FilterToday)
	if err != nil {
		t.Fatalf("GetAnalytics failed: %v", err)
	}

	if report.TotalShares != 0 || report.TotalViews != 0 || report.TotalUniqueViews != 0 {
		t.Errorf("empty window totals = (%d, %d, %d), want zeros",
			report.TotalShares, report.TotalViews, report.TotalUniqueViews)
	}
	if report.TopTemplates == nil {
		t.Error("TopTemplates should be an empty slice, not nil")
	}
	if len(report.TopTemplates) != 0 {
		t.Errorf("expected no top templates, got %d", len(report.TopTemplates))
	}
	if report.SharingByPlatform == nil {
		t.Error("SharingByPlatform should be an empty slice, not nil")
	}
	if len(report.SharingByPlatform) != 0 {
		t.Errorf("expected no platform stats, got %d", len(report.SharingByPlatform))
	}
}

func TestIntegrationAnalyticsService_InvalidFilter(t *testing.T) {
	env := newAnalyticsServiceTestEnv(t, 10)

	_, err := env.svc.GetAnalytics(env.ctx, model.TimeFilter("fortnight"))
	if !errors.Is(err, ErrInvalidTimeFilter) {
		t.Errorf("Expected ErrInvalidTimeFilter, got: %v", err)
	}
}

func TestIntegrationAnalyticsService_RepeatedQueryIdentical(t *testing.T) {
	env := newAnalyticsServiceTestEnv(t, 10)

	tmpl := env.seedTemplate(t, "tpl-repeat")
	share := env.seedShare(t, tmpl.ID, model.PlatformWhatsApp)
	env.recordView(t, share.ID, "u1")
	env.recordView(t, share.ID, "u1")
	env.recordView(t, share.ID, "u2")

	first, err := env.svc.GetAnalytics(env.ctx, model.FilterAll)
	if err != nil {
		t.Fatalf("GetAnalytics (first) failed: %v", err)
	}

	second, err := env.svc.GetAnalytics(env.ctx, model.FilterAll)
	if err != nil {
		t.Fatalf("GetAnalytics (second) failed: %v", err)
	}

	// No writes between the calls, so the reports must be identical.
	// The report carries no generation timestamp, which is what makes
	// this hold through the cache.
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated query differed:\nfirst:  %+v\nsecond: %+v", first, second)
	}

	if first.TotalShares != 1 || first.TotalViews != 3 || first.TotalUniqueViews != 2 {
		t.Errorf("totals = (%d, %d, %d), want (1, 3, 2)",
			first.TotalShares, first.TotalViews, first.TotalUniqueViews)
	}

	// The second call is served from the report cache.
	snap := env.recorder.Snapshot()
	if snap.AnalyticsCacheMisses != 1 {
		t.Errorf("analytics cache misses = %d, want 1", snap.AnalyticsCacheMisses)
	}
	if snap.AnalyticsCacheHits != 1 {
		t.Errorf("analytics cache hits = %d, want 1", snap.AnalyticsCacheHits)
	}
}

func TestIntegrationAnalyticsService_TopNTruncation(t *testing.T) {
	env := newAnalyticsServiceTestEnv(t, 2)

	tmplA := env.seedTemplate(t, "tpl-a")
	tmplB := env.seedTemplate(t, "tpl-b")
	tmplC := env.seedTemplate(t, "tpl-c")

	// Share counts: A=3, B=2, C=1. With topN=2 only A and B survive.
	for i := 0; i < 3; i++ {
		env.seedShare(t, tmplA.ID, model.PlatformWhatsApp)
	}
	for i := 0; i < 2; i++ {
		env.seedShare(t, tmplB.ID, model.PlatformEmail)
	}
	env.seedShare(t, tmplC.ID, model.PlatformLink)

	report, err := env.svc.GetAnalytics(env.ctx, model.FilterAll)
	if err != nil {
		t.Fatalf("GetAnalytics failed: %v", err)
	}

	if len(report.TopTemplates) != 2 {
		t.Fatalf("expected leaderboard truncated to 2, got %d", len(report.TopTemplates))
	}
	if report.TopTemplates[0].TemplateID != tmplA.ID || report.TopTemplates[1].TemplateID != tmplB.ID {
		t.Errorf("leaderboard order: got %s, %s", report.TopTemplates[0].TemplateID, report.TopTemplates[1].TemplateID)
	}
	if report.TopTemplates[0].Title != tmplA.Title {
		t.Errorf("title = %q, want %q", report.TopTemplates[0].Title, tmplA.Title)
	}

	if len(report.SharingByPlatform) != 3 {
		t.Fatalf("expected 3 platform rows, got %d", len(report.SharingByPlatform))
	}
	if report.SharingByPlatform[0].Platform != model.PlatformWhatsApp || report.SharingByPlatform[0].Count != 3 {
		t.Errorf("top platform = %+v", report.SharingByPlatform[0])
	}
}

func TestIntegrationAnalyticsService_DeletedTemplateFallback(t *testing.T) {
	env := newAnalyticsServiceTestEnv(t, 10)

	tmpl := env.seedTemplate(t, "tpl-gone")
	env.seedShare(t, tmpl.ID, model.PlatformWhatsApp)

	// Templates are managed outside this service; simulate one vanishing
	// after its shares were created.
	if _, err := env.repo.Pool().Exec(env.ctx,
		`ALTER TABLE shares DROP CONSTRAINT shares_template_id_fkey`); err != nil {
		t.Fatalf("drop template fk: %v", err)
	}
	if _, err := env.repo.Pool().Exec(env.ctx,
		`DELETE FROM templates WHERE id = $1`, tmpl.ID); err != nil {
		t.Fatalf("delete template: %v", err)
	}

	report, err := env.svc.GetAnalytics(env.ctx, model.FilterAll)
	if err != nil {
		t.Fatalf("GetAnalytics failed: %v", err)
	}

	if len(report.TopTemplates) != 1 {
		t.Fatalf("expected 1 leaderboard row, got %d", len(report.TopTemplates))
	}
	if report.TopTemplates[0].Title != "(deleted template)" {
		t.Errorf("title = %q, want placeholder", report.TopTemplates[0].Title)
	}
	if report.TopTemplates[0].TemplateID != tmpl.ID {
		t.Errorf("template id = %q, want %q", report.TopTemplates[0].TemplateID, tmpl.ID)
	}
}

// ============================================================================
// Test Environment Setup
// ============================================================================

type analyticsServiceTestEnv struct {
	ctx      context.Context
	repo     *repository.Repository
	engRepo  *repository.EngagementRepository
	recorder *metrics.InMemoryRecorder
	svc      *AnalyticsService
	seq      int
}

func newAnalyticsServiceTestEnv(t *testing.T, topN int) *analyticsServiceTestEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	repo, err := repository.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	cacheClient, err := cache.New(ctx, redisURL)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() {
		_ = cacheClient.Close()
	})

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetTemplatesSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset templates schema: %v", err)
	}
	if err := testutil.ResetSharesSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset shares schema: %v", err)
	}
	if err := testutil.FlushRedis(ctx, cacheClient.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	recorder := metrics.NewInMemory()
	analyticsRepo := repository.NewAnalyticsRepository(repo)
	svc := NewAnalyticsService(analyticsRepo, repo, cacheClient, recorder, topN, time.UTC, 60*time.Second)

	return &analyticsServiceTestEnv{
		ctx:      ctx,
		repo:     repo,
		engRepo:  repository.NewEngagementRepository(repo),
		recorder: recorder,
		svc:      svc,
	}
}

func (env *analyticsServiceTestEnv) seedTemplate(t *testing.T, id string) *model.Template {
	t.Helper()
	tmpl := testutil.NewTestTemplate(t, id)
	if err := env.repo.CreateTemplate(env.ctx, tmpl); err != nil {
		t.Fatalf("create template: %v", err)
	}
	return tmpl
}

func (env *analyticsServiceTestEnv) seedShare(t *testing.T, templateID string, platform model.SharePlatform) *model.Share {
	t.Helper()
	env.seq++
	share := testutil.NewTestShare(t, templateID, fmt.Sprintf("svc-%d-%d", time.Now().UnixNano(), env.seq))
	share.ID = fmt.Sprintf("share-svc-%d", env.seq)
	share.SharedVia = platform
	if err := env.repo.CreateShare(env.ctx, share); err != nil {
		t.Fatalf("create share: %v", err)
	}
	return share
}

func (env *analyticsServiceTestEnv) recordView(t *testing.T, shareID, userID string) {
	t.Helper()
	viewerKey := fmt.Sprintf("user:%s", userID)
	if _, err := env.engRepo.RecordView(env.ctx, shareID, viewerKey, userID, "", time.Now().UTC()); err != nil {
		t.Fatalf("record view: %v", err)
	}
}
