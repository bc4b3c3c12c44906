package service

import (
	"testing"

	"github.com/eventwish/wishadmin/internal/model"
	"github.com/eventwish/wishadmin/internal/repository"
)

func TestSortTemplateGroups_ByShareCount(t *testing.T) {
	groups := []repository.TemplateGroup{
		{TemplateID: "A", ShareCount: 5, ViewCount: 100},
		{TemplateID: "B", ShareCount: 2, ViewCount: 500},
		{TemplateID: "C", ShareCount: 8, ViewCount: 10},
	}

	ordered := sortTemplateGroups(groups)

	want := []string{"C", "A", "B"}
	for i, id := range want {
		if ordered[i].TemplateID != id {
			t.Errorf("position %d = %s, want %s", i, ordered[i].TemplateID, id)
		}
	}
}

func TestSortTemplateGroups_TieBreaking(t *testing.T) {
	groups := []repository.TemplateGroup{
		{TemplateID: "B", ShareCount: 5, ViewCount: 10},
		{TemplateID: "A", ShareCount: 5, ViewCount: 10},
		{TemplateID: "C", ShareCount: 5, ViewCount: 20},
	}

	ordered := sortTemplateGroups(groups)

	// Equal share counts: higher view count first, then id ascending
	want := []string{"C", "A", "B"}
	for i, id := range want {
		if ordered[i].TemplateID != id {
			t.Errorf("position %d = %s, want %s", i, ordered[i].TemplateID, id)
		}
	}
}

func TestSortTemplateGroups_DoesNotMutateInput(t *testing.T) {
	groups := []repository.TemplateGroup{
		{TemplateID: "B", ShareCount: 1},
		{TemplateID: "A", ShareCount: 2},
	}

	_ = sortTemplateGroups(groups)

	if groups[0].TemplateID != "B" {
		t.Error("input slice was reordered")
	}
}

func TestSortPlatformStats(t *testing.T) {
	stats := []model.PlatformStat{
		{Platform: model.PlatformWhatsApp, Count: 3},
		{Platform: model.PlatformEmail, Count: 7},
		{Platform: model.PlatformFacebook, Count: 3},
	}

	ordered := sortPlatformStats(stats)

	// Count descending, ties alphabetical
	want := []model.SharePlatform{model.PlatformEmail, model.PlatformFacebook, model.PlatformWhatsApp}
	for i, platform := range want {
		if ordered[i].Platform != platform {
			t.Errorf("position %d = %s, want %s", i, ordered[i].Platform, platform)
		}
	}
}

func TestSortPlatformStats_Empty(t *testing.T) {
	ordered := sortPlatformStats(nil)
	if len(ordered) != 0 {
		t.Errorf("expected empty result, got %d entries", len(ordered))
	}
}
