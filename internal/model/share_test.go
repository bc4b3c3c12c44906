package model

import (
	"testing"
	"time"
)

func TestSharePlatform_IsValid(t *testing.T) {
	tests := []struct {
		platform SharePlatform
		want     bool
	}{
		{PlatformLink, true},
		{PlatformWhatsApp, true},
		{PlatformFacebook, true},
		{PlatformTwitter, true},
		{PlatformInstagram, true},
		{PlatformEmail, true},
		{PlatformSMS, true},
		{PlatformOther, true},
		{"", false},
		{"whatsapp", false}, // values are upper case
		{"TELEGRAM", false},
	}

	for _, tt := range tests {
		if got := tt.platform.IsValid(); got != tt.want {
			t.Errorf("IsValid(%q) = %v, want %v", tt.platform, got, tt.want)
		}
	}
}

func TestEngagementAction_IsValid(t *testing.T) {
	valid := []EngagementAction{ActionViewed, ActionLiked, ActionFavorited, ActionShared}
	for _, action := range valid {
		if !action.IsValid() {
			t.Errorf("IsValid(%q) = false, want true", action)
		}
	}

	invalid := []EngagementAction{"", "CLAPPED", "viewed"}
	for _, action := range invalid {
		if action.IsValid() {
			t.Errorf("IsValid(%q) = true, want false", action)
		}
	}
}

func TestEngagementAction_IsRecordable(t *testing.T) {
	tests := []struct {
		action EngagementAction
		want   bool
	}{
		{ActionLiked, true},
		{ActionFavorited, true},
		// VIEWED and SHARED are appended by their own operations
		{ActionViewed, false},
		{ActionShared, false},
		{"CLAPPED", false},
	}

	for _, tt := range tests {
		if got := tt.action.IsRecordable(); got != tt.want {
			t.Errorf("IsRecordable(%q) = %v, want %v", tt.action, got, tt.want)
		}
	}
}

func TestCachedShare_RoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)
	lastShared := now.Add(-time.Hour)

	share := &Share{
		ID:            "share-1",
		ShortCode:     "abc23456",
		TemplateID:    "tpl-1",
		Title:         "Happy Birthday",
		RecipientName: "Asha",
		SenderName:    "Ravi",
		SharedVia:     PlatformWhatsApp,
		Views:         42,
		UniqueViews:   17,
		ShareCount:    3,
		LastSharedAt:  &lastShared,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	got := share.ToCachedShare().ToShare(share.ShortCode)

	if got.ID != share.ID {
		t.Errorf("ID = %s, want %s", got.ID, share.ID)
	}
	if got.ShortCode != share.ShortCode {
		t.Errorf("ShortCode = %s, want %s", got.ShortCode, share.ShortCode)
	}
	if got.TemplateID != share.TemplateID {
		t.Errorf("TemplateID = %s, want %s", got.TemplateID, share.TemplateID)
	}
	if got.SharedVia != share.SharedVia {
		t.Errorf("SharedVia = %s, want %s", got.SharedVia, share.SharedVia)
	}
	if got.Views != share.Views || got.UniqueViews != share.UniqueViews || got.ShareCount != share.ShareCount {
		t.Errorf("counters = (%d, %d, %d), want (%d, %d, %d)",
			got.Views, got.UniqueViews, got.ShareCount,
			share.Views, share.UniqueViews, share.ShareCount)
	}
	if !got.CreatedAt.Equal(share.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, share.CreatedAt)
	}
}

func TestCachedShare_ZeroCounters(t *testing.T) {
	share := &Share{
		ID:        "share-1",
		ShortCode: "abc23456",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	got := share.ToCachedShare().ToShare(share.ShortCode)

	if got.Views != 0 || got.UniqueViews != 0 || got.ShareCount != 0 {
		t.Errorf("zero counters did not survive the round trip: (%d, %d, %d)",
			got.Views, got.UniqueViews, got.ShareCount)
	}
}

func TestParseCachedInt(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"", 0},
		{"0", 0},
		{"42", 42},
		{"not-a-number", 0},
	}

	for _, tt := range tests {
		if got := parseCachedInt(tt.in); got != tt.want {
			t.Errorf("parseCachedInt(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
