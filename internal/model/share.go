// Package model defines domain entities for the application.
package model

import (
	"strconv"
	"time"
)

// SharePlatform is the channel a share was created on or re-shared to.
type SharePlatform string

const (
	PlatformLink      SharePlatform = "LINK"
	PlatformWhatsApp  SharePlatform = "WHATSAPP"
	PlatformFacebook  SharePlatform = "FACEBOOK"
	PlatformTwitter   SharePlatform = "TWITTER"
	PlatformInstagram SharePlatform = "INSTAGRAM"
	PlatformEmail     SharePlatform = "EMAIL"
	PlatformSMS       SharePlatform = "SMS"
	PlatformOther     SharePlatform = "OTHER"
)

// Platforms lists all valid share platforms.
var Platforms = []SharePlatform{
	PlatformLink,
	PlatformWhatsApp,
	PlatformFacebook,
	PlatformTwitter,
	PlatformInstagram,
	PlatformEmail,
	PlatformSMS,
	PlatformOther,
}

// IsValid checks if the platform is one of the known channels.
func (p SharePlatform) IsValid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// EngagementAction is a viewer action recorded against a share.
type EngagementAction string

const (
	ActionViewed    EngagementAction = "VIEWED"
	ActionLiked     EngagementAction = "LIKED"
	ActionFavorited EngagementAction = "FAVORITED"
	ActionShared    EngagementAction = "SHARED"
)

// IsValid checks if the action is one of the known engagement actions.
func (a EngagementAction) IsValid() bool {
	switch a {
	case ActionViewed, ActionLiked, ActionFavorited, ActionShared:
		return true
	}
	return false
}

// IsRecordable reports whether the action may be submitted directly by a
// caller. VIEWED and SHARED entries are appended by their own operations.
func (a EngagementAction) IsRecordable() bool {
	return a == ActionLiked || a == ActionFavorited
}

// Share represents one recorded act of sharing a template, carrying its own
// content snapshot so later template edits never change what was shared.
type Share struct {
	ID         string `json:"id"`
	ShortCode  string `json:"short_code"`
	TemplateID string `json:"template_id"`

	// Content snapshot captured at share time.
	CustomizedHTML string `json:"customized_html"`
	CustomizedCSS  string `json:"customized_css,omitempty"`
	CustomizedJS   string `json:"customized_js,omitempty"`

	// Operator-editable metadata.
	RecipientName string `json:"recipient_name,omitempty"`
	SenderName    string `json:"sender_name,omitempty"`
	Title         string `json:"title,omitempty"`
	Description   string `json:"description,omitempty"`

	SharedVia SharePlatform `json:"shared_via"`

	// Recorder-owned counters. Never writable through UpdateShare.
	Views       int64 `json:"views"`
	UniqueViews int64 `json:"unique_views"`
	ShareCount  int64 `json:"share_count"`

	// Derived from the viewer set; populated on detail reads.
	ViewerIPs []string `json:"viewer_ips,omitempty"`

	LastSharedAt *time.Time `json:"last_shared_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// EngagementEvent is a single timestamped viewer action against a share.
// The log is append-only; IDs are ULIDs so append order is id order.
type EngagementEvent struct {
	ID         string           `json:"id"`
	ShareID    string           `json:"share_id"`
	UserID     string           `json:"user_id,omitempty"`
	Action     EngagementAction `json:"action"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// ShareHistoryEntry is a single onward re-share of a share.
type ShareHistoryEntry struct {
	ID       string        `json:"id"`
	ShareID  string        `json:"share_id"`
	Platform SharePlatform `json:"platform"`
	SharedAt time.Time     `json:"shared_at"`
}

// CachedShare represents share data stored in Redis cache.
// Uses string types for Redis hash compatibility.
type CachedShare struct {
	ID            string `redis:"id"`
	TemplateID    string `redis:"template_id"`
	Title         string `redis:"title"`
	RecipientName string `redis:"recipient_name"`
	SenderName    string `redis:"sender_name"`
	SharedVia     string `redis:"shared_via"`
	Views         string `redis:"views"`
	UniqueViews   string `redis:"unique_views"`
	ShareCount    string `redis:"share_count"`
	CreatedAt     string `redis:"created_at"`  // Unix timestamp
	UpdatedAt     string `redis:"updated_at"`  // Unix timestamp
}

// ToShare converts CachedShare to the Share domain model. Logs and viewer
// IPs are not cached; detail reads go to the database.
func (c *CachedShare) ToShare(shortCode string) *Share {
	share := &Share{
		ID:            c.ID,
		ShortCode:     shortCode,
		TemplateID:    c.TemplateID,
		Title:         c.Title,
		RecipientName: c.RecipientName,
		SenderName:    c.SenderName,
		SharedVia:     SharePlatform(c.SharedVia),
	}

	share.Views = parseCachedInt(c.Views)
	share.UniqueViews = parseCachedInt(c.UniqueViews)
	share.ShareCount = parseCachedInt(c.ShareCount)

	if ts := parseCachedInt(c.CreatedAt); ts != 0 {
		share.CreatedAt = time.Unix(ts, 0).UTC()
	}
	if ts := parseCachedInt(c.UpdatedAt); ts != 0 {
		share.UpdatedAt = time.Unix(ts, 0).UTC()
	}

	return share
}

// ToCachedShare converts a Share to its Redis hash representation.
func (s *Share) ToCachedShare() *CachedShare {
	return &CachedShare{
		ID:            s.ID,
		TemplateID:    s.TemplateID,
		Title:         s.Title,
		RecipientName: s.RecipientName,
		SenderName:    s.SenderName,
		SharedVia:     string(s.SharedVia),
		Views:         strconv.FormatInt(s.Views, 10),
		UniqueViews:   strconv.FormatInt(s.UniqueViews, 10),
		ShareCount:    strconv.FormatInt(s.ShareCount, 10),
		CreatedAt:     strconv.FormatInt(s.CreatedAt.Unix(), 10),
		UpdatedAt:     strconv.FormatInt(s.UpdatedAt.Unix(), 10),
	}
}

func parseCachedInt(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
