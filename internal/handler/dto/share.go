// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/eventwish/wishadmin/internal/model"
)

// CreateShareRequest represents the request body for creating a share.
type CreateShareRequest struct {
	TemplateID     string `json:"template_id"`
	CustomizedHTML string `json:"customized_html"`
	CustomizedCSS  string `json:"customized_css,omitempty"`
	CustomizedJS   string `json:"customized_js,omitempty"`
	RecipientName  string `json:"recipient_name,omitempty"`
	SenderName     string `json:"sender_name,omitempty"`
	Title          string `json:"title,omitempty"`
	Description    string `json:"description,omitempty"`
	SharedVia      string `json:"shared_via,omitempty"`
}

// ShareResponse represents a share in API responses.
type ShareResponse struct {
	ID             string     `json:"id"`
	ShortCode      string     `json:"short_code"`
	ShareURL       string     `json:"share_url"`
	TemplateID     string     `json:"template_id"`
	CustomizedHTML string     `json:"customized_html"`
	CustomizedCSS  string     `json:"customized_css,omitempty"`
	CustomizedJS   string     `json:"customized_js,omitempty"`
	RecipientName  string     `json:"recipient_name,omitempty"`
	SenderName     string     `json:"sender_name,omitempty"`
	Title          string     `json:"title,omitempty"`
	Description    string     `json:"description,omitempty"`
	SharedVia      string     `json:"shared_via"`
	Views          int64      `json:"views"`
	UniqueViews    int64      `json:"unique_views"`
	ShareCount     int64      `json:"share_count"`
	LastSharedAt   *time.Time `json:"last_shared_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// EngagementEventResponse represents one engagement log entry.
type EngagementEventResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id,omitempty"`
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ShareHistoryResponse represents one onward re-share log entry.
type ShareHistoryResponse struct {
	ID       string    `json:"id"`
	Platform string    `json:"platform"`
	SharedAt time.Time `json:"shared_at"`
}

// ShareDetailResponse is a share together with its logs.
type ShareDetailResponse struct {
	ShareResponse
	ViewerIPs    []string                  `json:"viewer_ips"`
	Engagement   []EngagementEventResponse `json:"engagement"`
	ShareHistory []ShareHistoryResponse    `json:"share_history"`
}

// ShareListResponse represents a paginated list of shares.
type ShareListResponse struct {
	Data       []ShareResponse `json:"data"`
	Pagination *Pagination     `json:"pagination"`
}

// Pagination provides offset-based pagination info.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
}

// RecordViewRequest represents the request body for recording a view.
type RecordViewRequest struct {
	UserID   string `json:"user_id,omitempty"`
	ViewerIP string `json:"viewer_ip,omitempty"`
}

// RecordEngagementRequest represents the request body for recording an
// engagement action.
type RecordEngagementRequest struct {
	UserID string `json:"user_id"`
	Action string `json:"action"`
}

// RecordReshareRequest represents the request body for recording an onward
// re-share.
type RecordReshareRequest struct {
	Platform string `json:"platform"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ToShareResponse converts a Share model to ShareResponse DTO.
func ToShareResponse(share *model.Share, baseURL string) *ShareResponse {
	return &ShareResponse{
		ID:             share.ID,
		ShortCode:      share.ShortCode,
		ShareURL:       baseURL + "/s/" + share.ShortCode,
		TemplateID:     share.TemplateID,
		CustomizedHTML: share.CustomizedHTML,
		CustomizedCSS:  share.CustomizedCSS,
		CustomizedJS:   share.CustomizedJS,
		RecipientName:  share.RecipientName,
		SenderName:     share.SenderName,
		Title:          share.Title,
		Description:    share.Description,
		SharedVia:      string(share.SharedVia),
		Views:          share.Views,
		UniqueViews:    share.UniqueViews,
		ShareCount:     share.ShareCount,
		LastSharedAt:   share.LastSharedAt,
		CreatedAt:      share.CreatedAt,
		UpdatedAt:      share.UpdatedAt,
	}
}

// ToShareDetailResponse converts a share plus its logs to the detail DTO.
func ToShareDetailResponse(share *model.Share, events []*model.EngagementEvent, history []*model.ShareHistoryEntry, baseURL string) *ShareDetailResponse {
	resp := &ShareDetailResponse{
		ShareResponse: *ToShareResponse(share, baseURL),
		ViewerIPs:     share.ViewerIPs,
		Engagement:    make([]EngagementEventResponse, len(events)),
		ShareHistory:  make([]ShareHistoryResponse, len(history)),
	}
	if resp.ViewerIPs == nil {
		resp.ViewerIPs = []string{}
	}
	for i, ev := range events {
		resp.Engagement[i] = EngagementEventResponse{
			ID:         ev.ID,
			UserID:     ev.UserID,
			Action:     string(ev.Action),
			OccurredAt: ev.OccurredAt,
		}
	}
	for i, entry := range history {
		resp.ShareHistory[i] = ShareHistoryResponse{
			ID:       entry.ID,
			Platform: string(entry.Platform),
			SharedAt: entry.SharedAt,
		}
	}
	return resp
}

// ToShareListResponse converts a page of Share models to ShareListResponse.
func ToShareListResponse(shares []*model.Share, baseURL string, page, pageSize int, totalItems int64) *ShareListResponse {
	responses := make([]ShareResponse, len(shares))
	for i, share := range shares {
		responses[i] = *ToShareResponse(share, baseURL)
	}
	return &ShareListResponse{
		Data: responses,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: totalItems,
		},
	}
}
