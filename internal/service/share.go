// Package service provides business logic for the application.
package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/eventwish/wishadmin/internal/cache"
	"github.com/eventwish/wishadmin/internal/metrics"
	"github.com/eventwish/wishadmin/internal/model"
	"github.com/eventwish/wishadmin/internal/repository"
)

// Service errors.
var (
	ErrShareNotFound      = errors.New("share not found")
	ErrTemplateNotFound   = errors.New("template does not exist")
	ErrTemplateInactive   = errors.New("template is not active")
	ErrInvalidPlatform    = errors.New("invalid share platform")
	ErrInvalidAction      = errors.New("invalid engagement action")
	ErrInvalidTimeFilter  = errors.New("invalid time filter")
	ErrMissingSnapshot    = errors.New("content snapshot is required")
	ErrMissingViewer      = errors.New("viewer identity or IP is required")
	ErrMissingUser        = errors.New("user reference is required")
	ErrRecorderOwnedField = errors.New("field is owned by the engagement recorder")
	ErrFieldNotEditable   = errors.New("field is not editable")
	ErrInvalidFieldValue  = errors.New("field value must be a string")
	ErrNoFieldsToUpdate   = errors.New("no editable fields in update")
)

const (
	shortCodeLength     = 8
	shortCodeAlphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
	maxShortCodeRetries = 5

	defaultPageSize = 20
	maxPageSize     = 100
)

// editableShareFields are the administrative-edit fields of a share.
var editableShareFields = map[string]bool{
	"recipient_name": true,
	"sender_name":    true,
	"title":          true,
	"description":    true,
}

// recorderOwnedFields must stay derivable from the engagement log and are
// rejected outright on update. This is a contract, not an oversight.
var recorderOwnedFields = map[string]bool{
	"views":             true,
	"unique_views":      true,
	"share_count":       true,
	"viewer_ips":        true,
	"viewer_engagement": true,
	"share_history":     true,
	"last_shared_at":    true,
}

// ShareService handles share store business logic.
type ShareService struct {
	repo    *repository.Repository
	engRepo *repository.EngagementRepository
	cache   *cache.Cache
	metrics metrics.Recorder
}

// NewShareService creates a new ShareService.
func NewShareService(repo *repository.Repository, engRepo *repository.EngagementRepository, cacheClient *cache.Cache, recorder metrics.Recorder) *ShareService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ShareService{
		repo:    repo,
		engRepo: engRepo,
		cache:   cacheClient,
		metrics: recorder,
	}
}

// CreateShareInput defines input for creating a share.
type CreateShareInput struct {
	TemplateID     string
	CustomizedHTML string
	CustomizedCSS  string
	CustomizedJS   string
	RecipientName  string
	SenderName     string
	Title          string
	Description    string
	SharedVia      string
}

// CreateShare creates a new share against an existing, active template.
// The short code is generated here; a collision on insert is retried with
// a fresh code and never surfaces to the caller.
func (s *ShareService) CreateShare(ctx context.Context, input CreateShareInput) (*model.Share, error) {
	if input.TemplateID == "" {
		return nil, ErrTemplateNotFound
	}
	if input.CustomizedHTML == "" {
		return nil, ErrMissingSnapshot
	}

	platform := model.PlatformLink
	if input.SharedVia != "" {
		platform = model.SharePlatform(input.SharedVia)
		if !platform.IsValid() {
			return nil, ErrInvalidPlatform
		}
	}

	tmpl, err := s.repo.GetTemplate(ctx, input.TemplateID)
	if err != nil {
		if errors.Is(err, repository.ErrTemplateNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if !tmpl.IsActive {
		return nil, ErrTemplateInactive
	}

	title := input.Title
	if title == "" {
		title = tmpl.Title
	}

	now := time.Now().UTC()
	share := &model.Share{
		ID:             uuid.New().String(),
		TemplateID:     tmpl.ID,
		CustomizedHTML: input.CustomizedHTML,
		CustomizedCSS:  input.CustomizedCSS,
		CustomizedJS:   input.CustomizedJS,
		RecipientName:  input.RecipientName,
		SenderName:     input.SenderName,
		Title:          title,
		Description:    input.Description,
		SharedVia:      platform,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	for attempt := 0; attempt < maxShortCodeRetries; attempt++ {
		share.ShortCode = generateShortCode()
		err = s.repo.CreateShare(ctx, share)
		if err == nil {
			s.metrics.IncShareCreated()
			return share, nil
		}
		if !errors.Is(err, repository.ErrShortCodeExists) {
			return nil, fmt.Errorf("failed to create share: %w", err)
		}
	}

	return nil, fmt.Errorf("failed to generate unique short code after %d attempts", maxShortCodeRetries)
}

// GetShare retrieves a share by ID without its logs.
func (s *ShareService) GetShare(ctx context.Context, id string) (*model.Share, error) {
	share, err := s.repo.GetShareByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrShareNotFound) {
			return nil, ErrShareNotFound
		}
		return nil, err
	}

	return share, nil
}

// ShareDetail is a share together with its full engagement and re-share
// logs and the set of viewer IPs.
type ShareDetail struct {
	Share        *model.Share
	Engagement   []*model.EngagementEvent
	ShareHistory []*model.ShareHistoryEntry
}

// GetShareDetail retrieves a share with its complete logs.
func (s *ShareService) GetShareDetail(ctx context.Context, id string) (*ShareDetail, error) {
	share, err := s.GetShare(ctx, id)
	if err != nil {
		return nil, err
	}

	engagement, err := s.engRepo.ListEngagement(ctx, id)
	if err != nil {
		return nil, err
	}

	history, err := s.engRepo.ListShareHistory(ctx, id)
	if err != nil {
		return nil, err
	}

	ips, err := s.engRepo.ListViewerIPs(ctx, id)
	if err != nil {
		return nil, err
	}
	share.ViewerIPs = ips

	return &ShareDetail{
		Share:        share,
		Engagement:   engagement,
		ShareHistory: history,
	}, nil
}

// GetShareByCode resolves a short code to its share with a cache-first
// lookup and negative caching for misses.
func (s *ShareService) GetShareByCode(ctx context.Context, shortCode string) (*model.Share, error) {
	cached, err := s.cache.GetShare(ctx, shortCode)
	if err == nil {
		s.metrics.IncShareCacheHit()
		return cached.ToShare(shortCode), nil
	}

	if errors.Is(err, cache.ErrCacheMiss) {
		s.metrics.IncShareCacheMiss()
		isNegative, _ := s.cache.IsNegativelyCached(ctx, shortCode)
		if isNegative {
			return nil, ErrShareNotFound
		}
	}

	share, err := s.repo.GetShareByShortCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, repository.ErrShareNotFound) {
			_ = s.cache.SetNegativeCache(ctx, shortCode)
			return nil, ErrShareNotFound
		}
		return nil, err
	}

	if err := s.cache.SetShare(ctx, shortCode, share); err != nil {
		_ = err // cache backfill failure is not fatal
	}

	return share, nil
}

// UpdateShare applies an administrative edit from a raw field map. Only
// metadata fields may be set; recorder-owned fields are rejected with
// ErrRecorderOwnedField and anything else unknown or immutable with
// ErrFieldNotEditable, leaving the stored share untouched either way.
func (s *ShareService) UpdateShare(ctx context.Context, id string, fields map[string]any) (*model.Share, error) {
	update := repository.ShareMetadataUpdate{}
	editable := 0

	for name, value := range fields {
		if recorderOwnedFields[name] {
			return nil, fmt.Errorf("%w: %s", ErrRecorderOwnedField, name)
		}
		if !editableShareFields[name] {
			return nil, fmt.Errorf("%w: %s", ErrFieldNotEditable, name)
		}

		str, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidFieldValue, name)
		}

		v := str
		switch name {
		case "recipient_name":
			update.RecipientName = &v
		case "sender_name":
			update.SenderName = &v
		case "title":
			update.Title = &v
		case "description":
			update.Description = &v
		}
		editable++
	}

	if editable == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	share, err := s.repo.UpdateShareMetadata(ctx, id, update)
	if err != nil {
		if errors.Is(err, repository.ErrShareNotFound) {
			return nil, ErrShareNotFound
		}
		return nil, err
	}

	s.metrics.IncShareUpdated()

	if err := s.cache.DeleteShare(ctx, share.ShortCode); err != nil {
		_ = err // eventual consistency is acceptable
	}

	return share, nil
}

// DeleteShare hard-deletes a share. A second delete of the same id fails
// with ErrShareNotFound, indistinguishable from an id that never existed.
func (s *ShareService) DeleteShare(ctx context.Context, id string) error {
	share, err := s.repo.GetShareByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrShareNotFound) {
			return ErrShareNotFound
		}
		return err
	}

	if err := s.repo.DeleteShare(ctx, id); err != nil {
		if errors.Is(err, repository.ErrShareNotFound) {
			return ErrShareNotFound
		}
		return err
	}

	s.metrics.IncShareDeleted()

	if err := s.cache.DeleteShare(ctx, share.ShortCode); err != nil {
		_ = err
	}

	return nil
}

// ListSharesInput defines input for listing shares.
type ListSharesInput struct {
	Query      string
	TimeFilter string
	SortField  string
	SortOrder  string
	Page       int
	PageSize   int
	Now        time.Time
	Location   *time.Location
}

// ListSharesOutput defines output for listing shares.
type ListSharesOutput struct {
	Shares     []*model.Share
	TotalItems int64
	Page       int
	PageSize   int
}

// ListShares retrieves a filtered, offset-paginated page of shares.
// TotalItems is always consistent with the applied filter.
func (s *ShareService) ListShares(ctx context.Context, input ListSharesInput) (*ListSharesOutput, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	pageSize := input.PageSize
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}

	filter := repository.ShareFilter{Query: input.Query}

	if input.TimeFilter != "" {
		tf := model.TimeFilter(input.TimeFilter)
		if !tf.IsValid() {
			return nil, ErrInvalidTimeFilter
		}
		now := input.Now
		if now.IsZero() {
			now = time.Now()
		}
		loc := input.Location
		if loc == nil {
			loc = time.Local
		}
		start, end := ResolveWindow(tf, now, loc)
		filter.CreatedAfter = start
		filter.CreatedBefore = end
	}

	shares, total, err := s.repo.ListShares(ctx, filter, input.SortField, input.SortOrder, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	return &ListSharesOutput{
		Shares:     shares,
		TotalItems: total,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// generateShortCode generates a random short code using crypto/rand.
// The alphabet omits easily confused characters (0/O, 1/l/I).
func generateShortCode() string {
	b := make([]byte, shortCodeLength)
	for i := range b {
		idx, err := cryptoRandInt(len(shortCodeAlphabet))
		if err != nil {
			idx = 0
		}
		b[i] = shortCodeAlphabet[idx]
	}
	return string(b)
}

// cryptoRandInt returns a cryptographically secure random integer in [0, max).
func cryptoRandInt(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}
