package service

import (
	"context"
	"errors"
	"time"

	"github.com/eventwish/wishadmin/internal/metrics"
	"github.com/eventwish/wishadmin/internal/model"
	"github.com/eventwish/wishadmin/internal/repository"
)

// EngagementService is the single write path for view, engagement and
// re-share events. Counter consistency with the logs is delegated to the
// repository's transactional record operations; this layer validates input
// and derives the viewer uniqueness key.
type EngagementService struct {
	engRepo *repository.EngagementRepository
	metrics metrics.Recorder
}

// NewEngagementService creates a new EngagementService.
func NewEngagementService(engRepo *repository.EngagementRepository, recorder metrics.Recorder) *EngagementService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &EngagementService{
		engRepo: engRepo,
		metrics: recorder,
	}
}

// RecordViewInput defines input for recording a view.
type RecordViewInput struct {
	ShareID  string
	UserID   string // optional viewer identity
	ViewerIP string // fallback uniqueness signal when no identity
}

// RecordView counts a view against a share. Total views always increment;
// unique views increment only the first time this viewer (identity when
// available, IP otherwise) is seen on the share.
func (s *EngagementService) RecordView(ctx context.Context, input RecordViewInput) error {
	if input.ShareID == "" {
		return ErrShareNotFound
	}

	viewerKey := ""
	switch {
	case input.UserID != "":
		viewerKey = "user:" + input.UserID
	case input.ViewerIP != "":
		viewerKey = "ip:" + input.ViewerIP
	default:
		return ErrMissingViewer
	}

	// Identity wins over IP: only store the IP when it is the uniqueness
	// signal, so an identified viewer's address is not retained.
	viewerIP := input.ViewerIP
	if input.UserID != "" {
		viewerIP = ""
	}

	result, err := s.engRepo.RecordView(ctx, input.ShareID, viewerKey, input.UserID, viewerIP, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrShareNotFound) {
			return ErrShareNotFound
		}
		return err
	}

	s.metrics.IncViewRecorded(result.FirstSeen)
	return nil
}

// RecordEngagement appends a LIKED or FAVORITED event. Events are recorded
// verbatim; repeated likes are not deduplicated here.
func (s *EngagementService) RecordEngagement(ctx context.Context, shareID, userID string, action model.EngagementAction) error {
	if shareID == "" {
		return ErrShareNotFound
	}
	if !action.IsRecordable() {
		return ErrInvalidAction
	}
	if userID == "" {
		return ErrMissingUser
	}

	if err := s.engRepo.RecordEngagement(ctx, shareID, userID, action, time.Now().UTC()); err != nil {
		if errors.Is(err, repository.ErrShareNotFound) {
			return ErrShareNotFound
		}
		return err
	}

	s.metrics.IncEngagementRecorded(string(action))
	return nil
}

// RecordShare records an onward re-share of a share to a platform.
func (s *EngagementService) RecordShare(ctx context.Context, shareID string, platform model.SharePlatform) error {
	if shareID == "" {
		return ErrShareNotFound
	}
	if !platform.IsValid() {
		return ErrInvalidPlatform
	}

	if err := s.engRepo.RecordShare(ctx, shareID, platform, time.Now().UTC()); err != nil {
		if errors.Is(err, repository.ErrShareNotFound) {
			return ErrShareNotFound
		}
		return err
	}

	s.metrics.IncReshareRecorded()
	return nil
}
