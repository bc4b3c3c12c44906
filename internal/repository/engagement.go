package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"

	"github.com/eventwish/wishadmin/internal/model"
)

// EngagementRepository is the single write path for view, engagement and
// re-share events. Every record operation runs in one transaction so a
// counter bump and its log entry commit together or not at all.
type EngagementRepository struct {
	repo *Repository
}

// NewEngagementRepository creates a new EngagementRepository.
func NewEngagementRepository(repo *Repository) *EngagementRepository {
	return &EngagementRepository{repo: repo}
}

// ViewResult reports what a recorded view did to the counters.
type ViewResult struct {
	FirstSeen bool // viewer identity not seen before on this share
}

// RecordView appends a VIEWED event and bumps the counters: views always,
// unique_views only the first time this viewer key appears on the share.
// viewerKey is "user:<id>" when an identity is present, "ip:<addr>"
// otherwise. Counter math runs in SQL, so concurrent views on the same
// share are both counted and unique_views never exceeds views.
func (r *EngagementRepository) RecordView(ctx context.Context, shareID, viewerKey, userID, viewerIP string, at time.Time) (*ViewResult, error) {
	tx, err := r.repo.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin record view: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO share_viewers (share_id, viewer_key, user_id, viewer_ip, first_seen_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5)
		ON CONFLICT (share_id, viewer_key) DO NOTHING
	`, shareID, viewerKey, userID, viewerIP, at)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrShareNotFound
		}
		return nil, fmt.Errorf("insert viewer: %w", err)
	}
	firstSeen := tag.RowsAffected() == 1

	uniqueInc := 0
	if firstSeen {
		uniqueInc = 1
	}

	tag, err = tx.Exec(ctx, `
		UPDATE shares
		SET views = views + 1, unique_views = unique_views + $2, updated_at = $3
		WHERE id = $1
	`, shareID, uniqueInc, at)
	if err != nil {
		return nil, fmt.Errorf("increment view counters: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrShareNotFound
	}

	if err := insertEngagementEvent(ctx, tx, shareID, userID, model.ActionViewed, at); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit record view: %w", err)
	}

	return &ViewResult{FirstSeen: firstSeen}, nil
}

// RecordEngagement appends a LIKED or FAVORITED event verbatim. Repeated
// events are recorded as-is; current like state is a read-time fold over
// the log, not a stored flag. Counters are untouched.
func (r *EngagementRepository) RecordEngagement(ctx context.Context, shareID, userID string, action model.EngagementAction, at time.Time) error {
	tx, err := r.repo.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin record engagement: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM shares WHERE id = $1)`, shareID).Scan(&exists); err != nil {
		return fmt.Errorf("check share existence: %w", err)
	}
	if !exists {
		return ErrShareNotFound
	}

	if err := insertEngagementEvent(ctx, tx, shareID, userID, action, at); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit record engagement: %w", err)
	}

	return nil
}

// RecordShare appends a share_history entry plus a SHARED event and bumps
// share_count and last_shared_at.
func (r *EngagementRepository) RecordShare(ctx context.Context, shareID string, platform model.SharePlatform, at time.Time) error {
	tx, err := r.repo.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin record share: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE shares
		SET share_count = share_count + 1, last_shared_at = $2, updated_at = $2
		WHERE id = $1
	`, shareID, at)
	if err != nil {
		return fmt.Errorf("increment share count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrShareNotFound
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO share_history (id, share_id, platform, shared_at)
		VALUES ($1, $2, $3, $4)
	`, ulid.Make().String(), shareID, platform, at)
	if err != nil {
		return fmt.Errorf("insert share history: %w", err)
	}

	if err := insertEngagementEvent(ctx, tx, shareID, "", model.ActionShared, at); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit record share: %w", err)
	}

	return nil
}

// ListEngagement returns the full viewer engagement log in append order.
func (r *EngagementRepository) ListEngagement(ctx context.Context, shareID string) ([]*model.EngagementEvent, error) {
	query := `
		SELECT id, share_id, COALESCE(user_id, ''), action, occurred_at
		FROM engagement_events
		WHERE share_id = $1
		ORDER BY id
	`

	rows, err := r.repo.pool.Query(ctx, query, shareID)
	if err != nil {
		return nil, fmt.Errorf("query engagement events: %w", err)
	}
	defer rows.Close()

	events := make([]*model.EngagementEvent, 0)
	for rows.Next() {
		var event model.EngagementEvent
		if err := rows.Scan(&event.ID, &event.ShareID, &event.UserID, &event.Action, &event.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan engagement event: %w", err)
		}
		events = append(events, &event)
	}

	return events, rows.Err()
}

// ListShareHistory returns the re-share log in append order.
func (r *EngagementRepository) ListShareHistory(ctx context.Context, shareID string) ([]*model.ShareHistoryEntry, error) {
	query := `
		SELECT id, share_id, platform, shared_at
		FROM share_history
		WHERE share_id = $1
		ORDER BY id
	`

	rows, err := r.repo.pool.Query(ctx, query, shareID)
	if err != nil {
		return nil, fmt.Errorf("query share history: %w", err)
	}
	defer rows.Close()

	entries := make([]*model.ShareHistoryEntry, 0)
	for rows.Next() {
		var entry model.ShareHistoryEntry
		if err := rows.Scan(&entry.ID, &entry.ShareID, &entry.Platform, &entry.SharedAt); err != nil {
			return nil, fmt.Errorf("scan share history entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// ListViewerIPs returns the distinct viewer IPs observed on a share, in
// first-seen order.
func (r *EngagementRepository) ListViewerIPs(ctx context.Context, shareID string) ([]string, error) {
	query := `
		SELECT viewer_ip
		FROM share_viewers
		WHERE share_id = $1 AND viewer_ip IS NOT NULL
		ORDER BY first_seen_at, viewer_ip
	`

	rows, err := r.repo.pool.Query(ctx, query, shareID)
	if err != nil {
		return nil, fmt.Errorf("query viewer ips: %w", err)
	}
	defer rows.Close()

	ips := make([]string, 0)
	for rows.Next() {
		var ip string
		if err := rows.Scan(&ip); err != nil {
			return nil, fmt.Errorf("scan viewer ip: %w", err)
		}
		ips = append(ips, ip)
	}

	return ips, rows.Err()
}

// insertEngagementEvent appends one row to the engagement log inside an
// open transaction. The ULID id preserves append order.
func insertEngagementEvent(ctx context.Context, tx pgx.Tx, shareID, userID string, action model.EngagementAction, at time.Time) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO engagement_events (id, share_id, user_id, action, occurred_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5)
	`, ulid.Make().String(), shareID, userID, action, at)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrShareNotFound
		}
		return fmt.Errorf("insert engagement event: %w", err)
	}
	return nil
}
