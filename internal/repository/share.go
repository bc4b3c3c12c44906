package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/eventwish/wishadmin/internal/model"
)

// Common errors for share repository operations.
var (
	ErrShareNotFound   = errors.New("share not found")
	ErrShortCodeExists = errors.New("short code already exists")
	ErrNoFieldsToSet   = errors.New("no fields to update")
)

// ShareFilter defines filters for listing shares.
type ShareFilter struct {
	// Query is matched case-insensitively against short_code,
	// recipient_name, sender_name and title.
	Query         string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// shareSortColumns whitelists sortable fields. Keys are the API names,
// values the SQL columns.
var shareSortColumns = map[string]string{
	"created_at":     "created_at",
	"updated_at":     "updated_at",
	"last_shared_at": "last_shared_at",
	"short_code":     "short_code",
	"title":          "title",
	"recipient_name": "recipient_name",
	"sender_name":    "sender_name",
	"shared_via":     "shared_via",
	"template_id":    "template_id",
	"views":          "views",
	"unique_views":   "unique_views",
	"share_count":    "share_count",
}

// IsSortableShareField reports whether the field can be used to sort the
// share list.
func IsSortableShareField(field string) bool {
	_, ok := shareSortColumns[field]
	return ok
}

const shareColumns = `id, short_code, template_id, customized_html, customized_css, customized_js,
	recipient_name, sender_name, title, description, shared_via,
	views, unique_views, share_count, last_shared_at, created_at, updated_at`

// CreateShare inserts a new share into the database.
func (r *Repository) CreateShare(ctx context.Context, share *model.Share) error {
	query := `
		INSERT INTO shares (id, short_code, template_id, customized_html, customized_css, customized_js,
			recipient_name, sender_name, title, description, shared_via,
			views, unique_views, share_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.pool.Exec(ctx, query,
		share.ID,
		share.ShortCode,
		share.TemplateID,
		share.CustomizedHTML,
		share.CustomizedCSS,
		share.CustomizedJS,
		share.RecipientName,
		share.SenderName,
		share.Title,
		share.Description,
		share.SharedVia,
		share.Views,
		share.UniqueViews,
		share.ShareCount,
		share.CreatedAt,
		share.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrShortCodeExists
		}
		return fmt.Errorf("failed to create share: %w", err)
	}

	return nil
}

// GetShareByID retrieves a share by its ID.
func (r *Repository) GetShareByID(ctx context.Context, id string) (*model.Share, error) {
	query := `SELECT ` + shareColumns + ` FROM shares WHERE id = $1`

	share, err := scanShare(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrShareNotFound
		}
		return nil, fmt.Errorf("failed to get share by ID: %w", err)
	}

	return share, nil
}

// GetShareByShortCode retrieves a share by its short code.
// This is the hot path for share lookups.
func (r *Repository) GetShareByShortCode(ctx context.Context, shortCode string) (*model.Share, error) {
	query := `SELECT ` + shareColumns + ` FROM shares WHERE short_code = $1`

	share, err := scanShare(r.pool.QueryRow(ctx, query, shortCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrShareNotFound
		}
		return nil, fmt.Errorf("failed to get share by short code: %w", err)
	}

	return share, nil
}

// ListShares retrieves a filtered, sorted, offset-paginated page of shares
// together with the total count under the same filter.
func (r *Repository) ListShares(ctx context.Context, filter ShareFilter, sortField, sortOrder string, limit, offset int) ([]*model.Share, int64, error) {
	where, args := buildShareWhere(filter)

	column, ok := shareSortColumns[sortField]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		direction = "ASC"
	}

	countQuery := `SELECT COUNT(*) FROM shares` + where
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count shares: %w", err)
	}

	// id is a stable tiebreaker so pages never overlap under equal keys.
	query := fmt.Sprintf(`SELECT %s FROM shares%s ORDER BY %s %s, id %s LIMIT $%d OFFSET $%d`,
		shareColumns, where, column, direction, direction, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list shares: %w", err)
	}
	defer rows.Close()

	shares := make([]*model.Share, 0, limit)
	for rows.Next() {
		share, err := scanShare(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan share: %w", err)
		}
		shares = append(shares, share)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating shares: %w", err)
	}

	return shares, total, nil
}

// ShareMetadataUpdate carries the administrative-edit fields. Nil pointers
// leave the stored value untouched. Counter and log fields are owned by the
// engagement recorder and have no representation here.
type ShareMetadataUpdate struct {
	RecipientName *string
	SenderName    *string
	Title         *string
	Description   *string
}

// UpdateShareMetadata updates a share's operator-editable fields.
func (r *Repository) UpdateShareMetadata(ctx context.Context, id string, update ShareMetadataUpdate) (*model.Share, error) {
	sets := make([]string, 0, 5)
	args := []any{id}

	appendSet := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	appendSet("recipient_name", update.RecipientName)
	appendSet("sender_name", update.SenderName)
	appendSet("title", update.Title)
	appendSet("description", update.Description)

	if len(sets) == 0 {
		return nil, ErrNoFieldsToSet
	}
	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf(`UPDATE shares SET %s WHERE id = $1 RETURNING `+shareColumns,
		strings.Join(sets, ", "))

	share, err := scanShare(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrShareNotFound
		}
		return nil, fmt.Errorf("failed to update share: %w", err)
	}

	return share, nil
}

// DeleteShare performs a hard delete. Log tables cascade via foreign keys.
func (r *Repository) DeleteShare(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM shares WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete share: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrShareNotFound
	}

	return nil
}

// ShortCodeExists checks if a short code is already taken.
func (r *Repository) ShortCodeExists(ctx context.Context, shortCode string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM shares WHERE short_code = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, shortCode).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check short code existence: %w", err)
	}

	return exists, nil
}

// buildShareWhere builds the WHERE clause shared by the list and count
// queries so totalCount always matches the filter.
func buildShareWhere(filter ShareFilter) (string, []any) {
	conditions := make([]string, 0, 3)
	args := make([]any, 0, 3)

	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(short_code ILIKE $%d OR recipient_name ILIKE $%d OR sender_name ILIKE $%d OR title ILIKE $%d)",
			n, n, n, n))
	}

	if filter.CreatedAfter != nil {
		args = append(args, *filter.CreatedAfter)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}

	if filter.CreatedBefore != nil {
		args = append(args, *filter.CreatedBefore)
		conditions = append(conditions, fmt.Sprintf("created_at < $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// scanShare scans a single row into a Share model.
func scanShare(row pgx.Row) (*model.Share, error) {
	var share model.Share
	err := row.Scan(
		&share.ID,
		&share.ShortCode,
		&share.TemplateID,
		&share.CustomizedHTML,
		&share.CustomizedCSS,
		&share.CustomizedJS,
		&share.RecipientName,
		&share.SenderName,
		&share.Title,
		&share.Description,
		&share.SharedVia,
		&share.Views,
		&share.UniqueViews,
		&share.ShareCount,
		&share.LastSharedAt,
		&share.CreatedAt,
		&share.UpdatedAt,
	)
	return &share, err
}

// isUniqueViolation checks for a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKeyViolation checks for a PostgreSQL foreign key violation.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
