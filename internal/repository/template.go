package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/eventwish/wishadmin/internal/model"
)

// ErrTemplateNotFound indicates the template reference did not resolve.
var ErrTemplateNotFound = errors.New("template not found")

// GetTemplate resolves a template reference. Used at share creation and
// when labelling the template leaderboard.
func (r *Repository) GetTemplate(ctx context.Context, id string) (*model.Template, error) {
	query := `
		SELECT id, title, COALESCE(category, ''), is_active, created_at, updated_at
		FROM templates
		WHERE id = $1
	`

	var tmpl model.Template
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&tmpl.ID,
		&tmpl.Title,
		&tmpl.Category,
		&tmpl.IsActive,
		&tmpl.CreatedAt,
		&tmpl.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	return &tmpl, nil
}

// GetTemplateTitles resolves titles for a set of template ids in one query.
// Missing ids are simply absent from the result map.
func (r *Repository) GetTemplateTitles(ctx context.Context, ids []string) (map[string]string, error) {
	titles := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return titles, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT id, title FROM templates WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("query template titles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, title string
		if err := rows.Scan(&id, &title); err != nil {
			return nil, fmt.Errorf("scan template title: %w", err)
		}
		titles[id] = title
	}

	return titles, rows.Err()
}

// CreateTemplate inserts a template. Primarily used by test fixtures and
// operational scripts; the template CRUD surface lives in another service.
func (r *Repository) CreateTemplate(ctx context.Context, tmpl *model.Template) error {
	query := `
		INSERT INTO templates (id, title, category, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		tmpl.ID,
		tmpl.Title,
		tmpl.Category,
		tmpl.IsActive,
		tmpl.CreatedAt,
		tmpl.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}

	return nil
}
