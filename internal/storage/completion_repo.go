package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lifelevel/internal/models"
)

type CompletionRepo struct {
	db dbtx
}

func NewCompletionRepo(db dbtx) *CompletionRepo {
	return &CompletionRepo{db: db}
}

// Insert is idempotent by completion ID; history rows are never updated.
func (r *CompletionRepo) Insert(ctx context.Context, c models.ActivityCompletion) error {
	tags, err := jsonValue(c.Tags)
	if err != nil {
		return fmt.Errorf("completion tags: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO activity_completions (id, activity_id, area_id, completed_at, experience_gained, reflection, proof, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.ActivityID, c.AreaID, timeValue(c.Date), c.ExperienceGained, c.Reflection, c.Proof, tags)
	if err != nil {
		return fmt.Errorf("completion insert: %w", err)
	}
	return nil
}

func (r *CompletionRepo) ListAll(ctx context.Context) ([]models.ActivityCompletion, error) {
	return r.list(ctx, `
		SELECT id, activity_id, area_id, completed_at, experience_gained, reflection, proof, tags
		FROM activity_completions ORDER BY rowid ASC
	`)
}

func (r *CompletionRepo) ListByArea(ctx context.Context, areaID string) ([]models.ActivityCompletion, error) {
	return r.list(ctx, `
		SELECT id, activity_id, area_id, completed_at, experience_gained, reflection, proof, tags
		FROM activity_completions WHERE area_id = ? ORDER BY rowid ASC
	`, areaID)
}

func (r *CompletionRepo) CountSince(ctx context.Context, areaID string, since time.Time) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM activity_completions
		WHERE area_id = ? AND completed_at >= ?
	`, areaID, timeValue(since))
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("completion count: %w", err)
	}
	return n, nil
}

func (r *CompletionRepo) list(ctx context.Context, query string, args ...any) ([]models.ActivityCompletion, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("completion list: %w", err)
	}
	defer rows.Close()

	var out []models.ActivityCompletion
	for rows.Next() {
		var (
			c    models.ActivityCompletion
			at   sql.NullString
			tags sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.ActivityID, &c.AreaID, &at, &c.ExperienceGained, &c.Reflection, &c.Proof, &tags); err != nil {
			return nil, fmt.Errorf("completion scan: %w", err)
		}
		if c.Date, err = parseTime(at); err != nil {
			return nil, fmt.Errorf("completion date: %w", err)
		}
		if err := parseJSON(tags, &c.Tags); err != nil {
			return nil, fmt.Errorf("completion tags: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("completion rows: %w", err)
	}
	return out, nil
}
