package storage

import (
	"context"
	"database/sql"
	"fmt"

	"lifelevel/internal/models"
)

type AchievementRepo struct {
	db dbtx
}

func NewAchievementRepo(db dbtx) *AchievementRepo {
	return &AchievementRepo{db: db}
}

// Insert records an achievement; an ID already earned is left untouched.
func (r *AchievementRepo) Insert(ctx context.Context, a models.Achievement) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO achievements (id, name, description, icon, area_id, date_earned, experience_gained)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.Name, a.Description, a.Icon, a.AreaID, timeValue(a.DateEarned), a.ExperienceGained)
	if err != nil {
		return fmt.Errorf("achievement insert: %w", err)
	}
	return nil
}

func (r *AchievementRepo) ListAll(ctx context.Context) ([]models.Achievement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, icon, area_id, date_earned, experience_gained
		FROM achievements ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("achievement list: %w", err)
	}
	defer rows.Close()

	var out []models.Achievement
	for rows.Next() {
		var (
			a  models.Achievement
			at sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Icon, &a.AreaID, &at, &a.ExperienceGained); err != nil {
			return nil, fmt.Errorf("achievement scan: %w", err)
		}
		if a.DateEarned, err = parseTime(at); err != nil {
			return nil, fmt.Errorf("achievement date: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("achievement rows: %w", err)
	}
	return out, nil
}
