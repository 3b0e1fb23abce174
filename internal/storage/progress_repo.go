package storage

import (
	"context"
	"database/sql"
	"fmt"

	"lifelevel/internal/models"
)

type ProgressRepo struct {
	db dbtx
}

func NewProgressRepo(db dbtx) *ProgressRepo {
	return &ProgressRepo{db: db}
}

// Upsert stores p at the given display position.
func (r *ProgressRepo) Upsert(ctx context.Context, position int, p models.AreaProgress) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO area_progress (area_id, position, current_level, experience, spendable_experience, experience_to_next_level, streak_days, last_checkin)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(area_id) DO UPDATE SET
			position = excluded.position,
			current_level = excluded.current_level,
			experience = excluded.experience,
			spendable_experience = excluded.spendable_experience,
			experience_to_next_level = excluded.experience_to_next_level,
			streak_days = excluded.streak_days,
			last_checkin = excluded.last_checkin
	`, p.AreaID, position, p.CurrentLevel, p.Experience, p.SpendableExperience, p.ExperienceToNextLevel, p.StreakDays, timeValue(p.LastCheckin))
	if err != nil {
		return fmt.Errorf("progress upsert: %w", err)
	}
	return nil
}

func (r *ProgressRepo) Get(ctx context.Context, areaID string) (*models.AreaProgress, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT area_id, current_level, experience, spendable_experience, experience_to_next_level, streak_days, last_checkin
		FROM area_progress WHERE area_id = ?
	`, areaID)
	return scanProgress(row)
}

func (r *ProgressRepo) ListAll(ctx context.Context) ([]models.AreaProgress, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT area_id, current_level, experience, spendable_experience, experience_to_next_level, streak_days, last_checkin
		FROM area_progress ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("progress list: %w", err)
	}
	defer rows.Close()

	var out []models.AreaProgress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("progress rows: %w", err)
	}
	return out, nil
}

func scanProgress(row scanner) (*models.AreaProgress, error) {
	var (
		p           models.AreaProgress
		lastCheckin sql.NullString
	)
	if err := row.Scan(&p.AreaID, &p.CurrentLevel, &p.Experience, &p.SpendableExperience, &p.ExperienceToNextLevel, &p.StreakDays, &lastCheckin); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("progress scan: %w", err)
	}
	t, err := parseTime(lastCheckin)
	if err != nil {
		return nil, fmt.Errorf("progress last checkin: %w", err)
	}
	p.LastCheckin = t
	return &p, nil
}
