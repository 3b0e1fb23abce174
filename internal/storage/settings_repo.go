package storage

import (
	"context"
	"database/sql"
	"fmt"

	"lifelevel/internal/models"
)

type SettingsRepo struct {
	db dbtx
}

func NewSettingsRepo(db dbtx) *SettingsRepo {
	return &SettingsRepo{db: db}
}

func (r *SettingsRepo) Get(ctx context.Context) (*models.UserSettings, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT theme, notifications, reminder_time, weekly_goals, priority_areas
		FROM settings WHERE key = ?
	`, MainProfileKey)

	var (
		s             models.UserSettings
		notifications int
		goals         sql.NullString
		priority      sql.NullString
	)
	if err := row.Scan(&s.Theme, &notifications, &s.ReminderTime, &goals, &priority); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("settings get: %w", err)
	}
	s.Notifications = notifications != 0
	if err := parseJSON(goals, &s.WeeklyGoals); err != nil {
		return nil, fmt.Errorf("settings weekly goals: %w", err)
	}
	if err := parseJSON(priority, &s.PriorityAreas); err != nil {
		return nil, fmt.Errorf("settings priority areas: %w", err)
	}
	return &s, nil
}

func (r *SettingsRepo) Upsert(ctx context.Context, s models.UserSettings) error {
	goals, err := jsonValue(s.WeeklyGoals)
	if err != nil {
		return fmt.Errorf("settings weekly goals: %w", err)
	}
	priority, err := jsonValue(s.PriorityAreas)
	if err != nil {
		return fmt.Errorf("settings priority areas: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO settings (key, theme, notifications, reminder_time, weekly_goals, priority_areas)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			theme = excluded.theme,
			notifications = excluded.notifications,
			reminder_time = excluded.reminder_time,
			weekly_goals = excluded.weekly_goals,
			priority_areas = excluded.priority_areas
	`, MainProfileKey, s.Theme, boolToInt(s.Notifications), s.ReminderTime, goals, priority)
	if err != nil {
		return fmt.Errorf("settings upsert: %w", err)
	}
	return nil
}
