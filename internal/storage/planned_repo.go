package storage

import (
	"context"
	"database/sql"
	"fmt"

	"lifelevel/internal/models"
)

type PlannedRepo struct {
	db dbtx
}

func NewPlannedRepo(db dbtx) *PlannedRepo {
	return &PlannedRepo{db: db}
}

func (r *PlannedRepo) Upsert(ctx context.Context, p models.PlannedActivity) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO planned_activities (id, activity_id, target_date, recurring, frequency, reminder, reminder_time, last_reminded)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			activity_id = excluded.activity_id,
			target_date = excluded.target_date,
			recurring = excluded.recurring,
			frequency = excluded.frequency,
			reminder = excluded.reminder,
			reminder_time = excluded.reminder_time,
			last_reminded = excluded.last_reminded
	`, p.ID, p.ActivityID, timeValue(p.TargetDate), boolToInt(p.Recurring), string(p.Frequency), boolToInt(p.Reminder), p.ReminderTime, timePtrValue(p.LastReminded))
	if err != nil {
		return fmt.Errorf("planned upsert: %w", err)
	}
	return nil
}

func (r *PlannedRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM planned_activities WHERE id = ?`, id); err != nil {
		return fmt.Errorf("planned delete: %w", err)
	}
	return nil
}

func (r *PlannedRepo) ListAll(ctx context.Context) ([]models.PlannedActivity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, activity_id, target_date, recurring, frequency, reminder, reminder_time, last_reminded
		FROM planned_activities ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("planned list: %w", err)
	}
	defer rows.Close()

	var out []models.PlannedActivity
	for rows.Next() {
		var (
			p            models.PlannedActivity
			target       sql.NullString
			recurring    int
			frequency    string
			reminder     int
			lastReminded sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.ActivityID, &target, &recurring, &frequency, &reminder, &p.ReminderTime, &lastReminded); err != nil {
			return nil, fmt.Errorf("planned scan: %w", err)
		}
		if p.TargetDate, err = parseTime(target); err != nil {
			return nil, fmt.Errorf("planned target date: %w", err)
		}
		if p.LastReminded, err = parseTimePtr(lastReminded); err != nil {
			return nil, fmt.Errorf("planned last reminded: %w", err)
		}
		p.Recurring = recurring != 0
		p.Reminder = reminder != 0
		p.Frequency = models.Frequency(frequency)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("planned rows: %w", err)
	}
	return out, nil
}
