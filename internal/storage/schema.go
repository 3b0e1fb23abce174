package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Timestamps are stored as RFC 3339 text in UTC; NULL means unset.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS profile (
			key TEXT PRIMARY KEY,
			id TEXT NOT NULL,
			name TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			enneagram_type INTEGER NOT NULL DEFAULT 0,
			join_date TEXT,
			streak INTEGER NOT NULL DEFAULT 0,
			last_active TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS area_progress (
			area_id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			current_level INTEGER NOT NULL DEFAULT 1,
			experience INTEGER NOT NULL DEFAULT 0,
			experience_to_next_level INTEGER NOT NULL,
			streak_days INTEGER NOT NULL DEFAULT 0,
			last_checkin TEXT
		);`,
		// Append-only; rowid preserves completion order.
		`CREATE TABLE IF NOT EXISTS activity_completions (
			id TEXT PRIMARY KEY,
			activity_id TEXT NOT NULL,
			area_id TEXT NOT NULL,
			completed_at TEXT NOT NULL,
			experience_gained INTEGER NOT NULL,
			reflection TEXT NOT NULL DEFAULT '',
			proof TEXT NOT NULL DEFAULT '',
			tags TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS achievements (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			icon TEXT NOT NULL DEFAULT '',
			area_id TEXT NOT NULL DEFAULT '',
			date_earned TEXT NOT NULL,
			experience_gained INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS quest_states (
			quest_id TEXT PRIMARY KEY,
			status TEXT NOT NULL DEFAULT 'available',
			accepted_at TEXT,
			completed_at TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS skill_unlocks (
			area_id TEXT NOT NULL,
			skill_id TEXT NOT NULL,
			unlocked_at TEXT NOT NULL,
			xp_spent INTEGER NOT NULL,
			PRIMARY KEY (area_id, skill_id)
		);`,
		`CREATE TABLE IF NOT EXISTS planned_activities (
			id TEXT PRIMARY KEY,
			activity_id TEXT NOT NULL,
			target_date TEXT NOT NULL,
			recurring INTEGER NOT NULL DEFAULT 0,
			frequency TEXT NOT NULL DEFAULT 'once',
			reminder INTEGER NOT NULL DEFAULT 0,
			reminder_time TEXT NOT NULL DEFAULT '',
			last_reminded TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			theme TEXT NOT NULL DEFAULT 'light',
			notifications INTEGER NOT NULL DEFAULT 1,
			reminder_time TEXT NOT NULL DEFAULT '',
			weekly_goals TEXT,
			priority_areas TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_activity_completions_area_id ON activity_completions(area_id, completed_at);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// Columns added after the first release (ignore if already present).
	alterStmts := []string{
		`ALTER TABLE area_progress ADD COLUMN spendable_experience INTEGER NOT NULL DEFAULT 0;`,
	}
	for _, stmt := range alterStmts {
		_, err := db.ExecContext(ctx, stmt)
		if err != nil && !strings.Contains(err.Error(), "duplicate column") {
			return fmt.Errorf("migrate alter: %w", err)
		}
	}

	return nil
}
