package storage

import (
	"context"
	"database/sql"
	"fmt"

	"lifelevel/internal/models"
)

// MainProfileKey identifies the single local user.
const MainProfileKey = "main_user"

type ProfileRepo struct {
	db dbtx
}

func NewProfileRepo(db dbtx) *ProfileRepo {
	return &ProfileRepo{db: db}
}

func (r *ProfileRepo) Get(ctx context.Context) (*models.UserProfile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, enneagram_type, join_date, streak, last_active
		FROM profile WHERE key = ?
	`, MainProfileKey)

	var (
		p          models.UserProfile
		joinDate   sql.NullString
		lastActive sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Email, &p.EnneagramType, &joinDate, &p.Streak, &lastActive); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("profile get: %w", err)
	}
	var err error
	if p.JoinDate, err = parseTime(joinDate); err != nil {
		return nil, fmt.Errorf("profile join date: %w", err)
	}
	if p.LastActive, err = parseTime(lastActive); err != nil {
		return nil, fmt.Errorf("profile last active: %w", err)
	}
	return &p, nil
}

func (r *ProfileRepo) Upsert(ctx context.Context, p models.UserProfile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profile (key, id, name, email, enneagram_type, join_date, streak, last_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			id = excluded.id,
			name = excluded.name,
			email = excluded.email,
			enneagram_type = excluded.enneagram_type,
			join_date = excluded.join_date,
			streak = excluded.streak,
			last_active = excluded.last_active
	`, MainProfileKey, p.ID, p.Name, p.Email, p.EnneagramType, timeValue(p.JoinDate), p.Streak, timeValue(p.LastActive))
	if err != nil {
		return fmt.Errorf("profile upsert: %w", err)
	}
	return nil
}
