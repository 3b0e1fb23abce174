package storage

import (
	"context"
	"database/sql"
	"fmt"

	"lifelevel/internal/models"
)

type SkillRepo struct {
	db dbtx
}

func NewSkillRepo(db dbtx) *SkillRepo {
	return &SkillRepo{db: db}
}

func (r *SkillRepo) Insert(ctx context.Context, u models.SkillUnlock) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO skill_unlocks (area_id, skill_id, unlocked_at, xp_spent) VALUES (?, ?, ?, ?)
	`, u.AreaID, u.SkillID, timeValue(u.UnlockedAt), u.XPSpent)
	if err != nil {
		return fmt.Errorf("skill insert: %w", err)
	}
	return nil
}

func (r *SkillRepo) ListAll(ctx context.Context) ([]models.SkillUnlock, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT area_id, skill_id, unlocked_at, xp_spent FROM skill_unlocks ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("skill list: %w", err)
	}
	defer rows.Close()

	var out []models.SkillUnlock
	for rows.Next() {
		var (
			u  models.SkillUnlock
			at sql.NullString
		)
		if err := rows.Scan(&u.AreaID, &u.SkillID, &at, &u.XPSpent); err != nil {
			return nil, fmt.Errorf("skill scan: %w", err)
		}
		if u.UnlockedAt, err = parseTime(at); err != nil {
			return nil, fmt.Errorf("skill unlocked at: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("skill rows: %w", err)
	}
	return out, nil
}
