package storage

import (
	"context"
	"database/sql"
	"fmt"

	"lifelevel/internal/models"
)

type QuestRepo struct {
	db dbtx
}

func NewQuestRepo(db dbtx) *QuestRepo {
	return &QuestRepo{db: db}
}

func (r *QuestRepo) Get(ctx context.Context, questID string) (*models.QuestState, error) {
	row := r.db.QueryRowContext(ctx, `SELECT quest_id, status, accepted_at, completed_at FROM quest_states WHERE quest_id = ?`, questID)
	return scanQuest(row)
}

func (r *QuestRepo) Upsert(ctx context.Context, q models.QuestState) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO quest_states (quest_id, status, accepted_at, completed_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(quest_id) DO UPDATE SET
			status = excluded.status,
			accepted_at = excluded.accepted_at,
			completed_at = excluded.completed_at
	`, q.QuestID, string(q.Status), timePtrValue(q.AcceptedAt), timePtrValue(q.CompletedAt))
	if err != nil {
		return fmt.Errorf("quest upsert: %w", err)
	}
	return nil
}

func (r *QuestRepo) ListAll(ctx context.Context) ([]models.QuestState, error) {
	return r.list(ctx, `SELECT quest_id, status, accepted_at, completed_at FROM quest_states ORDER BY rowid ASC`)
}

func (r *QuestRepo) ListByStatus(ctx context.Context, status models.QuestStatus) ([]models.QuestState, error) {
	return r.list(ctx, `SELECT quest_id, status, accepted_at, completed_at FROM quest_states WHERE status = ? ORDER BY rowid ASC`, string(status))
}

func (r *QuestRepo) list(ctx context.Context, query string, args ...any) ([]models.QuestState, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("quest list: %w", err)
	}
	defer rows.Close()

	var out []models.QuestState
	for rows.Next() {
		q, err := scanQuest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("quest rows: %w", err)
	}
	return out, nil
}

func scanQuest(row scanner) (*models.QuestState, error) {
	var (
		q         models.QuestState
		status    string
		accepted  sql.NullString
		completed sql.NullString
	)
	if err := row.Scan(&q.QuestID, &status, &accepted, &completed); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("quest scan: %w", err)
	}
	q.Status = models.QuestStatus(status)
	if !q.Status.IsValid() {
		return nil, fmt.Errorf("quest %s: invalid status %q", q.QuestID, status)
	}
	var err error
	if q.AcceptedAt, err = parseTimePtr(accepted); err != nil {
		return nil, fmt.Errorf("quest accepted at: %w", err)
	}
	if q.CompletedAt, err = parseTimePtr(completed); err != nil {
		return nil, fmt.Errorf("quest completed at: %w", err)
	}
	return &q, nil
}
