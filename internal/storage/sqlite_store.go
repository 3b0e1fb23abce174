package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"lifelevel/internal/models"
)

// SQLiteStore persists a UserState across the per-entity tables.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Load returns (nil, nil) when no profile has been saved yet.
func (s *SQLiteStore) Load(ctx context.Context) (*models.UserState, error) {
	profile, err := NewProfileRepo(s.db).Get(ctx)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, nil
	}

	st := &models.UserState{Profile: *profile}
	if st.Progress, err = NewProgressRepo(s.db).ListAll(ctx); err != nil {
		return nil, err
	}
	if st.ActivityHistory, err = NewCompletionRepo(s.db).ListAll(ctx); err != nil {
		return nil, err
	}
	if st.Achievements, err = NewAchievementRepo(s.db).ListAll(ctx); err != nil {
		return nil, err
	}
	if st.Quests, err = NewQuestRepo(s.db).ListAll(ctx); err != nil {
		return nil, err
	}
	if st.Skills, err = NewSkillRepo(s.db).ListAll(ctx); err != nil {
		return nil, err
	}
	if st.PlannedActivities, err = NewPlannedRepo(s.db).ListAll(ctx); err != nil {
		return nil, err
	}
	settings, err := NewSettingsRepo(s.db).Get(ctx)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		st.Settings = *settings
	}
	return st, nil
}

// Save writes the whole state in one transaction. Completions, achievements
// and skill unlocks are append-only and inserted idempotently.
func (s *SQLiteStore) Save(ctx context.Context, st models.UserState) error {
	return WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := NewProfileRepo(tx).Upsert(ctx, st.Profile); err != nil {
			return err
		}
		if err := NewSettingsRepo(tx).Upsert(ctx, st.Settings); err != nil {
			return err
		}

		progress := NewProgressRepo(tx)
		for i, p := range st.Progress {
			if err := progress.Upsert(ctx, i, p); err != nil {
				return err
			}
		}
		completions := NewCompletionRepo(tx)
		for _, c := range st.ActivityHistory {
			if err := completions.Insert(ctx, c); err != nil {
				return err
			}
		}
		achievements := NewAchievementRepo(tx)
		for _, a := range st.Achievements {
			if err := achievements.Insert(ctx, a); err != nil {
				return err
			}
		}
		quests := NewQuestRepo(tx)
		for _, q := range st.Quests {
			if err := quests.Upsert(ctx, q); err != nil {
				return err
			}
		}
		skills := NewSkillRepo(tx)
		for _, u := range st.Skills {
			if err := skills.Insert(ctx, u); err != nil {
				return err
			}
		}

		planned := NewPlannedRepo(tx)
		existing, err := planned.ListAll(ctx)
		if err != nil {
			return err
		}
		keep := make(map[string]bool, len(st.PlannedActivities))
		for _, p := range st.PlannedActivities {
			keep[p.ID] = true
			if err := planned.Upsert(ctx, p); err != nil {
				return err
			}
		}
		for _, p := range existing {
			if !keep[p.ID] {
				if err := planned.Delete(ctx, p.ID); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Avatar returns (nil, nil) when no avatar has been created.
func (s *SQLiteStore) Avatar(ctx context.Context) (*models.AvatarSettings, error) {
	raw, err := NewKVRepo(s.db).Get(ctx, models.AvatarKey)
	if err != nil || raw == nil {
		return nil, err
	}
	var a models.AvatarSettings
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("avatar decode: %w", err)
	}
	return &a, nil
}

func (s *SQLiteStore) SaveAvatar(ctx context.Context, a models.AvatarSettings) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("avatar encode: %w", err)
	}
	return NewKVRepo(s.db).Put(ctx, models.AvatarKey, raw)
}
