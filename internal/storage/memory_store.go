package storage

import (
	"context"
	"sync"

	"lifelevel/internal/models"
)

// MemoryStore keeps state in process. The zero value is ready to use.
type MemoryStore struct {
	mu     sync.Mutex
	state  *models.UserState
	avatar *models.AvatarSettings
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) (*models.UserState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil, nil
	}
	s := m.state.Clone()
	return &s, nil
}

func (m *MemoryStore) Save(ctx context.Context, s models.UserState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := s.Clone()
	m.state = &c
	return nil
}

func (m *MemoryStore) Avatar(ctx context.Context) (*models.AvatarSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.avatar == nil {
		return nil, nil
	}
	a := *m.avatar
	return &a, nil
}

func (m *MemoryStore) SaveAvatar(ctx context.Context, a models.AvatarSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.avatar = &a
	return nil
}
