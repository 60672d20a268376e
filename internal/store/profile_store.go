package store

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/sawkjz/cinelist/internal/domain"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
)

// ProfileStore defines persistence for the public display profiles.
type ProfileStore interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)
	Update(ctx context.Context, profile *domain.Profile) error
	SetAvatarURL(ctx context.Context, userID, avatarURL string) error
}

// MockProfileStore is the in-memory implementation used by tests.
type MockProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]*domain.Profile
}

func NewMockProfileStore() *MockProfileStore {
	return &MockProfileStore{profiles: make(map[string]*domain.Profile)}
}

func (m *MockProfileStore) Create(ctx context.Context, profile *domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	profile.CreatedAt = time.Now().UTC()
	profile.UpdatedAt = profile.CreatedAt
	cp := *profile
	m.profiles[profile.UserID] = &cp
	return nil
}

func (m *MockProfileStore) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	profile, ok := m.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	cp := *profile
	return &cp, nil
}

func (m *MockProfileStore) Update(ctx context.Context, profile *domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.profiles[profile.UserID]
	if !ok {
		return ErrProfileNotFound
	}
	existing.FullName = profile.FullName
	existing.Bio = profile.Bio
	existing.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MockProfileStore) SetAvatarURL(ctx context.Context, userID, avatarURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.profiles[userID]
	if !ok {
		return ErrProfileNotFound
	}
	existing.AvatarURL = sql.NullString{String: avatarURL, Valid: avatarURL != ""}
	existing.UpdatedAt = time.Now().UTC()
	return nil
}
