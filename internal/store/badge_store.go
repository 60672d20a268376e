package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sawkjz/cinelist/internal/domain"
)

var (
	ErrBadgeNotPending = errors.New("badge is not pending for this user")
)

// BadgeStore persists per-user badge states and the per-IP session counters
// backing the first-ten-logins gate. Badge state lives server-side so it
// cannot be forged from the client.
type BadgeStore interface {
	States(ctx context.Context, userID string) (map[string]domain.BadgeState, error)
	// MarkPending records a Locked -> Pending transition. It must not
	// overwrite an existing Claimed (or Pending) row.
	MarkPending(ctx context.Context, userID, badgeID string) error
	// Claim records Pending -> Claimed. Returns ErrBadgeNotPending when the
	// badge is not currently pending for the user.
	Claim(ctx context.Context, userID, badgeID string) (*domain.UserBadge, error)
	// BumpIPSession increments the session counter for ip and returns the new
	// total.
	BumpIPSession(ctx context.Context, ip string) (int64, error)
}

// MockBadgeStore is the in-memory implementation used by tests.
type MockBadgeStore struct {
	mu       sync.RWMutex
	nextID   int64
	states   map[string]map[string]domain.BadgeState // userID -> badgeID -> state
	sessions map[string]int64                        // ip -> count
}

func NewMockBadgeStore() *MockBadgeStore {
	return &MockBadgeStore{
		nextID:   1,
		states:   make(map[string]map[string]domain.BadgeState),
		sessions: make(map[string]int64),
	}
}

func (m *MockBadgeStore) States(ctx context.Context, userID string) (map[string]domain.BadgeState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]domain.BadgeState, len(m.states[userID]))
	for badgeID, state := range m.states[userID] {
		out[badgeID] = state
	}
	return out, nil
}

func (m *MockBadgeStore) MarkPending(ctx context.Context, userID, badgeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.states[userID] == nil {
		m.states[userID] = make(map[string]domain.BadgeState)
	}
	if _, exists := m.states[userID][badgeID]; exists {
		return nil
	}
	m.states[userID][badgeID] = domain.BadgePending
	return nil
}

func (m *MockBadgeStore) Claim(ctx context.Context, userID, badgeID string) (*domain.UserBadge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.states[userID] == nil || m.states[userID][badgeID] != domain.BadgePending {
		return nil, ErrBadgeNotPending
	}
	m.states[userID][badgeID] = domain.BadgeClaimed
	badge := &domain.UserBadge{
		ID:        m.nextID,
		UserID:    userID,
		BadgeID:   badgeID,
		State:     domain.BadgeClaimed,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	m.nextID++
	return badge, nil
}

func (m *MockBadgeStore) BumpIPSession(ctx context.Context, ip string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[ip]++
	return m.sessions[ip], nil
}
