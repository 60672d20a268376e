package store

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/sawkjz/cinelist/internal/domain"
)

var (
	ErrReviewNotFound = errors.New("review not found")
)

// ReviewStore defines the persistence operations for movie reviews.
// Upsert is atomic on the (user_id, tmdb_id) natural key so two concurrent
// submissions from the same user can never produce duplicate rows.
type ReviewStore interface {
	Upsert(ctx context.Context, review *domain.Review) (*domain.Review, error)
	GetByUserAndMovie(ctx context.Context, userID string, tmdbID int64) (*domain.Review, error)
	ListByMovie(ctx context.Context, tmdbID int64) ([]*domain.Review, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Review, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	UpdateComment(ctx context.Context, reviewID int64, userID string, comment string) (*domain.Review, error)
	Delete(ctx context.Context, reviewID int64, userID string) error
}

// MockReviewStore is the in-memory implementation used by tests.
type MockReviewStore struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]*domain.Review
	now    func() time.Time
}

func NewMockReviewStore() *MockReviewStore {
	return &MockReviewStore{
		nextID: 1,
		rows:   make(map[int64]*domain.Review),
		now:    time.Now,
	}
}

// SetClock overrides the store clock; tests use it to observe updated_at
// advancing across upserts.
func (m *MockReviewStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

func (m *MockReviewStore) Upsert(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	for _, row := range m.rows {
		if row.UserID == review.UserID && row.TMDBID == review.TMDBID {
			row.Rating = review.Rating
			row.Comment = review.Comment
			row.MovieTitle = review.MovieTitle
			row.UserName = review.UserName
			row.UserAvatarURL = review.UserAvatarURL
			row.UpdatedAt = now
			out := *row
			return &out, nil
		}
	}

	stored := *review
	stored.ID = m.nextID
	m.nextID++
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.rows[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *MockReviewStore) GetByUserAndMovie(ctx context.Context, userID string, tmdbID int64) (*domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, row := range m.rows {
		if row.UserID == userID && row.TMDBID == tmdbID {
			out := *row
			return &out, nil
		}
	}
	return nil, ErrReviewNotFound
}

func (m *MockReviewStore) ListByMovie(ctx context.Context, tmdbID int64) ([]*domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Review
	for _, row := range m.rows {
		if row.TMDBID == tmdbID {
			cp := *row
			out = append(out, &cp)
		}
	}
	sortReviewsNewestFirst(out)
	return out, nil
}

func (m *MockReviewStore) ListByUser(ctx context.Context, userID string) ([]*domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Review
	for _, row := range m.rows {
		if row.UserID == userID {
			cp := *row
			out = append(out, &cp)
		}
	}
	sortReviewsNewestFirst(out)
	return out, nil
}

func (m *MockReviewStore) CountByUser(ctx context.Context, userID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int64
	for _, row := range m.rows {
		if row.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (m *MockReviewStore) UpdateComment(ctx context.Context, reviewID int64, userID string, comment string) (*domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[reviewID]
	if !ok || row.UserID != userID {
		return nil, ErrReviewNotFound
	}
	row.Comment = sql.NullString{String: comment, Valid: comment != ""}
	row.UpdatedAt = m.now().UTC()
	out := *row
	return &out, nil
}

func (m *MockReviewStore) Delete(ctx context.Context, reviewID int64, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[reviewID]
	if !ok || row.UserID != userID {
		return ErrReviewNotFound
	}
	delete(m.rows, reviewID)
	return nil
}

func sortReviewsNewestFirst(reviews []*domain.Review) {
	sort.Slice(reviews, func(i, j int) bool {
		if reviews[i].CreatedAt.Equal(reviews[j].CreatedAt) {
			return reviews[i].ID > reviews[j].ID
		}
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
}
