package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/sawkjz/cinelist/internal/domain"
)

var (
	ErrListNotFound         = errors.New("favorite list not found")
	ErrDuplicateMovieInList = errors.New("movie already exists in this list")
)

// ListStore defines persistence for favorite lists and their movie
// associations. AddMovie relies on the storage-level unique constraint on
// (favlist_id, movie_id); the duplicate check is not an application-side
// probe.
type ListStore interface {
	CreateList(ctx context.Context, list *domain.FavoriteList) (*domain.FavoriteList, error)
	GetList(ctx context.Context, listID int64) (*domain.FavoriteList, error)
	ListsByOwner(ctx context.Context, ownerID string) ([]*domain.FavoriteList, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
	DeleteList(ctx context.Context, listID int64) error
	AddMovie(ctx context.Context, listID, movieID int64) error
	RemoveMovie(ctx context.Context, listID, movieID int64) error
	MoviesInList(ctx context.Context, listID int64) ([]int64, error)
}

// MockListStore is the in-memory implementation used by tests.
type MockListStore struct {
	mu     sync.RWMutex
	nextID int64
	lists  map[int64]*domain.FavoriteList
	movies map[int64][]int64 // listID -> movie ids, insertion order
}

func NewMockListStore() *MockListStore {
	return &MockListStore{
		nextID: 1,
		lists:  make(map[int64]*domain.FavoriteList),
		movies: make(map[int64][]int64),
	}
}

func (m *MockListStore) CreateList(ctx context.Context, list *domain.FavoriteList) (*domain.FavoriteList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *list
	stored.ID = m.nextID
	m.nextID++
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	if stored.Status == "" {
		stored.Status = domain.StatusNone
	}
	m.lists[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *MockListStore) GetList(ctx context.Context, listID int64) (*domain.FavoriteList, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list, ok := m.lists[listID]
	if !ok {
		return nil, ErrListNotFound
	}
	out := *list
	return &out, nil
}

func (m *MockListStore) ListsByOwner(ctx context.Context, ownerID string) ([]*domain.FavoriteList, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.FavoriteList
	for _, list := range m.lists {
		if list.OwnerID == ownerID {
			cp := *list
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MockListStore) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int64
	for _, list := range m.lists {
		if list.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

// DeleteList removes the list and cascades its movie associations, matching
// the FK ON DELETE CASCADE behavior of the Postgres implementation.
func (m *MockListStore) DeleteList(ctx context.Context, listID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lists[listID]; !ok {
		return ErrListNotFound
	}
	delete(m.lists, listID)
	delete(m.movies, listID)
	return nil
}

func (m *MockListStore) AddMovie(ctx context.Context, listID, movieID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lists[listID]; !ok {
		return ErrListNotFound
	}
	for _, existing := range m.movies[listID] {
		if existing == movieID {
			return ErrDuplicateMovieInList
		}
	}
	m.movies[listID] = append(m.movies[listID], movieID)
	return nil
}

// RemoveMovie is a no-op when the association does not exist.
func (m *MockListStore) RemoveMovie(ctx context.Context, listID, movieID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current := m.movies[listID]
	next := current[:0]
	for _, existing := range current {
		if existing != movieID {
			next = append(next, existing)
		}
	}
	m.movies[listID] = next
	return nil
}

func (m *MockListStore) MoviesInList(ctx context.Context, listID int64) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]int64, len(m.movies[listID]))
	copy(out, m.movies[listID])
	return out, nil
}
