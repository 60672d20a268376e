package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sawkjz/cinelist/internal/domain"
)

// MovieStore persists the local mirror of TMDB's trending movies, keyed by
// the external movie id.
type MovieStore interface {
	// UpsertTrending replaces or inserts the given mirror rows and returns
	// how many were written.
	UpsertTrending(ctx context.Context, movies []*domain.TrendingMovie) (int, error)
	ListTrending(ctx context.Context) ([]*domain.TrendingMovie, error)
}

// MockMovieStore is the in-memory implementation used by tests.
type MockMovieStore struct {
	mu     sync.RWMutex
	movies map[int64]*domain.TrendingMovie
}

func NewMockMovieStore() *MockMovieStore {
	return &MockMovieStore{movies: make(map[int64]*domain.TrendingMovie)}
}

func (m *MockMovieStore) UpsertTrending(ctx context.Context, movies []*domain.TrendingMovie) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, movie := range movies {
		cp := *movie
		cp.Trending = true
		cp.UpdatedAt = time.Now().UTC()
		m.movies[movie.ExternalID] = &cp
	}
	return len(movies), nil
}

func (m *MockMovieStore) ListTrending(ctx context.Context) ([]*domain.TrendingMovie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.TrendingMovie
	for _, movie := range m.movies {
		if movie.Trending {
			cp := *movie
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Popularity > out[j].Popularity })
	return out, nil
}
