// Package jobs holds the background work the server schedules with cron.
package jobs

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sawkjz/cinelist/internal/domain"
	"github.com/sawkjz/cinelist/internal/store"
	"github.com/sawkjz/cinelist/internal/tmdb"
)

// TrendingFetcher is the slice of the TMDB client the sync needs.
type TrendingFetcher interface {
	Trending(ctx context.Context, page int) (*tmdb.Page, error)
}

// TrendingSync refreshes the local mirror of TMDB's trending-this-week
// movies.
type TrendingSync struct {
	tmdb    TrendingFetcher
	movies  store.MovieStore
	logger  *slog.Logger
	timeout time.Duration
}

func NewTrendingSync(fetcher TrendingFetcher, movies store.MovieStore, logger *slog.Logger) *TrendingSync {
	return &TrendingSync{
		tmdb:    fetcher,
		movies:  movies,
		logger:  logger,
		timeout: time.Minute,
	}
}

// Run fetches the first trending page and upserts the mirror rows keyed by
// external id. Genre ids become Portuguese names; unknown ids are dropped.
func (s *TrendingSync) Run(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	page, err := s.tmdb.Trending(ctx, 1)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch trending movies: %w", err)
	}

	movies := make([]*domain.TrendingMovie, 0, len(page.Results))
	for _, result := range page.Results {
		movies = append(movies, &domain.TrendingMovie{
			ExternalID:  result.ID,
			Title:       result.Title,
			Overview:    result.Overview,
			PosterURL:   imageURL(tmdb.PosterBaseURL, result.PosterPath),
			BackdropURL: imageURL(tmdb.BackdropBaseURL, result.BackdropPath),
			ReleaseDate: sql.NullString{String: result.ReleaseDate, Valid: result.ReleaseDate != ""},
			Popularity:  result.Popularity,
			Genres:      domain.MapGenres(result.GenreIDs),
			Trending:    true,
		})
	}

	count, err := s.movies.UpsertTrending(ctx, movies)
	if err != nil {
		return 0, fmt.Errorf("failed to store trending movies: %w", err)
	}
	s.logger.InfoContext(ctx, "Trending movies synced", slog.Int("count", count))
	return count, nil
}

// Schedule registers the sync on the given cron according to spec and
// returns the entry id.
func (s *TrendingSync) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	id, err := c.AddFunc(spec, func() {
		if _, err := s.Run(context.Background()); err != nil {
			s.logger.Error("Scheduled trending sync failed", slog.String("error", err.Error()))
		}
	})
	if err != nil {
		return 0, fmt.Errorf("failed to schedule trending sync: %w", err)
	}
	s.logger.Info("Trending sync scheduled", slog.String("spec", spec))
	return id, nil
}

func imageURL(base, path string) sql.NullString {
	if path == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: base + path, Valid: true}
}
