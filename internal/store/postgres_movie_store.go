package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sawkjz/cinelist/internal/domain"
)

// PostgresMovieStore implements MovieStore on PostgreSQL.
type PostgresMovieStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewPostgresMovieStore(db *sqlx.DB, logger *slog.Logger) (*PostgresMovieStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil for PostgresMovieStore")
	}
	return &PostgresMovieStore{db: db, logger: logger}, nil
}

// UpsertTrending writes the mirror rows inside one transaction so a failed
// sync never leaves a half-updated trending set.
func (s *PostgresMovieStore) UpsertTrending(ctx context.Context, movies []*domain.TrendingMovie) (int, error) {
	query := `INSERT INTO movies (external_id, title, overview, poster_url, backdrop_url, release_date, popularity, genres, trending, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, $9)
              ON CONFLICT (external_id) DO UPDATE SET
                title = EXCLUDED.title,
                overview = EXCLUDED.overview,
                poster_url = EXCLUDED.poster_url,
                backdrop_url = EXCLUDED.backdrop_url,
                release_date = EXCLUDED.release_date,
                popularity = EXCLUDED.popularity,
                genres = EXCLUDED.genres,
                trending = TRUE,
                updated_at = EXCLUDED.updated_at`

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin trending upsert tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, movie := range movies {
		_, err := tx.ExecContext(ctx, query,
			movie.ExternalID, movie.Title, movie.Overview,
			movie.PosterURL, movie.BackdropURL, movie.ReleaseDate,
			movie.Popularity, movie.Genres, now,
		)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to upsert trending movie in DB",
				slog.Int64("externalID", movie.ExternalID), slog.String("error", err.Error()))
			return 0, fmt.Errorf("failed to upsert trending movie %d: %w", movie.ExternalID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit trending upsert tx: %w", err)
	}
	s.logger.InfoContext(ctx, "Trending movies upserted in DB", slog.Int("count", len(movies)))
	return len(movies), nil
}

func (s *PostgresMovieStore) ListTrending(ctx context.Context) ([]*domain.TrendingMovie, error) {
	query := `SELECT external_id, title, overview, poster_url, backdrop_url, release_date, popularity, genres, trending, updated_at
              FROM movies WHERE trending = TRUE ORDER BY popularity DESC`
	movies := []*domain.TrendingMovie{}

	if err := s.db.SelectContext(ctx, &movies, query); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list trending movies from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list trending movies: %w", err)
	}
	return movies, nil
}
