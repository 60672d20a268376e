package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sawkjz/cinelist/internal/domain"
)

// PostgresReviewStore implements ReviewStore on PostgreSQL.
type PostgresReviewStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewPostgresReviewStore(db *sqlx.DB, logger *slog.Logger) (*PostgresReviewStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil for PostgresReviewStore")
	}
	return &PostgresReviewStore{db: db, logger: logger}, nil
}

const reviewColumns = `id, user_id, tmdb_id, movie_title, rating, comment, user_name, user_avatar_url, created_at, updated_at`

// Upsert inserts a review or, when the (user_id, tmdb_id) pair already
// exists, updates the mutable fields in place. created_at survives updates;
// updated_at always advances. The ON CONFLICT clause rides on the
// uq_reviews_user_movie constraint, so the operation is atomic.
func (s *PostgresReviewStore) Upsert(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	query := `INSERT INTO movie_reviews (user_id, tmdb_id, movie_title, rating, comment, user_name, user_avatar_url, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
              ON CONFLICT ON CONSTRAINT uq_reviews_user_movie DO UPDATE SET
                movie_title = EXCLUDED.movie_title,
                rating = EXCLUDED.rating,
                comment = EXCLUDED.comment,
                user_name = EXCLUDED.user_name,
                user_avatar_url = EXCLUDED.user_avatar_url,
                updated_at = EXCLUDED.updated_at
              RETURNING ` + reviewColumns

	now := time.Now().UTC()
	s.logger.DebugContext(ctx, "Executing Upsert review query",
		slog.String("userID", review.UserID),
		slog.Int64("tmdbID", review.TMDBID))

	var stored domain.Review
	err := s.db.GetContext(ctx, &stored, query,
		review.UserID, review.TMDBID, review.MovieTitle, review.Rating,
		review.Comment, review.UserName, review.UserAvatarURL, now,
	)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to upsert review in DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to upsert review: %w", err)
	}
	s.logger.InfoContext(ctx, "Review upserted successfully in DB",
		slog.Int64("reviewID", stored.ID), slog.Int64("tmdbID", stored.TMDBID))
	return &stored, nil
}

func (s *PostgresReviewStore) GetByUserAndMovie(ctx context.Context, userID string, tmdbID int64) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM movie_reviews WHERE user_id = $1 AND tmdb_id = $2`
	var review domain.Review

	err := s.db.GetContext(ctx, &review, query, userID, tmdbID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get review by user and movie from DB",
			slog.String("userID", userID), slog.Int64("tmdbID", tmdbID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get review by user and movie: %w", err)
	}
	return &review, nil
}

func (s *PostgresReviewStore) ListByMovie(ctx context.Context, tmdbID int64) ([]*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM movie_reviews WHERE tmdb_id = $1 ORDER BY created_at DESC, id DESC`
	reviews := []*domain.Review{}

	s.logger.DebugContext(ctx, "Executing ListByMovie query", slog.Int64("tmdbID", tmdbID))
	if err := s.db.SelectContext(ctx, &reviews, query, tmdbID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list reviews by movie from DB",
			slog.Int64("tmdbID", tmdbID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list reviews by movie: %w", err)
	}
	return reviews, nil
}

func (s *PostgresReviewStore) ListByUser(ctx context.Context, userID string) ([]*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM movie_reviews WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	reviews := []*domain.Review{}

	s.logger.DebugContext(ctx, "Executing ListByUser query", slog.String("userID", userID))
	if err := s.db.SelectContext(ctx, &reviews, query, userID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list reviews by user from DB",
			slog.String("userID", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list reviews by user: %w", err)
	}
	return reviews, nil
}

func (s *PostgresReviewStore) CountByUser(ctx context.Context, userID string) (int64, error) {
	query := `SELECT COUNT(*) FROM movie_reviews WHERE user_id = $1`
	var count int64

	if err := s.db.GetContext(ctx, &count, query, userID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to count reviews by user in DB",
			slog.String("userID", userID), slog.String("error", err.Error()))
		return 0, fmt.Errorf("failed to count reviews by user: %w", err)
	}
	return count, nil
}

func (s *PostgresReviewStore) UpdateComment(ctx context.Context, reviewID int64, userID string, comment string) (*domain.Review, error) {
	query := `UPDATE movie_reviews SET comment = $1, updated_at = $2 WHERE id = $3 AND user_id = $4
              RETURNING ` + reviewColumns

	commentValue := sql.NullString{String: comment, Valid: comment != ""}
	var review domain.Review
	err := s.db.GetContext(ctx, &review, query, commentValue, time.Now().UTC(), reviewID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "No review found to update comment or user not the author",
				slog.Int64("reviewID", reviewID), slog.String("userID", userID))
			return nil, ErrReviewNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to update review comment in DB",
			slog.Int64("reviewID", reviewID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update review comment: %w", err)
	}
	s.logger.InfoContext(ctx, "Review comment updated in DB", slog.Int64("reviewID", reviewID))
	return &review, nil
}

func (s *PostgresReviewStore) Delete(ctx context.Context, reviewID int64, userID string) error {
	query := `DELETE FROM movie_reviews WHERE id = $1 AND user_id = $2`

	result, err := s.db.ExecContext(ctx, query, reviewID, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete review from DB",
			slog.Int64("reviewID", reviewID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete review: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check review delete result: %w", err)
	}
	if rowsAffected == 0 {
		s.logger.WarnContext(ctx, "No review found to delete or user not the author",
			slog.Int64("reviewID", reviewID), slog.String("userID", userID))
		return ErrReviewNotFound
	}
	s.logger.InfoContext(ctx, "Review deleted successfully from DB", slog.Int64("reviewID", reviewID))
	return nil
}
