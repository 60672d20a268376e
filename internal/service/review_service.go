package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sawkjz/cinelist/internal/cache"
	"github.com/sawkjz/cinelist/internal/domain"
	"github.com/sawkjz/cinelist/internal/store"
)

var (
	ErrInvalidRating = errors.New("rating must be between 0 and 10")
	ErrInvalidMovie  = errors.New("movie id must be a positive integer")
)

// SubmitReviewCommand carries everything needed to create or update the
// caller's review of one movie.
type SubmitReviewCommand struct {
	UserID     string
	TMDBID     int64
	MovieTitle string
	Rating     float64
	Comment    string
	UserName   string
	AvatarURL  string
}

// ReviewService resolves review submissions into an idempotent upsert keyed
// by (user, movie) and keeps the per-movie review cache honest.
type ReviewService struct {
	reviews  store.ReviewStore
	profiles store.ProfileStore
	cache    *cache.Cache
	logger   *slog.Logger
}

func NewReviewService(reviews store.ReviewStore, profiles store.ProfileStore, c *cache.Cache, logger *slog.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, profiles: profiles, cache: c, logger: logger}
}

func movieReviewsCacheKey(tmdbID int64) string {
	return "reviews:movie:" + strconv.FormatInt(tmdbID, 10)
}

// Submit creates the caller's review for the movie or, when one already
// exists, updates it in place. The rating arrives on the canonical 0-10
// scale; the comment is trimmed and an empty comment is stored as NULL.
func (s *ReviewService) Submit(ctx context.Context, cmd SubmitReviewCommand) (*domain.Review, error) {
	if cmd.TMDBID <= 0 {
		return nil, ErrInvalidMovie
	}
	if cmd.Rating < 0 || cmd.Rating > 10 {
		return nil, ErrInvalidRating
	}

	comment := strings.TrimSpace(cmd.Comment)
	avatarURL := cmd.AvatarURL
	if avatarURL == "" {
		// Fall back to the stored profile avatar so the denormalized snapshot
		// on the review row stays useful.
		profile, err := s.profiles.GetByUserID(ctx, cmd.UserID)
		if err != nil && !errors.Is(err, store.ErrProfileNotFound) {
			s.logger.WarnContext(ctx, "Failed to resolve avatar for review, continuing without",
				slog.String("userID", cmd.UserID), slog.String("error", err.Error()))
		} else if err == nil {
			avatarURL = profile.Avatar()
		}
	}

	review := &domain.Review{
		UserID:        cmd.UserID,
		TMDBID:        cmd.TMDBID,
		MovieTitle:    cmd.MovieTitle,
		Rating:        cmd.Rating,
		Comment:       sql.NullString{String: comment, Valid: comment != ""},
		UserName:      cmd.UserName,
		UserAvatarURL: sql.NullString{String: avatarURL, Valid: avatarURL != ""},
	}

	stored, err := s.reviews.Upsert(ctx, review)
	if err != nil {
		return nil, fmt.Errorf("failed to submit review: %w", err)
	}

	s.cache.Invalidate(movieReviewsCacheKey(cmd.TMDBID))
	s.logger.InfoContext(ctx, "Review submitted",
		slog.String("userID", cmd.UserID), slog.Int64("tmdbID", cmd.TMDBID),
		slog.Float64("rating", stored.Rating))
	return stored, nil
}

// ListByMovie returns the movie's reviews newest-first, serving from the
// cache when fresh.
func (s *ReviewService) ListByMovie(ctx context.Context, tmdbID int64) ([]*domain.Review, error) {
	key := movieReviewsCacheKey(tmdbID)
	if cached, ok := s.cache.Get(key); ok {
		if reviews, ok := cached.([]*domain.Review); ok {
			return reviews, nil
		}
	}

	reviews, err := s.reviews.ListByMovie(ctx, tmdbID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, reviews)
	return reviews, nil
}

func (s *ReviewService) ListByUser(ctx context.Context, userID string) ([]*domain.Review, error) {
	return s.reviews.ListByUser(ctx, userID)
}

// ForUserAndMovie returns the user's review of one movie, if any. Clients
// use it to prefill the review form.
func (s *ReviewService) ForUserAndMovie(ctx context.Context, userID string, tmdbID int64) (*domain.Review, error) {
	return s.reviews.GetByUserAndMovie(ctx, userID, tmdbID)
}

func (s *ReviewService) CountByUser(ctx context.Context, userID string) (int64, error) {
	return s.reviews.CountByUser(ctx, userID)
}

// UpdateComment replaces the comment of the caller's review.
func (s *ReviewService) UpdateComment(ctx context.Context, reviewID int64, userID, comment string) (*domain.Review, error) {
	updated, err := s.reviews.UpdateComment(ctx, reviewID, userID, strings.TrimSpace(comment))
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(movieReviewsCacheKey(updated.TMDBID))
	return updated, nil
}

// Delete removes the caller's review.
func (s *ReviewService) Delete(ctx context.Context, reviewID int64, userID string) error {
	// Look the row up first so the right movie cache entry can be dropped.
	reviews, err := s.reviews.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	var tmdbID int64
	for _, review := range reviews {
		if review.ID == reviewID {
			tmdbID = review.TMDBID
			break
		}
	}

	if err := s.reviews.Delete(ctx, reviewID, userID); err != nil {
		return err
	}
	if tmdbID != 0 {
		s.cache.Invalidate(movieReviewsCacheKey(tmdbID))
	}
	s.logger.InfoContext(ctx, "Review deleted",
		slog.Int64("reviewID", reviewID), slog.String("userID", userID))
	return nil
}
