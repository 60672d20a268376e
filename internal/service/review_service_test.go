package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawkjz/cinelist/internal/cache"
	"github.com/sawkjz/cinelist/internal/domain"
	"github.com/sawkjz/cinelist/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newReviewService(t *testing.T) (*ReviewService, *store.MockReviewStore, *store.MockProfileStore, *cache.Cache) {
	t.Helper()
	reviews := store.NewMockReviewStore()
	profiles := store.NewMockProfileStore()
	c := cache.New(time.Minute)
	return NewReviewService(reviews, profiles, c, discardLogger()), reviews, profiles, c
}

func TestSubmitCreatesReview(t *testing.T) {
	svc, _, _, _ := newReviewService(t)
	ctx := context.Background()

	review, err := svc.Submit(ctx, SubmitReviewCommand{
		UserID:     "user-1",
		TMDBID:     27205,
		MovieTitle: "A Origem",
		Rating:     9,
		Comment:    "  Incrível.  ",
		UserName:   "ana",
	})
	require.NoError(t, err)

	assert.NotZero(t, review.ID)
	assert.Equal(t, int64(27205), review.TMDBID)
	assert.Equal(t, 9.0, review.Rating)
	assert.Equal(t, "Incrível.", review.Comment.String)
	assert.False(t, review.CreatedAt.IsZero())
	assert.Equal(t, review.CreatedAt, review.UpdatedAt)
}

func TestSubmitTwiceUpdatesInPlace(t *testing.T) {
	svc, reviews, _, _ := newReviewService(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	current := base
	reviews.SetClock(func() time.Time { return current })

	first, err := svc.Submit(ctx, SubmitReviewCommand{
		UserID: "user-1", TMDBID: 27205, MovieTitle: "A Origem", Rating: 9,
	})
	require.NoError(t, err)

	current = base.Add(time.Hour)
	second, err := svc.Submit(ctx, SubmitReviewCommand{
		UserID: "user-1", TMDBID: 27205, MovieTitle: "A Origem", Rating: 7, Comment: "mudei de ideia",
	})
	require.NoError(t, err)

	// Same row: the second submission overwrote the first instead of
	// creating a duplicate.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 7.0, second.Rating)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	movieReviews, err := reviews.ListByMovie(ctx, 27205)
	require.NoError(t, err)
	assert.Len(t, movieReviews, 1)
}

func TestSubmitDifferentMoviesCreatesSeparateRows(t *testing.T) {
	svc, _, _, _ := newReviewService(t)
	ctx := context.Background()

	first, err := svc.Submit(ctx, SubmitReviewCommand{UserID: "user-1", TMDBID: 27205, Rating: 9})
	require.NoError(t, err)
	second, err := svc.Submit(ctx, SubmitReviewCommand{UserID: "user-1", TMDBID: 550, Rating: 8})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestSubmitRejectsInvalidInput(t *testing.T) {
	svc, _, _, _ := newReviewService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, SubmitReviewCommand{UserID: "user-1", TMDBID: 27205, Rating: 11})
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, err = svc.Submit(ctx, SubmitReviewCommand{UserID: "user-1", TMDBID: 27205, Rating: -0.5})
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, err = svc.Submit(ctx, SubmitReviewCommand{UserID: "user-1", TMDBID: 0, Rating: 5})
	assert.ErrorIs(t, err, ErrInvalidMovie)
}

func TestSubmitFallsBackToProfileAvatar(t *testing.T) {
	svc, _, profiles, _ := newReviewService(t)
	ctx := context.Background()

	require.NoError(t, profiles.Create(ctx, &domain.Profile{
		UserID:    "user-1",
		FullName:  "Ana",
		AvatarURL: sql.NullString{String: "https://cdn.example/avatars/ana.png", Valid: true},
	}))

	review, err := svc.Submit(ctx, SubmitReviewCommand{UserID: "user-1", TMDBID: 27205, Rating: 8})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/avatars/ana.png", review.UserAvatarURL.String)
}

func TestListByMovieCachesAndSubmitInvalidates(t *testing.T) {
	svc, reviews, _, c := newReviewService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, SubmitReviewCommand{UserID: "user-1", TMDBID: 27205, Rating: 9})
	require.NoError(t, err)

	listed, err := svc.ListByMovie(ctx, 27205)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	_, cached := c.Get("reviews:movie:27205")
	assert.True(t, cached)

	// A write from another user must drop the cached page so the next read
	// sees both reviews.
	_, err = svc.Submit(ctx, SubmitReviewCommand{UserID: "user-2", TMDBID: 27205, Rating: 6})
	require.NoError(t, err)

	_, cached = c.Get("reviews:movie:27205")
	assert.False(t, cached)

	listed, err = svc.ListByMovie(ctx, 27205)
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	fromStore, err := reviews.ListByMovie(ctx, 27205)
	require.NoError(t, err)
	assert.Len(t, fromStore, 2)
}

func TestUpdateCommentInvalidatesCache(t *testing.T) {
	svc, _, _, c := newReviewService(t)
	ctx := context.Background()

	review, err := svc.Submit(ctx, SubmitReviewCommand{UserID: "user-1", TMDBID: 27205, Rating: 9, Comment: "bom"})
	require.NoError(t, err)

	_, err = svc.ListByMovie(ctx, 27205)
	require.NoError(t, err)

	updated, err := svc.UpdateComment(ctx, review.ID, "user-1", "  ótimo  ")
	require.NoError(t, err)
	assert.Equal(t, "ótimo", updated.Comment.String)

	_, cached := c.Get("reviews:movie:27205")
	assert.False(t, cached)
}

func TestUpdateCommentRejectsOtherUsers(t *testing.T) {
	svc, _, _, _ := newReviewService(t)
	ctx := context.Background()

	review, err := svc.Submit(ctx, SubmitReviewCommand{UserID: "user-1", TMDBID: 27205, Rating: 9})
	require.NoError(t, err)

	_, err = svc.UpdateComment(ctx, review.ID, "user-2", "hijacked")
	assert.ErrorIs(t, err, store.ErrReviewNotFound)
}

func TestDeleteRemovesReviewAndCacheEntry(t *testing.T) {
	svc, reviews, _, c := newReviewService(t)
	ctx := context.Background()

	review, err := svc.Submit(ctx, SubmitReviewCommand{UserID: "user-1", TMDBID: 27205, Rating: 9})
	require.NoError(t, err)

	_, err = svc.ListByMovie(ctx, 27205)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, review.ID, "user-1"))

	_, cached := c.Get("reviews:movie:27205")
	assert.False(t, cached)

	left, err := reviews.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, left)
}
