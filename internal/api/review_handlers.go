package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/sawkjz/cinelist/internal/domain"
	"github.com/sawkjz/cinelist/internal/service"
	"github.com/sawkjz/cinelist/internal/store"
)

// SubmitReview creates or updates the caller's review for one movie.
// Submitting twice for the same movie always leaves exactly one row.
func (h *Handler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := userID(r)

	var req domain.SubmitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := h.validator.StructCtx(ctx, req); err != nil {
		h.logger.WarnContext(ctx, "Review request validation failed", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	userName := ""
	avatarURL := ""
	if profile, err := h.profiles.GetByUserID(ctx, callerID); err == nil {
		userName = profile.FullName
		avatarURL = profile.Avatar()
	}

	review, err := h.reviews.Submit(ctx, service.SubmitReviewCommand{
		UserID:     callerID,
		TMDBID:     req.TMDBID,
		MovieTitle: req.MovieTitle,
		Rating:     req.Rating,
		Comment:    req.Comment,
		UserName:   userName,
		AvatarURL:  avatarURL,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidRating) || errors.Is(err, service.ErrInvalidMovie) {
			h.respondError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(ctx, "Failed to submit review", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Failed to submit review")
		return
	}

	h.respondJSON(w, r, http.StatusOK, review)
}

// GetReviewsForMovie lists a movie's reviews newest-first.
func (h *Handler) GetReviewsForMovie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tmdbID, err := strconv.ParseInt(mux.Vars(r)["movieId"], 10, 64)
	if err != nil || tmdbID <= 0 {
		h.respondError(w, r, http.StatusBadRequest, "Invalid movie id")
		return
	}

	reviews, err := h.reviews.ListByMovie(ctx, tmdbID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list reviews for movie",
			slog.Int64("tmdbID", tmdbID), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Failed to retrieve reviews")
		return
	}

	h.respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"reviews":     reviews,
		"total_count": len(reviews),
	})
}

// GetMyReviewForMovie returns the caller's review of one movie, 404 when
// none exists yet.
func (h *Handler) GetMyReviewForMovie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := userID(r)

	tmdbID, err := strconv.ParseInt(mux.Vars(r)["movieId"], 10, 64)
	if err != nil || tmdbID <= 0 {
		h.respondError(w, r, http.StatusBadRequest, "Invalid movie id")
		return
	}

	review, err := h.reviews.ForUserAndMovie(ctx, callerID, tmdbID)
	if err != nil {
		if errors.Is(err, store.ErrReviewNotFound) {
			h.respondError(w, r, http.StatusNotFound, "Review not found")
			return
		}
		h.logger.ErrorContext(ctx, "Failed to load user's review for movie",
			slog.String("userID", callerID), slog.Int64("tmdbID", tmdbID), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Failed to retrieve review")
		return
	}

	h.respondJSON(w, r, http.StatusOK, review)
}

// GetMyReviews lists the caller's reviews newest-first.
func (h *Handler) GetMyReviews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := userID(r)

	reviews, err := h.reviews.ListByUser(ctx, callerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list reviews for user",
			slog.String("userID", callerID), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Failed to retrieve reviews")
		return
	}

	h.respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"reviews":     reviews,
		"total_count": len(reviews),
	})
}

// UpdateReviewComment replaces the comment of the caller's review.
func (h *Handler) UpdateReviewComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := userID(r)

	reviewID, err := strconv.ParseInt(mux.Vars(r)["reviewId"], 10, 64)
	if err != nil || reviewID <= 0 {
		h.respondError(w, r, http.StatusBadRequest, "Invalid review id")
		return
	}

	var req domain.UpdateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := h.validator.StructCtx(ctx, req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	review, err := h.reviews.UpdateComment(ctx, reviewID, callerID, req.Comment)
	if err != nil {
		if errors.Is(err, store.ErrReviewNotFound) {
			h.respondError(w, r, http.StatusNotFound, "Review not found")
			return
		}
		h.logger.ErrorContext(ctx, "Failed to update review comment", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Failed to update review")
		return
	}

	h.respondJSON(w, r, http.StatusOK, review)
}

// DeleteReview removes the caller's review.
func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := userID(r)

	reviewID, err := strconv.ParseInt(mux.Vars(r)["reviewId"], 10, 64)
	if err != nil || reviewID <= 0 {
		h.respondError(w, r, http.StatusBadRequest, "Invalid review id")
		return
	}

	if err := h.reviews.Delete(ctx, reviewID, callerID); err != nil {
		if errors.Is(err, store.ErrReviewNotFound) {
			h.respondError(w, r, http.StatusNotFound, "Review not found")
			return
		}
		h.logger.ErrorContext(ctx, "Failed to delete review", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Failed to delete review")
		return
	}

	h.respondJSON(w, r, http.StatusNoContent, nil)
}
