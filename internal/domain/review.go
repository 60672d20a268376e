package domain

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/sawkjz/cinelist/internal/rating"
)

// Review is a user's rating and optional comment for a TMDB movie.
// At most one review exists per (user, movie) pair; resubmitting updates the
// existing row in place. Ratings are stored on the canonical 0-10 scale and
// converted to five stars only at the presentation boundary.
type Review struct {
	ID            int64          `json:"id" db:"id"`
	UserID        string         `json:"user_id" db:"user_id"` // UUID
	TMDBID        int64          `json:"tmdb_id" db:"tmdb_id"`
	MovieTitle    string         `json:"movie_title" db:"movie_title"`
	Rating        float64        `json:"rating" db:"rating"` // 0-10
	Comment       sql.NullString `json:"-" db:"comment"`
	UserName      string         `json:"user_name" db:"user_name"`
	UserAvatarURL sql.NullString `json:"-" db:"user_avatar_url"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}

// CommentText returns the comment or "" when none was left.
func (r *Review) CommentText() string {
	if r.Comment.Valid {
		return r.Comment.String
	}
	return ""
}

// MarshalJSON flattens nullable columns and adds the five-star display value.
func (r Review) MarshalJSON() ([]byte, error) {
	type alias Review
	out := struct {
		alias
		Comment        string  `json:"comment,omitempty"`
		UserAvatarURL  string  `json:"user_avatar_url,omitempty"`
		RatingFiveStar float64 `json:"rating_five_star"`
	}{
		alias:          alias(r),
		Comment:        r.CommentText(),
		RatingFiveStar: rating.ToFiveStar(r.Rating),
	}
	if r.UserAvatarURL.Valid {
		out.UserAvatarURL = r.UserAvatarURL.String
	}
	return json.Marshal(out)
}

// SubmitReviewRequest is the body for POST /api/reviews.
type SubmitReviewRequest struct {
	TMDBID     int64   `json:"tmdb_id" validate:"required,gt=0"`
	MovieTitle string  `json:"movie_title" validate:"required,min=1,max=255"`
	Rating     float64 `json:"rating" validate:"gte=0,lte=10"`
	Comment    string  `json:"comment,omitempty" validate:"max=2000"`
}

// UpdateCommentRequest is the body for PUT /api/reviews/{reviewId}.
type UpdateCommentRequest struct {
	Comment string `json:"comment" validate:"max=2000"`
}
