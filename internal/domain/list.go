package domain

import (
	"time"
)

// WatchStatus tags a favorite list with the owner's viewing progress.
type WatchStatus string

const (
	StatusWatching WatchStatus = "WATCHING"
	StatusFinished WatchStatus = "FINISHED"
	StatusPlanning WatchStatus = "PLANNING"
	StatusNever    WatchStatus = "NEVER"
	StatusNone     WatchStatus = "NONE"
)

// FavoriteList is a user-owned named collection of movie references.
type FavoriteList struct {
	ID        int64       `json:"id" db:"id"`
	OwnerID   string      `json:"owner_id" db:"owner_id"` // UUID
	Name      string      `json:"name" db:"name"`
	Status    WatchStatus `json:"status" db:"status"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`

	// MovieIDs is populated from the association table, not stored on the row.
	MovieIDs []int64 `json:"movie_ids,omitempty"`
}

// ListMovie associates a TMDB movie with a favorite list. The
// (favlist_id, movie_id) pair is unique at the storage layer.
type ListMovie struct {
	ID        int64     `json:"id" db:"id"`
	ListID    int64     `json:"list_id" db:"favlist_id"`
	MovieID   int64     `json:"movie_id" db:"movie_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateListRequest is the body for POST /api/lists.
type CreateListRequest struct {
	Name   string `json:"name" validate:"required,min=1,max=100"`
	Status string `json:"status,omitempty" validate:"omitempty,oneof=WATCHING FINISHED PLANNING NEVER NONE"`
}

// AddMovieRequest is the body for POST /api/lists/{listId}/movies.
type AddMovieRequest struct {
	MovieID int64 `json:"movie_id" validate:"required,gt=0"`
}
