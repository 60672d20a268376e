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

// CreateList creates a favorite list for the caller.
func (h *Handler) CreateList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := userID(r)

	var req domain.CreateListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := h.validator.StructCtx(ctx, req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	list, err := h.lists.CreateList(ctx, callerID, req.Name, domain.WatchStatus(req.Status))
	if err != nil {
		if errors.Is(err, service.ErrEmptyListName) {
			h.respondError(w, r, http.StatusBadRequest, "List name cannot be empty")
			return
		}
		h.logger.ErrorContext(ctx, "Failed to create list", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Failed to create list")
		return
	}

	h.respondJSON(w, r, http.StatusCreated, list)
}

// GetMyLists returns the caller's lists newest-first with movie ids.
func (h *Handler) GetMyLists(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := userID(r)

	lists, err := h.lists.ListsForOwner(ctx, callerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list favorite lists",
			slog.String("userID", callerID), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Failed to retrieve lists")
		return
	}

	h.respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"lists":       lists,
		"total_count": len(lists),
	})
}

// DeleteList removes one of the caller's lists and its associations.
func (h *Handler) DeleteList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := userID(r)

	listID, err := strconv.ParseInt(mux.Vars(r)["listId"], 10, 64)
	if err != nil || listID <= 0 {
		h.respondError(w, r, http.StatusBadRequest, "Invalid list id")
		return
	}

	if err := h.lists.DeleteList(ctx, callerID, listID); err != nil {
		h.respondListError(w, r, err, "Failed to delete list")
		return
	}
	h.respondJSON(w, r, http.StatusNoContent, nil)
}

// AddMovieToList associates a movie with one of the caller's lists. A
// duplicate association is rejected with 409.
func (h *Handler) AddMovieToList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := userID(r)

	listID, err := strconv.ParseInt(mux.Vars(r)["listId"], 10, 64)
	if err != nil || listID <= 0 {
		h.respondError(w, r, http.StatusBadRequest, "Invalid list id")
		return
	}

	var req domain.AddMovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := h.validator.StructCtx(ctx, req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	if err := h.lists.AddMovie(ctx, callerID, listID, req.MovieID); err != nil {
		h.respondListError(w, r, err, "Failed to add movie to list")
		return
	}
	h.respondJSON(w, r, http.StatusCreated, map[string]interface{}{
		"list_id":  listID,
		"movie_id": req.MovieID,
	})
}

// RemoveMovieFromList drops the association; removing an absent movie
// succeeds silently.
func (h *Handler) RemoveMovieFromList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := userID(r)

	vars := mux.Vars(r)
	listID, err := strconv.ParseInt(vars["listId"], 10, 64)
	if err != nil || listID <= 0 {
		h.respondError(w, r, http.StatusBadRequest, "Invalid list id")
		return
	}
	movieID, err := strconv.ParseInt(vars["movieId"], 10, 64)
	if err != nil || movieID <= 0 {
		h.respondError(w, r, http.StatusBadRequest, "Invalid movie id")
		return
	}

	if err := h.lists.RemoveMovie(ctx, callerID, listID, movieID); err != nil {
		h.respondListError(w, r, err, "Failed to remove movie from list")
		return
	}
	h.respondJSON(w, r, http.StatusNoContent, nil)
}

// GetListMovies returns the movie ids associated with a list.
func (h *Handler) GetListMovies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	listID, err := strconv.ParseInt(mux.Vars(r)["listId"], 10, 64)
	if err != nil || listID <= 0 {
		h.respondError(w, r, http.StatusBadRequest, "Invalid list id")
		return
	}

	movieIDs, err := h.lists.MoviesInList(ctx, listID)
	if err != nil {
		h.respondListError(w, r, err, "Failed to retrieve list movies")
		return
	}
	h.respondJSON(w, r, http.StatusOK, map[string]interface{}{"movie_ids": movieIDs})
}

func (h *Handler) respondListError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, store.ErrListNotFound):
		h.respondError(w, r, http.StatusNotFound, "List not found")
	case errors.Is(err, service.ErrNotListOwner):
		h.respondError(w, r, http.StatusForbidden, "You do not own this list")
	case errors.Is(err, store.ErrDuplicateMovieInList):
		h.respondError(w, r, http.StatusConflict, "Movie already exists in this list")
	default:
		h.logger.ErrorContext(r.Context(), fallback, slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, fallback)
	}
}
