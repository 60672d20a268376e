package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/sawkjz/cinelist/internal/tmdb"
)

// SearchMovies proxies a title search to TMDB.
func (h *Handler) SearchMovies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query().Get("query")
	if query == "" {
		h.respondError(w, r, http.StatusBadRequest, "Missing query parameter")
		return
	}
	page := queryPage(r)

	result, err := h.catalog.Search(ctx, query, page)
	if err != nil {
		h.logger.ErrorContext(ctx, "TMDB search failed",
			slog.String("query", query), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadGateway, "Movie catalog unavailable")
		return
	}

	h.respondJSON(w, r, http.StatusOK, result)
}

// GetTrendingMovies serves the weekly trending page, cached per page.
func (h *Handler) GetTrendingMovies(w http.ResponseWriter, r *http.Request) {
	h.cachedPage(w, r, "tmdb:trending:", h.catalog.Trending)
}

// GetPopularMovies serves the popular listing, cached per page.
func (h *Handler) GetPopularMovies(w http.ResponseWriter, r *http.Request) {
	h.cachedPage(w, r, "tmdb:popular:", h.catalog.Popular)
}

// GetNowPlayingMovies serves the now-playing listing, cached per page.
func (h *Handler) GetNowPlayingMovies(w http.ResponseWriter, r *http.Request) {
	h.cachedPage(w, r, "tmdb:now_playing:", h.catalog.NowPlaying)
}

func (h *Handler) cachedPage(w http.ResponseWriter, r *http.Request, keyPrefix string, fetch func(ctx context.Context, page int) (*tmdb.Page, error)) {
	ctx := r.Context()
	page := queryPage(r)
	key := keyPrefix + strconv.Itoa(page)

	if cached, ok := h.cache.Get(key); ok {
		h.respondJSON(w, r, http.StatusOK, cached)
		return
	}

	result, err := fetch(ctx, page)
	if err != nil {
		h.logger.ErrorContext(ctx, "TMDB request failed",
			slog.String("key", key), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadGateway, "Movie catalog unavailable")
		return
	}

	h.cache.Set(key, result)
	h.respondJSON(w, r, http.StatusOK, result)
}

// DiscoverMoviesByGenre lists movies for a TMDB genre id.
func (h *Handler) DiscoverMoviesByGenre(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	genreID, err := strconv.ParseInt(mux.Vars(r)["genreId"], 10, 64)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid genre ID")
		return
	}
	page := queryPage(r)

	key := "tmdb:genre:" + strconv.FormatInt(genreID, 10) + ":" + strconv.Itoa(page)
	if cached, ok := h.cache.Get(key); ok {
		h.respondJSON(w, r, http.StatusOK, cached)
		return
	}

	result, err := h.catalog.DiscoverByGenre(ctx, genreID, page)
	if err != nil {
		h.logger.ErrorContext(ctx, "TMDB discover failed",
			slog.Int64("genreID", genreID), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadGateway, "Movie catalog unavailable")
		return
	}

	h.cache.Set(key, result)
	h.respondJSON(w, r, http.StatusOK, result)
}

// GetMovieDetails returns full metadata for a single movie.
func (h *Handler) GetMovieDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	movieID, err := strconv.ParseInt(mux.Vars(r)["movieId"], 10, 64)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid movie ID")
		return
	}

	key := "tmdb:details:" + strconv.FormatInt(movieID, 10)
	if cached, ok := h.cache.Get(key); ok {
		h.respondJSON(w, r, http.StatusOK, cached)
		return
	}

	details, err := h.catalog.Details(ctx, movieID)
	if err != nil {
		h.logger.ErrorContext(ctx, "TMDB details failed",
			slog.Int64("movieID", movieID), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadGateway, "Movie catalog unavailable")
		return
	}

	h.cache.Set(key, details)
	h.respondJSON(w, r, http.StatusOK, details)
}

// GetGenres lists the TMDB genre catalog.
func (h *Handler) GetGenres(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	const key = "tmdb:genres"
	if cached, ok := h.cache.Get(key); ok {
		h.respondJSON(w, r, http.StatusOK, cached)
		return
	}

	genres, err := h.catalog.Genres(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "TMDB genres failed", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadGateway, "Movie catalog unavailable")
		return
	}

	h.cache.Set(key, genres)
	h.respondJSON(w, r, http.StatusOK, genres)
}

// GetMirroredTrending serves the locally mirrored trending table. It keeps the
// landing page alive when TMDB is unreachable.
func (h *Handler) GetMirroredTrending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	movies, err := h.movies.ListTrending(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to read trending mirror", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Failed to retrieve trending movies")
		return
	}

	h.respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"results": movies,
		"count":   len(movies),
	})
}

func queryPage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
