package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires all HTTP routes. Catalog reads and per-movie review reads
// are public; everything touching the caller's own data requires a token.
func NewRouter(h *Handler) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	apiRouter := router.PathPrefix("/api").Subrouter()

	authRouter := apiRouter.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", h.Login).Methods(http.MethodPost)

	moviesRouter := apiRouter.PathPrefix("/movies").Subrouter()
	moviesRouter.HandleFunc("/search", h.SearchMovies).Methods(http.MethodGet)
	moviesRouter.HandleFunc("/trending", h.GetTrendingMovies).Methods(http.MethodGet)
	moviesRouter.HandleFunc("/trending/mirror", h.GetMirroredTrending).Methods(http.MethodGet)
	moviesRouter.HandleFunc("/popular", h.GetPopularMovies).Methods(http.MethodGet)
	moviesRouter.HandleFunc("/now-playing", h.GetNowPlayingMovies).Methods(http.MethodGet)
	moviesRouter.HandleFunc("/genres", h.GetGenres).Methods(http.MethodGet)
	moviesRouter.HandleFunc("/genres/{genreId}", h.DiscoverMoviesByGenre).Methods(http.MethodGet)
	moviesRouter.HandleFunc("/{movieId}", h.GetMovieDetails).Methods(http.MethodGet)

	apiRouter.HandleFunc("/reviews/movie/{movieId}", h.GetReviewsForMovie).Methods(http.MethodGet)
	apiRouter.HandleFunc("/users/{userId}/profile", h.GetPublicProfile).Methods(http.MethodGet)

	protected := apiRouter.PathPrefix("").Subrouter()
	protected.Use(h.AuthMiddleware)

	protected.HandleFunc("/reviews", h.SubmitReview).Methods(http.MethodPost)
	protected.HandleFunc("/reviews/me", h.GetMyReviews).Methods(http.MethodGet)
	protected.HandleFunc("/reviews/me/movie/{movieId}", h.GetMyReviewForMovie).Methods(http.MethodGet)
	protected.HandleFunc("/reviews/{reviewId}", h.UpdateReviewComment).Methods(http.MethodPut)
	protected.HandleFunc("/reviews/{reviewId}", h.DeleteReview).Methods(http.MethodDelete)

	protected.HandleFunc("/lists", h.CreateList).Methods(http.MethodPost)
	protected.HandleFunc("/lists", h.GetMyLists).Methods(http.MethodGet)
	protected.HandleFunc("/lists/{listId}", h.DeleteList).Methods(http.MethodDelete)
	protected.HandleFunc("/lists/{listId}/movies", h.GetListMovies).Methods(http.MethodGet)
	protected.HandleFunc("/lists/{listId}/movies", h.AddMovieToList).Methods(http.MethodPost)
	protected.HandleFunc("/lists/{listId}/movies/{movieId}", h.RemoveMovieFromList).Methods(http.MethodDelete)

	protected.HandleFunc("/achievements", h.GetAchievements).Methods(http.MethodGet)
	protected.HandleFunc("/achievements/{badgeId}/claim", h.ClaimBadge).Methods(http.MethodPost)

	protected.HandleFunc("/profile", h.GetMyProfile).Methods(http.MethodGet)
	protected.HandleFunc("/profile", h.UpdateMyProfile).Methods(http.MethodPut)
	protected.HandleFunc("/profile/avatar", h.UploadAvatar).Methods(http.MethodPost)

	return router
}
