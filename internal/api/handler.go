package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/sawkjz/cinelist/internal/cache"
	"github.com/sawkjz/cinelist/internal/service"
	"github.com/sawkjz/cinelist/internal/storage"
	"github.com/sawkjz/cinelist/internal/store"
	"github.com/sawkjz/cinelist/internal/tmdb"
	"github.com/sawkjz/cinelist/pkg/auth"
)

// Handler carries the dependencies shared by all HTTP endpoints.
type Handler struct {
	logger    *slog.Logger
	validator *validator.Validate

	users    store.UserStore
	profiles store.ProfileStore
	movies   store.MovieStore

	reviews      *service.ReviewService
	lists        *service.ListService
	achievements *service.AchievementService

	tokenManager auth.TokenManager
	catalog      *tmdb.Client
	uploads      storage.Storage
	cache        *cache.Cache
}

// Deps bundles the constructor arguments for Handler.
type Deps struct {
	Logger    *slog.Logger
	Validator *validator.Validate

	Users    store.UserStore
	Profiles store.ProfileStore
	Movies   store.MovieStore

	Reviews      *service.ReviewService
	Lists        *service.ListService
	Achievements *service.AchievementService

	TokenManager auth.TokenManager
	Catalog      *tmdb.Client
	Uploads      storage.Storage
	Cache        *cache.Cache
}

func NewHandler(deps Deps) *Handler {
	return &Handler{
		logger:       deps.Logger,
		validator:    deps.Validator,
		users:        deps.Users,
		profiles:     deps.Profiles,
		movies:       deps.Movies,
		reviews:      deps.Reviews,
		lists:        deps.Lists,
		achievements: deps.Achievements,
		tokenManager: deps.TokenManager,
		catalog:      deps.Catalog,
		uploads:      deps.Uploads,
		cache:        deps.Cache,
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			h.logger.ErrorContext(r.Context(), "Failed to encode JSON response",
				slog.String("error", err.Error()), slog.String("path", r.URL.Path))
		}
	}
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.respondJSON(w, r, status, map[string]string{"error": message})
}
