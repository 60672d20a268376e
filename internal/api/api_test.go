package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawkjz/cinelist/internal/cache"
	"github.com/sawkjz/cinelist/internal/service"
	"github.com/sawkjz/cinelist/internal/store"
	"github.com/sawkjz/cinelist/pkg/auth"
)

type apiFixture struct {
	router http.Handler
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	users := store.NewMockUserStore()
	profiles := store.NewMockProfileStore()
	reviews := store.NewMockReviewStore()
	lists := store.NewMockListStore()
	badges := store.NewMockBadgeStore()
	movies := store.NewMockMovieStore()
	appCache := cache.New(time.Minute)

	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	handler := NewHandler(Deps{
		Logger:       logger,
		Validator:    validator.New(),
		Users:        users,
		Profiles:     profiles,
		Movies:       movies,
		Reviews:      service.NewReviewService(reviews, profiles, appCache, logger),
		Lists:        service.NewListService(lists, logger),
		Achievements: service.NewAchievementService(badges, reviews, lists, staticIPResolver("203.0.113.7"), logger),
		TokenManager: tokens,
		Uploads:      nil,
		Catalog:      nil,
		Cache:        appCache,
	})

	return &apiFixture{router: NewRouter(handler)}
}

type staticIPResolver string

func (s staticIPResolver) PublicIP(ctx context.Context) (string, error) {
	return string(s), nil
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) registerAndLogin(t *testing.T, username string) string {
	t.Helper()
	email := username + "@example.com"

	rec := f.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "senha-123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": "senha-123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)
	return login.Token
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	f := newAPIFixture(t)
	f.registerAndLogin(t, "ana")

	rec := f.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "ana2",
		"email":    "ana@example.com",
		"password": "senha-123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	f := newAPIFixture(t)
	f.registerAndLogin(t, "ana")

	rec := f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "ana@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/reviews/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/reviews/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubmitReviewTwiceKeepsOneRow(t *testing.T) {
	f := newAPIFixture(t)
	token := f.registerAndLogin(t, "ana")

	submit := map[string]interface{}{
		"tmdb_id":     27205,
		"movie_title": "A Origem",
		"rating":      9,
		"comment":     "Incrível",
	}
	rec := f.do(t, http.MethodPost, "/api/reviews", token, submit)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	submit["rating"] = 7
	rec = f.do(t, http.MethodPost, "/api/reviews", token, submit)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/reviews/movie/27205", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listing struct {
		Reviews []struct {
			Rating         float64 `json:"rating"`
			RatingFiveStar float64 `json:"rating_five_star"`
		} `json:"reviews"`
		TotalCount int `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Equal(t, 1, listing.TotalCount)
	assert.Equal(t, 7.0, listing.Reviews[0].Rating)
	assert.Equal(t, 3.5, listing.Reviews[0].RatingFiveStar)

	rec = f.do(t, http.MethodGet, "/api/reviews/me/movie/27205", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/reviews/me/movie/603", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitReviewRejectsOutOfRangeRating(t *testing.T) {
	f := newAPIFixture(t)
	token := f.registerAndLogin(t, "ana")

	rec := f.do(t, http.MethodPost, "/api/reviews", token, map[string]interface{}{
		"tmdb_id":     27205,
		"movie_title": "A Origem",
		"rating":      11,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddDuplicateMovieToListConflicts(t *testing.T) {
	f := newAPIFixture(t)
	token := f.registerAndLogin(t, "ana")

	rec := f.do(t, http.MethodPost, "/api/lists", token, map[string]string{"name": "Favoritos"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var list struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))

	path := fmt.Sprintf("/api/lists/%d/movies", list.ID)
	rec = f.do(t, http.MethodPost, path, token, map[string]int64{"movie_id": 550})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, path, token, map[string]int64{"movie_id": 550})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListAccessRequiresOwnership(t *testing.T) {
	f := newAPIFixture(t)
	owner := f.registerAndLogin(t, "ana")
	intruder := f.registerAndLogin(t, "bob")

	rec := f.do(t, http.MethodPost, "/api/lists", owner, map[string]string{"name": "Favoritos"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var list struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/lists/%d/movies", list.ID), intruder, map[string]int64{"movie_id": 550})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestClaimBadgeFlow(t *testing.T) {
	f := newAPIFixture(t)
	token := f.registerAndLogin(t, "ana")

	// Claiming before anything is pending conflicts.
	rec := f.do(t, http.MethodPost, "/api/achievements/heart-critic/claim", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	for i := 0; i < 5; i++ {
		rec = f.do(t, http.MethodPost, "/api/reviews", token, map[string]interface{}{
			"tmdb_id":     1000 + i,
			"movie_title": fmt.Sprintf("Filme %d", i),
			"rating":      8,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodGet, "/api/achievements", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var achievements struct {
		Pending []struct {
			ID string `json:"id"`
		} `json:"pending"`
		Claimed []struct {
			ID string `json:"id"`
		} `json:"claimed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &achievements))

	ids := make([]string, 0, len(achievements.Pending))
	for _, p := range achievements.Pending {
		ids = append(ids, p.ID)
	}
	assert.Contains(t, ids, "heart-critic")
	assert.Empty(t, achievements.Claimed)

	rec = f.do(t, http.MethodPost, "/api/achievements/heart-critic/claim", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Claiming again conflicts; the badge stays claimed.
	rec = f.do(t, http.MethodPost, "/api/achievements/heart-critic/claim", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/achievements", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &achievements))
	require.Len(t, achievements.Claimed, 1)
	assert.Equal(t, "heart-critic", achievements.Claimed[0].ID)
}
