// Package tmdb wraps the TMDB v3 HTTP API. All reads use language=pt-BR and
// bearer token auth; the catalog data never originates here, TMDB stays the
// source of truth.
package tmdb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseURL = "https://api.themoviedb.org/3"
	language       = "pt-BR"
	region         = "BR"

	// PosterBaseURL and BackdropBaseURL prefix the relative paths TMDB
	// returns.
	PosterBaseURL   = "https://image.tmdb.org/t/p/w500"
	BackdropBaseURL = "https://image.tmdb.org/t/p/original"
)

// Movie is one entry of a TMDB paginated result.
type Movie struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	Popularity   float64 `json:"popularity"`
	VoteAverage  float64 `json:"vote_average"` // 0-10
	GenreIDs     []int64 `json:"genre_ids"`
}

// Page is TMDB's standard paginated envelope.
type Page struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// MovieDetails is the full detail payload for one movie.
type MovieDetails struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	Runtime      int     `json:"runtime"`
	VoteAverage  float64 `json:"vote_average"`
	Genres       []Genre `json:"genres"`
}

// Genre is a TMDB genre id/name pair.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GenreList is the /genre/movie/list payload.
type GenreList struct {
	Genres []Genre `json:"genres"`
}

// Client talks to TMDB with a bounded per-request timeout.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// New builds a client authorized with the given API bearer token.
func New(apiToken string, timeout time.Duration, logger *slog.Logger) *Client {
	http := resty.New().
		SetBaseURL(defaultBaseURL).
		SetAuthToken(apiToken).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &Client{http: http, logger: logger}
}

// SetBaseURL points the client at a different host. Tests use it.
func (c *Client) SetBaseURL(url string) {
	c.http.SetBaseURL(url)
}

func (c *Client) getPage(ctx context.Context, path string, params map[string]string) (*Page, error) {
	var page Page
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("language", language).
		SetQueryParams(params).
		SetResult(&page).
		Get(path)
	if err != nil {
		c.logger.ErrorContext(ctx, "TMDB request failed",
			slog.String("path", path), slog.String("error", err.Error()))
		return nil, fmt.Errorf("tmdb request %s failed: %w", path, err)
	}
	if resp.IsError() {
		c.logger.ErrorContext(ctx, "TMDB returned error status",
			slog.String("path", path), slog.Int("status", resp.StatusCode()))
		return nil, fmt.Errorf("tmdb request %s returned status %d", path, resp.StatusCode())
	}
	return &page, nil
}

// Search looks movies up by free-text query.
func (c *Client) Search(ctx context.Context, query string, page int) (*Page, error) {
	return c.getPage(ctx, "/search/movie", map[string]string{
		"query": query,
		"page":  fmt.Sprintf("%d", page),
	})
}

// Trending returns this week's trending movies.
func (c *Client) Trending(ctx context.Context, page int) (*Page, error) {
	return c.getPage(ctx, "/trending/movie/week", map[string]string{
		"page": fmt.Sprintf("%d", page),
	})
}

// Popular returns the popular chart.
func (c *Client) Popular(ctx context.Context, page int) (*Page, error) {
	return c.getPage(ctx, "/movie/popular", map[string]string{
		"page": fmt.Sprintf("%d", page),
	})
}

// NowPlaying returns movies currently in Brazilian theaters.
func (c *Client) NowPlaying(ctx context.Context, page int) (*Page, error) {
	return c.getPage(ctx, "/movie/now_playing", map[string]string{
		"page":   fmt.Sprintf("%d", page),
		"region": region,
	})
}

// DiscoverByGenre lists movies of one genre ordered by popularity.
func (c *Client) DiscoverByGenre(ctx context.Context, genreID int64, page int) (*Page, error) {
	return c.getPage(ctx, "/discover/movie", map[string]string{
		"with_genres": fmt.Sprintf("%d", genreID),
		"page":        fmt.Sprintf("%d", page),
		"sort_by":     "popularity.desc",
	})
}

// Details returns the full payload for one movie.
func (c *Client) Details(ctx context.Context, movieID int64) (*MovieDetails, error) {
	var details MovieDetails
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("language", language).
		SetResult(&details).
		Get(fmt.Sprintf("/movie/%d", movieID))
	if err != nil {
		return nil, fmt.Errorf("tmdb movie details request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("tmdb movie details returned status %d", resp.StatusCode())
	}
	return &details, nil
}

// Genres returns the movie genre catalog.
func (c *Client) Genres(ctx context.Context) (*GenreList, error) {
	var list GenreList
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("language", language).
		SetResult(&list).
		Get("/genre/movie/list")
	if err != nil {
		return nil, fmt.Errorf("tmdb genre list request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("tmdb genre list returned status %d", resp.StatusCode())
	}
	return &list, nil
}
