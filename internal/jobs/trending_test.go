package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawkjz/cinelist/internal/store"
	"github.com/sawkjz/cinelist/internal/tmdb"
)

type fakeFetcher struct {
	page *tmdb.Page
	err  error
}

func (f *fakeFetcher) Trending(ctx context.Context, page int) (*tmdb.Page, error) {
	return f.page, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunMirrorsTrendingPage(t *testing.T) {
	fetcher := &fakeFetcher{page: &tmdb.Page{
		Page: 1,
		Results: []tmdb.Movie{
			{
				ID:           27205,
				Title:        "A Origem",
				Overview:     "Um ladrão que invade sonhos.",
				PosterPath:   "/inception.jpg",
				BackdropPath: "/inception-bg.jpg",
				ReleaseDate:  "2010-07-16",
				Popularity:   91.3,
				GenreIDs:     []int64{28, 878, 999999},
			},
			{
				ID:         550,
				Title:      "Clube da Luta",
				Popularity: 60.1,
				GenreIDs:   []int64{18},
			},
		},
	}}
	movies := store.NewMockMovieStore()
	sync := NewTrendingSync(fetcher, movies, discardLogger())

	count, err := sync.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	stored, err := movies.ListTrending(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 2)

	var inception, fightClub bool
	for _, movie := range stored {
		switch movie.ExternalID {
		case 27205:
			inception = true
			assert.Equal(t, "A Origem", movie.Title)
			assert.Equal(t, tmdb.PosterBaseURL+"/inception.jpg", movie.PosterURL.String)
			assert.Equal(t, tmdb.BackdropBaseURL+"/inception-bg.jpg", movie.BackdropURL.String)
			assert.Equal(t, "2010-07-16", movie.ReleaseDate.String)
			// Unknown genre ids are dropped.
			assert.Equal(t, []string{"Ação", "Ficção Científica"}, []string(movie.Genres))
			assert.True(t, movie.Trending)
		case 550:
			fightClub = true
			assert.False(t, movie.PosterURL.Valid)
			assert.False(t, movie.ReleaseDate.Valid)
		}
	}
	assert.True(t, inception)
	assert.True(t, fightClub)
}

func TestRunReplacesPreviousMirror(t *testing.T) {
	fetcher := &fakeFetcher{page: &tmdb.Page{
		Results: []tmdb.Movie{{ID: 27205, Title: "A Origem", Popularity: 91.3}},
	}}
	movies := store.NewMockMovieStore()
	sync := NewTrendingSync(fetcher, movies, discardLogger())

	_, err := sync.Run(context.Background())
	require.NoError(t, err)

	fetcher.page = &tmdb.Page{
		Results: []tmdb.Movie{{ID: 27205, Title: "A Origem", Popularity: 120.5}},
	}
	count, err := sync.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stored, err := movies.ListTrending(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 120.5, stored[0].Popularity)
}

func TestRunPropagatesFetchError(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("tmdb unavailable")}
	movies := store.NewMockMovieStore()
	sync := NewTrendingSync(fetcher, movies, discardLogger())

	_, err := sync.Run(context.Background())
	require.Error(t, err)

	stored, listErr := movies.ListTrending(context.Background())
	require.NoError(t, listErr)
	assert.Empty(t, stored)
}
