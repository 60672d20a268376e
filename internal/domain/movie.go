package domain

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// TrendingMovie is a row of the local mirror of TMDB's trending-this-week
// list, keyed by the external TMDB movie id.
type TrendingMovie struct {
	ExternalID  int64          `json:"external_id" db:"external_id"`
	Title       string         `json:"title" db:"title"`
	Overview    string         `json:"overview" db:"overview"`
	PosterURL   sql.NullString `json:"poster_url" db:"poster_url"`
	BackdropURL sql.NullString `json:"backdrop_url" db:"backdrop_url"`
	ReleaseDate sql.NullString `json:"release_date" db:"release_date"`
	Popularity  float64        `json:"popularity" db:"popularity"`
	Genres      pq.StringArray `json:"genres" db:"genres"`
	Trending    bool           `json:"trending" db:"trending"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// GenreNames maps TMDB genre ids to the Portuguese names stored on the
// mirror rows.
var GenreNames = map[int64]string{
	28:    "Ação",
	12:    "Aventura",
	16:    "Animação",
	35:    "Comédia",
	80:    "Crime",
	99:    "Documentário",
	18:    "Drama",
	10751: "Família",
	14:    "Fantasia",
	36:    "História",
	27:    "Terror",
	10402: "Música",
	9648:  "Mistério",
	10749: "Romance",
	878:   "Ficção Científica",
	53:    "Thriller",
	10752: "Guerra",
	37:    "Faroeste",
}

// MapGenres converts TMDB genre ids to names, dropping unknown ids.
func MapGenres(ids []int64) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := GenreNames[id]; ok {
			names = append(names, name)
		}
	}
	return names
}
