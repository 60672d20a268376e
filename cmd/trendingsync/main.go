// Command trendingsync runs one trending mirror refresh and exits. Useful for
// seeding a fresh database or forcing a refresh outside the cron window.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/sawkjz/cinelist/internal/config"
	"github.com/sawkjz/cinelist/internal/db"
	"github.com/sawkjz/cinelist/internal/jobs"
	"github.com/sawkjz/cinelist/internal/store"
	"github.com/sawkjz/cinelist/internal/tmdb"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	conn, err := db.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database connection", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer conn.Close()

	if err := db.Migrate(conn, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	movieStore, err := store.NewPostgresMovieStore(conn, logger)
	if err != nil {
		logger.Error("Failed to initialize movie store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	catalog := tmdb.New(cfg.TMDBAPIToken, cfg.HTTPTimeout, logger)
	sync := jobs.NewTrendingSync(catalog, movieStore, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	count, err := sync.Run(ctx)
	if err != nil {
		logger.Error("Trending sync failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Trending sync finished", slog.Int("count", count))
}
