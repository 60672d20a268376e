package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"

	"github.com/sawkjz/cinelist/internal/api"
	"github.com/sawkjz/cinelist/internal/cache"
	"github.com/sawkjz/cinelist/internal/config"
	"github.com/sawkjz/cinelist/internal/db"
	"github.com/sawkjz/cinelist/internal/ipinfo"
	"github.com/sawkjz/cinelist/internal/jobs"
	"github.com/sawkjz/cinelist/internal/service"
	"github.com/sawkjz/cinelist/internal/storage"
	"github.com/sawkjz/cinelist/internal/store"
	"github.com/sawkjz/cinelist/internal/tmdb"
	"github.com/sawkjz/cinelist/pkg/auth"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	validate := validator.New()

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
	defer func() {
		logger.Info("Closing PostgreSQL database connection...")
		if err := conn.Close(); err != nil {
			logger.Error("Failed to close PostgreSQL connection", slog.String("error", err.Error()))
		}
	}()

	if err := db.Migrate(conn, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer startupCancel()

	hasStatusColumn, err := store.ProbeListStatusColumn(startupCtx, conn)
	if err != nil {
		logger.Error("Failed to probe list schema", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("List schema probed", slog.Bool("hasStatusColumn", hasStatusColumn))

	userStore, err := store.NewPostgresUserStore(conn, logger)
	if err != nil {
		logger.Error("Failed to initialize user store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	profileStore, err := store.NewPostgresProfileStore(conn, logger)
	if err != nil {
		logger.Error("Failed to initialize profile store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	reviewStore, err := store.NewPostgresReviewStore(conn, logger)
	if err != nil {
		logger.Error("Failed to initialize review store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	listStore, err := store.NewPostgresListStore(conn, logger, hasStatusColumn)
	if err != nil {
		logger.Error("Failed to initialize list store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	badgeStore, err := store.NewPostgresBadgeStore(conn, logger)
	if err != nil {
		logger.Error("Failed to initialize badge store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	movieStore, err := store.NewPostgresMovieStore(conn, logger)
	if err != nil {
		logger.Error("Failed to initialize movie store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	tokenManager, err := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenDuration)
	if err != nil {
		logger.Error("Failed to initialize token manager", slog.String("error", err.Error()))
		os.Exit(1)
	}

	catalog := tmdb.New(cfg.TMDBAPIToken, cfg.HTTPTimeout, logger)
	ipClient := ipinfo.New(cfg.HTTPTimeout)
	appCache := cache.New(cfg.CacheTTL)

	uploads, err := storage.NewS3Storage(startupCtx, storage.S3Config{
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Endpoint:  cfg.S3Endpoint,
		PublicURL: cfg.S3PublicURL,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize S3 storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	reviewService := service.NewReviewService(reviewStore, profileStore, appCache, logger)
	listService := service.NewListService(listStore, logger)
	achievementService := service.NewAchievementService(badgeStore, reviewStore, listStore, ipClient, logger)

	handler := api.NewHandler(api.Deps{
		Logger:       logger,
		Validator:    validate,
		Users:        userStore,
		Profiles:     profileStore,
		Movies:       movieStore,
		Reviews:      reviewService,
		Lists:        listService,
		Achievements: achievementService,
		TokenManager: tokenManager,
		Catalog:      catalog,
		Uploads:      uploads,
		Cache:        appCache,
	})
	router := api.NewRouter(handler)

	trendingSync := jobs.NewTrendingSync(catalog, movieStore, logger)
	scheduler := cron.New()
	if _, err := trendingSync.Schedule(scheduler, cfg.TrendingCronSpec); err != nil {
		logger.Error("Failed to schedule trending sync", slog.String("error", err.Error()))
		os.Exit(1)
	}
	scheduler.Start()

	httpSrv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", slog.String("port", cfg.HTTPPort))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP ListenAndServe() failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down...")

	cronCtx := scheduler.Stop()
	<-cronCtx.Done()
	logger.Info("Cron scheduler stopped.")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP Server Shutdown Failed", slog.String("error", err.Error()))
	} else {
		logger.Info("HTTP Server gracefully stopped.")
	}

	logger.Info("Fully stopped.")
}
