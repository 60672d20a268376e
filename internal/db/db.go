// Package db owns the PostgreSQL connection and schema migrations.
package db

import (
	"embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Connect opens and pings the database. The password is scrubbed from the
// logged URL.
func Connect(dbURL string, logger *slog.Logger) (*sqlx.DB, error) {
	logger.Info("Connecting to PostgreSQL database", slog.String("dbURL", scrubPassword(dbURL)))

	conn, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := conn.Ping(); err != nil {
		logger.Error("Failed to ping PostgreSQL database", slog.String("error", err.Error()))
		conn.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	logger.Info("Successfully connected to PostgreSQL database")
	return conn, nil
}

// Migrate applies the embedded goose migrations.
func Migrate(conn *sqlx.DB, logger *slog.Logger) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(conn.DB, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("Database migrations applied")
	return nil
}

func scrubPassword(dbURL string) string {
	atIndex := strings.Index(dbURL, "@")
	if atIndex <= 0 {
		return dbURL
	}
	colonIndex := strings.LastIndex(dbURL[:atIndex], ":")
	if colonIndex <= 0 {
		return dbURL
	}
	return dbURL[:colonIndex] + ":********" + dbURL[atIndex:]
}
