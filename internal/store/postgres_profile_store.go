package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sawkjz/cinelist/internal/domain"
)

// PostgresProfileStore implements ProfileStore on PostgreSQL.
type PostgresProfileStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewPostgresProfileStore(db *sqlx.DB, logger *slog.Logger) (*PostgresProfileStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil for PostgresProfileStore")
	}
	return &PostgresProfileStore{db: db, logger: logger}, nil
}

func (s *PostgresProfileStore) Create(ctx context.Context, profile *domain.Profile) error {
	query := `INSERT INTO profiles (user_id, full_name, bio, avatar_url, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $5)`

	profile.CreatedAt = time.Now().UTC()
	profile.UpdatedAt = profile.CreatedAt

	_, err := s.db.ExecContext(ctx, query,
		profile.UserID, profile.FullName, profile.Bio, profile.AvatarURL, profile.CreatedAt)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create profile in DB",
			slog.String("userID", profile.UserID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to create profile: %w", err)
	}
	s.logger.InfoContext(ctx, "Profile created in DB", slog.String("userID", profile.UserID))
	return nil
}

func (s *PostgresProfileStore) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `SELECT user_id, full_name, bio, avatar_url, created_at, updated_at FROM profiles WHERE user_id = $1`
	var profile domain.Profile

	err := s.db.GetContext(ctx, &profile, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get profile from DB",
			slog.String("userID", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

func (s *PostgresProfileStore) Update(ctx context.Context, profile *domain.Profile) error {
	query := `UPDATE profiles SET full_name = $1, bio = $2, updated_at = $3 WHERE user_id = $4`

	result, err := s.db.ExecContext(ctx, query,
		profile.FullName, profile.Bio, time.Now().UTC(), profile.UserID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to update profile in DB",
			slog.String("userID", profile.UserID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to update profile: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check profile update result: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (s *PostgresProfileStore) SetAvatarURL(ctx context.Context, userID, avatarURL string) error {
	query := `UPDATE profiles SET avatar_url = $1, updated_at = $2 WHERE user_id = $3`

	result, err := s.db.ExecContext(ctx, query, avatarURL, time.Now().UTC(), userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to set avatar URL in DB",
			slog.String("userID", userID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to set avatar url: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check avatar update result: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProfileNotFound
	}
	s.logger.InfoContext(ctx, "Avatar URL updated in DB", slog.String("userID", userID))
	return nil
}
