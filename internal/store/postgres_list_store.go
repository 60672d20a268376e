package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sawkjz/cinelist/internal/domain"
)

// PostgresListStore implements ListStore on PostgreSQL.
//
// hasStatusColumn is resolved once at startup (see ProbeListStatusColumn)
// instead of the legacy per-call try-insert-then-fallback: older deployments
// of the lists table predate the status column.
type PostgresListStore struct {
	db              *sqlx.DB
	logger          *slog.Logger
	hasStatusColumn bool
}

func NewPostgresListStore(db *sqlx.DB, logger *slog.Logger, hasStatusColumn bool) (*PostgresListStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil for PostgresListStore")
	}
	return &PostgresListStore{db: db, logger: logger, hasStatusColumn: hasStatusColumn}, nil
}

// ProbeListStatusColumn checks whether the favorite_lists table carries the
// status column. Called once during startup.
func ProbeListStatusColumn(ctx context.Context, db *sqlx.DB) (bool, error) {
	query := `SELECT EXISTS (
                SELECT 1 FROM information_schema.columns
                WHERE table_name = 'favorite_lists' AND column_name = 'status')`
	var exists bool
	if err := db.GetContext(ctx, &exists, query); err != nil {
		return false, fmt.Errorf("failed to probe favorite_lists schema: %w", err)
	}
	return exists, nil
}

func (s *PostgresListStore) CreateList(ctx context.Context, list *domain.FavoriteList) (*domain.FavoriteList, error) {
	now := time.Now().UTC()
	if list.Status == "" {
		list.Status = domain.StatusNone
	}

	s.logger.DebugContext(ctx, "Executing CreateList query",
		slog.String("ownerID", list.OwnerID), slog.String("name", list.Name))

	var stored domain.FavoriteList
	var err error
	if s.hasStatusColumn {
		query := `INSERT INTO favorite_lists (owner_id, name, status, created_at, updated_at)
                  VALUES ($1, $2, $3, $4, $4)
                  RETURNING id, owner_id, name, status, created_at, updated_at`
		err = s.db.GetContext(ctx, &stored, query, list.OwnerID, list.Name, list.Status, now)
	} else {
		query := `INSERT INTO favorite_lists (owner_id, name, created_at, updated_at)
                  VALUES ($1, $2, $3, $3)
                  RETURNING id, owner_id, name, created_at, updated_at`
		err = s.db.GetContext(ctx, &stored, query, list.OwnerID, list.Name, now)
		stored.Status = domain.StatusNone
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create favorite list in DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create favorite list: %w", err)
	}
	s.logger.InfoContext(ctx, "Favorite list created in DB",
		slog.Int64("listID", stored.ID), slog.String("ownerID", stored.OwnerID))
	return &stored, nil
}

func (s *PostgresListStore) listColumns() string {
	if s.hasStatusColumn {
		return `id, owner_id, name, status, created_at, updated_at`
	}
	return `id, owner_id, name, created_at, updated_at`
}

func (s *PostgresListStore) GetList(ctx context.Context, listID int64) (*domain.FavoriteList, error) {
	query := `SELECT ` + s.listColumns() + ` FROM favorite_lists WHERE id = $1`
	var list domain.FavoriteList

	err := s.db.GetContext(ctx, &list, query, listID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrListNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get favorite list from DB",
			slog.Int64("listID", listID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get favorite list: %w", err)
	}
	if !s.hasStatusColumn {
		list.Status = domain.StatusNone
	}
	return &list, nil
}

func (s *PostgresListStore) ListsByOwner(ctx context.Context, ownerID string) ([]*domain.FavoriteList, error) {
	query := `SELECT ` + s.listColumns() + ` FROM favorite_lists WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`
	lists := []*domain.FavoriteList{}

	s.logger.DebugContext(ctx, "Executing ListsByOwner query", slog.String("ownerID", ownerID))
	if err := s.db.SelectContext(ctx, &lists, query, ownerID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list favorite lists from DB",
			slog.String("ownerID", ownerID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list favorite lists: %w", err)
	}
	if !s.hasStatusColumn {
		for _, list := range lists {
			list.Status = domain.StatusNone
		}
	}
	return lists, nil
}

func (s *PostgresListStore) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	query := `SELECT COUNT(*) FROM favorite_lists WHERE owner_id = $1`
	var count int64

	if err := s.db.GetContext(ctx, &count, query, ownerID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to count favorite lists in DB",
			slog.String("ownerID", ownerID), slog.String("error", err.Error()))
		return 0, fmt.Errorf("failed to count favorite lists: %w", err)
	}
	return count, nil
}

// DeleteList removes the list; the association rows go with it via the
// ON DELETE CASCADE foreign key on favorite_list_movies.
func (s *PostgresListStore) DeleteList(ctx context.Context, listID int64) error {
	query := `DELETE FROM favorite_lists WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, listID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete favorite list from DB",
			slog.Int64("listID", listID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete favorite list: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check list delete result: %w", err)
	}
	if rowsAffected == 0 {
		return ErrListNotFound
	}
	s.logger.InfoContext(ctx, "Favorite list deleted from DB", slog.Int64("listID", listID))
	return nil
}

// AddMovie inserts the association and maps the unique-constraint violation
// to ErrDuplicateMovieInList. No pre-check: the constraint is the check.
func (s *PostgresListStore) AddMovie(ctx context.Context, listID, movieID int64) error {
	query := `INSERT INTO favorite_list_movies (favlist_id, movie_id, created_at) VALUES ($1, $2, $3)`

	s.logger.DebugContext(ctx, "Executing AddMovie query",
		slog.Int64("listID", listID), slog.Int64("movieID", movieID))
	_, err := s.db.ExecContext(ctx, query, listID, movieID, time.Now().UTC())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505": // unique_violation
				s.logger.WarnContext(ctx, "Movie already in list (DB constraint)",
					slog.Int64("listID", listID), slog.Int64("movieID", movieID),
					slog.String("constraint", pqErr.Constraint))
				return ErrDuplicateMovieInList
			case "23503": // foreign_key_violation: the list itself is gone
				return ErrListNotFound
			}
		}
		s.logger.ErrorContext(ctx, "Failed to add movie to list in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to add movie to list: %w", err)
	}
	s.logger.InfoContext(ctx, "Movie added to list in DB",
		slog.Int64("listID", listID), slog.Int64("movieID", movieID))
	return nil
}

// RemoveMovie deletes the association; removing an absent association is a
// no-op, not an error.
func (s *PostgresListStore) RemoveMovie(ctx context.Context, listID, movieID int64) error {
	query := `DELETE FROM favorite_list_movies WHERE favlist_id = $1 AND movie_id = $2`

	_, err := s.db.ExecContext(ctx, query, listID, movieID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to remove movie from list in DB",
			slog.Int64("listID", listID), slog.Int64("movieID", movieID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to remove movie from list: %w", err)
	}
	return nil
}

func (s *PostgresListStore) MoviesInList(ctx context.Context, listID int64) ([]int64, error) {
	query := `SELECT movie_id FROM favorite_list_movies WHERE favlist_id = $1 ORDER BY created_at, id`
	movieIDs := []int64{}

	if err := s.db.SelectContext(ctx, &movieIDs, query, listID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list movies in list from DB",
			slog.Int64("listID", listID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list movies in list: %w", err)
	}
	return movieIDs, nil
}
