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

// PostgresBadgeStore implements BadgeStore on PostgreSQL.
type PostgresBadgeStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewPostgresBadgeStore(db *sqlx.DB, logger *slog.Logger) (*PostgresBadgeStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil for PostgresBadgeStore")
	}
	return &PostgresBadgeStore{db: db, logger: logger}, nil
}

func (s *PostgresBadgeStore) States(ctx context.Context, userID string) (map[string]domain.BadgeState, error) {
	query := `SELECT badge_id, state FROM user_badges WHERE user_id = $1`

	rows := []struct {
		BadgeID string            `db:"badge_id"`
		State   domain.BadgeState `db:"state"`
	}{}
	if err := s.db.SelectContext(ctx, &rows, query, userID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to load badge states from DB",
			slog.String("userID", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load badge states: %w", err)
	}

	states := make(map[string]domain.BadgeState, len(rows))
	for _, row := range rows {
		states[row.BadgeID] = row.State
	}
	return states, nil
}

// MarkPending inserts the Pending row; ON CONFLICT DO NOTHING keeps an
// existing Pending or Claimed row untouched, so a claimed badge can never
// fall back to Pending.
func (s *PostgresBadgeStore) MarkPending(ctx context.Context, userID, badgeID string) error {
	query := `INSERT INTO user_badges (user_id, badge_id, state, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $4)
              ON CONFLICT (user_id, badge_id) DO NOTHING`

	_, err := s.db.ExecContext(ctx, query, userID, badgeID, domain.BadgePending, time.Now().UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to mark badge pending in DB",
			slog.String("userID", userID), slog.String("badgeID", badgeID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to mark badge pending: %w", err)
	}
	s.logger.DebugContext(ctx, "Badge marked pending",
		slog.String("userID", userID), slog.String("badgeID", badgeID))
	return nil
}

func (s *PostgresBadgeStore) Claim(ctx context.Context, userID, badgeID string) (*domain.UserBadge, error) {
	query := `UPDATE user_badges SET state = $1, updated_at = $2
              WHERE user_id = $3 AND badge_id = $4 AND state = $5
              RETURNING id, user_id, badge_id, state, created_at, updated_at`

	var badge domain.UserBadge
	err := s.db.GetContext(ctx, &badge, query,
		domain.BadgeClaimed, time.Now().UTC(), userID, badgeID, domain.BadgePending)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "Claim rejected: badge not pending",
				slog.String("userID", userID), slog.String("badgeID", badgeID))
			return nil, ErrBadgeNotPending
		}
		s.logger.ErrorContext(ctx, "Failed to claim badge in DB",
			slog.String("userID", userID), slog.String("badgeID", badgeID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to claim badge: %w", err)
	}
	s.logger.InfoContext(ctx, "Badge claimed",
		slog.String("userID", userID), slog.String("badgeID", badgeID))
	return &badge, nil
}

func (s *PostgresBadgeStore) BumpIPSession(ctx context.Context, ip string) (int64, error) {
	query := `INSERT INTO ip_sessions (ip, session_count, first_seen, last_seen)
              VALUES ($1, 1, $2, $2)
              ON CONFLICT (ip) DO UPDATE SET
                session_count = ip_sessions.session_count + 1,
                last_seen = EXCLUDED.last_seen
              RETURNING session_count`

	var count int64
	if err := s.db.GetContext(ctx, &count, query, ip, time.Now().UTC()); err != nil {
		s.logger.ErrorContext(ctx, "Failed to bump IP session counter in DB",
			slog.String("ip", ip), slog.String("error", err.Error()))
		return 0, fmt.Errorf("failed to bump ip session counter: %w", err)
	}
	return count, nil
}
