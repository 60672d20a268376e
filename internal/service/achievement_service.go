package service

import (
	"context"
	"log/slog"

	"github.com/sawkjz/cinelist/internal/domain"
	"github.com/sawkjz/cinelist/internal/store"
)

// Eligibility thresholds for the badge catalog.
const (
	reviewBadgeThreshold = 5
	listBadgeThreshold   = 3
	ipSessionThreshold   = 10
)

// IPResolver looks up the caller's public IP when the request itself did not
// carry a usable one.
type IPResolver interface {
	PublicIP(ctx context.Context) (string, error)
}

// PendingBadge is a badge the user became eligible for but has not yet
// claimed.
type PendingBadge struct {
	domain.BadgeDef
	State domain.BadgeState `json:"state"`
}

// AchievementService drives the per-badge state machine
// Locked -> Pending -> Claimed. Pending transitions are derived from live
// counters; Claimed is terminal and never re-evaluated.
type AchievementService struct {
	badges  store.BadgeStore
	reviews store.ReviewStore
	lists   store.ListStore
	ip      IPResolver
	logger  *slog.Logger
}

func NewAchievementService(badges store.BadgeStore, reviews store.ReviewStore, lists store.ListStore, ip IPResolver, logger *slog.Logger) *AchievementService {
	return &AchievementService{badges: badges, reviews: reviews, lists: lists, ip: ip, logger: logger}
}

// Evaluate re-checks all eligibility predicates for the user and records a
// Pending row for every newly-eligible badge. clientIP is the address seen
// on the request; when empty the resolver is asked, and a failed lookup
// closes the IP gate without failing the evaluation.
func (s *AchievementService) Evaluate(ctx context.Context, userID, clientIP string) ([]PendingBadge, error) {
	states, err := s.badges.States(ctx, userID)
	if err != nil {
		return nil, err
	}

	if states[domain.BadgeHeartCritic] == "" {
		count, err := s.reviews.CountByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		if count >= reviewBadgeThreshold {
			if err := s.badges.MarkPending(ctx, userID, domain.BadgeHeartCritic); err != nil {
				return nil, err
			}
			states[domain.BadgeHeartCritic] = domain.BadgePending
		}
	}

	if states[domain.BadgeListCurator] == "" {
		count, err := s.lists.CountByOwner(ctx, userID)
		if err != nil {
			return nil, err
		}
		if count >= listBadgeThreshold {
			if err := s.badges.MarkPending(ctx, userID, domain.BadgeListCurator); err != nil {
				return nil, err
			}
			states[domain.BadgeListCurator] = domain.BadgePending
		}
	}

	if states[domain.BadgeFirstTenLogins] == "" {
		if eligible := s.evaluateIPGate(ctx, clientIP); eligible {
			if err := s.badges.MarkPending(ctx, userID, domain.BadgeFirstTenLogins); err != nil {
				return nil, err
			}
			states[domain.BadgeFirstTenLogins] = domain.BadgePending
		}
	}

	return pendingFromStates(states), nil
}

// evaluateIPGate counts this session against the caller's IP and reports
// whether the IP is still within the first-N window. The gate fails closed:
// any lookup or counter error only logs.
func (s *AchievementService) evaluateIPGate(ctx context.Context, clientIP string) bool {
	ip := clientIP
	if ip == "" {
		resolved, err := s.ip.PublicIP(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "Public IP lookup failed, login badge gate stays closed",
				slog.String("error", err.Error()))
			return false
		}
		ip = resolved
	}

	count, err := s.badges.BumpIPSession(ctx, ip)
	if err != nil {
		s.logger.WarnContext(ctx, "IP session counter failed, login badge gate stays closed",
			slog.String("error", err.Error()))
		return false
	}
	return count <= ipSessionThreshold
}

// Claim moves a Pending badge to Claimed. Only an explicit user action lands
// here; anything not currently Pending is rejected.
func (s *AchievementService) Claim(ctx context.Context, userID, badgeID string) (*domain.UserBadge, error) {
	if _, ok := domain.BadgeDefByID(badgeID); !ok {
		return nil, store.ErrBadgeNotPending
	}
	badge, err := s.badges.Claim(ctx, userID, badgeID)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Badge claimed",
		slog.String("userID", userID), slog.String("badgeID", badgeID))
	return badge, nil
}

// Claimed returns the user's claimed badges with their catalog definitions.
func (s *AchievementService) Claimed(ctx context.Context, userID string) ([]domain.BadgeDef, error) {
	states, err := s.badges.States(ctx, userID)
	if err != nil {
		return nil, err
	}
	claimed := []domain.BadgeDef{}
	for _, def := range domain.BadgeCatalog {
		if states[def.ID] == domain.BadgeClaimed {
			claimed = append(claimed, def)
		}
	}
	return claimed, nil
}

func pendingFromStates(states map[string]domain.BadgeState) []PendingBadge {
	pending := []PendingBadge{}
	for _, def := range domain.BadgeCatalog {
		if states[def.ID] == domain.BadgePending {
			pending = append(pending, PendingBadge{BadgeDef: def, State: domain.BadgePending})
		}
	}
	return pending
}
