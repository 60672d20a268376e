package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawkjz/cinelist/internal/domain"
	"github.com/sawkjz/cinelist/internal/store"
)

type stubIPResolver struct {
	ip  string
	err error
}

func (s *stubIPResolver) PublicIP(ctx context.Context) (string, error) {
	return s.ip, s.err
}

type achievementFixture struct {
	svc     *AchievementService
	badges  *store.MockBadgeStore
	reviews *store.MockReviewStore
	lists   *store.MockListStore
	ip      *stubIPResolver
}

func newAchievementFixture(t *testing.T) *achievementFixture {
	t.Helper()
	badges := store.NewMockBadgeStore()
	reviews := store.NewMockReviewStore()
	lists := store.NewMockListStore()
	ip := &stubIPResolver{ip: "203.0.113.7"}
	return &achievementFixture{
		svc:     NewAchievementService(badges, reviews, lists, ip, discardLogger()),
		badges:  badges,
		reviews: reviews,
		lists:   lists,
		ip:      ip,
	}
}

func (f *achievementFixture) seedReviews(t *testing.T, userID string, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		_, err := f.reviews.Upsert(context.Background(), &domain.Review{
			UserID: userID,
			TMDBID: int64(1000 + i),
			Rating: 8,
		})
		require.NoError(t, err)
	}
}

func (f *achievementFixture) seedLists(t *testing.T, userID string, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		_, err := f.lists.CreateList(context.Background(), &domain.FavoriteList{
			OwnerID: userID,
			Name:    fmt.Sprintf("Lista %d", i+1),
			Status:  domain.StatusNone,
		})
		require.NoError(t, err)
	}
}

func pendingIDs(badges []PendingBadge) []string {
	ids := make([]string, 0, len(badges))
	for _, b := range badges {
		ids = append(ids, b.ID)
	}
	return ids
}

func TestEvaluateBelowThresholdsStaysLocked(t *testing.T) {
	f := newAchievementFixture(t)
	f.seedReviews(t, "user-1", 4)
	f.seedLists(t, "user-1", 2)
	// Burn the IP window with other sessions first.
	for i := 0; i < 10; i++ {
		_, err := f.badges.BumpIPSession(context.Background(), "203.0.113.7")
		require.NoError(t, err)
	}

	pending, err := f.svc.Evaluate(context.Background(), "user-1", "203.0.113.7")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestEvaluateMarksReviewBadgePending(t *testing.T) {
	f := newAchievementFixture(t)
	f.seedReviews(t, "user-1", 5)

	pending, err := f.svc.Evaluate(context.Background(), "user-1", "")
	require.NoError(t, err)
	assert.Contains(t, pendingIDs(pending), domain.BadgeHeartCritic)
}

func TestEvaluateMarksListBadgePending(t *testing.T) {
	f := newAchievementFixture(t)
	f.seedLists(t, "user-1", 3)

	pending, err := f.svc.Evaluate(context.Background(), "user-1", "")
	require.NoError(t, err)
	assert.Contains(t, pendingIDs(pending), domain.BadgeListCurator)
}

func TestIPGateWithinWindow(t *testing.T) {
	f := newAchievementFixture(t)

	pending, err := f.svc.Evaluate(context.Background(), "user-1", "198.51.100.4")
	require.NoError(t, err)
	assert.Contains(t, pendingIDs(pending), domain.BadgeFirstTenLogins)
}

func TestIPGateClosesAfterTenSessions(t *testing.T) {
	f := newAchievementFixture(t)
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		_, err := f.badges.BumpIPSession(ctx, "198.51.100.4")
		require.NoError(t, err)
	}

	pending, err := f.svc.Evaluate(ctx, "user-1", "198.51.100.4")
	require.NoError(t, err)
	assert.NotContains(t, pendingIDs(pending), domain.BadgeFirstTenLogins)
}

func TestIPGateFailsClosedOnLookupError(t *testing.T) {
	f := newAchievementFixture(t)
	f.ip.err = errors.New("ipify unreachable")

	// No client IP on the request forces the resolver; its failure must not
	// fail the whole evaluation.
	pending, err := f.svc.Evaluate(context.Background(), "user-1", "")
	require.NoError(t, err)
	assert.NotContains(t, pendingIDs(pending), domain.BadgeFirstTenLogins)
}

func TestClaimPendingBadge(t *testing.T) {
	f := newAchievementFixture(t)
	ctx := context.Background()
	f.seedReviews(t, "user-1", 5)

	_, err := f.svc.Evaluate(ctx, "user-1", "203.0.113.7")
	require.NoError(t, err)

	badge, err := f.svc.Claim(ctx, "user-1", domain.BadgeHeartCritic)
	require.NoError(t, err)
	assert.Equal(t, domain.BadgeClaimed, badge.State)

	claimed, err := f.svc.Claimed(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, domain.BadgeHeartCritic, claimed[0].ID)
}

func TestClaimRejectsLockedBadge(t *testing.T) {
	f := newAchievementFixture(t)

	_, err := f.svc.Claim(context.Background(), "user-1", domain.BadgeHeartCritic)
	assert.ErrorIs(t, err, store.ErrBadgeNotPending)
}

func TestClaimRejectsUnknownBadge(t *testing.T) {
	f := newAchievementFixture(t)

	_, err := f.svc.Claim(context.Background(), "user-1", "no-such-badge")
	assert.ErrorIs(t, err, store.ErrBadgeNotPending)
}

func TestClaimedBadgeNeverReturnsToPending(t *testing.T) {
	f := newAchievementFixture(t)
	ctx := context.Background()
	f.seedReviews(t, "user-1", 5)

	_, err := f.svc.Evaluate(ctx, "user-1", "203.0.113.7")
	require.NoError(t, err)
	_, err = f.svc.Claim(ctx, "user-1", domain.BadgeHeartCritic)
	require.NoError(t, err)

	// Still above threshold; re-evaluation must leave the claimed badge
	// alone.
	pending, err := f.svc.Evaluate(ctx, "user-1", "203.0.113.7")
	require.NoError(t, err)
	assert.NotContains(t, pendingIDs(pending), domain.BadgeHeartCritic)

	_, err = f.svc.Claim(ctx, "user-1", domain.BadgeHeartCritic)
	assert.ErrorIs(t, err, store.ErrBadgeNotPending)

	claimed, err := f.svc.Claimed(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, claimed, 1)
}

func TestClaimIsNotGrantedByEvaluationAlone(t *testing.T) {
	f := newAchievementFixture(t)
	ctx := context.Background()
	f.seedReviews(t, "user-1", 5)

	_, err := f.svc.Evaluate(ctx, "user-1", "203.0.113.7")
	require.NoError(t, err)

	claimed, err := f.svc.Claimed(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, claimed)
}
