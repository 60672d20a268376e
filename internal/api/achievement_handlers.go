package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sawkjz/cinelist/internal/store"
)

// GetAchievements re-evaluates the caller's badge eligibility and returns
// both the newly-or-still pending badges and the already claimed ones.
func (h *Handler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := userID(r)

	pending, err := h.achievements.Evaluate(ctx, callerID, clientIP(r))
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to evaluate achievements",
			slog.String("userID", callerID), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Failed to evaluate achievements")
		return
	}

	claimed, err := h.achievements.Claimed(ctx, callerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to load claimed badges",
			slog.String("userID", callerID), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Failed to load claimed badges")
		return
	}

	h.respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"pending": pending,
		"claimed": claimed,
	})
}

// ClaimBadge moves a pending badge to claimed for the caller.
func (h *Handler) ClaimBadge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := userID(r)
	badgeID := mux.Vars(r)["badgeId"]

	badge, err := h.achievements.Claim(ctx, callerID, badgeID)
	if err != nil {
		if errors.Is(err, store.ErrBadgeNotPending) {
			h.respondError(w, r, http.StatusConflict, "Badge is not pending for this user")
			return
		}
		h.logger.ErrorContext(ctx, "Failed to claim badge",
			slog.String("userID", callerID), slog.String("badgeID", badgeID), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Failed to claim badge")
		return
	}

	h.respondJSON(w, r, http.StatusOK, badge)
}
