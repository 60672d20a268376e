package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/sawkjz/cinelist/internal/domain"
	"github.com/sawkjz/cinelist/internal/store"
	"github.com/sawkjz/cinelist/internal/validation"
)

// GetMyProfile returns the caller's display profile.
func (h *Handler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	h.getProfile(w, r, userID(r))
}

// GetPublicProfile returns another user's display profile.
func (h *Handler) GetPublicProfile(w http.ResponseWriter, r *http.Request) {
	h.getProfile(w, r, mux.Vars(r)["userId"])
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request, profileUserID string) {
	ctx := r.Context()

	profile, err := h.profiles.GetByUserID(ctx, profileUserID)
	if err != nil {
		if errors.Is(err, store.ErrProfileNotFound) {
			h.respondError(w, r, http.StatusNotFound, "Profile not found")
			return
		}
		h.logger.ErrorContext(ctx, "Failed to load profile",
			slog.String("userID", profileUserID), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Failed to retrieve profile")
		return
	}

	reviewCount, err := h.reviews.CountByUser(ctx, profileUserID)
	if err != nil {
		h.logger.WarnContext(ctx, "Failed to count reviews for profile", slog.String("error", err.Error()))
	}
	listCount, err := h.lists.CountForOwner(ctx, profileUserID)
	if err != nil {
		h.logger.WarnContext(ctx, "Failed to count lists for profile", slog.String("error", err.Error()))
	}

	h.respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"profile":      profile,
		"review_count": reviewCount,
		"list_count":   listCount,
	})
}

// UpdateMyProfile updates the caller's display name and bio.
func (h *Handler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := userID(r)

	var req domain.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := h.validator.StructCtx(ctx, req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	profile, err := h.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		if errors.Is(err, store.ErrProfileNotFound) {
			h.respondError(w, r, http.StatusNotFound, "Profile not found")
			return
		}
		h.respondError(w, r, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	if req.FullName != nil {
		profile.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Bio != nil {
		profile.Bio = strings.TrimSpace(*req.Bio)
	}

	if err := h.profiles.Update(ctx, profile); err != nil {
		h.logger.ErrorContext(ctx, "Failed to update profile",
			slog.String("userID", callerID), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	h.respondJSON(w, r, http.StatusOK, profile)
}

// UploadAvatar accepts a multipart image, validates it, stores it under the
// caller's avatar path and persists the public URL on the profile.
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := userID(r)

	if err := r.ParseMultipartForm(validation.AvatarConstraints.MaxSize); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid multipart payload")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Missing avatar file")
		return
	}
	defer file.Close()

	if err := validation.ValidateFile(header, validation.AvatarConstraints); err != nil {
		h.logger.WarnContext(ctx, "Avatar upload rejected",
			slog.String("userID", callerID), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	path := fmt.Sprintf("avatars/%s/%s%s", callerID, uuid.NewString(), ext)
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := h.uploads.Save(ctx, path, contentType, file); err != nil {
		h.logger.ErrorContext(ctx, "Failed to store avatar",
			slog.String("userID", callerID), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadGateway, "Failed to store avatar")
		return
	}

	url := h.uploads.URL(path)
	if err := h.profiles.SetAvatarURL(ctx, callerID, url); err != nil {
		h.logger.ErrorContext(ctx, "Failed to persist avatar URL",
			slog.String("userID", callerID), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Failed to update profile avatar")
		return
	}

	h.logger.InfoContext(ctx, "Avatar uploaded", slog.String("userID", callerID))
	h.respondJSON(w, r, http.StatusOK, map[string]string{"avatar_url": url})
}
