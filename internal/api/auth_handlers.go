package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/sawkjz/cinelist/internal/domain"
	"github.com/sawkjz/cinelist/internal/store"
	"github.com/sawkjz/cinelist/pkg/auth"
)

// Register creates a user account plus its empty display profile.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := h.validator.StructCtx(ctx, req); err != nil {
		h.logger.WarnContext(ctx, "Register request validation failed", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to hash password", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Failed to register user")
		return
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
	}
	if err := h.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrUserAlreadyExists) {
			h.respondError(w, r, http.StatusConflict, "A user with this email or username already exists")
			return
		}
		h.logger.ErrorContext(ctx, "Failed to create user", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Failed to register user")
		return
	}

	if err := h.profiles.Create(ctx, &domain.Profile{UserID: user.ID, FullName: req.Username}); err != nil {
		// The account exists; a missing profile row only degrades display data.
		h.logger.ErrorContext(ctx, "Failed to create profile for new user",
			slog.String("userID", user.ID), slog.String("error", err.Error()))
	}

	h.logger.InfoContext(ctx, "User registered", slog.String("userID", user.ID))
	h.respondJSON(w, r, http.StatusCreated, user)
}

// Login exchanges credentials for a session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := h.validator.StructCtx(ctx, req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	user, err := h.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			h.respondError(w, r, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.logger.ErrorContext(ctx, "Failed to load user for login", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Failed to log in")
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		h.logger.WarnContext(ctx, "Login failed: wrong password", slog.String("userID", user.ID))
		h.respondError(w, r, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := h.tokenManager.Generate(user.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to generate session token", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Failed to log in")
		return
	}

	h.logger.InfoContext(ctx, "User logged in", slog.String("userID", user.ID))
	h.respondJSON(w, r, http.StatusOK, domain.LoginResponse{User: user, Token: token})
}
