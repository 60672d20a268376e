package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sawkjz/cinelist/internal/domain"
	"github.com/sawkjz/cinelist/internal/store"
)

var (
	ErrEmptyListName = errors.New("list name cannot be empty")
	ErrNotListOwner  = errors.New("user does not own this list")
)

// ListService manages favorite lists and their movie associations.
// Duplicate prevention is delegated to the storage layer's unique
// constraint; this layer only enforces ownership and input shape.
type ListService struct {
	lists  store.ListStore
	logger *slog.Logger
}

func NewListService(lists store.ListStore, logger *slog.Logger) *ListService {
	return &ListService{lists: lists, logger: logger}
}

// CreateList creates a list for ownerID. status may be empty, defaulting to
// NONE.
func (s *ListService) CreateList(ctx context.Context, ownerID, name string, status domain.WatchStatus) (*domain.FavoriteList, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyListName
	}
	if status == "" {
		status = domain.StatusNone
	}

	list, err := s.lists.CreateList(ctx, &domain.FavoriteList{
		OwnerID: ownerID,
		Name:    name,
		Status:  status,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create list: %w", err)
	}
	s.logger.InfoContext(ctx, "Favorite list created",
		slog.Int64("listID", list.ID), slog.String("ownerID", ownerID))
	return list, nil
}

// ListsForOwner returns the owner's lists newest-first with their movie ids
// attached.
func (s *ListService) ListsForOwner(ctx context.Context, ownerID string) ([]*domain.FavoriteList, error) {
	lists, err := s.lists.ListsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for _, list := range lists {
		movieIDs, err := s.lists.MoviesInList(ctx, list.ID)
		if err != nil {
			return nil, err
		}
		list.MovieIDs = movieIDs
	}
	return lists, nil
}

func (s *ListService) CountForOwner(ctx context.Context, ownerID string) (int64, error) {
	return s.lists.CountByOwner(ctx, ownerID)
}

// AddMovie associates movieID with the list. Fails with
// store.ErrDuplicateMovieInList when the association already exists.
func (s *ListService) AddMovie(ctx context.Context, callerID string, listID, movieID int64) error {
	if err := s.requireOwner(ctx, callerID, listID); err != nil {
		return err
	}
	if err := s.lists.AddMovie(ctx, listID, movieID); err != nil {
		if errors.Is(err, store.ErrDuplicateMovieInList) {
			s.logger.WarnContext(ctx, "Duplicate movie rejected for list",
				slog.Int64("listID", listID), slog.Int64("movieID", movieID))
		}
		return err
	}
	s.logger.InfoContext(ctx, "Movie added to list",
		slog.Int64("listID", listID), slog.Int64("movieID", movieID))
	return nil
}

// RemoveMovie drops the association; absent associations are a no-op.
func (s *ListService) RemoveMovie(ctx context.Context, callerID string, listID, movieID int64) error {
	if err := s.requireOwner(ctx, callerID, listID); err != nil {
		return err
	}
	return s.lists.RemoveMovie(ctx, listID, movieID)
}

// DeleteList removes the list and, through the storage layer, all of its
// movie associations.
func (s *ListService) DeleteList(ctx context.Context, callerID string, listID int64) error {
	if err := s.requireOwner(ctx, callerID, listID); err != nil {
		return err
	}
	if err := s.lists.DeleteList(ctx, listID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Favorite list deleted", slog.Int64("listID", listID))
	return nil
}

func (s *ListService) MoviesInList(ctx context.Context, listID int64) ([]int64, error) {
	if _, err := s.lists.GetList(ctx, listID); err != nil {
		return nil, err
	}
	return s.lists.MoviesInList(ctx, listID)
}

func (s *ListService) requireOwner(ctx context.Context, callerID string, listID int64) error {
	list, err := s.lists.GetList(ctx, listID)
	if err != nil {
		return err
	}
	if list.OwnerID != callerID {
		return ErrNotListOwner
	}
	return nil
}
