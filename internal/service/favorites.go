package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/wolt-backend/internal/domain/models"
	"github.com/linemk/wolt-backend/internal/storage"
)

type FavoritesServiceInterface interface {
	List(ctx context.Context, userID int64) ([]*models.Business, error)
	IsFavorite(ctx context.Context, userID, businessID int64) (bool, error)
	Add(ctx context.Context, userID, businessID int64) error
	Remove(ctx context.Context, userID, businessID int64) error
}

type favoritesService struct {
	log     *slog.Logger
	favRepo storage.FavoriteStorage
}

func NewFavoritesService(log *slog.Logger, favRepo storage.FavoriteStorage) FavoritesServiceInterface {
	return &favoritesService{log: log, favRepo: favRepo}
}

func (s *favoritesService) List(ctx context.Context, userID int64) ([]*models.Business, error) {
	const op = "service.FavoritesService.List"

	list, err := s.favRepo.GetFavorites(ctx, userID)
	if err != nil {
		s.log.Error("failed to get favorites", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

func (s *favoritesService) IsFavorite(ctx context.Context, userID, businessID int64) (bool, error) {
	const op = "service.FavoritesService.IsFavorite"

	ok, err := s.favRepo.IsFavorite(ctx, userID, businessID)
	if err != nil {
		s.log.Error("failed to check favorite", slog.String("op", op), slog.Any("error", err))
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}

func (s *favoritesService) Add(ctx context.Context, userID, businessID int64) error {
	const op = "service.FavoritesService.Add"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("businessID", businessID))

	if err := s.favRepo.AddFavorite(ctx, userID, businessID); err != nil {
		if !errors.Is(err, storage.ErrAlreadyFavorite) && !errors.Is(err, storage.ErrBusinessNotFound) {
			logger.Error("failed to add favorite", slog.Any("error", err))
		}
		return fmt.Errorf("%s: %w", op, fromStorage(err))
	}
	logger.Info("favorite added")
	return nil
}

func (s *favoritesService) Remove(ctx context.Context, userID, businessID int64) error {
	const op = "service.FavoritesService.Remove"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("businessID", businessID))

	if err := s.favRepo.RemoveFavorite(ctx, userID, businessID); err != nil {
		if !errors.Is(err, storage.ErrNotFavorite) {
			logger.Error("failed to remove favorite", slog.Any("error", err))
		}
		return fmt.Errorf("%s: %w", op, fromStorage(err))
	}
	logger.Info("favorite removed")
	return nil
}
