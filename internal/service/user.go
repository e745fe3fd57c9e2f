package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/linemk/wolt-backend/internal/domain/models"
	"github.com/linemk/wolt-backend/internal/storage"
)

// UserUpdate - частичное обновление профиля, nil-поля не меняются
type UserUpdate struct {
	Email     *string
	FirstName *string
	LastName  *string
	Phone     *string
	Photo     *string
}

type UserServiceInterface interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	UpdateUser(ctx context.Context, userID int64, upd UserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, userID int64) error

	Locations(ctx context.Context, userID int64) ([]*models.Location, error)
	AddLocation(ctx context.Context, userID int64, locType models.LocationType, address string) (*models.Location, error)
	RemoveLocation(ctx context.Context, userID int64, address string) error
	SetLastLocation(ctx context.Context, userID int64, address string) error
}

type userService struct {
	log      *slog.Logger
	txm      storage.TxManager
	userRepo storage.UserStorage
	locRepo  storage.LocationStorage
}

func NewUserService(log *slog.Logger, txm storage.TxManager, userRepo storage.UserStorage, locRepo storage.LocationStorage) UserServiceInterface {
	return &userService{
		log:      log,
		txm:      txm,
		userRepo: userRepo,
		locRepo:  locRepo,
	}
}

func (s *userService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	const op = "service.UserService.GetUser"

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, fromStorage(err))
	}
	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, userID int64, upd UserUpdate) (*models.User, error) {
	const op = "service.UserService.UpdateUser"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, fromStorage(err))
	}

	if upd.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*upd.Email))
	}
	if upd.FirstName != nil {
		if strings.TrimSpace(*upd.FirstName) == "" {
			return nil, fmt.Errorf("%s: %w", op, ValidationError("first name must not be empty"))
		}
		user.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		user.LastName = *upd.LastName
	}
	if upd.Phone != nil {
		user.Phone = *upd.Phone
	}
	if upd.Photo != nil {
		user.Photo = *upd.Photo
	}

	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		if !errors.Is(err, storage.ErrUserExists) {
			logger.Error("failed to update user", slog.Any("error", err))
		}
		return nil, fmt.Errorf("%s: %w", op, fromStorage(err))
	}

	logger.Info("user updated")
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, userID int64) error {
	const op = "service.UserService.DeleteUser"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	if err := s.userRepo.DeleteUser(ctx, userID); err != nil {
		if !errors.Is(err, storage.ErrUserNotFound) {
			logger.Error("failed to delete user", slog.Any("error", err))
		}
		return fmt.Errorf("%s: %w", op, fromStorage(err))
	}

	logger.Info("user deleted")
	return nil
}

func (s *userService) Locations(ctx context.Context, userID int64) ([]*models.Location, error) {
	const op = "service.UserService.Locations"

	locations, err := s.locRepo.GetLocations(ctx, userID)
	if err != nil {
		s.log.Error("failed to get locations", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return locations, nil
}

func (s *userService) AddLocation(ctx context.Context, userID int64, locType models.LocationType, address string) (*models.Location, error) {
	const op = "service.UserService.AddLocation"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	address = strings.TrimSpace(address)
	if !locType.Valid() {
		return nil, fmt.Errorf("%s: %w", op, ValidationError("location type must be one of Home, Work, Other"))
	}
	if address == "" {
		return nil, fmt.Errorf("%s: %w", op, ValidationError("address is required"))
	}

	existing, err := s.locRepo.GetLocations(ctx, userID)
	if err != nil {
		logger.Error("failed to get locations", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if findLocation(existing, address) != nil {
		return nil, fmt.Errorf("%s: %w", op, ValidationError("location already exists"))
	}

	loc, err := s.locRepo.AddLocation(ctx, &models.Location{UserID: userID, Type: locType, Address: address})
	if err != nil {
		logger.Error("failed to add location", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, fromStorage(err))
	}

	logger.Info("location added", slog.Int64("locationID", loc.ID))
	return loc, nil
}

func (s *userService) RemoveLocation(ctx context.Context, userID int64, address string) error {
	const op = "service.UserService.RemoveLocation"

	if err := s.locRepo.RemoveLocation(ctx, userID, strings.TrimSpace(address)); err != nil {
		if !errors.Is(err, storage.ErrLocationNotFound) {
			s.log.Error("failed to remove location", slog.String("op", op), slog.Any("error", err))
		}
		return fmt.Errorf("%s: %w", op, fromStorage(err))
	}
	return nil
}

// SetLastLocation делает адрес последним использованным, флаг снимается с остальных
func (s *userService) SetLastLocation(ctx context.Context, userID int64, address string) error {
	const op = "service.UserService.SetLastLocation"

	err := s.txm.RunInTx(ctx, func(tx *sql.Tx) error {
		locations, err := s.locRepo.GetLocationsTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		loc := findLocation(locations, address)
		if loc == nil {
			return NotFoundError("location not found")
		}
		return s.locRepo.SetLastLocationTx(ctx, tx, userID, loc.ID)
	})
	if err != nil {
		err = fromStorage(err)
		var svcErr *Error
		if !errors.As(err, &svcErr) {
			s.log.Error("failed to set last location", slog.String("op", op), slog.Any("error", err))
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
