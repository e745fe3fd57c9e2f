package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/linemk/wolt-backend/internal/domain/models"
	security "github.com/linemk/wolt-backend/internal/jwt-new"
	"github.com/linemk/wolt-backend/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	log       *slog.Logger
	userRepo  storage.UserStorage
	tokenTTL  time.Duration
	jwtSecret string
}

func NewAuthService(log *slog.Logger, userRepo storage.UserStorage, tokenTTL time.Duration, jwtSecret string) *AuthService {
	return &AuthService{
		log:       log,
		userRepo:  userRepo,
		tokenTTL:  tokenTTL,
		jwtSecret: jwtSecret,
	}
}

// SignupInput - данные регистрации, формат полей проверяет транспортный слой
type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

type AuthServiceInterface interface {
	Signup(ctx context.Context, in SignupInput) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context, userID int64) (*models.User, error)
}

// Signup создаёт пользователя и сразу выдаёт ему токен.
// Пароль хранится только в виде bcrypt-хэша.
func (a *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, string, error) {
	const op = "auth.Signup"
	logger := a.log.With(
		slog.String("op", op),
		slog.String("email", in.Email),
	)

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", slog.Any("error", err))
		return nil, "", fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	user, err := a.userRepo.CreateUser(ctx, &models.User{
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		PassHash:  passHash,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Photo:     models.DefaultPhoto,
	})
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			logger.Warn("user already exists")
		} else {
			logger.Error("failed to create user", slog.Any("error", err))
		}
		return nil, "", fmt.Errorf("%s: failed to create user: %w", op, fromStorage(err))
	}

	token, err := security.NewToken(user, a.tokenTTL, a.jwtSecret)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return nil, "", fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("user signed up", slog.Int64("userID", user.ID))
	return user, token, nil
}

// Login сверяет пароль с сохранённым хэшем и выдаёт JWT-токен
func (a *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	const op = "auth.Login"
	logger := a.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)
	logger.Info("checking user")

	user, err := a.userRepo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Warn("user not found")
			return "", fmt.Errorf("%s: %w", op, ErrUnauthorized)
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		logger.Warn("invalid password")
		return "", fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}

	token, err := security.NewToken(user, a.tokenTTL, a.jwtSecret)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("user logged in successfully", slog.Int64("userID", user.ID))
	return token, nil
}

func (a *AuthService) Me(ctx context.Context, userID int64) (*models.User, error) {
	const op = "auth.Me"

	user, err := a.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, storage.ErrUserNotFound) {
			a.log.Error("failed to get user", slog.String("op", op), slog.Any("error", err))
		}
		return nil, fmt.Errorf("%s: %w", op, fromStorage(err))
	}
	return user, nil
}
