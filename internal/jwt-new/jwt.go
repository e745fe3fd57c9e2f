package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/linemk/wolt-backend/internal/domain/models"
)

var ErrEmptySecret = errors.New("jwt secret is empty")

// NewToken генерирует JWT-токен для указанного пользователя с заданным временем жизни.
func NewToken(user *models.User, ttl time.Duration, secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   fmt.Sprintf("%d", user.ID),
		"email": user.Email,
		"jti":   uuid.NewString(),
		"exp":   now.Add(ttl).Unix(),
		"iat":   now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(secret))
}
