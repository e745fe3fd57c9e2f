package jwtmiddleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const UserIDKey contextKey = "userID"

// NewJWTMiddleware создаёт middleware для проверки JWT.
// Токен берется из cookie cookieName, если ее нет - из заголовка Authorization.
func NewJWTMiddleware(secret, cookieName string) func(http.Handler) http.Handler {
	if secret == "" {
		panic("jwt secret is not set")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, err := extractToken(r, cookieName)
			if err != nil {
				unauthorized(w, err.Error())
				return
			}

			// Парсинг и проверка токена
			token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(secret), nil
			}, jwt.WithExpirationRequired())
			if err != nil || !token.Valid {
				unauthorized(w, "invalid token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				unauthorized(w, "invalid token claims")
				return
			}

			// Извлекаем идентификатор пользователя из поля "sub"
			sub, ok := claims["sub"].(string)
			if !ok {
				unauthorized(w, "invalid token claims: sub not found")
				return
			}

			userID, err := strconv.ParseInt(sub, 10, 64)
			if err != nil {
				unauthorized(w, "invalid token claims: invalid user id")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request, cookieName string) (string, error) {
	if cookieName != "" {
		if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
			return c.Value, nil
		}
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("missing token")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("invalid token format")
	}
	return parts[1], nil
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "Error",
		"message": msg,
	})
}

// FromContext извлекает userID из контекста.
func FromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDKey).(int64)
	return id, ok
}
