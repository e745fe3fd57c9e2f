package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/linemk/wolt-backend/internal/service"
)

// SignupRequest - регистрация нового пользователя
type SignupRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"fname" validate:"required,max=64"`
	LastName  string `json:"lname" validate:"max=64"`
	Phone     string `json:"phone" validate:"required,min=9,max=16"`
}

// AuthRequest представляет структуру запроса для аутентификации с тегами валидации
type AuthRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// SessionCookie - параметры cookie, в которую кладётся токен
type SessionCookie struct {
	Name string
	TTL  time.Duration
}

func (c SessionCookie) set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(c.TTL),
		MaxAge:   int(c.TTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (c SessionCookie) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func SignupHandler(log *slog.Logger, authService service.AuthServiceInterface, cookie SessionCookie) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SignupHandler"
		logger := log.With(slog.String("op", op))

		var req SignupRequest
		if err := decodeJSON(r, &req, false); err != nil {
			writeError(w, logger, err)
			return
		}

		user, token, err := authService.Signup(r.Context(), service.SignupInput{
			Email:     req.Email,
			Password:  req.Password,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
		})
		if err != nil {
			writeError(w, logger, err)
			return
		}

		cookie.set(w, token)
		writeJSON(w, logger, http.StatusCreated, map[string]any{
			"message": "user created",
			"user":    user,
			"token":   token,
		})
	}
}

// LoginHandler – HTTP-обработчик для аутентификации, принимает логгер и экземпляр AuthService
func LoginHandler(log *slog.Logger, authService service.AuthServiceInterface, cookie SessionCookie) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.LoginHandler"
		logger := log.With(slog.String("op", op))

		var req AuthRequest
		if err := decodeJSON(r, &req, false); err != nil {
			writeError(w, logger, err)
			return
		}

		// Вызов бизнес-логики для аутентификации
		token, err := authService.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		cookie.set(w, token)
		writeJSON(w, logger, http.StatusOK, map[string]any{"token": token})
	}
}

func LogoutHandler(log *slog.Logger, cookie SessionCookie) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.LogoutHandler"

		cookie.clear(w)
		writeMessage(w, log.With(slog.String("op", op)), http.StatusOK, "logged out")
	}
}

func MeHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.MeHandler"
		logger := log.With(slog.String("op", op))

		id, ok := userID(w, r, logger)
		if !ok {
			return
		}

		user, err := authService.Me(r.Context(), id)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, map[string]any{"user": user})
	}
}
