package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/linemk/wolt-backend/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/wolt-backend/internal/service"
)

const (
	StatusSuccess = "Success"
	StatusError   = "Error"
)

var validate = validator.New()

// errBadRequest - тело запроса не разобрать или оно не прошло валидацию
var errBadRequest = errors.New("bad request")

// writeJSON отвечает конвертом {"status": "Success", ...fields}
func writeJSON(w http.ResponseWriter, log *slog.Logger, code int, fields map[string]any) {
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["status"] = StatusSuccess

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("failed to encode response", slog.Any("error", err))
	}
}

func writeMessage(w http.ResponseWriter, log *slog.Logger, code int, msg string) {
	writeJSON(w, log, code, map[string]any{"message": msg})
}

func writeFail(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  StatusError,
		"message": msg,
	})
}

// writeError выбирает HTTP-код по виду ошибки сервиса.
// Текст внутренних ошибок клиенту не отдаётся.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, service.ErrValidation):
		code = http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		code = http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		code = http.StatusConflict
	}

	msg := "internal server error"
	var svcErr *service.Error
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		msg = reqErr.msg
	case errors.As(err, &svcErr):
		msg = svcErr.Error()
	case code == http.StatusUnauthorized:
		msg = service.ErrUnauthorized.Error()
	case code != http.StatusInternalServerError:
		msg = strings.ToLower(http.StatusText(code))
	}

	if code == http.StatusInternalServerError {
		log.Error("request failed", slog.Any("error", err))
	} else {
		log.Warn("request rejected", slog.Int("code", code), slog.Any("error", err))
	}
	writeFail(w, code, msg)
}

type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }
func (e *requestError) Unwrap() error { return errBadRequest }

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

// decodeJSON читает тело в dst и проверяет теги validate.
// Пустое тело допустимо только при allowEmpty.
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			return badRequest("invalid request body")
		}
	}
	if err := validate.Struct(dst); err != nil {
		return badRequest("%s", validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "validation error"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("field %s is required", fe.Field()))
		case "email":
			parts = append(parts, fmt.Sprintf("field %s must be a valid email", fe.Field()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("field %s must be one of: %s", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("field %s is invalid (%s=%s)", fe.Field(), fe.Tag(), fe.Param()))
		}
	}
	return strings.Join(parts, ", ")
}

// userID достаёт пользователя, которого положил jwtmiddleware
func userID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (int64, bool) {
	id, ok := jwtmiddleware.FromContext(r.Context())
	if !ok {
		log.Error("userID not found in context")
		writeFail(w, http.StatusUnauthorized, "unauthorized")
	}
	return id, ok
}

func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid %s: %q", name, raw)
	}
	return id, nil
}
