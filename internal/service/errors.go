package service

import (
	"errors"

	"github.com/linemk/wolt-backend/internal/storage"
)

// Виды ошибок сервисного слоя, по ним транспорт выбирает HTTP-код
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("invalid credentials")
)

// Error - ошибка с понятным клиенту сообщением.
// errors.Is находит и вид ошибки, и исходную ошибку хранилища.
type Error struct {
	kind  error
	msg   string
	cause error
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

func ValidationError(msg string) error {
	return &Error{kind: ErrValidation, msg: msg}
}

func NotFoundError(msg string) error {
	return &Error{kind: ErrNotFound, msg: msg}
}

func ForbiddenError(msg string) error {
	return &Error{kind: ErrForbidden, msg: msg}
}

// fromStorage переводит sentinel-ошибки хранилища в ошибки сервиса, прочие возвращает как есть
func fromStorage(err error) error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return err
	}

	switch {
	case errors.Is(err, storage.ErrUserNotFound),
		errors.Is(err, storage.ErrBusinessNotFound),
		errors.Is(err, storage.ErrOrderNotFound),
		errors.Is(err, storage.ErrItemNotFound),
		errors.Is(err, storage.ErrLocationNotFound):
		return &Error{kind: ErrNotFound, msg: rootMessage(err), cause: err}
	case errors.Is(err, storage.ErrUserExists):
		return &Error{kind: ErrConflict, msg: storage.ErrUserExists.Error(), cause: err}
	case errors.Is(err, storage.ErrLocked):
		return &Error{kind: ErrConflict, msg: storage.ErrLocked.Error(), cause: err}
	case errors.Is(err, storage.ErrConflict):
		return &Error{kind: ErrConflict, msg: storage.ErrConflict.Error(), cause: err}
	case errors.Is(err, storage.ErrAlreadyFavorite):
		return &Error{kind: ErrValidation, msg: storage.ErrAlreadyFavorite.Error(), cause: err}
	case errors.Is(err, storage.ErrNotFavorite):
		return &Error{kind: ErrValidation, msg: storage.ErrNotFavorite.Error(), cause: err}
	}
	return err
}

func rootMessage(err error) string {
	for _, sentinel := range []error{
		storage.ErrUserNotFound,
		storage.ErrBusinessNotFound,
		storage.ErrOrderNotFound,
		storage.ErrItemNotFound,
		storage.ErrLocationNotFound,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
