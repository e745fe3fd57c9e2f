package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/wolt-backend/internal/domain/models"
	"github.com/linemk/wolt-backend/internal/service"
)

// UpdateUserRequest - частичное обновление, отсутствующие поля не меняются
type UpdateUserRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"fname" validate:"omitempty,max=64"`
	LastName  *string `json:"lname" validate:"omitempty,max=64"`
	Phone     *string `json:"phone" validate:"omitempty,min=9,max=16"`
	Photo     *string `json:"photo" validate:"omitempty,max=512"`
}

type LocationRequest struct {
	Type    string `json:"type" validate:"required,oneof=Home Work Other"`
	Address string `json:"address" validate:"required,max=256"`
}

type AddressRequest struct {
	Address string `json:"address" validate:"required"`
}

func GetUserHandler(log *slog.Logger, userService service.UserServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetUserHandler"
		logger := log.With(slog.String("op", op))

		id, ok := userID(w, r, logger)
		if !ok {
			return
		}

		user, err := userService.GetUser(r.Context(), id)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, map[string]any{"user": user})
	}
}

func UpdateUserHandler(log *slog.Logger, userService service.UserServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateUserHandler"
		logger := log.With(slog.String("op", op))

		id, ok := userID(w, r, logger)
		if !ok {
			return
		}

		var req UpdateUserRequest
		if err := decodeJSON(r, &req, false); err != nil {
			writeError(w, logger, err)
			return
		}

		user, err := userService.UpdateUser(r.Context(), id, service.UserUpdate{
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
			Photo:     req.Photo,
		})
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, map[string]any{"user": user})
	}
}

func DeleteUserHandler(log *slog.Logger, userService service.UserServiceInterface, cookie SessionCookie) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteUserHandler"
		logger := log.With(slog.String("op", op))

		id, ok := userID(w, r, logger)
		if !ok {
			return
		}

		if err := userService.DeleteUser(r.Context(), id); err != nil {
			writeError(w, logger, err)
			return
		}
		cookie.clear(w)
		writeMessage(w, logger, http.StatusOK, "user deleted")
	}
}

func CartHandler(log *slog.Logger, cartService service.CartServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CartHandler"
		logger := log.With(slog.String("op", op))

		id, ok := userID(w, r, logger)
		if !ok {
			return
		}

		cart, err := cartService.GetCart(r.Context(), id)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, map[string]any{"cart": cart})
	}
}

func LocationsHandler(log *slog.Logger, userService service.UserServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.LocationsHandler"
		logger := log.With(slog.String("op", op))

		id, ok := userID(w, r, logger)
		if !ok {
			return
		}

		locations, err := userService.Locations(r.Context(), id)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, map[string]any{"locations": locations})
	}
}

func AddLocationHandler(log *slog.Logger, userService service.UserServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddLocationHandler"
		logger := log.With(slog.String("op", op))

		id, ok := userID(w, r, logger)
		if !ok {
			return
		}

		var req LocationRequest
		if err := decodeJSON(r, &req, false); err != nil {
			writeError(w, logger, err)
			return
		}

		loc, err := userService.AddLocation(r.Context(), id, models.LocationType(req.Type), req.Address)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, map[string]any{"location": loc})
	}
}

func RemoveLocationHandler(log *slog.Logger, userService service.UserServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RemoveLocationHandler"
		logger := log.With(slog.String("op", op))

		id, ok := userID(w, r, logger)
		if !ok {
			return
		}

		var req AddressRequest
		if err := decodeJSON(r, &req, false); err != nil {
			writeError(w, logger, err)
			return
		}

		if err := userService.RemoveLocation(r.Context(), id, req.Address); err != nil {
			writeError(w, logger, err)
			return
		}
		writeMessage(w, logger, http.StatusOK, "location removed")
	}
}

func SetLastLocationHandler(log *slog.Logger, userService service.UserServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SetLastLocationHandler"
		logger := log.With(slog.String("op", op))

		id, ok := userID(w, r, logger)
		if !ok {
			return
		}

		var req AddressRequest
		if err := decodeJSON(r, &req, false); err != nil {
			writeError(w, logger, err)
			return
		}

		if err := userService.SetLastLocation(r.Context(), id, req.Address); err != nil {
			writeError(w, logger, err)
			return
		}
		writeMessage(w, logger, http.StatusOK, "last location updated")
	}
}
