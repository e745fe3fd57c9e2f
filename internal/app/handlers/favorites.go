package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/wolt-backend/internal/service"
)

type FavoriteRequest struct {
	BusinessID int64 `json:"businessID" validate:"required,gt=0"`
}

func FavoritesHandler(log *slog.Logger, favService service.FavoritesServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.FavoritesHandler"
		logger := log.With(slog.String("op", op))

		id, ok := userID(w, r, logger)
		if !ok {
			return
		}

		list, err := favService.List(r.Context(), id)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, map[string]any{"favorites": list})
	}
}

func IsFavoriteHandler(log *slog.Logger, favService service.FavoritesServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.IsFavoriteHandler"
		logger := log.With(slog.String("op", op))

		id, ok := userID(w, r, logger)
		if !ok {
			return
		}
		businessID, err := idParam(r, "id")
		if err != nil {
			writeError(w, logger, err)
			return
		}

		fav, err := favService.IsFavorite(r.Context(), id, businessID)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, map[string]any{"isFavorite": fav})
	}
}

func AddFavoriteHandler(log *slog.Logger, favService service.FavoritesServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddFavoriteHandler"
		logger := log.With(slog.String("op", op))

		id, ok := userID(w, r, logger)
		if !ok {
			return
		}

		var req FavoriteRequest
		if err := decodeJSON(r, &req, false); err != nil {
			writeError(w, logger, err)
			return
		}

		if err := favService.Add(r.Context(), id, req.BusinessID); err != nil {
			writeError(w, logger, err)
			return
		}
		writeMessage(w, logger, http.StatusOK, "added to favorites")
	}
}

func RemoveFavoriteHandler(log *slog.Logger, favService service.FavoritesServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RemoveFavoriteHandler"
		logger := log.With(slog.String("op", op))

		id, ok := userID(w, r, logger)
		if !ok {
			return
		}

		var req FavoriteRequest
		if err := decodeJSON(r, &req, false); err != nil {
			writeError(w, logger, err)
			return
		}

		if err := favService.Remove(r.Context(), id, req.BusinessID); err != nil {
			writeError(w, logger, err)
			return
		}
		writeMessage(w, logger, http.StatusOK, "removed from favorites")
	}
}
