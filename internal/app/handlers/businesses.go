package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/wolt-backend/internal/domain/models"
	"github.com/linemk/wolt-backend/internal/service"
)

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=10"`
	Comment string `json:"comment" validate:"max=1000"`
}

// ListBusinessesHandler - GET /businesses?type=&city=&category=
func ListBusinessesHandler(log *slog.Logger, catalog service.CatalogServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListBusinessesHandler"
		logger := log.With(slog.String("op", op))

		q := r.URL.Query()
		list, err := catalog.ListBusinesses(r.Context(), service.BusinessFilter{
			Type:     models.BusinessType(q.Get("type")),
			City:     q.Get("city"),
			Category: q.Get("category"),
		})
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, map[string]any{"businesses": list})
	}
}

func GetBusinessHandler(log *slog.Logger, catalog service.CatalogServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetBusinessHandler"
		logger := log.With(slog.String("op", op))

		id, err := idParam(r, "id")
		if err != nil {
			writeError(w, logger, err)
			return
		}

		biz, err := catalog.GetBusiness(r.Context(), id)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, map[string]any{"business": biz})
	}
}

func MenuHandler(log *slog.Logger, catalog service.CatalogServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.MenuHandler"
		logger := log.With(slog.String("op", op))

		id, err := idParam(r, "id")
		if err != nil {
			writeError(w, logger, err)
			return
		}

		menu, err := catalog.GetMenu(r.Context(), id)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, map[string]any{"menu": menu})
	}
}

func ReviewsHandler(log *slog.Logger, catalog service.CatalogServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ReviewsHandler"
		logger := log.With(slog.String("op", op))

		id, err := idParam(r, "id")
		if err != nil {
			writeError(w, logger, err)
			return
		}

		reviews, err := catalog.Reviews(r.Context(), id)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, map[string]any{
			"reviews": reviews,
			"rating":  models.AverageRating(reviews),
		})
	}
}

func AddReviewHandler(log *slog.Logger, catalog service.CatalogServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddReviewHandler"
		logger := log.With(slog.String("op", op))

		uid, ok := userID(w, r, logger)
		if !ok {
			return
		}
		id, err := idParam(r, "id")
		if err != nil {
			writeError(w, logger, err)
			return
		}

		var req ReviewRequest
		if err := decodeJSON(r, &req, false); err != nil {
			writeError(w, logger, err)
			return
		}

		review, err := catalog.AddReview(r.Context(), uid, id, req.Rating, req.Comment)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusCreated, map[string]any{"review": review})
	}
}

// ShopOrdersHandler - заказы пользователя из заведения, новые первыми
func ShopOrdersHandler(log *slog.Logger, orderService service.OrderServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ShopOrdersHandler"
		logger := log.With(slog.String("op", op))

		uid, ok := userID(w, r, logger)
		if !ok {
			return
		}
		id, err := idParam(r, "id")
		if err != nil {
			writeError(w, logger, err)
			return
		}

		orders, err := orderService.ShopOrders(r.Context(), uid, id)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, map[string]any{"orders": orders})
	}
}
