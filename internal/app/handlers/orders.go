package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/wolt-backend/internal/service"
	"github.com/shopspring/decimal"
)

// EditOrderRequest - установить количество позиции меню в заказе заведения.
// price и quantity обязательны, quantity 0 удаляет позицию.
type EditOrderRequest struct {
	ShopID       int64            `json:"shopID" validate:"required,gt=0"`
	MenuID       int64            `json:"menuID" validate:"required,gt=0"`
	ItemName     string           `json:"itemName" validate:"required,max=128"`
	ItemImg      string           `json:"itemImg" validate:"required,max=512"`
	ItemDesc     string           `json:"itemDesc" validate:"max=1024"`
	Price        *decimal.Decimal `json:"price" validate:"required"`
	Quantity     *int             `json:"quantity" validate:"required,gte=0"`
	SectionTitle string           `json:"sectionTitle" validate:"required,max=128"`
	Extras       []string         `json:"extras" validate:"omitempty,dive,max=128"`
}

type SendOrdersRequest struct {
	CurrentAddress string `json:"currentAddress"`
}

type DeliveredRequest struct {
	DeliveringTime int `json:"deliveringTime" validate:"required,gt=0"`
}

// EditOrderHandler отвечает 201, если появился заказ или позиция, и 200 в остальных случаях
func EditOrderHandler(log *slog.Logger, cartService service.CartServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.EditOrderHandler"
		logger := log.With(slog.String("op", op))

		id, ok := userID(w, r, logger)
		if !ok {
			return
		}

		var req EditOrderRequest
		if err := decodeJSON(r, &req, false); err != nil {
			writeError(w, logger, err)
			return
		}

		res, err := cartService.EditOrder(r.Context(), id, service.EditOrderInput{
			ShopID:          req.ShopID,
			MenuItemID:      req.MenuID,
			SectionTitle:    req.SectionTitle,
			ItemName:        req.ItemName,
			ItemImage:       req.ItemImg,
			ItemDescription: req.ItemDesc,
			PricePerUnit:    *req.Price,
			Quantity:        *req.Quantity,
			Extras:          req.Extras,
		})
		if err != nil {
			writeError(w, logger, err)
			return
		}

		code := http.StatusOK
		if res.Outcome == service.OutcomeOrderCreated || res.Outcome == service.OutcomeItemAdded {
			code = http.StatusCreated
		}
		writeJSON(w, logger, code, map[string]any{
			"message":    string(res.Outcome),
			"orderID":    res.OrderID,
			"totalPrice": res.TotalPrice,
		})
	}
}

// SendOrdersHandler оформляет корзину, тело с currentAddress необязательно
func SendOrdersHandler(log *slog.Logger, cartService service.CartServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SendOrdersHandler"
		logger := log.With(slog.String("op", op))

		id, ok := userID(w, r, logger)
		if !ok {
			return
		}

		var req SendOrdersRequest
		if r.Body != nil && r.Body != http.NoBody {
			if err := decodeJSON(r, &req, true); err != nil {
				writeError(w, logger, err)
				return
			}
		}

		sent, err := cartService.SendOrders(r.Context(), id, req.CurrentAddress)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, map[string]any{
			"message": "orders sent",
			"sent":    sent,
		})
	}
}

func LastOrdersHandler(log *slog.Logger, orderService service.OrderServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.LastOrdersHandler"
		logger := log.With(slog.String("op", op))

		id, ok := userID(w, r, logger)
		if !ok {
			return
		}

		orders, err := orderService.LastOrders(r.Context(), id)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, map[string]any{"orders": orders})
	}
}

func GetOrderHandler(log *slog.Logger, orderService service.OrderServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetOrderHandler"
		logger := log.With(slog.String("op", op))

		id, ok := userID(w, r, logger)
		if !ok {
			return
		}
		orderID, err := idParam(r, "id")
		if err != nil {
			writeError(w, logger, err)
			return
		}

		order, err := orderService.GetOrder(r.Context(), id, orderID)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, map[string]any{"order": order})
	}
}

func DeliveredHandler(log *slog.Logger, orderService service.OrderServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeliveredHandler"
		logger := log.With(slog.String("op", op))

		id, ok := userID(w, r, logger)
		if !ok {
			return
		}
		orderID, err := idParam(r, "id")
		if err != nil {
			writeError(w, logger, err)
			return
		}

		var req DeliveredRequest
		if err := decodeJSON(r, &req, false); err != nil {
			writeError(w, logger, err)
			return
		}

		res, err := orderService.RecordDelivery(r.Context(), id, orderID, req.DeliveringTime)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, map[string]any{"delivery": res})
	}
}
