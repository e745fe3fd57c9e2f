package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/wolt-backend/internal/domain/models"
	"github.com/linemk/wolt-backend/internal/storage"
)

type OrderServiceInterface interface {
	LastOrders(ctx context.Context, userID int64) ([]*models.Order, error)
	GetOrder(ctx context.Context, userID, orderID int64) (*models.Order, error)
	ShopOrders(ctx context.Context, userID, shopID int64) ([]*models.Order, error)
	RecordDelivery(ctx context.Context, userID, orderID int64, minutes int) (*DeliveryResult, error)
}

// DeliveryResult - итог записи времени доставки
type DeliveryResult struct {
	OrderID         int64   `json:"orderID"`
	DeliveringTime  int     `json:"deliveringTime"`
	BusinessID      int64   `json:"shop"`
	AvgDeliveryTime float64 `json:"avgDeliveryTime"`
}

type orderService struct {
	log       *slog.Logger
	txm       storage.TxManager
	orderRepo storage.OrderStorage
	itemRepo  storage.OrderItemStorage
	bizRepo   storage.BusinessStorage
}

func NewOrderService(
	log *slog.Logger,
	txm storage.TxManager,
	orderRepo storage.OrderStorage,
	itemRepo storage.OrderItemStorage,
	bizRepo storage.BusinessStorage,
) OrderServiceInterface {
	return &orderService{
		log:       log,
		txm:       txm,
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
		bizRepo:   bizRepo,
	}
}

// LastOrders - отправленные заказы пользователя, последние первыми
func (s *orderService) LastOrders(ctx context.Context, userID int64) ([]*models.Order, error) {
	const op = "service.OrderService.LastOrders"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	orders, err := s.orderRepo.GetOrdersByUserID(ctx, userID, true)
	if err != nil {
		logger.Error("failed to get orders", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get orders: %w", op, err)
	}
	if err := attachItems(ctx, s.itemRepo, orders); err != nil {
		logger.Error("failed to get order items", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get order items: %w", op, err)
	}
	return orders, nil
}

func (s *orderService) GetOrder(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	const op = "service.OrderService.GetOrder"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("orderID", orderID))

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if !errors.Is(err, storage.ErrOrderNotFound) {
			logger.Error("failed to get order", slog.Any("error", err))
		}
		return nil, fmt.Errorf("%s: %w", op, fromStorage(err))
	}
	if order.UserID != userID {
		logger.Warn("order belongs to another user")
		return nil, fmt.Errorf("%s: %w", op, ForbiddenError("order belongs to another user"))
	}

	if err := attachItems(ctx, s.itemRepo, []*models.Order{order}); err != nil {
		logger.Error("failed to get order items", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get order items: %w", op, err)
	}
	return order, nil
}

// ShopOrders - все заказы пользователя из одного заведения, включая корзину
func (s *orderService) ShopOrders(ctx context.Context, userID, shopID int64) ([]*models.Order, error) {
	const op = "service.OrderService.ShopOrders"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("shopID", shopID))

	orders, err := s.orderRepo.GetOrdersByUserAndBusiness(ctx, userID, shopID)
	if err != nil {
		logger.Error("failed to get orders", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get orders: %w", op, err)
	}
	if err := attachItems(ctx, s.itemRepo, orders); err != nil {
		logger.Error("failed to get order items", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get order items: %w", op, err)
	}
	return orders, nil
}

// RecordDelivery записывает фактическое время доставки отправленного заказа
// и в той же транзакции обновляет среднее время доставки заведения.
func (s *orderService) RecordDelivery(ctx context.Context, userID, orderID int64, minutes int) (*DeliveryResult, error) {
	const op = "service.OrderService.RecordDelivery"
	logger := s.log.With(
		slog.String("op", op),
		slog.Int64("userID", userID),
		slog.Int64("orderID", orderID),
		slog.Int("minutes", minutes),
	)

	if minutes <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ValidationError("delivering time must be positive"))
	}

	var res *DeliveryResult
	err := s.txm.RunInTx(ctx, func(tx *sql.Tx) error {
		order, err := s.orderRepo.LockOrderByIDTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		switch {
		case order.UserID != userID:
			return ForbiddenError("order belongs to another user")
		case !order.HasSent:
			return ValidationError("order has not been sent yet")
		case order.DeliveringTime != nil:
			return ValidationError("delivering time is already recorded")
		}

		if err := s.orderRepo.SetDeliveringTimeTx(ctx, tx, orderID, minutes); err != nil {
			return err
		}

		biz, err := s.bizRepo.LockBusinessByIDTx(ctx, tx, order.BusinessID)
		if err != nil {
			return err
		}
		avg := models.NextAverage(biz.AvgDeliveryTime, biz.DeliveredOrders, float64(minutes))
		if err := s.bizRepo.UpdateDeliveryStatsTx(ctx, tx, biz.ID, avg, biz.DeliveredOrders+1); err != nil {
			return err
		}

		res = &DeliveryResult{
			OrderID:         orderID,
			DeliveringTime:  minutes,
			BusinessID:      biz.ID,
			AvgDeliveryTime: avg,
		}
		return nil
	})
	if err != nil {
		err = fromStorage(err)
		var svcErr *Error
		if errors.As(err, &svcErr) {
			logger.Warn("delivery rejected", slog.Any("error", err))
		} else {
			logger.Error("failed to record delivery", slog.Any("error", err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("delivery recorded", slog.Float64("avgDeliveryTime", res.AvgDeliveryTime))
	return res, nil
}
