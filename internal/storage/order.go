package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/linemk/wolt-backend/internal/domain/models"
	"github.com/shopspring/decimal"
)

// OrderStorage описывает методы для работы с заказами.
// Позиции заказов хранятся отдельно, см. OrderItemStorage.
type OrderStorage interface {
	// GetCartTx возвращает неотправленные заказы пользователя, новые первыми
	GetCartTx(ctx context.Context, tx *sql.Tx, userID int64) ([]*models.Order, error)
	// GetOrdersByUserID возвращает отправленные (sent == true) или неотправленные заказы пользователя
	GetOrdersByUserID(ctx context.Context, userID int64, sent bool) ([]*models.Order, error)
	GetOrdersByUserAndBusiness(ctx context.Context, userID, businessID int64) ([]*models.Order, error)
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	LockOrderByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Order, error)
	HasSentOrderFromBusiness(ctx context.Context, userID, businessID int64) (bool, error)

	CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) (*models.Order, error)
	DeleteOrderTx(ctx context.Context, tx *sql.Tx, id int64) error
	UpdateOrderTotalTx(ctx context.Context, tx *sql.Tx, id int64, total decimal.Decimal) error
	// MarkCartSentTx отправляет все заказы из корзины и возвращает их количество
	MarkCartSentTx(ctx context.Context, tx *sql.Tx, userID int64, address string, sentAt time.Time) (int64, error)
	SetDeliveringTimeTx(ctx context.Context, tx *sql.Tx, id int64, minutes int) error
}

const orderColumns = `id, user_id, business_id, has_sent, total_price, delivery_address,
	delivering_time, created_at, sent_at`

// orderRepository - конкретная реализация OrderStorage.
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт новый репозиторий заказов.
func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

func scanOrder(s scanner) (*models.Order, error) {
	o := &models.Order{}
	err := s.Scan(&o.ID, &o.UserID, &o.BusinessID, &o.HasSent, &o.TotalPrice, &o.DeliveryAddress,
		&o.DeliveringTime, &o.CreatedAt, &o.SentAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func scanOrders(rows *sql.Rows) ([]*models.Order, error) {
	defer rows.Close()

	orders := make([]*models.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) GetCartTx(ctx context.Context, tx *sql.Tx, userID int64) ([]*models.Order, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE user_id = $1 AND NOT has_sent ORDER BY created_at DESC, id DESC",
		userID)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

func (r *orderRepository) GetOrdersByUserID(ctx context.Context, userID int64, sent bool) ([]*models.Order, error) {
	order := "created_at DESC, id DESC"
	if sent {
		order = "sent_at DESC, id DESC"
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE user_id = $1 AND has_sent = $2 ORDER BY "+order,
		userID, sent)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

func (r *orderRepository) GetOrdersByUserAndBusiness(ctx context.Context, userID, businessID int64) ([]*models.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE user_id = $1 AND business_id = $2 ORDER BY created_at DESC, id DESC",
		userID, businessID)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) LockOrderByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Order, error) {
	o, err := scanOrder(tx.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1 FOR UPDATE", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) HasSentOrderFromBusiness(ctx context.Context, userID, businessID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE user_id = $1 AND business_id = $2 AND has_sent)`,
		userID, businessID,
	).Scan(&exists)
	return exists, err
}

// CreateOrderTx вставляет пустой заказ, позиции добавляются отдельно в той же транзакции
func (r *orderRepository) CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) (*models.Order, error) {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO orders (user_id, business_id, total_price) VALUES ($1, $2, $3) RETURNING id, created_at`,
		order.UserID, order.BusinessID, order.TotalPrice,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			// второй неотправленный заказ в том же заведении
			return nil, fmt.Errorf("%w: %v", ErrConflict, err)
		case isForeignKeyError(err):
			return nil, ErrBusinessNotFound
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return order, nil
}

func (r *orderRepository) DeleteOrderTx(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", id)
	if err != nil {
		return err
	}
	return expectAffected(res, ErrOrderNotFound)
}

func (r *orderRepository) UpdateOrderTotalTx(ctx context.Context, tx *sql.Tx, id int64, total decimal.Decimal) error {
	res, err := tx.ExecContext(ctx, "UPDATE orders SET total_price = $1 WHERE id = $2", total, id)
	if err != nil {
		return err
	}
	return expectAffected(res, ErrOrderNotFound)
}

func (r *orderRepository) MarkCartSentTx(ctx context.Context, tx *sql.Tx, userID int64, address string, sentAt time.Time) (int64, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE orders SET has_sent = TRUE, sent_at = $1, delivery_address = $2
		 WHERE user_id = $3 AND NOT has_sent`,
		sentAt, address, userID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *orderRepository) SetDeliveringTimeTx(ctx context.Context, tx *sql.Tx, id int64, minutes int) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE orders SET delivering_time = $1 WHERE id = $2 AND has_sent AND delivering_time IS NULL",
		minutes, id)
	if err != nil {
		return err
	}
	return expectAffected(res, ErrOrderNotFound)
}
