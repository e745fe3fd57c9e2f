package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/linemk/wolt-backend/internal/domain/models"
)

type OrderItemStorage interface {
	// GetItemsByOrderIDs загружает позиции сразу нескольких заказов
	GetItemsByOrderIDs(ctx context.Context, orderIDs []int64) ([]*models.OrderItem, error)
	GetItemsByOrderIDTx(ctx context.Context, tx *sql.Tx, orderID int64) ([]*models.OrderItem, error)
	CreateItemTx(ctx context.Context, tx *sql.Tx, item *models.OrderItem) (*models.OrderItem, error)
	UpdateItemQuantityTx(ctx context.Context, tx *sql.Tx, id int64, quantity int) error
	DeleteItemTx(ctx context.Context, tx *sql.Tx, id int64) error
}

const orderItemColumns = `id, order_id, menu_id, name, image, description, section_title,
	price_per_unit, quantity, extras`

type orderItemRepository struct {
	db *sql.DB
}

func NewOrderItemRepository(db *sql.DB) OrderItemStorage {
	return &orderItemRepository{db: db}
}

func scanOrderItems(rows *sql.Rows) ([]*models.OrderItem, error) {
	defer rows.Close()

	items := make([]*models.OrderItem, 0)
	for rows.Next() {
		it := &models.OrderItem{}
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuID, &it.Name, &it.Image, &it.Description,
			&it.SectionTitle, &it.PricePerUnit, &it.Quantity, pq.Array(&it.Extras)); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *orderItemRepository) GetItemsByOrderIDs(ctx context.Context, orderIDs []int64) ([]*models.OrderItem, error) {
	if len(orderIDs) == 0 {
		return []*models.OrderItem{}, nil
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+orderItemColumns+" FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, id",
		pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	return scanOrderItems(rows)
}

func (r *orderItemRepository) GetItemsByOrderIDTx(ctx context.Context, tx *sql.Tx, orderID int64) ([]*models.OrderItem, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT "+orderItemColumns+" FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	if err != nil {
		return nil, err
	}
	return scanOrderItems(rows)
}

func (r *orderItemRepository) CreateItemTx(ctx context.Context, tx *sql.Tx, item *models.OrderItem) (*models.OrderItem, error) {
	extras := item.Extras
	if extras == nil {
		extras = []string{}
	}
	err := tx.QueryRowContext(ctx,
		`INSERT INTO order_items (order_id, menu_id, name, image, description, section_title, price_per_unit, quantity, extras)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		item.OrderID, item.MenuID, item.Name, item.Image, item.Description, item.SectionTitle,
		item.PricePerUnit, item.Quantity, pq.Array(extras),
	).Scan(&item.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return nil, fmt.Errorf("failed to create order item: %w", err)
	}
	item.Extras = extras
	return item, nil
}

func (r *orderItemRepository) UpdateItemQuantityTx(ctx context.Context, tx *sql.Tx, id int64, quantity int) error {
	res, err := tx.ExecContext(ctx, "UPDATE order_items SET quantity = $1 WHERE id = $2", quantity, id)
	if err != nil {
		return err
	}
	return expectAffected(res, ErrItemNotFound)
}

func (r *orderItemRepository) DeleteItemTx(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM order_items WHERE id = $1", id)
	if err != nil {
		return err
	}
	return expectAffected(res, ErrItemNotFound)
}
