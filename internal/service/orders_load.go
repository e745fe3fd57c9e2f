package service

import (
	"context"

	"github.com/linemk/wolt-backend/internal/domain/models"
	"github.com/linemk/wolt-backend/internal/storage"
)

// attachItems загружает позиции заказов одним запросом и пересчитывает суммы
func attachItems(ctx context.Context, repo storage.OrderItemStorage, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(orders))
	byID := make(map[int64]*models.Order, len(orders))
	for _, o := range orders {
		o.Items = make([]*models.OrderItem, 0)
		ids = append(ids, o.ID)
		byID[o.ID] = o
	}

	items, err := repo.GetItemsByOrderIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, it := range items {
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}

	for _, o := range orders {
		o.RecalculateTotal()
	}
	return nil
}
