package storage

import (
	"context"
	"database/sql"

	"github.com/linemk/wolt-backend/internal/domain/models"
)

type MenuStorage interface {
	// GetMenu возвращает позиции меню, сгруппированные по разделам
	GetMenu(ctx context.Context, businessID int64) ([]*models.MenuItem, error)
}

type menuRepository struct {
	db *sql.DB
}

func NewMenuRepository(db *sql.DB) MenuStorage {
	return &menuRepository{db: db}
}

func (r *menuRepository) GetMenu(ctx context.Context, businessID int64) ([]*models.MenuItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, business_id, section_title, name, image, description, price
		 FROM menu_items WHERE business_id = $1 ORDER BY section_title, id`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*models.MenuItem, 0)
	for rows.Next() {
		item := &models.MenuItem{}
		if err := rows.Scan(&item.ID, &item.BusinessID, &item.SectionTitle, &item.Name,
			&item.Image, &item.Description, &item.Price); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
