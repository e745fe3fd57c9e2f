package storage

import (
	"context"
	"database/sql"

	"github.com/linemk/wolt-backend/internal/domain/models"
)

type FavoriteStorage interface {
	GetFavorites(ctx context.Context, userID int64) ([]*models.Business, error)
	IsFavorite(ctx context.Context, userID, businessID int64) (bool, error)
	AddFavorite(ctx context.Context, userID, businessID int64) error
	RemoveFavorite(ctx context.Context, userID, businessID int64) error
}

type favoriteRepository struct {
	db *sql.DB
}

func NewFavoriteRepository(db *sql.DB) FavoriteStorage {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) GetFavorites(ctx context.Context, userID int64) ([]*models.Business, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT b.id, b.type, b.name, b.description, b.cover_image, b.address_name, b.address_zip,
		        b.city, b.phone, b.website, b.categories, b.avg_delivery_time, b.delivered_orders
		 FROM favorites f
		 JOIN businesses b ON b.id = f.business_id
		 WHERE f.user_id = $1
		 ORDER BY f.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	businesses := make([]*models.Business, 0)
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, err
		}
		businesses = append(businesses, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return businesses, nil
}

func (r *favoriteRepository) IsFavorite(ctx context.Context, userID, businessID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND business_id = $2)`,
		userID, businessID,
	).Scan(&exists)
	return exists, err
}

func (r *favoriteRepository) AddFavorite(ctx context.Context, userID, businessID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO favorites (user_id, business_id) VALUES ($1, $2)`, userID, businessID)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return ErrAlreadyFavorite
	case isForeignKeyError(err):
		return ErrBusinessNotFound
	default:
		return err
	}
}

func (r *favoriteRepository) RemoveFavorite(ctx context.Context, userID, businessID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND business_id = $2`, userID, businessID)
	if err != nil {
		return err
	}
	return expectAffected(res, ErrNotFavorite)
}
