package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/linemk/wolt-backend/internal/domain/models"
)

// BusinessFilter - необязательные фильтры списка заведений, пустое поле не фильтрует
type BusinessFilter struct {
	Type     models.BusinessType
	City     string
	Category string
}

type BusinessStorage interface {
	ListBusinesses(ctx context.Context, filter BusinessFilter) ([]*models.Business, error)
	GetBusinessByID(ctx context.Context, id int64) (*models.Business, error)
	LockBusinessByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Business, error)
	// UpdateDeliveryStatsTx записывает новое среднее время доставки и число доставленных заказов
	UpdateDeliveryStatsTx(ctx context.Context, tx *sql.Tx, id int64, avg float64, delivered int) error
}

const businessColumns = `id, type, name, description, cover_image, address_name, address_zip,
	city, phone, website, categories, avg_delivery_time, delivered_orders`

type businessRepository struct {
	db *sql.DB
}

func NewBusinessRepository(db *sql.DB) BusinessStorage {
	return &businessRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBusiness(s scanner) (*models.Business, error) {
	b := &models.Business{}
	err := s.Scan(&b.ID, &b.Type, &b.Name, &b.Description, &b.CoverImage, &b.Address.Name, &b.Address.Zip,
		&b.City, &b.Phone, &b.Website, pq.Array(&b.Categories), &b.AvgDeliveryTime, &b.DeliveredOrders)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *businessRepository) ListBusinesses(ctx context.Context, filter BusinessFilter) ([]*models.Business, error) {
	var (
		where []string
		args  []any
	)
	if filter.Type != "" {
		args = append(args, filter.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.City != "" {
		args = append(args, filter.City)
		where = append(where, fmt.Sprintf("lower(city) = lower($%d)", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("$%d = ANY(categories)", len(args)))
	}

	query := "SELECT " + businessColumns + " FROM businesses"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name"

	rows, err := r.db.QueryContext(ctx, query, args...)
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

func (r *businessRepository) GetBusinessByID(ctx context.Context, id int64) (*models.Business, error) {
	b, err := scanBusiness(r.db.QueryRowContext(ctx,
		"SELECT "+businessColumns+" FROM businesses WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	return b, nil
}

// LockBusinessByIDTx ждет освобождения строки, доставки одного заведения пишутся по очереди
func (r *businessRepository) LockBusinessByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Business, error) {
	b, err := scanBusiness(tx.QueryRowContext(ctx,
		"SELECT "+businessColumns+" FROM businesses WHERE id = $1 FOR UPDATE", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *businessRepository) UpdateDeliveryStatsTx(ctx context.Context, tx *sql.Tx, id int64, avg float64, delivered int) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE businesses SET avg_delivery_time = $1, delivered_orders = $2 WHERE id = $3`,
		avg, delivered, id,
	)
	if err != nil {
		return err
	}
	return expectAffected(res, ErrBusinessNotFound)
}
