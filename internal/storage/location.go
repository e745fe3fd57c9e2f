package storage

import (
	"context"
	"database/sql"

	"github.com/linemk/wolt-backend/internal/domain/models"
)

// LocationStorage - сохранённые адреса пользователя
type LocationStorage interface {
	GetLocations(ctx context.Context, userID int64) ([]*models.Location, error)
	GetLocationsTx(ctx context.Context, tx *sql.Tx, userID int64) ([]*models.Location, error)
	AddLocation(ctx context.Context, loc *models.Location) (*models.Location, error)
	// RemoveLocation удаляет адрес без учета регистра
	RemoveLocation(ctx context.Context, userID int64, address string) error
	// SetLastLocationTx делает адрес locationID единственным последним
	SetLastLocationTx(ctx context.Context, tx *sql.Tx, userID, locationID int64) error
}

type locationRepository struct {
	db *sql.DB
}

func NewLocationRepository(db *sql.DB) LocationStorage {
	return &locationRepository{db: db}
}

const locationQuery = `SELECT id, user_id, type, address, is_last FROM user_locations WHERE user_id = $1 ORDER BY id`

func (r *locationRepository) GetLocations(ctx context.Context, userID int64) ([]*models.Location, error) {
	rows, err := r.db.QueryContext(ctx, locationQuery, userID)
	if err != nil {
		return nil, err
	}
	return scanLocations(rows)
}

func (r *locationRepository) GetLocationsTx(ctx context.Context, tx *sql.Tx, userID int64) ([]*models.Location, error) {
	rows, err := tx.QueryContext(ctx, locationQuery, userID)
	if err != nil {
		return nil, err
	}
	return scanLocations(rows)
}

func scanLocations(rows *sql.Rows) ([]*models.Location, error) {
	defer rows.Close()

	locations := make([]*models.Location, 0)
	for rows.Next() {
		loc := &models.Location{}
		if err := rows.Scan(&loc.ID, &loc.UserID, &loc.Type, &loc.Address, &loc.IsLast); err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *locationRepository) AddLocation(ctx context.Context, loc *models.Location) (*models.Location, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO user_locations (user_id, type, address) VALUES ($1, $2, $3) RETURNING id`,
		loc.UserID, loc.Type, loc.Address,
	).Scan(&loc.ID)
	if err != nil {
		if isForeignKeyError(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return loc, nil
}

func (r *locationRepository) RemoveLocation(ctx context.Context, userID int64, address string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM user_locations WHERE user_id = $1 AND lower(address) = lower($2)`,
		userID, address,
	)
	if err != nil {
		return err
	}
	return expectAffected(res, ErrLocationNotFound)
}

func (r *locationRepository) SetLastLocationTx(ctx context.Context, tx *sql.Tx, userID, locationID int64) error {
	// сначала снимаем флаг со всех, иначе частичный уникальный индекс сработает посреди UPDATE
	if _, err := tx.ExecContext(ctx,
		`UPDATE user_locations SET is_last = FALSE WHERE user_id = $1 AND is_last`, userID,
	); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE user_locations SET is_last = TRUE WHERE user_id = $1 AND id = $2`, userID, locationID,
	)
	if err != nil {
		return err
	}
	return expectAffected(res, ErrLocationNotFound)
}
