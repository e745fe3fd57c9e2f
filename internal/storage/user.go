package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/wolt-backend/internal/domain/models"
)

type UserStorage interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	LockUserByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
}

const userColumns = "id, email, pass_hash, fname, lname, phone, photo"

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db: db}
}

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Email, &user.PassHash, &user.FirstName, &user.LastName, &user.Phone, &user.Photo)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// получение уже существующего пользователя
func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE lower(email) = lower($1)", email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, pass_hash, fname, lname, phone, photo)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		user.Email, user.PassHash, user.FirstName, user.LastName, user.Phone, user.Photo,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	user.ID = id
	return user, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, user *models.User) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET email = $1, fname = $2, lname = $3, phone = $4, photo = $5 WHERE id = $6`,
		user.Email, user.FirstName, user.LastName, user.Phone, user.Photo, user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return err
	}
	return expectAffected(res, ErrUserNotFound)
}

// DeleteUser удаляет пользователя, адреса, избранное и заказы уходят каскадом
func (r *userRepository) DeleteUser(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return err
	}
	return expectAffected(res, ErrUserNotFound)
}

// LockUserByIDTx блокирует строку пользователя до конца транзакции.
// Через эту блокировку сериализуются все изменения корзины пользователя между процессами.
func (r *userRepository) LockUserByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.User, error) {
	user, err := scanUser(tx.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1 FOR UPDATE NOWAIT", id))
	if err != nil {
		if isLockError(err) {
			return nil, fmt.Errorf("%w: %v", ErrLocked, err)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func expectAffected(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
