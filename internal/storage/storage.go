package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user with this email or phone already exists")
	ErrLocationNotFound = errors.New("location not found")
	ErrBusinessNotFound = errors.New("business not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrItemNotFound     = errors.New("order item not found")
	ErrAlreadyFavorite  = errors.New("business is already in favorites")
	ErrNotFavorite      = errors.New("business is not in favorites")

	// ErrLocked - строка заблокирована другой транзакцией (FOR UPDATE NOWAIT)
	ErrLocked = errors.New("resource is locked, please try again")
	// ErrConflict - параллельная запись нарушила уникальный индекс
	ErrConflict = errors.New("concurrent modification, please try again")
)

// коды ошибок postgres
const (
	codeLockNotAvailable    = "55P03"
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func isLockError(err error) bool       { return pqCode(err) == codeLockNotAvailable }
func isUniqueViolation(err error) bool { return pqCode(err) == codeUniqueViolation }
func isForeignKeyError(err error) bool { return pqCode(err) == codeForeignKeyViolation }

// TxManager выполняет функцию внутри одной транзакции.
// Если fn вернула ошибку, транзакция откатывается, иначе коммитится.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

type txManager struct {
	db *sql.DB
}

func NewTxManager(db *sql.DB) TxManager {
	return &txManager{db: db}
}

func (m *txManager) RunInTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("transaction rollback failed: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
