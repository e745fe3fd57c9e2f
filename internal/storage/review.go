package storage

import (
	"context"
	"database/sql"

	"github.com/linemk/wolt-backend/internal/domain/models"
)

type ReviewStorage interface {
	GetReviews(ctx context.Context, businessID int64) ([]*models.Review, error)
	CreateReview(ctx context.Context, review *models.Review) (*models.Review, error)
}

type reviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) ReviewStorage {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) GetReviews(ctx context.Context, businessID int64) ([]*models.Review, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, business_id, user_id, rating, comment, created_at
		 FROM reviews WHERE business_id = $1 ORDER BY created_at DESC`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := make([]*models.Review, 0)
	for rows.Next() {
		rv := &models.Review{}
		if err := rows.Scan(&rv.ID, &rv.BusinessID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) CreateReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO reviews (business_id, user_id, rating, comment)
		 VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		review.BusinessID, review.UserID, review.Rating, review.Comment,
	).Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		if isForeignKeyError(err) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	return review, nil
}
