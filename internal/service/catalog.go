package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/linemk/wolt-backend/internal/domain/models"
	"github.com/linemk/wolt-backend/internal/storage"
)

type BusinessFilter = storage.BusinessFilter

// BusinessDetails - заведение вместе с рейтингом, который считается по отзывам
type BusinessDetails struct {
	*models.Business
	Rating       float64 `json:"rating"`
	ReviewsCount int     `json:"reviewsCount"`
}

// MenuSection - раздел меню с позициями
type MenuSection struct {
	Title string             `json:"title"`
	Items []*models.MenuItem `json:"items"`
}

type CatalogServiceInterface interface {
	ListBusinesses(ctx context.Context, filter BusinessFilter) ([]*models.Business, error)
	GetBusiness(ctx context.Context, id int64) (*BusinessDetails, error)
	GetMenu(ctx context.Context, id int64) ([]*MenuSection, error)
	Reviews(ctx context.Context, id int64) ([]*models.Review, error)
	AddReview(ctx context.Context, userID, businessID int64, rating int, comment string) (*models.Review, error)
}

type catalogService struct {
	log        *slog.Logger
	bizRepo    storage.BusinessStorage
	menuRepo   storage.MenuStorage
	reviewRepo storage.ReviewStorage
	orderRepo  storage.OrderStorage
}

func NewCatalogService(
	log *slog.Logger,
	bizRepo storage.BusinessStorage,
	menuRepo storage.MenuStorage,
	reviewRepo storage.ReviewStorage,
	orderRepo storage.OrderStorage,
) CatalogServiceInterface {
	return &catalogService{
		log:        log,
		bizRepo:    bizRepo,
		menuRepo:   menuRepo,
		reviewRepo: reviewRepo,
		orderRepo:  orderRepo,
	}
}

func (s *catalogService) ListBusinesses(ctx context.Context, filter BusinessFilter) ([]*models.Business, error) {
	const op = "service.CatalogService.ListBusinesses"

	if filter.Type != "" && !filter.Type.Valid() {
		return nil, fmt.Errorf("%s: %w", op, ValidationError("type must be restaurant or store"))
	}
	filter.City = strings.TrimSpace(filter.City)
	filter.Category = strings.TrimSpace(filter.Category)

	list, err := s.bizRepo.ListBusinesses(ctx, filter)
	if err != nil {
		s.log.Error("failed to list businesses", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

func (s *catalogService) GetBusiness(ctx context.Context, id int64) (*BusinessDetails, error) {
	const op = "service.CatalogService.GetBusiness"

	biz, err := s.getBusiness(ctx, op, id)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviewRepo.GetReviews(ctx, id)
	if err != nil {
		s.log.Error("failed to get reviews", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &BusinessDetails{
		Business:     biz,
		Rating:       models.AverageRating(reviews),
		ReviewsCount: len(reviews),
	}, nil
}

// GetMenu группирует позиции по разделам в порядке их появления
func (s *catalogService) GetMenu(ctx context.Context, id int64) ([]*MenuSection, error) {
	const op = "service.CatalogService.GetMenu"

	if _, err := s.getBusiness(ctx, op, id); err != nil {
		return nil, err
	}

	items, err := s.menuRepo.GetMenu(ctx, id)
	if err != nil {
		s.log.Error("failed to get menu", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sections := make([]*MenuSection, 0)
	byTitle := make(map[string]*MenuSection)
	for _, item := range items {
		sec, ok := byTitle[item.SectionTitle]
		if !ok {
			sec = &MenuSection{Title: item.SectionTitle}
			byTitle[item.SectionTitle] = sec
			sections = append(sections, sec)
		}
		sec.Items = append(sec.Items, item)
	}
	return sections, nil
}

func (s *catalogService) Reviews(ctx context.Context, id int64) ([]*models.Review, error) {
	const op = "service.CatalogService.Reviews"

	if _, err := s.getBusiness(ctx, op, id); err != nil {
		return nil, err
	}

	reviews, err := s.reviewRepo.GetReviews(ctx, id)
	if err != nil {
		s.log.Error("failed to get reviews", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return reviews, nil
}

// AddReview - оставить отзыв можно только заведению, из которого был отправлен заказ
func (s *catalogService) AddReview(ctx context.Context, userID, businessID int64, rating int, comment string) (*models.Review, error) {
	const op = "service.CatalogService.AddReview"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("businessID", businessID))

	if rating < models.MinRating || rating > models.MaxRating {
		return nil, fmt.Errorf("%s: %w", op, ValidationError(
			fmt.Sprintf("rating must be between %d and %d", models.MinRating, models.MaxRating)))
	}

	if _, err := s.getBusiness(ctx, op, businessID); err != nil {
		return nil, err
	}

	ordered, err := s.orderRepo.HasSentOrderFromBusiness(ctx, userID, businessID)
	if err != nil {
		logger.Error("failed to check orders", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ordered {
		logger.Warn("review without order")
		return nil, fmt.Errorf("%s: %w", op, ForbiddenError("only customers who ordered from this business can review it"))
	}

	review, err := s.reviewRepo.CreateReview(ctx, &models.Review{
		BusinessID: businessID,
		UserID:     userID,
		Rating:     rating,
		Comment:    strings.TrimSpace(comment),
	})
	if err != nil {
		logger.Error("failed to create review", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, fromStorage(err))
	}

	logger.Info("review added", slog.Int("rating", rating))
	return review, nil
}

func (s *catalogService) getBusiness(ctx context.Context, op string, id int64) (*models.Business, error) {
	biz, err := s.bizRepo.GetBusinessByID(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrBusinessNotFound) {
			s.log.Error("failed to get business", slog.String("op", op), slog.Any("error", err))
		}
		return nil, fmt.Errorf("%s: %w", op, fromStorage(err))
	}
	return biz, nil
}
