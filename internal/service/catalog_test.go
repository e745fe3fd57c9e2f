package service_test

import (
	"context"
	"testing"

	"github.com/linemk/wolt-backend/internal/domain/models"
	"github.com/linemk/wolt-backend/internal/lib/logger"
	"github.com/linemk/wolt-backend/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogService(store *memStore) service.CatalogServiceInterface {
	return service.NewCatalogService(logger.Discard(), store, store, store, store)
}

func TestCatalogService_ListBusinesses(t *testing.T) {
	store := newMemStore()
	svc := newCatalogService(store)
	ctx := context.Background()

	store.addBusiness("Pizza Napoli", 0, 0)
	marketID := store.addBusiness("Corner Market", 0, 0)
	market := store.businesses[marketID]
	market.Type = models.BusinessStore
	market.Categories = []string{"groceries"}
	store.businesses[marketID] = market

	all, err := svc.ListBusinesses(ctx, service.BusinessFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	stores, err := svc.ListBusinesses(ctx, service.BusinessFilter{Type: models.BusinessStore})
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, "Corner Market", stores[0].Name)

	pizza, err := svc.ListBusinesses(ctx, service.BusinessFilter{Category: "pizza", City: "tel aviv"})
	require.NoError(t, err)
	require.Len(t, pizza, 1)
	assert.Equal(t, "Pizza Napoli", pizza[0].Name)

	_, err = svc.ListBusinesses(ctx, service.BusinessFilter{Type: "bar"})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestCatalogService_GetMenuGroupsSections(t *testing.T) {
	store := newMemStore()
	svc := newCatalogService(store)
	shopID := store.addBusiness("Pizza Napoli", 0, 0)
	store.menu = []models.MenuItem{
		{ID: 1, BusinessID: shopID, SectionTitle: "Mains", Name: "Pizza", Price: decimal.NewFromInt(50)},
		{ID: 2, BusinessID: shopID, SectionTitle: "Drinks", Name: "Cola", Price: decimal.NewFromInt(10)},
		{ID: 3, BusinessID: shopID, SectionTitle: "Mains", Name: "Pasta", Price: decimal.NewFromInt(45)},
		{ID: 4, BusinessID: 999, SectionTitle: "Mains", Name: "Burger", Price: decimal.NewFromInt(40)},
	}

	sections, err := svc.GetMenu(context.Background(), shopID)
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "Mains", sections[0].Title)
	assert.Len(t, sections[0].Items, 2)
	assert.Equal(t, "Drinks", sections[1].Title)

	_, err = svc.GetMenu(context.Background(), 999)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestCatalogService_Reviews(t *testing.T) {
	store, cart := newCartEnv()
	svc := newCatalogService(store)
	ctx := context.Background()
	userID := store.addUser("u@example.com")
	shopID := store.addBusiness("Pizza Napoli", 0, 0)

	// без отправленного заказа отзыв оставить нельзя
	_, err := svc.AddReview(ctx, userID, shopID, 8, "great")
	assert.ErrorIs(t, err, service.ErrForbidden)

	placeOrder(t, cart, userID, shopID)

	_, err = svc.AddReview(ctx, userID, shopID, 11, "too much")
	assert.ErrorIs(t, err, service.ErrValidation)
	_, err = svc.AddReview(ctx, userID, shopID, 0, "too little")
	assert.ErrorIs(t, err, service.ErrValidation)
	_, err = svc.AddReview(ctx, userID, 999, 5, "")
	assert.ErrorIs(t, err, service.ErrNotFound)

	review, err := svc.AddReview(ctx, userID, shopID, 8, " great ")
	require.NoError(t, err)
	assert.Equal(t, "great", review.Comment)
	_, err = svc.AddReview(ctx, userID, shopID, 4, "")
	require.NoError(t, err)

	details, err := svc.GetBusiness(ctx, shopID)
	require.NoError(t, err)
	assert.Equal(t, "Pizza Napoli", details.Name)
	assert.Equal(t, 6.0, details.Rating)
	assert.Equal(t, 2, details.ReviewsCount)

	reviews, err := svc.Reviews(ctx, shopID)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}

func TestFavoritesService(t *testing.T) {
	store := newMemStore()
	svc := service.NewFavoritesService(logger.Discard(), store)
	ctx := context.Background()
	userID := store.addUser("u@example.com")
	shopID := store.addBusiness("Pizza Napoli", 0, 0)

	fav, err := svc.IsFavorite(ctx, userID, shopID)
	require.NoError(t, err)
	assert.False(t, fav)

	require.NoError(t, svc.Add(ctx, userID, shopID))
	assert.ErrorIs(t, svc.Add(ctx, userID, shopID), service.ErrValidation)
	assert.ErrorIs(t, svc.Add(ctx, userID, 999), service.ErrNotFound)

	list, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, shopID, list[0].ID)

	require.NoError(t, svc.Remove(ctx, userID, shopID))
	assert.ErrorIs(t, svc.Remove(ctx, userID, shopID), service.ErrValidation)

	list, err = svc.List(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
