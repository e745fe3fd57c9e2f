package models_test

import (
	"testing"

	"github.com/linemk/wolt-backend/internal/domain/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrder_RecalculateTotal(t *testing.T) {
	order := &models.Order{
		Items: []*models.OrderItem{
			{SectionTitle: "Mains", Name: "Pizza", PricePerUnit: decimal.NewFromInt(50), Quantity: 2},
			{SectionTitle: "Drinks", Name: "Cola", PricePerUnit: decimal.RequireFromString("9.90"), Quantity: 1},
		},
	}

	total := order.RecalculateTotal()
	assert.True(t, decimal.RequireFromString("109.90").Equal(total))
	assert.True(t, total.Equal(order.TotalPrice))

	// Пустой заказ стоит 0
	empty := &models.Order{}
	assert.True(t, decimal.Zero.Equal(empty.RecalculateTotal()))
}

func TestOrder_FindAndRemoveItem(t *testing.T) {
	order := &models.Order{
		Items: []*models.OrderItem{
			{ID: 1, SectionTitle: "Mains", Name: "Pizza"},
			{ID: 2, SectionTitle: "Specials", Name: "Pizza"},
		},
	}

	idx, item := order.FindItem("Specials", "Pizza")
	assert.Equal(t, 1, idx)
	assert.Equal(t, int64(2), item.ID)

	// Одноимённая позиция в другом разделе - другая строка
	idx, item = order.FindItem("Drinks", "Pizza")
	assert.Equal(t, -1, idx)
	assert.Nil(t, item)

	order.RemoveItem(0)
	assert.Len(t, order.Items, 1)
	assert.Equal(t, int64(2), order.Items[0].ID)
}

func TestAverageRating(t *testing.T) {
	assert.Equal(t, 0.0, models.AverageRating(nil))
	reviews := []*models.Review{{Rating: 10}, {Rating: 7}, {Rating: 4}}
	assert.Equal(t, 7.0, models.AverageRating(reviews))
}

func TestNextAverage(t *testing.T) {
	assert.Equal(t, 30.0, models.NextAverage(0, 0, 30))
	assert.Equal(t, 25.0, models.NextAverage(30, 1, 20))
	// (20*3 + 40) / 4
	assert.Equal(t, 25.0, models.NextAverage(20, 3, 40))
}

func TestLocationType_Valid(t *testing.T) {
	assert.True(t, models.LocationHome.Valid())
	assert.True(t, models.LocationType("Other").Valid())
	assert.False(t, models.LocationType("home").Valid())
}
