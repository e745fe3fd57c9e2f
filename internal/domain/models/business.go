package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BusinessType различает рестораны и магазины
type BusinessType string

const (
	BusinessRestaurant BusinessType = "restaurant"
	BusinessStore      BusinessType = "store"
)

func (t BusinessType) Valid() bool {
	return t == BusinessRestaurant || t == BusinessStore
}

// Address - адрес заведения
type Address struct {
	Name string `json:"name"`
	Zip  string `json:"zip"`
}

// Business - ресторан или магазин
type Business struct {
	ID          int64        `json:"id"`
	Type        BusinessType `json:"type"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	CoverImage  string       `json:"coverImage"`
	Address     Address      `json:"address"`
	City        string       `json:"city"`
	Phone       string       `json:"phoneNumber"`
	Website     string       `json:"website,omitempty"`
	Categories  []string     `json:"categories"`
	// AvgDeliveryTime - среднее время доставки в минутах по доставленным заказам
	AvgDeliveryTime float64 `json:"avgDeliveryTime"`
	// DeliveredOrders - сколько заказов вошло в AvgDeliveryTime
	DeliveredOrders int `json:"-"`
}

// Review - отзыв пользователя о заведении
type Review struct {
	ID         int64     `json:"id"`
	BusinessID int64     `json:"-"`
	UserID     int64     `json:"user"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

const (
	MinRating = 1
	MaxRating = 10
)

// AverageRating считает средний рейтинг, для пустого списка - 0
func AverageRating(reviews []*Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}

// NextAverage добавляет значение к скользящему среднему по count элементам
func NextAverage(avg float64, count int, value float64) float64 {
	if count <= 0 {
		return value
	}
	return (avg*float64(count) + value) / float64(count+1)
}

// MenuItem - позиция меню заведения
type MenuItem struct {
	ID           int64           `json:"id"`
	BusinessID   int64           `json:"-"`
	SectionTitle string          `json:"sectionTitle"`
	Name         string          `json:"name"`
	Image        string          `json:"image,omitempty"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
}
