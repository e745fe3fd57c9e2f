package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order - корзина пользователя в рамках одного заведения.
// Пока HasSent == false заказ находится в корзине.
type Order struct {
	ID              int64        `json:"id"`
	UserID          int64        `json:"user"`
	BusinessID      int64        `json:"shop"`
	Items           []*OrderItem `json:"items"`
	HasSent         bool         `json:"hasSent"`
	CreatedAt       time.Time    `json:"createdAt"`
	SentAt          *time.Time   `json:"sentAt,omitempty"`
	DeliveryAddress string       `json:"deliveryAddress,omitempty"`
	// DeliveringTime - фактическое время доставки в минутах
	DeliveringTime *int `json:"deliveringTime,omitempty"`
	// TotalPrice всегда пересчитывается из Items, см. RecalculateTotal
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// RecalculateTotal пересчитывает TotalPrice по позициям заказа и возвращает его
func (o *Order) RecalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.TotalPrice())
	}
	o.TotalPrice = total
	return total
}

// FindItem ищет позицию по паре (раздел меню, название)
func (o *Order) FindItem(sectionTitle, name string) (int, *OrderItem) {
	for i, item := range o.Items {
		if item.SectionTitle == sectionTitle && item.Name == name {
			return i, item
		}
	}
	return -1, nil
}

// RemoveItem убирает позицию с индексом idx
func (o *Order) RemoveItem(idx int) {
	o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
}

// OrderItem - одна строка заказа, снимок позиции меню на момент добавления
type OrderItem struct {
	ID           int64           `json:"id"`
	OrderID      int64           `json:"order"`
	MenuID       int64           `json:"menu"`
	Name         string          `json:"name"`
	Image        string          `json:"image"`
	Description  string          `json:"description,omitempty"`
	SectionTitle string          `json:"sectionTitle"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
	Quantity     int             `json:"quantity"`
	Extras       []string        `json:"extras"`
}

// TotalPrice - стоимость строки
func (i *OrderItem) TotalPrice() decimal.Decimal {
	return i.PricePerUnit.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
