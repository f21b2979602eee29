package services

import (
	"time"

	"coffee-orders/internal/domain"
)

func CreateMockOrder(id string, status domain.OrderStatus, createdAt time.Time) domain.Order {
	items := CreateMockItems()
	return domain.Order{
		ID:        id,
		Items:     items,
		Total:     domain.ItemsTotal(items),
		Status:    status,
		CreatedAt: createdAt,
	}
}

func CreateMockItems() []domain.OrderItem {
	return []domain.OrderItem{
		{ID: "coffee-latte", Name: "Latte", Price: 4.5, Quantity: 2},
	}
}

const (
	TestOrderID = "11111111-1111-1111-1111-111111111111"
	TestTotal   = 9.0
)
