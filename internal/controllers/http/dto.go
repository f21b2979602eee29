package http

import (
	"time"

	"coffee-orders/internal/domain"
)

type CreateOrderRequest struct {
	Items     []domain.OrderItem `json:"items"`
	PushToken string             `json:"pushToken"`
}

type CreateOrderResponse struct {
	OrderID string             `json:"orderId"`
	Total   float64            `json:"total"`
	Status  domain.OrderStatus `json:"status"`
}

type OrderResponse struct {
	ID        string             `json:"id"`
	Items     []domain.OrderItem `json:"items"`
	Total     float64            `json:"total"`
	Status    domain.OrderStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
}

type StatusResponse struct {
	OrderID string             `json:"orderId"`
	Status  domain.OrderStatus `json:"status"`
	Total   float64            `json:"total"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type MenuItem struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// WebhookPayload is what the store's update webhook posts: change kind plus
// the new and old rows. Statuses are pointers because a missing field and an
// empty one mean different things to the skip rules.
type WebhookPayload struct {
	Type      string         `json:"type"`
	Table     string         `json:"table"`
	Record    *WebhookRecord `json:"record"`
	OldRecord *WebhookRecord `json:"old_record"`
}

type WebhookRecord struct {
	ID        string  `json:"id"`
	Status    *string `json:"status"`
	PushToken string  `json:"push_token"`
}
