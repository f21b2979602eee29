package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrInvalidItems = errors.New("items are required")

type OrderItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
	ImageURL string  `json:"image_url,omitempty"`
}

type Order struct {
	ID        string      `json:"id" gorm:"type:char(36);primaryKey"`
	Items     []OrderItem `json:"items" gorm:"serializer:json;not null"`
	Total     float64     `json:"total" gorm:"not null"`
	Status    OrderStatus `json:"status" gorm:"type:varchar(32);not null;default:'new';index"`
	PushToken string      `json:"push_token,omitempty" gorm:"type:varchar(255)"`
	CreatedAt time.Time   `json:"created_at" gorm:"autoCreateTime"`
	// Nil on rows written before status updates started touching it.
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// EffectiveTime is the timestamp the board sorts on: last status change if
// any, creation time otherwise.
func (o *Order) EffectiveTime() time.Time {
	if o.UpdatedAt != nil {
		return *o.UpdatedAt
	}
	return o.CreatedAt
}

// NormalizeItems validates a submitted item list and returns a cleaned copy.
// All failures wrap ErrInvalidItems so callers can map them to a 400.
func NormalizeItems(items []OrderItem) ([]OrderItem, error) {
	if len(items) == 0 {
		return nil, ErrInvalidItems
	}

	normalized := make([]OrderItem, 0, len(items))
	for i, item := range items {
		item.ID = strings.TrimSpace(item.ID)
		item.Name = strings.TrimSpace(item.Name)
		switch {
		case item.ID == "":
			return nil, fmt.Errorf("%w: item %d has no id", ErrInvalidItems, i)
		case item.Name == "":
			return nil, fmt.Errorf("%w: item %d has no name", ErrInvalidItems, i)
		case math.IsNaN(item.Price) || math.IsInf(item.Price, 0):
			return nil, fmt.Errorf("%w: item %d has a non-finite price", ErrInvalidItems, i)
		case item.Quantity <= 0:
			return nil, fmt.Errorf("%w: item %d has a non-positive quantity", ErrInvalidItems, i)
		}
		normalized = append(normalized, item)
	}
	return normalized, nil
}

// ItemsTotal computes the order total as the sum of price times quantity.
// Computed once at creation and never recomputed afterwards.
func ItemsTotal(items []OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}
