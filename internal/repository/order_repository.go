package repository

import (
	"context"

	"coffee-orders/internal/domain"
)

// OrderRepository is the order store collaborator. FindByID and UpdateStatus
// return nil (no error) when no row exists at the given id.
type OrderRepository interface {
	Save(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindAll(ctx context.Context) ([]domain.Order, error)
	// UpdateStatus patches the status column only and returns the row as it
	// was before and after the write, for the change feed.
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (old, updated *domain.Order, err error)
}
