package mysql

import (
	"context"
	"errors"
	"log"
	"time"

	"coffee-orders/internal/domain"
	"coffee-orders/internal/repository"

	"gorm.io/gorm"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Save(ctx context.Context, order *domain.Order) error {
	result := r.db.WithContext(ctx).Create(order)
	if result.Error != nil {
		log.Printf("Database save error: %v", result.Error)
		return result.Error
	}

	if order.ID == "" {
		return errors.New("failed to assign order ID")
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("FindByID error: %v", err)
		return nil, err
	}
	return &o, nil
}

// FindAll returns every order, most recently touched first. Rows never
// updated sort by creation time.
func (r *orderRepo) FindAll(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.WithContext(ctx).
		Order("COALESCE(updated_at, created_at) DESC").
		Find(&out).Error
	if err != nil {
		log.Printf("FindAll error: %v", err)
		return nil, err
	}
	return out, nil
}

// UpdateStatus is a partial patch: only status and updated_at change. The
// store is the arbiter on concurrent writes, last write wins.
func (r *orderRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, *domain.Order, error) {
	var current domain.Order
	if err := r.db.WithContext(ctx).First(&current, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil
		}
		log.Printf("UpdateStatus lookup error: %v", err)
		return nil, nil, err
	}

	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": now})
	if result.Error != nil {
		log.Printf("UpdateStatus error: %v", result.Error)
		return nil, nil, result.Error
	}

	old := current
	updated := current
	updated.Status = status
	updated.UpdatedAt = &now
	return &old, &updated, nil
}
