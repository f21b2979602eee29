package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"coffee-orders/internal/domain"
	"coffee-orders/internal/infra/changefeed"
	rabbit "coffee-orders/internal/infra/rabbitmq"
	"coffee-orders/internal/repository"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrNoNextStatus  = errors.New("order is already completed")
)

type OrderService struct {
	repo      repository.OrderRepository
	publisher rabbit.PublisherInterface
	feed      changefeed.FeedPublisher
}

func NewOrderService(r repository.OrderRepository, pub rabbit.PublisherInterface, feed changefeed.FeedPublisher) *OrderService {
	return &OrderService{
		repo:      r,
		publisher: pub,
		feed:      feed,
	}
}

// CreateOrder validates the submitted items, computes the total once, and
// persists the order in status new. Events go out after the commit; a store
// failure surfaces to the caller and nothing is retried.
func (s *OrderService) CreateOrder(ctx context.Context, items []domain.OrderItem, pushToken string) (*domain.Order, error) {
	normalized, err := domain.NormalizeItems(items)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		Items:     normalized,
		Total:     domain.ItemsTotal(normalized),
		Status:    domain.StatusNew,
		PushToken: strings.TrimSpace(pushToken),
		CreatedAt: time.Now(),
	}

	if err := s.repo.Save(ctx, order); err != nil {
		return nil, err
	}

	go s.publishOrderCreated(context.Background(), order)

	return order, nil
}

func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// ListOrders returns the full order set, most recently touched first, for
// board projection. Always a full fetch, never a delta.
func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.repo.FindAll(ctx)
}

// UpdateOrderStatus moves an order to any canonical status (the drag-drop
// path). The store arbitrates concurrent writes, last write wins. On store
// failure the caller's view is unchanged and the error surfaces as-is.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !domain.IsCanonical(status) {
		return nil, domain.ErrInvalidStatus
	}

	old, updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrOrderNotFound
	}

	go s.publishStatusChanged(context.Background(), old, updated)

	return updated, nil
}

// AdvanceOrder applies the one-directional lifecycle chain (the action
// button path). Completed orders have no successor.
func (s *OrderService) AdvanceOrder(ctx context.Context, id string) (*domain.Order, error) {
	o, err := s.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, ok := domain.NextStatus(domain.NormalizeStatus(o.Status))
	if !ok {
		return nil, ErrNoNextStatus
	}
	return s.UpdateOrderStatus(ctx, id, next)
}

func (s *OrderService) publishOrderCreated(ctx context.Context, order *domain.Order) {
	evt := map[string]any{
		"orderId":   order.ID,
		"total":     order.Total,
		"status":    order.Status,
		"createdAt": order.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, "order.created", evt); err != nil {
		log.Printf("Failed to publish order.created: %v", err)
	}

	change := domain.OrderChangeEvent{
		Type:   domain.ChangeInsert,
		Table:  domain.OrdersTable,
		Record: order,
	}
	if err := s.feed.Publish(ctx, change); err != nil {
		log.Printf("Failed to publish change event: %v", err)
	}
}

func (s *OrderService) publishStatusChanged(ctx context.Context, old, updated *domain.Order) {
	evt := map[string]any{
		"orderId":   updated.ID,
		"oldStatus": old.Status,
		"newStatus": updated.Status,
		"updatedAt": updated.UpdatedAt,
	}
	if err := s.publisher.Publish(ctx, "order.status_changed", evt); err != nil {
		log.Printf("Failed to publish order.status_changed: %v", err)
	}

	change := domain.OrderChangeEvent{
		Type:      domain.ChangeUpdate,
		Table:     domain.OrdersTable,
		Record:    updated,
		OldRecord: old,
	}
	if err := s.feed.Publish(ctx, change); err != nil {
		log.Printf("Failed to publish change event: %v", err)
	}
}
