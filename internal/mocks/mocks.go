package mocks

import (
	"context"

	"coffee-orders/internal/domain"
	"coffee-orders/internal/infra"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

type MockPublisher struct {
	mock.Mock
}

type MockFeed struct {
	mock.Mock
}

type MockPushSender struct {
	mock.Mock
}

func (m *MockOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, *domain.Order, error) {
	args := m.Called(ctx, id, status)
	var old, updated *domain.Order
	if args.Get(0) != nil {
		old = args.Get(0).(*domain.Order)
	}
	if args.Get(1) != nil {
		updated = args.Get(1).(*domain.Order)
	}
	return old, updated, args.Error(2)
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, data any) error {
	args := m.Called(ctx, routingKey, data)
	return args.Error(0)
}

func (m *MockFeed) Publish(ctx context.Context, event domain.OrderChangeEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPushSender) SendPush(ctx context.Context, msg infra.PushMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
