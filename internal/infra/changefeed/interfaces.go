package changefeed

import (
	"context"

	"coffee-orders/internal/domain"
)

type FeedPublisher interface {
	Publish(ctx context.Context, event domain.OrderChangeEvent) error
}

var _ FeedPublisher = (*Feed)(nil)
