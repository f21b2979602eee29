package notifier

import (
	"context"
	"log"
	"time"

	"coffee-orders/internal/domain"
)

// DefaultPollInterval matches the status screen's fixed 5 second refresh.
const DefaultPollInterval = 5 * time.Second

type OrderReader interface {
	GetOrderByID(ctx context.Context, id string) (*domain.Order, error)
}

// StatusPoller is the fallback path that works with no change feed at all:
// a fixed-interval poll of one order's status. Fetch errors are swallowed,
// the consumer keeps whatever it last saw.
type StatusPoller struct {
	reader   OrderReader
	interval time.Duration
	onOrder  func(*domain.Order)
}

func NewStatusPoller(reader OrderReader, interval time.Duration, onOrder func(*domain.Order)) *StatusPoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &StatusPoller{
		reader:   reader,
		interval: interval,
		onOrder:  onOrder,
	}
}

// Run polls immediately, then on every tick, and stops as soon as ctx is
// cancelled (the observed screen going away).
func (p *StatusPoller) Run(ctx context.Context, orderID string) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx, orderID)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx, orderID)
		}
	}
}

func (p *StatusPoller) poll(ctx context.Context, orderID string) {
	order, err := p.reader.GetOrderByID(ctx, orderID)
	if err != nil {
		log.Printf("Status poll for %s failed: %v", orderID, err)
		return
	}
	p.onOrder(order)
}
