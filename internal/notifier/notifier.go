package notifier

import (
	"context"
	"log"

	"coffee-orders/internal/domain"
	"coffee-orders/internal/services"
)

type OrderLister interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
}

// BoardWatcher keeps a kanban board current: on every change event it
// re-fetches the full order set and reprojects, trading efficiency for
// consistency. No incremental updates.
type BoardWatcher struct {
	lister  OrderLister
	events  <-chan domain.OrderChangeEvent
	onBoard func(services.Board)
}

func NewBoardWatcher(lister OrderLister, events <-chan domain.OrderChangeEvent, onBoard func(services.Board)) *BoardWatcher {
	return &BoardWatcher{
		lister:  lister,
		events:  events,
		onBoard: onBoard,
	}
}

// Run projects once up front, then once per event, until ctx is cancelled or
// the event channel closes. A failed refresh keeps the previous board; the
// next event tries again.
func (w *BoardWatcher) Run(ctx context.Context) error {
	if err := w.refresh(ctx); err != nil {
		log.Printf("Initial board refresh failed: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-w.events:
			if !ok {
				return nil
			}
			if err := w.refresh(ctx); err != nil {
				log.Printf("Board refresh failed: %v", err)
			}
		}
	}
}

func (w *BoardWatcher) refresh(ctx context.Context) error {
	orders, err := w.lister.ListOrders(ctx)
	if err != nil {
		return err
	}
	w.onBoard(services.ProjectBoard(orders))
	return nil
}
