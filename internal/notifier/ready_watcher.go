package notifier

import (
	"context"
	"sync"

	"coffee-orders/internal/domain"
)

// ReadyWatcher is the mobile-side variant: it only cares about orders the
// device placed itself, and alerts exactly when one of them transitions to
// ready. Updates about unknown orders and transitions to any other status
// are ignored.
type ReadyWatcher struct {
	mu      sync.Mutex
	known   map[string]struct{}
	onReady func(orderID string)
}

func NewReadyWatcher(onReady func(orderID string)) *ReadyWatcher {
	return &ReadyWatcher{
		known:   make(map[string]struct{}),
		onReady: onReady,
	}
}

// Track registers an order id from the local order history.
func (w *ReadyWatcher) Track(orderID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.known[orderID] = struct{}{}
}

func (w *ReadyWatcher) Forget(orderID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.known, orderID)
}

// Handle inspects one change event and fires the alert callback at most
// once: update events only, known order, status actually changed, new status
// ready after normalization.
func (w *ReadyWatcher) Handle(event domain.OrderChangeEvent) {
	if event.Type != domain.ChangeUpdate || event.Record == nil {
		return
	}

	w.mu.Lock()
	_, known := w.known[event.Record.ID]
	w.mu.Unlock()
	if !known {
		return
	}

	newStatus := domain.NormalizeStatus(event.Record.Status)
	if newStatus != domain.StatusReady {
		return
	}
	if event.OldRecord != nil && domain.NormalizeStatus(event.OldRecord.Status) == newStatus {
		return
	}

	w.onReady(event.Record.ID)
}

// Run consumes events until ctx is cancelled or the channel closes.
func (w *ReadyWatcher) Run(ctx context.Context, events <-chan domain.OrderChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			w.Handle(event)
		}
	}
}
