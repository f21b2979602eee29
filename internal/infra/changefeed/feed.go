package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"coffee-orders/internal/domain"

	"github.com/go-redis/redis/v8"
)

// DefaultChannel carries one JSON OrderChangeEvent per write to the orders
// table.
const DefaultChannel = "orders.changes"

// Feed is a redis pub/sub change feed over the orders table, standing in for
// the managed store's own change notifications.
type Feed struct {
	rdb     *redis.Client
	channel string
}

func New(rdb *redis.Client) *Feed {
	return &Feed{rdb: rdb, channel: DefaultChannel}
}

func (f *Feed) Publish(ctx context.Context, event domain.OrderChangeEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %v", err)
	}
	if err := f.rdb.Publish(ctx, f.channel, body).Err(); err != nil {
		return fmt.Errorf("failed to publish change event: %v", err)
	}
	return nil
}

// Subscribe returns a channel of change events. Cancelling ctx tears down
// the subscription and closes the channel, so consumers stop cleanly instead
// of acting after they are gone.
func (f *Feed) Subscribe(ctx context.Context) (<-chan domain.OrderChangeEvent, error) {
	sub := f.rdb.Subscribe(ctx, f.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %v", f.channel, err)
	}

	out := make(chan domain.OrderChangeEvent)
	go func() {
		defer close(out)
		defer sub.Close()

		in := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				var event domain.OrderChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("Dropping malformed change event: %v", err)
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
