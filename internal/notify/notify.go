package notify

import (
	"context"
	"encoding/json"
	"sync"

	"boompay/internal/logger"

	"github.com/redis/go-redis/v9"
)

// Topics. Per-order topics carry chat messages and terminal status changes;
// the two admin topics feed the console's new-activity badges.
const (
	TopicOrdersNew    = "orders:new"
	TopicRechargesNew = "recharges:new"
)

func OrderTopic(orderID string) string {
	return "order:" + orderID
}

type Event struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data,omitempty"`
}

// Publisher is what the domain services depend on. Satisfied by Hub.
type Publisher interface {
	Publish(ctx context.Context, topic string, event Event) error
}

// Hub fans events out through redis pub/sub so every API instance sees every
// event regardless of which instance produced it.
type Hub struct {
	rdb *redis.Client
}

func NewHub(addr string) *Hub {
	return &Hub{rdb: redis.NewClient(&redis.Options{Addr: addr})}
}

func (h *Hub) Ping(ctx context.Context) error {
	return h.rdb.Ping(ctx).Err()
}

func (h *Hub) Close() error {
	return h.rdb.Close()
}

func (h *Hub) Publish(ctx context.Context, topic string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return h.rdb.Publish(ctx, topic, payload).Err()
}

// Subscribe returns a channel of events for the topic and a cancel func that
// tears the subscription down. The channel is closed on cancel or when the
// context ends.
func (h *Hub) Subscribe(ctx context.Context, topics ...string) (<-chan Event, func()) {
	sub := h.rdb.Subscribe(ctx, topics...)
	events := make(chan Event, 16)

	done := make(chan struct{})
	go func() {
		defer close(events)
		src := sub.Channel()
		for {
			select {
			case msg, ok := <-src:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					logger.Errorf("notify: dropping malformed event on %s: %v", msg.Channel, err)
					continue
				}
				select {
				case events <- event:
				default:
					// Slow consumer, drop rather than block the hub.
				}
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = sub.Close()
		})
	}
	return events, cancel
}
