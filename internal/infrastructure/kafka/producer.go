package kafka

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/example/shop-checkout/internal/cart"
)

// Producer publishes cart mutation events for downstream consumers
// (notifications, analytics). It backs the cart store's observer hook; cart
// correctness never depends on it.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Producer{writer: writer}
}

// CartObserver returns an observer for cart.WithObserver. Publish failures
// are logged and dropped: a missed notification must not fail a mutation.
func (p *Producer) CartObserver() func(cart.Event) {
	return func(event cart.Event) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.publish(ctx, event.CartID, event); err != nil {
			log.Printf("[Kafka] Failed to publish %s for cart %s: %v", event.Type, event.CartID, err)
		}
	}
}

func (p *Producer) publish(ctx context.Context, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
