package publish

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/qleroy/procure/internal/core/domain"
)

// KafkaPublisher dispatches generated purchase orders to a topic, keyed by
// order reference so re-runs of a partition land on the same topic partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, order domain.SupplierOrder) error {
	value, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order %s: %w", order.OrderReference, err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(order.OrderReference),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("publish order %s: %w", order.OrderReference, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
