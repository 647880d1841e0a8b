package kafka

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/umar-saleem/points-ledger/internal/interfaces"
)

// Publisher writes domain events to a kafka topic. Messages are keyed
// by account id so one account's events land on one partition and
// consumers see them in commit order.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a publisher for brokers and topic.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		},
	}
}

// Publish marshals event as JSON and writes it keyed by account id.
func (p *Publisher) Publish(ctx context.Context, key int64, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(key, 10)),
		Value: data,
	})
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ interfaces.EventPublisher = (*Publisher)(nil)
