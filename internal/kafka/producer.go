package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/MMMarcy/voxlume/internal/models"
)

// Topics names the event topics the Producer writes to.
type Topics struct {
	Ingested   string
	DeadLetter string
}

// Producer publishes ingestion notifications and dead-lettered items.
type Producer struct {
	writer MessageWriter
	topics Topics
}

// NewProducer creates a producer for the given brokers. The writer carries no
// default topic; each message names its own.
func NewProducer(brokers []string, topics Topics) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: false,
		},
		topics: topics,
	}
}

// NewProducerWithWriter builds a producer using a custom writer (tests).
func NewProducerWithWriter(writer MessageWriter, topics Topics) *Producer {
	return &Producer{writer: writer, topics: topics}
}

// Close shuts down the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}

// PublishIngested announces a committed audiobook, keyed by its path.
func (p *Producer) PublishIngested(ctx context.Context, event models.IngestedAudiobook) error {
	return p.publish(ctx, p.topics.Ingested, event.Path, event)
}

// PublishFailure sends a dropped work item to the dead-letter topic.
func (p *Producer) PublishFailure(ctx context.Context, failure models.CrawlFailure) error {
	return p.publish(ctx, p.topics.DeadLetter, failure.URL, failure)
}

func (p *Producer) publish(ctx context.Context, topic, key string, v any) error {
	if topic == "" {
		return nil
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s message: %w", topic, err)
	}
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now().UTC(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s message: %w", topic, err)
	}
	return nil
}
