package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/MMMarcy/voxlume/internal/models"
)

// DefaultIdleTimeout is how long Dequeue waits for a message before reporting
// the topic as drained.
const DefaultIdleTimeout = 10 * time.Second

// QueueConfig describes the work topic.
type QueueConfig struct {
	Brokers     []string
	Topic       string
	GroupID     string
	IdleTimeout time.Duration
}

// Queue carries work items over a Kafka topic. Offsets are committed as soon
// as an item is handed out, so a crash loses at most the in-flight item.
type Queue struct {
	reader MessageReader
	writer MessageWriter
	idle   time.Duration
	logger *zap.Logger
}

// NewQueue connects a consumer-group reader and a writer to cfg.Topic.
func NewQueue(cfg QueueConfig, logger *zap.Logger) *Queue {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: false,
	}
	return NewQueueWithClients(reader, writer, cfg.IdleTimeout, logger)
}

// WorkKey is the message key of every work item.
const WorkKey = "voxlume-work"

// NewQueueWithClients builds a queue from existing clients. reader may be nil
// for enqueue-only use.
func NewQueueWithClients(reader MessageReader, writer MessageWriter, idle time.Duration, logger *zap.Logger) *Queue {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{reader: reader, writer: writer, idle: idle, logger: logger}
}

// Enqueue writes item to the work topic. Every item shares WorkKey so the
// hash balancer keeps them on one partition, in enqueue order.
func (q *Queue) Enqueue(ctx context.Context, item models.WorkItem) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode work item: %w", err)
	}
	return q.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(WorkKey),
		Value: payload,
		Time:  time.Now().UTC(),
	})
}

// Dequeue fetches the next work item. ok is false when no message arrives
// within the idle timeout. Undecodable messages are committed and skipped.
func (q *Queue) Dequeue(ctx context.Context) (models.WorkItem, bool, error) {
	if q.reader == nil {
		return models.WorkItem{}, false, errors.New("kafka queue has no reader")
	}
	for {
		fetchCtx, cancel := context.WithTimeout(ctx, q.idle)
		msg, err := q.reader.FetchMessage(fetchCtx)
		cancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				return models.WorkItem{}, false, nil
			}
			return models.WorkItem{}, false, err
		}

		var item models.WorkItem
		decodeErr := json.Unmarshal(msg.Value, &item)
		if err := q.reader.CommitMessages(ctx, msg); err != nil {
			return models.WorkItem{}, false, fmt.Errorf("commit offset %d: %w", msg.Offset, err)
		}
		if decodeErr != nil {
			q.logger.Warn("discarding malformed work item",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(decodeErr),
			)
			continue
		}
		return item, true, nil
	}
}

// Close shuts down both clients.
func (q *Queue) Close() error {
	var errs []error
	if q.reader != nil {
		errs = append(errs, q.reader.Close())
	}
	errs = append(errs, q.writer.Close())
	return errors.Join(errs...)
}
