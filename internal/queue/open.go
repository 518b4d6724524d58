// Package queue opens the work queue transport selected in configuration.
package queue

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/MMMarcy/voxlume/internal/config"
	"github.com/MMMarcy/voxlume/internal/crawler"
	"github.com/MMMarcy/voxlume/internal/kafka"
	"github.com/MMMarcy/voxlume/internal/queue/memory"
	"github.com/MMMarcy/voxlume/internal/queue/pgmq"
)

// Open returns the queue for cfg.Queue.Driver.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (crawler.Queue, error) {
	switch cfg.Queue.Driver {
	case config.QueueMemory:
		return memory.New(), nil
	case config.QueueKafka:
		return kafka.NewQueue(kafka.QueueConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.WorkTopic,
			GroupID:     cfg.Kafka.GroupID,
			IdleTimeout: cfg.Kafka.IdleTimeout,
		}, logger), nil
	case config.QueuePGMQ:
		q, err := pgmq.New(ctx, pgmq.Config{
			DSN:      cfg.PGMQ.DSN,
			Queue:    cfg.PGMQ.Queue,
			MaxConns: cfg.PGMQ.MaxConns,
		})
		if err != nil {
			return nil, err
		}
		return q, nil
	default:
		return nil, fmt.Errorf("unknown queue driver %q", cfg.Queue.Driver)
	}
}

// Shared reports whether the driver is reachable from other processes.
func Shared(driver string) bool {
	return driver == config.QueueKafka || driver == config.QueuePGMQ
}
