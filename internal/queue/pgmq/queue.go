// Package pgmq carries work items over a Postgres PGMQ queue.
package pgmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MMMarcy/voxlume/internal/models"
)

var validQueueName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config selects the database and the queue.
type Config struct {
	DSN      string
	Queue    string
	MaxConns int32
}

type pool interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...any) pgx.Row
	Close()
}

// Queue is a work queue backed by the pgmq extension. Messages are popped,
// so delivery is at most once.
type Queue struct {
	pool pool
	name string
}

// New connects to Postgres and creates the queue when missing.
func New(ctx context.Context, cfg Config) (*Queue, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("pgmq.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	q, err := NewWithPool(ctx, p, cfg.Queue)
	if err != nil {
		p.Close()
		return nil, err
	}
	return q, nil
}

// NewWithPool builds a queue on an existing pool and ensures it exists.
func NewWithPool(ctx context.Context, p pool, name string) (*Queue, error) {
	if name == "" {
		name = "voxlume_work"
	}
	if !validQueueName.MatchString(name) {
		return nil, fmt.Errorf("invalid queue name %q", name)
	}
	if _, err := p.Exec(ctx, "SELECT pgmq.create($1)", name); err != nil {
		return nil, fmt.Errorf("create queue %s: %w", name, err)
	}
	return &Queue{pool: p, name: name}, nil
}

// Enqueue sends item as a JSON message.
func (q *Queue) Enqueue(ctx context.Context, item models.WorkItem) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode work item: %w", err)
	}
	if _, err := q.pool.Exec(ctx, "SELECT pgmq.send($1, $2::jsonb)", q.name, string(payload)); err != nil {
		return fmt.Errorf("send to %s: %w", q.name, err)
	}
	return nil
}

// Dequeue pops the oldest message. ok is false when the queue is empty.
func (q *Queue) Dequeue(ctx context.Context) (models.WorkItem, bool, error) {
	var raw []byte
	err := q.pool.QueryRow(ctx, "SELECT message FROM pgmq.pop($1)", q.name).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.WorkItem{}, false, nil
	}
	if err != nil {
		return models.WorkItem{}, false, fmt.Errorf("pop from %s: %w", q.name, err)
	}
	var item models.WorkItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return models.WorkItem{}, false, fmt.Errorf("decode work item: %w", err)
	}
	return item, true, nil
}

// Close releases the pool.
func (q *Queue) Close() error {
	q.pool.Close()
	return nil
}
