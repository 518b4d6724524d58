// Package memory is the in-process FIFO work queue.
package memory

import (
	"container/list"
	"context"
	"errors"
	"sync"

	"github.com/MMMarcy/voxlume/internal/models"
)

// ErrClosed is returned by Enqueue after Close.
var ErrClosed = errors.New("queue closed")

// Queue is an unbounded FIFO safe for concurrent use.
type Queue struct {
	mu     sync.Mutex
	items  *list.List
	closed bool
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{items: list.New()}
}

// Enqueue appends item at the tail.
func (q *Queue) Enqueue(ctx context.Context, item models.WorkItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	q.items.PushBack(item)
	return nil
}

// Dequeue removes the head item. ok is false when the queue is empty.
func (q *Queue) Dequeue(ctx context.Context) (models.WorkItem, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.WorkItem{}, false, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	front := q.items.Front()
	if front == nil {
		return models.WorkItem{}, false, nil
	}
	q.items.Remove(front)
	return front.Value.(models.WorkItem), true, nil
}

// Len is the number of queued items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

// Items returns a snapshot of the queue from head to tail.
func (q *Queue) Items() []models.WorkItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]models.WorkItem, 0, q.items.Len())
	for e := q.items.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(models.WorkItem))
	}
	return out
}

// Close rejects further enqueues. Remaining items can still be dequeued.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	return nil
}
