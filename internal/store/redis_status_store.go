package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MMMarcy/voxlume/internal/models"
)

// RedisStatusStore keeps one JSON record per run under prefix+runID and a
// sorted set prefix+"index" of run ids scored by creation time.
type RedisStatusStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStatusStore builds a StatusStore on an existing client. A zero ttl
// keeps records forever.
func NewRedisStatusStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStatusStore {
	return &RedisStatusStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *RedisStatusStore) indexKey() string {
	return s.prefix + "index"
}

// SetStatus upserts a run record. CreatedAt and the page range are carried
// over from an earlier record of the same run when the update leaves them
// unset, and UpdatedAt is always stamped.
func (s *RedisStatusStore) SetStatus(ctx context.Context, status models.CrawlStatus) error {
	if status.RunID == "" {
		return errors.New("status has no run id")
	}
	if status.CreatedAt.IsZero() || status.PageEnd == 0 {
		prev, ok, err := s.GetStatus(ctx, status.RunID)
		if err != nil {
			return err
		}
		if ok {
			status = carryOver(prev, status)
		}
	}
	if status.CreatedAt.IsZero() {
		status.CreatedAt = s.now()
	}
	status.UpdatedAt = s.now()

	payload, err := json.Marshal(status)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.prefix+status.RunID, payload, s.ttl).Err(); err != nil {
		return err
	}
	score := float64(status.CreatedAt.UnixNano())
	if err := s.client.ZAdd(ctx, s.indexKey(), redis.Z{Score: score, Member: status.RunID}).Err(); err != nil {
		return fmt.Errorf("index run %s: %w", status.RunID, err)
	}
	return nil
}

func carryOver(prev, next models.CrawlStatus) models.CrawlStatus {
	if next.CreatedAt.IsZero() {
		next.CreatedAt = prev.CreatedAt
	}
	if next.PageEnd == 0 {
		next.PageStart, next.PageEnd = prev.PageStart, prev.PageEnd
	}
	return next
}

// GetStatus reads the status record from Redis.
func (s *RedisStatusStore) GetStatus(ctx context.Context, runID string) (models.CrawlStatus, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+runID).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.CrawlStatus{}, false, nil
	}
	if err != nil {
		return models.CrawlStatus{}, false, err
	}

	var status models.CrawlStatus
	if err := json.Unmarshal(val, &status); err != nil {
		return models.CrawlStatus{}, false, fmt.Errorf("decode run %s: %w", runID, err)
	}
	return status, true, nil
}

// ListRuns walks the index newest first. Index entries whose record expired
// are skipped.
func (s *RedisStatusStore) ListRuns(ctx context.Context, limit int) ([]models.CrawlStatus, error) {
	if limit <= 0 {
		return nil, nil
	}
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	runs := make([]models.CrawlStatus, 0, len(ids))
	for _, id := range ids {
		status, ok, err := s.GetStatus(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			runs = append(runs, status)
		}
	}
	return runs, nil
}
