// Package store keeps crawl bookkeeping in Redis: run status records and the
// seen-path cache in front of the graph.
package store

import (
	"context"

	"github.com/MMMarcy/voxlume/internal/models"
)

// StatusStore persists crawl run status.
type StatusStore interface {
	SetStatus(ctx context.Context, status models.CrawlStatus) error
	GetStatus(ctx context.Context, runID string) (models.CrawlStatus, bool, error)
	// ListRuns returns up to limit runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]models.CrawlStatus, error)
}
