package crawler

import (
	"context"

	"github.com/MMMarcy/voxlume/internal/models"
)

// Page is a fetched document.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Body       []byte
}

// Fetcher retrieves a page body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Page, error)
}

// RegionExtractor returns the serialized sub-document for a region, or false
// when the page has no such region.
type RegionExtractor interface {
	Extract(body []byte, region models.Region) (string, bool)
}

// StructuredExtractor turns region text into typed records. ok is false when
// the backend produced no usable record.
type StructuredExtractor interface {
	ExtractSubmissions(ctx context.Context, text string) (list models.SubmissionList, ok bool, err error)
	ExtractAudiobook(ctx context.Context, text string) (meta models.AudiobookMetadata, ok bool, err error)
}

// Enricher derives extra descriptions from an audiobook description.
type Enricher interface {
	ShortDescription(ctx context.Context, description string) (string, error)
	EmbeddingDescription(ctx context.Context, description string) (string, error)
}

// Guard answers whether an audiobook path was already ingested.
type Guard interface {
	Exists(ctx context.Context, path string) (bool, error)
	MarkIngested(ctx context.Context, path string)
}

// Persister commits an audiobook into the graph.
type Persister interface {
	Persist(ctx context.Context, meta models.AudiobookMetadata, path string) error
}

// Enqueuer adds work items to a queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, item models.WorkItem) error
}

// Queue is the work queue transport. Dequeue returns ok=false when the queue
// is empty.
type Queue interface {
	Enqueuer
	Dequeue(ctx context.Context) (item models.WorkItem, ok bool, err error)
	Close() error
}

// Notifier publishes ingestion events and dropped items.
type Notifier interface {
	PublishIngested(ctx context.Context, event models.IngestedAudiobook) error
	PublishFailure(ctx context.Context, failure models.CrawlFailure) error
}

// StatusReporter records run progress.
type StatusReporter interface {
	SetStatus(ctx context.Context, status models.CrawlStatus) error
}

// ItemDispatcher routes one work item.
type ItemDispatcher interface {
	Dispatch(ctx context.Context, item models.WorkItem) (Outcome, error)
}
