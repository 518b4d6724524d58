package models

import "time"

// Run states stored in CrawlStatus.Status.
const (
	RunQueued    = "queued"
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// CrawlStatus tracks the state of a crawl run.
type CrawlStatus struct {
	RunID     string      `json:"run_id"`
	Mode      string      `json:"mode"`
	PageStart int         `json:"page_start"`
	PageEnd   int         `json:"page_end"`
	Status    string      `json:"status"`
	Error     string      `json:"error,omitempty"`
	Counters  RunCounters `json:"counters"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// RunCounters summarises what a run did with the items it dequeued.
type RunCounters struct {
	Dispatched int `json:"dispatched"`
	Enqueued   int `json:"enqueued"`
	Persisted  int `json:"persisted"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}
