package models

import "time"

// CrawlFailure captures a dropped work item for the DLQ.
type CrawlFailure struct {
	RunID    string    `json:"run_id,omitempty"`
	Kind     PageKind  `json:"kind"`
	URL      string    `json:"url"`
	Path     string    `json:"path,omitempty"`
	Stage    string    `json:"stage"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
}
