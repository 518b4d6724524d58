package models

import "time"

// IngestedAudiobook is published once an audiobook has been committed to the graph.
type IngestedAudiobook struct {
	RunID      string    `json:"run_id,omitempty"`
	Path       string    `json:"path"`
	Title      string    `json:"title,omitempty"`
	Authors    []string  `json:"authors"`
	IngestedAt time.Time `json:"ingested_at"`
}
