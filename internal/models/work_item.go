package models

import "time"

// WorkItem is a unit of crawl work flowing through the queue.
type WorkItem struct {
	Kind PageKind `json:"kind"`
	// URL is the absolute address fetched for the item.
	URL string `json:"url"`
	// Path is the site-relative path of the submission link: the link as
	// emitted for relative links, the request URI for absolute ones. It never
	// carries a host, so every mirror maps to the same key.
	Path           string `json:"path,omitempty"`
	SubmissionDate string `json:"submission_date,omitempty"`
	// RunID names the run that seeded the item; detail items inherit it from
	// their listing page.
	RunID      string    `json:"run_id,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewListingItem builds a work item for a catalog listing page.
func NewListingItem(url string) WorkItem {
	return WorkItem{
		Kind:       PageKindListing,
		URL:        url,
		EnqueuedAt: time.Now().UTC(),
	}
}

// NewDetailItem builds a work item for an audiobook page discovered on a listing.
func NewDetailItem(url, path, submissionDate string) WorkItem {
	return WorkItem{
		Kind:           PageKindDetail,
		URL:            url,
		Path:           path,
		SubmissionDate: submissionDate,
		EnqueuedAt:     time.Now().UTC(),
	}
}

// CanonicalPath is the identifier the graph store keys audiobooks by.
func (w WorkItem) CanonicalPath() string {
	if w.Path != "" {
		return w.Path
	}
	return w.URL
}
