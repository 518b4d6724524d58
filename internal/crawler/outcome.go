package crawler

import (
	"errors"
	"fmt"
)

var (
	// ErrListingExtraction marks a listing page that yielded no submissions.
	// It stops the run: without submissions there is nothing left to enumerate.
	ErrListingExtraction = errors.New("listing extraction produced no result")
	// ErrUnknownPageKind is returned for items outside the closed set of kinds.
	ErrUnknownPageKind = errors.New("unknown page kind")
	// ErrRegionNotFound means the page lacks the expected region.
	ErrRegionNotFound = errors.New("region not found")
	// ErrNoResult means structured extraction returned nothing usable.
	ErrNoResult = errors.New("extraction returned no result")
	// ErrOffSite means a detail URL points outside the catalog site.
	ErrOffSite = errors.New("detail url is not on the catalog site")
	// ErrStopOnExisting ends a drain at the first audiobook already ingested.
	ErrStopOnExisting = errors.New("stopped at existing audiobook")
)

// Status is what happened to a dispatched item.
type Status int

const (
	// StatusExpanded: a listing page was turned into detail items.
	StatusExpanded Status = iota + 1
	// StatusSkippedExisting: the audiobook is already in the graph.
	StatusSkippedExisting
	// StatusRejected: the detail URL is not on the site.
	StatusRejected
	// StatusExtractionFailed: fetch, region or structured extraction failed.
	StatusExtractionFailed
	// StatusPersistFailed: the graph transaction failed.
	StatusPersistFailed
	// StatusPersisted: the audiobook was committed.
	StatusPersisted
)

func (s Status) String() string {
	switch s {
	case StatusExpanded:
		return "expanded"
	case StatusSkippedExisting:
		return "skipped_existing"
	case StatusRejected:
		return "rejected"
	case StatusExtractionFailed:
		return "extraction_failed"
	case StatusPersistFailed:
		return "persist_failed"
	case StatusPersisted:
		return "persisted"
	default:
		return "unknown"
	}
}

// Dropped reports whether the item was discarded because of a failure.
func (s Status) Dropped() bool {
	return s == StatusRejected || s == StatusExtractionFailed || s == StatusPersistFailed
}

// Outcome describes a dispatched item. Recoverable failures are carried in
// Err; Dispatch reserves its error return for conditions that end the run.
type Outcome struct {
	Status Status
	// Stage names the step that failed, if any.
	Stage string
	Err   error
	// Enqueued counts detail items produced by a listing page.
	Enqueued int
	// Fetched is false when the item finished without touching the network.
	Fetched bool
	// Stop asks the driver to end the drain cleanly.
	Stop bool
}

// ListingError is the fatal failure of a listing page.
type ListingError struct {
	URL   string
	Stage string
	Err   error
}

func (e *ListingError) Error() string {
	return fmt.Sprintf("listing %s: %s: %v", e.URL, e.Stage, e.Err)
}

func (e *ListingError) Unwrap() error {
	return e.Err
}

// Is makes every ListingError match ErrListingExtraction.
func (e *ListingError) Is(target error) bool {
	return target == ErrListingExtraction
}
