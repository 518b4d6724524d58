package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/MMMarcy/voxlume/internal/metrics"
	"github.com/MMMarcy/voxlume/internal/models"
	"github.com/MMMarcy/voxlume/internal/urls"
)

// DispatcherConfig holds the site settings and ingestion switches.
type DispatcherConfig struct {
	// BaseURL is the catalog root submission paths are merged onto.
	BaseURL string
	// DomainKeyword is matched against detail hosts; mirrors share it.
	DomainKeyword string
	// OverrideExisting re-ingests audiobooks already in the graph.
	OverrideExisting bool
	// StopOnExisting ends the drain at the first already-ingested detail.
	StopOnExisting bool
	RunID          string
}

// Dependencies are the collaborators a Dispatcher drives. Enricher, Guard and
// Notifier are optional.
type Dependencies struct {
	Fetcher   Fetcher
	Regions   RegionExtractor
	Extractor StructuredExtractor
	Enricher  Enricher
	Guard     Guard
	Persister Persister
	Queue     Enqueuer
	Notifier  Notifier
}

// Dispatcher classifies work items by page kind and runs the matching handler.
type Dispatcher struct {
	cfg    DispatcherConfig
	deps   Dependencies
	logger *zap.Logger
}

// NewDispatcher builds a Dispatcher.
func NewDispatcher(cfg DispatcherConfig, deps Dependencies, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{cfg: cfg, deps: deps, logger: logger}
}

// Dispatch processes one item. The error is non-nil only when the run must
// stop; every recoverable failure is described by the Outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, item models.WorkItem) (Outcome, error) {
	switch item.Kind {
	case models.PageKindListing:
		return d.dispatchListing(ctx, item)
	case models.PageKindDetail:
		return d.dispatchDetail(ctx, item), nil
	default:
		return Outcome{}, fmt.Errorf("%w: %s", ErrUnknownPageKind, item.Kind)
	}
}

func (d *Dispatcher) dispatchListing(ctx context.Context, item models.WorkItem) (Outcome, error) {
	out := Outcome{Fetched: true}
	logger := d.logger.With(zap.String("url", item.URL))

	page, err := d.deps.Fetcher.Fetch(ctx, item.URL)
	if err != nil {
		return out, &ListingError{URL: item.URL, Stage: "fetch", Err: err}
	}
	text, ok := d.deps.Regions.Extract(page.Body, models.RegionListingTable)
	if !ok {
		return out, &ListingError{URL: item.URL, Stage: "region", Err: ErrRegionNotFound}
	}
	list, ok, err := d.deps.Extractor.ExtractSubmissions(ctx, text)
	if err != nil {
		return out, &ListingError{URL: item.URL, Stage: "extract", Err: err}
	}
	if !ok || len(list.Submissions) == 0 {
		return out, &ListingError{URL: item.URL, Stage: "extract", Err: ErrNoResult}
	}

	// Listing pages show the newest submission first; enqueue oldest first.
	for i := len(list.Submissions) - 1; i >= 0; i-- {
		sub := list.Submissions[i]
		if strings.TrimSpace(sub.URL) == "" {
			logger.Warn("submission without url", zap.String("title", sub.Title))
			continue
		}
		target, path := urls.Resolve(d.cfg.BaseURL, sub.URL)
		if target == "" {
			logger.Warn("submission url resolves to nothing", zap.String("submission_url", sub.URL))
			continue
		}
		detail := models.NewDetailItem(target, path, sub.SubmissionDate)
		detail.RunID = item.RunID
		if err := d.deps.Queue.Enqueue(ctx, detail); err != nil {
			return out, fmt.Errorf("enqueue detail %s: %w", target, err)
		}
		out.Enqueued++
	}
	metrics.AddEnqueued(models.PageKindDetail.String(), out.Enqueued)

	out.Status = StatusExpanded
	logger.Info("listing expanded",
		zap.Int("submissions", len(list.Submissions)),
		zap.Int("enqueued", out.Enqueued),
	)
	return out, nil
}

func (d *Dispatcher) dispatchDetail(ctx context.Context, item models.WorkItem) Outcome {
	path := item.CanonicalPath()
	logger := d.logger.With(zap.String("path", path), zap.String("url", item.URL))

	if !d.cfg.OverrideExisting && d.deps.Guard != nil {
		exists, err := d.deps.Guard.Exists(ctx, path)
		switch {
		case err != nil:
			// Persist is idempotent, so an unanswered check only costs a fetch.
			logger.Warn("dedupe check failed, ingesting anyway", zap.Error(err))
		case exists:
			logger.Info("audiobook already ingested, skipping")
			out := Outcome{Status: StatusSkippedExisting}
			if d.cfg.StopOnExisting {
				out.Stop = true
				out.Err = ErrStopOnExisting
			}
			return out
		}
	}

	if !urls.SameSite(item.URL, d.cfg.DomainKeyword) {
		logger.Error("detail url outside catalog site")
		return Outcome{Status: StatusRejected, Stage: "validate", Err: ErrOffSite}
	}

	out := Outcome{Fetched: true}
	page, err := d.deps.Fetcher.Fetch(ctx, item.URL)
	if err != nil {
		return d.extractionFailed(logger, out, "fetch", err)
	}
	text, ok := d.deps.Regions.Extract(page.Body, models.RegionDetailPost)
	if !ok {
		return d.extractionFailed(logger, out, "region", ErrRegionNotFound)
	}
	meta, ok, err := d.deps.Extractor.ExtractAudiobook(ctx, text)
	if err != nil {
		return d.extractionFailed(logger, out, "extract", err)
	}
	if !ok {
		return d.extractionFailed(logger, out, "extract", ErrNoResult)
	}
	meta = meta.Normalized()
	if err := meta.Validate(); err != nil {
		return d.extractionFailed(logger, out, "validate", err)
	}

	meta = d.enrich(ctx, logger, meta)

	if err := d.deps.Persister.Persist(ctx, meta, path); err != nil {
		metrics.ObservePersist("error")
		logger.Error("persist failed", zap.Error(err))
		out.Status = StatusPersistFailed
		out.Stage = "persist"
		out.Err = err
		return out
	}
	metrics.ObservePersist("ok")

	if d.deps.Guard != nil {
		d.deps.Guard.MarkIngested(ctx, path)
	}
	d.notifyIngested(ctx, logger, d.runID(item), meta, path)

	logger.Info("audiobook ingested", zap.String("title", meta.Title), zap.Strings("authors", meta.Authors))
	out.Status = StatusPersisted
	return out
}

// enrich fills the derived descriptions. Each step is independent and a
// failure leaves its field unset.
func (d *Dispatcher) enrich(ctx context.Context, logger *zap.Logger, meta models.AudiobookMetadata) models.AudiobookMetadata {
	if d.deps.Enricher == nil || strings.TrimSpace(meta.Description) == "" {
		return meta
	}
	if short, err := d.deps.Enricher.ShortDescription(ctx, meta.Description); err != nil {
		logger.Warn("short description failed", zap.Error(err))
	} else if short != "" {
		meta.VeryShortDescription = &short
	}
	if emb, err := d.deps.Enricher.EmbeddingDescription(ctx, meta.Description); err != nil {
		logger.Warn("embedding description failed", zap.Error(err))
	} else if emb != "" {
		meta.DescriptionForEmbeddings = &emb
	}
	return meta
}

// runID prefers the run carried by the item over the process run.
func (d *Dispatcher) runID(item models.WorkItem) string {
	if item.RunID != "" {
		return item.RunID
	}
	return d.cfg.RunID
}

func (d *Dispatcher) notifyIngested(ctx context.Context, logger *zap.Logger, runID string, meta models.AudiobookMetadata, path string) {
	if d.deps.Notifier == nil {
		return
	}
	event := models.IngestedAudiobook{
		RunID:      runID,
		Path:       path,
		Title:      meta.Title,
		Authors:    meta.Authors,
		IngestedAt: time.Now().UTC(),
	}
	if err := d.deps.Notifier.PublishIngested(ctx, event); err != nil {
		logger.Warn("ingestion notification failed", zap.Error(err))
	}
}

func (d *Dispatcher) extractionFailed(logger *zap.Logger, out Outcome, stage string, err error) Outcome {
	if errors.Is(err, context.Canceled) {
		logger.Info("detail interrupted", zap.String("stage", stage))
	} else {
		logger.Warn("detail extraction failed, dropping item", zap.String("stage", stage), zap.Error(err))
	}
	out.Status = StatusExtractionFailed
	out.Stage = stage
	out.Err = err
	return out
}
