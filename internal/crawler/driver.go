package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MMMarcy/voxlume/internal/metrics"
	"github.com/MMMarcy/voxlume/internal/models"
)

// DriverConfig tunes how the queue is drained.
type DriverConfig struct {
	// ListingURL builds the address of a listing page number.
	ListingURL func(page int) string
	// Delay is waited before a dequeue when the previous item hit the network.
	Delay time.Duration
	// DetailWorkers bounds concurrent detail pages. 1 keeps the drain sequential.
	DetailWorkers int
	// ItemTimeout caps a single dispatch; zero disables it.
	ItemTimeout time.Duration
	RunID       string
	Mode        string
}

// Driver seeds listing pages and drains the queue through a dispatcher.
type Driver struct {
	cfg        DriverConfig
	queue      Queue
	dispatcher ItemDispatcher
	notifier   Notifier
	status     StatusReporter
	logger     *zap.Logger
	sleep      func(ctx context.Context, d time.Duration) error

	mu       sync.Mutex
	counters models.RunCounters
}

// NewDriver builds a Driver. notifier and status may be nil.
func NewDriver(cfg DriverConfig, queue Queue, dispatcher ItemDispatcher, notifier Notifier, status StatusReporter, logger *zap.Logger) *Driver {
	if cfg.DetailWorkers < 1 {
		cfg.DetailWorkers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		cfg:        cfg,
		queue:      queue,
		dispatcher: dispatcher,
		notifier:   notifier,
		status:     status,
		logger:     logger,
		sleep:      sleepContext,
	}
}

// SeedListings enqueues one listing item per page in [start, end), highest
// page first, tagged with runID.
func SeedListings(ctx context.Context, q Enqueuer, listingURL func(int) string, runID string, start, end int) (int, error) {
	if start < 1 || end <= start {
		return 0, fmt.Errorf("invalid page range [%d, %d)", start, end)
	}
	n := 0
	for page := end - 1; page >= start; page-- {
		item := models.NewListingItem(listingURL(page))
		item.RunID = runID
		if err := q.Enqueue(ctx, item); err != nil {
			return n, fmt.Errorf("enqueue listing page %d: %w", page, err)
		}
		n++
	}
	metrics.AddEnqueued(models.PageKindListing.String(), n)
	return n, nil
}

// Backfill seeds pages [start, end) and drains the queue.
func (d *Driver) Backfill(ctx context.Context, start, end int) error {
	created := time.Now().UTC()
	status := models.CrawlStatus{
		RunID:     d.cfg.RunID,
		Mode:      d.mode("backfill"),
		PageStart: start,
		PageEnd:   end,
		Status:    models.RunRunning,
		CreatedAt: created,
	}
	d.report(ctx, status)

	n, err := SeedListings(ctx, d.queue, d.cfg.ListingURL, d.cfg.RunID, start, end)
	if err == nil {
		d.addCounters(models.RunCounters{Enqueued: n})
		d.logger.Info("listing pages seeded", zap.Int("start", start), zap.Int("end", end), zap.Int("pages", n))
		err = d.drain(ctx)
	}
	d.finish(status, err)
	return err
}

// Latest repeatedly ingests the first listing page, pausing interval between
// rounds, until ctx is cancelled.
func (d *Driver) Latest(ctx context.Context, interval time.Duration) error {
	status := models.CrawlStatus{
		RunID:     d.cfg.RunID,
		Mode:      d.mode("latest"),
		PageStart: 1,
		PageEnd:   2,
		Status:    models.RunRunning,
		CreatedAt: time.Now().UTC(),
	}
	for round := 1; ; round++ {
		d.report(ctx, status)
		n, err := SeedListings(ctx, d.queue, d.cfg.ListingURL, d.cfg.RunID, 1, 2)
		if err == nil {
			d.addCounters(models.RunCounters{Enqueued: n})
			err = d.drain(ctx)
		}
		if err != nil {
			if ctx.Err() != nil {
				d.finish(status, nil)
				return nil
			}
			d.finish(status, err)
			return err
		}
		d.logger.Info("latest round finished", zap.Int("round", round), zap.Duration("next_in", interval))
		if err := d.sleep(ctx, interval); err != nil {
			d.finish(status, nil)
			return nil
		}
	}
}

// Drain dispatches queued items until the queue is empty, a fatal error
// occurs or ctx is cancelled. Cancellation is only observed between items.
//
// Progress is reported under the configured run id. A worker draining a run
// queued through the api must be started with that run's id; the page range
// and creation time of the queued record are kept by the status store.
func (d *Driver) Drain(ctx context.Context) error {
	status := models.CrawlStatus{
		RunID:  d.cfg.RunID,
		Mode:   d.mode("drain"),
		Status: models.RunRunning,
	}
	d.report(ctx, status)
	err := d.drain(ctx)
	if IsFatal(err) {
		d.finish(status, err)
	} else {
		d.finish(status, nil)
	}
	return err
}

func (d *Driver) drain(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		workers errgroup.Group
		fatalMu sync.Mutex
		fatal   error
		stopped bool
	)
	workers.SetLimit(d.cfg.DetailWorkers)
	setFatal := func(err error) {
		fatalMu.Lock()
		defer fatalMu.Unlock()
		if fatal == nil {
			fatal = err
		}
		cancel()
	}
	halted := func() bool {
		fatalMu.Lock()
		defer fatalMu.Unlock()
		return fatal != nil || stopped
	}
	requestStop := func() {
		fatalMu.Lock()
		defer fatalMu.Unlock()
		stopped = true
	}

	wait := false
	for !halted() {
		if err := ctx.Err(); err != nil {
			setFatal(err)
			break
		}
		if wait {
			if err := d.sleep(runCtx, d.cfg.Delay); err != nil {
				setFatal(err)
				break
			}
		}

		item, ok, err := d.queue.Dequeue(runCtx)
		if err != nil {
			setFatal(fmt.Errorf("dequeue: %w", err))
			break
		}
		if !ok {
			// Items still in flight may be followed by work from other producers.
			_ = workers.Wait()
			if halted() {
				break
			}
			item, ok, err = d.queue.Dequeue(runCtx)
			if err != nil {
				setFatal(fmt.Errorf("dequeue: %w", err))
				break
			}
			if !ok {
				break
			}
		}

		if item.Kind == models.PageKindDetail && d.cfg.DetailWorkers > 1 {
			wait = true
			workers.Go(func() error {
				metrics.IncDetailsInFlight()
				defer metrics.DecDetailsInFlight()
				out, err := d.handle(runCtx, item)
				if err != nil {
					setFatal(err)
				} else if out.Stop {
					requestStop()
				}
				return nil
			})
			continue
		}

		out, err := d.handle(runCtx, item)
		if err != nil {
			setFatal(err)
			break
		}
		if out.Stop {
			requestStop()
		}
		wait = out.Fetched
	}

	_ = workers.Wait()
	if stopped && fatal == nil {
		d.logger.Info("drain stopped at an existing audiobook")
	}
	return fatal
}

// handle dispatches one item and records the outcome.
func (d *Driver) handle(ctx context.Context, item models.WorkItem) (Outcome, error) {
	if d.cfg.ItemTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.ItemTimeout)
		defer cancel()
	}

	start := time.Now()
	out, err := d.dispatcher.Dispatch(ctx, item)
	status := out.Status.String()
	if err != nil {
		status = "fatal"
	}
	metrics.ObserveDispatch(item.Kind.String(), status, time.Since(start))

	counters := models.RunCounters{Dispatched: 1, Enqueued: out.Enqueued}
	switch {
	case err != nil:
		counters.Failed = 1
		d.logger.Error("fatal dispatch error",
			zap.String("kind", item.Kind.String()),
			zap.String("url", item.URL),
			zap.Error(err),
		)
	case out.Status == StatusPersisted:
		counters.Persisted = 1
	case out.Status == StatusSkippedExisting:
		counters.Skipped = 1
	case out.Status.Dropped():
		counters.Failed = 1
		d.publishFailure(ctx, item, out)
	}
	d.addCounters(counters)
	return out, err
}

func (d *Driver) publishFailure(ctx context.Context, item models.WorkItem, out Outcome) {
	if d.notifier == nil {
		return
	}
	msg := ""
	if out.Err != nil {
		msg = out.Err.Error()
	}
	runID := item.RunID
	if runID == "" {
		runID = d.cfg.RunID
	}
	if d.cfg.RunID != "" && runID != d.cfg.RunID {
		d.logger.Debug("item belongs to another run", zap.String("item_run_id", runID), zap.String("run_id", d.cfg.RunID))
	}
	failure := models.CrawlFailure{
		RunID:    runID,
		Kind:     item.Kind,
		URL:      item.URL,
		Path:     item.Path,
		Stage:    out.Stage,
		Error:    msg,
		FailedAt: time.Now().UTC(),
	}
	// The item context may already be spent; use a short detached one.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := d.notifier.PublishFailure(pubCtx, failure); err != nil {
		d.logger.Warn("dead-letter publish failed", zap.String("url", item.URL), zap.Error(err))
	}
}

// Counters returns a snapshot of what the driver has processed so far.
func (d *Driver) Counters() models.RunCounters {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counters
}

func (d *Driver) addCounters(c models.RunCounters) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.counters.Dispatched += c.Dispatched
	d.counters.Enqueued += c.Enqueued
	d.counters.Persisted += c.Persisted
	d.counters.Skipped += c.Skipped
	d.counters.Failed += c.Failed
}

func (d *Driver) finish(status models.CrawlStatus, err error) {
	status.Status = models.RunCompleted
	if err != nil {
		status.Status = models.RunFailed
		status.Error = err.Error()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	d.report(ctx, status)
}

func (d *Driver) report(ctx context.Context, status models.CrawlStatus) {
	if d.status == nil || status.RunID == "" {
		return
	}
	status.Counters = d.Counters()
	status.UpdatedAt = time.Now().UTC()
	if err := d.status.SetStatus(ctx, status); err != nil {
		d.logger.Warn("status update failed", zap.String("run_id", status.RunID), zap.Error(err))
	}
}

func (d *Driver) mode(fallback string) string {
	if d.cfg.Mode != "" {
		return d.cfg.Mode
	}
	return fallback
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsFatal reports whether err came from a condition that ends a run rather
// than from cancellation.
func IsFatal(err error) bool {
	return err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
