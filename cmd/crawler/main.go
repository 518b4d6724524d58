package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MMMarcy/voxlume/internal/config"
	"github.com/MMMarcy/voxlume/internal/crawler"
	"github.com/MMMarcy/voxlume/internal/logging"
)

const (
	modeBackfill = "backfill"
	modeLatest   = "latest"
	modeDrain    = "drain"
)

type options struct {
	configPath string
	mode       string
	pageStart  int
	pageEnd    int
	runID      string
}

func parseOptions(args []string, output io.Writer) (options, error) {
	fs := flag.NewFlagSet("crawler", flag.ContinueOnError)
	fs.SetOutput(output)

	var opts options
	fs.StringVar(&opts.configPath, "config", "", "path to a config file (yaml or json)")
	fs.StringVar(&opts.mode, "mode", modeBackfill, "backfill | latest | drain")
	fs.IntVar(&opts.pageStart, "page-start", 0, "first listing page (overrides crawl.page_start)")
	fs.IntVar(&opts.pageEnd, "page-end", 0, "listing page bound, exclusive (overrides crawl.page_end)")
	fs.StringVar(&opts.runID, "run-id", "", "run identifier; pass the api run id to drain a run queued through POST /runs (generated when empty)")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	switch opts.mode {
	case modeBackfill, modeLatest, modeDrain:
	default:
		return options{}, fmt.Errorf("unknown mode %q", opts.mode)
	}
	if opts.runID == "" {
		opts.runID = uuid.NewString()
	}
	return opts, nil
}

// apply folds command line overrides into the loaded config.
func (o options) apply(cfg *config.Config) error {
	if o.pageStart > 0 {
		cfg.Crawl.PageStart = o.pageStart
	}
	if o.pageEnd > 0 {
		cfg.Crawl.PageEnd = o.pageEnd
	}
	if o.mode == modeBackfill && (cfg.Crawl.PageStart < 1 || cfg.Crawl.PageEnd <= cfg.Crawl.PageStart) {
		return fmt.Errorf("invalid page range [%d, %d)", cfg.Crawl.PageStart, cfg.Crawl.PageEnd)
	}
	return nil
}

func main() {
	opts, err := parseOptions(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if err := opts.apply(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := logging.WithLevel(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, logger); err != nil {
		logger.Error("crawl failed", zap.String("run_id", opts.runID), zap.Error(err))
		if crawler.IsFatal(err) {
			stop()
			_ = logger.Sync()
			os.Exit(1)
		}
	}
}

func run(ctx context.Context, cfg config.Config, opts options, logger *zap.Logger) error {
	application, err := newApp(ctx, cfg, opts, logger)
	if err != nil {
		return err
	}
	defer application.close()

	if cfg.Metrics.Addr != "" {
		startMetricsServer(ctx, cfg.Metrics.Addr, logger)
	}

	logger.Info("crawler starting",
		zap.String("run_id", opts.runID),
		zap.String("mode", opts.mode),
		zap.String("queue", cfg.Queue.Driver),
		zap.String("base_url", cfg.Site.BaseURL()),
	)

	driver := application.driver
	switch opts.mode {
	case modeLatest:
		err = driver.Latest(ctx, cfg.Crawl.LatestInterval)
	case modeDrain:
		err = driver.Drain(ctx)
	default:
		err = driver.Backfill(ctx, cfg.Crawl.PageStart, cfg.Crawl.PageEnd)
	}

	counters := driver.Counters()
	logger.Info("crawler finished",
		zap.String("run_id", opts.runID),
		zap.Int("dispatched", counters.Dispatched),
		zap.Int("persisted", counters.Persisted),
		zap.Int("skipped", counters.Skipped),
		zap.Int("failed", counters.Failed),
	)
	return err
}
