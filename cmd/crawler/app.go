package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MMMarcy/voxlume/internal/config"
	"github.com/MMMarcy/voxlume/internal/crawler"
	"github.com/MMMarcy/voxlume/internal/dedupe"
	"github.com/MMMarcy/voxlume/internal/extract"
	"github.com/MMMarcy/voxlume/internal/fetch"
	"github.com/MMMarcy/voxlume/internal/graph"
	"github.com/MMMarcy/voxlume/internal/kafka"
	"github.com/MMMarcy/voxlume/internal/metrics"
	"github.com/MMMarcy/voxlume/internal/queue"
	"github.com/MMMarcy/voxlume/internal/region"
	"github.com/MMMarcy/voxlume/internal/store"
)

// app owns the long lived clients of one crawler process.
type app struct {
	driver  *crawler.Driver
	closers []func() error
	logger  *zap.Logger
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("failed to close resource", zap.Error(err))
		}
	}
}

func newApp(ctx context.Context, cfg config.Config, opts options, logger *zap.Logger) (_ *app, err error) {
	metrics.Init()
	a := &app{logger: logger}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	neo4jDriver, err := graph.NewDriver(graph.Neo4jConfig{
		URI:      cfg.Neo4j.URI,
		User:     cfg.Neo4j.User,
		Password: cfg.Neo4j.Password,
		Database: cfg.Neo4j.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j driver: %w", err)
	}
	a.closers = append(a.closers, func() error {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return neo4jDriver.Close(closeCtx)
	})
	graphStore := graph.NewStore(neo4jDriver, cfg.Neo4j.Database, logger)
	if err := graphStore.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure graph schema: %w", err)
	}

	var (
		seen   dedupe.SeenCache
		status crawler.StatusReporter
	)
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		a.closers = append(a.closers, rdb.Close)
		seen = store.NewRedisSeenCache(rdb, cfg.Redis.DedupePrefix, cfg.Redis.DedupeTTL)
		status = store.NewRedisStatusStore(rdb, cfg.Redis.StatusPrefix, cfg.Redis.StatusTTL)
	} else if cfg.Cache.Dir != "" {
		local, err := store.OpenBadgerSeenCache(cfg.Cache.Dir, "seen:", cfg.Cache.TTL, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, local.Close)
		seen = local
	}
	guard := dedupe.NewGuard(graphStore, seen, logger)

	work, err := queue.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open queue: %w", err)
	}
	a.closers = append(a.closers, work.Close)

	var notifier crawler.Notifier
	if len(cfg.Kafka.Brokers) > 0 && (cfg.Kafka.IngestedTopic != "" || cfg.Kafka.DeadLetterTopic != "") {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, kafka.Topics{
			Ingested:   cfg.Kafka.IngestedTopic,
			DeadLetter: cfg.Kafka.DeadLetterTopic,
		})
		a.closers = append(a.closers, producer.Close)
		notifier = producer
	}

	llm, err := extract.NewOpenAI(extract.OpenAIConfig{
		Model:   cfg.LLM.Model,
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("llm client: %w", err)
	}
	extractor, err := extract.New(llm, extract.Config{
		TokenBudget: cfg.LLM.TokenBudget,
		Encoding:    cfg.LLM.Encoding,
		Markdown:    cfg.LLM.Markdown,
		Temperature: cfg.LLM.Temperature,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("extractor: %w", err)
	}

	fetcher := fetch.New(fetch.Config{
		DomainKeyword:  cfg.Site.DomainKeyword,
		Extensions:     cfg.Site.Extensions,
		UserAgent:      cfg.Site.UserAgent,
		RequestTimeout: cfg.Site.RequestTimeout,
		MaxBodySize:    cfg.Site.MaxBodyBytes,
		RespectRobots:  cfg.Site.RespectRobots,
	}, logger)

	dispatcher := crawler.NewDispatcher(dispatcherConfig(cfg, opts), crawler.Dependencies{
		Fetcher:   fetcher,
		Regions:   region.New(),
		Extractor: extractor,
		Enricher:  extractor,
		Guard:     guard,
		Persister: graphStore,
		Queue:     work,
		Notifier:  notifier,
	}, logger)

	a.driver = crawler.NewDriver(driverConfig(cfg, opts), work, dispatcher, notifier, status, logger)
	return a, nil
}

func dispatcherConfig(cfg config.Config, opts options) crawler.DispatcherConfig {
	return crawler.DispatcherConfig{
		BaseURL:          cfg.Site.BaseURL(),
		DomainKeyword:    cfg.Site.DomainKeyword,
		OverrideExisting: cfg.Crawl.OverrideExisting,
		StopOnExisting:   cfg.Crawl.StopOnExisting,
		RunID:            opts.runID,
	}
}

func driverConfig(cfg config.Config, opts options) crawler.DriverConfig {
	return crawler.DriverConfig{
		ListingURL:    cfg.Site.ListingURL,
		Delay:         cfg.Crawl.Delay,
		DetailWorkers: cfg.Crawl.DetailWorkers,
		ItemTimeout:   cfg.Crawl.ItemTimeout,
		RunID:         opts.runID,
		Mode:          opts.mode,
	}
}
