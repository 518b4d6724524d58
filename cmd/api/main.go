package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MMMarcy/voxlume/common"
	"github.com/MMMarcy/voxlume/internal/config"
	"github.com/MMMarcy/voxlume/internal/crawler"
	"github.com/MMMarcy/voxlume/internal/logging"
	"github.com/MMMarcy/voxlume/internal/metrics"
	"github.com/MMMarcy/voxlume/internal/models"
	"github.com/MMMarcy/voxlume/internal/queue"
	"github.com/MMMarcy/voxlume/internal/store"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

type server struct {
	queue      crawler.Enqueuer
	store      store.StatusStore
	listingURL func(int) string
	defaults   config.CrawlConfig
	logger     *zap.Logger
}

func main() {
	configPath := flag.String("config", "", "path to a config file (yaml or json)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger, err := logging.WithLevel(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if !queue.Shared(cfg.Queue.Driver) {
		logger.Fatal("the api needs a shared queue driver (kafka or pgmq)", zap.String("driver", cfg.Queue.Driver))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	q, err := queue.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open queue", zap.Error(err))
	}
	defer func() {
		if err := q.Close(); err != nil {
			logger.Warn("failed to close queue", zap.Error(err))
		}
	}()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("failed to close redis client", zap.Error(err))
		}
	}()

	metrics.Init()
	srv := &server{
		queue:      q,
		store:      store.NewRedisStatusStore(rdb, cfg.Redis.StatusPrefix, cfg.Redis.StatusTTL),
		listingURL: cfg.Site.ListingURL,
		defaults:   cfg.Crawl,
		logger:     logger,
	}

	httpServer := &http.Server{
		Addr:              cfg.API.Addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("api listening", zap.String("addr", cfg.API.Addr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("api server failed", zap.Error(err))
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/runs", s.handleCreateRun)
	r.Get("/runs", s.handleListRuns)
	r.Get("/runs/{runID}", s.handleRunStatus)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	return r
}

// handleCreateRun seeds listing pages [start, end) onto the shared queue for
// crawler workers to drain.
//
// Method: POST
// Path:   /runs?start=1&end=5
// Example:
//
//	curl -X POST "http://localhost:8080/runs?start=1&end=5"
func (s *server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	start := common.ParseInt(query.Get("start"), s.defaults.PageStart)
	end := common.ParseInt(query.Get("end"), s.defaults.PageEnd)
	if start < 1 || end <= start {
		http.Error(w, "invalid page range", http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	status := models.CrawlStatus{
		RunID:     uuid.NewString(),
		Mode:      "backfill",
		PageStart: start,
		PageEnd:   end,
		Status:    models.RunQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	n, err := crawler.SeedListings(ctx, s.queue, s.listingURL, status.RunID, start, end)
	if err != nil {
		s.logger.Error("failed to seed listing pages", zap.Error(err))
		http.Error(w, "failed to enqueue listing pages", http.StatusBadGateway)
		return
	}
	status.Counters.Enqueued = n

	if err := s.store.SetStatus(ctx, status); err != nil {
		s.logger.Error("failed to persist run status", zap.String("run_id", status.RunID), zap.Error(err))
		http.Error(w, "failed to persist status", http.StatusBadGateway)
		return
	}

	s.logger.Info("run queued", zap.String("run_id", status.RunID), zap.Int("start", start), zap.Int("end", end))
	writeJSON(w, status, http.StatusAccepted)
}

// handleRunStatus returns the status of a run.
//
// Method: GET
// Path:   /runs/{runID}
func (s *server) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	runID := strings.TrimSpace(chi.URLParam(r, "runID"))
	if runID == "" {
		http.Error(w, "missing run id", http.StatusBadRequest)
		return
	}

	status, ok, err := s.store.GetStatus(r.Context(), runID)
	if err != nil {
		http.Error(w, "failed to load status", http.StatusBadGateway)
		return
	}
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, status, http.StatusOK)
}

// handleListRuns returns recent runs, newest first.
//
// Method: GET
// Path:   /runs?limit=20
func (s *server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := common.ParseInt(r.URL.Query().Get("limit"), defaultListLimit)
	if limit < 1 || limit > maxListLimit {
		http.Error(w, "invalid limit", http.StatusBadRequest)
		return
	}

	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list runs", zap.Error(err))
		http.Error(w, "failed to list runs", http.StatusBadGateway)
		return
	}
	if runs == nil {
		runs = []models.CrawlStatus{}
	}
	writeJSON(w, runs, http.StatusOK)
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

func writeJSON(w http.ResponseWriter, payload any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
