package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Site.DomainKeyword != "audiobookbay" {
		t.Fatalf("unexpected domain keyword %q", cfg.Site.DomainKeyword)
	}
	if cfg.Crawl.Delay != 30*time.Second {
		t.Fatalf("unexpected delay %s", cfg.Crawl.Delay)
	}
	if cfg.Crawl.DetailWorkers != 1 {
		t.Fatalf("detail workers should default to 1, got %d", cfg.Crawl.DetailWorkers)
	}
	if cfg.Crawl.LatestInterval != 30*time.Minute {
		t.Fatalf("unexpected latest interval %s", cfg.Crawl.LatestInterval)
	}
	if cfg.Queue.Driver != QueueMemory {
		t.Fatalf("unexpected queue driver %q", cfg.Queue.Driver)
	}
	if got := cfg.Site.ListingURL(3); got != "https://audiobookbay.is/member/index?pid=3" {
		t.Fatalf("unexpected listing url %q", got)
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
logging:
  development: true
site:
  extensions: ["lu", "fi"]
  scheme: http
  respect_robots: false
crawl:
  page_start: 5
  page_end: 10
  delay: 2s
  detail_workers: 3
  override_existing: true
  stop_on_existing: false
queue:
  driver: pgmq
pgmq:
  dsn: postgres://localhost:5433/postgres
redis:
  enabled: true
  dedupe_ttl: 1h
llm:
  model: local-model
  base_url: http://localhost:11434/v1
  token_budget: 8000
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Logging.Development {
		t.Fatal("expected development logging")
	}
	if cfg.Site.BaseURL() != "http://audiobookbay.lu/" {
		t.Fatalf("unexpected base url %q", cfg.Site.BaseURL())
	}
	if cfg.Crawl.PageStart != 5 || cfg.Crawl.PageEnd != 10 {
		t.Fatalf("unexpected page range %d-%d", cfg.Crawl.PageStart, cfg.Crawl.PageEnd)
	}
	if cfg.Crawl.Delay != 2*time.Second || cfg.Crawl.DetailWorkers != 3 {
		t.Fatalf("unexpected crawl config %+v", cfg.Crawl)
	}
	if !cfg.Crawl.OverrideExisting || cfg.Crawl.StopOnExisting {
		t.Fatalf("unexpected existing-book switches %+v", cfg.Crawl)
	}
	if cfg.Queue.Driver != QueuePGMQ || cfg.PGMQ.Queue != "voxlume_work" {
		t.Fatalf("unexpected queue config %+v %+v", cfg.Queue, cfg.PGMQ)
	}
	if !cfg.Redis.Enabled || cfg.Redis.DedupeTTL != time.Hour {
		t.Fatalf("unexpected redis config %+v", cfg.Redis)
	}
	if cfg.LLM.TokenBudget != 8000 || cfg.LLM.BaseURL == "" {
		t.Fatalf("unexpected llm config %+v", cfg.LLM)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("VOXLUME_QUEUE_DRIVER", "kafka")
	t.Setenv("VOXLUME_KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("VOXLUME_CRAWL_DETAIL_WORKERS", "4")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Queue.Driver != QueueKafka {
		t.Fatalf("unexpected driver %q", cfg.Queue.Driver)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.Kafka.Brokers)
	}
	if cfg.Crawl.DetailWorkers != 4 {
		t.Fatalf("unexpected workers %d", cfg.Crawl.DetailWorkers)
	}
}

func TestLoadConfigPathFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "voxlume.yaml")
	if err := os.WriteFile(path, []byte("crawl:\n  page_end: 7\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("VOXLUME_CONFIG", path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Crawl.PageEnd != 7 {
		t.Fatalf("expected page_end from VOXLUME_CONFIG, got %d", cfg.Crawl.PageEnd)
	}
}

func TestValidate(t *testing.T) {
	base, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"bad range", func(c *Config) { c.Crawl.PageStart, c.Crawl.PageEnd = 3, 3 }, "page range"},
		{"zero start", func(c *Config) { c.Crawl.PageStart = 0 }, "page range"},
		{"no workers", func(c *Config) { c.Crawl.DetailWorkers = 0 }, "detail_workers"},
		{"unknown queue", func(c *Config) { c.Queue.Driver = "sqs" }, "queue.driver"},
		{"pgmq without dsn", func(c *Config) { c.Queue.Driver = QueuePGMQ }, "pgmq.dsn"},
		{"listing path", func(c *Config) { c.Site.ListingPath = "member/index" }, "listing_path"},
		{"no extensions", func(c *Config) { c.Site.Extensions = nil }, "extensions"},
		{"provider", func(c *Config) { c.LLM.Provider = "gemini" }, "llm.provider"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			cfg.Site.Extensions = append([]string(nil), base.Site.Extensions...)
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadLocalCacheFromEnv(t *testing.T) {
	t.Setenv("VOXLUME_CACHE_DIR", "/var/lib/voxlume/seen")
	t.Setenv("VOXLUME_CACHE_TTL", "48h")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Cache.Dir != "/var/lib/voxlume/seen" {
		t.Fatalf("unexpected cache dir %q", cfg.Cache.Dir)
	}
	if cfg.Cache.TTL != 48*time.Hour {
		t.Fatalf("unexpected cache ttl %s", cfg.Cache.TTL)
	}
}
