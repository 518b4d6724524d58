// Package config loads and validates voxlume configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/MMMarcy/voxlume/common"
	"github.com/MMMarcy/voxlume/internal/urls"
)

// Queue drivers.
const (
	QueueMemory = "memory"
	QueueKafka  = "kafka"
	QueuePGMQ   = "pgmq"
)

// Config captures every knob of the crawler, the api and the healthcheck.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Site    SiteConfig    `mapstructure:"site"`
	Crawl   CrawlConfig   `mapstructure:"crawl"`
	Queue   QueueConfig   `mapstructure:"queue"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	PGMQ    PGMQConfig    `mapstructure:"pgmq"`
	Neo4j   Neo4jConfig   `mapstructure:"neo4j"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Cache   CacheConfig   `mapstructure:"cache"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	API     APIConfig     `mapstructure:"api"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// SiteConfig describes the catalog site and how to talk to it.
type SiteConfig struct {
	DomainKeyword  string        `mapstructure:"domain_keyword"`
	Extensions     []string      `mapstructure:"extensions"`
	Scheme         string        `mapstructure:"scheme"`
	ListingPath    string        `mapstructure:"listing_path"`
	UserAgent      string        `mapstructure:"user_agent"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RespectRobots  bool          `mapstructure:"respect_robots"`
	MaxBodyBytes   int           `mapstructure:"max_body_bytes"`
}

// CrawlConfig governs seeding and draining.
type CrawlConfig struct {
	PageStart        int           `mapstructure:"page_start"`
	PageEnd          int           `mapstructure:"page_end"`
	Delay            time.Duration `mapstructure:"delay"`
	DetailWorkers    int           `mapstructure:"detail_workers"`
	OverrideExisting bool          `mapstructure:"override_existing"`
	StopOnExisting   bool          `mapstructure:"stop_on_existing"`
	LatestInterval   time.Duration `mapstructure:"latest_interval"`
	ItemTimeout      time.Duration `mapstructure:"item_timeout"`
}

// QueueConfig selects the work queue transport.
type QueueConfig struct {
	Driver string `mapstructure:"driver"`
}

// KafkaConfig lists brokers and topics.
type KafkaConfig struct {
	Brokers         []string      `mapstructure:"brokers"`
	WorkTopic       string        `mapstructure:"work_topic"`
	IngestedTopic   string        `mapstructure:"ingested_topic"`
	DeadLetterTopic string        `mapstructure:"dead_letter_topic"`
	GroupID         string        `mapstructure:"group_id"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
}

// PGMQConfig points at the Postgres instance running pgmq.
type PGMQConfig struct {
	DSN      string `mapstructure:"dsn"`
	Queue    string `mapstructure:"queue"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// Neo4jConfig holds graph store credentials.
type Neo4jConfig struct {
	URI      string `mapstructure:"uri"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// RedisConfig controls the seen-cache and the run status store.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	DedupePrefix string        `mapstructure:"dedupe_prefix"`
	DedupeTTL    time.Duration `mapstructure:"dedupe_ttl"`
	StatusPrefix string        `mapstructure:"status_prefix"`
	StatusTTL    time.Duration `mapstructure:"status_ttl"`
}

// CacheConfig places the local seen-cache used when Redis is disabled. An
// empty Dir turns the local cache off.
type CacheConfig struct {
	Dir string        `mapstructure:"dir"`
	TTL time.Duration `mapstructure:"ttl"`
}

// LLMConfig selects the structured extraction model.
type LLMConfig struct {
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	TokenBudget int     `mapstructure:"token_budget"`
	Encoding    string  `mapstructure:"encoding"`
	Markdown    bool    `mapstructure:"markdown"`
	Temperature float64 `mapstructure:"temperature"`
}

// MetricsConfig sets where the crawler exposes Prometheus metrics.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// APIConfig sets the api listen address.
type APIConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load builds a Config from an optional .env file, an optional config file
// and VOXLUME_* environment variables. An empty path falls back to
// $VOXLUME_CONFIG.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("VOXLUME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path == "" {
		path = common.GetEnv("VOXLUME_CONFIG", "")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	// Comma separated lists arrive as one string from the environment.
	cfg.Site.Extensions = common.SplitList(cfg.Site.Extensions)
	cfg.Kafka.Brokers = common.SplitList(cfg.Kafka.Brokers)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.level", "info")

	v.SetDefault("site.domain_keyword", "audiobookbay")
	v.SetDefault("site.extensions", []string{"is", "lu"})
	v.SetDefault("site.scheme", "https")
	v.SetDefault("site.listing_path", "member/index?pid=%d")
	v.SetDefault("site.user_agent", "voxlume/1.0 (+https://github.com/MMMarcy/voxlume)")
	v.SetDefault("site.request_timeout", 30*time.Second)
	v.SetDefault("site.respect_robots", true)
	v.SetDefault("site.max_body_bytes", 10<<20)

	v.SetDefault("crawl.page_start", 1)
	v.SetDefault("crawl.page_end", 2)
	v.SetDefault("crawl.delay", 30*time.Second)
	v.SetDefault("crawl.detail_workers", 1)
	v.SetDefault("crawl.override_existing", false)
	v.SetDefault("crawl.stop_on_existing", true)
	v.SetDefault("crawl.latest_interval", 30*time.Minute)
	v.SetDefault("crawl.item_timeout", 5*time.Minute)

	v.SetDefault("queue.driver", QueueMemory)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.work_topic", "voxlume.work")
	v.SetDefault("kafka.ingested_topic", "voxlume.ingested")
	v.SetDefault("kafka.dead_letter_topic", "voxlume.dlq")
	v.SetDefault("kafka.group_id", "voxlume-crawler")
	v.SetDefault("kafka.idle_timeout", 10*time.Second)

	v.SetDefault("pgmq.dsn", "")
	v.SetDefault("pgmq.queue", "voxlume_work")
	v.SetDefault("pgmq.max_conns", 4)

	v.SetDefault("neo4j.uri", "neo4j://localhost:7687")
	v.SetDefault("neo4j.user", "neo4j")
	v.SetDefault("neo4j.password", "password")
	v.SetDefault("neo4j.database", "")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.dedupe_prefix", "voxlume:seen:")
	v.SetDefault("redis.dedupe_ttl", 30*24*time.Hour)
	v.SetDefault("redis.status_prefix", "voxlume:run:")
	v.SetDefault("redis.status_ttl", 7*24*time.Hour)

	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.ttl", 0)

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.token_budget", 30000)
	v.SetDefault("llm.encoding", "cl100k_base")
	v.SetDefault("llm.markdown", true)
	v.SetDefault("llm.temperature", 0.0)

	v.SetDefault("metrics.addr", ":2112")
	v.SetDefault("api.addr", ":8080")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Site.DomainKeyword == "" {
		return fmt.Errorf("site.domain_keyword is required")
	}
	if len(c.Site.Extensions) == 0 {
		return fmt.Errorf("site.extensions needs at least one entry")
	}
	if !strings.Contains(c.Site.ListingPath, "%d") {
		return fmt.Errorf("site.listing_path must contain %%d for the page number")
	}
	if c.Site.RequestTimeout <= 0 {
		return fmt.Errorf("site.request_timeout must be > 0")
	}
	if c.Crawl.PageStart < 1 || c.Crawl.PageEnd <= c.Crawl.PageStart {
		return fmt.Errorf("crawl page range [%d, %d) is invalid", c.Crawl.PageStart, c.Crawl.PageEnd)
	}
	if c.Crawl.Delay < 0 {
		return fmt.Errorf("crawl.delay must be >= 0")
	}
	if c.Crawl.DetailWorkers < 1 {
		return fmt.Errorf("crawl.detail_workers must be >= 1")
	}
	switch c.Queue.Driver {
	case QueueMemory:
	case QueueKafka:
		if len(c.Kafka.Brokers) == 0 || c.Kafka.WorkTopic == "" {
			return fmt.Errorf("kafka.brokers and kafka.work_topic are required for the kafka queue")
		}
	case QueuePGMQ:
		if c.PGMQ.DSN == "" {
			return fmt.Errorf("pgmq.dsn is required for the pgmq queue")
		}
	default:
		return fmt.Errorf("queue.driver %q is not one of memory, kafka, pgmq", c.Queue.Driver)
	}
	if c.Neo4j.URI == "" {
		return fmt.Errorf("neo4j.uri is required")
	}
	if c.LLM.Provider != "openai" {
		return fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	return nil
}

// BaseURL is the catalog root on the first mirror.
func (s SiteConfig) BaseURL() string {
	return urls.Base(s.Scheme, s.DomainKeyword, s.Extensions[0])
}

// ListingURL returns the address of listing page n.
func (s SiteConfig) ListingURL(page int) string {
	return urls.Merge(s.BaseURL(), fmt.Sprintf(s.ListingPath, page))
}
