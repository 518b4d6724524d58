package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/MMMarcy/voxlume/common"
	"github.com/MMMarcy/voxlume/internal/config"
	"github.com/MMMarcy/voxlume/internal/graph"
)

// check probes one backing service.
type check struct {
	name  string
	probe func(ctx context.Context) (string, error)
}

func main() {
	configPath := flag.String("config", "", "path to a config file (yaml or json)")
	timeout := flag.String("timeout", common.GetEnv("VOXLUME_HEALTHCHECK_TIMEOUT", "5s"), "per check timeout")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	failed := runChecks(context.Background(), checksFor(cfg), common.ParseDuration(*timeout, 5*time.Second), os.Stdout)
	if failed > 0 {
		os.Exit(1)
	}
}

func checksFor(cfg config.Config) []check {
	checks := []check{{name: "neo4j", probe: neo4jProbe(cfg.Neo4j)}}
	if cfg.Queue.Driver == config.QueueKafka || len(cfg.Kafka.Brokers) > 0 {
		checks = append(checks, check{name: "kafka", probe: kafkaProbe(cfg.Kafka.Brokers)})
	}
	if cfg.Queue.Driver == config.QueuePGMQ {
		checks = append(checks, check{name: "pgmq", probe: pgmqProbe(cfg.PGMQ.DSN)})
	}
	if cfg.Redis.Enabled {
		checks = append(checks, check{name: "redis", probe: redisProbe(cfg.Redis)})
	}
	return checks
}

// runChecks runs every check in order and returns how many failed.
func runChecks(ctx context.Context, checks []check, timeout time.Duration, out io.Writer) int {
	failed := 0
	for _, c := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, timeout)
		detail, err := c.probe(checkCtx)
		cancel()
		if err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s: %v\n", c.name, err)
			continue
		}
		fmt.Fprintf(out, "ok   %s: %s\n", c.name, detail)
	}
	return failed
}

func kafkaProbe(brokers []string) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		if len(brokers) == 0 {
			return "", fmt.Errorf("no brokers configured")
		}
		conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
		if err != nil {
			return "", fmt.Errorf("connect to %s: %w", brokers[0], err)
		}
		defer conn.Close()

		partitions, err := conn.ReadPartitions()
		if err != nil {
			return "", fmt.Errorf("read metadata: %w", err)
		}
		return fmt.Sprintf("%s (%d partitions)", brokers[0], len(partitions)), nil
	}
}

func neo4jProbe(cfg config.Neo4jConfig) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		driver, err := graph.NewDriver(graph.Neo4jConfig{URI: cfg.URI, User: cfg.User, Password: cfg.Password, Database: cfg.Database})
		if err != nil {
			return "", err
		}
		defer func() { _ = driver.Close(context.Background()) }()
		if err := driver.VerifyConnectivity(ctx); err != nil {
			return "", err
		}
		return cfg.URI, nil
	}
}

func pgmqProbe(dsn string) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return "", err
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			return "", err
		}
		return "postgres reachable", nil
	}
}

func redisProbe(cfg config.RedisConfig) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return "", err
		}
		return cfg.Addr, nil
	}
}
