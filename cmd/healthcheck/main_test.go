package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MMMarcy/voxlume/internal/config"
)

func TestRunChecksCountsFailures(t *testing.T) {
	var out bytes.Buffer
	checks := []check{
		{name: "up", probe: func(context.Context) (string, error) { return "fine", nil }},
		{name: "down", probe: func(context.Context) (string, error) { return "", errors.New("refused") }},
	}

	failed := runChecks(context.Background(), checks, time.Second, &out)

	assert.Equal(t, 1, failed)
	assert.Contains(t, out.String(), "ok   up: fine")
	assert.Contains(t, out.String(), "FAIL down: refused")
}

func TestRunChecksAppliesTimeout(t *testing.T) {
	var out bytes.Buffer
	slow := check{name: "slow", probe: func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}

	failed := runChecks(context.Background(), []check{slow}, 10*time.Millisecond, &out)

	assert.Equal(t, 1, failed)
	assert.Contains(t, out.String(), "deadline exceeded")
}

func TestChecksFor(t *testing.T) {
	names := func(checks []check) []string {
		var out []string
		for _, c := range checks {
			out = append(out, c.name)
		}
		return out
	}

	cfg := config.Config{Queue: config.QueueConfig{Driver: config.QueueMemory}}
	assert.Equal(t, []string{"neo4j"}, names(checksFor(cfg)))

	cfg.Queue.Driver = config.QueuePGMQ
	cfg.Kafka.Brokers = []string{"localhost:9092"}
	cfg.Redis.Enabled = true
	assert.Equal(t, []string{"neo4j", "kafka", "pgmq", "redis"}, names(checksFor(cfg)))
}

func TestKafkaProbeWithoutBrokers(t *testing.T) {
	_, err := kafkaProbe(nil)(context.Background())
	assert.Error(t, err)
}
