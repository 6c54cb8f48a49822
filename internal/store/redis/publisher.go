// Package redis mirrors the latest snapshot set to Redis so the external
// read-only serving layer never touches SQLite. The mirror is best-effort:
// a Redis outage degrades to a logged warning, it never fails a batch run.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"nfo-analytics/internal/model"
)

const (
	snapshotKeyPrefix = "snapshot:latest:" // + token → snapshot JSON
	snapshotIndexKey  = "snapshot:tokens"  // set of tokens in the current set
	runSummaryKey     = "snapshot:run_summary"
)

// PublisherConfig configures the Redis publisher.
type PublisherConfig struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string
	DB       int
	TTL      time.Duration // expiry on mirrored keys
}

// Publisher mirrors snapshots and run summaries to Redis.
type Publisher struct {
	client *goredis.Client
	ttl    time.Duration
}

// Client returns the underlying Redis client for health checks.
func (p *Publisher) Client() *goredis.Client { return p.client }

// NewPublisher connects to Redis and pings the server.
func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	slog.Info("redis connected", "addr", cfg.Addr)
	return &Publisher{client: client, ttl: cfg.TTL}, nil
}

// PublishSnapshots replaces the mirrored snapshot set: stale keys from the
// previous generation are deleted so readers never see a mixed set.
func (p *Publisher) PublishSnapshots(ctx context.Context, snaps []model.Snapshot) error {
	old, err := p.client.SMembers(ctx, snapshotIndexKey).Result()
	if err != nil && err != goredis.Nil {
		return fmt.Errorf("redis read index: %w", err)
	}

	pipe := p.client.TxPipeline()
	for _, token := range old {
		pipe.Del(ctx, snapshotKeyPrefix+token)
	}
	pipe.Del(ctx, snapshotIndexKey)

	for i := range snaps {
		sn := &snaps[i]
		pipe.Set(ctx, snapshotKeyPrefix+sn.Token, sn.JSON(), p.ttl)
		pipe.SAdd(ctx, snapshotIndexKey, sn.Token)
	}
	if len(snaps) > 0 {
		pipe.Expire(ctx, snapshotIndexKey, p.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis publish snapshots: %w", err)
	}
	return nil
}

// PublishRunSummary stores the latest batch run summary as JSON.
func (p *Publisher) PublishRunSummary(ctx context.Context, summary any) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal run summary: %w", err)
	}
	if err := p.client.Set(ctx, runSummaryKey, data, p.ttl).Err(); err != nil {
		return fmt.Errorf("redis publish summary: %w", err)
	}
	return nil
}

// Close releases the client.
func (p *Publisher) Close() error {
	return p.client.Close()
}
