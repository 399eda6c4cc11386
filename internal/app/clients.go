package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/kotobalabs/kotoba-backend/internal/pkg/envutil"
	"github.com/kotobalabs/kotoba-backend/internal/pkg/logger"
	"github.com/kotobalabs/kotoba-backend/internal/platform/gcp"
	"github.com/kotobalabs/kotoba-backend/internal/platform/openai"
	"github.com/kotobalabs/kotoba-backend/internal/temporalx"
)

type Clients struct {
	OpenAI   openai.Client
	Temporal temporalsdkclient.Client
	Redis    *redis.Client
	Bucket   gcp.BucketService
}

func wireClients(ctx context.Context, log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	oa, err := openai.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}

	tc, err := temporalx.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init temporal client: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     envutil.Str("REDIS_ADDR", "localhost:6379"),
		Password: envutil.Str("REDIS_PASSWORD", ""),
		DB:       envutil.Int("REDIS_DB", 0),
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("Redis not reachable at startup; completion events may be delayed", "error", err)
	}

	bucket, err := gcp.NewBucketService(ctx, log)
	if err != nil {
		return Clients{}, fmt.Errorf("init bucket service: %w", err)
	}

	return Clients{
		OpenAI:   oa,
		Temporal: tc,
		Redis:    rdb,
		Bucket:   bucket,
	}, nil
}

func (c Clients) Close() {
	if c.Temporal != nil {
		c.Temporal.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Bucket != nil {
		_ = c.Bucket.Close()
	}
}
