package store

import (
	"context"
	"database/sql"
	"fmt"

	"cloud.google.com/go/spanner"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zoff-tech/go-mobile-sdk/pkg/config"

	_ "github.com/lib/pq" // PostgreSQL driver
)

const (
	defaultDBName     = "mobile_sdk"
	defaultCollection = "mobile_event_queue"
)

var sqlOpen = sql.Open

var NewSpannerQueueFactory = func(client *spanner.Client, cfg config.DbSettings) DurableQueue {
	return NewSpannerQueue(client, cfg.EventTTL)
}

// NewQueue creates the DurableQueue selected by cfg.Type.
func NewQueue(ctx context.Context, cfg config.DbSettings) (DurableQueue, error) {
	switch cfg.Type {
	case "postgres":
		db, err := sqlOpen("postgres", cfg.DSN)
		if err != nil {
			return nil, err
		}
		return NewPostgresQueue(db, cfg.EventTTL), nil
	case "spanner":
		client, err := spanner.NewClient(ctx, cfg.URI)
		if err != nil {
			return nil, err
		}
		return NewSpannerQueueFactory(client, cfg), nil
	case "mongo":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
		if err != nil {
			return nil, err
		}
		return NewMongoQueue(client, withDefault(cfg.DBName, defaultDBName), withDefault(cfg.Collection, defaultCollection), cfg.EventTTL), nil
	case "redis":
		opts, err := redis.ParseURL(cfg.URI)
		if err != nil {
			return nil, err
		}
		return NewRedisQueue(redis.NewClient(opts), cfg.EventTTL), nil
	case "memory":
		return NewMemoryQueue(cfg.EventTTL), nil
	default:
		return nil, fmt.Errorf("unsupported DB type: %s", cfg.Type)
	}
}

func withDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
