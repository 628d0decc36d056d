package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/zoff-tech/go-mobile-sdk/pkg/event"
)

const (
	redisDataKey    = "mobile_events:data"    // hash: transaction id -> record
	redisPendingKey = "mobile_events:pending" // sorted set scored by enqueue time (ms)
)

type RedisQueue struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisQueue(client *redis.Client, ttl time.Duration) *RedisQueue {
	return &RedisQueue{client: client, ttl: ttl, now: time.Now}
}

func (r *RedisQueue) Enqueue(ctx context.Context, ev event.Event) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Enqueue")
	defer span.End()

	startTime := time.Now()
	record := newQueuedEvent(ev)
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSetNX(ctx, redisDataKey, record.TransactionID, data)
		pipe.ZAddNX(ctx, redisPendingKey, redis.Z{
			Score:  float64(record.EnqueuedAt.UnixMilli()),
			Member: record.TransactionID,
		})
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	addDBStatsToSpan(span, "redis", "Enqueue", 1, time.Since(startTime))
	return nil
}

func (r *RedisQueue) ListPending(ctx context.Context, limit int) ([]event.Event, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "ListPending")
	defer span.End()

	startTime := time.Now()

	if cutoff := expiryCutoff(r.ttl, r.now()); !cutoff.IsZero() {
		expired, err := r.client.ZRangeByScore(ctx, redisPendingKey, &redis.ZRangeBy{
			Min: "-inf",
			Max: "(" + strconv.FormatInt(cutoff.UnixMilli(), 10),
		}).Result()
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if err := r.removeAll(ctx, expired); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	ids, err := r.client.ZRange(ctx, redisPendingKey, 0, int64(limit)-1).Result()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	values, err := r.client.HMGet(ctx, redisDataKey, ids...).Result()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var events []event.Event
	var undecodable []string
	for i, value := range values {
		ev, err := decodeRedisValue(value)
		if err != nil {
			undecodable = append(undecodable, ids[i])
			continue
		}
		events = append(events, ev)
	}

	if err := r.removeAll(ctx, undecodable); err != nil {
		span.RecordError(err)
		return nil, err
	}

	addDBStatsToSpan(span, "redis", "ListPending", len(events), time.Since(startTime))

	return events, nil
}

var errMissingRecord = errors.New("queued event record is missing")

func decodeRedisValue(value interface{}) (event.Event, error) {
	data, ok := value.(string)
	if !ok {
		return event.Event{}, errMissingRecord
	}
	var record queuedEvent
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return event.Event{}, err
	}
	return record.toEvent()
}

func (r *RedisQueue) Remove(ctx context.Context, transactionID string) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Remove")
	defer span.End()

	err := r.removeAll(ctx, []string{transactionID})
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (r *RedisQueue) removeAll(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, redisPendingKey, members...)
		pipe.HDel(ctx, redisDataKey, ids...)
		return nil
	})
	return err
}

func (r *RedisQueue) Close() error {
	return r.client.Close()
}
