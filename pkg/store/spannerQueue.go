package store

import (
	"context"
	"time"

	"cloud.google.com/go/spanner"
	"go.opentelemetry.io/otel"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"

	"github.com/zoff-tech/go-mobile-sdk/pkg/event"
)

const spannerTable = "mobile_event_queue"

var spannerColumns = []string{"transaction_id", "event_type", "enqueued_at", "body", "fields"}

type SpannerQueue struct {
	client *spanner.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewSpannerQueue(client *spanner.Client, ttl time.Duration) *SpannerQueue {
	return &SpannerQueue{client: client, ttl: ttl, now: time.Now}
}

func (s *SpannerQueue) Enqueue(ctx context.Context, ev event.Event) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Enqueue")
	defer span.End()

	start := time.Now()
	record := newQueuedEvent(ev)
	fields, err := encodeFields(record.Fields)
	if err != nil {
		return err
	}

	var fieldsCol spanner.NullString
	if fields != nil {
		fieldsCol = spanner.NullString{StringVal: string(fields), Valid: true}
	}

	_, err = s.client.Apply(ctx, []*spanner.Mutation{
		spanner.Insert(spannerTable, spannerColumns,
			[]interface{}{record.TransactionID, record.EventType, record.EnqueuedAt, record.Body, fieldsCol}),
	})
	// a duplicate transaction id keeps the first copy
	if err != nil && spanner.ErrCode(err) != codes.AlreadyExists {
		span.RecordError(err)
		return err
	}

	addDBStatsToSpan(span, "spanner", "Enqueue", 1, time.Since(start))
	return nil
}

func (s *SpannerQueue) ListPending(ctx context.Context, limit int) ([]event.Event, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "ListPending")
	defer span.End()

	start := time.Now()

	if cutoff := expiryCutoff(s.ttl, s.now()); !cutoff.IsZero() {
		_, err := s.client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
			_, err := txn.Update(ctx, spanner.Statement{
				SQL:    `DELETE FROM mobile_event_queue WHERE enqueued_at < @cutoff`,
				Params: map[string]interface{}{"cutoff": cutoff},
			})
			return err
		})
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	stmt := spanner.Statement{
		SQL: `SELECT transaction_id, event_type, enqueued_at, body, fields FROM mobile_event_queue
              ORDER BY enqueued_at LIMIT @limit`,
		Params: map[string]interface{}{
			"limit": int64(limit),
		},
	}

	iter := s.client.Single().Query(ctx, stmt)
	defer iter.Stop()

	var events []event.Event
	var undecodable []*spanner.Mutation
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			span.RecordError(err)
			return nil, err
		}

		var record queuedEvent
		var fields spanner.NullString
		if err := row.Columns(
			&record.TransactionID,
			&record.EventType,
			&record.EnqueuedAt,
			&record.Body,
			&fields); err != nil {
			span.RecordError(err)
			return nil, err
		}

		ev, err := decodeRecord(record, []byte(fields.StringVal))
		if err != nil {
			undecodable = append(undecodable, spanner.Delete(spannerTable, spanner.Key{record.TransactionID}))
			continue
		}
		events = append(events, ev)
	}

	if len(undecodable) > 0 {
		if _, err := s.client.Apply(ctx, undecodable); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	addDBStatsToSpan(span, "spanner", "ListPending", len(events), time.Since(start))

	return events, nil
}

func (s *SpannerQueue) Remove(ctx context.Context, transactionID string) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Remove")
	defer span.End()

	_, err := s.client.Apply(ctx, []*spanner.Mutation{
		spanner.Delete(spannerTable, spanner.Key{transactionID}),
	})
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (s *SpannerQueue) Close() error {
	s.client.Close()
	return nil
}
