package store

import (
	"context"
	"database/sql"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/zoff-tech/go-mobile-sdk/pkg/event"
)

const (
	pgInsertEvent = `INSERT INTO mobile_event_queue (transaction_id, event_type, enqueued_at, body, fields)
             VALUES ($1, $2, $3, $4, $5) ON CONFLICT (transaction_id) DO NOTHING`
	pgDeleteExpired = `DELETE FROM mobile_event_queue WHERE enqueued_at < $1`
	pgSelectPending = `SELECT transaction_id, event_type, enqueued_at, body, fields FROM mobile_event_queue
             ORDER BY enqueued_at LIMIT $1`
	pgDeleteEvent = `DELETE FROM mobile_event_queue WHERE transaction_id = $1`
)

type PostgresQueue struct {
	db  *sql.DB // using database/sql
	ttl time.Duration
	now func() time.Time
}

func NewPostgresQueue(db *sql.DB, ttl time.Duration) *PostgresQueue {
	return &PostgresQueue{db: db, ttl: ttl, now: time.Now}
}

func (p *PostgresQueue) Enqueue(ctx context.Context, ev event.Event) error {
	record := newQueuedEvent(ev)
	fields, err := encodeFields(record.Fields)
	if err != nil {
		return err
	}
	return p.withTransaction(ctx, "Enqueue", func(ctx context.Context, tx *sql.Tx) (int, error) {
		_, err := tx.ExecContext(ctx, pgInsertEvent,
			record.TransactionID, record.EventType, record.EnqueuedAt, record.Body, fields)
		if err != nil {
			return 0, err
		}
		return 1, nil
	})
}

func (p *PostgresQueue) ListPending(ctx context.Context, limit int) ([]event.Event, error) {
	var events []event.Event
	err := p.withTransaction(ctx, "ListPending", func(ctx context.Context, tx *sql.Tx) (int, error) {
		if cutoff := expiryCutoff(p.ttl, p.now()); !cutoff.IsZero() {
			if _, err := tx.ExecContext(ctx, pgDeleteExpired, cutoff); err != nil {
				return 0, err
			}
		}

		rows, err := tx.QueryContext(ctx, pgSelectPending, limit)
		if err != nil {
			return 0, err
		}
		defer rows.Close()

		var undecodable []string
		for rows.Next() {
			var record queuedEvent
			var fields []byte
			if err := rows.Scan(&record.TransactionID, &record.EventType, &record.EnqueuedAt, &record.Body, &fields); err != nil {
				return 0, err
			}
			ev, err := decodeRecord(record, fields)
			if err != nil {
				undecodable = append(undecodable, record.TransactionID)
				continue
			}
			events = append(events, ev)
		}
		if err := rows.Err(); err != nil {
			return 0, err
		}

		// Rows that cannot be decoded can never be delivered
		for _, id := range undecodable {
			if _, err := tx.ExecContext(ctx, pgDeleteEvent, id); err != nil {
				return 0, err
			}
		}

		return len(events), nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (p *PostgresQueue) Remove(ctx context.Context, transactionID string) error {
	return p.withTransaction(ctx, "Remove", func(ctx context.Context, tx *sql.Tx) (int, error) {
		if _, err := tx.ExecContext(ctx, pgDeleteEvent, transactionID); err != nil {
			return 0, err
		}
		return 1, nil
	})
}

func (p *PostgresQueue) Close() error {
	return p.db.Close()
}

func (p *PostgresQueue) withTransaction(ctx context.Context, spanName string, fn func(ctx context.Context, tx *sql.Tx) (int, error)) (err error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, spanName)
	defer span.End()

	start := time.Now()

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	count, err := fn(ctx, tx)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if err = tx.Commit(); err != nil {
		span.RecordError(err)
		return err
	}

	addDBStatsToSpan(span, "postgresql", spanName, count, time.Since(start))

	return nil
}
