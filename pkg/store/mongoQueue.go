package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"

	"github.com/zoff-tech/go-mobile-sdk/pkg/event"
)

type MongoQueue struct {
	client     *mongo.Client
	database   string
	collection string
	ttl        time.Duration
	now        func() time.Time
}

func NewMongoQueue(client *mongo.Client, database, collection string, ttl time.Duration) *MongoQueue {
	return &MongoQueue{
		client:     client,
		database:   database,
		collection: collection,
		ttl:        ttl,
		now:        time.Now,
	}
}

func (m *MongoQueue) events() *mongo.Collection {
	return m.client.Database(m.database).Collection(m.collection)
}

func (m *MongoQueue) Enqueue(ctx context.Context, ev event.Event) error {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "Enqueue")
	defer span.End()

	startTime := time.Now()

	record := newQueuedEvent(ev)
	filter := bson.M{"transaction_id": record.TransactionID}
	update := bson.M{"$setOnInsert": record}
	_, err := m.events().UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		span.RecordError(err)
		return err
	}

	addDBStatsToSpan(span, "mongodb", "Enqueue", 1, time.Since(startTime))
	return nil
}

func (m *MongoQueue) ListPending(ctx context.Context, limit int) ([]event.Event, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "ListPending")
	defer span.End()

	startTime := time.Now()
	collection := m.events()

	if cutoff := expiryCutoff(m.ttl, m.now()); !cutoff.IsZero() {
		if _, err := collection.DeleteMany(ctx, bson.M{"enqueued_at": bson.M{"$lt": cutoff}}); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	opts := options.Find().SetLimit(int64(limit)).SetSort(bson.D{{Key: "enqueued_at", Value: 1}})
	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []event.Event
	var undecodable []string
	for cursor.Next(ctx) {
		var record queuedEvent
		if err := cursor.Decode(&record); err != nil {
			span.RecordError(err)
			return nil, err
		}
		ev, err := record.toEvent()
		if err != nil {
			undecodable = append(undecodable, record.TransactionID)
			continue
		}
		events = append(events, ev)
	}

	if err := cursor.Err(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if len(undecodable) > 0 {
		if _, err := collection.DeleteMany(ctx, bson.M{"transaction_id": bson.M{"$in": undecodable}}); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	addDBStatsToSpan(span, "mongodb", "ListPending", len(events), time.Since(startTime))

	return events, nil
}

func (m *MongoQueue) Remove(ctx context.Context, transactionID string) error {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "Remove")
	defer span.End()

	_, err := m.events().DeleteOne(ctx, bson.M{"transaction_id": transactionID})
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (m *MongoQueue) Close() error {
	return m.client.Disconnect(context.Background())
}
