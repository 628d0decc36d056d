package processor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/zoff-tech/go-mobile-sdk/pkg/event"
	"github.com/zoff-tech/go-mobile-sdk/pkg/gateway"
	"github.com/zoff-tech/go-mobile-sdk/pkg/store"
)

// Sender performs one delivery attempt and reports through done whether the
// event must leave the queue. *gateway.Dispatcher implements it.
type Sender interface {
	SendEvent(ctx context.Context, cfg *gateway.EndpointConfig, ev event.Event, done func(delivered bool)) gateway.Outcome
}

// Options tune a FlushProcessor.
type Options struct {
	BatchSize    int
	Concurrency  int
	PollInterval time.Duration
}

// FlushResult summarizes one flush cycle.
type FlushResult struct {
	Attempted int
	Removed   int
	Retained  int
	// Skipped counts events that already had an attempt in flight.
	Skipped int
}

// FlushProcessor owns the durable queue: it lists pending events, hands each
// one to the sender and removes it only when the sender reports delivered.
type FlushProcessor struct {
	queue    store.DurableQueue
	sender   Sender
	endpoint func() *gateway.EndpointConfig
	tracer   trace.Tracer
	logger   logr.Logger
	opts     Options

	inFlight sync.Map // transaction id -> struct{}
	trigger  chan struct{}
}

// NewFlushProcessor creates a FlushProcessor. endpoint is read once per flush
// so that a re-initialized configuration is picked up by the next cycle.
func NewFlushProcessor(queue store.DurableQueue, sender Sender, endpoint func() *gateway.EndpointConfig, logger logr.Logger, opts Options) *FlushProcessor {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 30 * time.Second
	}
	return &FlushProcessor{
		queue:    queue,
		sender:   sender,
		endpoint: endpoint,
		tracer:   otel.Tracer("go-mobile-sdk"),
		logger:   logger.WithName("processor"),
		opts:     opts,
		trigger:  make(chan struct{}, 1),
	}
}

// Flush runs one cycle over up to BatchSize pending events.
func (p *FlushProcessor) Flush(ctx context.Context) (FlushResult, error) {
	ctx, span := p.tracer.Start(ctx, "Flush")
	defer span.End()

	events, err := p.queue.ListPending(ctx, p.opts.BatchSize)
	if err != nil {
		p.logger.Error(err, "Failed to fetch events")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return FlushResult{}, err
	}

	cfg := p.endpoint()

	var attempted, removed, retained, skipped atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)

	for _, ev := range events {
		if _, busy := p.inFlight.LoadOrStore(ev.TransactionID, struct{}{}); busy {
			skipped.Add(1)
			continue
		}

		g.Go(func() error {
			defer p.inFlight.Delete(ev.TransactionID)
			attempted.Add(1)

			p.sender.SendEvent(gctx, cfg, ev, func(delivered bool) {
				if !delivered {
					retained.Add(1)
					return
				}
				if err := p.queue.Remove(gctx, ev.TransactionID); err != nil {
					// the event stays queued and will be sent again
					p.logger.Error(err, "Failed to remove event", "transactionId", ev.TransactionID)
					retained.Add(1)
					return
				}
				removed.Add(1)
			})
			return nil
		})
	}
	_ = g.Wait()

	result := FlushResult{
		Attempted: int(attempted.Load()),
		Removed:   int(removed.Load()),
		Retained:  int(retained.Load()),
		Skipped:   int(skipped.Load()),
	}
	span.SetAttributes(
		attribute.Int("flush.attempted", result.Attempted),
		attribute.Int("flush.removed", result.Removed),
		attribute.Int("flush.retained", result.Retained),
		attribute.Int("flush.skipped", result.Skipped),
	)
	if result.Attempted > 0 {
		p.logger.V(1).Info("Flush finished", "attempted", result.Attempted, "removed", result.Removed, "retained", result.Retained)
	}

	return result, nil
}

// Trigger requests a flush without waiting for the next tick. It never blocks.
func (p *FlushProcessor) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Run flushes every PollInterval and on Trigger until ctx is canceled.
func (p *FlushProcessor) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-p.trigger:
		}

		// errors are logged by Flush, the next tick retries
		_, _ = p.Flush(ctx)
	}
}
