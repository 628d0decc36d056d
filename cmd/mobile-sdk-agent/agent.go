package main

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"go.uber.org/multierr"

	"github.com/zoff-tech/go-mobile-sdk/pkg/broker"
	"github.com/zoff-tech/go-mobile-sdk/pkg/config"
	"github.com/zoff-tech/go-mobile-sdk/pkg/gateway"
	"github.com/zoff-tech/go-mobile-sdk/pkg/notification"
	"github.com/zoff-tech/go-mobile-sdk/pkg/processor"
	"github.com/zoff-tech/go-mobile-sdk/pkg/push"
	"github.com/zoff-tech/go-mobile-sdk/pkg/store"
	"github.com/zoff-tech/go-mobile-sdk/pkg/tracker"
)

type agent struct {
	queue     store.DurableQueue
	sink      broker.NotificationSink
	processor *processor.FlushProcessor
	tracker   *tracker.Tracker
	push      *push.Handler
	logger    logr.Logger
}

func newAgent(ctx context.Context, cfg *config.Settings, logger logr.Logger) (*agent, error) {
	queue, err := store.NewQueue(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize queue: %w", err)
	}

	sink, err := broker.NewSink(ctx, cfg.Broker, logger)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to initialize broker: %w", err), queue.Close())
	}

	return assemble(cfg, queue, sink, logger), nil
}

// assemble wires the pipeline around an open queue and sink.
func assemble(cfg *config.Settings, queue store.DurableQueue, sink broker.NotificationSink, logger logr.Logger) *agent {
	endpoint := cfg.Endpoint.EndpointConfig()
	transport := gateway.NewHTTPTransport(cfg.SDK.ClientInfo(), cfg.RequestTimeout)
	dispatcher := gateway.NewDispatcher(transport, logger)

	flush := processor.NewFlushProcessor(queue, dispatcher,
		func() *gateway.EndpointConfig { return &endpoint },
		logger, processor.Options{
			BatchSize:    cfg.BatchSize,
			Concurrency:  cfg.Concurrency,
			PollInterval: cfg.PollInterval,
		})

	events := tracker.New(queue, flush, logger)

	router := notification.NewRouter(
		notification.NewHTTPImageFetcher(cfg.Notification.ImageTimeout),
		cfg.Notification.Channel(),
		logger,
		notification.WithImageTimeout(cfg.Notification.ImageTimeout),
	)
	handler := push.NewHandler(router, cfg.Notification.RouteTable(), cfg.Notification.DefaultScreen,
		events, sink, logger)

	return &agent{
		queue:     queue,
		sink:      sink,
		processor: flush,
		tracker:   events,
		push:      handler,
		logger:    logger,
	}
}

// Close releases the sink and the queue.
func (a *agent) Close() error {
	return multierr.Combine(a.sink.Close(), a.queue.Close())
}
