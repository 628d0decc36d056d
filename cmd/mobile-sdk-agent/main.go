package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/zoff-tech/go-mobile-sdk/pkg/config"
	"github.com/zoff-tech/go-mobile-sdk/pkg/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration from file or environment
	cfg, err := config.LoadFromFile("./cmd/mobile-sdk-agent")
	if err != nil {
		log.Fatal("Error loading configuration: ", err)
	}

	logger := telemetry.NewLogger("mobile-sdk-agent", cfg.Observability.LogLevel)

	// Initialize telemetry (tracing)
	shutdownTelemetry, err := telemetry.Init(cfg.Observability, logger)
	if err != nil {
		log.Fatal("Failed to initialize telemetry: ", err)
	}
	defer shutdownTelemetry()

	a, err := newAgent(ctx, cfg, logger)
	if err != nil {
		logger.Error(err, "Failed to initialize agent")
		return
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error(err, "Failed to shut down cleanly")
		}
	}()

	g, ctx := errgroup.WithContext(ctx)
	// unblocks the pending stdin read on shutdown
	context.AfterFunc(ctx, func() { _ = os.Stdin.Close() })
	g.Go(func() error { return a.processor.Run(ctx) })
	g.Go(func() error {
		if err := a.ServeCommands(ctx, os.Stdin); err != nil {
			return err
		}
		// stdin closed, keep delivering until signalled
		<-ctx.Done()
		return ctx.Err()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error(err, "Agent stopped")
	}
}
