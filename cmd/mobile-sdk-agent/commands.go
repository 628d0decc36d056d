package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/zoff-tech/go-mobile-sdk/pkg/event"
)

// command is one line of agent input.
type command struct {
	Kind       string             `json:"kind"`
	Data       map[string]string  `json:"data,omitempty"`
	Install    *event.InstallData `json:"install,omitempty"`
	Update     *event.UpdateData  `json:"update,omitempty"`
	Visit      *event.VisitData   `json:"visit,omitempty"`
	Operation  string             `json:"operation,omitempty"`
	Properties map[string]any     `json:"properties,omitempty"`
}

// Command kinds.
const (
	commandPush      = "push"
	commandClick     = "click"
	commandInstall   = "install"
	commandUpdate    = "update"
	commandStart     = "start"
	commandOperation = "operation"
	commandFlush     = "flush"
)

// ServeCommands reads JSON commands, one per line, until r is exhausted or
// ctx is cancelled. Bad lines are logged and skipped. Cancellation returns
// immediately even while a read on r is still pending.
func (a *agent) ServeCommands(ctx context.Context, r io.Reader) error {
	lines, scanErr := scanLines(ctx, r)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var line []byte
		select {
		case <-ctx.Done():
			return ctx.Err()
		case next, ok := <-lines:
			if !ok {
				return <-scanErr
			}
			line = next
		}
		if len(line) == 0 {
			continue
		}

		var cmd command
		if err := json.Unmarshal(line, &cmd); err != nil {
			a.logger.Error(err, "Skipping malformed command")
			continue
		}
		if err := a.execute(ctx, cmd); err != nil {
			a.logger.Error(err, "Command failed", "kind", cmd.Kind)
		}
	}
}

// scanLines feeds the lines of r to the returned channel until r ends or ctx
// is cancelled. The scan error is sent before the channel is closed.
func scanLines(ctx context.Context, r io.Reader) (<-chan []byte, <-chan error) {
	lines := make(chan []byte)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for scanner.Scan() {
			select {
			case lines <- bytes.Clone(scanner.Bytes()):
			case <-ctx.Done():
				scanErr <- ctx.Err()
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	return lines, scanErr
}

func (a *agent) execute(ctx context.Context, cmd command) error {
	switch cmd.Kind {
	case commandPush:
		a.push.HandleMessage(ctx, cmd.Data)
		return nil
	case commandClick:
		return a.push.HandleClick(ctx, cmd.Data)
	case commandInstall:
		if cmd.Install == nil {
			return fmt.Errorf("install command without install data")
		}
		return a.tracker.AppInstalled(ctx, *cmd.Install)
	case commandUpdate:
		if cmd.Update == nil {
			return fmt.Errorf("update command without update data")
		}
		return a.tracker.AppInfoUpdated(ctx, *cmd.Update)
	case commandStart:
		var visit event.VisitData
		if cmd.Visit != nil {
			visit = *cmd.Visit
		}
		return a.tracker.AppStarted(ctx, visit)
	case commandOperation:
		return a.tracker.AsyncOperation(ctx, cmd.Operation, cmd.Properties)
	case commandFlush:
		return a.tracker.SendEventsIfExist(ctx)
	default:
		return fmt.Errorf("unknown command kind %q", cmd.Kind)
	}
}
