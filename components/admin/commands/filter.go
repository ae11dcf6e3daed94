package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/tuvibe/go-admin/components/admin"
)

// FilterInput applies one tab/page/filter action to a screen.
type FilterInput struct {
	Screen string             `json:"screen"`
	Action admin.FilterAction `json:"action"`
}

// FilterCommand dispatches filter actions; the screen refetches when the
// action changed its filter.
type FilterCommand struct {
	console   ScreenSource
	telemetry Telemetry
}

// NewFilterCommand creates the command.
func NewFilterCommand(console ScreenSource, telemetry Telemetry) *FilterCommand {
	return &FilterCommand{console: console, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[FilterInput] = (*FilterCommand)(nil)

// Execute forwards the action to the screen.
func (c *FilterCommand) Execute(ctx context.Context, msg FilterInput) error {
	screen, err := resolve[admin.Screen](ctx, c.console, msg.Screen)
	if err != nil {
		return err
	}
	if err := screen.Dispatch(ctx, msg.Action); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "admin.screen.filter", map[string]any{
		"screen": msg.Screen,
		"type":   string(msg.Action.Type),
		"number": msg.Action.Number,
		"value":  msg.Action.Value,
	})
	return nil
}

// RetryInput re-issues a screen's last fetch.
type RetryInput struct {
	Screen string `json:"screen"`
}

// RetryCommand is the banner's Retry button.
type RetryCommand struct {
	console   ScreenSource
	telemetry Telemetry
}

// NewRetryCommand creates the command.
func NewRetryCommand(console ScreenSource, telemetry Telemetry) *RetryCommand {
	return &RetryCommand{console: console, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RetryInput] = (*RetryCommand)(nil)

// Execute retries the screen's fetch.
func (c *RetryCommand) Execute(ctx context.Context, msg RetryInput) error {
	screen, err := resolve[admin.Screen](ctx, c.console, msg.Screen)
	if err != nil {
		return err
	}
	err = screen.Retry(ctx)
	c.telemetry.Record(ctx, "admin.screen.retry", map[string]any{"screen": msg.Screen, "ok": err == nil})
	return err
}
