package commands

import (
	"context"
	"fmt"

	gocommand "github.com/goliatone/go-command"
)

type dismisser interface {
	Dismiss(id string) bool
}

// DismissNotificationInput acknowledges a blocking notification.
type DismissNotificationInput struct {
	ID string `json:"id"`
}

// DismissNotificationCommand is the OK button of a blocking alert.
type DismissNotificationCommand struct {
	hub       dismisser
	telemetry Telemetry
}

// NewDismissNotificationCommand creates the command.
func NewDismissNotificationCommand(hub dismisser, telemetry Telemetry) *DismissNotificationCommand {
	return &DismissNotificationCommand{hub: hub, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DismissNotificationInput] = (*DismissNotificationCommand)(nil)

// Execute dismisses the notification.
func (c *DismissNotificationCommand) Execute(ctx context.Context, msg DismissNotificationInput) error {
	if c.hub == nil {
		return fmt.Errorf("dismiss command requires hub")
	}
	if !c.hub.Dismiss(msg.ID) {
		return fmt.Errorf("commands: notification %q is not pending", msg.ID)
	}
	c.telemetry.Record(ctx, "admin.notification.dismiss", map[string]any{"id": msg.ID})
	return nil
}
