package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/tuvibe/go-admin/components/admin"
	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

type recordDeleter interface {
	Delete(ctx context.Context, id tuvibe.ID, confirm admin.Confirmer) error
}

// DeleteRecordInput removes a marketplace item, report or music track.
// Confirmed carries the operator's answer; when false nothing is sent.
type DeleteRecordInput struct {
	Screen    string    `json:"screen"`
	ID        tuvibe.ID `json:"id"`
	Confirmed bool      `json:"confirmed"`
	// Confirmer overrides Confirmed, e.g. with a terminal prompt.
	Confirmer admin.Confirmer `json:"-"`
}

// DeleteRecordCommand routes deletes to the owning screen.
type DeleteRecordCommand struct {
	console   ScreenSource
	telemetry Telemetry
}

// NewDeleteRecordCommand creates the command.
func NewDeleteRecordCommand(console ScreenSource, telemetry Telemetry) *DeleteRecordCommand {
	return &DeleteRecordCommand{console: console, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DeleteRecordInput] = (*DeleteRecordCommand)(nil)

// Execute deletes the record once confirmed.
func (c *DeleteRecordCommand) Execute(ctx context.Context, msg DeleteRecordInput) error {
	if msg.ID == "" {
		return ErrMissingID
	}
	screen, err := resolve[recordDeleter](ctx, c.console, msg.Screen)
	if err != nil {
		return err
	}
	confirm := msg.Confirmer
	if confirm == nil {
		confirm = admin.Confirmed(msg.Confirmed)
	}
	if err := screen.Delete(ctx, msg.ID, confirm); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "admin.record.delete", map[string]any{
		"screen": msg.Screen,
		"id":     string(msg.ID),
	})
	return nil
}
