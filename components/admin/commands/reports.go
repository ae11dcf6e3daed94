package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/tuvibe/go-admin/components/admin"
	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

type reportUpdater interface {
	Update(ctx context.Context, id tuvibe.ID, update tuvibe.ReportUpdate) error
}

// UpdateReportInput records a moderation decision on a report.
type UpdateReportInput struct {
	ID     tuvibe.ID           `json:"id"`
	Update tuvibe.ReportUpdate `json:"update"`
}

// UpdateReportCommand applies status, priority and admin notes.
type UpdateReportCommand struct {
	console   ScreenSource
	telemetry Telemetry
}

// NewUpdateReportCommand creates the command.
func NewUpdateReportCommand(console ScreenSource, telemetry Telemetry) *UpdateReportCommand {
	return &UpdateReportCommand{console: console, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UpdateReportInput] = (*UpdateReportCommand)(nil)

// Execute updates the report.
func (c *UpdateReportCommand) Execute(ctx context.Context, msg UpdateReportInput) error {
	if msg.ID == "" {
		return ErrMissingID
	}
	screen, err := resolve[reportUpdater](ctx, c.console, admin.ScreenReports)
	if err != nil {
		return err
	}
	if err := screen.Update(ctx, msg.ID, msg.Update); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "admin.report.update", map[string]any{
		"id":       string(msg.ID),
		"status":   msg.Update.Status,
		"priority": msg.Update.Priority,
	})
	return nil
}
