package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/tuvibe/go-admin/components/admin"
	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

type storyModerator interface {
	Approve(ctx context.Context, id tuvibe.ID) error
	Reject(ctx context.Context, id tuvibe.ID, rejection tuvibe.StoryRejection) error
}

// ApproveStoryInput approves a pending story.
type ApproveStoryInput struct {
	ID tuvibe.ID `json:"id"`
}

// ApproveStoryCommand approves stories.
type ApproveStoryCommand struct {
	console   ScreenSource
	telemetry Telemetry
}

// NewApproveStoryCommand creates the command.
func NewApproveStoryCommand(console ScreenSource, telemetry Telemetry) *ApproveStoryCommand {
	return &ApproveStoryCommand{console: console, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ApproveStoryInput] = (*ApproveStoryCommand)(nil)

// Execute approves the story.
func (c *ApproveStoryCommand) Execute(ctx context.Context, msg ApproveStoryInput) error {
	if msg.ID == "" {
		return ErrMissingID
	}
	screen, err := resolve[storyModerator](ctx, c.console, admin.ScreenStories)
	if err != nil {
		return err
	}
	if err := screen.Approve(ctx, msg.ID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "admin.story.approve", map[string]any{"id": string(msg.ID)})
	return nil
}

// RejectStoryInput rejects a story with a required reason.
type RejectStoryInput struct {
	ID        tuvibe.ID             `json:"id"`
	Rejection tuvibe.StoryRejection `json:"rejection"`
}

// RejectStoryCommand rejects stories.
type RejectStoryCommand struct {
	console   ScreenSource
	telemetry Telemetry
}

// NewRejectStoryCommand creates the command.
func NewRejectStoryCommand(console ScreenSource, telemetry Telemetry) *RejectStoryCommand {
	return &RejectStoryCommand{console: console, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RejectStoryInput] = (*RejectStoryCommand)(nil)

// Execute rejects the story.
func (c *RejectStoryCommand) Execute(ctx context.Context, msg RejectStoryInput) error {
	if msg.ID == "" {
		return ErrMissingID
	}
	screen, err := resolve[storyModerator](ctx, c.console, admin.ScreenStories)
	if err != nil {
		return err
	}
	if err := screen.Reject(ctx, msg.ID, msg.Rejection); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "admin.story.reject", map[string]any{
		"id":     string(msg.ID),
		"reason": msg.Rejection.Reason,
	})
	return nil
}
