package httpapi

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/tuvibe/go-admin/components/admin"
	"github.com/tuvibe/go-admin/components/admin/commands"
)

// Executor runs console mutations on behalf of a transport.
type Executor interface {
	Filter(ctx context.Context, input commands.FilterInput) error
	Retry(ctx context.Context, input commands.RetryInput) error
	SaveMarketItem(ctx context.Context, input commands.SaveMarketItemInput) error
	DeleteRecord(ctx context.Context, input commands.DeleteRecordInput) error
	UpdateReport(ctx context.Context, input commands.UpdateReportInput) error
	ApproveStory(ctx context.Context, input commands.ApproveStoryInput) error
	RejectStory(ctx context.Context, input commands.RejectStoryInput) error
	SaveMusic(ctx context.Context, input commands.SaveMusicInput) error
	TogglePlayback(ctx context.Context, input commands.TogglePlaybackInput) error
	DismissNotification(ctx context.Context, input commands.DismissNotificationInput) error
}

// CommandExecutor adapts go-command commanders to the Executor interface.
type CommandExecutor struct {
	FilterCommander         gocommand.Commander[commands.FilterInput]
	RetryCommander          gocommand.Commander[commands.RetryInput]
	SaveMarketItemCommander gocommand.Commander[commands.SaveMarketItemInput]
	DeleteCommander         gocommand.Commander[commands.DeleteRecordInput]
	UpdateReportCommander   gocommand.Commander[commands.UpdateReportInput]
	ApproveStoryCommander   gocommand.Commander[commands.ApproveStoryInput]
	RejectStoryCommander    gocommand.Commander[commands.RejectStoryInput]
	SaveMusicCommander      gocommand.Commander[commands.SaveMusicInput]
	PlaybackCommander       gocommand.Commander[commands.TogglePlaybackInput]
	DismissCommander        gocommand.Commander[commands.DismissNotificationInput]
}

var _ Executor = (*CommandExecutor)(nil)

// NewCommandExecutor wires every console command against console.
func NewCommandExecutor(console *admin.Console, telemetry commands.Telemetry) *CommandExecutor {
	exec := &CommandExecutor{
		FilterCommander:         commands.NewFilterCommand(console, telemetry),
		RetryCommander:          commands.NewRetryCommand(console, telemetry),
		SaveMarketItemCommander: commands.NewSaveMarketItemCommand(console, telemetry),
		DeleteCommander:         commands.NewDeleteRecordCommand(console, telemetry),
		UpdateReportCommander:   commands.NewUpdateReportCommand(console, telemetry),
		ApproveStoryCommander:   commands.NewApproveStoryCommand(console, telemetry),
		RejectStoryCommander:    commands.NewRejectStoryCommand(console, telemetry),
		SaveMusicCommander:      commands.NewSaveMusicCommand(console, telemetry),
		PlaybackCommander:       commands.NewTogglePlaybackCommand(console, telemetry),
	}
	if hub := console.Hub(); hub != nil {
		exec.DismissCommander = commands.NewDismissNotificationCommand(hub, telemetry)
	}
	return exec
}

var errNotConfigured = errors.New("httpapi: command not configured")

func run[T any](ctx context.Context, cmd gocommand.Commander[T], input T) error {
	if cmd == nil {
		return errNotConfigured
	}
	return cmd.Execute(ctx, input)
}

func (e *CommandExecutor) Filter(ctx context.Context, input commands.FilterInput) error {
	return run(ctx, e.FilterCommander, input)
}

func (e *CommandExecutor) Retry(ctx context.Context, input commands.RetryInput) error {
	return run(ctx, e.RetryCommander, input)
}

func (e *CommandExecutor) SaveMarketItem(ctx context.Context, input commands.SaveMarketItemInput) error {
	return run(ctx, e.SaveMarketItemCommander, input)
}

func (e *CommandExecutor) DeleteRecord(ctx context.Context, input commands.DeleteRecordInput) error {
	return run(ctx, e.DeleteCommander, input)
}

func (e *CommandExecutor) UpdateReport(ctx context.Context, input commands.UpdateReportInput) error {
	return run(ctx, e.UpdateReportCommander, input)
}

func (e *CommandExecutor) ApproveStory(ctx context.Context, input commands.ApproveStoryInput) error {
	return run(ctx, e.ApproveStoryCommander, input)
}

func (e *CommandExecutor) RejectStory(ctx context.Context, input commands.RejectStoryInput) error {
	return run(ctx, e.RejectStoryCommander, input)
}

func (e *CommandExecutor) SaveMusic(ctx context.Context, input commands.SaveMusicInput) error {
	return run(ctx, e.SaveMusicCommander, input)
}

func (e *CommandExecutor) TogglePlayback(ctx context.Context, input commands.TogglePlaybackInput) error {
	return run(ctx, e.PlaybackCommander, input)
}

func (e *CommandExecutor) DismissNotification(ctx context.Context, input commands.DismissNotificationInput) error {
	return run(ctx, e.DismissCommander, input)
}
