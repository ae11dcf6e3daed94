package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/tuvibe/go-admin/components/admin"
	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

type musicEditor interface {
	Create(ctx context.Context, draft tuvibe.MusicDraft) error
	Update(ctx context.Context, id tuvibe.ID, draft tuvibe.MusicDraft) error
}

type musicPlayer interface {
	TogglePlay(ctx context.Context, id tuvibe.ID) (admin.PlaybackState, error)
}

// SaveMusicInput creates a track when ID is empty and updates it otherwise.
type SaveMusicInput struct {
	ID         tuvibe.ID          `json:"id,omitempty"`
	Draft      tuvibe.MusicDraft  `json:"draft"`
	AudioFile  *tuvibe.Attachment `json:"audio_file,omitempty"`
	CoverImage *tuvibe.Attachment `json:"cover_image,omitempty"`
}

// SaveMusicCommand submits the music form.
type SaveMusicCommand struct {
	console   ScreenSource
	telemetry Telemetry
}

// NewSaveMusicCommand creates the command.
func NewSaveMusicCommand(console ScreenSource, telemetry Telemetry) *SaveMusicCommand {
	return &SaveMusicCommand{console: console, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveMusicInput] = (*SaveMusicCommand)(nil)

// Execute creates or updates the track.
func (c *SaveMusicCommand) Execute(ctx context.Context, msg SaveMusicInput) error {
	screen, err := resolve[musicEditor](ctx, c.console, admin.ScreenMusic)
	if err != nil {
		return err
	}
	draft := msg.Draft
	if msg.AudioFile != nil {
		draft.AudioFile = msg.AudioFile
	}
	if msg.CoverImage != nil {
		draft.CoverImage = msg.CoverImage
	}
	event := "admin.music.create"
	if msg.ID == "" {
		err = screen.Create(ctx, draft)
	} else {
		event = "admin.music.update"
		err = screen.Update(ctx, msg.ID, draft)
	}
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, event, map[string]any{"id": string(msg.ID), "title": draft.Title})
	return nil
}

// TogglePlaybackInput plays, pauses or switches to a track.
type TogglePlaybackInput struct {
	ID tuvibe.ID `json:"id"`
}

// TogglePlaybackCommand drives the music preview player.
type TogglePlaybackCommand struct {
	console   ScreenSource
	telemetry Telemetry
}

// NewTogglePlaybackCommand creates the command.
func NewTogglePlaybackCommand(console ScreenSource, telemetry Telemetry) *TogglePlaybackCommand {
	return &TogglePlaybackCommand{console: console, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[TogglePlaybackInput] = (*TogglePlaybackCommand)(nil)

// Execute toggles playback of the track.
func (c *TogglePlaybackCommand) Execute(ctx context.Context, msg TogglePlaybackInput) error {
	if msg.ID == "" {
		return ErrMissingID
	}
	screen, err := resolve[musicPlayer](ctx, c.console, admin.ScreenMusic)
	if err != nil {
		return err
	}
	state, err := screen.TogglePlay(ctx, msg.ID)
	c.telemetry.Record(ctx, "admin.music.toggle", map[string]any{
		"id":     string(msg.ID),
		"status": string(state.Status),
	})
	return err
}
