package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/tuvibe/go-admin/components/admin"
	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

type marketEditor interface {
	Create(ctx context.Context, draft tuvibe.MarketDraft) error
	Update(ctx context.Context, id tuvibe.ID, draft tuvibe.MarketDraft) error
}

// SaveMarketItemInput creates an item when ID is empty and updates it otherwise.
type SaveMarketItemInput struct {
	ID        tuvibe.ID           `json:"id,omitempty"`
	Draft     tuvibe.MarketDraft  `json:"draft"`
	NewImages []tuvibe.Attachment `json:"new_images,omitempty"`
}

// SaveMarketItemCommand submits the marketplace form.
type SaveMarketItemCommand struct {
	console   ScreenSource
	telemetry Telemetry
}

// NewSaveMarketItemCommand creates the command.
func NewSaveMarketItemCommand(console ScreenSource, telemetry Telemetry) *SaveMarketItemCommand {
	return &SaveMarketItemCommand{console: console, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveMarketItemInput] = (*SaveMarketItemCommand)(nil)

// Execute creates or updates the listing.
func (c *SaveMarketItemCommand) Execute(ctx context.Context, msg SaveMarketItemInput) error {
	screen, err := resolve[marketEditor](ctx, c.console, admin.ScreenMarket)
	if err != nil {
		return err
	}
	draft := msg.Draft
	if len(msg.NewImages) > 0 {
		draft.NewImages = append(draft.NewImages, msg.NewImages...)
	}
	event := "admin.market.create"
	if msg.ID == "" {
		err = screen.Create(ctx, draft)
	} else {
		event = "admin.market.update"
		err = screen.Update(ctx, msg.ID, draft)
	}
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, event, map[string]any{
		"id":     string(msg.ID),
		"images": len(draft.RetainedImages) + len(draft.NewImages),
	})
	return nil
}
