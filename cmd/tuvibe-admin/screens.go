package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	core "github.com/tuvibe/go-admin/components/admin"
	"github.com/tuvibe/go-admin/components/admin/commands"
	"github.com/tuvibe/go-admin/pkg/admin"
	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

// withAdmin opens the console, runs fn and prints the notifications fn
// produced.
func withAdmin(g *Globals, e *env, fn func(a *admin.Admin) error) error {
	a, _, err := g.open(e)
	if err != nil {
		return err
	}
	defer a.Close()

	var events <-chan core.Notification
	if hub := a.Hub(); hub != nil {
		ch, cancel := hub.Subscribe()
		defer cancel()
		events = ch
	}
	err = fn(a)
	drain(e.out, events)
	return err
}

func confirmer(e *env, yes bool) core.Confirmer {
	if yes {
		return core.Confirmed(true)
	}
	return core.ConfirmFunc(func(_ context.Context, prompt string) bool {
		return e.prompt.Confirm(prompt)
	})
}

func readAttachment(path string) (tuvibe.Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tuvibe.Attachment{}, fmt.Errorf("read %s: %w", path, err)
	}
	return tuvibe.Attachment{
		Filename:    filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Data:        data,
	}, nil
}

// listFlags select the tab and page of a list screen.
type listFlags struct {
	Tab  string `help:"Tab to show, by label or value."`
	Page int    `default:"1" help:"Page number, starting at 1."`
	JSON bool   `name:"json" help:"Print the view as JSON."`
}

func (f listFlags) apply(ctx context.Context, a *admin.Admin, code string, tabs core.TabSet) error {
	exec := a.Executor()
	if f.Tab != "" {
		index, ok := tabs.Index(f.Tab)
		if !ok {
			return fmt.Errorf("unknown tab %q (choose from %s)", f.Tab, strings.Join(tabs.Labels(), ", "))
		}
		if err := exec.Filter(ctx, commands.FilterInput{Screen: code, Action: core.SetTab(index)}); err != nil {
			return err
		}
	}
	if f.Page > 1 {
		return exec.Filter(ctx, commands.FilterInput{Screen: code, Action: core.SetPage(f.Page - 1)})
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

type statsCmd struct {
	JSON bool `name:"json" help:"Print the raw statistics as JSON."`
}

func (cmd *statsCmd) Run(ctx context.Context, g *Globals, e *env) error {
	return withAdmin(g, e, func(a *admin.Admin) error {
		screen, err := core.ScreenAs[*core.AnalyticsScreen](ctx, a.Console(), core.ScreenAnalytics)
		if err != nil {
			return err
		}
		if cmd.JSON {
			return printJSON(e.out, screen.Stats())
		}
		view := screen.View().(core.AnalyticsView)
		rows := make([][]string, len(view.Cards))
		for i, card := range view.Cards {
			rows[i] = []string{card.Label, strconv.FormatFloat(card.Value, 'f', -1, 64)}
		}
		fmt.Fprintln(e.out, titleStyle.Render("Dashboard"))
		printTable(e.out, []string{"Metric", "Value"}, rows)
		return nil
	})
}

type marketCmd struct {
	List   marketListCmd   `cmd:"" default:"withargs" help:"List marketplace items."`
	Add    marketAddCmd    `cmd:"" help:"Create a marketplace item."`
	Delete marketDeleteCmd `cmd:"" help:"Delete a marketplace item."`
}

type marketListCmd struct {
	listFlags
}

func (cmd *marketListCmd) Run(ctx context.Context, g *Globals, e *env) error {
	return withAdmin(g, e, func(a *admin.Admin) error {
		screen, err := core.ScreenAs[*core.MarketplaceScreen](ctx, a.Console(), core.ScreenMarket)
		if screen == nil {
			return err
		}
		if err := cmd.apply(ctx, a, core.ScreenMarket, core.MarketTabs); err != nil {
			return err
		}
		view := screen.View().(core.MarketView)
		if cmd.JSON {
			return printJSON(e.out, view)
		}
		rows := make([][]string, len(view.Cards))
		for i, card := range view.Cards {
			rows[i] = []string{string(card.ID), truncate(card.Title, 40), card.Price, card.Badge, yesNo(card.Featured), strconv.Itoa(card.ImageCount)}
		}
		printMeta(e.out, view.ListMeta)
		printTable(e.out, []string{"ID", "Title", "Price", "Tag", "Featured", "Images"}, rows)
		return nil
	})
}

type marketAddCmd struct {
	Title       string   `required:"" help:"Item title."`
	Description string   `help:"Item description."`
	Price       float64  `required:"" help:"Price in the local currency."`
	WhatsApp    string   `name:"whatsapp" required:"" help:"Seller WhatsApp number."`
	Featured    bool     `help:"Mark the item as featured."`
	Tag         string   `help:"Marketplace tag (hot_deals, new_arrivals, limited_offer, trending)."`
	Image       []string `help:"Image file to upload (repeatable)."`
}

func (cmd *marketAddCmd) Run(ctx context.Context, g *Globals, e *env) error {
	images := make([]tuvibe.Attachment, 0, len(cmd.Image))
	for _, path := range cmd.Image {
		att, err := readAttachment(path)
		if err != nil {
			return err
		}
		images = append(images, att)
	}
	return withAdmin(g, e, func(a *admin.Admin) error {
		return a.Executor().SaveMarketItem(ctx, commands.SaveMarketItemInput{
			Draft: tuvibe.MarketDraft{
				Title:          cmd.Title,
				Description:    cmd.Description,
				Price:          cmd.Price,
				WhatsAppNumber: cmd.WhatsApp,
				IsFeatured:     cmd.Featured,
				Tag:            cmd.Tag,
			},
			NewImages: images,
		})
	})
}

type marketDeleteCmd struct {
	ID  string `arg:"" help:"Item id."`
	Yes bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (cmd *marketDeleteCmd) Run(ctx context.Context, g *Globals, e *env) error {
	return deleteRecord(ctx, g, e, core.ScreenMarket, cmd.ID, cmd.Yes)
}

func deleteRecord(ctx context.Context, g *Globals, e *env, code, id string, yes bool) error {
	return withAdmin(g, e, func(a *admin.Admin) error {
		return a.Executor().DeleteRecord(ctx, commands.DeleteRecordInput{
			Screen:    code,
			ID:        tuvibe.ID(id),
			Confirmer: confirmer(e, yes),
		})
	})
}

type reportsCmd struct {
	List   reportsListCmd   `cmd:"" default:"withargs" help:"List reports."`
	Update reportsUpdateCmd `cmd:"" help:"Change a report's status and priority."`
	Delete reportsDeleteCmd `cmd:"" help:"Delete a report."`
}

type reportsListCmd struct {
	listFlags
	Status   string `help:"Status filter, used when no tab is selected."`
	Category string `help:"Category filter."`
	Priority string `help:"Priority filter."`
	Search   string `help:"Free-text search."`
}

func (cmd *reportsListCmd) Run(ctx context.Context, g *Globals, e *env) error {
	return withAdmin(g, e, func(a *admin.Admin) error {
		screen, err := core.ScreenAs[*core.ReportsScreen](ctx, a.Console(), core.ScreenReports)
		if screen == nil {
			return err
		}
		exec := a.Executor()
		for _, action := range cmd.filters() {
			if err := exec.Filter(ctx, commands.FilterInput{Screen: core.ScreenReports, Action: action}); err != nil {
				return err
			}
		}
		if err := cmd.apply(ctx, a, core.ScreenReports, core.ReportTabs); err != nil {
			return err
		}
		view := screen.View().(core.ReportsView)
		if cmd.JSON {
			return printJSON(e.out, view)
		}
		rows := make([][]string, len(view.Rows))
		for i, row := range view.Rows {
			rows[i] = []string{string(row.ID), row.ReporterName, row.CategoryLabel, row.StatusLabel, row.PriorityLabel, truncate(row.Reason, 40)}
		}
		printMeta(e.out, view.ListMeta)
		printTable(e.out, []string{"ID", "Reporter", "Category", "Status", "Priority", "Reason"}, rows)
		return nil
	})
}

func (cmd *reportsListCmd) filters() []core.FilterAction {
	var actions []core.FilterAction
	if cmd.Status != "" {
		actions = append(actions, core.SetStatus(cmd.Status))
	}
	if cmd.Category != "" {
		actions = append(actions, core.SetCategory(cmd.Category))
	}
	if cmd.Priority != "" {
		actions = append(actions, core.SetPriority(cmd.Priority))
	}
	if cmd.Search != "" {
		actions = append(actions, core.SetSearch(cmd.Search))
	}
	return actions
}

type reportsUpdateCmd struct {
	ID       string `arg:"" help:"Report id."`
	Status   string `required:"" enum:"pending,under_review,resolved,dismissed" help:"New status."`
	Priority string `default:"medium" enum:"low,medium,high,urgent" help:"New priority."`
	Notes    string `help:"Admin notes."`
}

func (cmd *reportsUpdateCmd) Run(ctx context.Context, g *Globals, e *env) error {
	return withAdmin(g, e, func(a *admin.Admin) error {
		return a.Executor().UpdateReport(ctx, commands.UpdateReportInput{
			ID: tuvibe.ID(cmd.ID),
			Update: tuvibe.ReportUpdate{
				Status:     cmd.Status,
				Priority:   cmd.Priority,
				AdminNotes: cmd.Notes,
			},
		})
	})
}

type reportsDeleteCmd struct {
	ID  string `arg:"" help:"Report id."`
	Yes bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (cmd *reportsDeleteCmd) Run(ctx context.Context, g *Globals, e *env) error {
	return deleteRecord(ctx, g, e, core.ScreenReports, cmd.ID, cmd.Yes)
}

type storiesCmd struct {
	List    storiesListCmd    `cmd:"" default:"withargs" help:"List stories awaiting moderation."`
	Approve storiesApproveCmd `cmd:"" help:"Approve a story."`
	Reject  storiesRejectCmd  `cmd:"" help:"Reject a story."`
}

type storiesListCmd struct {
	listFlags
}

func (cmd *storiesListCmd) Run(ctx context.Context, g *Globals, e *env) error {
	return withAdmin(g, e, func(a *admin.Admin) error {
		screen, err := core.ScreenAs[*core.StoriesScreen](ctx, a.Console(), core.ScreenStories)
		if screen == nil {
			return err
		}
		if err := cmd.apply(ctx, a, core.ScreenStories, core.StoryTabs); err != nil {
			return err
		}
		view := screen.View().(core.StoriesView)
		if cmd.JSON {
			return printJSON(e.out, view)
		}
		rows := make([][]string, len(view.Cards))
		for i, card := range view.Cards {
			rows[i] = []string{string(card.ID), card.UserName, card.Status, card.MediaType, truncate(card.Caption, 40), card.Media}
		}
		printMeta(e.out, view.ListMeta)
		printTable(e.out, []string{"ID", "User", "Status", "Type", "Caption", "Media"}, rows)
		return nil
	})
}

type storiesApproveCmd struct {
	ID string `arg:"" help:"Story id."`
}

func (cmd *storiesApproveCmd) Run(ctx context.Context, g *Globals, e *env) error {
	return withAdmin(g, e, func(a *admin.Admin) error {
		return a.Executor().ApproveStory(ctx, commands.ApproveStoryInput{ID: tuvibe.ID(cmd.ID)})
	})
}

type storiesRejectCmd struct {
	ID     string `arg:"" help:"Story id."`
	Reason string `required:"" help:"Reason shown to the author."`
	Notes  string `help:"Internal notes."`
}

func (cmd *storiesRejectCmd) Run(ctx context.Context, g *Globals, e *env) error {
	return withAdmin(g, e, func(a *admin.Admin) error {
		return a.Executor().RejectStory(ctx, commands.RejectStoryInput{
			ID:        tuvibe.ID(cmd.ID),
			Rejection: tuvibe.StoryRejection{Reason: cmd.Reason, Notes: cmd.Notes},
		})
	})
}

type musicCmd struct {
	List   musicListCmd   `cmd:"" default:"withargs" help:"List music tracks."`
	Add    musicAddCmd    `cmd:"" help:"Upload a music track."`
	Edit   musicEditCmd   `cmd:"" help:"Update a music track."`
	Delete musicDeleteCmd `cmd:"" help:"Delete a music track."`
}

type musicListCmd struct {
	JSON bool `name:"json" help:"Print the view as JSON."`
}

func (cmd *musicListCmd) Run(ctx context.Context, g *Globals, e *env) error {
	return withAdmin(g, e, func(a *admin.Admin) error {
		screen, err := core.ScreenAs[*core.MusicScreen](ctx, a.Console(), core.ScreenMusic)
		if screen == nil {
			return err
		}
		view := screen.View().(core.MusicView)
		if cmd.JSON {
			return printJSON(e.out, view)
		}
		rows := make([][]string, len(view.Tracks))
		for i, track := range view.Tracks {
			rows[i] = []string{strconv.Itoa(track.Order), string(track.ID), track.Title, track.Artist, track.Length, yesNo(track.IsActive)}
		}
		printMeta(e.out, view.ListMeta)
		printTable(e.out, []string{"#", "ID", "Title", "Artist", "Length", "Active"}, rows)
		return nil
	})
}

type musicAddCmd struct {
	Title    string `required:"" help:"Track title."`
	Artist   string `required:"" help:"Track artist."`
	Audio    string `type:"existingfile" xor:"source" help:"Audio file to upload."`
	AudioURL string `name:"audio-url" xor:"source" help:"URL of already hosted audio."`
	Cover    string `type:"existingfile" help:"Cover image to upload."`
	Duration int    `help:"Duration in seconds."`
	Order    int    `help:"Display order."`
	Active   bool   `default:"true" negatable:"" help:"Offer the track to story authors."`
}

func (cmd *musicAddCmd) Run(ctx context.Context, g *Globals, e *env) error {
	input := commands.SaveMusicInput{
		Draft: tuvibe.MusicDraft{
			Title:    cmd.Title,
			Artist:   cmd.Artist,
			AudioURL: cmd.AudioURL,
			Duration: cmd.Duration,
			Order:    cmd.Order,
			IsActive: cmd.Active,
		},
	}
	if cmd.Audio != "" {
		att, err := readAttachment(cmd.Audio)
		if err != nil {
			return err
		}
		input.AudioFile = &att
	}
	if cmd.Cover != "" {
		att, err := readAttachment(cmd.Cover)
		if err != nil {
			return err
		}
		input.CoverImage = &att
	}
	return withAdmin(g, e, func(a *admin.Admin) error {
		return a.Executor().SaveMusic(ctx, input)
	})
}

type musicEditCmd struct {
	ID         string `arg:"" help:"Track id."`
	Title      string `help:"New title."`
	Artist     string `help:"New artist."`
	Audio      string `type:"existingfile" xor:"source" help:"Replacement audio file."`
	AudioURL   string `name:"audio-url" xor:"source" help:"Replacement audio URL."`
	Cover      string `type:"existingfile" help:"Replacement cover image."`
	Duration   int    `default:"-1" help:"Duration in seconds; negative keeps the current value."`
	Order      int    `default:"-1" help:"Display order; negative keeps the current value."`
	Activate   bool   `xor:"active" help:"Offer the track to story authors."`
	Deactivate bool   `xor:"active" help:"Hide the track from story authors."`
}

// Run starts from the track as listed and applies only the flags given.
func (cmd *musicEditCmd) Run(ctx context.Context, g *Globals, e *env) error {
	input := commands.SaveMusicInput{ID: tuvibe.ID(cmd.ID)}
	if cmd.Audio != "" {
		att, err := readAttachment(cmd.Audio)
		if err != nil {
			return err
		}
		input.AudioFile = &att
	}
	if cmd.Cover != "" {
		att, err := readAttachment(cmd.Cover)
		if err != nil {
			return err
		}
		input.CoverImage = &att
	}
	return withAdmin(g, e, func(a *admin.Admin) error {
		screen, err := core.ScreenAs[*core.MusicScreen](ctx, a.Console(), core.ScreenMusic)
		if err != nil {
			return err
		}
		track, ok := screen.Track(input.ID)
		if !ok {
			return fmt.Errorf("music track %s not found", cmd.ID)
		}
		input.Draft = cmd.apply(tuvibe.MusicDraftFromTrack(track))
		return a.Executor().SaveMusic(ctx, input)
	})
}

func (cmd *musicEditCmd) apply(draft tuvibe.MusicDraft) tuvibe.MusicDraft {
	if cmd.Title != "" {
		draft.Title = cmd.Title
	}
	if cmd.Artist != "" {
		draft.Artist = cmd.Artist
	}
	if cmd.AudioURL != "" {
		draft.AudioURL = cmd.AudioURL
	}
	if cmd.Duration >= 0 {
		draft.Duration = cmd.Duration
	}
	if cmd.Order >= 0 {
		draft.Order = cmd.Order
	}
	switch {
	case cmd.Activate:
		draft.IsActive = true
	case cmd.Deactivate:
		draft.IsActive = false
	}
	return draft
}

type musicDeleteCmd struct {
	ID  string `arg:"" help:"Track id."`
	Yes bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (cmd *musicDeleteCmd) Run(ctx context.Context, g *Globals, e *env) error {
	return deleteRecord(ctx, g, e, core.ScreenMusic, cmd.ID, cmd.Yes)
}
