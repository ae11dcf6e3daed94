package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/tuvibe/go-admin/components/admin"
	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

type stubScreen struct {
	code       string
	dispatched []admin.FilterAction
	retries    int
	err        error
}

func (s *stubScreen) Code() string                { return s.code }
func (s *stubScreen) Title() string               { return s.code }
func (s *stubScreen) Template() string            { return s.code + ".html" }
func (s *stubScreen) Load(context.Context) error  { return nil }
func (s *stubScreen) View() any                   { return nil }
func (s *stubScreen) Close()                      {}
func (s *stubScreen) Retry(context.Context) error { s.retries++; return s.err }
func (s *stubScreen) Dispatch(_ context.Context, a admin.FilterAction) error {
	s.dispatched = append(s.dispatched, a)
	return s.err
}

type stubMarket struct {
	stubScreen
	created []tuvibe.MarketDraft
	updated map[tuvibe.ID]tuvibe.MarketDraft
	deleted []tuvibe.ID
	asked   []bool
}

func (s *stubMarket) Create(_ context.Context, d tuvibe.MarketDraft) error {
	s.created = append(s.created, d)
	return s.err
}

func (s *stubMarket) Update(_ context.Context, id tuvibe.ID, d tuvibe.MarketDraft) error {
	if s.updated == nil {
		s.updated = map[tuvibe.ID]tuvibe.MarketDraft{}
	}
	s.updated[id] = d
	return s.err
}

func (s *stubMarket) Delete(ctx context.Context, id tuvibe.ID, confirm admin.Confirmer) error {
	ok := confirm != nil && confirm.Confirm(ctx, "delete?")
	s.asked = append(s.asked, ok)
	if !ok {
		return admin.ErrNotConfirmed
	}
	s.deleted = append(s.deleted, id)
	return s.err
}

type stubReports struct {
	stubScreen
	updates map[tuvibe.ID]tuvibe.ReportUpdate
}

func (s *stubReports) Update(_ context.Context, id tuvibe.ID, u tuvibe.ReportUpdate) error {
	if s.updates == nil {
		s.updates = map[tuvibe.ID]tuvibe.ReportUpdate{}
	}
	s.updates[id] = u
	return s.err
}

type stubStories struct {
	stubScreen
	approved []tuvibe.ID
	rejected map[tuvibe.ID]tuvibe.StoryRejection
}

func (s *stubStories) Approve(_ context.Context, id tuvibe.ID) error {
	s.approved = append(s.approved, id)
	return s.err
}

func (s *stubStories) Reject(_ context.Context, id tuvibe.ID, r tuvibe.StoryRejection) error {
	if s.rejected == nil {
		s.rejected = map[tuvibe.ID]tuvibe.StoryRejection{}
	}
	s.rejected[id] = r
	return s.err
}

type stubMusic struct {
	stubScreen
	created []tuvibe.MusicDraft
	toggled []tuvibe.ID
}

func (s *stubMusic) Create(_ context.Context, d tuvibe.MusicDraft) error {
	s.created = append(s.created, d)
	return s.err
}

func (s *stubMusic) Update(context.Context, tuvibe.ID, tuvibe.MusicDraft) error { return s.err }

func (s *stubMusic) TogglePlay(_ context.Context, id tuvibe.ID) (admin.PlaybackState, error) {
	s.toggled = append(s.toggled, id)
	return admin.PlaybackState{Status: admin.StatusPlaying, TrackID: id}, s.err
}

type stubSource struct {
	screens map[string]admin.Screen
	uses    int
}

func (s *stubSource) Use(_ context.Context, code string) (admin.Screen, error) {
	s.uses++
	screen, ok := s.screens[code]
	if !ok {
		return nil, admin.ErrUnknownScreen
	}
	return screen, nil
}

type stubTelemetry struct {
	calls  int
	events []string
}

func (s *stubTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	s.calls++
	s.events = append(s.events, event)
}

type stubHub struct {
	pending map[string]bool
}

func (s *stubHub) Dismiss(id string) bool {
	if !s.pending[id] {
		return false
	}
	delete(s.pending, id)
	return true
}

func TestFilterCommand(t *testing.T) {
	reports := &stubReports{stubScreen: stubScreen{code: admin.ScreenReports}}
	source := &stubSource{screens: map[string]admin.Screen{admin.ScreenReports: reports}}
	telemetry := &stubTelemetry{}
	cmd := NewFilterCommand(source, telemetry)
	if err := cmd.Execute(context.Background(), FilterInput{Screen: admin.ScreenReports, Action: admin.SetTab(2)}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(reports.dispatched) != 1 || reports.dispatched[0].Number != 2 {
		t.Fatalf("expected tab action to be dispatched, got %#v", reports.dispatched)
	}
	if telemetry.calls != 1 {
		t.Fatalf("expected telemetry event")
	}
}

func TestFilterCommandUnknownScreen(t *testing.T) {
	cmd := NewFilterCommand(&stubSource{}, nil)
	err := cmd.Execute(context.Background(), FilterInput{Screen: "nope"})
	if !errors.Is(err, admin.ErrUnknownScreen) {
		t.Fatalf("expected unknown screen, got %v", err)
	}
	if err := NewFilterCommand(nil, nil).Execute(context.Background(), FilterInput{}); err == nil {
		t.Fatalf("expected error without console")
	}
}

func TestRetryCommand(t *testing.T) {
	stats := &stubScreen{code: admin.ScreenAnalytics, err: errors.New("x")}
	source := &stubSource{screens: map[string]admin.Screen{admin.ScreenAnalytics: stats}}
	cmd := NewRetryCommand(source, nil)
	if err := cmd.Execute(context.Background(), RetryInput{Screen: admin.ScreenAnalytics}); err == nil {
		t.Fatalf("expected retry error to propagate")
	}
	if stats.retries != 1 {
		t.Fatalf("expected one retry, got %d", stats.retries)
	}
}

func TestDeleteRecordCommandConfirmation(t *testing.T) {
	market := &stubMarket{stubScreen: stubScreen{code: admin.ScreenMarket}}
	source := &stubSource{screens: map[string]admin.Screen{admin.ScreenMarket: market}}
	telemetry := &stubTelemetry{}
	cmd := NewDeleteRecordCommand(source, telemetry)

	err := cmd.Execute(context.Background(), DeleteRecordInput{Screen: admin.ScreenMarket, ID: "4"})
	if !errors.Is(err, admin.ErrNotConfirmed) {
		t.Fatalf("expected not confirmed, got %v", err)
	}
	if err := cmd.Execute(context.Background(), DeleteRecordInput{Screen: admin.ScreenMarket, ID: "4", Confirmed: true}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(market.deleted) != 1 || market.deleted[0] != "4" {
		t.Fatalf("expected delete of 4, got %#v", market.deleted)
	}
	if telemetry.calls != 1 {
		t.Fatalf("expected telemetry only for the confirmed delete, got %d", telemetry.calls)
	}

	prompted := false
	err = cmd.Execute(context.Background(), DeleteRecordInput{
		Screen: admin.ScreenMarket,
		ID:     "5",
		Confirmer: admin.ConfirmFunc(func(context.Context, string) bool {
			prompted = true
			return true
		}),
	})
	if err != nil || !prompted {
		t.Fatalf("expected confirmer to be consulted, err=%v", err)
	}
}

func TestDeleteRecordCommandRejectsUnsupportedScreen(t *testing.T) {
	stories := &stubStories{stubScreen: stubScreen{code: admin.ScreenStories}}
	source := &stubSource{screens: map[string]admin.Screen{admin.ScreenStories: stories}}
	err := NewDeleteRecordCommand(source, nil).Execute(context.Background(), DeleteRecordInput{Screen: admin.ScreenStories, ID: "1", Confirmed: true})
	if !errors.Is(err, admin.ErrUnsupportedAction) {
		t.Fatalf("expected unsupported action, got %v", err)
	}
	if err := NewDeleteRecordCommand(source, nil).Execute(context.Background(), DeleteRecordInput{Screen: admin.ScreenStories}); err == nil {
		t.Fatalf("expected missing id error")
	}
}

func TestSaveMarketItemCommand(t *testing.T) {
	market := &stubMarket{stubScreen: stubScreen{code: admin.ScreenMarket}}
	source := &stubSource{screens: map[string]admin.Screen{admin.ScreenMarket: market}}
	cmd := NewSaveMarketItemCommand(source, nil)
	img := tuvibe.Attachment{Filename: "a.jpg", Data: []byte("x")}

	if err := cmd.Execute(context.Background(), SaveMarketItemInput{Draft: tuvibe.MarketDraft{Title: "Lamp"}, NewImages: []tuvibe.Attachment{img}}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(market.created) != 1 || len(market.created[0].NewImages) != 1 {
		t.Fatalf("expected create with one image, got %#v", market.created)
	}

	if err := cmd.Execute(context.Background(), SaveMarketItemInput{ID: "9", Draft: tuvibe.MarketDraft{Title: "Lamp 2"}}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if market.updated["9"].Title != "Lamp 2" {
		t.Fatalf("expected update of 9")
	}
}

func TestUpdateReportCommand(t *testing.T) {
	reports := &stubReports{stubScreen: stubScreen{code: admin.ScreenReports}}
	source := &stubSource{screens: map[string]admin.Screen{admin.ScreenReports: reports}}
	cmd := NewUpdateReportCommand(source, nil)
	update := tuvibe.ReportUpdate{Status: "resolved", Priority: "low"}
	if err := cmd.Execute(context.Background(), UpdateReportInput{ID: "2", Update: update}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if reports.updates["2"] != update {
		t.Fatalf("expected update propagation")
	}
}

func TestStoryCommands(t *testing.T) {
	stories := &stubStories{stubScreen: stubScreen{code: admin.ScreenStories}}
	source := &stubSource{screens: map[string]admin.Screen{admin.ScreenStories: stories}}
	telemetry := &stubTelemetry{}

	if err := NewApproveStoryCommand(source, telemetry).Execute(context.Background(), ApproveStoryInput{ID: "1"}); err != nil {
		t.Fatalf("approve returned error: %v", err)
	}
	rejection := tuvibe.StoryRejection{Reason: "spam"}
	if err := NewRejectStoryCommand(source, telemetry).Execute(context.Background(), RejectStoryInput{ID: "2", Rejection: rejection}); err != nil {
		t.Fatalf("reject returned error: %v", err)
	}
	if len(stories.approved) != 1 || stories.rejected["2"] != rejection {
		t.Fatalf("expected approve and reject to reach the screen")
	}
	if len(telemetry.events) != 2 || telemetry.events[1] != "admin.story.reject" {
		t.Fatalf("unexpected telemetry %#v", telemetry.events)
	}
	if err := NewApproveStoryCommand(source, nil).Execute(context.Background(), ApproveStoryInput{}); err == nil {
		t.Fatalf("expected missing id error")
	}
}

func TestMusicCommands(t *testing.T) {
	music := &stubMusic{stubScreen: stubScreen{code: admin.ScreenMusic}}
	source := &stubSource{screens: map[string]admin.Screen{admin.ScreenMusic: music}}
	audio := &tuvibe.Attachment{Filename: "a.mp3", Data: []byte("ID3")}

	if err := NewSaveMusicCommand(source, nil).Execute(context.Background(), SaveMusicInput{
		Draft:     tuvibe.MusicDraft{Title: "Song", Artist: "Band"},
		AudioFile: audio,
	}); err != nil {
		t.Fatalf("save returned error: %v", err)
	}
	if len(music.created) != 1 || music.created[0].AudioFile != audio {
		t.Fatalf("expected audio attachment on the draft")
	}

	telemetry := &stubTelemetry{}
	if err := NewTogglePlaybackCommand(source, telemetry).Execute(context.Background(), TogglePlaybackInput{ID: "3"}); err != nil {
		t.Fatalf("toggle returned error: %v", err)
	}
	if len(music.toggled) != 1 || telemetry.calls != 1 {
		t.Fatalf("expected toggle and telemetry")
	}
}

func TestDismissNotificationCommand(t *testing.T) {
	hub := &stubHub{pending: map[string]bool{"n1": true}}
	cmd := NewDismissNotificationCommand(hub, nil)
	if err := cmd.Execute(context.Background(), DismissNotificationInput{ID: "n1"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if err := cmd.Execute(context.Background(), DismissNotificationInput{ID: "n1"}); err == nil {
		t.Fatalf("expected error for a dismissed notification")
	}
}
