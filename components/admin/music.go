package admin

import (
	"context"
	"fmt"
	"sort"

	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

// TrackRow is a rendered music track.
type TrackRow struct {
	tuvibe.MusicTrack
	Audio    string  `json:"audio"`
	Cover    string  `json:"cover,omitempty"`
	Length   string  `json:"length,omitempty"`
	Playing  bool    `json:"playing"`
	Progress float64 `json:"progress"`
}

// MusicView is the music library render model.
type MusicView struct {
	ListMeta
	Tracks   []TrackRow    `json:"tracks"`
	Playback PlaybackState `json:"playback"`
}

// MusicScreen manages story background music and previews tracks.
type MusicScreen struct {
	*listScreen[[]tuvibe.MusicTrack]
	client tuvibe.MusicClient
	assets tuvibe.AssetResolver
	player *Player
}

// NewMusicScreen builds the music screen.
func NewMusicScreen(deps Deps) *MusicScreen {
	s := &MusicScreen{client: deps.Backend, assets: deps.Backend}
	s.player = NewPlayer(deps.Audio, deps.Backend.ResolveAsset)
	fetch := func(ctx context.Context, sess tuvibe.Session, _ FilterState) ([]tuvibe.MusicTrack, error) {
		tracks, err := s.client.ListMusic(ctx, sess)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(tracks, func(i, j int) bool { return tracks[i].Order < tracks[j].Order })
		return tracks, nil
	}
	s.listScreen = newListScreen(ScreenMusic, "Story Music", deps, nil, fetch)
	return s
}

// Tracks returns the fetched library.
func (s *MusicScreen) Tracks() []tuvibe.MusicTrack {
	return s.loader.State().Data
}

// Track looks up a track by id.
func (s *MusicScreen) Track(id tuvibe.ID) (tuvibe.MusicTrack, bool) {
	for _, track := range s.Tracks() {
		if track.ID == id {
			return track, true
		}
	}
	return tuvibe.MusicTrack{}, false
}

// Playback returns the player state.
func (s *MusicScreen) Playback() PlaybackState {
	return s.player.State()
}

// View renders the track list with playback progress.
func (s *MusicScreen) View() any {
	tracks := s.Tracks()
	playback := s.player.State()
	rows := make([]TrackRow, len(tracks))
	for i, track := range tracks {
		playing := playback.Status == StatusPlaying && playback.TrackID == track.ID
		row := TrackRow{
			MusicTrack: track,
			Audio:      s.assets.ResolveAsset(track.AudioURL),
			Cover:      s.assets.ResolveAsset(track.CoverImageURL),
			Length:     formatDuration(track.Duration),
			Playing:    playing,
		}
		if playback.TrackID == track.ID {
			row.Progress = playback.Progress
		}
		rows[i] = row
	}
	return MusicView{ListMeta: s.unpagedMeta(len(tracks)), Tracks: rows, Playback: playback}
}

// TogglePlay plays, pauses or switches to the track with id.
func (s *MusicScreen) TogglePlay(ctx context.Context, id tuvibe.ID) (PlaybackState, error) {
	track, ok := s.Track(id)
	if !ok {
		return s.player.State(), fmt.Errorf("admin: track %s not found", id)
	}
	state, err := s.player.Toggle(track)
	s.deps.Telemetry.Record(ctx, "admin.music.toggle", map[string]any{
		"track_id": string(id),
		"status":   string(state.Status),
	})
	if err != nil {
		s.deps.Notifier.Notify(ctx, Notification{
			Screen:   s.code,
			Action:   "play",
			RecordID: string(id),
			Level:    LevelError,
			Message:  state.Err,
			Blocking: true,
		})
	}
	return state, err
}

// Create uploads a new track.
func (s *MusicScreen) Create(ctx context.Context, draft tuvibe.MusicDraft) error {
	_, err := s.mutator.Execute(ctx, Mutation{
		Action:   "create",
		RecordID: "new",
		Validate: func() error { return s.deps.Validator.ValidateMusic(draft) },
		Run: func(ctx context.Context) (tuvibe.Outcome, error) {
			return s.client.CreateMusic(ctx, s.deps.Session, draft)
		},
		SuccessMessage: "Music track created successfully",
	})
	return err
}

// Update replaces a track.
func (s *MusicScreen) Update(ctx context.Context, id tuvibe.ID, draft tuvibe.MusicDraft) error {
	_, err := s.mutator.Execute(ctx, Mutation{
		Action:   "update",
		RecordID: id,
		Validate: func() error { return s.deps.Validator.ValidateMusic(draft) },
		Run: func(ctx context.Context) (tuvibe.Outcome, error) {
			return s.client.UpdateMusic(ctx, s.deps.Session, id, draft)
		},
		SuccessMessage: "Music track updated successfully",
	})
	return err
}

// Delete removes a track once confirm accepts.
func (s *MusicScreen) Delete(ctx context.Context, id tuvibe.ID, confirm Confirmer) error {
	_, err := s.mutator.Execute(ctx, Mutation{
		Action:      "delete",
		RecordID:    id,
		Destructive: true,
		Confirm:     confirm,
		Prompt:      "Are you sure you want to delete this track?",
		Run: func(ctx context.Context) (tuvibe.Outcome, error) {
			return s.client.DeleteMusic(ctx, s.deps.Session, id)
		},
		SuccessMessage: "Music track deleted successfully",
	})
	return err
}

// Close pauses and releases the audio handle along with any in-flight load.
func (s *MusicScreen) Close() {
	s.player.Close()
	s.listScreen.Close()
}

func formatDuration(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
