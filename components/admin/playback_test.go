package admin

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

type fakeAudio struct {
	url     string
	obs     AudioObserver
	playErr error

	mu     sync.Mutex
	plays  int
	pauses int
	closed bool
}

func (a *fakeAudio) Play() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.plays++
	return a.playErr
}

func (a *fakeAudio) Pause() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pauses++
}

func (a *fakeAudio) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}

func (a *fakeAudio) isClosed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}

type fakeAudioFactory struct {
	mu      sync.Mutex
	handles []*fakeAudio
	playErr error
}

func (f *fakeAudioFactory) NewAudio(url string, obs AudioObserver) (AudioHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h := &fakeAudio{url: url, obs: obs, playErr: f.playErr}
	f.handles = append(f.handles, h)
	return h, nil
}

func (f *fakeAudioFactory) live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, h := range f.handles {
		if !h.isClosed() {
			n++
		}
	}
	return n
}

func (f *fakeAudioFactory) last() *fakeAudio {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handles[len(f.handles)-1]
}

var (
	trackA = tuvibe.MusicTrack{ID: "1", Title: "A", AudioURL: "a.mp3"}
	trackB = tuvibe.MusicTrack{ID: "2", Title: "B", AudioURL: "https://cdn.example.com/b.mp3"}
)

func TestPlayerSwitchDisposesPreviousHandle(t *testing.T) {
	factory := &fakeAudioFactory{}
	player := NewPlayer(factory, func(p string) string { return tuvibe.ResolveAssetURL("/uploads/", p) })

	state, err := player.Toggle(trackA)
	require.NoError(t, err)
	assert.Equal(t, StatusPlaying, state.Status)
	assert.Equal(t, tuvibe.ID("1"), state.TrackID)
	a := factory.last()
	assert.Equal(t, "/uploads/a.mp3", a.url)

	state, err = player.Toggle(trackB)
	require.NoError(t, err)
	assert.Equal(t, tuvibe.ID("2"), state.TrackID)
	assert.True(t, a.isClosed())
	assert.Equal(t, 1, factory.live())
	assert.Equal(t, "https://cdn.example.com/b.mp3", factory.last().url)

	a.obs.OnProgress(0.9)
	a.obs.OnEnd()
	state = player.State()
	assert.Equal(t, StatusPlaying, state.Status, "callbacks of a replaced handle are ignored")
	assert.Equal(t, tuvibe.ID("2"), state.TrackID)
	assert.Zero(t, state.Progress)
}

func TestPlayerToggleSameTrackPauses(t *testing.T) {
	factory := &fakeAudioFactory{}
	player := NewPlayer(factory, nil)

	_, err := player.Toggle(trackA)
	require.NoError(t, err)
	state, err := player.Toggle(trackA)
	require.NoError(t, err)
	assert.Equal(t, StatusIdle, state.Status)
	assert.Equal(t, 1, factory.last().pauses)

	state, err = player.Toggle(trackA)
	require.NoError(t, err)
	assert.Equal(t, StatusPlaying, state.Status)
	assert.Equal(t, 1, factory.live())
}

func TestPlayerProgressAndEnd(t *testing.T) {
	factory := &fakeAudioFactory{}
	player := NewPlayer(factory, nil)
	_, err := player.Toggle(trackA)
	require.NoError(t, err)
	h := factory.last()

	h.obs.OnProgress(0.25)
	assert.InDelta(t, 0.25, player.State().Progress, 1e-9)
	h.obs.OnProgress(1.7)
	assert.InDelta(t, 1.0, player.State().Progress, 1e-9)

	h.obs.OnError(errors.New("decode glitch"))
	assert.Equal(t, StatusPlaying, player.State().Status, "errors after playback started are ignored")

	h.obs.OnEnd()
	state := player.State()
	assert.Equal(t, StatusIdle, state.Status)
	assert.Empty(t, state.TrackID)
	assert.True(t, h.isClosed())
}

func TestPlayerErrorBeforeStartSurfaces(t *testing.T) {
	factory := &fakeAudioFactory{}
	player := NewPlayer(factory, nil)
	_, err := player.Toggle(trackA)
	require.NoError(t, err)

	factory.last().obs.OnError(errors.New("404"))
	state := player.State()
	assert.Equal(t, StatusIdle, state.Status)
	assert.Contains(t, state.Err, "Unable to play audio")
	assert.Equal(t, 0, factory.live())
}

func TestPlayerPlayFailure(t *testing.T) {
	factory := &fakeAudioFactory{playErr: errors.New("autoplay blocked")}
	player := NewPlayer(factory, nil)
	state, err := player.Toggle(trackA)
	require.Error(t, err)
	assert.Equal(t, StatusIdle, state.Status)
	assert.Contains(t, state.Err, "autoplay blocked")
	assert.Equal(t, 0, factory.live())
}

func TestPlayerMissingAudio(t *testing.T) {
	player := NewPlayer(&fakeAudioFactory{}, nil)
	_, err := player.Toggle(tuvibe.MusicTrack{ID: "3"})
	assert.True(t, tuvibe.IsValidation(err))
}

func TestPlayerCloseReleasesHandle(t *testing.T) {
	factory := &fakeAudioFactory{}
	player := NewPlayer(factory, nil)
	_, err := player.Toggle(trackA)
	require.NoError(t, err)
	player.Close()
	assert.Equal(t, 0, factory.live())
	assert.Equal(t, StatusIdle, player.State().Status)
}

func TestStreamAudioFactoryStreamsToEnd(t *testing.T) {
	payload := strings.Repeat("x", 100_000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/uploads/song.mp3", r.URL.Path)
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	var sink strings.Builder
	var sinkMu sync.Mutex
	factory := NewStreamAudioFactory(srv.Client())
	factory.Origin = srv.URL
	factory.Sink = func(string) io.Writer { return lockedWriter{mu: &sinkMu, w: &sink} }

	player := NewPlayer(factory, func(p string) string { return tuvibe.ResolveAssetURL("/uploads/", p) })
	_, err := player.Toggle(tuvibe.MusicTrack{ID: "8", AudioURL: "song.mp3"})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return player.State().Status == StatusIdle }, 2*time.Second, 5*time.Millisecond)
	assert.Empty(t, player.State().Err)
	sinkMu.Lock()
	assert.Equal(t, len(payload), sink.Len())
	sinkMu.Unlock()
}

func TestStreamAudioFactoryReportsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	player := NewPlayer(NewStreamAudioFactory(srv.Client()), nil)
	_, err := player.Toggle(tuvibe.MusicTrack{ID: "9", AudioURL: srv.URL + "/missing.mp3"})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return player.State().Err != "" }, 2*time.Second, 5*time.Millisecond)
	assert.Contains(t, player.State().Err, "status 404")
}

type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (l lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
