package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

// PlaybackStatus is the player state.
type PlaybackStatus string

const (
	StatusIdle    PlaybackStatus = "idle"
	StatusPlaying PlaybackStatus = "playing"
)

// PlaybackState identifies at most one playing track and its progress.
type PlaybackState struct {
	Status   PlaybackStatus `json:"status"`
	TrackID  tuvibe.ID      `json:"track_id,omitempty"`
	Progress float64        `json:"progress"`
	Err      string         `json:"error,omitempty"`
}

// AudioObserver receives handle events. Progress is a fraction in [0,1].
type AudioObserver struct {
	OnProgress func(fraction float64)
	OnEnd      func()
	OnError    func(err error)
}

// AudioHandle is one live audio source.
type AudioHandle interface {
	Play() error
	Pause()
	// Close pauses, clears the source and detaches observers.
	Close() error
}

// AudioFactory builds an audio handle for a resolved URL.
type AudioFactory interface {
	NewAudio(url string, obs AudioObserver) (AudioHandle, error)
}

// AudioFactoryFunc adapts a function to AudioFactory.
type AudioFactoryFunc func(url string, obs AudioObserver) (AudioHandle, error)

func (f AudioFactoryFunc) NewAudio(url string, obs AudioObserver) (AudioHandle, error) {
	return f(url, obs)
}

// Player is the single-track playback machine. Only the current handle's
// observers can change state; callbacks from a replaced handle are ignored.
type Player struct {
	factory AudioFactory
	resolve func(string) string

	mu      sync.Mutex
	gen     uint64
	handle  AudioHandle
	started bool
	state   PlaybackState
}

// NewPlayer builds a player. resolve maps a track path to a playable URL.
func NewPlayer(factory AudioFactory, resolve func(string) string) *Player {
	if resolve == nil {
		resolve = func(path string) string { return path }
	}
	return &Player{
		factory: factory,
		resolve: resolve,
		state:   PlaybackState{Status: StatusIdle},
	}
}

// Toggle plays track, pauses it when it is already playing, or switches to
// it from another track.
func (p *Player) Toggle(track tuvibe.MusicTrack) (PlaybackState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.Status == StatusPlaying && p.state.TrackID == track.ID {
		if p.handle != nil {
			p.handle.Pause()
		}
		p.state.Status = StatusIdle
		return p.state, nil
	}

	p.releaseLocked()
	if p.factory == nil {
		return p.state, errors.New("admin: no audio factory")
	}
	url := p.resolve(track.AudioURL)
	if url == "" {
		err := &tuvibe.ValidationError{Field: "audio_url", Message: "Track has no audio source"}
		p.state = PlaybackState{Status: StatusIdle, Err: err.Message}
		return p.state, err
	}

	p.gen++
	gen := p.gen
	handle, err := p.factory.NewAudio(url, AudioObserver{
		OnProgress: func(fraction float64) { p.onProgress(gen, fraction) },
		OnEnd:      func() { p.onEnd(gen) },
		OnError:    func(err error) { p.onError(gen, err) },
	})
	if err != nil {
		p.state = PlaybackState{Status: StatusIdle, Err: err.Error()}
		return p.state, err
	}
	p.handle = handle
	p.started = false
	p.state = PlaybackState{Status: StatusPlaying, TrackID: track.ID}
	if err := handle.Play(); err != nil {
		p.releaseLocked()
		p.state = PlaybackState{Status: StatusIdle, Err: playbackMessage(err)}
		return p.state, err
	}
	return p.state, nil
}

// State returns the current playback state.
func (p *Player) State() PlaybackState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Close disposes the current handle and returns to Idle.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.releaseLocked()
	p.state = PlaybackState{Status: StatusIdle}
}

func (p *Player) releaseLocked() {
	p.gen++
	if p.handle != nil {
		p.handle.Close()
		p.handle = nil
	}
	p.started = false
}

func (p *Player) onProgress(gen uint64, fraction float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		return
	}
	p.started = true
	p.state.Progress = min(max(fraction, 0), 1)
}

func (p *Player) onEnd(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		return
	}
	p.releaseLocked()
	p.state = PlaybackState{Status: StatusIdle}
}

func (p *Player) onError(gen uint64, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen || p.started {
		return
	}
	p.releaseLocked()
	p.state = PlaybackState{Status: StatusIdle, Err: playbackMessage(err)}
}

func playbackMessage(err error) string {
	return fmt.Sprintf("Unable to play audio: %v", err)
}

// StreamAudioFactory plays tracks by streaming their URL over HTTP into a sink.
type StreamAudioFactory struct {
	Client *http.Client
	// Origin is prepended to rooted paths such as /uploads/a.mp3.
	Origin string
	// Sink receives audio bytes; nil discards them.
	Sink func(url string) io.Writer
	// BytesPerSecond paces the stream; zero streams as fast as possible.
	BytesPerSecond int
}

// NewStreamAudioFactory builds a factory with sane defaults.
func NewStreamAudioFactory(client *http.Client) *StreamAudioFactory {
	if client == nil {
		client = http.DefaultClient
	}
	return &StreamAudioFactory{Client: client}
}

// NewAudio implements AudioFactory.
func (f *StreamAudioFactory) NewAudio(url string, obs AudioObserver) (AudioHandle, error) {
	if url == "" {
		return nil, errors.New("admin: empty audio url")
	}
	if strings.HasPrefix(url, "/") && f.Origin != "" {
		url = strings.TrimRight(f.Origin, "/") + url
	}
	ctx, cancel := context.WithCancel(context.Background())
	var sink io.Writer = io.Discard
	if f.Sink != nil {
		if w := f.Sink(url); w != nil {
			sink = w
		}
	}
	s := &streamAudio{
		url:    url,
		client: f.Client,
		sink:   sink,
		obs:    obs,
		ctx:    ctx,
		cancel: cancel,
	}
	if f.BytesPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(f.BytesPerSecond), streamChunk)
	}
	return s, nil
}

const streamChunk = 32 * 1024

type streamAudio struct {
	url     string
	client  *http.Client
	sink    io.Writer
	obs     AudioObserver
	limiter *rate.Limiter
	ctx     context.Context
	cancel  context.CancelFunc
	closed  atomic.Bool

	mu      sync.Mutex
	running bool
	paused  bool
	resume  chan struct{}
}

func (s *streamAudio) Play() error {
	if s.closed.Load() {
		return errors.New("admin: audio handle closed")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		s.running = true
		go s.stream()
		return nil
	}
	if s.paused {
		s.paused = false
		close(s.resume)
	}
	return nil
}

func (s *streamAudio) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.paused {
		s.paused = true
		s.resume = make(chan struct{})
	}
}

func (s *streamAudio) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.cancel()
	return nil
}

func (s *streamAudio) waitResumed() error {
	s.mu.Lock()
	paused, resume := s.paused, s.resume
	s.mu.Unlock()
	if !paused {
		return nil
	}
	select {
	case <-resume:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	}
}

func (s *streamAudio) stream() {
	req, err := http.NewRequestWithContext(s.ctx, http.MethodGet, s.url, nil)
	if err != nil {
		s.emitError(err)
		return
	}
	resp, err := s.client.Do(req)
	if err != nil {
		s.emitError(err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.emitError(fmt.Errorf("status %d", resp.StatusCode))
		return
	}

	total := resp.ContentLength
	var loaded int64
	buf := make([]byte, streamChunk)
	for {
		if err := s.waitResumed(); err != nil {
			return
		}
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if s.limiter != nil {
				if err := s.limiter.WaitN(s.ctx, n); err != nil {
					return
				}
			}
			if _, err := s.sink.Write(buf[:n]); err != nil {
				s.emitError(err)
				return
			}
			loaded += int64(n)
			fraction := 0.0
			if total > 0 {
				fraction = float64(loaded) / float64(total)
			}
			s.emitProgress(fraction)
		}
		if errors.Is(readErr, io.EOF) {
			s.emitEnd()
			return
		}
		if readErr != nil {
			s.emitError(readErr)
			return
		}
	}
}

func (s *streamAudio) emitProgress(fraction float64) {
	if s.closed.Load() || s.obs.OnProgress == nil {
		return
	}
	s.obs.OnProgress(fraction)
}

func (s *streamAudio) emitEnd() {
	if s.closed.Load() || s.obs.OnEnd == nil {
		return
	}
	s.obs.OnEnd()
}

func (s *streamAudio) emitError(err error) {
	if s.closed.Load() || s.obs.OnError == nil {
		return
	}
	s.obs.OnError(err)
}
