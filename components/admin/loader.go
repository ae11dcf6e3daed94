package admin

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

// ErrSuperseded is returned by Load when a newer load replaced this one.
var ErrSuperseded = errors.New("admin: load superseded")

// ViewState is the loading/error/data triple rendered by a screen.
type ViewState[T any] struct {
	Loading bool
	Loaded  bool
	Err     error
	Data    T
	Filter  FilterState
}

// ErrorMessage returns the banner text for the current error.
func (v ViewState[T]) ErrorMessage() string {
	if v.Err == nil {
		return ""
	}
	return tuvibe.Message(v.Err)
}

// FetchFunc performs one list fetch for a filter.
type FetchFunc[T any] func(ctx context.Context, sess tuvibe.Session, filter FilterState) (T, error)

// Loader drives a fetch function and keeps the last completed result.
// A load cancels the one it supersedes and a stale response never replaces
// newer data.
type Loader[T any] struct {
	name  string
	fetch FetchFunc[T]

	mu      sync.Mutex
	state   ViewState[T]
	seq     uint64
	cancel  context.CancelFunc
	session tuvibe.Session
	logger  *slog.Logger
}

// NewLoader builds a loader for the named resource.
func NewLoader[T any](name string, fetch FetchFunc[T], logger *slog.Logger) *Loader[T] {
	return &Loader[T]{
		name:   name,
		fetch:  fetch,
		logger: normalizeLogger(logger),
	}
}

// Load fetches filter with sess. On failure the previous data is kept.
func (l *Loader[T]) Load(ctx context.Context, sess tuvibe.Session, filter FilterState) error {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.seq++
	seq := l.seq
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.session = sess
	l.state.Filter = filter
	l.state.Loading = true
	l.mu.Unlock()

	data, err := l.fetch(ctx, sess, filter)

	l.mu.Lock()
	defer l.mu.Unlock()
	cancel()
	if seq != l.seq {
		l.logger.Debug("dropping stale response", "resource", l.name, "seq", seq, "latest", l.seq)
		return ErrSuperseded
	}
	l.cancel = nil
	l.state.Loading = false
	if err != nil {
		l.state.Err = err
		l.logger.Warn("load failed", "resource", l.name, "error", err)
		return err
	}
	l.state.Data = data
	l.state.Err = nil
	l.state.Loaded = true
	return nil
}

// Retry re-issues the last load with the same filter and session.
func (l *Loader[T]) Retry(ctx context.Context) error {
	l.mu.Lock()
	sess, filter := l.session, l.state.Filter
	l.mu.Unlock()
	return l.Load(ctx, sess, filter)
}

// State returns a snapshot of the view state.
func (l *Loader[T]) State() ViewState[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Stop cancels any in-flight load and drops its response.
func (l *Loader[T]) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.seq++
	l.state.Loading = false
}
