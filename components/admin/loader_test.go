package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

func TestLoaderKeepsDataOnFailure(t *testing.T) {
	fail := false
	loader := NewLoader("things", func(ctx context.Context, sess tuvibe.Session, filter FilterState) (int, error) {
		if fail {
			return 0, &tuvibe.RequestError{Kind: tuvibe.KindRejected, Message: "boom"}
		}
		return filter.Page + 40, nil
	}, nil)

	require.NoError(t, loader.Load(context.Background(), tuvibe.Session{Token: "t"}, FilterState{Page: 2}))
	state := loader.State()
	assert.True(t, state.Loaded)
	assert.Equal(t, 42, state.Data)

	fail = true
	err := loader.Load(context.Background(), tuvibe.Session{Token: "t"}, FilterState{Page: 3})
	require.Error(t, err)
	state = loader.State()
	assert.Equal(t, 42, state.Data)
	assert.Equal(t, "boom", state.ErrorMessage())
	assert.False(t, state.Loading)

	fail = false
	require.NoError(t, loader.Retry(context.Background()))
	state = loader.State()
	assert.Equal(t, 43, state.Data, "retry reuses the last filter")
	assert.Empty(t, state.ErrorMessage())
}

func TestLoaderDropsStaleResponse(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	loader := NewLoader("things", func(ctx context.Context, _ tuvibe.Session, filter FilterState) (string, error) {
		if filter.Tab == 1 {
			close(started)
			<-release
			return "stale", nil
		}
		return "fresh", nil
	}, nil)

	slow := make(chan error, 1)
	go func() {
		slow <- loader.Load(context.Background(), tuvibe.Session{}, FilterState{Tab: 1})
	}()
	<-started

	require.NoError(t, loader.Load(context.Background(), tuvibe.Session{}, FilterState{Tab: 2}))
	close(release)

	select {
	case err := <-slow:
		assert.True(t, errors.Is(err, ErrSuperseded))
	case <-time.After(time.Second):
		t.Fatalf("stale load did not return")
	}
	state := loader.State()
	assert.Equal(t, "fresh", state.Data)
	assert.Equal(t, 2, state.Filter.Tab)
}

func TestLoaderCancelsSupersededContext(t *testing.T) {
	cancelled := make(chan struct{})
	started := make(chan struct{})
	loader := NewLoader("things", func(ctx context.Context, _ tuvibe.Session, filter FilterState) (int, error) {
		if filter.Page == 0 {
			close(started)
			<-ctx.Done()
			close(cancelled)
			return 0, ctx.Err()
		}
		return filter.Page, nil
	}, nil)

	go loader.Load(context.Background(), tuvibe.Session{}, FilterState{})
	<-started
	loader.Stop()

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatalf("expected superseded load to be cancelled")
	}
	assert.False(t, loader.State().Loaded)
}
