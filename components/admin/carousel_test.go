package admin

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

type manualTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }

func (m *manualTicker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

func (m *manualTicker) isStopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

type manualTickers struct {
	mu      sync.Mutex
	tickers []*manualTicker
}

func (f *manualTickers) factory(time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &manualTicker{ch: make(chan time.Time)}
	f.tickers = append(f.tickers, t)
	return t
}

func (f *manualTickers) all() []*manualTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*manualTicker(nil), f.tickers...)
}

func TestCarouselAdvancesModuloImageCount(t *testing.T) {
	tickers := &manualTickers{}
	c := NewCarousel(time.Second, tickers.factory)
	defer c.Stop()

	c.Reset(map[tuvibe.ID]int{"1": 3, "2": 1, "3": 0})
	created := tickers.all()
	require.Len(t, created, 1, "only multi-image records get a timer")

	want := []int{1, 2, 0, 1, 2}
	for _, idx := range want {
		created[0].ch <- time.Now()
		require.Eventually(t, func() bool { return c.Index("1") == idx }, time.Second, time.Millisecond)
	}
	assert.Equal(t, 0, c.Index("2"))
	assert.Equal(t, 0, c.Index("3"))
}

func TestCarouselResetStopsPreviousTimers(t *testing.T) {
	tickers := &manualTickers{}
	c := NewCarousel(time.Second, tickers.factory)

	c.Reset(map[tuvibe.ID]int{"1": 2, "2": 4})
	first := tickers.all()
	require.Len(t, first, 2)
	first[0].ch <- time.Now()

	c.Reset(map[tuvibe.ID]int{"1": 2})
	for _, ticker := range first {
		assert.True(t, ticker.isStopped())
	}
	assert.Equal(t, 0, c.Index("1"), "indices restart after reset")
	assert.Len(t, tickers.all(), 3)

	c.Stop()
	for _, ticker := range tickers.all() {
		assert.True(t, ticker.isStopped())
	}
	assert.Equal(t, 0, c.Index("2"))
}

func TestCarouselStopIsIdempotent(t *testing.T) {
	c := NewCarousel(0, nil)
	c.Stop()
	c.Reset(map[tuvibe.ID]int{"1": 2})
	c.Stop()
	c.Stop()
	assert.Equal(t, 0, c.Index("1"))
}

func TestCarouselConcurrentResetAndClose(t *testing.T) {
	tickers := &manualTickers{}
	c := NewCarousel(time.Second, tickers.factory)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				c.Reset(map[tuvibe.ID]int{"1": 2, "2": 3})
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 25; j++ {
			c.Stop()
		}
	}()
	wg.Wait()

	c.Close()
	created := tickers.all()
	for _, ticker := range created {
		assert.True(t, ticker.isStopped())
	}

	c.Reset(map[tuvibe.ID]int{"1": 2})
	assert.Len(t, tickers.all(), len(created), "reset after close starts no timers")
	assert.Equal(t, 0, c.Index("1"))
}
