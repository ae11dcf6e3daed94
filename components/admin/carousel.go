package admin

import (
	"sync"
	"time"

	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

// DefaultCarouselPeriod is the image rotation interval.
const DefaultCarouselPeriod = 3 * time.Second

// Ticker is the subset of *time.Ticker the carousel needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates tickers; tests substitute a manual one.
type TickerFactory func(period time.Duration) Ticker

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker wraps time.NewTicker.
func NewTimeTicker(period time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(period)}
}

// Carousel rotates the displayed image of every multi-image record. Each
// Reset cancels all timers of the previous generation before starting new ones.
type Carousel struct {
	period    time.Duration
	newTicker TickerFactory

	mu      sync.Mutex
	gen     uint64
	indices map[tuvibe.ID]int
	counts  map[tuvibe.ID]int
	run     *carouselRun
	closed  bool
}

// carouselRun owns the timers of one generation.
type carouselRun struct {
	done chan struct{}
	wg   sync.WaitGroup
}

func (r *carouselRun) cancel() {
	if r == nil {
		return
	}
	close(r.done)
}

func (r *carouselRun) wait() {
	if r == nil {
		return
	}
	r.wg.Wait()
}

// NewCarousel builds a carousel. A nil factory uses real tickers.
func NewCarousel(period time.Duration, factory TickerFactory) *Carousel {
	if period <= 0 {
		period = DefaultCarouselPeriod
	}
	if factory == nil {
		factory = NewTimeTicker
	}
	return &Carousel{
		period:    period,
		newTicker: factory,
		indices:   map[tuvibe.ID]int{},
		counts:    map[tuvibe.ID]int{},
	}
}

// Reset replaces the record set. counts maps record id to its image count.
// Reset after Close is a no-op.
func (c *Carousel) Reset(counts map[tuvibe.ID]int) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	prev := c.swap()
	run := &carouselRun{done: make(chan struct{})}
	c.run = run
	gen := c.gen
	for id, n := range counts {
		c.indices[id] = 0
		c.counts[id] = n
		if n <= 1 {
			continue
		}
		ticker := c.newTicker(c.period)
		run.wg.Add(1)
		go c.tick(run, gen, id, ticker)
	}
	c.mu.Unlock()
	// advance takes c.mu, so the old generation is drained unlocked.
	prev.wait()
}

// swap cancels the current generation and clears all indices. c.mu must be held.
func (c *Carousel) swap() *carouselRun {
	c.gen++
	prev := c.run
	c.run = nil
	prev.cancel()
	c.indices = map[tuvibe.ID]int{}
	c.counts = map[tuvibe.ID]int{}
	return prev
}

func (c *Carousel) tick(run *carouselRun, gen uint64, id tuvibe.ID, ticker Ticker) {
	defer run.wg.Done()
	defer ticker.Stop()
	for {
		select {
		case <-run.done:
			return
		case <-ticker.C():
			c.advance(gen, id)
		}
	}
}

func (c *Carousel) advance(gen uint64, id tuvibe.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	n := c.counts[id]
	if n <= 1 {
		return
	}
	c.indices[id] = (c.indices[id] + 1) % n
}

// Index returns the current image index for id.
func (c *Carousel) Index(id tuvibe.ID) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.indices[id]
}

// Stop cancels every timer and clears all indices. A later Reset starts over.
func (c *Carousel) Stop() {
	c.mu.Lock()
	prev := c.swap()
	c.mu.Unlock()
	prev.wait()
}

// Close stops the carousel for good; subsequent Resets are ignored.
func (c *Carousel) Close() {
	c.mu.Lock()
	c.closed = true
	prev := c.swap()
	c.mu.Unlock()
	prev.wait()
}
