package admin

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

// Screen codes.
const (
	ScreenAnalytics = "analytics"
	ScreenMarket    = "market"
	ScreenReports   = "reports"
	ScreenStories   = "stories"
	ScreenMusic     = "music"
)

// Screen is one mounted console view with its own state.
type Screen interface {
	Code() string
	Title() string
	Template() string
	// Load performs the mount fetch.
	Load(ctx context.Context) error
	// Retry re-issues the last fetch.
	Retry(ctx context.Context) error
	// Dispatch applies a filter action and fetches when it changed anything.
	Dispatch(ctx context.Context, action FilterAction) error
	// View returns a render-ready snapshot.
	View() any
	// Close releases timers, audio and in-flight loads.
	Close()
}

// Deps are the collaborators handed to screen factories.
type Deps struct {
	Session        tuvibe.Session
	Backend        tuvibe.Backend
	Notifier       Notifier
	Validator      *DraftValidator
	Charts         *ChartRenderer
	Audio          AudioFactory
	Tickers        TickerFactory
	PageSize       int
	CarouselPeriod time.Duration
	Telemetry      Telemetry
	Logger         *slog.Logger
}

func (d Deps) normalized() Deps {
	d.Notifier = normalizeNotifier(d.Notifier)
	d.Telemetry = normalizeTelemetry(d.Telemetry)
	d.Logger = normalizeLogger(d.Logger)
	if d.Validator == nil {
		d.Validator = NewDraftValidator()
	}
	if d.Charts == nil {
		d.Charts = NewChartRenderer()
	}
	if d.PageSize <= 0 {
		d.PageSize = 10
	}
	return d
}

// TabView is a rendered tab.
type TabView struct {
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// ListMeta is the view portion shared by list screens.
type ListMeta struct {
	Loading    bool        `json:"loading"`
	Loaded     bool        `json:"loaded"`
	Error      string      `json:"error,omitempty"`
	Filter     FilterState `json:"filter"`
	Tabs       []TabView   `json:"tabs,omitempty"`
	Total      int         `json:"total"`
	TotalPages int         `json:"total_pages"`
	HasPrev    bool        `json:"has_prev"`
	HasNext    bool        `json:"has_next"`
	Busy       []string    `json:"busy,omitempty"`
}

// CanRetry reports whether the banner offers a retry.
func (m ListMeta) CanRetry() bool { return m.Error != "" }

// listScreen holds the filter, loader and mutator shared by every list screen.
type listScreen[T any] struct {
	code     string
	title    string
	template string
	deps     Deps
	tabs     TabSet
	defaults FilterState

	mu     sync.Mutex
	filter FilterState
	closed bool

	loader   *Loader[T]
	mutator  *Mutator
	onLoaded func(T)
}

func newListScreen[T any](code, title string, deps Deps, tabs TabSet, fetch FetchFunc[T]) *listScreen[T] {
	deps = deps.normalized()
	defaults := FilterState{PageSize: deps.PageSize}
	s := &listScreen[T]{
		code:     code,
		title:    title,
		template: code + ".html",
		deps:     deps,
		tabs:     tabs,
		defaults: defaults,
		filter:   defaults,
		loader:   NewLoader(code, fetch, deps.Logger.With("screen", code)),
	}
	s.mutator = NewMutator(MutatorOptions{
		Screen:    code,
		Refetch:   s.Load,
		Notifier:  deps.Notifier,
		Telemetry: deps.Telemetry,
		Logger:    deps.Logger,
	})
	return s
}

func (s *listScreen[T]) Code() string     { return s.code }
func (s *listScreen[T]) Title() string    { return s.title }
func (s *listScreen[T]) Template() string { return s.template }

func (s *listScreen[T]) currentFilter() FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

func (s *listScreen[T]) Load(ctx context.Context) error {
	return s.load(ctx, s.currentFilter())
}

func (s *listScreen[T]) load(ctx context.Context, filter FilterState) error {
	err := s.loader.Load(ctx, s.deps.Session, filter)
	if errors.Is(err, ErrSuperseded) {
		return nil
	}
	if err == nil && s.onLoaded != nil && !s.isClosed() {
		s.onLoaded(s.loader.State().Data)
	}
	s.deps.Telemetry.Record(ctx, "admin.screen.load", map[string]any{
		"screen": s.code,
		"page":   filter.ServerPage(),
		"ok":     err == nil,
	})
	return err
}

func (s *listScreen[T]) Retry(ctx context.Context) error {
	return s.Load(ctx)
}

func (s *listScreen[T]) Dispatch(ctx context.Context, action FilterAction) error {
	if action.Type == ActionReset && action.Defaults == nil {
		action.Defaults = &s.defaults
	}
	s.mu.Lock()
	next, changed := Reduce(s.filter, action)
	next.Tab = s.tabs.Clamp(next.Tab)
	changed = changed && next != s.filter
	s.filter = next
	s.mu.Unlock()
	if !changed {
		return nil
	}
	return s.load(ctx, next)
}

func (s *listScreen[T]) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.loader.Stop()
}

func (s *listScreen[T]) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// meta builds the shared view; fetched is the item count of the current page.
// Without a server pagination block a full page is the only hint of more.
func (s *listScreen[T]) meta(total, fetched int, paginated bool) ListMeta {
	state := s.loader.State()
	filter := s.currentFilter()
	tabs := make([]TabView, len(s.tabs))
	for i, tab := range s.tabs {
		tabs[i] = TabView{Label: tab.Label, Active: i == filter.Tab}
	}
	pages := 0
	if filter.PageSize > 0 {
		pages = (total + filter.PageSize - 1) / filter.PageSize
	}
	return ListMeta{
		Loading:    state.Loading,
		Loaded:     state.Loaded,
		Error:      state.ErrorMessage(),
		Filter:     filter,
		Tabs:       tabs,
		Total:      total,
		TotalPages: pages,
		HasPrev:    filter.Page > 0,
		HasNext:    filter.Page+1 < pages || (!paginated && fetched > 0 && fetched == filter.PageSize),
		Busy:       s.mutator.InFlight().Snapshot(),
	}
}

// unpagedMeta is meta for collections the server returns whole.
func (s *listScreen[T]) unpagedMeta(total int) ListMeta {
	m := s.meta(total, total, true)
	m.TotalPages = 0
	if total > 0 {
		m.TotalPages = 1
	}
	m.HasPrev = false
	m.HasNext = false
	return m
}
