package admin

import (
	"context"
	"errors"
	"sync"

	"github.com/ettle/strcase"

	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

// AnalyticsTabs are presentational; switching never refetches.
var AnalyticsTabs = TabSet{
	{Label: "Overview"},
	{Label: "Users"},
	{Label: "Content"},
	{Label: "Tokens"},
}

// StatCard is one headline number.
type StatCard struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// RenderedChart pairs a chart spec with its HTML.
type RenderedChart struct {
	ChartSpec
	HTML string `json:"html"`
}

// AnalyticsView is the analytics render model.
type AnalyticsView struct {
	Loading bool            `json:"loading"`
	Loaded  bool            `json:"loaded"`
	Error   string          `json:"error,omitempty"`
	Tabs    []TabView       `json:"tabs"`
	Cards   []StatCard      `json:"cards"`
	Charts  []RenderedChart `json:"charts"`
}

// CanRetry reports whether the banner offers a retry.
func (v AnalyticsView) CanRetry() bool { return v.Error != "" }

// AnalyticsScreen renders the dashboard statistics.
type AnalyticsScreen struct {
	deps   Deps
	client tuvibe.StatsClient
	loader *Loader[tuvibe.DashboardStats]

	mu  sync.Mutex
	tab int
}

// NewAnalyticsScreen builds the analytics screen.
func NewAnalyticsScreen(deps Deps) *AnalyticsScreen {
	deps = deps.normalized()
	s := &AnalyticsScreen{deps: deps, client: deps.Backend}
	s.loader = NewLoader(ScreenAnalytics, func(ctx context.Context, sess tuvibe.Session, _ FilterState) (tuvibe.DashboardStats, error) {
		return s.client.FetchDashboardStats(ctx, sess)
	}, deps.Logger.With("screen", ScreenAnalytics))
	return s
}

func (s *AnalyticsScreen) Code() string     { return ScreenAnalytics }
func (s *AnalyticsScreen) Title() string    { return "Analytics" }
func (s *AnalyticsScreen) Template() string { return ScreenAnalytics + ".html" }

// Load fetches the statistics.
func (s *AnalyticsScreen) Load(ctx context.Context) error {
	err := s.loader.Load(ctx, s.deps.Session, FilterState{})
	if errors.Is(err, ErrSuperseded) {
		return nil
	}
	s.deps.Telemetry.Record(ctx, "admin.screen.load", map[string]any{"screen": ScreenAnalytics, "ok": err == nil})
	return err
}

// Retry re-issues the statistics request.
func (s *AnalyticsScreen) Retry(ctx context.Context) error {
	return s.Load(ctx)
}

// Dispatch only understands tab changes, which are local.
func (s *AnalyticsScreen) Dispatch(_ context.Context, action FilterAction) error {
	if action.Type != ActionSetTab {
		return nil
	}
	s.mu.Lock()
	s.tab = AnalyticsTabs.Clamp(action.Number)
	s.mu.Unlock()
	return nil
}

// Stats returns the last loaded statistics.
func (s *AnalyticsScreen) Stats() tuvibe.DashboardStats {
	return s.loader.State().Data
}

// View renders cards for the overview and charts for the active tab.
func (s *AnalyticsScreen) View() any {
	state := s.loader.State()
	s.mu.Lock()
	tab := s.tab
	s.mu.Unlock()

	tabs := make([]TabView, len(AnalyticsTabs))
	for i, t := range AnalyticsTabs {
		tabs[i] = TabView{Label: t.Label, Active: i == tab}
	}
	view := AnalyticsView{
		Loading: state.Loading,
		Loaded:  state.Loaded,
		Error:   state.ErrorMessage(),
		Tabs:    tabs,
	}
	if !state.Loaded {
		return view
	}
	view.Cards = overviewCards(state.Data)
	for _, spec := range StatsCharts(strcase.ToSnake(AnalyticsTabs[tab].Label), state.Data) {
		html, err := s.deps.Charts.Render(spec)
		if err != nil {
			s.deps.Logger.Warn("chart render failed", "chart", spec.ID, "error", err)
			continue
		}
		view.Charts = append(view.Charts, RenderedChart{ChartSpec: spec, HTML: html})
	}
	return view
}

// Close cancels any in-flight load.
func (s *AnalyticsScreen) Close() {
	s.loader.Stop()
}

func overviewCards(stats tuvibe.DashboardStats) []StatCard {
	o, t := stats.Overview, stats.TokenStats
	return []StatCard{
		{Label: "Total Users", Value: float64(o.TotalUsers)},
		{Label: "Active Users", Value: float64(o.ActiveUsers)},
		{Label: "New Users Today", Value: float64(o.NewUsersToday)},
		{Label: "Total Stories", Value: float64(o.TotalStories)},
		{Label: "Pending Stories", Value: float64(o.PendingStories)},
		{Label: "Total Reports", Value: float64(o.TotalReports)},
		{Label: "Pending Reports", Value: float64(o.PendingReports)},
		{Label: "Market Items", Value: float64(o.MarketItems)},
		{Label: "Tokens Circulating", Value: t.Circulating},
	}
}
