package admin

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ettle/strcase"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

const defaultChartHeight = "320px"

// ChartType names a supported go-echarts chart.
type ChartType string

const (
	ChartBar   ChartType = "bar"
	ChartLine  ChartType = "line"
	ChartPie   ChartType = "pie"
	ChartGauge ChartType = "gauge"
)

// ChartSpec is a renderable chart.
type ChartSpec struct {
	ID       string        `json:"id"`
	Type     ChartType     `json:"type"`
	Title    string        `json:"title"`
	Subtitle string        `json:"subtitle,omitempty"`
	XAxis    []string      `json:"x_axis,omitempty"`
	Series   []ChartSeries `json:"series"`
}

// ChartSeries is one legend entry.
type ChartSeries struct {
	Name   string       `json:"name"`
	Points []ChartPoint `json:"points"`
}

// ChartPoint is a labeled value.
type ChartPoint struct {
	Label string  `json:"label,omitempty"`
	Value float64 `json:"value"`
}

// ChartRenderer turns ChartSpecs into embeddable HTML.
type ChartRenderer struct {
	cache      RenderCache
	theme      string
	assetsHost string
}

// ChartOption customizes a ChartRenderer.
type ChartOption func(*ChartRenderer)

// WithChartCache injects a render cache; nil disables caching.
func WithChartCache(cache RenderCache) ChartOption {
	return func(r *ChartRenderer) { r.cache = cache }
}

// WithChartTheme sets the theme (defaults to Westeros).
func WithChartTheme(theme string) ChartOption {
	return func(r *ChartRenderer) {
		if theme != "" {
			r.theme = theme
		}
	}
}

// WithChartAssetsHost rewrites where the ECharts runtime is loaded from.
func WithChartAssetsHost(host string) ChartOption {
	return func(r *ChartRenderer) { r.assetsHost = host }
}

// NewChartRenderer builds a renderer with a five minute cache.
func NewChartRenderer(options ...ChartOption) *ChartRenderer {
	r := &ChartRenderer{
		cache: NewChartCache(5 * time.Minute),
		theme: types.ThemeWesteros,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Render returns the chart HTML, served from cache when the spec is unchanged.
func (r *ChartRenderer) Render(spec ChartSpec) (string, error) {
	if len(spec.Series) == 0 {
		return "", fmt.Errorf("admin: chart %s has no series", spec.ID)
	}
	render := func() (string, error) { return r.render(spec) }
	if r.cache == nil {
		return render()
	}
	key := fmt.Sprintf("%s:%s:%s:%s", spec.ID, spec.Type, r.theme, contentHash(spec))
	return r.cache.GetOrRender(key, render)
}

func (r *ChartRenderer) render(spec ChartSpec) (string, error) {
	switch spec.Type {
	case ChartBar:
		bar := charts.NewBar()
		bar.SetGlobalOptions(r.globalOptions(spec)...)
		bar.SetXAxis(spec.XAxis)
		for _, s := range spec.Series {
			bar.AddSeries(s.Name, toBarData(s.Points))
		}
		return renderChart(bar)
	case ChartLine:
		line := charts.NewLine()
		line.SetGlobalOptions(r.globalOptions(spec)...)
		line.SetXAxis(spec.XAxis)
		for _, s := range spec.Series {
			line.AddSeries(s.Name, toLineData(s.Points))
		}
		line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
		return renderChart(line)
	case ChartPie:
		pie := charts.NewPie()
		pie.SetGlobalOptions(r.globalOptions(spec)...)
		for _, s := range spec.Series {
			pie.AddSeries(s.Name, toPieData(s.Points))
		}
		return renderChart(pie)
	case ChartGauge:
		gauge := charts.NewGauge()
		gauge.SetGlobalOptions(r.globalOptions(spec)...)
		for _, s := range spec.Series {
			if len(s.Points) == 0 {
				continue
			}
			gauge.AddSeries(s.Name, []opts.GaugeData{{Name: s.Points[0].Label, Value: s.Points[0].Value}})
		}
		return renderChart(gauge)
	default:
		return "", fmt.Errorf("admin: unsupported chart type %q", spec.Type)
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *ChartRenderer) globalOptions(spec ChartSpec) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		ChartID: spec.ID,
		Theme:   r.theme,
		Width:   "100%",
		Height:  defaultChartHeight,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: spec.Title, Subtitle: spec.Subtitle}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(spec.Type != ChartGauge)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func toBarData(points []ChartPoint) []opts.BarData {
	data := make([]opts.BarData, len(points))
	for i, p := range points {
		data[i] = opts.BarData{Name: p.Label, Value: p.Value}
	}
	return data
}

func toLineData(points []ChartPoint) []opts.LineData {
	data := make([]opts.LineData, len(points))
	for i, p := range points {
		data[i] = opts.LineData{Name: p.Label, Value: p.Value}
	}
	return data
}

func toPieData(points []ChartPoint) []opts.PieData {
	data := make([]opts.PieData, len(points))
	for i, p := range points {
		name := p.Label
		if name == "" {
			name = fmt.Sprintf("Slice %d", i+1)
		}
		data[i] = opts.PieData{Name: name, Value: p.Value}
	}
	return data
}

// StatsCharts derives the analytics charts for a tab from the stats payload.
// Charts with no data are omitted.
func StatsCharts(tab string, stats tuvibe.DashboardStats) []ChartSpec {
	var out []ChartSpec
	add := func(spec ChartSpec) {
		if len(spec.Series) > 0 && len(spec.Series[0].Points) > 0 {
			out = append(out, spec)
		}
	}
	switch tab {
	case "users":
		axis := make([]string, len(stats.UserGrowth))
		points := make([]ChartPoint, len(stats.UserGrowth))
		for i, day := range stats.UserGrowth {
			axis[i] = day.Date
			points[i] = ChartPoint{Label: day.Date, Value: float64(day.Count)}
		}
		add(ChartSpec{
			ID: "user_growth", Type: ChartLine, Title: "User Growth", XAxis: axis,
			Series: []ChartSeries{{Name: "New users", Points: points}},
		})
	case "content":
		add(breakdown("reports_by_category", ChartPie, "Reports by Category", "Reports", stats.ReportsByCategory))
		add(breakdown("stories_by_status", ChartBar, "Stories by Status", "Stories", stats.StoriesByStatus))
		add(breakdown("top_market_tags", ChartBar, "Top Market Tags", "Items", stats.TopMarketTags))
	case "tokens":
		issued := stats.TokenStats.TotalIssued
		if issued > 0 {
			spent := stats.TokenStats.TotalSpent / issued * 100
			add(ChartSpec{
				ID: "token_usage", Type: ChartGauge, Title: "Tokens Spent",
				Series: []ChartSeries{{Name: "Spent", Points: []ChartPoint{{Label: "% of issued", Value: roundTo(spent, 1)}}}},
			})
		}
	}
	return out
}

func breakdown(id string, kind ChartType, title, series string, counts map[string]int) ChartSpec {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	axis := make([]string, len(keys))
	points := make([]ChartPoint, len(keys))
	for i, k := range keys {
		axis[i] = humanize(k)
		points[i] = ChartPoint{Label: axis[i], Value: float64(counts[k])}
	}
	return ChartSpec{ID: id, Type: kind, Title: title, XAxis: axis, Series: []ChartSeries{{Name: series, Points: points}}}
}

// humanize turns a snake_case server value into a label.
func humanize(value string) string {
	words := strings.Fields(strings.ReplaceAll(strcase.ToSnake(value), "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func roundTo(v float64, places int) float64 {
	scale := 1.0
	for range places {
		scale *= 10
	}
	return float64(int64(v*scale+0.5)) / scale
}
