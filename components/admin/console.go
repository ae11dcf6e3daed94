package admin

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

// ScreenFactory builds a screen from the console's collaborators.
type ScreenFactory func(deps Deps) Screen

// ScreenInfo describes a registered screen for navigation.
type ScreenInfo struct {
	Code  string `json:"code"`
	Title string `json:"title"`
}

// ConsoleOptions wires a Console.
type ConsoleOptions struct {
	Deps     Deps
	Renderer Renderer
	Hub      *NotificationHub
	// BasePath prefixes links in rendered pages.
	BasePath string
}

// Console owns the screen registry and keeps exactly one screen mounted.
type Console struct {
	mu        sync.Mutex
	deps      Deps
	renderer  Renderer
	hub       *NotificationHub
	basePath  string
	order     []ScreenInfo
	factories map[string]ScreenFactory
	mounted   Screen
	logger    *slog.Logger
}

// NewConsole builds a console with the five default screens registered.
func NewConsole(opts ConsoleOptions) *Console {
	deps := opts.Deps
	if opts.Hub != nil && deps.Notifier == nil {
		deps.Notifier = opts.Hub
	}
	deps = deps.normalized()
	base := opts.BasePath
	if base == "" {
		base = "/admin"
	}
	c := &Console{
		deps:      deps,
		renderer:  opts.Renderer,
		hub:       opts.Hub,
		basePath:  base,
		factories: map[string]ScreenFactory{},
		logger:    deps.Logger,
	}
	c.Register(ScreenAnalytics, "Analytics", func(d Deps) Screen { return NewAnalyticsScreen(d) })
	c.Register(ScreenMarket, "Marketplace", func(d Deps) Screen { return NewMarketplaceScreen(d) })
	c.Register(ScreenReports, "Reports", func(d Deps) Screen { return NewReportsScreen(d) })
	c.Register(ScreenStories, "Stories Moderation", func(d Deps) Screen { return NewStoriesScreen(d) })
	c.Register(ScreenMusic, "Story Music", func(d Deps) Screen { return NewMusicScreen(d) })
	return c
}

// Register adds or replaces a screen factory.
func (c *Console) Register(code, title string, factory ScreenFactory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.factories[code]; !exists {
		c.order = append(c.order, ScreenInfo{Code: code, Title: title})
	}
	c.factories[code] = factory
}

// Screens lists registered screens in registration order.
func (c *Console) Screens() []ScreenInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ScreenInfo(nil), c.order...)
}

// Hub returns the notification hub, if any.
func (c *Console) Hub() *NotificationHub { return c.hub }

// Session returns the credential handed to new screens.
func (c *Console) Session() tuvibe.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deps.Session
}

// SetSession swaps the credential and unmounts the current screen so the
// next mount uses it.
func (c *Console) SetSession(sess tuvibe.Session) {
	c.mu.Lock()
	c.deps.Session = sess
	c.mu.Unlock()
	c.Unmount()
}

// Mount disposes the mounted screen and mounts code, performing its first
// fetch. A failed fetch leaves the screen mounted with its error banner.
func (c *Console) Mount(ctx context.Context, code string) (Screen, error) {
	c.mu.Lock()
	factory, ok := c.factories[code]
	if !ok {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrUnknownScreen, code)
	}
	previous := c.mounted
	screen := factory(c.deps)
	c.mounted = screen
	c.mu.Unlock()

	if previous != nil {
		previous.Close()
	}
	c.deps.Telemetry.Record(ctx, "admin.screen.mount", map[string]any{"screen": code})
	return screen, screen.Load(ctx)
}

// Use returns the mounted screen when it matches code, mounting it otherwise.
func (c *Console) Use(ctx context.Context, code string) (Screen, error) {
	c.mu.Lock()
	current := c.mounted
	c.mu.Unlock()
	if current != nil && current.Code() == code {
		return current, nil
	}
	return c.Mount(ctx, code)
}

// Mounted returns the mounted screen or nil.
func (c *Console) Mounted() Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mounted
}

// Unmount closes the mounted screen.
func (c *Console) Unmount() {
	c.mu.Lock()
	screen := c.mounted
	c.mounted = nil
	c.mu.Unlock()
	if screen != nil {
		screen.Close()
	}
}

// Close releases everything the console holds.
func (c *Console) Close() { c.Unmount() }

// ScreenAs returns the screen for code as T, mounting it when needed. A
// failed first fetch returns the screen together with the error.
func ScreenAs[T Screen](ctx context.Context, c *Console, code string) (T, error) {
	var zero T
	screen, err := c.Use(ctx, code)
	if screen == nil {
		return zero, err
	}
	typed, ok := screen.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s has type %T", ErrUnknownScreen, code, screen)
	}
	return typed, err
}

// PagePayload is the template context for a screen page.
func (c *Console) PagePayload(screen Screen) map[string]any {
	payload := map[string]any{
		"title":     screen.Title(),
		"screen":    screen.Code(),
		"screens":   c.Screens(),
		"base_path": c.basePath,
		"view":      screen.View(),
		"user":      c.Session().User,
	}
	if c.hub != nil {
		payload["notifications"] = c.hub.Pending()
	}
	return payload
}

// RenderHTML mounts code when needed and renders its page into out.
func (c *Console) RenderHTML(ctx context.Context, code string, out io.Writer) error {
	if c.renderer == nil {
		return fmt.Errorf("admin: renderer not configured")
	}
	screen, err := c.Use(ctx, code)
	if screen == nil {
		return err
	}
	if err != nil {
		c.logger.Debug("rendering screen with error banner", "screen", code, "error", err)
	}
	if _, err := c.renderer.Render(screen.Template(), c.PagePayload(screen), out); err != nil {
		return fmt.Errorf("admin: render %s: %w", code, err)
	}
	return nil
}
