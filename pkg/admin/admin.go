// Package admin assembles the TuVibe console from configuration.
package admin

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	router "github.com/goliatone/go-router"
	"golang.org/x/time/rate"

	core "github.com/tuvibe/go-admin/components/admin"
	"github.com/tuvibe/go-admin/components/admin/gorouter"
	"github.com/tuvibe/go-admin/components/admin/httpapi"
	"github.com/tuvibe/go-admin/components/admin/queries"
	"github.com/tuvibe/go-admin/pkg/config"
	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

// Console exposes the underlying components/admin.Console type.
type Console = core.Console

// ConsoleOptions re-export for convenience.
type ConsoleOptions = core.ConsoleOptions

// NewConsole proxies to the internal constructor.
func NewConsole(opts ConsoleOptions) *Console {
	return core.NewConsole(opts)
}

// Config wires settings and collaborators into an Admin.
type Config struct {
	Settings *config.Config
	// Session overrides the credential found in Settings or the session store.
	Session    tuvibe.Session
	Store      tuvibe.SessionStore
	HTTPClient *http.Client
	Renderer   core.Renderer
	Audio      core.AudioFactory
	Telemetry  core.Telemetry
	Logger     *slog.Logger
}

// Admin owns the backend client, the console and its command executor.
type Admin struct {
	client   *tuvibe.Client
	console  *core.Console
	hub      *core.NotificationHub
	executor *httpapi.CommandExecutor
	basePath string
}

// New builds an Admin. A missing credential is not an error: screens report
// it when they fetch.
func New(cfg Config) (*Admin, error) {
	settings := cfg.Settings
	if settings == nil {
		settings = config.Default()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	client, err := tuvibe.NewClient(tuvibe.Config{
		BaseURL:    settings.API.BaseURL,
		UploadRoot: settings.API.UploadRoot,
		HTTPClient: cfg.HTTPClient,
		Timeout:    settings.API.Timeout,
		RateLimit:  rate.Limit(settings.API.RateLimit),
		Burst:      settings.API.Burst,
		Logger:     logger.With("component", "tuvibe"),
	})
	if err != nil {
		return nil, fmt.Errorf("admin: %w", err)
	}
	sess, err := ResolveSession(settings, cfg.Store, cfg.Session)
	if err != nil {
		return nil, err
	}
	renderer := cfg.Renderer
	if renderer == nil {
		if renderer, err = core.NewTemplateRenderer(); err != nil {
			return nil, fmt.Errorf("admin: templates: %w", err)
		}
	}
	audio := cfg.Audio
	if audio == nil {
		stream := core.NewStreamAudioFactory(cfg.HTTPClient)
		stream.Origin = client.BaseURL()
		audio = stream
	}
	telemetry := cfg.Telemetry
	if telemetry == nil {
		telemetry = core.SlogTelemetry{Logger: logger, Level: slog.LevelDebug}
	}

	hub := core.NewNotificationHub()
	console := core.NewConsole(core.ConsoleOptions{
		Deps: core.Deps{
			Session:        sess,
			Backend:        client,
			Charts:         core.NewChartRenderer(core.WithChartTheme(settings.Charts.Theme), core.WithChartCache(core.NewChartCache(settings.Charts.CacheTTL))),
			Audio:          audio,
			PageSize:       settings.Screens.PageSize,
			CarouselPeriod: settings.Screens.CarouselPeriod,
			Telemetry:      telemetry,
			Logger:         logger,
		},
		Renderer: renderer,
		Hub:      hub,
		BasePath: settings.Server.BasePath,
	})
	return &Admin{
		client:   client,
		console:  console,
		hub:      hub,
		executor: httpapi.NewCommandExecutor(console, telemetry),
		basePath: settings.Server.BasePath,
	}, nil
}

// ResolveSession picks the credential: explicit override, configured token,
// then the session store.
func ResolveSession(settings *config.Config, store tuvibe.SessionStore, override tuvibe.Session) (tuvibe.Session, error) {
	if override.Valid() {
		return override, nil
	}
	if settings != nil && settings.Session.Token != "" {
		return tuvibe.Session{Token: settings.Session.Token}, nil
	}
	if store == nil {
		return tuvibe.Session{}, nil
	}
	sess, err := store.Load()
	if err != nil {
		return tuvibe.Session{}, fmt.Errorf("admin: load session: %w", err)
	}
	return sess, nil
}

// Client returns the backend client.
func (a *Admin) Client() *tuvibe.Client { return a.client }

// Console returns the console.
func (a *Admin) Console() *Console { return a.console }

// Hub returns the notification hub.
func (a *Admin) Hub() *core.NotificationHub { return a.hub }

// Executor returns the command executor shared by transports.
func (a *Admin) Executor() httpapi.Executor { return a.executor }

// BasePath returns the URL prefix of console routes.
func (a *Admin) BasePath() string { return a.basePath }

// Handler serves the console with net/http.
func (a *Admin) Handler() http.Handler {
	mux := http.NewServeMux()
	handlers := &httpapi.Handlers{
		API:           a.executor,
		Views:         queries.NewViewQuery(a.console),
		Navigation:    queries.NewNavigationQuery(a.console),
		Notifications: queries.NewNotificationsQuery(a.hub),
		Pages:         a.console.RenderHTML,
		Hub:           a.hub,
	}
	codes := make([]string, 0, 5)
	for _, info := range a.console.Screens() {
		codes = append(codes, info.Code)
	}
	handlers.Mount(mux, a.basePath, codes)
	return mux
}

// Register mounts the console on a go-router router.
func Register[T any](a *Admin, r router.Router[T]) error {
	if a == nil {
		return errors.New("admin: nil admin")
	}
	return gorouter.Register(gorouter.Config[T]{
		Router:   r,
		Console:  a.console,
		API:      a.executor,
		Hub:      a.hub,
		BasePath: a.basePath,
	})
}

// Close unmounts the active screen.
func (a *Admin) Close() {
	a.console.Close()
}
