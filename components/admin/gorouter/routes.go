package gorouter

import (
	"bytes"
	"errors"
	"net/http"

	gocommand "github.com/goliatone/go-command"
	router "github.com/goliatone/go-router"

	"github.com/tuvibe/go-admin/components/admin"
	"github.com/tuvibe/go-admin/components/admin/commands"
	"github.com/tuvibe/go-admin/components/admin/httpapi"
	"github.com/tuvibe/go-admin/components/admin/queries"
	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

// Config wires go-router with the admin console, its commands and the
// notification hub.
type Config[T any] struct {
	Router  router.Router[T]
	Console *admin.Console
	API     httpapi.Executor
	Views   gocommand.Querier[queries.ViewInput, queries.ViewOutput]
	// Navigation and Notifications default to queries over Console and Hub.
	Navigation    gocommand.Querier[queries.NavigationInput, []admin.ScreenInfo]
	Notifications gocommand.Querier[queries.NotificationsInput, []admin.Notification]
	Hub           *admin.NotificationHub
	BasePath      string
	Routes        RouteConfig
}

// RouteConfig customizes the relative paths used for console endpoints.
type RouteConfig struct {
	Page        string
	View        string
	Filter      string
	Retry       string
	Market      string
	MarketID    string
	ReportID    string
	Approve     string
	Reject      string
	Music       string
	MusicID     string
	Play        string
	Dismiss     string
	Navigation  string
	Inbox       string
	DeleteAlias string
	WebSocket   string
}

// Register mounts console routes (HTML, JSON, REST, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Console == nil {
		return errors.New("gorouter: console is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/admin"
	}
	views := cfg.Views
	if views == nil {
		views = queries.NewViewQuery(cfg.Console)
	}
	hub := cfg.Hub
	if hub == nil {
		hub = cfg.Console.Hub()
	}

	navigation := cfg.Navigation
	if navigation == nil {
		navigation = queries.NewNavigationQuery(cfg.Console)
	}
	notifications := cfg.Notifications
	if notifications == nil && hub != nil {
		notifications = queries.NewNotificationsQuery(hub)
	}

	group := cfg.Router.Group(base)

	// Fixed paths go first so the :screen routes do not capture them.
	if hub != nil {
		registerWebSocket(group, hub, routes.WebSocket)
	}
	group.Get(routes.Navigation, router.WrapHandler(func(ctx router.Context) error {
		screens, err := navigation.Query(ctx.Context(), queries.NavigationInput{})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]any{"screens": screens})
	}))
	if notifications != nil {
		group.Get(routes.Inbox, router.WrapHandler(func(ctx router.Context) error {
			input := httpapi.NotificationsInput(ctx.Query("pending"), ctx.Query("limit"))
			items, err := notifications.Query(ctx.Context(), input)
			if err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, map[string]any{"notifications": items})
		}))
	}

	group.Get(routes.View, router.WrapHandler(func(ctx router.Context) error {
		out, err := views.Query(ctx.Context(), queries.ViewInput{Screen: ctx.Param("screen")})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, out)
	}))

	if cfg.API != nil {
		registerAPI(group, cfg.API, routes)
	}

	group.Get(routes.Page, router.WrapHandler(func(ctx router.Context) error {
		var buf bytes.Buffer
		if err := cfg.Console.RenderHTML(ctx.Context(), ctx.Param("screen"), &buf); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	return nil
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, routes RouteConfig) {
	r.Post(routes.Filter, router.WrapHandler(func(ctx router.Context) error {
		action, err := httpapi.DecodeFilterAction(ctx.Header("Content-Type"), ctx.Body())
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		input := commands.FilterInput{Screen: ctx.Param("screen"), Action: action}
		return respond(ctx, api.Filter(ctx.Context(), input), http.StatusOK, "applied")
	}))

	r.Post(routes.Retry, router.WrapHandler(func(ctx router.Context) error {
		err := api.Retry(ctx.Context(), commands.RetryInput{Screen: ctx.Param("screen")})
		return respond(ctx, err, http.StatusOK, "reloaded")
	}))

	saveMarket := router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SaveMarketItemInput
		if err := httpapi.DecodeJSON(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.ID = tuvibe.ID(ctx.Param("id"))
		return respond(ctx, api.SaveMarketItem(ctx.Context(), payload), savedStatus(payload.ID), "saved")
	})
	r.Post(routes.Market, saveMarket)
	r.Post(routes.MarketID, saveMarket)

	r.Post(routes.ReportID, router.WrapHandler(func(ctx router.Context) error {
		update, err := httpapi.DecodeReportUpdate(ctx.Header("Content-Type"), ctx.Body())
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		input := commands.UpdateReportInput{ID: tuvibe.ID(ctx.Param("id")), Update: update}
		return respond(ctx, api.UpdateReport(ctx.Context(), input), http.StatusOK, "updated")
	}))

	for code, path := range map[string]string{
		admin.ScreenMarket:  routes.MarketID,
		admin.ScreenReports: routes.ReportID,
		admin.ScreenMusic:   routes.MusicID,
	} {
		del := deleteHandler(api, code)
		r.Delete(path, del)
		r.Post(path+routes.DeleteAlias, del)
	}

	r.Post(routes.Approve, router.WrapHandler(func(ctx router.Context) error {
		err := api.ApproveStory(ctx.Context(), commands.ApproveStoryInput{ID: tuvibe.ID(ctx.Param("id"))})
		return respond(ctx, err, http.StatusOK, "approved")
	}))

	r.Post(routes.Reject, router.WrapHandler(func(ctx router.Context) error {
		rejection, err := httpapi.DecodeRejection(ctx.Header("Content-Type"), ctx.Body())
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		input := commands.RejectStoryInput{ID: tuvibe.ID(ctx.Param("id")), Rejection: rejection}
		return respond(ctx, api.RejectStory(ctx.Context(), input), http.StatusOK, "rejected")
	}))

	saveMusic := router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SaveMusicInput
		if err := httpapi.DecodeJSON(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.ID = tuvibe.ID(ctx.Param("id"))
		return respond(ctx, api.SaveMusic(ctx.Context(), payload), savedStatus(payload.ID), "saved")
	})
	r.Post(routes.Music, saveMusic)
	r.Post(routes.MusicID, saveMusic)

	r.Post(routes.Play, router.WrapHandler(func(ctx router.Context) error {
		err := api.TogglePlayback(ctx.Context(), commands.TogglePlaybackInput{ID: tuvibe.ID(ctx.Param("id"))})
		return respond(ctx, err, http.StatusOK, "toggled")
	}))

	r.Post(routes.Dismiss, router.WrapHandler(func(ctx router.Context) error {
		err := api.DismissNotification(ctx.Context(), commands.DismissNotificationInput{ID: ctx.Param("id")})
		return respond(ctx, err, http.StatusOK, "dismissed")
	}))
}

func deleteHandler(api httpapi.Executor, screen string) router.HandlerFunc {
	return router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("id")
		if id == "" {
			return respondError(ctx, http.StatusBadRequest, commands.ErrMissingID)
		}
		input := commands.DeleteRecordInput{
			Screen:    screen,
			ID:        tuvibe.ID(id),
			Confirmed: httpapi.Confirmed(ctx.Query("confirm")),
		}
		return respond(ctx, api.DeleteRecord(ctx.Context(), input), http.StatusOK, "deleted")
	})
}

func registerWebSocket[T any](r router.Router[T], hub *admin.NotificationHub, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hub.Subscribe()
		defer cancel()
		for _, n := range hub.Pending() {
			if err := ws.WriteJSON(n); err != nil {
				return err
			}
		}
		for {
			select {
			case n, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(n); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func respond(ctx router.Context, err error, status int, label string) error {
	if err != nil {
		return respondError(ctx, httpapi.StatusFor(err), err)
	}
	return ctx.JSON(status, map[string]string{"status": label})
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, httpapi.ErrorBody(err))
}

func savedStatus(id tuvibe.ID) int {
	if id == "" {
		return http.StatusCreated
	}
	return http.StatusOK
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.Page == "" {
		routes.Page = "/:screen"
	}
	if routes.View == "" {
		routes.View = "/api/:screen"
	}
	if routes.Filter == "" {
		routes.Filter = "/api/:screen/filter"
	}
	if routes.Retry == "" {
		routes.Retry = "/api/:screen/retry"
	}
	if routes.Market == "" {
		routes.Market = "/api/market"
	}
	if routes.MarketID == "" {
		routes.MarketID = "/api/market/:id"
	}
	if routes.ReportID == "" {
		routes.ReportID = "/api/reports/:id"
	}
	if routes.Approve == "" {
		routes.Approve = "/api/stories/:id/approve"
	}
	if routes.Reject == "" {
		routes.Reject = "/api/stories/:id/reject"
	}
	if routes.Music == "" {
		routes.Music = "/api/music"
	}
	if routes.MusicID == "" {
		routes.MusicID = "/api/music/:id"
	}
	if routes.Play == "" {
		routes.Play = "/api/music/:id/play"
	}
	if routes.Dismiss == "" {
		routes.Dismiss = "/api/notifications/:id/dismiss"
	}
	if routes.Navigation == "" {
		routes.Navigation = "/api/screens"
	}
	if routes.Inbox == "" {
		routes.Inbox = "/api/notifications"
	}
	if routes.DeleteAlias == "" {
		routes.DeleteAlias = "/delete"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/ws"
	}
	return routes
}
