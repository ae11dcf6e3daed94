package gorouter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	router "github.com/goliatone/go-router"

	"github.com/tuvibe/go-admin/components/admin"
	"github.com/tuvibe/go-admin/components/admin/httpapi"
	"github.com/tuvibe/go-admin/pkg/tuvibe"
	"github.com/tuvibe/go-admin/pkg/tuvibe/tuvibetest"
)

func TestRegisterValidatesConfig(t *testing.T) {
	if err := Register(Config[struct{}]{}); err == nil {
		t.Fatalf("expected error when router/console missing")
	}
	if err := Register(Config[struct{}]{Router: newMockRouter()}); err == nil {
		t.Fatalf("expected error when console missing")
	}
}

func TestRegisterMountsRoutes(t *testing.T) {
	mock, _, _ := register(t)
	for _, key := range []string{
		"GET:/admin/:screen",
		"GET:/admin/api/:screen",
		"POST:/admin/api/:screen/filter",
		"POST:/admin/api/:screen/retry",
		"POST:/admin/api/market",
		"POST:/admin/api/market/:id",
		"DELETE:/admin/api/market/:id",
		"POST:/admin/api/market/:id/delete",
		"POST:/admin/api/reports/:id",
		"DELETE:/admin/api/reports/:id",
		"POST:/admin/api/reports/:id/delete",
		"POST:/admin/api/stories/:id/approve",
		"POST:/admin/api/stories/:id/reject",
		"POST:/admin/api/music",
		"POST:/admin/api/music/:id/play",
		"DELETE:/admin/api/music/:id",
		"POST:/admin/api/notifications/:id/dismiss",
		"GET:/admin/api/screens",
		"GET:/admin/api/notifications",
	} {
		if _, ok := mock.routes[key]; !ok {
			t.Fatalf("expected route %s to be registered", key)
		}
	}
	if _, ok := mock.ws["/admin/ws"]; !ok {
		t.Fatalf("expected websocket route")
	}
}

func TestPageRoute(t *testing.T) {
	mock, backend, renderer := register(t)
	backend.SetReports(tuvibe.Report{ID: "r1", Reason: "spam", Status: "pending"})

	ctx := newMockContext()
	ctx.params["screen"] = admin.ScreenReports
	if err := mock.routes["GET:/admin/:screen"](ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if string(ctx.body) != "<html>reports.html</html>" {
		t.Fatalf("unexpected body %q", ctx.body)
	}
	if !strings.HasPrefix(ctx.headers["Content-Type"], "text/html") {
		t.Fatalf("expected html content type, got %q", ctx.headers["Content-Type"])
	}
	if renderer.calls != 1 {
		t.Fatalf("expected renderer call, got %d", renderer.calls)
	}

	ctx = newMockContext()
	ctx.params["screen"] = "billing"
	if err := mock.routes["GET:/admin/:screen"](ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if ctx.status != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown screen, got %d", ctx.status)
	}
}

func TestViewRoute(t *testing.T) {
	mock, backend, _ := register(t)
	backend.SetReports(tuvibe.Report{ID: "r1", Reason: "spam", Status: "pending"})

	ctx := newMockContext()
	ctx.params["screen"] = admin.ScreenReports
	if err := mock.routes["GET:/admin/api/:screen"](ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if ctx.status != http.StatusOK {
		t.Fatalf("expected 200, got %d", ctx.status)
	}
	var payload struct {
		Screen string `json:"screen"`
		View   struct {
			Total int `json:"total"`
		} `json:"view"`
	}
	if err := json.Unmarshal(ctx.body, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Screen != admin.ScreenReports || payload.View.Total != 1 {
		t.Fatalf("unexpected payload %s", ctx.body)
	}
}

func TestNavigationAndInboxRoutes(t *testing.T) {
	mock, _, _ := register(t)

	ctx := newMockContext()
	if err := mock.routes["GET:/admin/api/screens"](ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	var nav struct {
		Screens []admin.ScreenInfo `json:"screens"`
	}
	if err := json.Unmarshal(ctx.body, &nav); err != nil {
		t.Fatalf("decode navigation: %v", err)
	}
	if len(nav.Screens) != 5 || nav.Screens[0].Code != admin.ScreenAnalytics {
		t.Fatalf("unexpected navigation %s", ctx.body)
	}

	mock.hub.Notify(context.Background(), admin.Notification{Message: "saved", Level: admin.LevelSuccess})
	mock.hub.Notify(context.Background(), admin.Notification{Message: "boom", Level: admin.LevelError, Blocking: true})

	ctx = newMockContext()
	ctx.query["pending"] = "true"
	if err := mock.routes["GET:/admin/api/notifications"](ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	var inbox struct {
		Notifications []admin.Notification `json:"notifications"`
	}
	if err := json.Unmarshal(ctx.body, &inbox); err != nil {
		t.Fatalf("decode notifications: %v", err)
	}
	if len(inbox.Notifications) != 1 || inbox.Notifications[0].Message != "boom" {
		t.Fatalf("expected only the blocking alert, got %s", ctx.body)
	}
}

func TestFilterRouteRefetchesWithTab(t *testing.T) {
	mock, backend, _ := register(t)

	ctx := newMockContext()
	ctx.params["screen"] = admin.ScreenReports
	ctx.reqHeaders["Content-Type"] = "application/x-www-form-urlencoded"
	ctx.reqBody = []byte("type=set_tab&number=1")
	if err := mock.routes["POST:/admin/api/:screen/filter"](ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if ctx.status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", ctx.status, ctx.body)
	}
	reqs := backend.Requests()
	last := reqs[len(reqs)-1]
	if last.Path != "/api/reports" || last.Query["status"] != "pending" {
		t.Fatalf("expected pending reports fetch, got %#v", last)
	}
}

func TestDeleteRouteNeedsConfirmation(t *testing.T) {
	mock, backend, _ := register(t)
	backend.SetMarket(tuvibe.MarketItem{ID: "m1", Title: "Lamp"})

	ctx := newMockContext()
	ctx.params["id"] = "m1"
	if err := mock.routes["DELETE:/admin/api/market/:id"](ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if ctx.status != http.StatusConflict {
		t.Fatalf("expected 409, got %d", ctx.status)
	}
	if n := backend.Count(http.MethodDelete, "/api/market/m1"); n != 0 {
		t.Fatalf("expected no delete request, got %d", n)
	}

	ctx = newMockContext()
	ctx.params["id"] = "m1"
	ctx.query["confirm"] = "true"
	if err := mock.routes["POST:/admin/api/market/:id/delete"](ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if ctx.status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", ctx.status, ctx.body)
	}
	if n := backend.Count(http.MethodDelete, "/api/market/m1"); n != 1 {
		t.Fatalf("expected one delete request, got %d", n)
	}
}

func TestRejectRouteValidatesReason(t *testing.T) {
	mock, backend, _ := register(t)
	backend.SetStories(tuvibe.Story{ID: "s1", Status: "pending"})

	ctx := newMockContext()
	ctx.params["id"] = "s1"
	ctx.reqHeaders["Content-Type"] = "application/x-www-form-urlencoded"
	ctx.reqBody = []byte("reason=&notes=x")
	if err := mock.routes["POST:/admin/api/stories/:id/reject"](ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if ctx.status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", ctx.status)
	}
	if n := backend.Count(http.MethodPost, "/api/stories/admin/s1/reject"); n != 0 {
		t.Fatalf("expected no reject request, got %d", n)
	}
}

func TestWebSocketStreamsNotifications(t *testing.T) {
	mock, _, _ := register(t)
	hub := mock.hub
	_ = hub.Notify(context.Background(), admin.Notification{Message: "pending", Blocking: true})

	ws := newMockWebSocket()
	done := make(chan error, 1)
	go func() { done <- mock.ws["/admin/ws"](ws) }()

	waitFor(t, func() bool { return len(ws.messages()) == 1 })
	_ = hub.Notify(context.Background(), admin.Notification{Message: "live"})
	waitFor(t, func() bool { return len(ws.messages()) == 2 })

	ws.cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("websocket handler did not return")
	}
	got := ws.messages()
	if got[0].Message != "pending" || got[1].Message != "live" {
		t.Fatalf("unexpected messages %#v", got)
	}
}

// --- Test helpers ---

func register(t *testing.T) (*mockRouter, *tuvibetest.Backend, *stubRenderer) {
	t.Helper()
	backend := tuvibetest.NewBackend()
	srv := tuvibetest.NewServer(backend)
	t.Cleanup(srv.Close)
	client, err := tuvibe.NewClient(tuvibe.Config{BaseURL: srv.URL, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	renderer := &stubRenderer{}
	hub := admin.NewNotificationHub()
	console := admin.NewConsole(admin.ConsoleOptions{
		Deps: admin.Deps{
			Session: tuvibe.Session{Token: tuvibetest.Token},
			Backend: client,
		},
		Renderer: renderer,
		Hub:      hub,
	})
	t.Cleanup(console.Close)

	mock := newMockRouter()
	mock.hub = hub
	if err := Register(Config[struct{}]{
		Router:  mock,
		Console: console,
		API:     httpapi.NewCommandExecutor(console, nil),
	}); err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	return mock, backend, renderer
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

type mockRouter struct {
	router.Router[struct{}]
	prefix string
	routes map[string]router.HandlerFunc
	ws     map[string]func(router.WebSocketContext) error
	hub    *admin.NotificationHub
}

func newMockRouter() *mockRouter {
	return &mockRouter{
		routes: map[string]router.HandlerFunc{},
		ws:     map[string]func(router.WebSocketContext) error{},
	}
}

func (m *mockRouter) Group(prefix string) router.Router[struct{}] {
	return &mockRouter{
		prefix: m.prefix + prefix,
		routes: m.routes,
		ws:     m.ws,
	}
}

func (m *mockRouter) record(method, path string, handler router.HandlerFunc) {
	m.routes[method+":"+m.prefix+path] = handler
}

func (m *mockRouter) Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(router.GET), path, handler)
	return mockRouteInfo{}
}

func (m *mockRouter) Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(router.POST), path, handler)
	return mockRouteInfo{}
}

func (m *mockRouter) Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(router.DELETE), path, handler)
	return mockRouteInfo{}
}

func (m *mockRouter) WebSocket(path string, cfg router.WebSocketConfig, handler func(router.WebSocketContext) error) router.RouteInfo {
	m.ws[m.prefix+path] = handler
	return mockRouteInfo{}
}

type mockRouteInfo struct {
	router.RouteInfo
}

func (mockRouteInfo) SetName(string) router.RouteInfo { return mockRouteInfo{} }

type baseContext = router.Context

type mockContext struct {
	baseContext
	ctx        context.Context
	headers    map[string]string
	reqHeaders map[string]string
	reqBody    []byte
	body       []byte
	locals     map[any]any
	params     map[string]string
	query      map[string]string
	status     int
}

func newMockContext() *mockContext {
	return &mockContext{
		ctx:        context.Background(),
		headers:    map[string]string{},
		reqHeaders: map[string]string{},
		locals:     map[any]any{},
		params:     map[string]string{},
		query:      map[string]string{},
	}
}

func (m *mockContext) Context() context.Context {
	return m.ctx
}

func (m *mockContext) SetHeader(k, v string) router.Context {
	m.headers[k] = v
	return m
}

func (m *mockContext) Header(k string) string {
	return m.reqHeaders[k]
}

func (m *mockContext) Send(b []byte) error {
	m.body = append([]byte{}, b...)
	return nil
}

func (m *mockContext) JSON(code int, v any) error {
	m.status = code
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.body = data
	return nil
}

func (m *mockContext) Body() []byte { return m.reqBody }

func (m *mockContext) Param(name string, defaultValue ...string) string {
	if v, ok := m.params[name]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *mockContext) Query(name string, defaultValue ...string) string {
	if v, ok := m.query[name]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *mockContext) Locals(key any, value ...any) any {
	if len(value) == 0 {
		return m.locals[key]
	}
	m.locals[key] = value[0]
	return value[0]
}

type mockWebSocket struct {
	router.WebSocketContext
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	sent   []admin.Notification
}

func newMockWebSocket() *mockWebSocket {
	ctx, cancel := context.WithCancel(context.Background())
	return &mockWebSocket{ctx: ctx, cancel: cancel}
}

func (m *mockWebSocket) Context() context.Context { return m.ctx }

func (m *mockWebSocket) Close() error { return nil }

func (m *mockWebSocket) WriteJSON(v any) error {
	n, _ := v.(admin.Notification)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, n)
	return nil
}

func (m *mockWebSocket) messages() []admin.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]admin.Notification(nil), m.sent...)
}

type stubRenderer struct {
	calls int
}

func (s *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	s.calls++
	if len(out) > 0 && out[0] != nil {
		_, _ = out[0].Write([]byte("<html>" + name + "</html>"))
	}
	return "", nil
}
