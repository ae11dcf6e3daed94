package tuvibe_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/tuvibe/go-admin/pkg/tuvibe"
	"github.com/tuvibe/go-admin/pkg/tuvibe/tuvibetest"
)

var testSession = tuvibe.Session{Token: tuvibetest.Token}

func newTestClient(t *testing.T) (*tuvibe.Client, *tuvibetest.Backend) {
	t.Helper()
	backend := tuvibetest.NewBackend()
	server := tuvibetest.NewServer(backend)
	t.Cleanup(server.Close)
	client, err := tuvibe.NewClient(tuvibe.Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, backend
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := tuvibe.NewClient(tuvibe.Config{}); err == nil {
		t.Fatalf("expected error for missing base url")
	}
}

func TestListMarketItemsSendsQueryAndAuth(t *testing.T) {
	client, backend := newTestClient(t)
	backend.SetMarket(tuvibe.MarketItem{ID: "1", Title: "Item", Tag: "hot_deals", IsFeatured: true, Images: []string{"a.jpg", "b.jpg"}})

	page, err := client.ListMarketItems(context.Background(), testSession, tuvibe.MarketListQuery{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list market: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Title != "Item" {
		t.Fatalf("unexpected page: %#v", page)
	}
	reqs := backend.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected one request, got %d", len(reqs))
	}
	if reqs[0].Auth != "Bearer "+tuvibetest.Token {
		t.Fatalf("expected bearer auth, got %q", reqs[0].Auth)
	}
	if reqs[0].Query["page"] != "1" || reqs[0].Query["limit"] != "10" {
		t.Fatalf("unexpected query: %#v", reqs[0].Query)
	}
	if _, ok := reqs[0].Query["tag"]; ok {
		t.Fatalf("tag must be omitted when empty")
	}
}

func TestMissingCredentialFailsFast(t *testing.T) {
	client, backend := newTestClient(t)
	_, err := client.FetchDashboardStats(context.Background(), tuvibe.Session{})
	if !errors.Is(err, tuvibe.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
	if n := len(backend.Requests()); n != 0 {
		t.Fatalf("expected no requests, got %d", n)
	}
}

func TestEnvelopeFailureIsRejected(t *testing.T) {
	client, backend := newTestClient(t)
	backend.FailNext(http.MethodGet, "/api/stats/dashboard", tuvibetest.Failure{Envelope: true, Message: "x"})

	_, err := client.FetchDashboardStats(context.Background(), testSession)
	if !tuvibe.IsRejected(err) {
		t.Fatalf("expected rejected error, got %v", err)
	}
	if msg := tuvibe.Message(err); msg != "x" {
		t.Fatalf("expected server message, got %q", msg)
	}
}

func TestStatusFailureCarriesServerMessage(t *testing.T) {
	client, backend := newTestClient(t)
	backend.FailNext(http.MethodDelete, "/api/reports/7", tuvibetest.Failure{Status: http.StatusForbidden, Message: "forbidden"})

	_, err := client.DeleteReport(context.Background(), testSession, "7")
	var reqErr *tuvibe.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %v", err)
	}
	if reqErr.Status != http.StatusForbidden || reqErr.Message != "forbidden" {
		t.Fatalf("unexpected error: %#v", reqErr)
	}
}

func TestNetworkFailure(t *testing.T) {
	client, err := tuvibe.NewClient(tuvibe.Config{BaseURL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.ListMusic(context.Background(), testSession)
	if !tuvibe.IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestUpdateMarketItemMixesRetainedAndNewImages(t *testing.T) {
	client, backend := newTestClient(t)
	backend.SetMarket(tuvibe.MarketItem{ID: "5", Title: "Old", Images: []string{"a.jpg", "b.jpg"}})

	draft := tuvibe.DraftFromItem(backend.Market()[0])
	draft.Title = "New"
	draft.RetainedImages = []string{"b.jpg"}
	draft.NewImages = []tuvibe.Attachment{{Filename: "c.jpg", ContentType: "image/jpeg", Data: []byte("img")}}

	if _, err := client.UpdateMarketItem(context.Background(), testSession, "5", draft); err != nil {
		t.Fatalf("update: %v", err)
	}
	req := backend.Requests()[0]
	if req.Method != http.MethodPut || req.Path != "/api/market/5" {
		t.Fatalf("unexpected request %s %s", req.Method, req.Path)
	}
	if got := req.Form["images"]; len(got) != 1 || got[0] != `["b.jpg"]` {
		t.Fatalf("expected retained images json, got %#v", got)
	}
	if got := req.Files["market_images"]; len(got) != 1 || got[0] != "c.jpg" {
		t.Fatalf("expected new upload, got %#v", got)
	}
	item := backend.Market()[0]
	if item.Title != "New" || len(item.Images) != 2 || item.Images[0] != "b.jpg" {
		t.Fatalf("unexpected stored item: %#v", item)
	}
}

func TestRejectStoryRequiresReason(t *testing.T) {
	client, backend := newTestClient(t)
	_, err := client.RejectStory(context.Background(), testSession, "1", tuvibe.StoryRejection{Reason: "   "})
	if !tuvibe.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if n := len(backend.Requests()); n != 0 {
		t.Fatalf("expected zero requests, got %d", n)
	}
}

func TestListReportsUsesPaginationTotal(t *testing.T) {
	client, backend := newTestClient(t)
	backend.SetReports(
		tuvibe.Report{ID: "1", Status: "pending", Category: "spam", Priority: "low"},
		tuvibe.Report{ID: "2", Status: "pending", Category: "spam", Priority: "high"},
		tuvibe.Report{ID: "3", Status: "resolved", Category: "fraud", Priority: "high"},
	)
	page, err := client.ListReports(context.Background(), testSession, tuvibe.ReportListQuery{Page: 1, PageSize: 1, Status: "pending"})
	if err != nil {
		t.Fatalf("list reports: %v", err)
	}
	if len(page.Items) != 1 || page.Total != 2 {
		t.Fatalf("expected 1 item of 2, got %d of %d", len(page.Items), page.Total)
	}
	if !page.Paginated {
		t.Fatalf("expected page to carry the server pagination flag")
	}
}

func TestMalformedSuccessBodyIsRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html>maintenance</html>"))
	}))
	t.Cleanup(server.Close)
	client, err := tuvibe.NewClient(tuvibe.Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.ListMusic(context.Background(), testSession)
	if !tuvibe.IsRejected(err) {
		t.Fatalf("expected rejected error, got %v", err)
	}
	if msg := tuvibe.Message(err); msg != "Unexpected response from server" {
		t.Fatalf("expected generic message, got %q", msg)
	}
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected decode cause to be kept, got %v", err)
	}
}

func TestResolveAssetURL(t *testing.T) {
	cases := map[string]string{
		"":                       "",
		"a.jpg":                  "/uploads/a.jpg",
		"/static/a.jpg":          "/static/a.jpg",
		"https://cdn.test/a.jpg": "https://cdn.test/a.jpg",
		"data:image/png;base64,": "data:image/png;base64,",
	}
	for in, want := range cases {
		if got := tuvibe.ResolveAssetURL("/uploads/", in); got != want {
			t.Fatalf("ResolveAssetURL(%q) = %q, want %q", in, got, want)
		}
	}
	if got := tuvibe.AbsoluteURL("http://api.test/", "/uploads", "music/a.mp3"); got != "http://api.test/uploads/music/a.mp3" {
		t.Fatalf("unexpected absolute url %q", got)
	}
}

func TestFileSessionStore(t *testing.T) {
	store := tuvibe.FileSessionStore{Path: filepath.Join(t.TempDir(), "nested", "session.json")}
	sess, err := store.Load()
	if err != nil || sess.Valid() {
		t.Fatalf("expected empty session, got %#v, %v", sess, err)
	}
	if err := store.Save(tuvibe.Session{}); !errors.Is(err, tuvibe.ErrMissingCredential) {
		t.Fatalf("expected missing credential on empty save, got %v", err)
	}
	if err := store.Save(tuvibe.Session{Token: "abc", User: tuvibe.Profile{Email: "admin@tuvibe.test"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	sess, err = store.Load()
	if err != nil || sess.Token != "abc" || sess.User.Email != "admin@tuvibe.test" {
		t.Fatalf("unexpected session %#v, %v", sess, err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if sess, _ := store.Load(); sess.Valid() {
		t.Fatalf("expected cleared session")
	}
}
