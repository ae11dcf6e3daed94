package admin_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	core "github.com/tuvibe/go-admin/components/admin"
	"github.com/tuvibe/go-admin/pkg/admin"
	"github.com/tuvibe/go-admin/pkg/config"
	"github.com/tuvibe/go-admin/pkg/tuvibe"
	"github.com/tuvibe/go-admin/pkg/tuvibe/tuvibetest"
)

type stubStore struct {
	sess tuvibe.Session
	err  error
}

func (s *stubStore) Load() (tuvibe.Session, error)  { return s.sess, s.err }
func (s *stubStore) Save(sess tuvibe.Session) error { s.sess = sess; return nil }
func (s *stubStore) Clear() error                   { s.sess = tuvibe.Session{}; return nil }

var pageRenderer = core.RendererFunc(func(name string, data any, out ...io.Writer) (string, error) {
	html := "<html>" + name + "</html>"
	if len(out) > 0 && out[0] != nil {
		_, _ = io.WriteString(out[0], html)
	}
	return html, nil
})

func newAdmin(t *testing.T) (*admin.Admin, *tuvibetest.Backend) {
	t.Helper()
	backend := tuvibetest.NewBackend()
	srv := tuvibetest.NewServer(backend)
	t.Cleanup(srv.Close)

	settings := config.Default()
	settings.API.BaseURL = srv.URL
	a, err := admin.New(admin.Config{
		Settings: settings,
		Store:    &stubStore{sess: tuvibe.Session{Token: tuvibetest.Token}},
		Renderer: pageRenderer,
	})
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a, backend
}

func TestResolveSessionPrecedence(t *testing.T) {
	store := &stubStore{sess: tuvibe.Session{Token: "stored"}}
	settings := config.Default()

	sess, err := admin.ResolveSession(settings, store, tuvibe.Session{Token: "flag"})
	require.NoError(t, err)
	assert.Equal(t, "flag", sess.Token)

	settings.Session.Token = "env"
	sess, err = admin.ResolveSession(settings, store, tuvibe.Session{})
	require.NoError(t, err)
	assert.Equal(t, "env", sess.Token)

	settings.Session.Token = ""
	sess, err = admin.ResolveSession(settings, store, tuvibe.Session{})
	require.NoError(t, err)
	assert.Equal(t, "stored", sess.Token)

	_, err = admin.ResolveSession(settings, &stubStore{err: errors.New("corrupt")}, tuvibe.Session{})
	assert.Error(t, err)
}

func TestHandlerServesViews(t *testing.T) {
	a, backend := newAdmin(t)
	backend.SetStats(tuvibe.DashboardStats{Overview: tuvibe.Overview{TotalUsers: 42}})
	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)

	res, err := http.Get(srv.URL + "/admin/api/analytics")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var payload struct {
		Screen string `json:"screen"`
		View   struct {
			Cards []struct {
				Label string  `json:"label"`
				Value float64 `json:"value"`
			} `json:"cards"`
		} `json:"view"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	assert.Equal(t, "analytics", payload.Screen)
	require.NotEmpty(t, payload.View.Cards)
	assert.Equal(t, "Total Users", payload.View.Cards[0].Label)
	assert.Equal(t, float64(42), payload.View.Cards[0].Value)
}

func TestHandlerRendersPagesAndDeletes(t *testing.T) {
	a, backend := newAdmin(t)
	backend.SetMusic(tuvibe.MusicTrack{ID: "t1", Title: "Song", AudioURL: "song.mp3"})
	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)

	res, err := http.Get(srv.URL + "/admin/music")
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	assert.Equal(t, "<html>music.html</html>", string(body))

	res, err = http.Post(srv.URL+"/admin/api/music/t1/delete?confirm=true", "application/x-www-form-urlencoded", strings.NewReader(""))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, 1, backend.Count(http.MethodDelete, "/api/stories/music/t1"))
	assert.Empty(t, backend.Music())
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	settings := config.Default()
	settings.API.BaseURL = ""
	_, err := admin.New(admin.Config{Settings: settings, Renderer: pageRenderer})
	assert.Error(t, err)
}
