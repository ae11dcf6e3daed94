package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	gocommand "github.com/goliatone/go-command"

	"github.com/tuvibe/go-admin/components/admin"
	"github.com/tuvibe/go-admin/components/admin/commands"
	"github.com/tuvibe/go-admin/components/admin/queries"
	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

// PageRenderer renders a full HTML page for a screen.
type PageRenderer func(ctx context.Context, code string, out io.Writer) error

// Handlers exposes the console over net/http, backed by shared commands.
type Handlers struct {
	API           Executor
	Views         gocommand.Querier[queries.ViewInput, queries.ViewOutput]
	Navigation    gocommand.Querier[queries.NavigationInput, []admin.ScreenInfo]
	Notifications gocommand.Querier[queries.NotificationsInput, []admin.Notification]
	Pages         PageRenderer
	Hub           *admin.NotificationHub
}

// Mount registers every console route under base on mux. Filter and retry
// routes are registered per screen code so they never overlap record routes.
func (h *Handlers) Mount(mux *http.ServeMux, base string, screens []string) {
	if base == "" {
		base = "/admin"
	}
	for _, code := range screens {
		mux.HandleFunc("POST "+base+"/api/"+code+"/filter", h.withScreen(code, h.HandleFilter))
		mux.HandleFunc("POST "+base+"/api/"+code+"/retry", h.withScreen(code, h.HandleRetry))
	}
	mux.HandleFunc("GET "+base+"/{screen}", func(w http.ResponseWriter, r *http.Request) {
		h.HandlePage(w, r, r.PathValue("screen"))
	})
	mux.HandleFunc("GET "+base+"/api/screens", h.HandleNavigation)
	mux.HandleFunc("GET "+base+"/api/notifications", h.HandleNotifications)
	mux.HandleFunc("GET "+base+"/api/{screen}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleView(w, r, r.PathValue("screen"))
	})
	for _, code := range []string{admin.ScreenMarket, admin.ScreenReports, admin.ScreenMusic} {
		del := h.withRecord(code, h.HandleDelete)
		mux.HandleFunc("DELETE "+base+"/api/"+code+"/{id}", del)
		mux.HandleFunc("POST "+base+"/api/"+code+"/{id}/delete", del)
	}
	mux.HandleFunc("POST "+base+"/api/market", func(w http.ResponseWriter, r *http.Request) {
		h.HandleSaveMarketItem(w, r, "")
	})
	mux.HandleFunc("POST "+base+"/api/market/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleSaveMarketItem(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST "+base+"/api/reports/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleUpdateReport(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST "+base+"/api/stories/{id}/approve", func(w http.ResponseWriter, r *http.Request) {
		h.HandleApproveStory(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST "+base+"/api/stories/{id}/reject", func(w http.ResponseWriter, r *http.Request) {
		h.HandleRejectStory(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST "+base+"/api/music", func(w http.ResponseWriter, r *http.Request) {
		h.HandleSaveMusic(w, r, "")
	})
	mux.HandleFunc("POST "+base+"/api/music/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleSaveMusic(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST "+base+"/api/music/{id}/play", func(w http.ResponseWriter, r *http.Request) {
		h.HandleTogglePlayback(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST "+base+"/api/notifications/{id}/dismiss", func(w http.ResponseWriter, r *http.Request) {
		h.HandleDismiss(w, r, r.PathValue("id"))
	})
	if h.Hub != nil {
		mux.HandleFunc("GET "+base+"/ws", h.Hub.ServeWebSocket)
		mux.HandleFunc("GET "+base+"/events", h.Hub.ServeSSE)
	}
}

func (h *Handlers) withScreen(code string, fn func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) { fn(w, r, code) }
}

func (h *Handlers) withRecord(code string, fn func(http.ResponseWriter, *http.Request, string, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) { fn(w, r, code, r.PathValue("id")) }
}

func (h *Handlers) HandlePage(w http.ResponseWriter, r *http.Request, screen string) {
	if h.Pages == nil {
		writeError(w, http.StatusNotFound, errors.New("httpapi: pages not configured"))
		return
	}
	var buf bytes.Buffer
	if err := h.Pages(r.Context(), screen, &buf); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (h *Handlers) HandleView(w http.ResponseWriter, r *http.Request, screen string) {
	if h.Views == nil {
		writeError(w, http.StatusNotFound, errors.New("httpapi: views not configured"))
		return
	}
	out, err := h.Views.Query(r.Context(), queries.ViewInput{Screen: screen})
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) HandleNavigation(w http.ResponseWriter, r *http.Request) {
	if h.Navigation == nil {
		writeError(w, http.StatusNotFound, errors.New("httpapi: navigation not configured"))
		return
	}
	screens, err := h.Navigation.Query(r.Context(), queries.NavigationInput{})
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"screens": screens})
}

func (h *Handlers) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	if h.Notifications == nil {
		writeError(w, http.StatusNotFound, errors.New("httpapi: notifications not configured"))
		return
	}
	input := NotificationsInput(r.URL.Query().Get("pending"), r.URL.Query().Get("limit"))
	items, err := h.Notifications.Query(r.Context(), input)
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": items})
}

func (h *Handlers) HandleFilter(w http.ResponseWriter, r *http.Request, screen string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	action, err := DecodeFilterAction(r.Header.Get("Content-Type"), body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h.respond(w, h.API.Filter(r.Context(), commands.FilterInput{Screen: screen, Action: action}), http.StatusOK, "applied")
}

func (h *Handlers) HandleRetry(w http.ResponseWriter, r *http.Request, screen string) {
	h.respond(w, h.API.Retry(r.Context(), commands.RetryInput{Screen: screen}), http.StatusOK, "reloaded")
}

func (h *Handlers) HandleSaveMarketItem(w http.ResponseWriter, r *http.Request, id string) {
	var payload commands.SaveMarketItemInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	payload.ID = tuvibe.ID(id)
	h.respond(w, h.API.SaveMarketItem(r.Context(), payload), savedStatus(id), "saved")
}

func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request, screen, id string) {
	input := commands.DeleteRecordInput{
		Screen:    screen,
		ID:        tuvibe.ID(id),
		Confirmed: Confirmed(r.URL.Query().Get("confirm")),
	}
	h.respond(w, h.API.DeleteRecord(r.Context(), input), http.StatusOK, "deleted")
}

func (h *Handlers) HandleUpdateReport(w http.ResponseWriter, r *http.Request, id string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	update, err := DecodeReportUpdate(r.Header.Get("Content-Type"), body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	input := commands.UpdateReportInput{ID: tuvibe.ID(id), Update: update}
	h.respond(w, h.API.UpdateReport(r.Context(), input), http.StatusOK, "updated")
}

func (h *Handlers) HandleApproveStory(w http.ResponseWriter, r *http.Request, id string) {
	h.respond(w, h.API.ApproveStory(r.Context(), commands.ApproveStoryInput{ID: tuvibe.ID(id)}), http.StatusOK, "approved")
}

func (h *Handlers) HandleRejectStory(w http.ResponseWriter, r *http.Request, id string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rejection, err := DecodeRejection(r.Header.Get("Content-Type"), body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	input := commands.RejectStoryInput{ID: tuvibe.ID(id), Rejection: rejection}
	h.respond(w, h.API.RejectStory(r.Context(), input), http.StatusOK, "rejected")
}

func (h *Handlers) HandleSaveMusic(w http.ResponseWriter, r *http.Request, id string) {
	var payload commands.SaveMusicInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	payload.ID = tuvibe.ID(id)
	h.respond(w, h.API.SaveMusic(r.Context(), payload), savedStatus(id), "saved")
}

func (h *Handlers) HandleTogglePlayback(w http.ResponseWriter, r *http.Request, id string) {
	h.respond(w, h.API.TogglePlayback(r.Context(), commands.TogglePlaybackInput{ID: tuvibe.ID(id)}), http.StatusOK, "toggled")
}

func (h *Handlers) HandleDismiss(w http.ResponseWriter, r *http.Request, id string) {
	h.respond(w, h.API.DismissNotification(r.Context(), commands.DismissNotificationInput{ID: id}), http.StatusOK, "dismissed")
}

func (h *Handlers) respond(w http.ResponseWriter, err error, status int, label string) {
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, status, map[string]string{"status": label})
}

func savedStatus(id string) int {
	if id == "" {
		return http.StatusCreated
	}
	return http.StatusOK
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorBody(err))
}
