// Package tuvibetest provides an in-memory TuVibe backend for tests and demos.
package tuvibetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

// Token is the bearer token accepted by default.
const Token = "test-token"

// Request records one call received by the fake backend.
type Request struct {
	Method string
	Path   string
	Query  map[string]string
	Auth   string
	Form   map[string][]string
	Files  map[string][]string
	Body   map[string]any
}

// Failure forces the next matching request to fail.
type Failure struct {
	Status  int
	Message string
	// Envelope returns HTTP 200 with {success:false} instead of a status error.
	Envelope bool
}

// Backend is a thread-safe fake implementing the admin REST contract.
type Backend struct {
	mu       sync.Mutex
	token    string
	stats    tuvibe.DashboardStats
	market   []tuvibe.MarketItem
	reports  []tuvibe.Report
	stories  []tuvibe.Story
	music    []tuvibe.MusicTrack
	nextID   int
	requests []Request
	failures map[string]Failure
	mux      *http.ServeMux
}

// NewBackend builds an empty backend accepting Token.
func NewBackend() *Backend {
	b := &Backend{
		token:    Token,
		nextID:   1000,
		failures: map[string]Failure{},
	}
	b.routes()
	return b
}

// NewServer starts an httptest server backed by b.
func NewServer(b *Backend) *httptest.Server {
	return httptest.NewServer(b)
}

// SetStats replaces the analytics payload.
func (b *Backend) SetStats(stats tuvibe.DashboardStats) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats = stats
}

// SetMarket replaces marketplace listings.
func (b *Backend) SetMarket(items ...tuvibe.MarketItem) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.market = slices.Clone(items)
}

// SetReports replaces reports.
func (b *Backend) SetReports(reports ...tuvibe.Report) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reports = slices.Clone(reports)
}

// SetStories replaces stories.
func (b *Backend) SetStories(stories ...tuvibe.Story) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stories = slices.Clone(stories)
}

// SetMusic replaces tracks.
func (b *Backend) SetMusic(tracks ...tuvibe.MusicTrack) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.music = slices.Clone(tracks)
}

// FailNext makes the next request to "METHOD /path" fail.
func (b *Backend) FailNext(method, path string, failure Failure) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = failure
}

// Requests returns a copy of every recorded request.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.requests)
}

// Count returns how many recorded requests match method and path.
func (b *Backend) Count(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, r := range b.requests {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Reset clears recorded requests.
func (b *Backend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = nil
}

// Market returns the current listings.
func (b *Backend) Market() []tuvibe.MarketItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.market)
}

// Reports returns the current reports.
func (b *Backend) Reports() []tuvibe.Report {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.reports)
}

// Stories returns the current stories.
func (b *Backend) Stories() []tuvibe.Story {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.stories)
}

// Music returns the current tracks.
func (b *Backend) Music() []tuvibe.MusicTrack {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.music)
}

func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  map[string]string{},
		Auth:   r.Header.Get("Authorization"),
	}
	for k := range r.URL.Query() {
		rec.Query[k] = r.URL.Query().Get(k)
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err == nil {
			rec.Form = map[string][]string(r.MultipartForm.Value)
			rec.Files = map[string][]string{}
			for field, headers := range r.MultipartForm.File {
				for _, h := range headers {
					rec.Files[field] = append(rec.Files[field], h.Filename)
				}
			}
		}
	} else if r.Body != nil && r.ContentLength != 0 {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		rec.Body = body
	}

	b.mu.Lock()
	b.requests = append(b.requests, rec)
	failure, failing := b.failures[r.Method+" "+r.URL.Path]
	if failing {
		delete(b.failures, r.Method+" "+r.URL.Path)
	}
	b.mu.Unlock()

	if rec.Auth != "Bearer "+b.token {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Unauthorized"})
		return
	}
	if failing {
		if failure.Envelope {
			writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": failure.Message})
			return
		}
		status := failure.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, map[string]any{"success": false, "message": failure.Message})
		return
	}
	b.mux.ServeHTTP(w, r.WithContext(withRequest(r.Context(), rec)))
}

func (b *Backend) routes() {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/stats/dashboard", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		stats := b.stats
		b.mu.Unlock()
		ok(w, stats, nil)
	})

	mux.HandleFunc("GET /api/market", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		items := filter(b.market, func(it tuvibe.MarketItem) bool {
			tag := r.URL.Query().Get("tag")
			return tag == "" || it.Tag == tag
		})
		b.mu.Unlock()
		page, size := paging(r, "limit")
		ok(w, window(items, page, size), nil)
	})
	mux.HandleFunc("POST /api/market", func(w http.ResponseWriter, r *http.Request) {
		rec := requestFrom(r.Context())
		b.mu.Lock()
		item := marketFromForm(b.newID(), rec, nil)
		b.market = append(b.market, item)
		b.mu.Unlock()
		message(w, "Item created successfully")
	})
	mux.HandleFunc("PUT /api/market/{id}", func(w http.ResponseWriter, r *http.Request) {
		rec := requestFrom(r.Context())
		b.mu.Lock()
		defer b.mu.Unlock()
		idx := slices.IndexFunc(b.market, func(it tuvibe.MarketItem) bool { return string(it.ID) == r.PathValue("id") })
		if idx < 0 {
			notFound(w)
			return
		}
		b.market[idx] = marketFromForm(b.market[idx].ID, rec, &b.market[idx])
		message(w, "Item updated successfully")
	})
	mux.HandleFunc("DELETE /api/market/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if !remove(&b.market, func(it tuvibe.MarketItem) bool { return string(it.ID) == r.PathValue("id") }) {
			notFound(w)
			return
		}
		message(w, "Item deleted successfully")
	})

	mux.HandleFunc("GET /api/reports", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		b.mu.Lock()
		reports := filter(b.reports, func(rep tuvibe.Report) bool {
			return matches(q.Get("status"), rep.Status) &&
				matches(q.Get("category"), rep.Category) &&
				matches(q.Get("priority"), rep.Priority) &&
				(q.Get("q") == "" || strings.Contains(strings.ToLower(rep.Reason+" "+rep.Description+" "+rep.ReporterName), strings.ToLower(q.Get("q"))))
		})
		b.mu.Unlock()
		page, size := paging(r, "pageSize")
		ok(w, window(reports, page, size), &tuvibe.Pagination{Total: len(reports), Page: page, PageSize: size})
	})
	mux.HandleFunc("PUT /api/reports/{id}", func(w http.ResponseWriter, r *http.Request) {
		rec := requestFrom(r.Context())
		b.mu.Lock()
		defer b.mu.Unlock()
		idx := slices.IndexFunc(b.reports, func(rep tuvibe.Report) bool { return string(rep.ID) == r.PathValue("id") })
		if idx < 0 {
			notFound(w)
			return
		}
		b.reports[idx].Status = str(rec.Body["status"])
		b.reports[idx].Priority = str(rec.Body["priority"])
		b.reports[idx].AdminNotes = str(rec.Body["admin_notes"])
		message(w, "Report updated successfully")
	})
	mux.HandleFunc("DELETE /api/reports/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if !remove(&b.reports, func(rep tuvibe.Report) bool { return string(rep.ID) == r.PathValue("id") }) {
			notFound(w)
			return
		}
		message(w, "Report deleted successfully")
	})

	mux.HandleFunc("GET /api/stories/admin/moderation", func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		b.mu.Lock()
		stories := filter(b.stories, func(s tuvibe.Story) bool { return matches(status, s.Status) })
		b.mu.Unlock()
		page, size := paging(r, "pageSize")
		ok(w, window(stories, page, size), &tuvibe.Pagination{Total: len(stories), Page: page, PageSize: size})
	})
	mux.HandleFunc("POST /api/stories/admin/{id}/approve", func(w http.ResponseWriter, r *http.Request) {
		b.setStoryStatus(w, r.PathValue("id"), "approved", "", "Story approved successfully")
	})
	mux.HandleFunc("POST /api/stories/admin/{id}/reject", func(w http.ResponseWriter, r *http.Request) {
		rec := requestFrom(r.Context())
		reason := str(rec.Body["reason"])
		if strings.TrimSpace(reason) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Rejection reason is required"})
			return
		}
		b.setStoryStatus(w, r.PathValue("id"), "rejected", reason, "Story rejected successfully")
	})

	mux.HandleFunc("GET /api/stories/music", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		tracks := slices.Clone(b.music)
		b.mu.Unlock()
		ok(w, tracks, nil)
	})
	mux.HandleFunc("POST /api/stories/music", func(w http.ResponseWriter, r *http.Request) {
		rec := requestFrom(r.Context())
		b.mu.Lock()
		b.music = append(b.music, musicFromForm(b.newID(), rec, nil))
		b.mu.Unlock()
		message(w, "Music created successfully")
	})
	mux.HandleFunc("PUT /api/stories/music/{id}", func(w http.ResponseWriter, r *http.Request) {
		rec := requestFrom(r.Context())
		b.mu.Lock()
		defer b.mu.Unlock()
		idx := slices.IndexFunc(b.music, func(t tuvibe.MusicTrack) bool { return string(t.ID) == r.PathValue("id") })
		if idx < 0 {
			notFound(w)
			return
		}
		b.music[idx] = musicFromForm(b.music[idx].ID, rec, &b.music[idx])
		message(w, "Music updated successfully")
	})
	mux.HandleFunc("DELETE /api/stories/music/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if !remove(&b.music, func(t tuvibe.MusicTrack) bool { return string(t.ID) == r.PathValue("id") }) {
			notFound(w)
			return
		}
		message(w, "Music deleted successfully")
	})
	b.mux = mux
}

func (b *Backend) setStoryStatus(w http.ResponseWriter, id, status, reason, msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := slices.IndexFunc(b.stories, func(s tuvibe.Story) bool { return string(s.ID) == id })
	if idx < 0 {
		notFound(w)
		return
	}
	b.stories[idx].Status = status
	b.stories[idx].RejectionReason = reason
	message(w, msg)
}

func (b *Backend) newID() tuvibe.ID {
	b.nextID++
	return tuvibe.ID(strconv.Itoa(b.nextID))
}

func marketFromForm(id tuvibe.ID, rec Request, prev *tuvibe.MarketItem) tuvibe.MarketItem {
	price, _ := strconv.ParseFloat(first(rec.Form["price"]), 64)
	item := tuvibe.MarketItem{
		ID:             id,
		Title:          first(rec.Form["title"]),
		Description:    first(rec.Form["description"]),
		Price:          price,
		WhatsAppNumber: first(rec.Form["whatsapp_number"]),
		IsFeatured:     first(rec.Form["is_featured"]) == "true",
		Tag:            first(rec.Form["tag"]),
	}
	if prev != nil {
		item.CreatedAt = prev.CreatedAt
		var retained []string
		_ = json.Unmarshal([]byte(first(rec.Form["images"])), &retained)
		item.Images = retained
	}
	for _, name := range rec.Files["market_images"] {
		item.Images = append(item.Images, "market/"+name)
	}
	return item
}

func musicFromForm(id tuvibe.ID, rec Request, prev *tuvibe.MusicTrack) tuvibe.MusicTrack {
	track := tuvibe.MusicTrack{
		ID:            id,
		Title:         first(rec.Form["title"]),
		Artist:        first(rec.Form["artist"]),
		AudioURL:      first(rec.Form["audio_url"]),
		CoverImageURL: first(rec.Form["cover_image_url"]),
		IsActive:      first(rec.Form["is_active"]) == "true",
	}
	track.Duration, _ = strconv.Atoi(first(rec.Form["duration"]))
	track.Order, _ = strconv.Atoi(first(rec.Form["order"]))
	if files := rec.Files["audio_file"]; len(files) > 0 {
		track.AudioURL = "music/" + files[0]
	} else if track.AudioURL == "" && prev != nil {
		track.AudioURL = prev.AudioURL
	}
	if files := rec.Files["cover_image"]; len(files) > 0 {
		track.CoverImageURL = "covers/" + files[0]
	} else if track.CoverImageURL == "" && prev != nil {
		track.CoverImageURL = prev.CoverImageURL
	}
	return track
}

func paging(r *http.Request, sizeKey string) (int, int) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(r.URL.Query().Get(sizeKey))
	if err != nil || size < 1 {
		size = 10
	}
	return page, size
}

func window[T any](items []T, page, size int) []T {
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := min(start+size, len(items))
	return slices.Clone(items[start:end])
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func remove[T any](items *[]T, match func(T) bool) bool {
	idx := slices.IndexFunc(*items, match)
	if idx < 0 {
		return false
	}
	*items = slices.Delete(*items, idx, idx+1)
	return true
}

func matches(want, got string) bool {
	return want == "" || want == got
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func str(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func ok(w http.ResponseWriter, data any, pagination *tuvibe.Pagination) {
	payload := map[string]any{"success": true, "data": data}
	if pagination != nil {
		payload["pagination"] = pagination
	}
	writeJSON(w, http.StatusOK, payload)
}

func message(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": msg})
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Not found"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
