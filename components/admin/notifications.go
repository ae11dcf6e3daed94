package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// NotificationLevel classifies a notification.
type NotificationLevel string

const (
	LevelSuccess NotificationLevel = "success"
	LevelError   NotificationLevel = "error"
	LevelInfo    NotificationLevel = "info"
)

// Notification is a user-facing message emitted by a screen. Blocking
// notifications stay pending until dismissed.
type Notification struct {
	ID        string            `json:"id"`
	Screen    string            `json:"screen"`
	Action    string            `json:"action,omitempty"`
	RecordID  string            `json:"record_id,omitempty"`
	Level     NotificationLevel `json:"level"`
	Message   string            `json:"message"`
	Blocking  bool              `json:"blocking"`
	CreatedAt time.Time         `json:"created_at"`
}

// Notifier receives screen notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, Notification) error { return nil }

func normalizeNotifier(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

const (
	subscriberBuffer = 8
	historyLimit     = 50
)

// NotificationHub fans out notifications to in-process subscribers and keeps
// blocking ones until they are dismissed.
type NotificationHub struct {
	mu      sync.RWMutex
	subs    map[int]chan Notification
	next    int
	history []Notification
	pending map[string]Notification
	now     func() time.Time
}

// NewNotificationHub creates an empty hub.
func NewNotificationHub() *NotificationHub {
	return &NotificationHub{
		subs:    make(map[int]chan Notification),
		pending: make(map[string]Notification),
		now:     time.Now,
	}
}

// Notify stamps and broadcasts n. Slow subscribers miss events rather than block.
func (h *NotificationHub) Notify(ctx context.Context, n Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = h.now()
	}
	h.mu.Lock()
	h.history = append(h.history, n)
	if n.Blocking {
		h.pending[n.ID] = n
	}
	if over := len(h.history) - historyLimit; over > 0 {
		for _, old := range h.history[:over] {
			delete(h.pending, old.ID)
		}
		h.history = h.history[over:]
	}
	h.mu.Unlock()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- n:
		default:
		}
	}
	return nil
}

// Dismiss acknowledges a blocking notification.
func (h *NotificationHub) Dismiss(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.pending[id]; !ok {
		return false
	}
	delete(h.pending, id)
	return true
}

// Pending lists blocking notifications not yet dismissed, oldest first.
func (h *NotificationHub) Pending() []Notification {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Notification, 0, len(h.pending))
	for _, n := range h.history {
		if _, ok := h.pending[n.ID]; ok {
			out = append(out, n)
		}
	}
	return out
}

// Recent returns up to limit notifications, newest last.
func (h *NotificationHub) Recent(limit int) []Notification {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if limit <= 0 || limit > len(h.history) {
		limit = len(h.history)
	}
	out := make([]Notification, limit)
	copy(out, h.history[len(h.history)-limit:])
	return out
}

// Subscribe returns a channel of notifications and a cancel func.
func (h *NotificationHub) Subscribe() (<-chan Notification, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan Notification, subscriberBuffer)
	h.subs[id] = ch
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and streams notifications as JSON.
func (h *NotificationHub) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer conn.Close()

	events, cancel := h.Subscribe()
	defer cancel()

	for _, n := range h.Pending() {
		if err := conn.WriteJSON(n); err != nil {
			return
		}
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case n, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(n); err != nil {
				return
			}
		}
	}
}

// ServeSSE streams notifications as Server-Sent Events.
func (h *NotificationHub) ServeSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	events, cancel := h.Subscribe()
	defer cancel()

	encoder := json.NewEncoder(w)
	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case n, ok := <-events:
			if !ok {
				return
			}
			w.Write([]byte("event: " + string(n.Level) + "\ndata: "))
			if err := encoder.Encode(n); err != nil {
				return
			}
			w.Write([]byte("\n"))
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}
