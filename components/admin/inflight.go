package admin

import (
	"fmt"
	"sort"
	"sync"

	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

// ActionKind separates in-flight flags for the same record.
type ActionKind string

const (
	// KindAction covers approve, update and delete.
	KindAction ActionKind = "action"
	// KindReject is tracked apart from KindAction.
	KindReject ActionKind = "reject"
)

type inflightKey struct {
	id   tuvibe.ID
	kind ActionKind
}

// InFlight tracks per-record submissions so the same action is never sent
// twice concurrently.
type InFlight struct {
	mu     sync.Mutex
	active map[inflightKey]struct{}
}

// NewInFlight creates an empty tracker.
func NewInFlight() *InFlight {
	return &InFlight{active: make(map[inflightKey]struct{})}
}

// Acquire marks (id, kind) busy. The returned release must be called once.
func (f *InFlight) Acquire(id tuvibe.ID, kind ActionKind) (func(), error) {
	key := inflightKey{id: id, kind: kind}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.active[key]; busy {
		return nil, fmt.Errorf("%w: %s on %s", ErrActionInFlight, kind, id)
	}
	f.active[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.active, key)
			f.mu.Unlock()
		})
	}, nil
}

// Busy reports whether (id, kind) is in flight.
func (f *InFlight) Busy(id tuvibe.ID, kind ActionKind) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, busy := f.active[inflightKey{id: id, kind: kind}]
	return busy
}

// Snapshot lists busy keys as "id:kind", sorted.
func (f *InFlight) Snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.active))
	for key := range f.active {
		out = append(out, string(key.id)+":"+string(key.kind))
	}
	sort.Strings(out)
	return out
}
