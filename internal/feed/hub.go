// Package feed fans out per-owner change signals to live note queries.
package feed

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dtroode/postit-wall/internal/model"
)

var _ model.ChangeFeed = (*Hub)(nil)

// Hub delivers change signals to watchers of an owner.
// Signals coalesce: a watcher that has not consumed the previous signal receives no extra one.
type Hub struct {
	mu       sync.Mutex
	watchers map[uuid.UUID]map[*watcher]struct{}
}

type watcher struct {
	ch chan struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{watchers: make(map[uuid.UUID]map[*watcher]struct{})}
}

// Watch registers interest in changes of ownerID's notes.
func (h *Hub) Watch(ownerID uuid.UUID) (<-chan struct{}, func()) {
	w := &watcher{ch: make(chan struct{}, 1)}

	h.mu.Lock()
	set, ok := h.watchers[ownerID]
	if !ok {
		set = make(map[*watcher]struct{})
		h.watchers[ownerID] = set
	}
	set[w] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.watchers[ownerID], w)
			if len(h.watchers[ownerID]) == 0 {
				delete(h.watchers, ownerID)
			}
		})
	}

	return w.ch, stop
}

// Publish signals every watcher of ownerID.
func (h *Hub) Publish(ownerID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for w := range h.watchers[ownerID] {
		signal(w)
	}
}

// PublishAll signals every watcher. Used after the upstream feed reconnects and may have missed changes.
func (h *Hub) PublishAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.watchers {
		for w := range set {
			signal(w)
		}
	}
}

// Watchers returns the number of active watchers of ownerID.
func (h *Hub) Watchers(ownerID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers[ownerID])
}

func signal(w *watcher) {
	select {
	case w.ch <- struct{}{}:
	default:
	}
}
