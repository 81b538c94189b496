// internal/app/chat/hub.go
package chat

import "sync"

// Hub fans out "team changed" signals to the subscriptions of that team.
// Signals carry no payload; a listener that has not consumed the previous
// signal simply keeps it, so bursts collapse into one reload.
type Hub struct {
	mu    sync.RWMutex
	teams map[string]map[*listener]struct{}
}

type listener struct {
	wake chan struct{}
}

func NewHub() *Hub {
	return &Hub{teams: make(map[string]map[*listener]struct{})}
}

func (h *Hub) listen(teamID string) *listener {
	l := &listener{wake: make(chan struct{}, 1)}
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.teams[teamID]
	if !ok {
		set = make(map[*listener]struct{})
		h.teams[teamID] = set
	}
	set[l] = struct{}{}
	return l
}

func (h *Hub) unlisten(teamID string, l *listener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.teams[teamID]
	if !ok {
		return
	}
	delete(set, l)
	if len(set) == 0 {
		delete(h.teams, teamID)
	}
}

// Notify wakes every subscription of teamID. It never blocks.
func (h *Hub) Notify(teamID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for l := range h.teams[teamID] {
		select {
		case l.wake <- struct{}{}:
		default:
		}
	}
}

// Listeners returns the number of open subscriptions for teamID.
func (h *Hub) Listeners(teamID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.teams[teamID])
}
