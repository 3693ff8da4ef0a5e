package realtime

import (
	"encoding/json"
	"sync"
)

// Event types pushed to connected workers
const (
	EventTaskAssigned     = "task_assigned"
	EventTaskUnassigned   = "task_unassigned"
	EventTaskCompleted    = "task_completed"
	EventProjectCompleted = "project_completed"
	EventTeamJoined       = "team_joined"
	EventTeamLeft         = "team_left"
)

// Event is the JSON payload sent over the websocket.
type Event struct {
	Type      string `json:"type"`
	ActorID   uint   `json:"actorId"`
	TaskID    uint   `json:"taskId,omitempty"`
	ProjectID uint   `json:"projectId,omitempty"`
	TeamID    uint   `json:"teamId,omitempty"`
	Version   int    `json:"version"`
}

// Client represents a single websocket client connection.
// The network conn itself is managed in the ws handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Hub maintains active worker connections and pushes events to them.
type Hub struct {
	mu       sync.RWMutex
	byWorker map[uint]map[Client]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{byWorker: make(map[uint]map[Client]struct{})}
}

// Register adds a client under a worker ID.
func (h *Hub) Register(workerID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.byWorker[workerID]; !ok {
		h.byWorker[workerID] = make(map[Client]struct{})
	}
	h.byWorker[workerID][client] = struct{}{}
}

// Unregister removes a client; a worker with no clients left is dropped.
func (h *Hub) Unregister(workerID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.byWorker[workerID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.byWorker, workerID)
		}
	}
}

// Connected counts the clients registered for a worker.
func (h *Hub) Connected(workerID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byWorker[workerID])
}

// Publish sends ev to every client of each recipient, once per worker.
// Failed writes are left for the ws handler to clean up.
func (h *Hub) Publish(ev Event, recipients ...uint) {
	if ev.Version == 0 {
		ev.Version = 1
	}
	msg, err := json.Marshal(ev)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	seen := make(map[uint]struct{}, len(recipients))
	for _, id := range recipients {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		for c := range h.byWorker[id] {
			_ = c.Send(msg)
		}
	}
}
