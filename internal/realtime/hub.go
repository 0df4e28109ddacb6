package realtime

import (
	"encoding/json"
	"sync"
)

// Client represents a single websocket client connection.
// The actual network conn is managed in the ws handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Event is pushed to every open connection of a workflow's owner after a
// committed change.
type Event struct {
	Type       string `json:"type"`
	WorkflowID string `json:"workflowId,omitempty"`
	TaskID     string `json:"taskId,omitempty"`
	ColumnID   string `json:"columnId,omitempty"`
	UserID     string `json:"userId"`
	Version    int    `json:"version"`
}

// Event types
const (
	WorkflowCreated  = "workflow_created"
	WorkflowUpdated  = "workflow_updated"
	WorkflowDeleted  = "workflow_deleted"
	TaskCreated      = "task_created"
	TaskUpdated      = "task_updated"
	TaskMoved        = "task_moved"
	TaskArchived     = "task_archived"
	TaskUnarchived   = "task_unarchived"
	TaskDeleted      = "task_deleted"
	TaskCommentAdded = "task_comment_added"
)

// Hub maintains active user connections and broadcasts events to them.
type Hub struct {
	mu              sync.RWMutex
	userIDToClients map[string]map[Client]struct{}
}

func NewHub() *Hub {
	return &Hub{userIDToClients: make(map[string]map[Client]struct{})}
}

// Register adds a client under a user ID.
func (h *Hub) Register(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.userIDToClients[userID]; !ok {
		h.userIDToClients[userID] = make(map[Client]struct{})
	}
	h.userIDToClients[userID][client] = struct{}{}
}

// Unregister removes a client; if user has no more clients, cleans up map.
func (h *Hub) Unregister(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.userIDToClients[userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.userIDToClients, userID)
		}
	}
}

// Broadcast sends a message to all clients of a user. Clients whose write
// fails are left for their handler to clean up.
func (h *Hub) Broadcast(userID string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.userIDToClients[userID] {
		_ = c.Send(message)
	}
}

// Publish encodes evt and broadcasts it to userID.
func (h *Hub) Publish(userID string, evt Event) {
	if evt.Version == 0 {
		evt.Version = 1
	}
	if evt.UserID == "" {
		evt.UserID = userID
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return
	}
	h.Broadcast(userID, payload)
}

// Connections returns the number of open clients for userID.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userIDToClients[userID])
}
