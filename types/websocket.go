package types

import "time"

// WebSocket topics clients can subscribe to. TopicAll receives every event.
const (
	TopicSync   = "sync"
	TopicPlayer = "player"
	TopicAll    = "all"
)

// Event is a WebSocket message pushed to the UI layer. Sync events carry the
// download counters; player events carry a status snapshot.
type Event struct {
	Topic     string        `json:"topic"`
	Type      string        `json:"type"` // "progress", "complete", "error", "state"
	Completed int           `json:"completed,omitempty"`
	Total     int           `json:"total,omitempty"`
	Player    *PlayerStatus `json:"player,omitempty"`
	Message   string        `json:"message,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}
