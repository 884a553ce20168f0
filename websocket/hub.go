package websocket

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/markbreneman/GuysMusicApp/types"
)

// Hub fans events out to WebSocket clients by topic. The UI layer subscribes
// to "sync" for download counters, "player" for playback state, or "all".
type Hub interface {
	Run()
	Broadcast(event types.Event)
	BroadcastSync(msgType string, completed, total int, message string)
	BroadcastPlayer(status types.PlayerStatus)
	RegisterClient(client *Client)
	UnregisterClient(client *Client)
}

type hub struct {
	// Registered clients mapped by topic
	clients map[string]map[*Client]bool

	broadcast  chan types.Event
	register   chan *Client
	unregister chan *Client

	log zerolog.Logger
	mu  sync.RWMutex
}

// NewHub creates a new WebSocket hub.
func NewHub(log zerolog.Logger) Hub {
	return &hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan types.Event, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// Run starts the hub's main event loop.
func (h *hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.topic] == nil {
				h.clients[client.topic] = make(map[*Client]bool)
			}
			h.clients[client.topic][client] = true
			h.mu.Unlock()
			h.log.Debug().Str("topic", client.topic).Msg("websocket client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.topic]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.clients, client.topic)
					}
				}
			}
			h.mu.Unlock()
			h.log.Debug().Str("topic", client.topic).Msg("websocket client disconnected")

		case event := <-h.broadcast:
			h.mu.RLock()
			h.sendToTopic(event.Topic, event)
			h.sendToTopic(types.TopicAll, event)
			h.mu.RUnlock()
		}
	}
}

// sendToTopic delivers to every client of a topic, dropping clients whose
// send buffer is full. Caller holds at least the read lock.
func (h *hub) sendToTopic(topic string, event types.Event) {
	clients, ok := h.clients[topic]
	if !ok {
		return
	}
	for client := range clients {
		select {
		case client.send <- event:
		default:
			close(client.send)
			delete(clients, client)
		}
	}
	if len(clients) == 0 {
		delete(h.clients, topic)
	}
}

// Broadcast queues an event for delivery, dropping it if the hub is backed up.
func (h *hub) Broadcast(event types.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case h.broadcast <- event:
	default:
		h.log.Warn().Str("topic", event.Topic).Msg("websocket broadcast channel full, dropping event")
	}
}

// BroadcastSync pushes a download counter update to sync subscribers.
func (h *hub) BroadcastSync(msgType string, completed, total int, message string) {
	h.Broadcast(types.Event{
		Topic:     types.TopicSync,
		Type:      msgType,
		Completed: completed,
		Total:     total,
		Message:   message,
	})
}

// BroadcastPlayer pushes a playback state snapshot to player subscribers.
func (h *hub) BroadcastPlayer(status types.PlayerStatus) {
	h.Broadcast(types.Event{
		Topic:  types.TopicPlayer,
		Type:   "state",
		Player: &status,
	})
}

// RegisterClient registers a new client with the hub.
func (h *hub) RegisterClient(client *Client) {
	h.register <- client
}

// UnregisterClient unregisters a client from the hub.
func (h *hub) UnregisterClient(client *Client) {
	h.unregister <- client
}
