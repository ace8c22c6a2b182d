// Package realtime pushes session events to subscribed browsers over
// server-sent events. Delivery is best effort: a subscriber that cannot
// drain its buffer loses messages rather than stalling the writer, and the
// next full snapshot catches it up.
package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	channelBuffer = 16
	heartbeat     = 30 * time.Second
)

// Event is one message pushed to a session's subscribers.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Client is a single subscribed connection.
type Client struct {
	ch        chan string
	sessionID string
}

// Send queues an event for this client alone, dropping it if the client is
// not draining. Handlers use it to hand a fresh subscriber its snapshot.
func (c *Client) Send(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("type", ev.Type).Msg("encode event")
		return
	}
	select {
	case c.ch <- string(data):
	default:
	}
}

// Broadcaster manages subscribers grouped by session.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[*Client]struct{}),
	}
}

// Register adds a subscriber for a session and returns it.
func (b *Broadcaster) Register(sessionID string) *Client {
	c := &Client{
		ch:        make(chan string, channelBuffer),
		sessionID: sessionID,
	}
	b.mu.Lock()
	b.clients[c] = struct{}{}
	b.mu.Unlock()
	return c
}

// Unregister removes a subscriber and closes its channel. Unregistering
// twice is harmless.
func (b *Broadcaster) Unregister(c *Client) {
	b.mu.Lock()
	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		close(c.ch)
	}
	b.mu.Unlock()
}

// Publish sends an event to every subscriber of a session.
func (b *Broadcaster) Publish(sessionID string, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("type", ev.Type).Msg("encode event")
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for c := range b.clients {
		if c.sessionID == sessionID {
			select {
			case c.ch <- string(data):
			default:
				// Channel full, skip slow client.
			}
		}
	}
}

// ClientCount returns the number of subscribers for a session.
func (b *Broadcaster) ClientCount(sessionID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for c := range b.clients {
		if c.sessionID == sessionID {
			n++
		}
	}
	return n
}

// ServeSSE runs one subscriber connection until the client goes away.
// onConnect runs after registration, with the client ready to receive;
// onDisconnect runs after the client is gone.
func (b *Broadcaster) ServeSSE(w http.ResponseWriter, r *http.Request, sessionID string, onConnect func(c *Client), onDisconnect func()) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	c := b.Register(sessionID)
	defer func() {
		b.Unregister(c)
		if onDisconnect != nil {
			onDisconnect()
		}
	}()

	if onConnect != nil {
		onConnect(c)
	}

	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-c.ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}
