package realtime

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
)

const (
	outboundBuffer    = 32
	heartbeatInterval = 15 * time.Second
)

// Client is one open event stream. Outbound is closed by Hub.CloseClient.
type Client struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channels map[string]bool
	Outbound chan Event

	done      chan struct{}
	closeOnce sync.Once
}

// Hub routes events to the streams subscribed to their channel.
type Hub struct {
	log *logger.Logger

	mu       sync.RWMutex
	channels map[string]map[uuid.UUID]*Client
	draining bool
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:      log.With("component", "EventHub"),
		channels: map[string]map[uuid.UUID]*Client{},
	}
}

func (hub *Hub) NewClient(userID uuid.UUID) *Client {
	return &Client{
		ID:       uuid.New(),
		UserID:   userID,
		Channels: map[string]bool{},
		Outbound: make(chan Event, outboundBuffer),
		done:     make(chan struct{}),
	}
}

func (hub *Hub) AddChannel(client *Client, channel string) {
	if channel = strings.TrimSpace(channel); channel == "" {
		return
	}
	hub.mu.Lock()
	if hub.draining {
		hub.mu.Unlock()
		hub.CloseClient(client)
		return
	}
	members := hub.channels[channel]
	if members == nil {
		members = map[uuid.UUID]*Client{}
		hub.channels[channel] = members
	}
	members[client.ID] = client
	client.Channels[channel] = true
	hub.mu.Unlock()

	hub.log.Debug("Stream subscribed", "client_id", client.ID, "channel", channel)
}

// Broadcast never blocks; a client with a full buffer misses the event.
func (hub *Hub) Broadcast(ev Event) {
	if ev.Channel == "" {
		return
	}
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	for id, c := range hub.channels[ev.Channel] {
		select {
		case c.Outbound <- ev:
		default:
			hub.log.Warn("Stream buffer full, dropping event", "client_id", id, "type", ev.Type)
		}
	}
}

func (hub *Hub) Publish(_ context.Context, ev Event) error {
	hub.Broadcast(ev)
	return nil
}

func (hub *Hub) Subscribers(channel string) int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.channels[channel])
}

// CloseClient unsubscribes the client and closes its Outbound. Safe to call twice.
func (hub *Hub) CloseClient(client *Client) {
	client.closeOnce.Do(func() {
		close(client.done)

		hub.mu.Lock()
		for channel := range client.Channels {
			delete(hub.channels[channel], client.ID)
			if len(hub.channels[channel]) == 0 {
				delete(hub.channels, channel)
			}
		}
		client.Channels = map[string]bool{}
		// Closing under the write lock keeps Broadcast from sending on a closed channel.
		close(client.Outbound)
		hub.mu.Unlock()
	})
}

// CloseAll ends every open stream and refuses new subscriptions. It runs when
// the HTTP server starts shutting down so streaming handlers return.
func (hub *Hub) CloseAll() {
	hub.mu.Lock()
	hub.draining = true
	open := map[uuid.UUID]*Client{}
	for _, members := range hub.channels {
		for id, c := range members {
			open[id] = c
		}
	}
	hub.mu.Unlock()

	for _, c := range open {
		hub.CloseClient(c)
	}
	if len(open) > 0 {
		hub.log.Info("Closed open streams", "count", len(open))
	}
}

// ServeHTTP streams the client's events as text/event-stream until the request
// ends or the client is closed.
func (hub *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request, client *Client) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	send := func(frame string) {
		_, _ = io.WriteString(w, frame)
		flusher.Flush()
	}
	send(": connected\n\n")

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-client.done:
			return
		case <-heartbeat.C:
			send(": ping\n\n")
		case ev, open := <-client.Outbound:
			if !open {
				return
			}
			frame, err := eventFrame(ev)
			if err != nil {
				hub.log.Warn("Unencodable event skipped", "type", ev.Type, "error", err)
				continue
			}
			send(frame)
		}
	}
}

func eventFrame(ev Event) (string, error) {
	raw, err := json.Marshal(ev)
	if err != nil {
		return "", err
	}
	return "event: " + string(ev.Type) + "\ndata: " + string(raw) + "\n\n", nil
}
