package api

import (
	"context"
	"encoding/json"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/nerrad567/homecontrol-core/internal/device"
	"github.com/nerrad567/homecontrol-core/internal/infrastructure/config"
	"github.com/nerrad567/homecontrol-core/internal/infrastructure/logging"
	"github.com/nerrad567/homecontrol-core/internal/node"
)

// Event channels.
const (
	ChannelNodeEvent         = "node.event"
	ChannelPropertyPublished = "property.published"
	ChannelSetIgnored        = "set.ignored"
)

// knownChannels maps every channel a client may subscribe to.
var knownChannels = map[string]bool{
	ChannelNodeEvent:         true,
	ChannelPropertyPublished: true,
	ChannelSetIgnored:        true,
}

// defaultChannels are subscribed on connect.
var defaultChannels = []string{ChannelNodeEvent, ChannelPropertyPublished}

// Hub fans runtime traffic out to WebSocket clients.
//
// Hub implements device.Observer. Broadcasting never blocks: a client whose
// buffer is full misses the message.
type Hub struct {
	cfg     config.WebSocketConfig
	logger  *logging.Logger
	clients map[*WSClient]struct{}
	mu      sync.RWMutex
}

var _ device.Observer = (*Hub)(nil)

// NewHub creates a new WebSocket hub.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[*WSClient]struct{}),
	}
}

// Run blocks until the context is cancelled, then disconnects all clients.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	clients := slices.Collect(maps.Keys(h.clients))
	clear(h.clients)
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
		if c.conn != nil {
			c.conn.Close()
		}
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *WSClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "subject", client.subject, "clients", n)
}

// Unregister removes a client from the hub and closes its send channel.
// Calling it again for the same client does nothing.
func (h *Hub) Unregister(client *WSClient) {
	h.mu.Lock()
	_, ok := h.clients[client]
	delete(h.clients, client)
	n := len(h.clients)
	h.mu.Unlock()

	if ok {
		client.close()
		h.logger.Debug("websocket client disconnected", "subject", client.subject, "clients", n)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends an event to every client subscribed to channel.
// The message is encoded once; the hub lock is released before any client
// lock is taken.
func (h *Hub) Broadcast(channel string, payload any) {
	data, err := json.Marshal(WSMessage{
		Type:      WSTypeEvent,
		EventType: channel,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Payload:   payload,
	})
	if err != nil {
		h.logger.Error("encoding broadcast", "channel", channel, "error", err)
		return
	}

	h.mu.RLock()
	clients := slices.Collect(maps.Keys(h.clients))
	h.mu.RUnlock()

	for _, c := range clients {
		if c.isSubscribed(channel) {
			c.trySend(data)
		}
	}
}

// EventRouted relays a routed domain event on ChannelNodeEvent.
func (h *Hub) EventRouted(ev device.RoutedEvent) {
	h.Broadcast(ChannelNodeEvent, eventResponse{
		Node:     ev.Node.Node,
		Property: ev.Property,
		Payload:  ev.Payload,
		Type:     ev.Name(),
		Event:    ev.Event,
	})
}

// SetIgnored relays a set command no node accepted on ChannelSetIgnored.
func (h *Hub) SetIgnored(in node.IncomingPropertySet) {
	h.Broadcast(ChannelSetIgnored, map[string]string{
		"node":     in.Address.Node,
		"property": in.Address.Property,
		"payload":  in.Payload,
	})
}

// MessagePublished relays a published value or target on
// ChannelPropertyPublished.
func (h *Hub) MessagePublished(msg node.OutboundMessage) {
	h.Broadcast(ChannelPropertyPublished, map[string]any{
		"node":     msg.Address.Node,
		"property": msg.Address.Property,
		"payload":  msg.Payload,
		"target":   msg.Target,
		"retained": msg.Retained,
	})
}
