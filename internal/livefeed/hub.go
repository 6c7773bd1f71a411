// Package livefeed pushes registration count changes to websocket clients.
package livefeed

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mettlestate/tournament-site/internal/logic"
	"github.com/mettlestate/tournament-site/internal/models"
)

// MessageCount is the type tag of count updates.
const MessageCount = "count"

const sendBuffer = 16

// Source is the registration store as seen by the hub.
type Source interface {
	Read() int64
	Subscribe() (<-chan int64, func())
}

// Client represents a single WebSocket connection in the hub.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
}

// WritePump reads from the Send channel and writes to the WebSocket connection.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.Send:
			if !ok {
				return
			}
			if err := c.Conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}
}

// Hub fans registration counts out to connected clients.
type Hub struct {
	src            Source
	max            int64
	originPatterns []string
	logger         *zap.SugaredLogger

	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub(src Source, max int64, logger *zap.Logger, originPatterns []string) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		src:            src,
		max:            max,
		originPatterns: originPatterns,
		logger:         logger.Sugar(),
		clients:        make(map[string]*Client),
	}
}

// Run forwards every count change to all clients until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	updates, unsubscribe := h.src.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case count := <-updates:
			h.Broadcast(h.message(count))
		}
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
}

// Unregister removes a client and closes its Send channel.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		close(c.Send)
		delete(h.clients, id)
	}
}

// Broadcast sends a message to every client. Non-blocking: a client whose
// buffer is full misses the update and catches up on the next one.
func (h *Hub) Broadcast(msg models.LiveMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Errorw("Failed to marshal live message", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		select {
		case c.Send <- data:
		default:
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and streams count updates, starting with
// the current count. Client messages are ignored.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.logger.Warnw("Websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(r.Context())

	client := &Client{
		ID:   uuid.NewString(),
		Conn: conn,
		Send: make(chan []byte, sendBuffer),
	}

	if err := h.registerWithSnapshot(client); err != nil {
		h.logger.Errorw("Failed to marshal live snapshot", "client", client.ID, "error", err)
		return
	}
	h.logger.Debugw("Live client connected", "client", client.ID, "clients", h.ClientCount())

	client.WritePump(ctx)

	h.Unregister(client.ID)
	h.logger.Debugw("Live client disconnected", "client", client.ID)
	conn.Close(websocket.StatusNormalClosure, "")
}

// registerWithSnapshot queues the current count and adds c in one critical
// section. Broadcast holds the read lock, so every update it delivers to c
// is queued behind the snapshot and was read no earlier than it.
func (h *Hub) registerWithSnapshot(c *Client) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	snapshot, err := json.Marshal(h.message(h.src.Read()))
	if err != nil {
		return err
	}
	c.Send <- snapshot
	h.clients[c.ID] = c
	return nil
}

func (h *Hub) message(count int64) models.LiveMessage {
	return models.LiveMessage{
		Type:              MessageCount,
		RegistrationStats: logic.ComputeStats(count, h.max),
	}
}
