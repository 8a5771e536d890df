package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"guestbook-backend/internal/models"
)

// Channel is the redis channel carrying guestbook events between processes.
const Channel = "guestbook:events"

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// client serializes writes: gorilla connections allow one concurrent writer.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub keeps the set of connected viewers and fans every published event out to all of them.
// With redis clients, Publish goes through Channel and Run delivers what arrives there.
type Hub struct {
	mu          sync.RWMutex
	connections map[uuid.UUID]*client
	publisher   *redis.Client
	subscriber  *redis.Client
	ready       chan struct{}
	readyOnce   sync.Once
}

// NewHub relays through redis only when both clients are given; otherwise delivery is in-process.
func NewHub(publisher, subscriber *redis.Client) *Hub {
	h := &Hub{
		connections: make(map[uuid.UUID]*client),
		ready:       make(chan struct{}),
	}
	if publisher != nil && subscriber != nil {
		h.publisher, h.subscriber = publisher, subscriber
	} else {
		h.markReady()
	}
	return h
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	id := h.registerConnection(conn)

	// Viewers only listen; reading detects the disconnect.
	go func() {
		defer h.unregisterConnection(id)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

func (h *Hub) registerConnection(conn *websocket.Conn) uuid.UUID {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.New()
	h.connections[id] = &client{conn: conn}

	log.Printf("WebSocket connected: %s (total: %d)", id, len(h.connections))
	return id
}

func (h *Hub) unregisterConnection(id uuid.UUID) {
	h.mu.Lock()
	c, ok := h.connections[id]
	delete(h.connections, id)
	total := len(h.connections)
	h.mu.Unlock()

	if !ok {
		return
	}
	c.conn.Close()
	log.Printf("WebSocket disconnected: %s (total: %d)", id, total)
}

// Count reports how many viewers are connected.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// Publish sends an event to every connected viewer. Without redis the frames are
// written before Publish returns.
func (h *Hub) Publish(ctx context.Context, eventType string, payload interface{}) error {
	data, err := json.Marshal(models.WSMessage{Type: eventType, Payload: payload})
	if err != nil {
		return fmt.Errorf("encode %s event: %w", eventType, err)
	}

	if h.publisher != nil {
		if err := h.publisher.Publish(ctx, Channel, data).Err(); err != nil {
			return fmt.Errorf("publish %s event: %w", eventType, err)
		}
		return nil
	}

	h.broadcast(data)
	return nil
}

// Run relays events from the redis channel until ctx is done. Without redis it just waits.
func (h *Hub) Run(ctx context.Context) error {
	if h.subscriber == nil {
		<-ctx.Done()
		return nil
	}

	pubsub := h.subscriber.Subscribe(ctx, Channel)
	defer pubsub.Close()

	// Wait for the subscription confirmation so nothing published afterwards is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribe %s: %w", Channel, err)
	}
	h.markReady()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			h.broadcast([]byte(msg.Payload))
		}
	}
}

// Ready is closed once the hub can deliver published events.
func (h *Hub) Ready() <-chan struct{} {
	return h.ready
}

func (h *Hub) markReady() {
	h.readyOnce.Do(func() { close(h.ready) })
}

func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	targets := make(map[uuid.UUID]*client, len(h.connections))
	for id, c := range h.connections {
		targets[id] = c
	}
	h.mu.RUnlock()

	for id, c := range targets {
		if err := c.write(data); err != nil {
			log.Printf("WebSocket write to %s failed, dropping: %v", id, err)
			h.unregisterConnection(id)
		}
	}
}

// Close disconnects every viewer.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := h.connections
	h.connections = make(map[uuid.UUID]*client)
	h.mu.Unlock()

	for _, c := range conns {
		c.mu.Lock()
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.mu.Unlock()
		c.conn.Close()
	}
}
