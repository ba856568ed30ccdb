package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	sendBuffer   = 16
	writeTimeout = 5 * time.Second
)

type client struct {
	conn *websocket.Conn
	b    *Broadcaster
	send chan []byte
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.b.RemoveClient(c)
			// Drain until RemoveClient closes send.
			for range c.send {
			}
			return
		}
	}
}

// Broadcaster pushes a fresh snapshot to every websocket client on each
// interval. Clients that cannot keep up are disconnected.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[*client]bool
	source  Source
	log     *slog.Logger
}

// NewBroadcaster creates a broadcaster reading from source.
func NewBroadcaster(source Source, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Broadcaster{
		clients: make(map[*client]bool),
		source:  source,
		log:     logger,
	}
}

// AddClient registers conn and queues the current snapshot for it.
func (b *Broadcaster) AddClient(conn *websocket.Conn) *client {
	c := &client{
		conn: conn,
		b:    b,
		send: make(chan []byte, sendBuffer),
	}
	if data, err := b.encode(); err == nil {
		c.send <- data
	}

	b.mu.Lock()
	b.clients[c] = true
	b.mu.Unlock()

	go c.writePump()
	return c
}

// RemoveClient unregisters c and closes its send queue. It is safe to call
// more than once.
func (b *Broadcaster) RemoveClient(c *client) {
	b.mu.Lock()
	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		close(c.send)
	}
	b.mu.Unlock()
}

// ClientCount returns the number of connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Run broadcasts every interval until ctx is done, then disconnects all
// clients.
func (b *Broadcaster) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.closeAll()
			return
		case <-ticker.C:
			if b.ClientCount() > 0 {
				b.Broadcast()
			}
		}
	}
}

// Broadcast sends one fresh snapshot to every client.
func (b *Broadcaster) Broadcast() {
	data, err := b.encode()
	if err != nil {
		b.log.Error("broadcast marshal error", "err", err)
		return
	}

	// Sends happen under the read lock so RemoveClient cannot close a
	// queue mid-send.
	var slow []*client
	b.mu.RLock()
	for c := range b.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	b.mu.RUnlock()

	for _, c := range slow {
		b.log.Warn("ws client too slow, disconnecting", "remote", c.conn.RemoteAddr().String())
		b.RemoveClient(c)
	}
}

func (b *Broadcaster) encode() ([]byte, error) {
	s := b.source.Next()
	return json.Marshal(Message{Type: MsgTelemetry, Payload: &s})
}

func (b *Broadcaster) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.clients {
		delete(b.clients, c)
		close(c.send)
	}
}
