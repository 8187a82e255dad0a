package websocket

import (
	"encoding/json"
	"sync"

	"tasktracker/internal/models"
	"tasktracker/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// Conn is the part of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client merepresentasikan klien WebSocket milik satu user.
type Client struct {
	Conn   Conn
	UserID string
	Role   models.Role
	Mu     sync.Mutex
}

// wants reports whether the event concerns this client.
func (c *Client) wants(event models.TaskEvent) bool {
	if c.Role == models.RoleAdmin {
		return true
	}
	for _, id := range event.Audience {
		if id == c.UserID {
			return true
		}
	}
	return false
}

// Hub mengelola koneksi WebSocket dan meneruskan event task ke klien.
type Hub struct {
	clients    map[*Client]bool
	Broadcast  chan models.TaskEvent
	Register   chan *Client
	Unregister chan *Client
	count      chan chan int
	done       chan struct{}
	stopOnce   sync.Once
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Broadcast:  make(chan models.TaskEvent, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		count:      make(chan chan int),
		done:       make(chan struct{}),
	}
}

// Run owns the client set until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
		case client := <-h.Unregister:
			h.remove(client)
		case event := <-h.Broadcast:
			h.deliver(event)
		case reply := <-h.count:
			reply <- len(h.clients)
		case <-h.done:
			for client := range h.clients {
				h.remove(client)
			}
			return
		}
	}
}

func (h *Hub) deliver(event models.TaskEvent) {
	message, err := json.Marshal(event)
	if err != nil {
		logger.ErrorLogger.Error("Error encoding task event", zap.Error(err))
		return
	}
	for client := range h.clients {
		if !client.wants(event) {
			continue
		}
		client.Mu.Lock()
		err := client.Conn.WriteMessage(websocket.TextMessage, message)
		client.Mu.Unlock()
		if err != nil {
			// tulis gagal: langsung lepas klien, jangan kirim ke channel sendiri
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.Conn.Close()
	}
}

// Notify queues an event for delivery. It never blocks once the hub stopped.
func (h *Hub) Notify(event models.TaskEvent) {
	select {
	case h.Broadcast <- event:
	case <-h.done:
	}
}

// Join and Leave are the blocking-safe counterparts of the Register and
// Unregister channels.
func (h *Hub) Join(client *Client) {
	select {
	case h.Register <- client:
	case <-h.done:
	}
}

func (h *Hub) Leave(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients, or 0 once stopped.
func (h *Hub) ClientCount() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

// Stop closes every connection and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}
