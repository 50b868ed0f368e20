package websocket

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"

	"tradepost/pkg/logger"
)

// Client represents a WebSocket connection client
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	mu     sync.Mutex
	closed bool
}

// trySend queues a payload without blocking. Returns false when the send
// buffer is full or the client has been closed.
func (c *Client) trySend(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- payload:
		return true
	default:
		return false
	}
}

// closeSend closes the send channel at most once. Senders hold the same
// mutex, so no payload can race onto a closed channel.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// InboundHandler processes a raw message received from a client. The handler
// is installed by the transport layer so the manager stays free of business
// logic.
type InboundHandler func(client *Client, payload []byte)

// Manager tracks all active WebSocket connections and the live membership of
// each negotiation room. Membership is process-scoped: it exists only for the
// lifetime of the connection.
type Manager struct {
	clients     map[string]*Client
	roomMembers map[string]map[string]*Client
	Register    chan *Client
	Unregister  chan *Client
	inbound     InboundHandler
	mutex       sync.RWMutex
}

// NewManager creates a new WebSocket connection manager
func NewManager() *Manager {
	return &Manager{
		clients:     make(map[string]*Client),
		roomMembers: make(map[string]map[string]*Client),
		Register:    make(chan *Client),
		Unregister:  make(chan *Client),
	}
}

// SetInboundHandler installs the handler for client messages. Must be called
// before Start.
func (m *Manager) SetInboundHandler(handler InboundHandler) {
	m.inbound = handler
}

// Start runs the manager's main loop in a goroutine
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				m.clients[client.UserID] = client
				m.mutex.Unlock()
				logger.Info("Client registered: %s", client.UserID)

			case client := <-m.Unregister:
				m.removeClient(client)
				logger.Info("Client unregistered: %s", client.UserID)

			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *Manager) removeClient(client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if current, ok := m.clients[client.UserID]; ok && current == client {
		delete(m.clients, client.UserID)
	}
	client.closeSend()
	for roomID, members := range m.roomMembers {
		if members[client.UserID] == client {
			delete(members, client.UserID)
			if len(members) == 0 {
				delete(m.roomMembers, roomID)
			}
		}
	}
}

// JoinRoom registers a connected user as a live member of a room.
func (m *Manager) JoinRoom(roomID, userID string) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	client, ok := m.clients[userID]
	if !ok {
		return false
	}
	if m.roomMembers[roomID] == nil {
		m.roomMembers[roomID] = make(map[string]*Client)
	}
	m.roomMembers[roomID][userID] = client
	return true
}

// LeaveRoom drops a user's live membership of a room.
func (m *Manager) LeaveRoom(roomID, userID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	members, ok := m.roomMembers[roomID]
	if !ok {
		return
	}
	delete(members, userID)
	if len(members) == 0 {
		delete(m.roomMembers, roomID)
	}
}

// IsMember reports whether a user is currently a live member of a room.
func (m *Manager) IsMember(roomID, userID string) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	_, ok := m.roomMembers[roomID][userID]
	return ok
}

// BroadcastToRoom delivers a payload to every live member of a room except
// excludeUserID. Slow clients are dropped rather than allowed to stall the
// room.
func (m *Manager) BroadcastToRoom(roomID string, payload []byte, excludeUserID string) {
	m.mutex.RLock()
	members := make([]*Client, 0, len(m.roomMembers[roomID]))
	for userID, client := range m.roomMembers[roomID] {
		if userID != excludeUserID {
			members = append(members, client)
		}
	}
	m.mutex.RUnlock()

	for _, client := range members {
		if !client.trySend(payload) {
			logger.Warn("Client %s send buffer full, dropping connection", client.UserID)
			m.removeClient(client)
		}
	}
}

// SendToUser sends a payload to a specific connected user.
func (m *Manager) SendToUser(userID string, payload []byte) {
	m.mutex.RLock()
	client, ok := m.clients[userID]
	m.mutex.RUnlock()

	if !ok {
		return
	}
	if !client.trySend(payload) {
		m.removeClient(client)
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Unregister <- c
		c.Conn.Close()
	}()

	for {
		_, payload, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("WebSocket read error for %s: %v", c.UserID, err)
			}
			break
		}

		if m.inbound != nil {
			m.inbound(c, payload)
		}
	}
}

// WritePump sends messages to the WebSocket connection
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		payload, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logger.Error("WebSocket write error for %s: %v", c.UserID, err)
			return
		}
	}
}
