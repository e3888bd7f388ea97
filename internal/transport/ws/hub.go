package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans form session events out to the sockets subscribed to that session
type Hub struct {
	// session -> connections (one per open tab)
	conns map[string]map[*Connection]struct{}

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	disconnect chan string
	done       chan struct{}
	stopped    chan struct{}
	closeOnce  sync.Once

	logger *zap.Logger
}

// Connection represents a WebSocket subscriber
type Connection struct {
	SessionID string
	Send      chan []byte
}

// NewConnection creates a subscriber with a buffered send queue
func NewConnection(sessionID string) *Connection {
	return &Connection{
		SessionID: sessionID,
		Send:      make(chan []byte, 256),
	}
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	SessionID string
	Message   *Message
}

// NewHub creates a new WebSocket hub and starts its loop
func NewHub(logger *zap.Logger) *Hub {
	h := &Hub{
		conns:      make(map[string]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		disconnect: make(chan string),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
		logger:     logger,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	defer close(h.stopped)
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.SessionID] == nil {
				h.conns[conn.SessionID] = make(map[*Connection]struct{})
			}
			h.conns[conn.SessionID][conn] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug("subscriber connected", zap.String("session_id", conn.SessionID))

		case conn := <-h.unregister:
			h.mu.Lock()
			h.remove(conn)
			h.mu.Unlock()

		case id := <-h.disconnect:
			h.mu.Lock()
			for conn := range h.conns[id] {
				h.remove(conn)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Message)
			if err != nil {
				h.logger.Error("encode ws message", zap.Error(err))
				continue
			}
			h.mu.RLock()
			for conn := range h.conns[msg.SessionID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			for _, set := range h.conns {
				for conn := range set {
					h.remove(conn)
				}
			}
			h.mu.Unlock()
			return
		}
	}
}

// remove drops a connection and closes its queue; caller holds mu
func (h *Hub) remove(conn *Connection) {
	set, ok := h.conns[conn.SessionID]
	if !ok {
		return
	}
	if _, ok := set[conn]; !ok {
		return
	}
	delete(set, conn)
	close(conn.Send)
	if len(set) == 0 {
		delete(h.conns, conn.SessionID)
	}
	h.logger.Debug("subscriber disconnected", zap.String("session_id", conn.SessionID))
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Subscribers counts the connections watching a session
func (h *Hub) Subscribers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[sessionID])
}

// BroadcastToSession sends an event to every subscriber of a session (implements service.Broadcaster)
func (h *Hub) BroadcastToSession(sessionID string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("encode ws payload", zap.String("type", msgType), zap.Error(err))
		return
	}
	msg := &BroadcastMessage{
		SessionID: sessionID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// DisconnectSession closes every subscriber of a session (implements service.Broadcaster)
func (h *Hub) DisconnectSession(sessionID string) {
	select {
	case h.disconnect <- sessionID:
	case <-h.done:
	}
}

// Close stops the hub loop and closes all connections
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
	<-h.stopped
}
