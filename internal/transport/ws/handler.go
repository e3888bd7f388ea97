package ws

import (
	"accioncsat/internal/model"
	"accioncsat/internal/service"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// SessionReader loads the current view of a form session
type SessionReader interface {
	Get(ctx context.Context, sessionID string) (*model.SessionView, error)
}

// Handler handles WebSocket connections
type Handler struct {
	hub      *Hub
	tokens   *service.TokenService
	sessions SessionReader
	logger   *zap.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, tokens *service.TokenService, sessions SessionReader, logger *zap.Logger) *Handler {
	return &Handler{
		hub:      hub,
		tokens:   tokens,
		sessions: sessions,
		logger:   logger,
	}
}

// FormWS handles GET /v1/ws/form?token=...
// The first message is the current session view; later ones are change events.
// Events published while the initial view is read may repeat its state.
func (h *Handler) FormWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.tokens.Validate(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	if _, err := h.sessions.Get(r.Context(), claims.SessionID); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	// Subscribe before reading the initial state so no event falls in between
	conn := NewConnection(claims.SessionID)
	h.hub.Register(conn)

	view, err := h.sessions.Get(r.Context(), claims.SessionID)
	if err == nil {
		var initial []byte
		if initial, err = encode(service.EventStateChanged, view); err == nil {
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			err = wsConn.WriteMessage(websocket.TextMessage, initial)
		}
	}
	if err != nil {
		h.logger.Warn("send initial form state", zap.String("session_id", claims.SessionID), zap.Error(err))
		h.hub.Unregister(conn)
		wsConn.Close()
		return
	}

	h.logger.Debug("form websocket opened", zap.String("session_id", claims.SessionID))

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func encode(msgType string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Message{Type: MessageType(msgType), Payload: data})
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket read", zap.String("session_id", conn.SessionID), zap.Error(err))
			}
			break
		}
		// The feed is one-way; form operations go through the REST API.
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
