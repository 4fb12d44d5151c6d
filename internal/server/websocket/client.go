package websocket

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 512
)

// WsClient is one admin dashboard connection. The hub closes send when the
// client is unregistered, which ends the write pump.
type WsClient struct {
	ID         string
	AdminID    string
	conn       *websocket.Conn
	send       chan WsMessage
	pingPeriod time.Duration
	logger     zerolog.Logger
}

func NewClient(adminID string, conn *websocket.Conn, pingPeriod time.Duration, logger zerolog.Logger) *WsClient {
	if pingPeriod <= 0 {
		pingPeriod = 54 * time.Second
	}
	id := uuid.NewString()
	return &WsClient{
		ID:         id,
		AdminID:    adminID,
		conn:       conn,
		send:       make(chan WsMessage, 256),
		pingPeriod: pingPeriod,
		logger:     logger.With().Str("client_id", id).Str("admin_id", adminID).Logger(),
	}
}

// ReadPump discards anything the dashboard sends and returns when the
// connection drops. Pongs extend the read deadline.
func (c *WsClient) ReadPump(hub *WsHub) {
	defer func() {
		hub.Unregister <- c
		c.conn.Close()
	}()

	pongWait := c.pingPeriod * 10 / 9
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error().Err(err).Msg("Unexpected WebSocket close error")
			}
			return
		}
	}
}

func (c *WsClient) WritePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error().Err(err).Str("type", message.Type).Msg("Failed to send WebSocket message")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
