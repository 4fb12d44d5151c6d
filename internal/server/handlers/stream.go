package handlers

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	gws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/conmuninw/gameruleTh-Bot/internal/server/middleware"
	"github.com/conmuninw/gameruleTh-Bot/internal/server/websocket"
	"github.com/conmuninw/gameruleTh-Bot/pkg/config"
)

type StreamHandler struct {
	hub        *websocket.WsHub
	upgrader   gws.Upgrader
	pingPeriod time.Duration
	logger     zerolog.Logger
}

func NewStreamHandler(hub *websocket.WsHub, cfg config.WebSocketConfig, logger zerolog.Logger) *StreamHandler {
	upgrader := gws.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
	}
	if cfg.CheckOrigin {
		upgrader.CheckOrigin = sameOrigin
	} else {
		upgrader.CheckOrigin = func(r *http.Request) bool { return true }
	}

	return &StreamHandler{
		hub:        hub,
		upgrader:   upgrader,
		pingPeriod: cfg.PingPeriod,
		logger:     logger.With().Str("handler", "stream").Logger(),
	}
}

// HandleStream upgrades an authenticated admin to the live feed. The
// connection stays registered until the dashboard disconnects.
func (h *StreamHandler) HandleStream(c *gin.Context) {
	adminID := c.GetString(middleware.AdminIDKey)
	if adminID == "" {
		respond(c, http.StatusUnauthorized, "admin not authenticated", nil)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Warn().Err(err).Str("admin_id", adminID).Msg("Failed to upgrade to WebSocket")
		return
	}

	client := websocket.NewClient(adminID, conn, h.pingPeriod, h.logger)
	h.hub.Register <- client

	go client.WritePump()
	client.ReadPump(h.hub)
}

func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}
