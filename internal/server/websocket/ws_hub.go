package websocket

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
)

const (
	MessageTransaction = "transaction"
	MessageReport      = "report"
)

// WsHub fans transaction and report changes out to every connected admin
// dashboard. All client bookkeeping happens on the Run goroutine.
type WsHub struct {
	Clients    map[string]map[*WsClient]bool
	Broadcast  chan WsMessage
	Register   chan *WsClient
	Unregister chan *WsClient
	Logger     zerolog.Logger
}

type WsMessage struct {
	Type        string              `json:"type"`
	Transaction *domain.Transaction `json:"transaction,omitempty"`
	Report      *domain.ReportCase  `json:"report,omitempty"`
}

func NewWsHub(logger zerolog.Logger) *WsHub {
	return &WsHub{
		Clients:    make(map[string]map[*WsClient]bool),
		Broadcast:  make(chan WsMessage, 100),
		Register:   make(chan *WsClient, 100),
		Unregister: make(chan *WsClient, 100),
		Logger:     logger.With().Str("component", "ws_hub").Logger(),
	}
}

func (h *WsHub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			for adminID, clients := range h.Clients {
				for client := range clients {
					close(client.send)
				}
				delete(h.Clients, adminID)
			}
			h.Logger.Info().Msg("WebSocket hub stopped")
			return ctx.Err()

		case client := <-h.Register:
			if h.Clients[client.AdminID] == nil {
				h.Clients[client.AdminID] = make(map[*WsClient]bool)
			}
			h.Clients[client.AdminID][client] = true
			h.Logger.Info().
				Str("admin_id", client.AdminID).
				Int("connection_count", len(h.Clients[client.AdminID])).
				Msg("WebSocket client registered")

		case client := <-h.Unregister:
			h.remove(client)

		case message := <-h.Broadcast:
			h.deliver(message)
		}
	}
}

func (h *WsHub) remove(client *WsClient) {
	clients, ok := h.Clients[client.AdminID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.Clients, client.AdminID)
	}
	h.Logger.Info().
		Str("admin_id", client.AdminID).
		Int("connection_count", len(clients)).
		Msg("WebSocket client unregistered")
}

func (h *WsHub) deliver(message WsMessage) {
	for adminID, clients := range h.Clients {
		for client := range clients {
			select {
			case client.send <- message:
			default:
				// A dashboard that stops reading is dropped rather than
				// holding up the others.
				h.Logger.Warn().
					Str("admin_id", adminID).
					Str("type", message.Type).
					Msg("WebSocket client too slow, disconnecting")
				h.remove(client)
			}
		}
	}
}

func (h *WsHub) publish(message WsMessage) {
	select {
	case h.Broadcast <- message:
	default:
		h.Logger.Warn().Str("type", message.Type).Msg("Broadcast queue full, dropping update")
	}
}

func (h *WsHub) PublishTransaction(tx domain.Transaction) {
	h.Logger.Debug().
		Str("transaction_id", tx.TransactionID).
		Str("status", string(tx.Status)).
		Msg("Publishing transaction update")
	h.publish(WsMessage{Type: MessageTransaction, Transaction: &tx})
}

func (h *WsHub) PublishReport(c domain.ReportCase) {
	c = c.Clone()
	h.Logger.Debug().
		Str("case_id", c.CaseID).
		Str("status", string(c.Status)).
		Msg("Publishing report update")
	h.publish(WsMessage{Type: MessageReport, Report: &c})
}
