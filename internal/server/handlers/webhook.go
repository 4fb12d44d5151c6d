package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
	"github.com/conmuninw/gameruleTh-Bot/internal/infrastructure/messenger"
)

const maxWebhookBody = 1 << 20

// EventQueue accepts inbound events for asynchronous dispatch.
type EventQueue interface {
	Submit(ev domain.InboundEvent) bool
}

type WebhookHandler struct {
	queue  EventQueue
	logger zerolog.Logger
}

func NewWebhookHandler(queue EventQueue, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		queue:  queue,
		logger: logger.With().Str("handler", "webhook").Logger(),
	}
}

// HandleMessengerWebhook acknowledges a Messenger delivery as soon as its
// events are queued. Events the queue cannot take are logged and dropped,
// since a non-200 reply makes the platform redeliver the whole batch.
func (h *WebhookHandler) HandleMessengerWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read webhook body")
		c.Status(http.StatusBadRequest)
		return
	}

	events, err := messenger.ParseWebhook(body)
	if errors.Is(err, messenger.ErrNotPageEvent) {
		c.Status(http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Warn().Err(err).Msg("Malformed webhook body")
		c.Status(http.StatusBadRequest)
		return
	}

	for _, ev := range events {
		if !h.queue.Submit(ev) {
			h.logger.Error().
				Str("sender_id", ev.SenderID).
				Str("postback", ev.Postback).
				Msg("Dispatch queue full, dropping event")
		}
	}

	c.String(http.StatusOK, "EVENT_RECEIVED")
}
