// Package relay delivers outbound chat messages after a state change has
// already been committed. Delivery failures are logged and dropped.
package relay

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
	"github.com/conmuninw/gameruleTh-Bot/internal/domain/interfaces"
)

const DefaultTimeout = 10 * time.Second

type Relay struct {
	notifier interfaces.Notifier
	timeout  time.Duration
	logger   zerolog.Logger
}

func New(notifier interfaces.Notifier, timeout time.Duration, logger zerolog.Logger) *Relay {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Relay{notifier: notifier, timeout: timeout, logger: logger}
}

// Send delivers msg to recipientID. It is detached from ctx cancellation
// and bounded by the relay timeout.
func (r *Relay) Send(ctx context.Context, recipientID string, msg domain.OutboundMessage) {
	if recipientID == "" {
		r.logger.Warn().Str("text", truncate(msg.Text)).Msg("Dropping message without recipient")
		return
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	if err := r.notifier.Send(sendCtx, recipientID, msg); err != nil {
		r.logger.Error().
			Err(err).
			Str("recipient_id", recipientID).
			Str("text", truncate(msg.Text)).
			Msg("Failed to deliver message")
	}
}

func (r *Relay) Text(ctx context.Context, recipientID, text string) {
	r.Send(ctx, recipientID, domain.TextMessage(text))
}

func truncate(text string) string {
	runes := []rune(text)
	if len(runes) > 60 {
		return string(runes[:60]) + "…"
	}
	return text
}

type nopPublisher struct{}

func (nopPublisher) PublishTransaction(domain.Transaction) {}
func (nopPublisher) PublishReport(domain.ReportCase)       {}

// Publisher returns p, or a publisher that discards events when p is nil.
func Publisher(p interfaces.EventPublisher) interfaces.EventPublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}
