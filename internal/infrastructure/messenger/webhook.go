package messenger

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
)

// ErrNotPageEvent is returned for webhook bodies that are not Messenger page
// events.
var ErrNotPageEvent = errors.New("not a page event")

type webhookBody struct {
	Object string         `json:"object"`
	Entry  []webhookEntry `json:"entry"`
}

type webhookEntry struct {
	ID        string           `json:"id"`
	Time      int64            `json:"time"`
	Messaging []messagingEvent `json:"messaging"`
}

type messagingEvent struct {
	Sender    recipient        `json:"sender"`
	Recipient recipient        `json:"recipient"`
	Timestamp int64            `json:"timestamp"`
	Message   *inboundMessage  `json:"message,omitempty"`
	Postback  *inboundPostback `json:"postback,omitempty"`
}

type inboundMessage struct {
	MID         string              `json:"mid"`
	Text        string              `json:"text"`
	IsEcho      bool                `json:"is_echo"`
	QuickReply  *inboundPostback    `json:"quick_reply,omitempty"`
	Attachments []inboundAttachment `json:"attachments"`
}

type inboundAttachment struct {
	Type    string `json:"type"`
	Payload struct {
		URL string `json:"url"`
	} `json:"payload"`
}

type inboundPostback struct {
	Title   string `json:"title"`
	Payload string `json:"payload"`
}

// ParseWebhook turns a Messenger webhook body into normalized events. Echoes
// of the page's own messages, deliveries and reads produce no event.
func ParseWebhook(body []byte) ([]domain.InboundEvent, error) {
	var payload webhookBody
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode webhook body: %w", err)
	}
	if payload.Object != "page" {
		return nil, ErrNotPageEvent
	}

	var events []domain.InboundEvent
	for _, entry := range payload.Entry {
		for _, m := range entry.Messaging {
			ev, ok := normalize(m)
			if ok {
				events = append(events, ev)
			}
		}
	}
	return events, nil
}

func normalize(m messagingEvent) (domain.InboundEvent, bool) {
	ev := domain.InboundEvent{SenderID: m.Sender.ID}
	if m.Timestamp > 0 {
		ev.Timestamp = time.UnixMilli(m.Timestamp).UTC()
	}
	if ev.SenderID == "" {
		return ev, false
	}

	switch {
	case m.Postback != nil:
		ev.Postback = m.Postback.Payload
	case m.Message != nil && m.Message.IsEcho:
		return ev, false
	case m.Message != nil && m.Message.QuickReply != nil && m.Message.QuickReply.Payload != "":
		ev.Postback = m.Message.QuickReply.Payload
	case m.Message != nil:
		ev.Text = m.Message.Text
		for _, a := range m.Message.Attachments {
			ev.Attachments = append(ev.Attachments, domain.Attachment{
				Type: domain.AttachmentType(a.Type),
				URL:  a.Payload.URL,
			})
		}
		if ev.Text == "" && len(ev.Attachments) == 0 {
			return ev, false
		}
	default:
		return ev, false
	}
	return ev, true
}
