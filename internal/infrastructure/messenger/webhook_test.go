package messenger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
)

func TestParseWebhook(t *testing.T) {
	body := `{
	  "object": "page",
	  "entry": [{
	    "id": "page-1",
	    "time": 1714564800000,
	    "messaging": [
	      {"sender": {"id": "u1"}, "recipient": {"id": "page-1"}, "timestamp": 1714564800000,
	       "message": {"mid": "m1", "text": "สวัสดี"}},
	      {"sender": {"id": "u2"}, "recipient": {"id": "page-1"}, "timestamp": 1714564801000,
	       "postback": {"title": "ยืนยัน", "payload": "CONFIRM_RECEIPT_TX1"}},
	      {"sender": {"id": "u3"}, "recipient": {"id": "page-1"},
	       "message": {"mid": "m2", "attachments": [{"type": "image", "payload": {"url": "https://cdn.example/slip.jpg"}}]}},
	      {"sender": {"id": "page-1"}, "recipient": {"id": "u1"},
	       "message": {"mid": "m3", "text": "echo", "is_echo": true}},
	      {"sender": {"id": "u4"}, "recipient": {"id": "page-1"},
	       "message": {"mid": "m4", "text": "เมนู", "quick_reply": {"payload": "HOW_TO_USE"}}},
	      {"sender": {"id": "u5"}, "recipient": {"id": "page-1"}, "read": {"watermark": 1}}
	    ]
	  }]
	}`

	events, err := ParseWebhook([]byte(body))
	require.NoError(t, err)
	require.Len(t, events, 4)

	assert.Equal(t, "u1", events[0].SenderID)
	assert.Equal(t, "สวัสดี", events[0].Text)
	assert.Equal(t, time.UnixMilli(1714564800000).UTC(), events[0].Timestamp)

	assert.Equal(t, "CONFIRM_RECEIPT_TX1", events[1].Postback)
	assert.Empty(t, events[1].Text)

	assert.Equal(t, "u3", events[2].SenderID)
	assert.Equal(t, "https://cdn.example/slip.jpg", events[2].ImageURL())
	assert.Equal(t, domain.AttachmentImage, events[2].Attachments[0].Type)

	assert.Equal(t, "HOW_TO_USE", events[3].Postback)
}

func TestParseWebhookRejectsOtherObjects(t *testing.T) {
	_, err := ParseWebhook([]byte(`{"object": "event", "data": {}}`))
	assert.ErrorIs(t, err, ErrNotPageEvent)

	_, err = ParseWebhook([]byte(`{not json`))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotPageEvent)
}
