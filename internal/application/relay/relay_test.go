package relay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
)

type recordingNotifier struct {
	err      error
	sent     []string
	deadline bool
	live     bool
}

func (n *recordingNotifier) Send(ctx context.Context, recipientID string, msg domain.OutboundMessage) error {
	_, n.deadline = ctx.Deadline()
	n.live = ctx.Err() == nil
	n.sent = append(n.sent, recipientID+":"+msg.Text)
	return n.err
}

func TestSendDetachesFromCaller(t *testing.T) {
	notifier := &recordingNotifier{}
	r := New(notifier, time.Second, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Text(ctx, "u1", "hello")

	require.Equal(t, []string{"u1:hello"}, notifier.sent)
	assert.True(t, notifier.deadline)
	assert.True(t, notifier.live)
}

func TestSendSwallowsFailures(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("boom")}
	r := New(notifier, 0, zerolog.Nop())

	assert.NotPanics(t, func() { r.Text(context.Background(), "u1", "hello") })
	assert.Equal(t, DefaultTimeout, r.timeout)
}

func TestSendSkipsEmptyRecipient(t *testing.T) {
	notifier := &recordingNotifier{}
	New(notifier, time.Second, zerolog.Nop()).Text(context.Background(), "", "hello")
	assert.Empty(t, notifier.sent)
}

func TestPublisherNilIsNop(t *testing.T) {
	p := Publisher(nil)
	assert.NotPanics(t, func() {
		p.PublishTransaction(domain.Transaction{})
		p.PublishReport(domain.ReportCase{})
	})
}
