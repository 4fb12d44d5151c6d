// Package testutil holds test doubles for the collaborator interfaces.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
)

type SentMessage struct {
	RecipientID string
	Message     domain.OutboundMessage
}

// Notifier records every message. Fail makes Send return an error for
// the given recipient.
type Notifier struct {
	mu   sync.Mutex
	sent []SentMessage
	fail map[string]error
}

func NewNotifier() *Notifier {
	return &Notifier{fail: make(map[string]error)}
}

func (n *Notifier) Send(_ context.Context, recipientID string, msg domain.OutboundMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sent = append(n.sent, SentMessage{RecipientID: recipientID, Message: msg})
	return n.fail[recipientID]
}

func (n *Notifier) Fail(recipientID string, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.fail[recipientID] = err
}

func (n *Notifier) Sent() []SentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]SentMessage(nil), n.sent...)
}

func (n *Notifier) To(recipientID string) []domain.OutboundMessage {
	var out []domain.OutboundMessage
	for _, m := range n.Sent() {
		if m.RecipientID == recipientID {
			out = append(out, m.Message)
		}
	}
	return out
}

// Last returns the newest message sent to recipientID.
func (n *Notifier) Last(recipientID string) (domain.OutboundMessage, bool) {
	msgs := n.To(recipientID)
	if len(msgs) == 0 {
		return domain.OutboundMessage{}, false
	}
	return msgs[len(msgs)-1], true
}

// HasPayload reports whether any message to recipientID carried a button
// with payload.
func (n *Notifier) HasPayload(recipientID, payload string) bool {
	for _, m := range n.To(recipientID) {
		for _, b := range m.Buttons {
			if b.Payload == payload {
				return true
			}
		}
	}
	return false
}

// Contains reports whether any message to recipientID contains substr.
func (n *Notifier) Contains(recipientID, substr string) bool {
	for _, m := range n.To(recipientID) {
		if strings.Contains(m.Text, substr) {
			return true
		}
	}
	return false
}

func (n *Notifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = nil
}

// IDs hands out predictable identifiers.
type IDs struct {
	mu      sync.Mutex
	txSeq   int
	caseSeq int
}

func (g *IDs) TransactionID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.txSeq++
	return fmt.Sprintf("TXTEST%010d", g.txSeq)
}

func (g *IDs) CaseID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.caseSeq++
	return fmt.Sprintf("CASE-TEST-%04d", g.caseSeq)
}

// Publisher records published events.
type Publisher struct {
	mu           sync.Mutex
	Transactions []domain.Transaction
	Reports      []domain.ReportCase
}

func (p *Publisher) PublishTransaction(tx domain.Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Transactions = append(p.Transactions, tx)
}

func (p *Publisher) PublishReport(c domain.ReportCase) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Reports = append(p.Reports, c)
}

func (p *Publisher) TransactionCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Transactions)
}

func (p *Publisher) ReportCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Reports)
}
