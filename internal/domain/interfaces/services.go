package interfaces

import (
	"context"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
)

// Notifier delivers a message to one chat party.
type Notifier interface {
	Send(ctx context.Context, recipientID string, msg domain.OutboundMessage) error
}

// PaymentRenderer turns an amount and payee into a scannable payment
// reference.
type PaymentRenderer interface {
	Render(payeeID string, amount int64, reference string) (domain.PaymentReference, error)
}

// IDGenerator produces external-facing identifiers.
type IDGenerator interface {
	TransactionID() string
	CaseID() string
}

// EventPublisher pushes entity changes to live admin dashboards. Publishing
// never blocks the caller.
type EventPublisher interface {
	PublishTransaction(tx domain.Transaction)
	PublishReport(c domain.ReportCase)
}

// DisputeEscalator routes a buyer's refund request into the admin's case
// channel.
type DisputeEscalator interface {
	OpenDispute(ctx context.Context, userID, transactionID, text string) (domain.ReportCase, error)
}

// PayeeResolver returns the PromptPay id that receives buyer payments.
type PayeeResolver interface {
	EscrowPayee(ctx context.Context) string
}
