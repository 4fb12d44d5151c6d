package escrow

import (
	"context"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
)

type Decision string

const (
	DecisionConfirm Decision = "confirm"
	DecisionReject  Decision = "reject"
)

func (d Decision) Valid() bool {
	return d == DecisionConfirm || d == DecisionReject
}

// IEscrowService drives a sale from listing to payout. Every mutating
// operation fails with a classified domain error and leaves the stored
// transaction untouched when a guard rejects it.
type IEscrowService interface {
	StartSellerFlow(ctx context.Context, sellerID string) error
	CreateTransaction(ctx context.Context, sellerID string, details domain.GameDetails) (domain.Transaction, error)
	JoinAsBuyer(ctx context.Context, buyerID, transactionID string) (domain.Transaction, error)
	RequestPayment(ctx context.Context, buyerID, transactionID string) (domain.PaymentReference, error)
	// SubmitPaymentProof falls back to the buyer's latest transaction
	// awaiting payment when transactionID is empty.
	SubmitPaymentProof(ctx context.Context, buyerID, transactionID, proofURL string) (domain.Transaction, error)
	AdminVerifyPayment(ctx context.Context, adminID, transactionID string, decision Decision) (domain.Transaction, error)
	ConfirmDelivery(ctx context.Context, sellerID, transactionID string) (domain.Transaction, error)
	ConfirmReceipt(ctx context.Context, buyerID, transactionID string) (domain.Transaction, error)
	ReportNonDelivery(ctx context.Context, buyerID, transactionID string) (domain.Transaction, error)
	RequestRefund(ctx context.Context, buyerID, transactionID string) (domain.Transaction, error)
	// SubmitSellerBankInfo falls back to the seller's latest transaction
	// awaiting payout when transactionID is empty.
	SubmitSellerBankInfo(ctx context.Context, sellerID, transactionID, raw string) (domain.Transaction, error)
	ReportPayoutProblem(ctx context.Context, adminID, transactionID string) (domain.Transaction, error)
	Cancel(ctx context.Context, adminID, transactionID string) (domain.Transaction, error)
	ConfirmSellerPayout(ctx context.Context, adminID, transactionID string) (domain.Transaction, error)

	GetTransaction(ctx context.Context, transactionID string) (domain.Transaction, error)
	ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int, error)
	Stats(ctx context.Context) (domain.TransactionStats, error)

	// StartRetentionSweep deletes expired transactions on every tick until
	// ctx is cancelled.
	StartRetentionSweep(ctx context.Context) error
}
