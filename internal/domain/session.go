package domain

// SessionTag records what kind of free-text input a user is expected to
// send next.
type SessionTag string

const (
	SessionAwaitingGameDetails  SessionTag = "awaiting_game_details"
	SessionTransactionCreated   SessionTag = "transaction_created"
	SessionBuyerJoined          SessionTag = "buyer_joined"
	SessionAwaitingPaymentProof SessionTag = "awaiting_payment_proof"
	SessionReportingIssue       SessionTag = "reporting_issue"
	SessionAwaitingBankInfo     SessionTag = "awaiting_bank_info"
)

func (t SessionTag) Valid() bool {
	switch t {
	case SessionAwaitingGameDetails, SessionTransactionCreated, SessionBuyerJoined,
		SessionAwaitingPaymentProof, SessionReportingIssue, SessionAwaitingBankInfo:
		return true
	}
	return false
}

type SessionData struct {
	TransactionID string `json:"transactionId,omitempty"`
}
