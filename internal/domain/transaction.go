package domain

import "time"

// EscrowFee is added to the item price and kept by the escrow service.
const EscrowFee int64 = 50

type TransactionStatus string

const (
	StatusWaitingBuyer          TransactionStatus = "waiting_buyer"
	StatusWaitingPayment        TransactionStatus = "waiting_payment"
	StatusPaymentVerification   TransactionStatus = "payment_verification"
	StatusPaid                  TransactionStatus = "paid"
	StatusDelivering            TransactionStatus = "delivering"
	StatusAwaitingSellerPayment TransactionStatus = "awaiting_seller_payment"
	StatusCompleted             TransactionStatus = "completed"
	StatusCancelled             TransactionStatus = "cancelled"
)

// TransactionStatuses lists every status in lifecycle order.
var TransactionStatuses = []TransactionStatus{
	StatusWaitingBuyer,
	StatusWaitingPayment,
	StatusPaymentVerification,
	StatusPaid,
	StatusDelivering,
	StatusAwaitingSellerPayment,
	StatusCompleted,
	StatusCancelled,
}

func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusWaitingBuyer, StatusWaitingPayment, StatusPaymentVerification, StatusPaid,
		StatusDelivering, StatusAwaitingSellerPayment, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further operation may mutate a transaction
// in this status.
func (s TransactionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Cancellable reports whether an admin may still cancel from this status.
func (s TransactionStatus) Cancellable() bool {
	switch s {
	case StatusWaitingBuyer, StatusWaitingPayment, StatusPaymentVerification, StatusPaid, StatusDelivering:
		return true
	}
	return false
}

// PaymentSettled reports whether the buyer's payment has been confirmed,
// i.e. the transaction is at or beyond paid on the forward path.
func (s TransactionStatus) PaymentSettled() bool {
	switch s {
	case StatusPaid, StatusDelivering, StatusAwaitingSellerPayment, StatusCompleted:
		return true
	}
	return false
}

type GameDetails struct {
	Game        string `json:"game" validate:"required,max=100"`
	Level       string `json:"level" validate:"max=100"`
	Price       int64  `json:"price" validate:"gt=0"`
	Description string `json:"description,omitempty" validate:"max=500"`
}

type BankInfo struct {
	BankName        string `json:"bankName" validate:"required,max=100"`
	AccountNumber   string `json:"accountNumber" validate:"required,max=50"`
	AccountName     string `json:"accountName" validate:"required,max=100"`
	PromptPayNumber string `json:"promptPayNumber,omitempty"`
}

type PaymentProof struct {
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type PaymentVerification struct {
	Verified   bool       `json:"verified"`
	VerifiedBy string     `json:"verifiedBy,omitempty"`
	VerifiedAt *time.Time `json:"verifiedAt,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

type Transaction struct {
	TransactionID       string               `json:"transactionId"`
	SellerID            string               `json:"sellerId"`
	BuyerID             string               `json:"buyerId,omitempty"`
	GameDetails         GameDetails          `json:"gameDetails"`
	SellerBankInfo      *BankInfo            `json:"sellerBankInfo,omitempty"`
	Status              TransactionStatus    `json:"status"`
	PaymentAmount       *int64               `json:"paymentAmount,omitempty"`
	PaymentProof        *PaymentProof        `json:"paymentProof,omitempty"`
	PaymentVerification *PaymentVerification `json:"paymentVerification,omitempty"`
	PaidAt              *time.Time           `json:"paidAt,omitempty"`
	DeliveredAt         *time.Time           `json:"deliveredAt,omitempty"`
	CompletedAt         *time.Time           `json:"completedAt,omitempty"`
	CancelledAt         *time.Time           `json:"cancelledAt,omitempty"`
	CreatedAt           time.Time            `json:"createdAt"`
	UpdatedAt           time.Time            `json:"updatedAt"`
	Version             int64                `json:"version"`
}

// TotalAmount is what the buyer pays: price plus the escrow fee.
func (t *Transaction) TotalAmount() int64 {
	return t.GameDetails.Price + EscrowFee
}

// PayoutAmount is what the seller receives once the sale completes.
func (t *Transaction) PayoutAmount() int64 {
	if t.PaymentAmount != nil {
		return *t.PaymentAmount - EscrowFee
	}
	return t.GameDetails.Price
}

func (t *Transaction) IsParty(userID string) bool {
	return userID != "" && (t.SellerID == userID || t.BuyerID == userID)
}

// Clone returns a deep copy so callers can mutate without aliasing
// stored state.
func (t Transaction) Clone() Transaction {
	out := t
	if t.SellerBankInfo != nil {
		bank := *t.SellerBankInfo
		out.SellerBankInfo = &bank
	}
	if t.PaymentAmount != nil {
		amount := *t.PaymentAmount
		out.PaymentAmount = &amount
	}
	if t.PaymentProof != nil {
		proof := *t.PaymentProof
		out.PaymentProof = &proof
	}
	if t.PaymentVerification != nil {
		verification := *t.PaymentVerification
		verification.VerifiedAt = cloneTime(t.PaymentVerification.VerifiedAt)
		out.PaymentVerification = &verification
	}
	out.PaidAt = cloneTime(t.PaidAt)
	out.DeliveredAt = cloneTime(t.DeliveredAt)
	out.CompletedAt = cloneTime(t.CompletedAt)
	out.CancelledAt = cloneTime(t.CancelledAt)
	return out
}

type TransactionFilter struct {
	Status   TransactionStatus
	SellerID string
	BuyerID  string
	Limit    int
	Offset   int
}

type TransactionStats struct {
	Total           int                       `json:"total"`
	ByStatus        map[TransactionStatus]int `json:"byStatus"`
	CompletedVolume int64                     `json:"completedVolume"`
	FeesCollected   int64                     `json:"feesCollected"`
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
