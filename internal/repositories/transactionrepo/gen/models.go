package gen

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/sqlc-dev/pqtype"
)

type Transaction struct {
	TransactionID       string
	SellerID            string
	BuyerID             sql.NullString
	GameDetails         json.RawMessage
	SellerBankInfo      pqtype.NullRawMessage
	Status              string
	PaymentAmount       sql.NullInt64
	PaymentProof        pqtype.NullRawMessage
	PaymentVerification pqtype.NullRawMessage
	PaidAt              sql.NullTime
	DeliveredAt         sql.NullTime
	CompletedAt         sql.NullTime
	CancelledAt         sql.NullTime
	CreatedAt           time.Time
	UpdatedAt           time.Time
	Version             int64
}
