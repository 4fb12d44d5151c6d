package gen

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/sqlc-dev/pqtype"
)

const countTransactions = `-- name: CountTransactions :one
SELECT COUNT(*) FROM transactions
WHERE ($1::text = '' OR status = $1::text)
  AND ($2::text = '' OR seller_id = $2::text)
  AND ($3::text = '' OR buyer_id = $3::text)
`

type CountTransactionsParams struct {
	Status   string
	SellerID string
	BuyerID  string
}

func (q *Queries) CountTransactions(ctx context.Context, arg CountTransactionsParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countTransactions, arg.Status, arg.SellerID, arg.BuyerID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countTransactionsByStatus = `-- name: CountTransactionsByStatus :many
SELECT status, COUNT(*) AS total FROM transactions
GROUP BY status
`

type CountTransactionsByStatusRow struct {
	Status string
	Total  int64
}

func (q *Queries) CountTransactionsByStatus(ctx context.Context) ([]CountTransactionsByStatusRow, error) {
	rows, err := q.db.QueryContext(ctx, countTransactionsByStatus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CountTransactionsByStatusRow
	for rows.Next() {
		var i CountTransactionsByStatusRow
		if err := rows.Scan(&i.Status, &i.Total); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createTransaction = `-- name: CreateTransaction :exec
INSERT INTO transactions (
    transaction_id, seller_id, buyer_id, game_details, seller_bank_info, status,
    payment_amount, payment_proof, payment_verification,
    paid_at, delivered_at, completed_at, cancelled_at,
    created_at, updated_at, version
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
)
`

type CreateTransactionParams struct {
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

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) error {
	_, err := q.db.ExecContext(ctx, createTransaction,
		arg.TransactionID,
		arg.SellerID,
		arg.BuyerID,
		arg.GameDetails,
		arg.SellerBankInfo,
		arg.Status,
		arg.PaymentAmount,
		arg.PaymentProof,
		arg.PaymentVerification,
		arg.PaidAt,
		arg.DeliveredAt,
		arg.CompletedAt,
		arg.CancelledAt,
		arg.CreatedAt,
		arg.UpdatedAt,
		arg.Version,
	)
	return err
}

const deleteTransactionsCreatedBefore = `-- name: DeleteTransactionsCreatedBefore :execrows
DELETE FROM transactions
WHERE created_at < $1
`

func (q *Queries) DeleteTransactionsCreatedBefore(ctx context.Context, createdAt time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransactionsCreatedBefore, createdAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getLatestTransactionForBuyer = `-- name: GetLatestTransactionForBuyer :one
SELECT transaction_id, seller_id, buyer_id, game_details, seller_bank_info, status, payment_amount, payment_proof, payment_verification, paid_at, delivered_at, completed_at, cancelled_at, created_at, updated_at, version FROM transactions
WHERE buyer_id = $1 AND status = $2
ORDER BY created_at DESC
LIMIT 1
`

type GetLatestTransactionForBuyerParams struct {
	BuyerID sql.NullString
	Status  string
}

func (q *Queries) GetLatestTransactionForBuyer(ctx context.Context, arg GetLatestTransactionForBuyerParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, getLatestTransactionForBuyer, arg.BuyerID, arg.Status)
	return scanTransaction(row)
}

const getTransaction = `-- name: GetTransaction :one
SELECT transaction_id, seller_id, buyer_id, game_details, seller_bank_info, status, payment_amount, payment_proof, payment_verification, paid_at, delivered_at, completed_at, cancelled_at, created_at, updated_at, version FROM transactions
WHERE transaction_id = $1
`

func (q *Queries) GetTransaction(ctx context.Context, transactionID string) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, getTransaction, transactionID)
	return scanTransaction(row)
}

const listTransactions = `-- name: ListTransactions :many
SELECT transaction_id, seller_id, buyer_id, game_details, seller_bank_info, status, payment_amount, payment_proof, payment_verification, paid_at, delivered_at, completed_at, cancelled_at, created_at, updated_at, version FROM transactions
WHERE ($1::text = '' OR status = $1::text)
  AND ($2::text = '' OR seller_id = $2::text)
  AND ($3::text = '' OR buyer_id = $3::text)
ORDER BY created_at DESC
LIMIT $4 OFFSET $5
`

type ListTransactionsParams struct {
	Status    string
	SellerID  string
	BuyerID   string
	RowLimit  int32
	RowOffset int32
}

func (q *Queries) ListTransactions(ctx context.Context, arg ListTransactionsParams) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions,
		arg.Status,
		arg.SellerID,
		arg.BuyerID,
		arg.RowLimit,
		arg.RowOffset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		i, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const sumCompletedPayments = `-- name: SumCompletedPayments :one
SELECT COALESCE(SUM(payment_amount), 0)::bigint AS volume, COUNT(*) AS completed
FROM transactions
WHERE status = 'completed'
`

type SumCompletedPaymentsRow struct {
	Volume    int64
	Completed int64
}

func (q *Queries) SumCompletedPayments(ctx context.Context) (SumCompletedPaymentsRow, error) {
	row := q.db.QueryRowContext(ctx, sumCompletedPayments)
	var i SumCompletedPaymentsRow
	err := row.Scan(&i.Volume, &i.Completed)
	return i, err
}

const updateTransaction = `-- name: UpdateTransaction :one
UPDATE transactions SET
    buyer_id = $3,
    seller_bank_info = $4,
    status = $5,
    payment_amount = $6,
    payment_proof = $7,
    payment_verification = $8,
    paid_at = $9,
    delivered_at = $10,
    completed_at = $11,
    cancelled_at = $12,
    updated_at = $13,
    version = version + 1
WHERE transaction_id = $1 AND version = $2
RETURNING transaction_id, seller_id, buyer_id, game_details, seller_bank_info, status, payment_amount, payment_proof, payment_verification, paid_at, delivered_at, completed_at, cancelled_at, created_at, updated_at, version
`

type UpdateTransactionParams struct {
	TransactionID       string
	Version             int64
	BuyerID             sql.NullString
	SellerBankInfo      pqtype.NullRawMessage
	Status              string
	PaymentAmount       sql.NullInt64
	PaymentProof        pqtype.NullRawMessage
	PaymentVerification pqtype.NullRawMessage
	PaidAt              sql.NullTime
	DeliveredAt         sql.NullTime
	CompletedAt         sql.NullTime
	CancelledAt         sql.NullTime
	UpdatedAt           time.Time
}

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, updateTransaction,
		arg.TransactionID,
		arg.Version,
		arg.BuyerID,
		arg.SellerBankInfo,
		arg.Status,
		arg.PaymentAmount,
		arg.PaymentProof,
		arg.PaymentVerification,
		arg.PaidAt,
		arg.DeliveredAt,
		arg.CompletedAt,
		arg.CancelledAt,
		arg.UpdatedAt,
	)
	return scanTransaction(row)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (Transaction, error) {
	var i Transaction
	err := row.Scan(
		&i.TransactionID,
		&i.SellerID,
		&i.BuyerID,
		&i.GameDetails,
		&i.SellerBankInfo,
		&i.Status,
		&i.PaymentAmount,
		&i.PaymentProof,
		&i.PaymentVerification,
		&i.PaidAt,
		&i.DeliveredAt,
		&i.CompletedAt,
		&i.CancelledAt,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.Version,
	)
	return i, err
}
