package transactionrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sqlc-dev/pqtype"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
	"github.com/conmuninw/gameruleTh-Bot/internal/infrastructure/database"
	"github.com/conmuninw/gameruleTh-Bot/internal/repositories/transactionrepo/gen"
)

type TransactionRepositoryImpl struct {
	db     *sql.DB
	store  *gen.Queries
	logger zerolog.Logger
}

func New(db *database.DBManager, logger zerolog.Logger) ITransactionRepository {
	return &TransactionRepositoryImpl{
		db:     db.Db,
		store:  gen.New(db.Db),
		logger: logger,
	}
}

func (r *TransactionRepositoryImpl) Create(ctx context.Context, tx domain.Transaction) error {
	params, err := toCreateParams(tx)
	if err != nil {
		return err
	}

	if err := r.store.CreateTransaction(ctx, params); err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ConflictError("transactionrepo.Create", tx.TransactionID, "transaction id already exists")
		}
		r.logger.Error().Err(err).Str("transaction_id", tx.TransactionID).Msg("Failed to create transaction")
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepositoryImpl) GetByID(ctx context.Context, transactionID string) (domain.Transaction, error) {
	row, err := r.store.GetTransaction(ctx, transactionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Transaction{}, domain.NotFoundError("transactionrepo.GetByID", "ไม่พบธุรกรรม %s ในระบบ", transactionID)
		}
		r.logger.Error().Err(err).Str("transaction_id", transactionID).Msg("Failed to get transaction")
		return domain.Transaction{}, fmt.Errorf("failed to get transaction: %w", err)
	}
	return fromRow(row)
}

func (r *TransactionRepositoryImpl) Update(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	params, err := toUpdateParams(tx)
	if err != nil {
		return domain.Transaction{}, err
	}

	row, err := r.store.UpdateTransaction(ctx, params)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Transaction{}, domain.ErrStaleWrite
		}
		r.logger.Error().Err(err).Str("transaction_id", tx.TransactionID).Msg("Failed to update transaction")
		return domain.Transaction{}, fmt.Errorf("failed to update transaction: %w", err)
	}
	return fromRow(row)
}

func (r *TransactionRepositoryImpl) GetLatestForBuyer(ctx context.Context, buyerID string, status domain.TransactionStatus) (domain.Transaction, error) {
	row, err := r.store.GetLatestTransactionForBuyer(ctx, gen.GetLatestTransactionForBuyerParams{
		BuyerID: sql.NullString{String: buyerID, Valid: buyerID != ""},
		Status:  string(status),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Transaction{}, domain.NotFoundError("transactionrepo.GetLatestForBuyer", "ไม่พบธุรกรรมที่รอการชำระเงิน")
		}
		r.logger.Error().Err(err).Str("buyer_id", buyerID).Msg("Failed to get latest buyer transaction")
		return domain.Transaction{}, fmt.Errorf("failed to get latest buyer transaction: %w", err)
	}
	return fromRow(row)
}

func (r *TransactionRepositoryImpl) List(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.store.ListTransactions(ctx, gen.ListTransactionsParams{
		Status:    string(filter.Status),
		SellerID:  filter.SellerID,
		BuyerID:   filter.BuyerID,
		RowLimit:  int32(limit),
		RowOffset: int32(filter.Offset),
	})
	if err != nil {
		r.logger.Error().Err(err).Str("status", string(filter.Status)).Msg("Failed to list transactions")
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}

	total, err := r.store.CountTransactions(ctx, gen.CountTransactionsParams{
		Status:   string(filter.Status),
		SellerID: filter.SellerID,
		BuyerID:  filter.BuyerID,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	transactions := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := fromRow(row)
		if err != nil {
			return nil, 0, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, int(total), nil
}

func (r *TransactionRepositoryImpl) Stats(ctx context.Context) (domain.TransactionStats, error) {
	counts, err := r.store.CountTransactionsByStatus(ctx)
	if err != nil {
		return domain.TransactionStats{}, fmt.Errorf("failed to count transactions by status: %w", err)
	}

	completed, err := r.store.SumCompletedPayments(ctx)
	if err != nil {
		return domain.TransactionStats{}, fmt.Errorf("failed to sum completed payments: %w", err)
	}

	stats := domain.TransactionStats{ByStatus: make(map[domain.TransactionStatus]int)}
	for _, c := range counts {
		stats.ByStatus[domain.TransactionStatus(c.Status)] = int(c.Total)
		stats.Total += int(c.Total)
	}
	stats.CompletedVolume = completed.Volume
	stats.FeesCollected = completed.Completed * domain.EscrowFee
	return stats, nil
}

func (r *TransactionRepositoryImpl) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	deleted, err := r.store.DeleteTransactionsCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired transactions: %w", err)
	}
	return deleted, nil
}

func toCreateParams(tx domain.Transaction) (gen.CreateTransactionParams, error) {
	gameDetails, err := json.Marshal(tx.GameDetails)
	if err != nil {
		return gen.CreateTransactionParams{}, fmt.Errorf("failed to marshal game details: %w", err)
	}
	cols, err := mutableColumns(tx)
	if err != nil {
		return gen.CreateTransactionParams{}, err
	}

	return gen.CreateTransactionParams{
		TransactionID:       tx.TransactionID,
		SellerID:            tx.SellerID,
		BuyerID:             cols.BuyerID,
		GameDetails:         gameDetails,
		SellerBankInfo:      cols.SellerBankInfo,
		Status:              cols.Status,
		PaymentAmount:       cols.PaymentAmount,
		PaymentProof:        cols.PaymentProof,
		PaymentVerification: cols.PaymentVerification,
		PaidAt:              cols.PaidAt,
		DeliveredAt:         cols.DeliveredAt,
		CompletedAt:         cols.CompletedAt,
		CancelledAt:         cols.CancelledAt,
		CreatedAt:           tx.CreatedAt,
		UpdatedAt:           tx.UpdatedAt,
		Version:             tx.Version,
	}, nil
}

func toUpdateParams(tx domain.Transaction) (gen.UpdateTransactionParams, error) {
	cols, err := mutableColumns(tx)
	if err != nil {
		return gen.UpdateTransactionParams{}, err
	}
	cols.TransactionID = tx.TransactionID
	cols.Version = tx.Version
	cols.UpdatedAt = tx.UpdatedAt
	return cols, nil
}

func mutableColumns(tx domain.Transaction) (gen.UpdateTransactionParams, error) {
	if !tx.Status.Valid() {
		return gen.UpdateTransactionParams{}, fmt.Errorf("refusing to store unknown status %q", tx.Status)
	}

	bankInfo, err := marshalNullable(tx.SellerBankInfo)
	if err != nil {
		return gen.UpdateTransactionParams{}, fmt.Errorf("failed to marshal seller bank info: %w", err)
	}
	proof, err := marshalNullable(tx.PaymentProof)
	if err != nil {
		return gen.UpdateTransactionParams{}, fmt.Errorf("failed to marshal payment proof: %w", err)
	}
	verification, err := marshalNullable(tx.PaymentVerification)
	if err != nil {
		return gen.UpdateTransactionParams{}, fmt.Errorf("failed to marshal payment verification: %w", err)
	}

	params := gen.UpdateTransactionParams{
		BuyerID:             sql.NullString{String: tx.BuyerID, Valid: tx.BuyerID != ""},
		SellerBankInfo:      bankInfo,
		Status:              string(tx.Status),
		PaymentProof:        proof,
		PaymentVerification: verification,
		PaidAt:              nullTime(tx.PaidAt),
		DeliveredAt:         nullTime(tx.DeliveredAt),
		CompletedAt:         nullTime(tx.CompletedAt),
		CancelledAt:         nullTime(tx.CancelledAt),
	}
	if tx.PaymentAmount != nil {
		params.PaymentAmount = sql.NullInt64{Int64: *tx.PaymentAmount, Valid: true}
	}
	return params, nil
}

func fromRow(row gen.Transaction) (domain.Transaction, error) {
	tx := domain.Transaction{
		TransactionID: row.TransactionID,
		SellerID:      row.SellerID,
		BuyerID:       row.BuyerID.String,
		Status:        domain.TransactionStatus(row.Status),
		PaidAt:        timePtr(row.PaidAt),
		DeliveredAt:   timePtr(row.DeliveredAt),
		CompletedAt:   timePtr(row.CompletedAt),
		CancelledAt:   timePtr(row.CancelledAt),
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
		Version:       row.Version,
	}

	if err := json.Unmarshal(row.GameDetails, &tx.GameDetails); err != nil {
		return domain.Transaction{}, fmt.Errorf("failed to unmarshal game details: %w", err)
	}
	if row.PaymentAmount.Valid {
		amount := row.PaymentAmount.Int64
		tx.PaymentAmount = &amount
	}
	if err := unmarshalNullable(row.SellerBankInfo, &tx.SellerBankInfo); err != nil {
		return domain.Transaction{}, fmt.Errorf("failed to unmarshal seller bank info: %w", err)
	}
	if err := unmarshalNullable(row.PaymentProof, &tx.PaymentProof); err != nil {
		return domain.Transaction{}, fmt.Errorf("failed to unmarshal payment proof: %w", err)
	}
	if err := unmarshalNullable(row.PaymentVerification, &tx.PaymentVerification); err != nil {
		return domain.Transaction{}, fmt.Errorf("failed to unmarshal payment verification: %w", err)
	}
	return tx, nil
}

func marshalNullable[T any](v *T) (pqtype.NullRawMessage, error) {
	if v == nil {
		return pqtype.NullRawMessage{}, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return pqtype.NullRawMessage{}, err
	}
	return pqtype.NullRawMessage{RawMessage: raw, Valid: true}, nil
}

func unmarshalNullable[T any](raw pqtype.NullRawMessage, out **T) error {
	if !raw.Valid || len(raw.RawMessage) == 0 {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw.RawMessage, &v); err != nil {
		return err
	}
	*out = &v
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
