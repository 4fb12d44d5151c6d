package transactionrepo

import (
	"context"
	"time"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
)

// ITransactionRepository persists escrow transactions. Lookups of unknown
// ids fail with a domain NotFound error. Update is conditional on the
// Version carried by tx and fails with domain.ErrStaleWrite when another
// writer got there first; on success the stored row, with its new
// Version, is returned.
type ITransactionRepository interface {
	Create(ctx context.Context, tx domain.Transaction) error
	GetByID(ctx context.Context, transactionID string) (domain.Transaction, error)
	Update(ctx context.Context, tx domain.Transaction) (domain.Transaction, error)
	GetLatestForBuyer(ctx context.Context, buyerID string, status domain.TransactionStatus) (domain.Transaction, error)
	List(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int, error)
	Stats(ctx context.Context) (domain.TransactionStats, error)
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
