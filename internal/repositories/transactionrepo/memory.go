package transactionrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
)

// MemoryRepository keeps transactions in process memory. It honours the
// same version contract as the Postgres repository and is used for the
// memory database driver and in tests.
type MemoryRepository struct {
	mu           sync.RWMutex
	transactions map[string]domain.Transaction
}

func NewMemory() *MemoryRepository {
	return &MemoryRepository{transactions: make(map[string]domain.Transaction)}
}

func (r *MemoryRepository) Create(_ context.Context, tx domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.transactions[tx.TransactionID]; exists {
		return domain.ConflictError("transactionrepo.Create", tx.TransactionID, "transaction id already exists")
	}
	r.transactions[tx.TransactionID] = tx.Clone()
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, transactionID string) (domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tx, ok := r.transactions[transactionID]
	if !ok {
		return domain.Transaction{}, domain.NotFoundError("transactionrepo.GetByID", "ไม่พบธุรกรรม %s ในระบบ", transactionID)
	}
	return tx.Clone(), nil
}

func (r *MemoryRepository) Update(_ context.Context, tx domain.Transaction) (domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.transactions[tx.TransactionID]
	if !ok || current.Version != tx.Version {
		return domain.Transaction{}, domain.ErrStaleWrite
	}

	stored := tx.Clone()
	// Immutable columns are never rewritten by an update.
	stored.SellerID = current.SellerID
	stored.GameDetails = current.GameDetails
	stored.CreatedAt = current.CreatedAt
	stored.Version = current.Version + 1
	r.transactions[tx.TransactionID] = stored
	return stored.Clone(), nil
}

func (r *MemoryRepository) GetLatestForBuyer(_ context.Context, buyerID string, status domain.TransactionStatus) (domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *domain.Transaction
	for _, tx := range r.transactions {
		if tx.BuyerID != buyerID || tx.Status != status {
			continue
		}
		if latest == nil || tx.CreatedAt.After(latest.CreatedAt) {
			candidate := tx
			latest = &candidate
		}
	}
	if latest == nil {
		return domain.Transaction{}, domain.NotFoundError("transactionrepo.GetLatestForBuyer", "ไม่พบธุรกรรมที่รอการชำระเงิน")
	}
	return latest.Clone(), nil
}

func (r *MemoryRepository) List(_ context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]domain.Transaction, 0)
	for _, tx := range r.transactions {
		if filter.Status != "" && tx.Status != filter.Status {
			continue
		}
		if filter.SellerID != "" && tx.SellerID != filter.SellerID {
			continue
		}
		if filter.BuyerID != "" && tx.BuyerID != filter.BuyerID {
			continue
		}
		matched = append(matched, tx.Clone())
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	start := filter.Offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *MemoryRepository) Stats(_ context.Context) (domain.TransactionStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := domain.TransactionStats{ByStatus: make(map[domain.TransactionStatus]int)}
	for _, tx := range r.transactions {
		stats.Total++
		stats.ByStatus[tx.Status]++
		if tx.Status == domain.StatusCompleted && tx.PaymentAmount != nil {
			stats.CompletedVolume += *tx.PaymentAmount
			stats.FeesCollected += domain.EscrowFee
		}
	}
	return stats, nil
}

func (r *MemoryRepository) DeleteCreatedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, tx := range r.transactions {
		if tx.CreatedAt.Before(cutoff) {
			delete(r.transactions, id)
			deleted++
		}
	}
	return deleted, nil
}
