package transactionrepo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTx(id string, createdAt time.Time) domain.Transaction {
	return domain.Transaction{
		TransactionID: id,
		SellerID:      "seller",
		GameDetails:   domain.GameDetails{Game: "ArenaBreakout", Level: "L50", Price: 1700},
		Status:        domain.StatusWaitingBuyer,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
		Version:       1,
	}
}

func TestMemoryCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()

	require.NoError(t, repo.Create(ctx, newTx("TX1", epoch)))

	got, err := repo.GetByID(ctx, "TX1")
	require.NoError(t, err)
	assert.Equal(t, "seller", got.SellerID)
	assert.Equal(t, int64(1), got.Version)

	err = repo.Create(ctx, newTx("TX1", epoch))
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = repo.GetByID(ctx, "TX404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryUpdateChecksVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	require.NoError(t, repo.Create(ctx, newTx("TX1", epoch)))

	first, err := repo.GetByID(ctx, "TX1")
	require.NoError(t, err)
	second := first.Clone()

	first.BuyerID = "buyer-a"
	first.Status = domain.StatusWaitingPayment
	stored, err := repo.Update(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Version)

	second.BuyerID = "buyer-b"
	_, err = repo.Update(ctx, second)
	assert.ErrorIs(t, err, domain.ErrStaleWrite)

	got, err := repo.GetByID(ctx, "TX1")
	require.NoError(t, err)
	assert.Equal(t, "buyer-a", got.BuyerID)
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	require.NoError(t, repo.Create(ctx, newTx("TX1", epoch)))

	got, err := repo.GetByID(ctx, "TX1")
	require.NoError(t, err)
	got.Status = domain.StatusCancelled

	again, err := repo.GetByID(ctx, "TX1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaitingBuyer, again.Status)
}

func TestMemoryGetLatestForBuyer(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()

	for i, id := range []string{"TXOLD", "TXNEW", "TXPAID"} {
		tx := newTx(id, epoch.Add(time.Duration(i)*time.Minute))
		tx.BuyerID = "buyer"
		tx.Status = domain.StatusWaitingPayment
		if id == "TXPAID" {
			tx.Status = domain.StatusPaid
		}
		require.NoError(t, repo.Create(ctx, tx))
	}

	got, err := repo.GetLatestForBuyer(ctx, "buyer", domain.StatusWaitingPayment)
	require.NoError(t, err)
	assert.Equal(t, "TXNEW", got.TransactionID)

	_, err = repo.GetLatestForBuyer(ctx, "someone-else", domain.StatusWaitingPayment)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryListPaginatesNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	for i := 0; i < 5; i++ {
		tx := newTx("TX"+string(rune('A'+i)), epoch.Add(time.Duration(i)*time.Minute))
		if i%2 == 0 {
			tx.Status = domain.StatusPaid
		}
		require.NoError(t, repo.Create(ctx, tx))
	}

	page, total, err := repo.List(ctx, domain.TransactionFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "TXD", page[0].TransactionID)
	assert.Equal(t, "TXC", page[1].TransactionID)

	paid, total, err := repo.List(ctx, domain.TransactionFilter{Status: domain.StatusPaid})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, paid, 3)

	empty, _, err := repo.List(ctx, domain.TransactionFilter{Offset: 50})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryStats(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()

	amount := int64(1750)
	done := newTx("TXDONE", epoch)
	done.Status = domain.StatusCompleted
	done.PaymentAmount = &amount
	require.NoError(t, repo.Create(ctx, done))
	require.NoError(t, repo.Create(ctx, newTx("TXWAIT", epoch)))

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.ByStatus[domain.StatusCompleted])
	assert.Equal(t, int64(1750), stats.CompletedVolume)
	assert.Equal(t, domain.EscrowFee, stats.FeesCollected)
}

func TestMemoryDeleteCreatedBefore(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	require.NoError(t, repo.Create(ctx, newTx("TXOLD", epoch)))
	require.NoError(t, repo.Create(ctx, newTx("TXNEW", epoch.Add(25*time.Hour))))

	deleted, err := repo.DeleteCreatedBefore(ctx, epoch.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.GetByID(ctx, "TXOLD")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.GetByID(ctx, "TXNEW")
	assert.NoError(t, err)
}
