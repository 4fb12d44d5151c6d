package adminrepo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
)

func TestMemoryUpsertKeepsExistingFields(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Upsert(ctx, domain.Admin{
		AdminID:     "admin-1",
		DisplayName: "Ops",
		BankAccount: &domain.BankInfo{BankName: "KBank", AccountNumber: "0812345678", AccountName: "Escrow"},
		UpdatedAt:   now,
	}))
	require.NoError(t, repo.Upsert(ctx, domain.Admin{AdminID: "admin-1", UpdatedAt: now.Add(time.Hour)}))

	admin, err := repo.Get(ctx, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "Ops", admin.DisplayName)
	require.NotNil(t, admin.BankAccount)
	assert.Equal(t, "KBank", admin.BankAccount.BankName)
	assert.Equal(t, now, admin.CreatedAt)
	assert.Equal(t, now.Add(time.Hour), admin.UpdatedAt)

	admins, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, admins, 1)

	_, err = repo.Get(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
