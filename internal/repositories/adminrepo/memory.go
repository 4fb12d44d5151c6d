package adminrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
)

type MemoryRepository struct {
	mu     sync.RWMutex
	admins map[string]domain.Admin
}

func NewMemory() *MemoryRepository {
	return &MemoryRepository{admins: make(map[string]domain.Admin)}
}

func (r *MemoryRepository) Get(_ context.Context, adminID string) (domain.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	admin, ok := r.admins[adminID]
	if !ok {
		return domain.Admin{}, domain.NotFoundError("adminrepo.Get", "admin %s not found", adminID)
	}
	return copyAdmin(admin), nil
}

func (r *MemoryRepository) Upsert(_ context.Context, admin domain.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.admins[admin.AdminID]
	if !ok {
		admin.CreatedAt = admin.UpdatedAt
		r.admins[admin.AdminID] = copyAdmin(admin)
		return nil
	}
	if admin.DisplayName != "" {
		existing.DisplayName = admin.DisplayName
	}
	if admin.BankAccount != nil {
		existing.BankAccount = admin.BankAccount
	}
	existing.UpdatedAt = admin.UpdatedAt
	r.admins[admin.AdminID] = copyAdmin(existing)
	return nil
}

func (r *MemoryRepository) List(_ context.Context) ([]domain.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	admins := make([]domain.Admin, 0, len(r.admins))
	for _, admin := range r.admins {
		admins = append(admins, copyAdmin(admin))
	}
	sort.Slice(admins, func(i, j int) bool { return admins[i].CreatedAt.Before(admins[j].CreatedAt) })
	return admins, nil
}

func copyAdmin(admin domain.Admin) domain.Admin {
	if admin.BankAccount != nil {
		bank := *admin.BankAccount
		admin.BankAccount = &bank
	}
	return admin
}
