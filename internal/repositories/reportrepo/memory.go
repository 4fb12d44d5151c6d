package reportrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
)

// MemoryRepository keeps report cases in process memory and enforces the
// one-open-case-per-user constraint the way the partial unique index does.
type MemoryRepository struct {
	mu    sync.RWMutex
	cases map[string]domain.ReportCase
}

func NewMemory() *MemoryRepository {
	return &MemoryRepository{cases: make(map[string]domain.ReportCase)}
}

func (r *MemoryRepository) Create(_ context.Context, c domain.ReportCase) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cases[c.CaseID]; exists {
		return domain.ConflictError("reportrepo.Create", c.CaseID, "case id already exists")
	}
	if c.Status == domain.CaseOpen {
		for _, existing := range r.cases {
			if existing.UserID == c.UserID && existing.Status == domain.CaseOpen {
				return domain.ConflictError("reportrepo.Create", c.UserID, "user already has an open case")
			}
		}
	}
	stored := c.Clone()
	stored.Messages = nonNilMessages(stored.Messages)
	r.cases[c.CaseID] = stored
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, caseID string) (domain.ReportCase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.cases[caseID]
	if !ok {
		return domain.ReportCase{}, domain.NotFoundError("reportrepo.GetByID", "ไม่พบเคส %s", caseID)
	}
	return c.Clone(), nil
}

func (r *MemoryRepository) GetOpenByUser(_ context.Context, userID string) (domain.ReportCase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.cases {
		if c.UserID == userID && c.Status == domain.CaseOpen {
			return c.Clone(), nil
		}
	}
	return domain.ReportCase{}, domain.NotFoundError("reportrepo.GetOpenByUser", "ไม่มีเคสที่เปิดอยู่")
}

func (r *MemoryRepository) AppendMessage(_ context.Context, caseID string, msg domain.CaseMessage, adminID string) (domain.ReportCase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.cases[caseID]
	if !ok || c.Status != domain.CaseOpen {
		return domain.ReportCase{}, domain.ErrStaleWrite
	}
	c = c.Clone()
	c.Messages = append(c.Messages, msg)
	if adminID != "" {
		c.AdminID = adminID
	}
	c.UpdatedAt = msg.Timestamp
	r.cases[caseID] = c
	return c.Clone(), nil
}

func (r *MemoryRepository) Close(_ context.Context, caseID string, at time.Time) (domain.ReportCase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.cases[caseID]
	if !ok || c.Status != domain.CaseOpen {
		return domain.ReportCase{}, domain.ErrStaleWrite
	}
	c = c.Clone()
	c.Status = domain.CaseClosed
	c.UpdatedAt = at
	r.cases[caseID] = c
	return c.Clone(), nil
}

func (r *MemoryRepository) ListByUser(_ context.Context, userID string, limit int) ([]domain.ReportCase, error) {
	return r.list(limit, func(c domain.ReportCase) bool { return c.UserID == userID }, func(c domain.ReportCase) time.Time { return c.CreatedAt }), nil
}

func (r *MemoryRepository) ListOpen(_ context.Context, limit int) ([]domain.ReportCase, error) {
	return r.list(limit, func(c domain.ReportCase) bool { return c.Status == domain.CaseOpen }, func(c domain.ReportCase) time.Time { return c.UpdatedAt }), nil
}

func (r *MemoryRepository) list(limit int, keep func(domain.ReportCase) bool, orderBy func(domain.ReportCase) time.Time) []domain.ReportCase {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.ReportCase, 0)
	for _, c := range r.cases {
		if keep(c) {
			out = append(out, c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return orderBy(out[i]).After(orderBy(out[j])) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
