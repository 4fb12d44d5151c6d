package reportrepo

import (
	"context"
	"time"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
)

// IReportRepository persists report cases. Create fails with a domain
// Conflict error when the user already has an open case. AppendMessage and
// Close only touch open cases and return domain.ErrStaleWrite when the
// case is no longer open.
type IReportRepository interface {
	Create(ctx context.Context, c domain.ReportCase) error
	GetByID(ctx context.Context, caseID string) (domain.ReportCase, error)
	GetOpenByUser(ctx context.Context, userID string) (domain.ReportCase, error)
	AppendMessage(ctx context.Context, caseID string, msg domain.CaseMessage, adminID string) (domain.ReportCase, error)
	Close(ctx context.Context, caseID string, at time.Time) (domain.ReportCase, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.ReportCase, error)
	ListOpen(ctx context.Context, limit int) ([]domain.ReportCase, error)
}
