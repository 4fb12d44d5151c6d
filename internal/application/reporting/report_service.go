package reporting

import (
	"context"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
)

const DefaultHistoryLimit = 10

// IReportService runs support and dispute cases between users and the
// admin. A user has at most one open case at a time.
type IReportService interface {
	// StartReport returns the user's open case unchanged, or opens a new
	// one seeded with text. created reports which happened.
	StartReport(ctx context.Context, userID, text, transactionID string) (c domain.ReportCase, created bool, err error)
	AddUserMessage(ctx context.Context, userID, caseID, text string) (domain.ReportCase, error)
	AddAdminMessage(ctx context.Context, adminID, caseID, text string) (domain.ReportCase, error)
	CloseReport(ctx context.Context, actorID, caseID string) (domain.ReportCase, error)
	OpenDispute(ctx context.Context, userID, transactionID, text string) (domain.ReportCase, error)

	GetCase(ctx context.Context, caseID string) (domain.ReportCase, error)
	// The reads below never fail; store errors yield empty results.
	GetHistory(ctx context.Context, userID string, limit int) []domain.ReportCase
	HasOpenReport(ctx context.Context, userID string) (domain.ReportCase, bool)
	ListOpen(ctx context.Context, limit int) []domain.ReportCase
}
