package reportrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
	"github.com/conmuninw/gameruleTh-Bot/internal/infrastructure/database"
	"github.com/conmuninw/gameruleTh-Bot/internal/repositories/reportrepo/gen"
)

type ReportRepositoryImpl struct {
	store  *gen.Queries
	logger zerolog.Logger
}

func New(db *database.DBManager, logger zerolog.Logger) IReportRepository {
	return &ReportRepositoryImpl{
		store:  gen.New(db.Db),
		logger: logger,
	}
}

func (r *ReportRepositoryImpl) Create(ctx context.Context, c domain.ReportCase) error {
	messages, err := json.Marshal(nonNilMessages(c.Messages))
	if err != nil {
		return fmt.Errorf("failed to marshal case messages: %w", err)
	}

	err = r.store.CreateReportCase(ctx, gen.CreateReportCaseParams{
		CaseID:        c.CaseID,
		UserID:        c.UserID,
		AdminID:       sql.NullString{String: c.AdminID, Valid: c.AdminID != ""},
		TransactionID: sql.NullString{String: c.TransactionID, Valid: c.TransactionID != ""},
		Messages:      messages,
		Status:        string(c.Status),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ConflictError("reportrepo.Create", c.UserID, "user already has an open case")
		}
		r.logger.Error().Err(err).Str("case_id", c.CaseID).Str("user_id", c.UserID).Msg("Failed to create report case")
		return fmt.Errorf("failed to create report case: %w", err)
	}
	return nil
}

func (r *ReportRepositoryImpl) GetByID(ctx context.Context, caseID string) (domain.ReportCase, error) {
	row, err := r.store.GetReportCase(ctx, caseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ReportCase{}, domain.NotFoundError("reportrepo.GetByID", "ไม่พบเคส %s", caseID)
		}
		return domain.ReportCase{}, fmt.Errorf("failed to get report case: %w", err)
	}
	return fromRow(row)
}

func (r *ReportRepositoryImpl) GetOpenByUser(ctx context.Context, userID string) (domain.ReportCase, error) {
	row, err := r.store.GetOpenReportCaseForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ReportCase{}, domain.NotFoundError("reportrepo.GetOpenByUser", "ไม่มีเคสที่เปิดอยู่")
		}
		return domain.ReportCase{}, fmt.Errorf("failed to get open report case: %w", err)
	}
	return fromRow(row)
}

func (r *ReportRepositoryImpl) AppendMessage(ctx context.Context, caseID string, msg domain.CaseMessage, adminID string) (domain.ReportCase, error) {
	payload, err := json.Marshal([]domain.CaseMessage{msg})
	if err != nil {
		return domain.ReportCase{}, fmt.Errorf("failed to marshal case message: %w", err)
	}

	row, err := r.store.AppendReportMessage(ctx, gen.AppendReportMessageParams{
		CaseID:    caseID,
		Messages:  payload,
		AdminID:   adminID,
		UpdatedAt: msg.Timestamp,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ReportCase{}, domain.ErrStaleWrite
		}
		r.logger.Error().Err(err).Str("case_id", caseID).Msg("Failed to append case message")
		return domain.ReportCase{}, fmt.Errorf("failed to append case message: %w", err)
	}
	return fromRow(row)
}

func (r *ReportRepositoryImpl) Close(ctx context.Context, caseID string, at time.Time) (domain.ReportCase, error) {
	row, err := r.store.CloseReportCase(ctx, caseID, at)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ReportCase{}, domain.ErrStaleWrite
		}
		r.logger.Error().Err(err).Str("case_id", caseID).Msg("Failed to close report case")
		return domain.ReportCase{}, fmt.Errorf("failed to close report case: %w", err)
	}
	return fromRow(row)
}

func (r *ReportRepositoryImpl) ListByUser(ctx context.Context, userID string, limit int) ([]domain.ReportCase, error) {
	rows, err := r.store.ListReportCasesForUser(ctx, userID, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list report cases: %w", err)
	}
	return fromRows(rows)
}

func (r *ReportRepositoryImpl) ListOpen(ctx context.Context, limit int) ([]domain.ReportCase, error) {
	rows, err := r.store.ListOpenReportCases(ctx, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list open report cases: %w", err)
	}
	return fromRows(rows)
}

func fromRows(rows []gen.ReportCase) ([]domain.ReportCase, error) {
	cases := make([]domain.ReportCase, 0, len(rows))
	for _, row := range rows {
		c, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, nil
}

func fromRow(row gen.ReportCase) (domain.ReportCase, error) {
	c := domain.ReportCase{
		CaseID:        row.CaseID,
		UserID:        row.UserID,
		AdminID:       row.AdminID.String,
		TransactionID: row.TransactionID.String,
		Status:        domain.CaseStatus(row.Status),
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if len(row.Messages) > 0 {
		if err := json.Unmarshal(row.Messages, &c.Messages); err != nil {
			return domain.ReportCase{}, fmt.Errorf("failed to unmarshal case messages: %w", err)
		}
	}
	c.Messages = nonNilMessages(c.Messages)
	return c, nil
}

func nonNilMessages(messages []domain.CaseMessage) []domain.CaseMessage {
	if messages == nil {
		return []domain.CaseMessage{}
	}
	return messages
}
