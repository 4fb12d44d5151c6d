package reporting

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/conmuninw/gameruleTh-Bot/internal/application/relay"
	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
	"github.com/conmuninw/gameruleTh-Bot/internal/domain/interfaces"
	"github.com/conmuninw/gameruleTh-Bot/internal/repositories/reportrepo"
	"github.com/conmuninw/gameruleTh-Bot/pkg/clock"
	"github.com/conmuninw/gameruleTh-Bot/pkg/config"
)

const maxMessageRunes = 2000

type reportService struct {
	reportRepo   reportrepo.IReportRepository
	relay        *relay.Relay
	ids          interfaces.IDGenerator
	publisher    interfaces.EventPublisher
	clock        clock.Clock
	admins       config.AdminConfig
	storeTimeout time.Duration
	locks        *userLocks
	logger       zerolog.Logger
}

func New(
	reportRepo reportrepo.IReportRepository,
	notifier interfaces.Notifier,
	ids interfaces.IDGenerator,
	publisher interfaces.EventPublisher,
	clk clock.Clock,
	admins config.AdminConfig,
	cfg config.EscrowConfig,
	logger zerolog.Logger,
) IReportService {
	storeTimeout := cfg.StoreTimeout
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	return &reportService{
		reportRepo:   reportRepo,
		relay:        relay.New(notifier, cfg.NotifyTimeout, logger),
		ids:          ids,
		publisher:    relay.Publisher(publisher),
		clock:        clk,
		admins:       admins,
		storeTimeout: storeTimeout,
		locks:        newUserLocks(),
		logger:       logger,
	}
}

func (s *reportService) StartReport(ctx context.Context, userID, text, transactionID string) (domain.ReportCase, bool, error) {
	const op = "reporting.StartReport"

	text, err := cleanText(op, text)
	if err != nil {
		return domain.ReportCase{}, false, err
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	existing, found, err := s.openCase(ctx, op, userID)
	if err != nil {
		return domain.ReportCase{}, false, err
	}
	if found {
		s.relay.Text(ctx, userID, existingCaseText(existing))
		return existing, false, nil
	}

	c, err := s.create(ctx, op, userID, transactionID, text)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Another process opened a case between our read and write.
			if existing, found, _ := s.openCase(ctx, op, userID); found {
				s.relay.Text(ctx, userID, existingCaseText(existing))
				return existing, false, nil
			}
		}
		return domain.ReportCase{}, false, err
	}

	s.logger.Info().Str("case_id", c.CaseID).Str("user_id", userID).Str("transaction_id", transactionID).Msg("Report case opened")
	s.relay.Text(ctx, userID, caseCreatedText(c, text))
	s.relay.Text(ctx, s.admins.NotifyID(), adminRelayText(newCaseHeader, c, text))
	s.publisher.PublishReport(c)
	return c, true, nil
}

func (s *reportService) AddUserMessage(ctx context.Context, userID, caseID, text string) (domain.ReportCase, error) {
	const op = "reporting.AddUserMessage"

	text, err := cleanText(op, text)
	if err != nil {
		return domain.ReportCase{}, err
	}

	c, err := s.getCase(ctx, op, caseID)
	if err != nil {
		return domain.ReportCase{}, err
	}
	if c.UserID != userID {
		return domain.ReportCase{}, domain.NotFoundError(op, "ไม่พบรายงานปัญหานี้")
	}
	if c.Status == domain.CaseClosed {
		return domain.ReportCase{}, domain.StateError(op, "%s", caseClosedText(c.CaseID))
	}

	c, err = s.append(ctx, op, c.CaseID, domain.CaseMessage{SenderID: userID, Role: domain.RoleUser, Text: text}, "")
	if err != nil {
		return domain.ReportCase{}, err
	}

	s.relay.Text(ctx, s.admins.NotifyID(), adminRelayText(newMessageHeader, c, text))
	s.relay.Text(ctx, userID, userMessageAckText(text))
	s.publisher.PublishReport(c)
	return c, nil
}

func (s *reportService) AddAdminMessage(ctx context.Context, adminID, caseID, text string) (domain.ReportCase, error) {
	const op = "reporting.AddAdminMessage"

	if !s.admins.IsAdmin(adminID) {
		return domain.ReportCase{}, domain.RoleError(op, "คำสั่งนี้สำหรับแอดมินเท่านั้น")
	}
	text, err := cleanText(op, text)
	if err != nil {
		return domain.ReportCase{}, err
	}

	c, err := s.getCase(ctx, op, caseID)
	if err != nil {
		return domain.ReportCase{}, err
	}
	if c.Status == domain.CaseClosed {
		return domain.ReportCase{}, domain.StateError(op, "%s", caseClosedText(c.CaseID))
	}

	c, err = s.append(ctx, op, c.CaseID, domain.CaseMessage{SenderID: adminID, Role: domain.RoleAdmin, Text: text}, adminID)
	if err != nil {
		return domain.ReportCase{}, err
	}

	s.relay.Text(ctx, c.UserID, adminReplyText(text))
	s.relay.Text(ctx, adminID, adminReplyAckText(c))
	s.publisher.PublishReport(c)
	return c, nil
}

func (s *reportService) CloseReport(ctx context.Context, actorID, caseID string) (domain.ReportCase, error) {
	const op = "reporting.CloseReport"

	c, err := s.getCase(ctx, op, caseID)
	if err != nil {
		return domain.ReportCase{}, err
	}
	isAdmin := s.admins.IsAdmin(actorID)
	if c.UserID != actorID && !isAdmin {
		return domain.ReportCase{}, domain.RoleError(op, "คุณไม่มีสิทธิ์ปิดรายงานนี้")
	}
	if c.Status == domain.CaseClosed {
		return domain.ReportCase{}, domain.StateError(op, "%s", caseClosedText(c.CaseID))
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	closed, err := s.reportRepo.Close(storeCtx, c.CaseID, s.clock.Now())
	if err != nil {
		if errors.Is(err, domain.ErrStaleWrite) {
			return domain.ReportCase{}, domain.StateError(op, "%s", caseClosedText(c.CaseID))
		}
		s.logger.Error().Err(err).Str("case_id", c.CaseID).Msg("Failed to close report case")
		return domain.ReportCase{}, domain.ExternalError(op, err)
	}

	closedBy := "ผู้ใช้"
	if isAdmin && actorID != c.UserID {
		closedBy = "แอดมิน"
	}
	s.logger.Info().Str("case_id", c.CaseID).Str("actor_id", actorID).Msg("Report case closed")
	s.relay.Text(ctx, closed.UserID, filerClosedText(closed.CaseID))
	s.relay.Text(ctx, s.admins.NotifyID(), adminClosedText(closed, closedBy))
	s.publisher.PublishReport(closed)
	return closed, nil
}

// OpenDispute records a buyer's refund request in their open case, or in
// a new case when none is open, and relays it to the admin.
func (s *reportService) OpenDispute(ctx context.Context, userID, transactionID, text string) (domain.ReportCase, error) {
	const op = "reporting.OpenDispute"

	text, err := cleanText(op, text)
	if err != nil {
		return domain.ReportCase{}, err
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	c, found, err := s.openCase(ctx, op, userID)
	if err != nil {
		return domain.ReportCase{}, err
	}
	if found {
		c, err = s.append(ctx, op, c.CaseID, domain.CaseMessage{SenderID: userID, Role: domain.RoleUser, Text: text}, "")
	} else {
		c, err = s.create(ctx, op, userID, transactionID, text)
	}
	if err != nil {
		return domain.ReportCase{}, err
	}

	summary := c
	if summary.TransactionID == "" {
		summary.TransactionID = transactionID
	}
	s.relay.Text(ctx, s.admins.NotifyID(), adminRelayText(disputeHeader, summary, text))
	s.publisher.PublishReport(c)
	return c, nil
}

func (s *reportService) GetCase(ctx context.Context, caseID string) (domain.ReportCase, error) {
	return s.getCase(ctx, "reporting.GetCase", caseID)
}

func (s *reportService) GetHistory(ctx context.Context, userID string, limit int) []domain.ReportCase {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	cases, err := s.reportRepo.ListByUser(storeCtx, userID, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to load report history")
		return []domain.ReportCase{}
	}
	return cases
}

func (s *reportService) HasOpenReport(ctx context.Context, userID string) (domain.ReportCase, bool) {
	c, found, err := s.openCase(ctx, "reporting.HasOpenReport", userID)
	if err != nil {
		return domain.ReportCase{}, false
	}
	return c, found
}

func (s *reportService) ListOpen(ctx context.Context, limit int) []domain.ReportCase {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	cases, err := s.reportRepo.ListOpen(storeCtx, limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list open report cases")
		return []domain.ReportCase{}
	}
	return cases
}

func (s *reportService) create(ctx context.Context, op, userID, transactionID, text string) (domain.ReportCase, error) {
	now := s.clock.Now()
	c := domain.ReportCase{
		CaseID:        s.ids.CaseID(),
		UserID:        userID,
		TransactionID: transactionID,
		Messages:      []domain.CaseMessage{{SenderID: userID, Role: domain.RoleUser, Text: text, Timestamp: now}},
		Status:        domain.CaseOpen,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	if err := s.reportRepo.Create(storeCtx, c); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.ReportCase{}, err
		}
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to create report case")
		return domain.ReportCase{}, domain.ExternalError(op, err)
	}
	return c, nil
}

func (s *reportService) append(ctx context.Context, op, caseID string, msg domain.CaseMessage, adminID string) (domain.ReportCase, error) {
	msg.Timestamp = s.clock.Now()

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	c, err := s.reportRepo.AppendMessage(storeCtx, caseID, msg, adminID)
	if err != nil {
		if errors.Is(err, domain.ErrStaleWrite) {
			return domain.ReportCase{}, domain.StateError(op, "%s", caseClosedText(caseID))
		}
		s.logger.Error().Err(err).Str("case_id", caseID).Msg("Failed to append report message")
		return domain.ReportCase{}, domain.ExternalError(op, err)
	}
	return c, nil
}

func (s *reportService) getCase(ctx context.Context, op, caseID string) (domain.ReportCase, error) {
	caseID = NormalizeCaseID(caseID)
	if caseID == "" {
		return domain.ReportCase{}, domain.ValidationError(op, "กรุณาระบุ Case ID")
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	c, err := s.reportRepo.GetByID(storeCtx, caseID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ReportCase{}, domain.NotFoundError(op, "ไม่พบรายงานปัญหานี้ (Case ID: %s)", caseID)
		}
		s.logger.Error().Err(err).Str("case_id", caseID).Msg("Failed to load report case")
		return domain.ReportCase{}, domain.ExternalError(op, err)
	}
	return c, nil
}

func (s *reportService) openCase(ctx context.Context, op, userID string) (domain.ReportCase, bool, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	c, err := s.reportRepo.GetOpenByUser(storeCtx, userID)
	switch {
	case err == nil:
		return c, true, nil
	case errors.Is(err, domain.ErrNotFound):
		return domain.ReportCase{}, false, nil
	default:
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to look up open report case")
		return domain.ReportCase{}, false, domain.ExternalError(op, err)
	}
}

func (s *reportService) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.storeTimeout)
}

// NormalizeCaseID accepts the id in any letter case.
func NormalizeCaseID(caseID string) string {
	return strings.ToUpper(strings.TrimSpace(caseID))
}

func cleanText(op, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.ValidationError(op, "กรุณาระบุรายละเอียดของปัญหา")
	}
	if runes := []rune(text); len(runes) > maxMessageRunes {
		text = string(runes[:maxMessageRunes])
	}
	return text, nil
}
