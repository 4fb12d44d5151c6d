package escrow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/conmuninw/gameruleTh-Bot/internal/application/relay"
	"github.com/conmuninw/gameruleTh-Bot/internal/application/sessionstate"
	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
	"github.com/conmuninw/gameruleTh-Bot/internal/domain/interfaces"
	"github.com/conmuninw/gameruleTh-Bot/internal/repositories/transactionrepo"
	"github.com/conmuninw/gameruleTh-Bot/pkg/clock"
	"github.com/conmuninw/gameruleTh-Bot/pkg/config"
)

// Dependencies are the collaborators the engine talks to. Publisher and
// Disputes may be nil.
type Dependencies struct {
	Transactions transactionrepo.ITransactionRepository
	Sessions     sessionstate.IStore
	Notifier     interfaces.Notifier
	Renderer     interfaces.PaymentRenderer
	Payees       interfaces.PayeeResolver
	IDs          interfaces.IDGenerator
	Disputes     interfaces.DisputeEscalator
	Publisher    interfaces.EventPublisher
	Clock        clock.Clock
}

type escrowService struct {
	transactionRepo transactionrepo.ITransactionRepository
	sessions        sessionstate.IStore
	relay           *relay.Relay
	renderer        interfaces.PaymentRenderer
	payees          interfaces.PayeeResolver
	ids             interfaces.IDGenerator
	disputes        interfaces.DisputeEscalator
	publisher       interfaces.EventPublisher
	clock           clock.Clock
	admins          config.AdminConfig
	config          config.EscrowConfig
	logger          zerolog.Logger

	escalationMu sync.Mutex
	escalations  map[string]*clock.Timer
}

func New(deps Dependencies, admins config.AdminConfig, cfg config.EscrowConfig, logger zerolog.Logger) IEscrowService {
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 5 * time.Second
	}
	if cfg.MaxWriteAttempts <= 0 {
		cfg.MaxWriteAttempts = 3
	}
	if cfg.EscalationWindow <= 0 {
		cfg.EscalationWindow = 5 * time.Minute
	}
	if cfg.RetentionWindow <= 0 {
		cfg.RetentionWindow = 24 * time.Hour
	}
	if cfg.RetentionInterval <= 0 {
		cfg.RetentionInterval = 10 * time.Minute
	}

	return &escrowService{
		transactionRepo: deps.Transactions,
		sessions:        deps.Sessions,
		relay:           relay.New(deps.Notifier, cfg.NotifyTimeout, logger),
		renderer:        deps.Renderer,
		payees:          deps.Payees,
		ids:             deps.IDs,
		disputes:        deps.Disputes,
		publisher:       relay.Publisher(deps.Publisher),
		clock:           deps.Clock,
		admins:          admins,
		config:          cfg,
		logger:          logger,
		escalations:     make(map[string]*clock.Timer),
	}
}

func (s *escrowService) StartSellerFlow(ctx context.Context, sellerID string) error {
	if err := s.sessions.Set(sellerID, domain.SessionAwaitingGameDetails, domain.SessionData{}); err != nil {
		return err
	}
	s.relay.Text(ctx, sellerID, sellerFlowText())
	return nil
}

func (s *escrowService) CreateTransaction(ctx context.Context, sellerID string, details domain.GameDetails) (domain.Transaction, error) {
	const op = "escrow.CreateTransaction"

	if sellerID == "" {
		return domain.Transaction{}, domain.ValidationError(op, "missing seller id")
	}
	if err := validateGameDetails(op, details); err != nil {
		return domain.Transaction{}, err
	}

	now := s.clock.Now()
	tx := domain.Transaction{
		TransactionID: s.ids.TransactionID(),
		SellerID:      sellerID,
		GameDetails:   details,
		Status:        domain.StatusWaitingBuyer,
		CreatedAt:     now,
		UpdatedAt:     now,
		Version:       1,
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	if err := s.transactionRepo.Create(storeCtx, tx); err != nil {
		s.logger.Error().Err(err).Str("seller_id", sellerID).Msg("Failed to create transaction")
		return domain.Transaction{}, domain.ExternalError(op, err)
	}

	s.logger.Info().
		Str("transaction_id", tx.TransactionID).
		Str("seller_id", sellerID).
		Int64("price", details.Price).
		Msg("Transaction created")

	s.setSession(sellerID, domain.SessionTransactionCreated, tx.TransactionID)
	s.relay.Text(ctx, sellerID, createdText(tx))
	s.relay.Text(ctx, sellerID, tx.TransactionID)
	s.publisher.PublishTransaction(tx)
	return tx, nil
}

func (s *escrowService) JoinAsBuyer(ctx context.Context, buyerID, transactionID string) (domain.Transaction, error) {
	const op = "escrow.JoinAsBuyer"

	if buyerID == "" {
		return domain.Transaction{}, domain.ValidationError(op, "missing buyer id")
	}

	rejoined := false
	tx, changed, err := s.mutate(ctx, op, transactionID, func(tx *domain.Transaction) (bool, error) {
		if err := requireLive(op, tx); err != nil {
			return false, err
		}
		if tx.SellerID == buyerID {
			return false, domain.RoleError(op, "คุณเป็นผู้ขายในธุรกรรมนี้ ไม่สามารถเป็นผู้ซื้อได้")
		}
		if tx.BuyerID == buyerID {
			rejoined = true
			return false, nil
		}
		if tx.BuyerID != "" {
			return false, domain.ConflictError(op, tx.BuyerID, "มีผู้ซื้อในธุรกรรมนี้แล้ว")
		}
		if err := requireStatus(op, tx, domain.StatusWaitingBuyer); err != nil {
			return false, err
		}
		tx.BuyerID = buyerID
		tx.Status = domain.StatusWaitingPayment
		return true, nil
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	if rejoined {
		if tx.Status == domain.StatusWaitingPayment {
			s.relay.Send(ctx, buyerID, domain.ButtonMessage(buyerRejoinedText(tx),
				domain.PostbackButton("💳 ชำระเงิน", domain.PostbackPayNow, tx.TransactionID)))
		} else {
			s.relay.Text(ctx, buyerID, "✅ คุณได้เข้าร่วมธุรกรรมนี้แล้ว\n\n📌 สถานะ: "+statusLabel(tx.Status))
		}
		return tx, nil
	}

	if changed {
		s.logger.Info().Str("transaction_id", tx.TransactionID).Str("buyer_id", buyerID).Msg("Buyer joined transaction")
		s.setSession(buyerID, domain.SessionBuyerJoined, tx.TransactionID)
		s.relay.Send(ctx, buyerID, domain.ButtonMessage(buyerJoinedText(tx),
			domain.PostbackButton("💳 ชำระเงิน", domain.PostbackPayNow, tx.TransactionID)))
		s.relay.Text(ctx, tx.SellerID, sellerBuyerJoinedText(tx))
		s.publisher.PublishTransaction(tx)
	}
	return tx, nil
}

func (s *escrowService) RequestPayment(ctx context.Context, buyerID, transactionID string) (domain.PaymentReference, error) {
	const op = "escrow.RequestPayment"

	tx, changed, err := s.mutate(ctx, op, transactionID, func(tx *domain.Transaction) (bool, error) {
		if err := requireStatus(op, tx, domain.StatusWaitingPayment); err != nil {
			return false, err
		}
		if err := requireBuyer(op, tx, buyerID); err != nil {
			return false, err
		}
		if tx.PaymentAmount != nil {
			return false, nil
		}
		amount := tx.TotalAmount()
		tx.PaymentAmount = &amount
		return true, nil
	})
	if err != nil {
		return domain.PaymentReference{}, err
	}
	if changed {
		s.publisher.PublishTransaction(tx)
	}

	amount := paymentAmount(tx)
	payeeCtx, cancel := s.storeContext(ctx)
	payee := s.payees.EscrowPayee(payeeCtx)
	cancel()

	ref, err := s.renderer.Render(payee, amount, tx.TransactionID)
	if err != nil {
		s.logger.Error().Err(err).Str("transaction_id", tx.TransactionID).Msg("Failed to render payment reference")
		return domain.PaymentReference{}, domain.ExternalError(op, err)
	}

	s.relay.Send(ctx, buyerID, domain.OutboundMessage{
		Text:     paymentRequestText(amount, ref),
		ImageURL: ref.URL,
		Buttons: []domain.Button{
			domain.PostbackButton("✅ ฉันชำระเงินแล้ว", domain.PostbackPaymentConfirmed, tx.TransactionID),
			domain.URLButton("📱 เปิด QR Code", ref.URL),
			domain.PostbackButton("📞 รายงานปัญหา", domain.PostbackReportPayment, tx.TransactionID),
		},
	})
	return ref, nil
}

func (s *escrowService) SubmitPaymentProof(ctx context.Context, buyerID, transactionID, proofURL string) (domain.Transaction, error) {
	const op = "escrow.SubmitPaymentProof"

	if proofURL == "" {
		return domain.Transaction{}, domain.ValidationError(op, "กรุณาส่งภาพหลักฐานการโอนเงิน")
	}
	if transactionID == "" {
		latest, err := s.latestForBuyer(ctx, op, buyerID)
		if err != nil {
			return domain.Transaction{}, err
		}
		transactionID = latest.TransactionID
	}

	tx, _, err := s.mutate(ctx, op, transactionID, func(tx *domain.Transaction) (bool, error) {
		if err := requireStatus(op, tx, domain.StatusWaitingPayment); err != nil {
			return false, err
		}
		if err := requireBuyer(op, tx, buyerID); err != nil {
			return false, err
		}
		now := s.clock.Now()
		if tx.PaymentAmount == nil {
			amount := tx.TotalAmount()
			tx.PaymentAmount = &amount
		}
		tx.PaymentProof = &domain.PaymentProof{URL: proofURL, UploadedAt: now}
		tx.PaymentVerification = &domain.PaymentVerification{Verified: false, Notes: "รอการตรวจสอบ"}
		tx.Status = domain.StatusPaymentVerification
		return true, nil
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	s.logger.Info().Str("transaction_id", tx.TransactionID).Str("buyer_id", buyerID).Msg("Payment proof submitted")
	s.sessions.Clear(buyerID)
	s.relay.Send(ctx, s.admins.NotifyID(), domain.OutboundMessage{
		Text:     adminProofText(tx),
		ImageURL: proofURL,
		Buttons: []domain.Button{
			domain.PostbackButton("✅ ยืนยันการชำระเงิน", domain.PostbackAdminConfirmPayment, tx.TransactionID),
			domain.PostbackButton("❌ ไม่ถูกต้อง", domain.PostbackAdminRejectPayment, tx.TransactionID),
		},
	})
	s.relay.Text(ctx, buyerID, proofReceivedText(tx))
	s.publisher.PublishTransaction(tx)
	return tx, nil
}

func (s *escrowService) AdminVerifyPayment(ctx context.Context, adminID, transactionID string, decision Decision) (domain.Transaction, error) {
	const op = "escrow.AdminVerifyPayment"

	if err := s.requireAdmin(op, adminID); err != nil {
		return domain.Transaction{}, err
	}
	if !decision.Valid() {
		return domain.Transaction{}, domain.ValidationError(op, "unknown decision %q", decision)
	}

	tx, changed, err := s.mutate(ctx, op, transactionID, func(tx *domain.Transaction) (bool, error) {
		if decision == DecisionConfirm && tx.Status.PaymentSettled() {
			return false, nil
		}
		if err := requireStatus(op, tx, domain.StatusPaymentVerification); err != nil {
			return false, err
		}

		now := s.clock.Now()
		if decision == DecisionConfirm {
			tx.Status = domain.StatusPaid
			tx.PaidAt = &now
			tx.PaymentVerification = &domain.PaymentVerification{
				Verified:   true,
				VerifiedBy: adminID,
				VerifiedAt: &now,
				Notes:      "การชำระเงินได้รับการยืนยันโดยแอดมิน",
			}
			return true, nil
		}

		tx.Status = domain.StatusWaitingPayment
		tx.PaymentVerification = &domain.PaymentVerification{
			Verified:   false,
			VerifiedBy: adminID,
			VerifiedAt: &now,
			Notes:      "การชำระเงินไม่ถูกต้อง",
		}
		return true, nil
	})
	if err != nil {
		return domain.Transaction{}, err
	}
	if !changed {
		s.logger.Info().Str("transaction_id", tx.TransactionID).Msg("Payment already confirmed, ignoring repeat confirmation")
		return tx, nil
	}

	s.logger.Info().
		Str("transaction_id", tx.TransactionID).
		Str("admin_id", adminID).
		Str("decision", string(decision)).
		Msg("Payment verified")

	if decision == DecisionConfirm {
		s.relay.Send(ctx, tx.SellerID, domain.ButtonMessage(sellerPaidText(tx),
			domain.PostbackButton("📦 มอบแล้ว", domain.PostbackDelivered, tx.TransactionID)))
		s.relay.Text(ctx, tx.BuyerID, buyerPaidText(tx))
		s.relay.Text(ctx, adminID, adminConfirmedText(tx))
	} else {
		s.setSession(tx.BuyerID, domain.SessionAwaitingPaymentProof, tx.TransactionID)
		s.relay.Send(ctx, tx.BuyerID, domain.ButtonMessage(buyerRejectedText(tx),
			domain.PostbackButton("📸 ส่งหลักฐานใหม่", domain.PostbackUploadProof, tx.TransactionID),
			domain.PostbackButton("📞 รายงานปัญหา", domain.PostbackReportPayment, tx.TransactionID)))
		s.relay.Text(ctx, adminID, adminRejectedText(tx))
	}
	s.publisher.PublishTransaction(tx)
	return tx, nil
}

func (s *escrowService) ConfirmDelivery(ctx context.Context, sellerID, transactionID string) (domain.Transaction, error) {
	const op = "escrow.ConfirmDelivery"

	tx, _, err := s.mutate(ctx, op, transactionID, func(tx *domain.Transaction) (bool, error) {
		if err := requireStatus(op, tx, domain.StatusPaid); err != nil {
			return false, err
		}
		if err := requireSeller(op, tx, sellerID); err != nil {
			return false, err
		}
		now := s.clock.Now()
		tx.Status = domain.StatusDelivering
		tx.DeliveredAt = &now
		return true, nil
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	s.logger.Info().Str("transaction_id", tx.TransactionID).Msg("Seller confirmed delivery")
	s.relay.Send(ctx, tx.BuyerID, domain.ButtonMessage(buyerDeliveredText(tx),
		domain.PostbackButton("✅ ยืนยันรับบัญชี", domain.PostbackConfirmReceipt, tx.TransactionID),
		domain.PostbackButton("❌ ยังไม่ได้รับ", domain.PostbackNotReceived, tx.TransactionID)))
	s.relay.Text(ctx, sellerID, sellerDeliveredText())
	s.publisher.PublishTransaction(tx)
	return tx, nil
}

func (s *escrowService) ConfirmReceipt(ctx context.Context, buyerID, transactionID string) (domain.Transaction, error) {
	const op = "escrow.ConfirmReceipt"

	tx, _, err := s.mutate(ctx, op, transactionID, func(tx *domain.Transaction) (bool, error) {
		if err := requireStatus(op, tx, domain.StatusDelivering); err != nil {
			return false, err
		}
		if err := requireBuyer(op, tx, buyerID); err != nil {
			return false, err
		}
		tx.Status = domain.StatusAwaitingSellerPayment
		return true, nil
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	s.stopEscalation(tx.TransactionID)
	s.logger.Info().Str("transaction_id", tx.TransactionID).Msg("Buyer confirmed receipt")
	s.relay.Text(ctx, buyerID, buyerReceiptText(tx))
	s.relay.Text(ctx, tx.SellerID, sellerReceiptText(tx))
	s.setSession(tx.SellerID, domain.SessionAwaitingBankInfo, tx.TransactionID)
	s.relay.Text(ctx, tx.SellerID, bankInfoRequestText())
	s.publisher.PublishTransaction(tx)
	return tx, nil
}

func (s *escrowService) ReportNonDelivery(ctx context.Context, buyerID, transactionID string) (domain.Transaction, error) {
	const op = "escrow.ReportNonDelivery"

	tx, err := s.load(ctx, op, transactionID)
	if err != nil {
		return domain.Transaction{}, err
	}
	if err := requireStatus(op, &tx, domain.StatusDelivering); err != nil {
		return domain.Transaction{}, err
	}
	if err := requireBuyer(op, &tx, buyerID); err != nil {
		return domain.Transaction{}, err
	}

	s.logger.Warn().Str("transaction_id", tx.TransactionID).Msg("Buyer reported non-delivery")
	s.relay.Text(ctx, tx.SellerID, sellerNotReceivedText(tx))
	s.relay.Send(ctx, buyerID, domain.ButtonMessage(buyerNotReceivedText(),
		domain.PostbackButton("💸 ขอคืนเงิน", domain.PostbackRefund, tx.TransactionID),
		domain.PostbackButton("✅ ยืนยันรับบัญชี", domain.PostbackConfirmReceipt, tx.TransactionID)))
	s.scheduleEscalation(tx.TransactionID)
	return tx, nil
}

func (s *escrowService) RequestRefund(ctx context.Context, buyerID, transactionID string) (domain.Transaction, error) {
	const op = "escrow.RequestRefund"

	tx, err := s.load(ctx, op, transactionID)
	if err != nil {
		return domain.Transaction{}, err
	}
	if err := requireStatus(op, &tx, domain.StatusDelivering); err != nil {
		return domain.Transaction{}, err
	}
	if err := requireBuyer(op, &tx, buyerID); err != nil {
		return domain.Transaction{}, err
	}

	s.stopEscalation(tx.TransactionID)
	s.logger.Warn().Str("transaction_id", tx.TransactionID).Msg("Buyer requested refund")
	s.relay.Text(ctx, tx.SellerID, sellerRefundText(tx))
	s.relay.Send(ctx, buyerID, domain.ButtonMessage(buyerRefundText(),
		domain.PostbackButton("✅ ยืนยันรับบัญชี", domain.PostbackConfirmReceipt, tx.TransactionID)))
	s.relay.Send(ctx, s.admins.NotifyID(), domain.ButtonMessage(adminRefundText(tx),
		domain.PostbackButton("❌ ยกเลิกธุรกรรม", domain.PostbackCancel, tx.TransactionID)))

	if s.disputes != nil {
		if _, err := s.disputes.OpenDispute(ctx, buyerID, tx.TransactionID, disputeText(tx)); err != nil {
			s.logger.Error().Err(err).Str("transaction_id", tx.TransactionID).Msg("Failed to open refund dispute")
		}
	}
	return tx, nil
}

func (s *escrowService) SubmitSellerBankInfo(ctx context.Context, sellerID, transactionID, raw string) (domain.Transaction, error) {
	const op = "escrow.SubmitSellerBankInfo"

	bank, err := ParseBankInfo(raw)
	if err != nil {
		return domain.Transaction{}, err
	}
	if transactionID == "" {
		latest, err := s.latestForSeller(ctx, op, sellerID)
		if err != nil {
			return domain.Transaction{}, err
		}
		transactionID = latest.TransactionID
	}

	tx, _, err := s.mutate(ctx, op, transactionID, func(tx *domain.Transaction) (bool, error) {
		if err := requireStatus(op, tx, domain.StatusAwaitingSellerPayment); err != nil {
			return false, err
		}
		if err := requireSeller(op, tx, sellerID); err != nil {
			return false, err
		}
		info := bank
		tx.SellerBankInfo = &info
		return true, nil
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	s.sessions.Clear(sellerID)

	var ref *domain.PaymentReference
	rendered, err := s.renderer.Render(bank.PromptPayNumber, tx.PayoutAmount(), tx.TransactionID)
	if err != nil {
		s.logger.Warn().Err(err).Str("transaction_id", tx.TransactionID).Msg("Seller payout QR unavailable")
	} else {
		ref = &rendered
	}

	buttons := []domain.Button{
		domain.PostbackButton("✅ จ่ายเงินเรียบร้อย", domain.PostbackAdminPaidSeller, tx.TransactionID),
		domain.PostbackButton("❌ มีปัญหา", domain.PostbackAdminPaymentProblem, tx.TransactionID),
	}
	adminMsg := domain.OutboundMessage{Text: adminPayoutText(tx, ref)}
	if ref != nil {
		adminMsg.ImageURL = ref.URL
		buttons = append(buttons, domain.URLButton("📱 เปิด QR Code", ref.URL))
	}
	adminMsg.Buttons = buttons

	s.logger.Info().Str("transaction_id", tx.TransactionID).Msg("Seller submitted payout details")
	s.relay.Send(ctx, s.admins.NotifyID(), adminMsg)
	s.relay.Text(ctx, sellerID, sellerBankInfoText(tx))
	s.publisher.PublishTransaction(tx)
	return tx, nil
}

func (s *escrowService) ReportPayoutProblem(ctx context.Context, adminID, transactionID string) (domain.Transaction, error) {
	const op = "escrow.ReportPayoutProblem"

	if err := s.requireAdmin(op, adminID); err != nil {
		return domain.Transaction{}, err
	}
	tx, err := s.load(ctx, op, transactionID)
	if err != nil {
		return domain.Transaction{}, err
	}

	s.logger.Warn().Str("transaction_id", tx.TransactionID).Str("admin_id", adminID).Msg("Admin flagged a payout problem")
	s.relay.Text(ctx, adminID, adminPayoutProblemText(tx))
	return tx, nil
}

func (s *escrowService) Cancel(ctx context.Context, adminID, transactionID string) (domain.Transaction, error) {
	const op = "escrow.Cancel"

	if err := s.requireAdmin(op, adminID); err != nil {
		return domain.Transaction{}, err
	}

	var previous domain.TransactionStatus
	tx, _, err := s.mutate(ctx, op, transactionID, func(tx *domain.Transaction) (bool, error) {
		if err := requireLive(op, tx); err != nil {
			return false, err
		}
		if !tx.Status.Cancellable() {
			return false, domain.StateError(op, "ธุรกรรมอยู่ในสถานะ %s ไม่สามารถยกเลิกได้", statusLabel(tx.Status))
		}
		previous = tx.Status
		now := s.clock.Now()
		tx.Status = domain.StatusCancelled
		tx.CancelledAt = &now
		return true, nil
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	s.stopEscalation(tx.TransactionID)
	s.logger.Info().
		Str("transaction_id", tx.TransactionID).
		Str("admin_id", adminID).
		Str("previous_status", string(previous)).
		Msg("Transaction cancelled")

	s.relay.Text(ctx, tx.SellerID, cancelledText(tx))
	if tx.BuyerID != "" {
		s.relay.Text(ctx, tx.BuyerID, cancelledText(tx))
	}
	summary := tx
	summary.Status = previous
	s.relay.Text(ctx, adminID, adminCancelledText(summary))
	s.publisher.PublishTransaction(tx)
	return tx, nil
}

func (s *escrowService) ConfirmSellerPayout(ctx context.Context, adminID, transactionID string) (domain.Transaction, error) {
	const op = "escrow.ConfirmSellerPayout"

	if err := s.requireAdmin(op, adminID); err != nil {
		return domain.Transaction{}, err
	}

	tx, _, err := s.mutate(ctx, op, transactionID, func(tx *domain.Transaction) (bool, error) {
		if err := requireStatus(op, tx, domain.StatusAwaitingSellerPayment); err != nil {
			return false, err
		}
		now := s.clock.Now()
		tx.Status = domain.StatusCompleted
		tx.CompletedAt = &now
		return true, nil
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	s.logger.Info().
		Str("transaction_id", tx.TransactionID).
		Int64("payout", tx.PayoutAmount()).
		Msg("Seller payout confirmed, transaction completed")
	s.relay.Text(ctx, tx.SellerID, sellerPayoutText(tx))
	s.relay.Text(ctx, adminID, adminPayoutDoneText(tx))
	s.publisher.PublishTransaction(tx)
	return tx, nil
}

func (s *escrowService) GetTransaction(ctx context.Context, transactionID string) (domain.Transaction, error) {
	return s.load(ctx, "escrow.GetTransaction", transactionID)
}

func (s *escrowService) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int, error) {
	const op = "escrow.ListTransactions"

	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, domain.ValidationError(op, "unknown status %q", filter.Status)
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	txs, total, err := s.transactionRepo.List(storeCtx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list transactions")
		return nil, 0, domain.ExternalError(op, err)
	}
	return txs, total, nil
}

func (s *escrowService) Stats(ctx context.Context) (domain.TransactionStats, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	stats, err := s.transactionRepo.Stats(storeCtx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load transaction stats")
		return domain.TransactionStats{}, domain.ExternalError("escrow.Stats", err)
	}
	return stats, nil
}

func (s *escrowService) requireAdmin(op, actorID string) error {
	if !s.admins.IsAdmin(actorID) {
		return domain.RoleError(op, "คำสั่งนี้สำหรับแอดมินเท่านั้น")
	}
	return nil
}

func (s *escrowService) setSession(userID string, state domain.SessionTag, transactionID string) {
	if err := s.sessions.Set(userID, state, domain.SessionData{TransactionID: transactionID}); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Str("state", string(state)).Msg("Failed to set session state")
	}
}

func (s *escrowService) latestForBuyer(ctx context.Context, op, buyerID string) (domain.Transaction, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	tx, err := s.transactionRepo.GetLatestForBuyer(storeCtx, buyerID, domain.StatusWaitingPayment)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Transaction{}, domain.NotFoundError(op, "ไม่พบธุรกรรมที่รอการชำระเงิน")
		}
		s.logger.Error().Err(err).Str("buyer_id", buyerID).Msg("Failed to find buyer transaction")
		return domain.Transaction{}, domain.ExternalError(op, err)
	}
	return tx, nil
}

func (s *escrowService) latestForSeller(ctx context.Context, op, sellerID string) (domain.Transaction, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	txs, _, err := s.transactionRepo.List(storeCtx, domain.TransactionFilter{
		SellerID: sellerID,
		Status:   domain.StatusAwaitingSellerPayment,
		Limit:    1,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("seller_id", sellerID).Msg("Failed to find seller transaction")
		return domain.Transaction{}, domain.ExternalError(op, err)
	}
	if len(txs) == 0 {
		return domain.Transaction{}, domain.NotFoundError(op, "ไม่พบธุรกรรมที่รอโอนเงินให้คุณ")
	}
	return txs[0], nil
}
