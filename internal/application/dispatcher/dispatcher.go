package dispatcher

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/conmuninw/gameruleTh-Bot/internal/application/escrow"
	"github.com/conmuninw/gameruleTh-Bot/internal/application/relay"
	"github.com/conmuninw/gameruleTh-Bot/internal/application/reporting"
	"github.com/conmuninw/gameruleTh-Bot/internal/application/sessionstate"
	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
	"github.com/conmuninw/gameruleTh-Bot/internal/domain/interfaces"
	"github.com/conmuninw/gameruleTh-Bot/pkg/config"
)

type Dependencies struct {
	Escrow   escrow.IEscrowService
	Reports  reporting.IReportService
	Sessions sessionstate.IStore
	Notifier interfaces.Notifier
}

// Dispatcher routes one inbound chat event to the engine or the ticketing
// service and turns classified failures into replies to the sender.
type Dispatcher struct {
	escrow   escrow.IEscrowService
	reports  reporting.IReportService
	sessions sessionstate.IStore
	relay    *relay.Relay
	admins   config.AdminConfig
	logger   zerolog.Logger
}

func New(deps Dependencies, admins config.AdminConfig, cfg config.EscrowConfig, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		escrow:   deps.Escrow,
		reports:  deps.Reports,
		sessions: deps.Sessions,
		relay:    relay.New(deps.Notifier, cfg.NotifyTimeout, logger),
		admins:   admins,
		logger:   logger,
	}
}

// Dispatch handles ev. Rejections are answered in chat and reported as
// nil; only failures of the store or another dependency are returned.
func (d *Dispatcher) Dispatch(ctx context.Context, ev domain.InboundEvent) error {
	if ev.SenderID == "" {
		d.logger.Warn().Msg("Dropping event without sender")
		return nil
	}

	var err error
	switch {
	case ev.Postback != "":
		err = d.handlePostback(ctx, ev.SenderID, ev.Postback)
	case len(ev.Attachments) > 0:
		err = d.handleAttachment(ctx, ev)
	default:
		text := strings.TrimSpace(ev.Text)
		if text == "" {
			return nil
		}
		err = d.handleText(ctx, ev.SenderID, text)
	}
	return d.fail(ctx, ev.SenderID, err)
}

func (d *Dispatcher) handlePostback(ctx context.Context, senderID, payload string) error {
	kind, txID, ok := domain.ParsePostback(payload)
	if !ok {
		d.logger.Warn().Str("sender_id", senderID).Str("payload", payload).Msg("Ignoring unrecognized postback")
		return nil
	}

	d.logger.Debug().
		Str("sender_id", senderID).
		Str("postback", string(kind)).
		Str("transaction_id", txID).
		Msg("Handling postback")

	var err error
	switch kind {
	case domain.PostbackPayNow:
		_, err = d.escrow.RequestPayment(ctx, senderID, txID)
	case domain.PostbackPaymentConfirmed:
		err = d.awaitProof(ctx, senderID, txID, paymentProofPromptText())
	case domain.PostbackUploadProof:
		err = d.awaitProof(ctx, senderID, txID, uploadProofPromptText())
	case domain.PostbackAdminConfirmPayment:
		_, err = d.escrow.AdminVerifyPayment(ctx, senderID, txID, escrow.DecisionConfirm)
	case domain.PostbackAdminRejectPayment:
		_, err = d.escrow.AdminVerifyPayment(ctx, senderID, txID, escrow.DecisionReject)
	case domain.PostbackDelivered:
		_, err = d.escrow.ConfirmDelivery(ctx, senderID, txID)
	case domain.PostbackConfirmReceipt:
		_, err = d.escrow.ConfirmReceipt(ctx, senderID, txID)
	case domain.PostbackNotReceived:
		_, err = d.escrow.ReportNonDelivery(ctx, senderID, txID)
	case domain.PostbackRefund:
		_, err = d.escrow.RequestRefund(ctx, senderID, txID)
	case domain.PostbackCancel:
		_, err = d.escrow.Cancel(ctx, senderID, txID)
	case domain.PostbackAdminPaidSeller:
		_, err = d.escrow.ConfirmSellerPayout(ctx, senderID, txID)
	case domain.PostbackAdminPaymentProblem:
		_, err = d.escrow.ReportPayoutProblem(ctx, senderID, txID)
	case domain.PostbackReportPayment:
		if err = d.sessions.Set(senderID, domain.SessionReportingIssue, domain.SessionData{TransactionID: txID}); err == nil {
			d.relay.Text(ctx, senderID, reportPaymentPromptText(txID))
		}
	case domain.PostbackStartSelling:
		err = d.escrow.StartSellerFlow(ctx, senderID)
	case domain.PostbackHowToUse:
		d.relay.Text(ctx, senderID, howToUseText())
	case domain.PostbackReportIssue:
		d.relay.Text(ctx, senderID, reportIssueText())
	case domain.PostbackContactSupport:
		d.relay.Text(ctx, senderID, contactSupportText())
	}
	return err
}

func (d *Dispatcher) awaitProof(ctx context.Context, senderID, txID, prompt string) error {
	if err := d.sessions.Set(senderID, domain.SessionAwaitingPaymentProof, domain.SessionData{TransactionID: txID}); err != nil {
		return err
	}
	d.relay.Text(ctx, senderID, prompt)
	return nil
}

func (d *Dispatcher) handleAttachment(ctx context.Context, ev domain.InboundEvent) error {
	url := ev.ImageURL()
	if url == "" {
		d.logger.Warn().Str("sender_id", ev.SenderID).Msg("Ignoring attachment without URL")
		return nil
	}

	var txID string
	if entry, ok := d.sessions.Get(ev.SenderID); ok && entry.State == domain.SessionAwaitingPaymentProof {
		txID = entry.Data.TransactionID
	}
	_, err := d.escrow.SubmitPaymentProof(ctx, ev.SenderID, txID, url)
	return err
}

func (d *Dispatcher) handleText(ctx context.Context, senderID, text string) error {
	entry, hasSession := d.sessions.Get(senderID)

	if hasSession && entry.State == domain.SessionReportingIssue {
		d.sessions.Clear(senderID)
		_, _, err := d.reports.StartReport(ctx, senderID, text, entry.Data.TransactionID)
		return err
	}

	if cmd, ok := domain.ParseCommand(text); ok {
		return d.handleCommand(ctx, senderID, cmd, entry.Data.TransactionID)
	}

	txID, txShaped := domain.MatchTransactionID(text)
	if txShaped {
		_, err := d.escrow.GetTransaction(ctx, txID)
		switch {
		case err == nil:
			_, err = d.escrow.JoinAsBuyer(ctx, senderID, txID)
			return err
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}
	}

	if open, found := d.reports.HasOpenReport(ctx, senderID); found && !strings.HasPrefix(text, "/") {
		_, err := d.reports.AddUserMessage(ctx, senderID, open.CaseID, text)
		return err
	}

	if hasSession && entry.State == domain.SessionAwaitingGameDetails {
		details, err := escrow.ParseGameDetails(text)
		if err != nil {
			return err
		}
		_, err = d.escrow.CreateTransaction(ctx, senderID, details)
		return err
	}

	if hasSession && entry.State == domain.SessionAwaitingBankInfo {
		_, err := d.escrow.SubmitSellerBankInfo(ctx, senderID, entry.Data.TransactionID, text)
		return err
	}
	if escrow.LooksLikeBankInfo(text) {
		_, err := d.escrow.SubmitSellerBankInfo(ctx, senderID, "", text)
		return err
	}

	if txShaped {
		d.relay.Text(ctx, senderID, transactionNotFoundText(txID))
		return nil
	}
	d.relay.Send(ctx, senderID, menuMessage())
	return nil
}

// fail answers the sender for a classified rejection and passes anything
// else back to the caller.
func (d *Dispatcher) fail(ctx context.Context, senderID string, err error) error {
	if err == nil {
		return nil
	}

	if msg := domain.UserMessage(err); msg != "" {
		d.logger.Debug().Err(err).Str("sender_id", senderID).Msg("Request rejected")
		d.relay.Text(ctx, senderID, errorText(msg))
		return nil
	}

	d.logger.Error().Err(err).Str("sender_id", senderID).Msg("Failed to handle event")
	d.relay.Text(ctx, senderID, genericErrorText)
	return err
}
