package dispatcher

import (
	"context"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
)

const (
	userHistoryLimit = 5
	adminOpenLimit   = 10
)

func (d *Dispatcher) handleCommand(ctx context.Context, senderID string, cmd domain.Command, sessionTxID string) error {
	switch cmd.Kind {
	case domain.CommandStartSelling:
		return d.escrow.StartSellerFlow(ctx, senderID)
	case domain.CommandReport:
		return d.report(ctx, senderID, cmd.Rest, sessionTxID)
	case domain.CommandReply:
		return d.reply(ctx, senderID, cmd)
	case domain.CommandListReports:
		d.listReports(ctx, senderID)
		return nil
	case domain.CommandClose:
		return d.closeReport(ctx, senderID, cmd)
	}
	return nil
}

// report opens a case. The transaction comes from the sender's session or
// from an id mentioned in the text, and is dropped when the sender is not
// a party to it.
func (d *Dispatcher) report(ctx context.Context, senderID, text, sessionTxID string) error {
	if text == "" {
		d.relay.Text(ctx, senderID, reportUsageText)
		return nil
	}

	txID := sessionTxID
	if txID == "" {
		txID = domain.FindTransactionID(text)
	}
	if txID != "" {
		tx, err := d.escrow.GetTransaction(ctx, txID)
		if err != nil || (tx.SellerID != senderID && tx.BuyerID != senderID) {
			if err != nil && domain.KindOf(err) == domain.KindExternal {
				return err
			}
			d.relay.Text(ctx, senderID, unrelatedTransactionText(txID))
			txID = ""
		}
	}

	_, _, err := d.reports.StartReport(ctx, senderID, text, txID)
	return err
}

func (d *Dispatcher) reply(ctx context.Context, senderID string, cmd domain.Command) error {
	if !d.admins.IsAdmin(senderID) {
		d.relay.Text(ctx, senderID, adminOnlyText)
		return nil
	}
	if len(cmd.Args) < 2 {
		d.relay.Text(ctx, senderID, replyUsageText)
		return nil
	}

	caseID := cmd.Args[0]
	text := cmd.Rest[len(caseID):]
	_, err := d.reports.AddAdminMessage(ctx, senderID, caseID, text)
	return err
}

// listReports shows the sender's own history, or every open case for an
// admin.
func (d *Dispatcher) listReports(ctx context.Context, senderID string) {
	if d.admins.IsAdmin(senderID) {
		cases := d.reports.ListOpen(ctx, adminOpenLimit)
		if len(cases) == 0 {
			d.relay.Text(ctx, senderID, noOpenReportsText)
			return
		}
		d.relay.Text(ctx, senderID, historyText("📋 รายงานที่เปิดอยู่", cases))
		return
	}

	cases := d.reports.GetHistory(ctx, senderID, userHistoryLimit)
	if len(cases) == 0 {
		d.relay.Text(ctx, senderID, noReportsText)
		return
	}
	d.relay.Text(ctx, senderID, historyText("📋 ประวัติรายงานปัญหา", cases))
}

func (d *Dispatcher) closeReport(ctx context.Context, senderID string, cmd domain.Command) error {
	var caseID string
	if len(cmd.Args) > 0 {
		caseID = cmd.Args[0]
	} else {
		open, found := d.reports.HasOpenReport(ctx, senderID)
		if !found {
			d.relay.Text(ctx, senderID, noOpenCaseText)
			return nil
		}
		caseID = open.CaseID
	}

	_, err := d.reports.CloseReport(ctx, senderID, caseID)
	return err
}
