package escrow

import (
	"context"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
	"github.com/conmuninw/gameruleTh-Bot/pkg/clock"
)

// scheduleEscalation reminds the admin about a non-delivery report if the
// transaction is still being delivered when the escalation window ends.
// It never changes the transaction.
func (s *escrowService) scheduleEscalation(transactionID string) {
	s.escalationMu.Lock()
	defer s.escalationMu.Unlock()

	if existing, ok := s.escalations[transactionID]; ok {
		existing.Stop()
	}

	var timer *clock.Timer
	timer = s.clock.AfterFunc(s.config.EscalationWindow, func() {
		s.escalationMu.Lock()
		if s.escalations[transactionID] == timer {
			delete(s.escalations, transactionID)
		}
		s.escalationMu.Unlock()

		s.escalate(transactionID)
	})
	s.escalations[transactionID] = timer
}

func (s *escrowService) stopEscalation(transactionID string) {
	s.escalationMu.Lock()
	defer s.escalationMu.Unlock()

	if timer, ok := s.escalations[transactionID]; ok {
		timer.Stop()
		delete(s.escalations, transactionID)
	}
}

func (s *escrowService) escalate(transactionID string) {
	ctx := context.Background()

	tx, err := s.load(ctx, "escrow.escalate", transactionID)
	if err != nil {
		s.logger.Warn().Err(err).Str("transaction_id", transactionID).Msg("Skipping escalation for unreadable transaction")
		return
	}
	if tx.Status != domain.StatusDelivering {
		return
	}

	s.logger.Warn().Str("transaction_id", transactionID).Msg("Escalating unresolved non-delivery report")
	s.relay.Send(ctx, s.admins.NotifyID(), domain.ButtonMessage(adminEscalationText(tx),
		domain.PostbackButton("❌ ยกเลิกธุรกรรม", domain.PostbackCancel, tx.TransactionID)))
}
