package escrow

import (
	"context"
	"errors"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
)

// mutateFunc applies one guarded change to tx in place. It reports false
// when there is nothing to write.
type mutateFunc func(tx *domain.Transaction) (bool, error)

// mutate reads the transaction, applies fn and writes it back under the
// version read. When a concurrent writer wins, the read, the guards and
// the change are all redone against the fresh row.
func (s *escrowService) mutate(ctx context.Context, op, transactionID string, fn mutateFunc) (domain.Transaction, bool, error) {
	for attempt := 1; attempt <= s.config.MaxWriteAttempts; attempt++ {
		current, err := s.load(ctx, op, transactionID)
		if err != nil {
			return domain.Transaction{}, false, err
		}

		next := current.Clone()
		changed, err := fn(&next)
		if err != nil {
			return domain.Transaction{}, false, err
		}
		if !changed {
			return current, false, nil
		}
		if !next.Status.Valid() {
			return domain.Transaction{}, false, domain.StateError(op, "invalid status %q", next.Status)
		}
		next.UpdatedAt = s.clock.Now()

		updated, err := s.update(ctx, next)
		if err == nil {
			return updated, true, nil
		}
		if !errors.Is(err, domain.ErrStaleWrite) {
			s.logger.Error().Err(err).Str("transaction_id", transactionID).Str("op", op).Msg("Failed to update transaction")
			return domain.Transaction{}, false, domain.ExternalError(op, err)
		}

		s.logger.Debug().
			Str("transaction_id", transactionID).
			Str("op", op).
			Int("attempt", attempt).
			Msg("Concurrent update detected, retrying")
	}

	s.logger.Warn().Str("transaction_id", transactionID).Str("op", op).Msg("Giving up after repeated concurrent updates")
	return domain.Transaction{}, false, domain.ConflictError(op, transactionID, "ธุรกรรมมีการเปลี่ยนแปลงพร้อมกัน กรุณาลองใหม่อีกครั้ง")
}

func (s *escrowService) load(ctx context.Context, op, transactionID string) (domain.Transaction, error) {
	if transactionID == "" {
		return domain.Transaction{}, domain.ValidationError(op, "ไม่พบ Transaction ID")
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	tx, err := s.transactionRepo.GetByID(storeCtx, transactionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Transaction{}, domain.NotFoundError(op, "ไม่พบธุรกรรม %s ในระบบ", transactionID)
		}
		s.logger.Error().Err(err).Str("transaction_id", transactionID).Msg("Failed to load transaction")
		return domain.Transaction{}, domain.ExternalError(op, err)
	}
	return tx, nil
}

func (s *escrowService) update(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	return s.transactionRepo.Update(storeCtx, tx)
}

// storeContext bounds a store call. Once started, a write is not aborted
// by the caller going away.
func (s *escrowService) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.config.StoreTimeout)
}

// requireLive rejects completed and cancelled transactions.
func requireLive(op string, tx *domain.Transaction) error {
	switch tx.Status {
	case domain.StatusCompleted:
		return domain.StateError(op, "ธุรกรรม %s เสร็จสิ้นแล้ว", tx.TransactionID)
	case domain.StatusCancelled:
		return domain.StateError(op, "ธุรกรรม %s ถูกยกเลิกแล้ว", tx.TransactionID)
	}
	return nil
}

func requireStatus(op string, tx *domain.Transaction, want domain.TransactionStatus) error {
	if err := requireLive(op, tx); err != nil {
		return err
	}
	if tx.Status != want {
		return domain.StateError(op, "ธุรกรรมอยู่ในสถานะ %s ไม่สามารถดำเนินการนี้ได้", statusLabel(tx.Status))
	}
	return nil
}

func requireBuyer(op string, tx *domain.Transaction, actorID string) error {
	if actorID == "" || tx.BuyerID != actorID {
		return domain.RoleError(op, "เฉพาะผู้ซื้อในธุรกรรมนี้เท่านั้นที่ทำรายการนี้ได้")
	}
	return nil
}

func requireSeller(op string, tx *domain.Transaction, actorID string) error {
	if actorID == "" || tx.SellerID != actorID {
		return domain.RoleError(op, "เฉพาะผู้ขายในธุรกรรมนี้เท่านั้นที่ทำรายการนี้ได้")
	}
	return nil
}
