package escrow

import "context"

func (s *escrowService) StartRetentionSweep(ctx context.Context) error {
	s.logger.Info().
		Dur("window", s.config.RetentionWindow).
		Dur("interval", s.config.RetentionInterval).
		Msg("Starting transaction retention sweep")

	ticker := s.clock.NewTicker(s.config.RetentionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Transaction retention sweep stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := s.sweepExpired(ctx); err != nil {
				s.logger.Error().Err(err).Msg("Failed to sweep expired transactions")
			}
		}
	}
}

func (s *escrowService) sweepExpired(ctx context.Context) error {
	cutoff := s.clock.Now().Add(-s.config.RetentionWindow)

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	removed, err := s.transactionRepo.DeleteCreatedBefore(storeCtx, cutoff)
	if err != nil {
		return err
	}
	if removed > 0 {
		s.logger.Info().Int64("removed", removed).Time("cutoff", cutoff).Msg("Removed expired transactions")
	}
	return nil
}
