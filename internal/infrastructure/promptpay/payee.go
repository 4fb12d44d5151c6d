package promptpay

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain/interfaces"
	"github.com/conmuninw/gameruleTh-Bot/internal/repositories/adminrepo"
)

type payeeResolver struct {
	admins   adminrepo.IAdminRepository
	adminID  string
	fallback string
	logger   zerolog.Logger
}

// NewPayeeResolver prefers the PromptPay number on the notifying admin's
// profile and falls back to the configured escrow payee.
func NewPayeeResolver(admins adminrepo.IAdminRepository, adminID, fallback string, logger zerolog.Logger) interfaces.PayeeResolver {
	return &payeeResolver{
		admins:   admins,
		adminID:  adminID,
		fallback: fallback,
		logger:   logger,
	}
}

func (p *payeeResolver) EscrowPayee(ctx context.Context) string {
	admin, err := p.admins.Get(ctx, p.adminID)
	if err != nil {
		p.logger.Debug().Err(err).Str("admin_id", p.adminID).Msg("Admin profile unavailable, using configured payee")
		return p.fallback
	}
	if admin.BankAccount == nil || !ValidPayee(admin.BankAccount.PromptPayNumber) {
		return p.fallback
	}
	return NormalizePayee(admin.BankAccount.PromptPayNumber)
}
