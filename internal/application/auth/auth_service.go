package authservice

import (
	"context"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
)

// IAuthService issues and checks the bearer tokens of the admin console.
type IAuthService interface {
	IssueToken(ctx context.Context, adminID string) (string, error)
	VerifyToken(ctx context.Context, tokenString string) (*domain.Claim, error)
}
