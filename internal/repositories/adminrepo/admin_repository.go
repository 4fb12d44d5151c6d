package adminrepo

import (
	"context"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
)

// IAdminRepository stores admin profiles. Upsert keeps existing optional
// fields when the incoming ones are empty.
type IAdminRepository interface {
	Get(ctx context.Context, adminID string) (domain.Admin, error)
	Upsert(ctx context.Context, admin domain.Admin) error
	List(ctx context.Context) ([]domain.Admin, error)
}
