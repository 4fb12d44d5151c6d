package adminrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sqlc-dev/pqtype"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
	"github.com/conmuninw/gameruleTh-Bot/internal/infrastructure/database"
	"github.com/conmuninw/gameruleTh-Bot/internal/repositories/adminrepo/gen"
)

type AdminRepositoryImpl struct {
	store  *gen.Queries
	logger zerolog.Logger
}

func New(db *database.DBManager, logger zerolog.Logger) IAdminRepository {
	return &AdminRepositoryImpl{
		store:  gen.New(db.Db),
		logger: logger,
	}
}

func (r *AdminRepositoryImpl) Get(ctx context.Context, adminID string) (domain.Admin, error) {
	row, err := r.store.GetAdmin(ctx, adminID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Admin{}, domain.NotFoundError("adminrepo.Get", "admin %s not found", adminID)
		}
		return domain.Admin{}, fmt.Errorf("failed to get admin: %w", err)
	}
	return fromRow(row)
}

func (r *AdminRepositoryImpl) Upsert(ctx context.Context, admin domain.Admin) error {
	var bankAccount pqtype.NullRawMessage
	if admin.BankAccount != nil {
		raw, err := json.Marshal(admin.BankAccount)
		if err != nil {
			return fmt.Errorf("failed to marshal bank account: %w", err)
		}
		bankAccount = pqtype.NullRawMessage{RawMessage: raw, Valid: true}
	}

	err := r.store.UpsertAdmin(ctx, gen.UpsertAdminParams{
		AdminID:     admin.AdminID,
		DisplayName: sql.NullString{String: admin.DisplayName, Valid: admin.DisplayName != ""},
		BankAccount: bankAccount,
		UpdatedAt:   admin.UpdatedAt,
	})
	if err != nil {
		r.logger.Error().Err(err).Str("admin_id", admin.AdminID).Msg("Failed to upsert admin")
		return fmt.Errorf("failed to upsert admin: %w", err)
	}
	return nil
}

func (r *AdminRepositoryImpl) List(ctx context.Context) ([]domain.Admin, error) {
	rows, err := r.store.ListAdmins(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}

	admins := make([]domain.Admin, 0, len(rows))
	for _, row := range rows {
		admin, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		admins = append(admins, admin)
	}
	return admins, nil
}

func fromRow(row gen.Admin) (domain.Admin, error) {
	admin := domain.Admin{
		AdminID:     row.AdminID,
		DisplayName: row.DisplayName.String,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if row.BankAccount.Valid && len(row.BankAccount.RawMessage) > 0 {
		var bank domain.BankInfo
		if err := json.Unmarshal(row.BankAccount.RawMessage, &bank); err != nil {
			return domain.Admin{}, fmt.Errorf("failed to unmarshal bank account: %w", err)
		}
		admin.BankAccount = &bank
	}
	return admin, nil
}
