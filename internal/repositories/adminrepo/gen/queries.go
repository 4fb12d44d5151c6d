package gen

import (
	"context"
	"database/sql"
	"time"

	"github.com/sqlc-dev/pqtype"
)

type Admin struct {
	AdminID     string
	DisplayName sql.NullString
	BankAccount pqtype.NullRawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const getAdmin = `-- name: GetAdmin :one
SELECT admin_id, display_name, bank_account, created_at, updated_at FROM admins
WHERE admin_id = $1`

func (q *Queries) GetAdmin(ctx context.Context, adminID string) (Admin, error) {
	row := q.db.QueryRowContext(ctx, getAdmin, adminID)
	var i Admin
	err := row.Scan(
		&i.AdminID,
		&i.DisplayName,
		&i.BankAccount,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listAdmins = `-- name: ListAdmins :many
SELECT admin_id, display_name, bank_account, created_at, updated_at FROM admins
ORDER BY created_at`

func (q *Queries) ListAdmins(ctx context.Context) ([]Admin, error) {
	rows, err := q.db.QueryContext(ctx, listAdmins)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Admin
	for rows.Next() {
		var i Admin
		if err := rows.Scan(
			&i.AdminID,
			&i.DisplayName,
			&i.BankAccount,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertAdmin = `-- name: UpsertAdmin :exec
INSERT INTO admins (admin_id, display_name, bank_account, created_at, updated_at)
VALUES ($1, $2, $3, $4, $4)
ON CONFLICT (admin_id) DO UPDATE SET
    display_name = COALESCE(EXCLUDED.display_name, admins.display_name),
    bank_account = COALESCE(EXCLUDED.bank_account, admins.bank_account),
    updated_at = EXCLUDED.updated_at`

type UpsertAdminParams struct {
	AdminID     string
	DisplayName sql.NullString
	BankAccount pqtype.NullRawMessage
	UpdatedAt   time.Time
}

func (q *Queries) UpsertAdmin(ctx context.Context, arg UpsertAdminParams) error {
	_, err := q.db.ExecContext(ctx, upsertAdmin,
		arg.AdminID,
		arg.DisplayName,
		arg.BankAccount,
		arg.UpdatedAt,
	)
	return err
}
