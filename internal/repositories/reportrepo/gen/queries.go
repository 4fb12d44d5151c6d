package gen

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

const reportCaseColumns = `case_id, user_id, admin_id, transaction_id, messages, status, created_at, updated_at`

const appendReportMessage = `-- name: AppendReportMessage :one
UPDATE report_cases SET
    messages = messages || $2::jsonb,
    admin_id = COALESCE(NULLIF($3::text, ''), admin_id),
    updated_at = $4
WHERE case_id = $1 AND status = 'open'
RETURNING ` + reportCaseColumns

type AppendReportMessageParams struct {
	CaseID    string
	Messages  json.RawMessage
	AdminID   string
	UpdatedAt time.Time
}

func (q *Queries) AppendReportMessage(ctx context.Context, arg AppendReportMessageParams) (ReportCase, error) {
	row := q.db.QueryRowContext(ctx, appendReportMessage,
		arg.CaseID,
		arg.Messages,
		arg.AdminID,
		arg.UpdatedAt,
	)
	return scanReportCase(row)
}

const closeReportCase = `-- name: CloseReportCase :one
UPDATE report_cases SET
    status = 'closed',
    updated_at = $2
WHERE case_id = $1 AND status = 'open'
RETURNING ` + reportCaseColumns

func (q *Queries) CloseReportCase(ctx context.Context, caseID string, updatedAt time.Time) (ReportCase, error) {
	row := q.db.QueryRowContext(ctx, closeReportCase, caseID, updatedAt)
	return scanReportCase(row)
}

const createReportCase = `-- name: CreateReportCase :exec
INSERT INTO report_cases (
    case_id, user_id, admin_id, transaction_id, messages, status, created_at, updated_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8
)`

type CreateReportCaseParams struct {
	CaseID        string
	UserID        string
	AdminID       sql.NullString
	TransactionID sql.NullString
	Messages      json.RawMessage
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (q *Queries) CreateReportCase(ctx context.Context, arg CreateReportCaseParams) error {
	_, err := q.db.ExecContext(ctx, createReportCase,
		arg.CaseID,
		arg.UserID,
		arg.AdminID,
		arg.TransactionID,
		arg.Messages,
		arg.Status,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getOpenReportCaseForUser = `-- name: GetOpenReportCaseForUser :one
SELECT ` + reportCaseColumns + ` FROM report_cases
WHERE user_id = $1 AND status = 'open'
LIMIT 1`

func (q *Queries) GetOpenReportCaseForUser(ctx context.Context, userID string) (ReportCase, error) {
	row := q.db.QueryRowContext(ctx, getOpenReportCaseForUser, userID)
	return scanReportCase(row)
}

const getReportCase = `-- name: GetReportCase :one
SELECT ` + reportCaseColumns + ` FROM report_cases
WHERE case_id = $1`

func (q *Queries) GetReportCase(ctx context.Context, caseID string) (ReportCase, error) {
	row := q.db.QueryRowContext(ctx, getReportCase, caseID)
	return scanReportCase(row)
}

const listOpenReportCases = `-- name: ListOpenReportCases :many
SELECT ` + reportCaseColumns + ` FROM report_cases
WHERE status = 'open'
ORDER BY updated_at DESC
LIMIT $1`

func (q *Queries) ListOpenReportCases(ctx context.Context, limit int32) ([]ReportCase, error) {
	rows, err := q.db.QueryContext(ctx, listOpenReportCases, limit)
	if err != nil {
		return nil, err
	}
	return collectReportCases(rows)
}

const listReportCasesForUser = `-- name: ListReportCasesForUser :many
SELECT ` + reportCaseColumns + ` FROM report_cases
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2`

func (q *Queries) ListReportCasesForUser(ctx context.Context, userID string, limit int32) ([]ReportCase, error) {
	rows, err := q.db.QueryContext(ctx, listReportCasesForUser, userID, limit)
	if err != nil {
		return nil, err
	}
	return collectReportCases(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReportCase(row rowScanner) (ReportCase, error) {
	var i ReportCase
	err := row.Scan(
		&i.CaseID,
		&i.UserID,
		&i.AdminID,
		&i.TransactionID,
		&i.Messages,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func collectReportCases(rows *sql.Rows) ([]ReportCase, error) {
	defer rows.Close()
	var items []ReportCase
	for rows.Next() {
		i, err := scanReportCase(rows)
		if err != nil {
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
