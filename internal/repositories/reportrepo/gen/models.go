package gen

import (
	"database/sql"
	"encoding/json"
	"time"
)

type ReportCase struct {
	CaseID        string
	UserID        string
	AdminID       sql.NullString
	TransactionID sql.NullString
	Messages      json.RawMessage
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
