package database

import (
	"errors"

	"github.com/lib/pq"
)

// PostgreSQL error codes
// https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	PgErrUniqueViolation     = "23505" // unique_violation
	PgErrCheckViolation      = "23514" // check_violation
	PgErrNotNullViolation    = "23502" // not_null_violation
	PgErrSerializationFailed = "40001" // serialization_failure
	PgErrConnectionFailure   = "08006" // connection_failure
	PgErrAdminShutdown       = "57P01" // admin_shutdown
)

// PgCode returns the SQLSTATE of a lib/pq error, or "" for anything else.
func PgCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func IsUniqueViolation(err error) bool {
	return PgCode(err) == PgErrUniqueViolation
}

// ConstraintName returns the violated constraint of a lib/pq error.
func ConstraintName(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}
