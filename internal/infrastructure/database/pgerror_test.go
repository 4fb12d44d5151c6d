package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("failed to create report case: %w", &pq.Error{
		Code:       PgErrUniqueViolation,
		Constraint: "report_cases_one_open_per_user",
	})

	assert.True(t, IsUniqueViolation(err))
	assert.Equal(t, "report_cases_one_open_per_user", ConstraintName(err))
	assert.Equal(t, PgErrUniqueViolation, PgCode(err))
}

func TestPgCodeIgnoresOtherErrors(t *testing.T) {
	err := errors.New("dial tcp: connection refused")

	assert.False(t, IsUniqueViolation(err))
	assert.Equal(t, "", PgCode(err))
	assert.Equal(t, "", ConstraintName(err))
}

func TestSchemaIsEmbedded(t *testing.T) {
	data, err := schemaFS.ReadFile("schema/001_init.sql")
	assert.NoError(t, err)
	assert.Contains(t, string(data), "report_cases_one_open_per_user")
}
