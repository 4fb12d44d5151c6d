package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalConfig = `
database:
  driver: memory
promptpay:
  payee_id: "0812345678"
admin:
  ids: ["admin-psid"]
jwt:
  secret: "0123456789abcdef"
`

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "v18.0", cfg.Messenger.APIVersion)
	assert.Equal(t, 24*time.Hour, cfg.Escrow.RetentionWindow)
	assert.Equal(t, 5*time.Minute, cfg.Escrow.EscalationWindow)
	assert.Equal(t, 3, cfg.Escrow.MaxWriteAttempts)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, 10*time.Minute, cfg.Session.SweepInterval)
	assert.Equal(t, "admin-psid", cfg.AdminNotifyID())
}

func TestParseExpandsEnvironment(t *testing.T) {
	t.Setenv("ESCROWBOT_TEST_TOKEN", "page-token")

	cfg, err := Parse([]byte(minimalConfig + `
messenger:
  access_token: ${ESCROWBOT_TEST_TOKEN}
  timeout: 3s
`))
	require.NoError(t, err)
	assert.Equal(t, "page-token", cfg.Messenger.AccessToken)
	assert.Equal(t, 3*time.Second, cfg.Messenger.Timeout)
}

func TestParseRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "no admins",
			yaml: `
database: {driver: memory}
promptpay: {payee_id: "0812345678"}
jwt: {secret: "0123456789abcdef"}
`,
		},
		{
			name: "postgres without host",
			yaml: `
database: {driver: postgres}
promptpay: {payee_id: "0812345678"}
admin: {ids: ["a"]}
jwt: {secret: "0123456789abcdef"}
`,
		},
		{
			name: "unknown driver",
			yaml: `
database: {driver: mongo}
promptpay: {payee_id: "0812345678"}
admin: {ids: ["a"]}
jwt: {secret: "0123456789abcdef"}
`,
		},
		{
			name: "short jwt secret",
			yaml: `
database: {driver: memory}
promptpay: {payee_id: "0812345678"}
admin: {ids: ["a"]}
jwt: {secret: "short"}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalConfig), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin-psid"}, cfg.Admin.IDs)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestAdminConfig(t *testing.T) {
	admins := AdminConfig{IDs: []string{"a1", "a2"}}

	assert.Equal(t, "a1", admins.NotifyID())
	assert.True(t, admins.IsAdmin("a2"))
	assert.False(t, admins.IsAdmin("u1"))
	assert.False(t, admins.IsAdmin(""))
	assert.Equal(t, "", AdminConfig{}.NotifyID())
}
