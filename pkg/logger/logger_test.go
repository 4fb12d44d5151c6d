package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriterAddsServiceFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(Config{Level: "debug"}, &buf)

	log.Info().Str("transaction_id", "TX1").Msg("hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "escrowbot", entry["service"])
	assert.Equal(t, "1.0.0", entry["version"])
	assert.Equal(t, "TX1", entry["transaction_id"])
	assert.Equal(t, "hello", entry["message"])
}

func TestNewWithWriterFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	_ = NewWithWriter(Config{Level: "loud"}, &buf)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestColorizeLevel(t *testing.T) {
	assert.Equal(t, "\033[31merror\033[0m", colorizeLevel("error"))
	assert.Equal(t, "\033[91mpanic\033[0m", colorizeLevel("panic"))
	assert.Equal(t, "custom", colorizeLevel("custom"))
}
