package escrow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
)

func TestParseGameDetails(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    domain.GameDetails
		wantErr bool
	}{
		{
			name: "with description",
			text: "ArenaBreakout L50 1700 มีสกิน หายาก",
			want: domain.GameDetails{Game: "ArenaBreakout", Level: "L50", Price: 1700, Description: "มีสกิน หายาก"},
		},
		{
			name: "extra whitespace",
			text: "  ROV \t Diamond   250 ",
			want: domain.GameDetails{Game: "ROV", Level: "Diamond", Price: 250},
		},
		{name: "too few fields", text: "ROV 250", wantErr: true},
		{name: "price not a number", text: "ROV L1 abc", wantErr: true},
		{name: "fractional price", text: "ROV L1 10.5", wantErr: true},
		{name: "zero price", text: "ROV L1 0", wantErr: true},
		{name: "negative price", text: "ROV L1 -5", wantErr: true},
		{name: "game too long", text: strings.Repeat("g", 101) + " L1 100", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGameDetails(tt.text)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				assert.NotEmpty(t, domain.UserMessage(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBankInfo(t *testing.T) {
	got, err := ParseBankInfo(" กสิกรไทย | 081-234-5678 | สมชาย ใจดี ")
	require.NoError(t, err)
	assert.Equal(t, domain.BankInfo{
		BankName:        "กสิกรไทย",
		AccountNumber:   "081-234-5678",
		AccountName:     "สมชาย ใจดี",
		PromptPayNumber: "081-234-5678",
	}, got)

	for _, raw := range []string{"", "SCB|0812345678", "SCB|0812345678|name|extra", "SCB||name", " | | "} {
		_, err := ParseBankInfo(raw)
		assert.ErrorIs(t, err, domain.ErrValidation, raw)
	}
}

func TestLooksLikeBankInfo(t *testing.T) {
	assert.True(t, LooksLikeBankInfo("a|b|c"))
	assert.True(t, LooksLikeBankInfo("SCB | 0812345678 | name"))
	assert.False(t, LooksLikeBankInfo("a|b"))
	assert.False(t, LooksLikeBankInfo("hello"))
	assert.False(t, LooksLikeBankInfo("a|b|c|d"))
}

func TestDecisionValid(t *testing.T) {
	assert.True(t, DecisionConfirm.Valid())
	assert.True(t, DecisionReject.Valid())
	assert.False(t, Decision("").Valid())
}
