package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWholeAmount(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr error
	}{
		{raw: "1700", want: 1700},
		{raw: " 1,700 ", want: 1700},
		{raw: "1700.00", want: 1700},
		{raw: "17.5", wantErr: ErrFractional},
		{raw: "0", wantErr: ErrNotPositive},
		{raw: "-20", wantErr: ErrNotPositive},
		{raw: "abc", wantErr: ErrNotANumber},
		{raw: "", wantErr: ErrNotANumber},
		{raw: "99999999999", wantErr: ErrAmountTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseWholeAmount(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "50", Format(50))
	assert.Equal(t, "1,750", Format(1750))
	assert.Equal(t, "1,000,000", Format(1000000))
	assert.Equal(t, "-1,200", Format(-1200))
	assert.Equal(t, "1,750 บาท", FormatBaht(1750))
}

func TestPaymentString(t *testing.T) {
	assert.Equal(t, "1750.00", PaymentString(1750))
}
