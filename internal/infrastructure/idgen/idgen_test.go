package idgen

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
	"github.com/conmuninw/gameruleTh-Bot/pkg/clock"
)

func TestTransactionIDShape(t *testing.T) {
	gen := New(clock.Fake(time.UnixMilli(1714564800000)))

	id := gen.TransactionID()
	assert.Regexp(t, regexp.MustCompile(`^TX[0-9A-Z]+$`), id)
	assert.Equal(t, "TXLVNRM2O0", id[:10])
	assert.Len(t, id, 2+8+6)

	matched, ok := domain.MatchTransactionID(id)
	assert.True(t, ok)
	assert.Equal(t, id, matched)
}

func TestCaseIDShape(t *testing.T) {
	gen := New(clock.Fake(time.UnixMilli(1714564800000)))
	assert.Regexp(t, regexp.MustCompile(`^CASE-LVNRM2O0-[0-9A-Z]{6}$`), gen.CaseID())
}

func TestSuffixUsesEntropy(t *testing.T) {
	g := &generator{
		clock:   clock.Fake(time.UnixMilli(0)),
		entropy: func() [16]byte { return [16]byte{0, 1, 10, 35, 36, 71} },
	}
	assert.Equal(t, "TX0"+"01AZ0Z", g.TransactionID())
}

func TestIDsAreDistinct(t *testing.T) {
	gen := New(clock.Fake(time.UnixMilli(1714564800000)))
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := gen.TransactionID()
		assert.False(t, seen[id], id)
		seen[id] = true
	}
}
