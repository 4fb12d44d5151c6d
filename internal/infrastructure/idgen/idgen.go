// Package idgen produces the transaction and case identifiers users type
// into chat.
package idgen

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain/interfaces"
	"github.com/conmuninw/gameruleTh-Bot/pkg/clock"
)

const (
	transactionPrefix = "TX"
	casePrefix        = "CASE-"
	suffixLength      = 6
	alphabet          = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

type generator struct {
	clock   clock.Clock
	entropy func() [16]byte
}

func New(clk clock.Clock) interfaces.IDGenerator {
	return &generator{
		clock:   clk,
		entropy: func() [16]byte { return uuid.New() },
	}
}

// TransactionID returns TX followed by the base36 millisecond timestamp
// and six random characters, all upper case.
func (g *generator) TransactionID() string {
	return transactionPrefix + g.timestamp() + g.suffix()
}

// CaseID returns CASE-<base36 timestamp>-<six random characters>.
func (g *generator) CaseID() string {
	return casePrefix + g.timestamp() + "-" + g.suffix()
}

func (g *generator) timestamp() string {
	return strings.ToUpper(strconv.FormatInt(g.clock.Now().UnixMilli(), 36))
}

func (g *generator) suffix() string {
	random := g.entropy()
	out := make([]byte, suffixLength)
	for i := range out {
		out[i] = alphabet[int(random[i])%len(alphabet)]
	}
	return string(out)
}
