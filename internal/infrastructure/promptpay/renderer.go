// Package promptpay builds PromptPay payment references. Images are
// rendered by the linked services; this package only builds their URLs.
package promptpay

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
	"github.com/conmuninw/gameruleTh-Bot/internal/domain/interfaces"
	"github.com/conmuninw/gameruleTh-Bot/pkg/config"
	"github.com/conmuninw/gameruleTh-Bot/pkg/currency"
)

// Phone numbers, national ids and e-wallet ids.
var payeePattern = regexp.MustCompile(`^(\d{10}|\d{13}|\d{15})$`)

type renderer struct {
	baseURL     string
	fallbackURL string
	logger      zerolog.Logger
}

func NewRenderer(cfg config.PromptPayConfig, logger zerolog.Logger) interfaces.PaymentRenderer {
	return &renderer{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		fallbackURL: cfg.FallbackURL,
		logger:      logger,
	}
}

// NormalizePayee strips the separators people commonly type into a
// PromptPay number.
func NormalizePayee(raw string) string {
	return strings.NewReplacer("-", "", " ", "", ".", "").Replace(strings.TrimSpace(raw))
}

func ValidPayee(payeeID string) bool {
	return payeePattern.MatchString(NormalizePayee(payeeID))
}

func (r *renderer) Render(payeeID string, amount int64, reference string) (domain.PaymentReference, error) {
	payee := NormalizePayee(payeeID)
	if !payeePattern.MatchString(payee) {
		return domain.PaymentReference{}, domain.ValidationError("promptpay.Render", "หมายเลขพร้อมเพย์ไม่ถูกต้อง")
	}
	if amount <= 0 {
		return domain.PaymentReference{}, domain.ValidationError("promptpay.Render", "จำนวนเงินต้องมากกว่า 0")
	}

	ref := domain.PaymentReference{
		PayeeID:     payee,
		Amount:      amount,
		URL:         fmt.Sprintf("%s/%s/%s.png", r.baseURL, payee, strconv.FormatInt(amount, 10)),
		FallbackURL: r.fallback(payee, amount),
		Reference:   reference,
	}

	r.logger.Debug().
		Str("reference", reference).
		Str("payee", payee).
		Str("amount", currency.PaymentString(amount)).
		Msg("Rendered payment reference")

	return ref, nil
}

func (r *renderer) fallback(payee string, amount int64) string {
	query := url.Values{}
	query.Set("text", fmt.Sprintf("|%s|%s", currency.PaymentString(amount), payee))
	query.Set("size", "300")
	query.Set("margin", "1")
	query.Set("format", "png")
	return r.fallbackURL + "?" + query.Encode()
}
