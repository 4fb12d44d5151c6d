package escrow

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
	"github.com/conmuninw/gameruleTh-Bot/pkg/currency"
)

var validate = validator.New()

// ParseGameDetails reads "game level price [description...]".
func ParseGameDetails(text string) (domain.GameDetails, error) {
	const op = "escrow.ParseGameDetails"

	fields := strings.Fields(text)
	if len(fields) < 3 {
		return domain.GameDetails{}, domain.ValidationError(op,
			"รูปแบบไม่ถูกต้อง กรุณาส่ง: เกม เลเวล ราคา [รายละเอียด]\n💡 ตัวอย่าง: ArenaBreakout L50 1700 มีสกินหายาก")
	}

	price, err := currency.ParseWholeAmount(fields[2])
	if err != nil {
		return domain.GameDetails{}, priceError(op, err)
	}

	details := domain.GameDetails{
		Game:        fields[0],
		Level:       fields[1],
		Price:       price,
		Description: strings.Join(fields[3:], " "),
	}
	if err := validateGameDetails(op, details); err != nil {
		return domain.GameDetails{}, err
	}
	return details, nil
}

func validateGameDetails(op string, details domain.GameDetails) error {
	if details.Price <= 0 {
		return domain.ValidationError(op, "ราคาต้องเป็นตัวเลขที่มากกว่า 0")
	}
	if err := validate.Struct(details); err != nil {
		return domain.ValidationError(op, "ข้อมูลเกมไม่ถูกต้อง: %s", fieldList(err))
	}
	return nil
}

// ParseBankInfo reads "bank|promptpay|account name". The PromptPay number
// doubles as the account number.
func ParseBankInfo(raw string) (domain.BankInfo, error) {
	const op = "escrow.ParseBankInfo"

	parts := strings.Split(raw, "|")
	if len(parts) != 3 {
		return domain.BankInfo{}, domain.ValidationError(op,
			"รูปแบบข้อมูลไม่ถูกต้อง กรุณาส่ง: ชื่อธนาคาร|เลขพร้อมเพย์|ชื่อบัญชี")
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	bank := domain.BankInfo{
		BankName:        parts[0],
		AccountNumber:   parts[1],
		AccountName:     parts[2],
		PromptPayNumber: parts[1],
	}
	if err := validate.Struct(bank); err != nil {
		return domain.BankInfo{}, domain.ValidationError(op,
			"รูปแบบข้อมูลไม่ถูกต้อง กรุณาส่ง: ชื่อธนาคาร|เลขพร้อมเพย์|ชื่อบัญชี")
	}
	return bank, nil
}

// LooksLikeBankInfo reports whether text has the a|b|c shape.
func LooksLikeBankInfo(text string) bool {
	return strings.Count(text, "|") == 2
}

func priceError(op string, err error) error {
	switch {
	case errors.Is(err, currency.ErrFractional):
		return domain.ValidationError(op, "ราคาต้องเป็นจำนวนเต็ม")
	case errors.Is(err, currency.ErrNotPositive):
		return domain.ValidationError(op, "ราคาต้องมากกว่า 0")
	case errors.Is(err, currency.ErrAmountTooLarge):
		return domain.ValidationError(op, "ราคาสูงเกินไป")
	default:
		return domain.ValidationError(op, "ราคาต้องเป็นตัวเลข")
	}
}

func fieldList(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		names = append(names, fe.Field())
	}
	return strings.Join(names, ", ")
}
