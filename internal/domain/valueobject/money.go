package valueobject

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/trabahoph/payments-backend/internal/pkg/apperror"
)

// CurrencySymbol — фиксированный символ валюты платформы (филиппинское песо).
const CurrencySymbol = "₱"

var (
	two     = decimal.NewFromInt(2)
	oneRate = decimal.NewFromInt(1)
)

// FormatCurrency форматирует сумму для отображения: символ валюты,
// два знака после запятой и разделители тысяч ("₱1,234.56").
// Decimal не теряет точность, поэтому корректно работает и для сумм от 10^9.
func FormatCurrency(amount decimal.Decimal) string {
	fixed := amount.Round(2).StringFixed(2)

	negative := strings.HasPrefix(fixed, "-")
	if negative {
		fixed = fixed[1:]
	}

	intPart := fixed[:len(fixed)-3]
	fracPart := fixed[len(fixed)-3:]

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteString(CurrencySymbol)

	// Вставляем разделители тысяч в целую часть.
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
		if len(intPart) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(intPart); i += 3 {
		b.WriteString(intPart[i : i+3])
		if i+3 < len(intPart) {
			b.WriteByte(',')
		}
	}
	b.WriteString(fracPart)

	return b.String()
}

// ComputeFee считает комиссию платформы: round(gross * rate, 2),
// округление "половина вверх" по денежным правилам, без банковского округления.
func ComputeFee(gross, rate decimal.Decimal) (decimal.Decimal, error) {
	if rate.IsNegative() || rate.GreaterThan(oneRate) {
		return decimal.Zero, apperror.ErrInvalidRate
	}
	// decimal.Round для положительных значений — это round half up.
	return gross.Mul(rate).Round(2), nil
}

// SplitBudget делит бюджет работы на две части: предоплату (escrow)
// и финальный платёж. Остаток от округления уходит в финальную часть,
// поэтому escrow + final всегда в точности равны бюджету.
func SplitBudget(budget decimal.Decimal) (escrow, final decimal.Decimal, err error) {
	if !budget.IsPositive() {
		return decimal.Zero, decimal.Zero, apperror.ErrInvalidBudget
	}
	escrow = budget.Div(two).Round(2)
	final = budget.Sub(escrow)
	return escrow, final, nil
}

// WorkerEarnings считает чистый заработок исполнителя: бюджет минус
// комиссия платформы. Комиссия округляется один раз, поэтому
// заработок + комиссия всегда восстанавливают исходную сумму.
func WorkerEarnings(grossTotal, rate decimal.Decimal) (decimal.Decimal, error) {
	fee, err := ComputeFee(grossTotal, rate)
	if err != nil {
		return decimal.Zero, err
	}
	return grossTotal.Sub(fee), nil
}
