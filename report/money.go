package report

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Money renders amounts in a statement currency.
type Money struct {
	Code   string `json:"code"`
	Locale string `json:"locale"`
	Symbol string `json:"symbol"`

	tag       language.Tag
	separator string // Between symbol and digits
}

var currencies = map[currency.Unit]Money{
	currency.USD: {Code: "USD", Locale: "en-US", Symbol: "$", tag: language.AmericanEnglish},
	currency.BRL: {Code: "BRL", Locale: "pt-BR", Symbol: "R$", tag: language.BrazilianPortuguese, separator: " "},
}

// DefaultMoney is the fallback for unknown or missing currencies.
func DefaultMoney() Money {
	return currencies[currency.USD]
}

// MoneyFor returns the formatter for an ISO 4217 code. Codes that are not
// valid or have no known locale fall back to USD.
func MoneyFor(code string) Money {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return DefaultMoney()
	}
	if m, ok := currencies[unit]; ok {
		return m
	}
	return DefaultMoney()
}

// Format renders amount with two decimals and the locale's separators, e.g.
// "-$1,234.50" or "R$ 1.234,50".
func (m Money) Format(amount decimal.Decimal) string {
	tag := m.tag
	if tag == language.Und {
		tag = language.AmericanEnglish
	}

	rounded := amount.Round(2)
	digits := message.NewPrinter(tag).Sprint(number.Decimal(rounded.Abs().InexactFloat64(), number.Scale(2)))

	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}
	return sign + m.Symbol + m.separator + digits
}
