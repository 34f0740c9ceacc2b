package report

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var currencySymbols = map[string]string{
	"KRW": "₩",
	"USD": "$",
	"EUR": "€",
	"JPY": "¥",
	"CNY": "¥",
	"GBP": "£",
}

// Formatter renders numbers with locale digit grouping
type Formatter struct {
	printer  *message.Printer
	currency string
}

// NewFormatter creates a formatter for locale and an ISO currency code
func NewFormatter(locale, currency string) *Formatter {
	return &Formatter{
		printer:  message.NewPrinter(language.Make(locale)),
		currency: strings.ToUpper(currency),
	}
}

// Number rounds v to an integer, e.g. 1,234
func (f *Formatter) Number(v float64) string {
	return f.printer.Sprintf("%d", int64(math.Round(v)))
}

// Decimal renders v with a fixed number of decimals
func (f *Formatter) Decimal(v float64, places int) string {
	if places <= 0 {
		return f.Number(v)
	}
	return f.printer.Sprintf(fmt.Sprintf("%%.%df", places), v)
}

// Percent renders a percentage with one decimal
func (f *Formatter) Percent(v float64) string {
	return f.Decimal(v, 1) + "%"
}

// Money renders an amount in the configured currency. Won and yen have no
// minor unit.
func (f *Formatter) Money(v float64) string {
	symbol, ok := currencySymbols[f.currency]
	if !ok {
		symbol = f.currency + " "
	}
	if f.currency == "KRW" || f.currency == "JPY" {
		return symbol + f.Number(v)
	}
	return symbol + f.Decimal(v, 2)
}
