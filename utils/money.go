package utils

import (
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"KES": "KES",
}

// languages that write the symbol after the amount
var suffixSymbolLanguages = map[string]bool{
	"de": true, "fr": true, "es": true, "it": true, "nl": true, "pt": true, "sv": true,
}

// RoundTo2 rounds half away from zero to two decimals.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatMoney renders amount in the locale's digit grouping with the currency
// symbol. Unknown locales fall back to English; NaN and Inf render as zero.
func FormatMoney(amount float64, currencyCode, locale string) string {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		tag = language.English
	}
	code := strings.ToUpper(strings.TrimSpace(currencyCode))
	if code == "" {
		code = "KES"
	}
	symbol, ok := currencySymbols[code]
	if !ok {
		symbol = code
	}

	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := message.NewPrinter(tag).Sprintf("%.2f", RoundTo2(amount))

	base, _ := tag.Base()
	if suffixSymbolLanguages[base.String()] {
		return sign + digits + " " + symbol
	}
	if utf8.RuneCountInString(symbol) > 1 {
		return sign + symbol + " " + digits
	}
	return sign + symbol + digits
}
