package rental

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// DefaultCurrency is the currency code shown next to amounts
	DefaultCurrency = "UGX"

	shortDateLayout = "02/01/2006"
	longDateLayout  = "2 January 2006"
)

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders whole currency units with thousands separators: 500000 -> "500,000"
func FormatAmount(amount int64) string {
	return amountPrinter.Sprintf("%d", amount)
}

// FormatShortDate renders a day/month/year date: "15/10/2026"
func FormatShortDate(t time.Time) string {
	return t.Format(shortDateLayout)
}

// FormatLongDate renders the long receipt date: "15 October 2026"
func FormatLongDate(t time.Time) string {
	return t.Format(longDateLayout)
}
