package funcs

import (
	"text/template"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var TemplateFuncs = template.FuncMap{
	"formatNaira": FormatNaira,
	"formatDate":  FormatDate,
	"formatTime":  FormatTime,
}

var printer = message.NewPrinter(language.English)

// FormatNaira renders an amount as naira with thousand separators,
// e.g. ₦10,000.00.
func FormatNaira(amount decimal.Decimal) string {
	f, _ := amount.Float64()
	return printer.Sprintf("₦%v", number.Decimal(f,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}

func FormatDate(t time.Time) string {
	return t.Format("2 January 2006")
}

func FormatTime(t time.Time) string {
	return t.Format("15:04")
}
