package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printers = map[string]*message.Printer{
	Arabic:  message.NewPrinter(language.Arabic),
	English: message.NewPrinter(language.English),
}

// Money formats minor units for display, e.g. "150.00 SAR".
func Money(lang string, cents int64, currency string) string {
	p, ok := printers[lang]
	if !ok {
		p = printers[Arabic]
	}
	return p.Sprintf("%.2f %s", float64(cents)/100, currency)
}
