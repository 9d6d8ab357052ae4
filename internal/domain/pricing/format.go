package pricing

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ruPrinter = message.NewPrinter(language.Russian)

// FormatRub formatea un importe en rublos con separador de miles ruso (espacio).
func FormatRub(amount int64) string {
	return ruPrinter.Sprintf("%d", amount)
}

// FormatLineTotal importe formateado de precio × cantidad.
func FormatLineTotal(price int64, quantity int) string {
	return FormatRub(price * int64(quantity))
}
