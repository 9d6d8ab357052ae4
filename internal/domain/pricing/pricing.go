package pricing

import (
	"github.com/shopspring/decimal"
)

// Margins márgenes de la lista de precios. Prioridad: artículo > fabricante > global.
type Margins struct {
	Global         decimal.Decimal
	ByManufacturer map[string]decimal.Decimal
	ByArticle      map[string]decimal.Decimal
}

// NewMargins crea márgenes vacíos con el margen global indicado.
func NewMargins(global decimal.Decimal) Margins {
	return Margins{
		Global:         global,
		ByManufacturer: map[string]decimal.Decimal{},
		ByArticle:      map[string]decimal.Decimal{},
	}
}

// For margen aplicable a un artículo (ya normalizado) de un fabricante.
func (m Margins) For(article, manufacturer string) decimal.Decimal {
	if v, ok := m.ByArticle[article]; ok {
		return v
	}
	if v, ok := m.ByManufacturer[manufacturer]; ok {
		return v
	}
	return m.Global
}

// ClientPriceRub precio al cliente en rublos enteros:
// round(dealerKZT × (1 + margin) / kurs), redondeo bancario.
// kurs es tenges por rublo; con kurs <= 0 devuelve 0.
func ClientPriceRub(dealerKZT, margin, kurs decimal.Decimal) int64 {
	if kurs.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	price := dealerKZT.Mul(decimal.NewFromInt(1).Add(margin)).DivRound(kurs, 8)
	return price.RoundBank(0).IntPart()
}
