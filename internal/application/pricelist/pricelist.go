package pricelist

import (
	"io"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/price-catalog/internal/domain/entity"
)

// PriceRow fila de la hoja Products tal como viene del proveedor.
type PriceRow struct {
	Line           int // número de fila en la hoja (para los avisos)
	Manufacturer   string
	Article        string
	Name           string
	DealerPriceKZT decimal.Decimal
	FixedLeadTime  string
	CatalogURL     string
	ImageURL       string
}

// PriceList contenido del libro de importación.
type PriceList struct {
	Products []PriceRow
	Stock    map[string]entity.Stock // por artículo normalizado; se suman filas repetidas

	ArticleMargins      map[string]decimal.Decimal
	ManufacturerMargins map[string]decimal.Decimal

	// Opcionales (hoja Settings); si faltan se usa la configuración.
	Kurs         *decimal.Decimal
	GlobalMargin *decimal.Decimal
}

// PriceListReader lee el libro de la lista de precios.
type PriceListReader interface {
	Read(r io.Reader) (*PriceList, error)
}
