package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product representa una fila del catálogo de precios (tabla products).
// El artículo se guarda en minúsculas; las búsquedas por artículo no distinguen mayúsculas.
type Product struct {
	ID              int64
	Manufacturer    string
	Article         string
	Name            string
	PriceRub        int64           // precio de venta en rublos enteros
	DealerPriceKZT  decimal.Decimal // precio de proveedor del que se calculó PriceRub
	LeadTimeDefault string          // plazo fijo del proveedor; vacío = sin plazo fijo
	AstanaQty       int             // stock en Astaná (ubicación A)
	AlmatyQty       int             // stock en Almaty (ubicación B)
	CatalogURL      string
	ImageURL        string
	UpdatedAt       time.Time
}

// Stock devuelve el stock de ambas ubicaciones.
func (p *Product) Stock() Stock {
	return Stock{Astana: p.AstanaQty, Almaty: p.AlmatyQty}
}

// Stock existencias de un artículo por ubicación.
type Stock struct {
	Astana int
	Almaty int
}

// NormalizeArticle aplica la forma canónica del artículo (sin espacios, en minúsculas).
func NormalizeArticle(article string) string {
	return strings.ToLower(strings.TrimSpace(article))
}

// ManufacturerCount fabricante con su número de productos.
type ManufacturerCount struct {
	Name  string
	Count int
}
