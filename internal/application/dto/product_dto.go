package dto

import (
	"time"

	"github.com/jhoicas/price-catalog/internal/domain/leadtime"
)

// ProductListQuery parámetros de GET /api/products.
type ProductListQuery struct {
	Manufacturer string `query:"manufacturer"`
	Search       string `query:"search"`
	Limit        int    `query:"limit"`
	Offset       int    `query:"offset"`
}

// LeadTimeResponse plazo estimado con la clase CSS del escaparate.
type LeadTimeResponse struct {
	Text  string        `json:"text"`
	Type  leadtime.Type `json:"type"`
	Class string        `json:"class"`
}

// ProductResponse salida de un producto. Los opcionales vacíos se devuelven como null.
type ProductResponse struct {
	ID              int64            `json:"id"`
	Manufacturer    string           `json:"manufacturer"`
	Article         string           `json:"article"`
	Name            string           `json:"name"`
	PriceRub        int64            `json:"priceRub"`
	LeadTimeDefault *string          `json:"leadTimeDefault"`
	LeadTime        LeadTimeResponse `json:"leadTime"` // plazo para la existencia actual (sin cantidad)
	AstanaQty       int              `json:"astanaQty"`
	AlmatyQty       int              `json:"almatyQty"`
	CatalogURL      *string          `json:"catalogUrl"`
	ImageURL        *string          `json:"imageUrl"`
	UpdatedAt       *time.Time       `json:"updatedAt"`
}

// ProductListResponse página del catálogo.
type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int               `json:"total"`
	HasMore  bool              `json:"hasMore"`
	Offset   int               `json:"offset"`
	Limit    int               `json:"limit"`
}

// CountResponse número de productos.
type CountResponse struct {
	Count int `json:"count"`
}

// ManufacturerResponse fabricante con su número de productos.
type ManufacturerResponse struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ManufacturersResponse lista de fabricantes.
type ManufacturersResponse struct {
	Manufacturers []ManufacturerResponse `json:"manufacturers"`
}

// StockResponse existencias por ubicación.
type StockResponse struct {
	Article string `json:"article"`
	Astana  int    `json:"astana"`
	Almaty  int    `json:"almaty"`
}
