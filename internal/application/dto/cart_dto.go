package dto

import "time"

// AddCartItemRequest entrada de POST /api/cart/items.
type AddCartItemRequest struct {
	Article  string `json:"article"`
	Quantity int    `json:"quantity"`
}

// UpdateCartItemRequest entrada de PUT /api/cart/items/:article. El stock es opcional; si
// llega sustituye al guardado en la línea.
type UpdateCartItemRequest struct {
	Quantity  int  `json:"quantity"`
	AstanaQty *int `json:"astanaQty"`
	AlmatyQty *int `json:"almatyQty"`
}

// CartItemResponse línea del carrito.
type CartItemResponse struct {
	Article         string `json:"article"`
	Manufacturer    string `json:"manufacturer"`
	Name            string `json:"name"`
	PriceRub        int64  `json:"priceRub"`
	Quantity        int    `json:"quantity"`
	Sum             int64  `json:"sum"`
	LeadTime        string `json:"leadTime"`
	LeadTimeClass   string `json:"leadTimeClass"`
	AstanaQty       int    `json:"astanaQty"`
	AlmatyQty       int    `json:"almatyQty"`
	LeadTimeDefault string `json:"leadTimeDefault,omitempty"`
}

// CartResponse estado del carrito con sus totales.
type CartResponse struct {
	Items         []CartItemResponse `json:"items"`
	LastUpdated   time.Time          `json:"lastUpdated"`
	Total         int64              `json:"total"`
	TotalText     string             `json:"totalText"` // total con separador de miles ruso
	ItemsCount    int                `json:"itemsCount"`
	TotalQuantity int                `json:"totalQuantity"`
}
