package entity

import (
	"sort"
	"time"
)

// CartItem línea del carrito. LeadTime se materializa en cada mutación y no se
// recalcula al leer; AstanaQty/AlmatyQty guardan el stock usado para calcularlo.
type CartItem struct {
	Article         string `json:"article"`
	Manufacturer    string `json:"manufacturer"`
	Name            string `json:"name"`
	PriceRub        int64  `json:"priceRub"`
	Quantity        int    `json:"quantity"`
	LeadTime        string `json:"leadTime"`
	AstanaQty       int    `json:"astanaQty"`
	AlmatyQty       int    `json:"almatyQty"`
	LeadTimeDefault string `json:"leadTimeDefault,omitempty"`
}

// Sum importe de la línea (precio × cantidad).
func (i CartItem) Sum() int64 {
	return i.PriceRub * int64(i.Quantity)
}

// CartState estado completo del carrito de un cliente, tal como se persiste bajo la clave "cart".
type CartState struct {
	Items       map[string]CartItem `json:"items"`
	LastUpdated time.Time           `json:"lastUpdated"`
}

// NewCartState crea un carrito vacío.
func NewCartState(now time.Time) CartState {
	return CartState{Items: map[string]CartItem{}, LastUpdated: now}
}

// Clone copia profunda del estado (el mapa no se comparte).
func (s CartState) Clone() CartState {
	items := make(map[string]CartItem, len(s.Items))
	for k, v := range s.Items {
		items[k] = v
	}
	return CartState{Items: items, LastUpdated: s.LastUpdated}
}

// Total suma de precio × cantidad de todas las líneas.
func (s CartState) Total() int64 {
	var total int64
	for _, it := range s.Items {
		total += it.Sum()
	}
	return total
}

// ItemsCount número de líneas distintas (no unidades).
func (s CartState) ItemsCount() int {
	return len(s.Items)
}

// TotalQuantity suma de unidades de todas las líneas.
func (s CartState) TotalQuantity() int {
	total := 0
	for _, it := range s.Items {
		total += it.Quantity
	}
	return total
}

// SortedItems líneas ordenadas por fabricante y artículo.
func (s CartState) SortedItems() []CartItem {
	list := make([]CartItem, 0, len(s.Items))
	for _, it := range s.Items {
		list = append(list, it)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Manufacturer != list[j].Manufacturer {
			return list[i].Manufacturer < list[j].Manufacturer
		}
		return list[i].Article < list[j].Article
	})
	return list
}
