// Package leadtime calcula el plazo de entrega de un pedido a partir del stock
// en Astaná (ubicación A) y Almaty (ubicación B).
//
// Niveles:
//
//	fast   "6-10 дней"   Astaná cubre el pedido
//	medium "10-14 дней"  Astaná + Almaty cubren el pedido
//	slow   "по запросу"  hay que pedir al proveedor
//
// Los proveedores con plazo contractual (p. ej. Wago) traen un plazo por defecto
// que se usa cuando no hay stock en ninguna ubicación.
package leadtime

import "strings"

// Type nivel de plazo de entrega.
type Type string

const (
	Fast   Type = "fast"
	Medium Type = "medium"
	Slow   Type = "slow"
)

// Etiquetas mostradas al cliente.
const (
	FastLabel   = "6-10 дней"
	MediumLabel = "10-14 дней"
	SlowLabel   = "по запросу"
)

// Result plazo calculado: texto a mostrar y nivel.
type Result struct {
	Text string `json:"text"`
	Type Type   `json:"type"`
}

var (
	fastResult   = Result{Text: FastLabel, Type: Fast}
	mediumResult = Result{Text: MediumLabel, Type: Medium}
	slowResult   = Result{Text: SlowLabel, Type: Slow}
)

// Estimate calcula el plazo para orderQty unidades. fallback vacío significa que el
// producto no tiene plazo fijo de proveedor.
//
// Con orderQty <= 0 se trata como consulta de disponibilidad (modo sondeo), no como
// pedido: devuelve el plazo esperado antes de que el cliente indique cantidad.
func Estimate(astanaQty, almatyQty, orderQty int, fallback string) Result {
	astanaQty = nonNegative(astanaQty)
	almatyQty = nonNegative(almatyQty)
	hasFallback := fallback != ""

	if astanaQty == 0 && almatyQty == 0 && hasFallback {
		return Parse(fallback)
	}

	if orderQty <= 0 {
		switch {
		case astanaQty > 0:
			return fastResult
		case astanaQty+almatyQty > 0:
			return mediumResult
		case hasFallback:
			return Parse(fallback)
		default:
			return slowResult
		}
	}

	if astanaQty >= orderQty {
		return fastResult
	}
	if astanaQty+almatyQty >= orderQty {
		return mediumResult
	}
	if hasFallback && fallback != SlowLabel {
		return Parse(fallback)
	}
	return slowResult
}

// Parse clasifica una etiqueta libre por subcadena. El texto se devuelve sin cambios.
func Parse(label string) Result {
	switch {
	case strings.Contains(label, "6-10"):
		return Result{Text: label, Type: Fast}
	case strings.Contains(label, "10-14"):
		return Result{Text: label, Type: Medium}
	default:
		return Result{Text: label, Type: Slow}
	}
}

// Class clase CSS de la celda de plazo en el escaparate.
func (t Type) Class() string {
	switch t {
	case Fast, Medium, Slow:
		return "cell-lead-time " + string(t)
	default:
		return "cell-lead-time"
	}
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
