package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound         = errors.New("recurso no encontrado")
	ErrProductNotFound  = errors.New("producto no encontrado")
	ErrInvalidInput     = errors.New("entrada inválida")
	ErrInvalidQuantity  = errors.New("la cantidad debe ser un entero positivo")
	ErrEmptyCart        = errors.New("carrito vacío")
	ErrMissingUserID    = errors.New("identificador de cliente requerido")
	ErrUnauthorized     = errors.New("no autorizado")
	ErrForbidden        = errors.New("acceso denegado")
	ErrEmptyPriceList   = errors.New("lista de precios sin productos válidos")
	ErrInvalidPriceList = errors.New("lista de precios con formato inválido")
)
