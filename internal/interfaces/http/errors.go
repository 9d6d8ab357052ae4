package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/price-catalog/internal/application/dto"
	"github.com/jhoicas/price-catalog/internal/domain"
)

// Mensajes mostrados al cliente.
const (
	msgEmptyCart       = "Корзина пуста. Нечего выгружать."
	msgProductNotFound = "Товар не найден"
)

// writeError traduce un error de dominio a status HTTP + dto.ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	status, body := mapError(err)
	return c.Status(status).JSON(body)
}

func mapError(err error) (int, dto.ErrorResponse) {
	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "EMPTY_CART", Message: msgEmptyCart}
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: msgProductNotFound}
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	case errors.Is(err, domain.ErrMissingUserID):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "MISSING_USER_ID", Message: err.Error()}
	case errors.Is(err, domain.ErrEmptyPriceList), errors.Is(err, domain.ErrInvalidPriceList):
		return fiber.StatusUnprocessableEntity, dto.ErrorResponse{Code: "INVALID_PRICE_LIST", Message: err.Error()}
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()}
	default:
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()}
	}
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: msgProductNotFound})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
