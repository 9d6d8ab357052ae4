package http

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/price-catalog/internal/application/cart"
)

// ExportHandler descarga del carrito como xlsx o pdf.
type ExportHandler struct {
	exp *cart.Exporter
}

// NewExportHandler construye el handler.
func NewExportHandler(exp *cart.Exporter) *ExportHandler {
	return &ExportHandler{exp: exp}
}

// XLSX godoc
// @Summary      Exportar carrito a Excel
// @Tags         cart
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse  "EMPTY_CART"
// @Router       /api/cart/export.xlsx [get]
func (h *ExportHandler) XLSX(c *fiber.Ctx) error {
	file, err := h.exp.XLSX(c.UserContext(), GetCartUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return sendFile(c, file)
}

// PDF godoc
// @Summary      Exportar carrito a PDF (presupuesto)
// @Tags         cart
// @Produce      application/pdf
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse  "EMPTY_CART"
// @Router       /api/cart/export.pdf [get]
func (h *ExportHandler) PDF(c *fiber.Ctx) error {
	file, err := h.exp.PDF(c.UserContext(), GetCartUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return sendFile(c, file)
}

// sendFile adjunto con nombre en UTF-8 (RFC 5987) para los nombres en cirílico.
func sendFile(c *fiber.Ctx, file *cart.ExportFile) error {
	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition,
		`attachment; filename="export"; filename*=UTF-8''`+url.PathEscape(file.Filename))
	return c.Send(file.Content)
}
