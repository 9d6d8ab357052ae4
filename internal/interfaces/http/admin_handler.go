package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/price-catalog/internal/application/dto"
	"github.com/jhoicas/price-catalog/internal/application/pricelist"
)

// AdminHandler operaciones de administración (JWT con rol admin).
type AdminHandler struct {
	importer *pricelist.ImportUseCase
}

// NewAdminHandler construye el handler.
func NewAdminHandler(importer *pricelist.ImportUseCase) *AdminHandler {
	return &AdminHandler{importer: importer}
}

// Import godoc
// @Summary      Cargar lista de precios
// @Description  Sustituye el catálogo completo por el contenido del libro xlsx
// @Tags         admin
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Libro xlsx (hojas Products, Stock, Margins, Settings)"
// @Success      200  {object}  pricelist.Result
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/admin/import [post]
func (h *AdminHandler) Import(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_FILE", Message: "campo file requerido"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_FILE", Message: err.Error()})
	}
	defer f.Close()

	res, err := h.importer.Import(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}
