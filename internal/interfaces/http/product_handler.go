package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/price-catalog/internal/application/dto"
	"github.com/jhoicas/price-catalog/internal/application/usecase"
	"github.com/jhoicas/price-catalog/internal/infrastructure/xmlfeed"
)

// ProductHandler consultas públicas del catálogo.
type ProductHandler struct {
	uc   *usecase.ProductUseCase
	feed *usecase.FeedUseCase
}

// NewProductHandler construye el handler. feed puede ser nil (sin /feed.xml).
func NewProductHandler(uc *usecase.ProductUseCase, feed *usecase.FeedUseCase) *ProductHandler {
	return &ProductHandler{uc: uc, feed: feed}
}

// List godoc
// @Summary      Listar productos
// @Description  search (artículo o nombre) tiene prioridad sobre manufacturer
// @Tags         products
// @Produce      json
// @Param        manufacturer  query  string  false  "Fabricante o grupo"
// @Param        search        query  string  false  "Texto a buscar"
// @Param        limit         query  int     false  "Límite"  default(500)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.ProductListResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	q := dto.ProductListQuery{
		Manufacturer: c.Query("manufacturer"),
		Search:       c.Query("search"),
		Limit:        c.QueryInt("limit", 0),
		Offset:       c.QueryInt("offset", 0),
	}
	out, err := h.uc.List(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Count godoc
// @Summary      Contar productos
// @Tags         products
// @Produce      json
// @Param        manufacturer  query  string  false  "Fabricante o grupo"
// @Success      200  {object}  dto.CountResponse
// @Router       /api/products/count [get]
func (h *ProductHandler) Count(c *fiber.Ctx) error {
	out, err := h.uc.Count(c.UserContext(), c.Query("manufacturer"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByArticle godoc
// @Summary      Producto por artículo
// @Tags         products
// @Produce      json
// @Param        article  path  string  true  "Artículo (sin distinguir mayúsculas)"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{article} [get]
func (h *ProductHandler) GetByArticle(c *fiber.Ctx) error {
	out, err := h.uc.GetByArticle(c.UserContext(), c.Params("article"))
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return notFound(c)
	}
	return c.JSON(out)
}

// Manufacturers godoc
// @Summary      Fabricantes con número de productos
// @Tags         products
// @Produce      json
// @Success      200  {object}  dto.ManufacturersResponse
// @Router       /api/products/meta/manufacturers [get]
func (h *ProductHandler) Manufacturers(c *fiber.Ctx) error {
	out, err := h.uc.Manufacturers(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Stock godoc
// @Summary      Existencias por ubicación
// @Tags         products
// @Produce      json
// @Param        article  path  string  true  "Artículo"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/stock/{article} [get]
func (h *ProductHandler) Stock(c *fiber.Ctx) error {
	out, err := h.uc.Stock(c.UserContext(), c.Params("article"))
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return notFound(c)
	}
	return c.JSON(out)
}

// LeadTime godoc
// @Summary      Plazo de entrega estimado
// @Tags         products
// @Produce      json
// @Param        article  path   string  true   "Artículo"
// @Param        qty      query  int     false  "Cantidad a pedir (0 = según existencia)"
// @Success      200  {object}  dto.LeadTimeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{article}/lead-time [get]
func (h *ProductHandler) LeadTime(c *fiber.Ctx) error {
	out, err := h.uc.LeadTime(c.UserContext(), c.Params("article"), c.QueryInt("qty", 0))
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return notFound(c)
	}
	return c.JSON(out)
}

// Feed godoc
// @Summary      Feed YML del catálogo
// @Tags         products
// @Produce      xml
// @Success      200  {string}  string
// @Router       /api/products/feed.xml [get]
func (h *ProductHandler) Feed(c *fiber.Ctx) error {
	out, err := h.feed.Feed(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, xmlfeed.ContentType)
	return c.Send(out)
}

// Health godoc
// @Summary      Estado del servicio
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthResponse
// @Router       /health [get]
func Health(c *fiber.Ctx) error {
	return c.JSON(dto.HealthResponse{Status: "ok", Timestamp: time.Now().UTC()})
}

func trimmedParam(c *fiber.Ctx, name string) string {
	return strings.TrimSpace(c.Params(name))
}
