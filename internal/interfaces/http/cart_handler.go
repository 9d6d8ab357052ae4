package http

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/jhoicas/price-catalog/internal/application/cart"
	"github.com/jhoicas/price-catalog/internal/application/dto"
	"github.com/jhoicas/price-catalog/internal/domain/entity"
	"github.com/jhoicas/price-catalog/internal/domain/leadtime"
	"github.com/jhoicas/price-catalog/internal/domain/pricing"
)

const sseKeepAlive = 15 * time.Second

// CartHandler carrito del cliente identificado por SessionMiddleware.
type CartHandler struct {
	svc  *cart.Service
	log  zerolog.Logger
	done <-chan struct{}
}

// NewCartHandler construye el handler. Al cerrarse done terminan los streams SSE abiertos;
// puede ser nil.
func NewCartHandler(svc *cart.Service, log zerolog.Logger, done <-chan struct{}) *CartHandler {
	return &CartHandler{svc: svc, log: log, done: done}
}

// Get godoc
// @Summary      Carrito actual
// @Tags         cart
// @Produce      json
// @Param        X-User-ID  header  string  false  "Id del cliente (si no hay cookie)"
// @Success      200  {object}  dto.CartResponse
// @Router       /api/cart [get]
func (h *CartHandler) Get(c *fiber.Ctx) error {
	st, err := h.svc.Get(c.UserContext(), GetCartUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(ToCartResponse(st))
}

// AddItem godoc
// @Summary      Añadir o fijar cantidad de un producto
// @Description  La cantidad se acota a [CART_MIN_QTY, CART_MAX_QTY]; 0 elimina la línea
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AddCartItemRequest  true  "Artículo y cantidad"
// @Success      200  {object}  dto.CartResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cart/items [post]
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var in dto.AddCartItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if entity.NormalizeArticle(in.Article) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "article es requerido"})
	}
	st, err := h.svc.AddProduct(c.UserContext(), GetCartUserID(c), in.Article, in.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(ToCartResponse(st))
}

// UpdateItem godoc
// @Summary      Cambiar cantidad de una línea
// @Description  astanaQty/almatyQty opcionales sustituyen el stock guardado
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        article  path  string                     true  "Artículo"
// @Param        body     body  dto.UpdateCartItemRequest  true  "Cantidad"
// @Success      200  {object}  dto.CartResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/cart/items/{article} [put]
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	var in dto.UpdateCartItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	userID, article := GetCartUserID(c), trimmedParam(c, "article")
	var stored entity.Stock
	if (in.AstanaQty == nil) != (in.AlmatyQty == nil) {
		current, err := h.svc.Get(c.UserContext(), userID)
		if err != nil {
			return writeError(c, err)
		}
		if it, ok := current.Items[entity.NormalizeArticle(article)]; ok {
			stored = entity.Stock{Astana: it.AstanaQty, Almaty: it.AlmatyQty}
		}
	}
	st, err := h.svc.UpdateQuantity(c.UserContext(), userID, article, in.Quantity, stockHint(in, stored))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(ToCartResponse(st))
}

// RemoveItem godoc
// @Summary      Quitar una línea
// @Tags         cart
// @Produce      json
// @Param        article  path  string  true  "Artículo"
// @Success      200  {object}  dto.CartResponse
// @Router       /api/cart/items/{article} [delete]
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	st, err := h.svc.Remove(c.UserContext(), GetCartUserID(c), trimmedParam(c, "article"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(ToCartResponse(st))
}

// Clear godoc
// @Summary      Vaciar el carrito
// @Tags         cart
// @Produce      json
// @Success      200  {object}  dto.CartResponse
// @Router       /api/cart [delete]
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	st, err := h.svc.Clear(c.UserContext(), GetCartUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(ToCartResponse(st))
}

// Events godoc
// @Summary      Cambios del carrito (Server-Sent Events)
// @Description  Envía el estado completo al conectar y tras cada cambio (incluidos los de otras pestañas)
// @Tags         cart
// @Produce      text/event-stream
// @Success      200  {string}  string
// @Router       /api/cart/events [get]
func (h *CartHandler) Events(c *fiber.Ctx) error {
	userID := GetCartUserID(c)
	store, err := h.svc.Sessions().Get(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err)
	}

	// Buffer de 1: si el cliente va lento solo importa el último estado.
	updates := make(chan entity.CartState, 1)
	unsubscribe := store.Subscribe(func(st entity.CartState) {
		select {
		case updates <- st:
		default:
			select {
			case <-updates:
			default:
			}
			select {
			case updates <- st:
			default:
			}
		}
	})
	initial := store.Snapshot()

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	log := h.log.With().Str("user_id", userID).Logger()
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer unsubscribe()
		if err := writeCartEvent(w, initial); err != nil {
			return
		}
		ticker := time.NewTicker(sseKeepAlive)
		defer ticker.Stop()
		for {
			select {
			case <-h.done:
				log.Debug().Msg("apagado: cierre de stream SSE")
				return
			case st := <-updates:
				if err := writeCartEvent(w, st); err != nil {
					log.Debug().Err(err).Msg("cliente SSE desconectado")
					return
				}
			case <-ticker.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					log.Debug().Err(err).Msg("cliente SSE desconectado")
					return
				}
			}
		}
	}))
	return nil
}

func writeCartEvent(w *bufio.Writer, st entity.CartState) error {
	payload, err := json.Marshal(ToCartResponse(st))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: cart\ndata: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}

// stockHint stock recibido por cifra; la que falta se toma de stored.
func stockHint(in dto.UpdateCartItemRequest, stored entity.Stock) *entity.Stock {
	if in.AstanaQty == nil && in.AlmatyQty == nil {
		return nil
	}
	hint := stored
	if in.AstanaQty != nil {
		hint.Astana = *in.AstanaQty
	}
	if in.AlmatyQty != nil {
		hint.Almaty = *in.AlmatyQty
	}
	return &hint
}

// ToCartResponse estado del carrito con totales, líneas ordenadas por fabricante y artículo.
func ToCartResponse(st entity.CartState) dto.CartResponse {
	items := st.SortedItems()
	out := dto.CartResponse{
		Items:         make([]dto.CartItemResponse, 0, len(items)),
		LastUpdated:   st.LastUpdated,
		Total:         st.Total(),
		TotalText:     pricing.FormatRub(st.Total()),
		ItemsCount:    st.ItemsCount(),
		TotalQuantity: st.TotalQuantity(),
	}
	for _, it := range items {
		out.Items = append(out.Items, dto.CartItemResponse{
			Article:         it.Article,
			Manufacturer:    it.Manufacturer,
			Name:            it.Name,
			PriceRub:        it.PriceRub,
			Quantity:        it.Quantity,
			Sum:             it.Sum(),
			LeadTime:        it.LeadTime,
			LeadTimeClass:   leadtime.Parse(it.LeadTime).Type.Class(),
			AstanaQty:       it.AstanaQty,
			AlmatyQty:       it.AlmatyQty,
			LeadTimeDefault: it.LeadTimeDefault,
		})
	}
	return out
}
