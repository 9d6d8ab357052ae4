package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/price-catalog/internal/application/cart"
	"github.com/jhoicas/price-catalog/internal/application/pricelist"
	"github.com/jhoicas/price-catalog/internal/application/usecase"
	"github.com/jhoicas/price-catalog/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC    *usecase.ProductUseCase
	FeedUC       *usecase.FeedUseCase
	CartSvc      *cart.Service
	Exporter     *cart.Exporter
	ImportUC     *pricelist.ImportUseCase
	JWTSecret    string
	SecureCookie bool
	Log          zerolog.Logger
	// Done se cierra al apagar el servidor (corta los streams SSE).
	Done <-chan struct{}
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", Health)

	api := app.Group("/api")
	api.Get("/health", Health)

	// Catálogo (público). Las rutas fijas van antes de /:article.
	productHandler := NewProductHandler(deps.ProductUC, deps.FeedUC)
	products := api.Group("/products")
	products.Get("/", productHandler.List)
	products.Get("/count", productHandler.Count)
	products.Get("/meta/manufacturers", productHandler.Manufacturers)
	products.Get("/stock/:article", productHandler.Stock)
	if deps.FeedUC != nil {
		products.Get("/feed.xml", productHandler.Feed)
	}
	products.Get("/:article/lead-time", productHandler.LeadTime)
	products.Get("/:article", productHandler.GetByArticle)
	api.Get("/manufacturers", productHandler.Manufacturers)
	api.Get("/stock/:article", productHandler.Stock)

	// Carrito (cliente por cookie o X-User-ID)
	cartGroup := api.Group("/cart", SessionMiddleware(deps.SecureCookie))
	cartHandler := NewCartHandler(deps.CartSvc, deps.Log, deps.Done)
	cartGroup.Get("/", cartHandler.Get)
	cartGroup.Delete("/", cartHandler.Clear)
	cartGroup.Post("/items", cartHandler.AddItem)
	cartGroup.Put("/items/:article", cartHandler.UpdateItem)
	cartGroup.Delete("/items/:article", cartHandler.RemoveItem)
	cartGroup.Get("/events", cartHandler.Events)
	if deps.Exporter != nil {
		exportHandler := NewExportHandler(deps.Exporter)
		cartGroup.Get("/export.xlsx", exportHandler.XLSX)
		cartGroup.Get("/export.pdf", exportHandler.PDF)
	}

	// Administración (Bearer + rol admin)
	if deps.ImportUC != nil {
		admin := api.Group("/admin", AuthMiddleware(deps.JWTSecret), RequireRole(jwt.RoleAdmin))
		admin.Post("/import", NewAdminHandler(deps.ImportUC).Import)
	}
}
