package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/swaggo/swag"

	"github.com/jhoicas/price-catalog/docs"
	"github.com/jhoicas/price-catalog/internal/application/cart"
	"github.com/jhoicas/price-catalog/internal/application/dto"
	"github.com/jhoicas/price-catalog/internal/application/pricelist"
	"github.com/jhoicas/price-catalog/internal/application/usecase"
	"github.com/jhoicas/price-catalog/internal/domain/repository"
	"github.com/jhoicas/price-catalog/internal/infrastructure/cache"
	"github.com/jhoicas/price-catalog/internal/infrastructure/excel"
	"github.com/jhoicas/price-catalog/internal/infrastructure/memory"
	"github.com/jhoicas/price-catalog/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/price-catalog/internal/infrastructure/pdf"
	"github.com/jhoicas/price-catalog/internal/infrastructure/postgres"
	"github.com/jhoicas/price-catalog/internal/infrastructure/xmlfeed"
	httpRouter "github.com/jhoicas/price-catalog/internal/interfaces/http"
	"github.com/jhoicas/price-catalog/pkg/config"
	"github.com/jhoicas/price-catalog/pkg/logger"
)

// @title                       Price Catalog API
// @version                     1.0
// @description                 Catálogo de precios, carrito y exportación de pedidos.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Bearer <token> (rol admin)
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("cart_storage", cfg.Cart.Storage).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.App.MigrationsAuto {
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}

	m := metrics.New()
	zl := log.Zerolog()

	// Catálogo
	productRepo := postgres.NewProductRepository(pool)
	listCache := cache.NewTTL[string, *dto.ProductListResponse](cfg.Catalog.CacheTTL, nil)
	productUC := usecase.NewProductUseCase(productRepo, listCache, m, usecase.Paging{
		PageSize:    cfg.Catalog.PageSize,
		MaxPageSize: cfg.Catalog.MaxPageSize,
		SearchLimit: cfg.Catalog.SearchLimit,
	})
	feedUC := usecase.NewFeedUseCase(productRepo, xmlfeed.NewYMLFeed(xmlfeed.Shop{
		Name: cfg.Export.ShopName,
		URL:  cfg.Export.ShopURL,
	}))
	importUC := pricelist.NewImportUseCase(productRepo, excel.NewPriceListReader(), productUC, m,
		pricelist.Settings{Kurs: cfg.Pricing.Kurs, GlobalMargin: cfg.Pricing.GlobalMargin}, zl)

	// Carrito: PostgreSQL + LISTEN/NOTIFY entre réplicas, o memoria (una réplica).
	var (
		storage  repository.KeyValueStore
		notifier *postgres.Notifier
	)
	if cfg.Cart.Storage == "memory" {
		storage = memory.NewStorage()
	} else {
		storage = postgres.NewStorageRepository(pool)
		notifier = postgres.NewNotifier(pool, zl)
	}
	var sessions *cart.Sessions
	if notifier != nil {
		sessions = cart.NewSessions(storage, notifier, zl, cart.WithMetrics(m))
		go func() {
			if err := notifier.Listen(ctx, sessions.HandleChange); err != nil {
				log.Error().Err(err).Msg("LISTEN de carritos finalizado")
			}
		}()
	} else {
		sessions = cart.NewSessions(storage, nil, zl, cart.WithMetrics(m))
	}
	go sweepLoop(ctx, sessions, listCache, cfg.Cart.MaxIdle, log)

	cartSvc := cart.NewService(sessions, productRepo, cart.QuantityLimits{Min: cfg.Cart.MinQty, Max: cfg.Cart.MaxQty})
	exporter := cart.NewExporter(sessions, excel.NewOrderWriter(), infrapdf.NewMarotoQuoteGenerator(infrapdf.Options{
		ShopName: cfg.Export.ShopName,
		ShopURL:  cfg.Export.ShopURL,
		FontPath: cfg.Export.PDFFontPath,
	}))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Second * 60,
		UnescapePath: true,
		BodyLimit:    32 * 1024 * 1024, // libros de precios
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	docs.SwaggerInfo.Host = cfg.HTTP.Addr()
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Price Catalog API",
	}))
	app.Get("/openapi.json", func(c *fiber.Ctx) error {
		doc, err := swag.ReadDoc()
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
		return c.SendString(doc)
	})

	if cfg.App.MetricsEnabled {
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:    productUC,
		FeedUC:       feedUC,
		CartSvc:      cartSvc,
		Exporter:     exporter,
		ImportUC:     importUC,
		JWTSecret:    cfg.JWT.Secret,
		SecureCookie: cfg.App.Env == "production",
		Log:          zl,
		Done:         ctx.Done(),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// sweepLoop libera carritos inactivos y páginas caducadas de la caché.
func sweepLoop(ctx context.Context, sessions *cart.Sessions, listCache *cache.TTL[string, *dto.ProductListResponse], maxIdle time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			carts := sessions.Sweep(now, maxIdle)
			pages := listCache.EvictExpired()
			if carts > 0 || pages > 0 {
				log.Debug().Int("carts", carts).Int("pages", pages).Msg("limpieza de sesiones y caché")
			}
		}
	}
}
