// Command import carga un libro de precios xlsx en el catálogo sin pasar por la API.
//
//	go run ./cmd/import -file price.xlsx
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/price-catalog/internal/application/pricelist"
	"github.com/jhoicas/price-catalog/internal/infrastructure/excel"
	"github.com/jhoicas/price-catalog/internal/infrastructure/metrics"
	"github.com/jhoicas/price-catalog/internal/infrastructure/postgres"
	"github.com/jhoicas/price-catalog/pkg/config"
	"github.com/jhoicas/price-catalog/pkg/logger"
)

func main() {
	path := flag.String("file", "", "ruta del libro xlsx")
	timeout := flag.Duration("timeout", 5*time.Minute, "tiempo máximo de la carga")
	flag.Parse()
	if *path == "" {
		fmt.Fprintln(os.Stderr, "uso: import -file price.xlsx")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: cfg.App.Name + "-import"})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name+"-import")
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.App.MigrationsAuto {
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}

	f, err := os.Open(*path)
	if err != nil {
		log.Fatal().Err(err).Str("file", *path).Msg("abrir libro")
	}
	defer f.Close()

	uc := pricelist.NewImportUseCase(
		postgres.NewProductRepository(pool),
		excel.NewPriceListReader(),
		nil, // la API invalida su caché por TTL
		metrics.New(),
		pricelist.Settings{Kurs: cfg.Pricing.Kurs, GlobalMargin: cfg.Pricing.GlobalMargin},
		log.Zerolog(),
	)
	res, err := uc.Import(ctx, f)
	if err != nil {
		log.Fatal().Err(err).Str("file", *path).Msg("importación")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(res)
}
