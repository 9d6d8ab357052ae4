package pricelist

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/price-catalog/internal/domain"
	"github.com/jhoicas/price-catalog/internal/domain/catalog"
	"github.com/jhoicas/price-catalog/internal/domain/entity"
	"github.com/jhoicas/price-catalog/internal/domain/pricing"
	"github.com/jhoicas/price-catalog/internal/domain/repository"
)

// CacheInvalidator vacía la caché del catálogo tras cargar una lista nueva.
type CacheInvalidator interface {
	Invalidate()
}

// Metrics filas cargadas y descartadas.
type Metrics interface {
	ImportRows(loaded, skipped int)
}

// Motivos de descarte de una fila.
const (
	SkipEmptyArticle = "artículo vacío"
	SkipEmptyName    = "nombre vacío"
	SkipBadPrice     = "precio no positivo"
)

// SkippedRow fila descartada con su motivo.
type SkippedRow struct {
	Line    int    `json:"line"`
	Article string `json:"article"`
	Reason  string `json:"reason"`
}

// Result resumen de una importación.
type Result struct {
	Loaded        int64        `json:"loaded"`
	Manufacturers int          `json:"manufacturers"`
	Duplicates    int          `json:"duplicates"`
	Skipped       []SkippedRow `json:"skipped"`
}

// Settings parámetros de precio por defecto (configuración); la hoja Settings los sobrescribe.
type Settings struct {
	Kurs         decimal.Decimal
	GlobalMargin decimal.Decimal
}

// ImportUseCase carga la lista de precios en el catálogo.
type ImportUseCase struct {
	repo     repository.ProductRepository
	reader   PriceListReader
	cache    CacheInvalidator
	metrics  Metrics
	settings Settings
	log      zerolog.Logger
	now      func() time.Time
}

// NewImportUseCase construye el caso de uso. cache y metrics pueden ser nil.
func NewImportUseCase(repo repository.ProductRepository, reader PriceListReader, cache CacheInvalidator, metrics Metrics, settings Settings, log zerolog.Logger) *ImportUseCase {
	return &ImportUseCase{
		repo:     repo,
		reader:   reader,
		cache:    cache,
		metrics:  metrics,
		settings: settings,
		log:      log,
		now:      time.Now,
	}
}

// Import lee el libro, calcula precios y reemplaza el catálogo completo.
func (uc *ImportUseCase) Import(ctx context.Context, r io.Reader) (*Result, error) {
	list, err := uc.reader.Read(r)
	if err != nil {
		return nil, err
	}
	products, res, err := BuildProducts(list, uc.settings, uc.now())
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, domain.ErrEmptyPriceList
	}

	n, err := uc.repo.ReplaceAll(ctx, products)
	if err != nil {
		return nil, fmt.Errorf("reemplazar catálogo: %w", err)
	}
	res.Loaded = n

	if uc.cache != nil {
		uc.cache.Invalidate()
	}
	if uc.metrics != nil {
		uc.metrics.ImportRows(int(n), len(res.Skipped))
	}
	uc.log.Info().
		Int64("loaded", n).
		Int("skipped", len(res.Skipped)).
		Int("duplicates", res.Duplicates).
		Int("manufacturers", res.Manufacturers).
		Msg("lista de precios importada")
	return res, nil
}

// BuildProducts convierte la lista en productos del catálogo:
// precio = round(dealer × (1 + margen) / kurs), margen artículo > fabricante > global;
// stock de la hoja Stock; plazo fijo del proveedor como lead_time_default.
// Artículos repetidos: gana la última fila (en la posición de la primera).
func BuildProducts(list *PriceList, s Settings, now time.Time) ([]*entity.Product, *Result, error) {
	kurs, global := s.Kurs, s.GlobalMargin
	if list.Kurs != nil {
		kurs = *list.Kurs
	}
	if list.GlobalMargin != nil {
		global = *list.GlobalMargin
	}
	if !kurs.IsPositive() {
		return nil, nil, fmt.Errorf("%w: kurs debe ser positivo (%s)", domain.ErrInvalidPriceList, kurs)
	}

	margins := pricing.NewMargins(global)
	for k, v := range list.ArticleMargins {
		margins.ByArticle[entity.NormalizeArticle(k)] = v
	}
	for k, v := range list.ManufacturerMargins {
		margins.ByManufacturer[catalog.Canonical(k)] = v
	}

	res := &Result{}
	index := make(map[string]int, len(list.Products))
	products := make([]*entity.Product, 0, len(list.Products))
	for _, row := range list.Products {
		article := entity.NormalizeArticle(row.Article)
		switch {
		case article == "":
			res.Skipped = append(res.Skipped, SkippedRow{Line: row.Line, Reason: SkipEmptyArticle})
			continue
		case row.Name == "":
			res.Skipped = append(res.Skipped, SkippedRow{Line: row.Line, Article: article, Reason: SkipEmptyName})
			continue
		case !row.DealerPriceKZT.IsPositive():
			res.Skipped = append(res.Skipped, SkippedRow{Line: row.Line, Article: article, Reason: SkipBadPrice})
			continue
		}

		manufacturer := catalog.Canonical(row.Manufacturer)
		price := pricing.ClientPriceRub(row.DealerPriceKZT, margins.For(article, manufacturer), kurs)
		if price <= 0 {
			res.Skipped = append(res.Skipped, SkippedRow{Line: row.Line, Article: article, Reason: SkipBadPrice})
			continue
		}
		stock := list.Stock[article]
		p := &entity.Product{
			Manufacturer:    manufacturer,
			Article:         article,
			Name:            row.Name,
			PriceRub:        price,
			DealerPriceKZT:  row.DealerPriceKZT,
			LeadTimeDefault: row.FixedLeadTime,
			AstanaQty:       stock.Astana,
			AlmatyQty:       stock.Almaty,
			CatalogURL:      row.CatalogURL,
			ImageURL:        row.ImageURL,
			UpdatedAt:       now,
		}
		if i, dup := index[article]; dup {
			products[i] = p
			res.Duplicates++
			continue
		}
		index[article] = len(products)
		products = append(products, p)
	}

	seen := make(map[string]struct{})
	for _, p := range products {
		seen[p.Manufacturer] = struct{}{}
	}
	res.Manufacturers = len(seen)
	return products, res, nil
}
