package usecase

import (
	"context"
	"strings"

	"github.com/jhoicas/price-catalog/internal/application/dto"
	"github.com/jhoicas/price-catalog/internal/domain/catalog"
	"github.com/jhoicas/price-catalog/internal/domain/entity"
	"github.com/jhoicas/price-catalog/internal/domain/leadtime"
	"github.com/jhoicas/price-catalog/internal/domain/repository"
)

// ListCache caché de páginas del catálogo (infrastructure/cache.TTL la cumple).
type ListCache interface {
	Get(key string) (*dto.ProductListResponse, bool)
	Set(key string, value *dto.ProductListResponse)
	Purge()
}

// CacheMetrics aciertos y fallos de la caché.
type CacheMetrics interface {
	CacheHit()
	CacheMiss()
}

// Paging límites de paginación del listado.
type Paging struct {
	PageSize    int // por defecto
	MaxPageSize int
	SearchLimit int // límite por defecto de una búsqueda
}

// ProductUseCase consultas del catálogo. Los listados sin búsqueda se cachean por firma de filtro.
type ProductUseCase struct {
	repo    repository.ProductRepository
	cache   ListCache
	metrics CacheMetrics
	paging  Paging
}

// NewProductUseCase construye el caso de uso. cache y metrics pueden ser nil.
func NewProductUseCase(repo repository.ProductRepository, cache ListCache, metrics CacheMetrics, paging Paging) *ProductUseCase {
	return &ProductUseCase{repo: repo, cache: cache, metrics: metrics, paging: paging}
}

// List página del catálogo. Search (no vacío) gana al fabricante.
func (uc *ProductUseCase) List(ctx context.Context, q dto.ProductListQuery) (*dto.ProductListResponse, error) {
	f := catalog.Filter{
		Manufacturer: strings.TrimSpace(q.Manufacturer),
		Search:       strings.TrimSpace(q.Search),
		Offset:       q.Offset,
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.Limit = uc.limit(q.Limit, f.IsSearch())

	cacheable := uc.cache != nil && !f.IsSearch()
	key := f.Signature()
	if cacheable {
		if v, ok := uc.cache.Get(key); ok {
			uc.hit()
			return v, nil
		}
		uc.miss()
	}

	filter := repository.ProductFilter{Search: f.Search, Limit: f.Limit, Offset: f.Offset}
	if !f.IsSearch() {
		filter.Manufacturers = catalog.FilterValues(f.Manufacturer)
	}
	products, total, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := &dto.ProductListResponse{
		Products: make([]dto.ProductResponse, 0, len(products)),
		Total:    total,
		HasMore:  f.Offset+len(products) < total,
		Offset:   f.Offset,
		Limit:    f.Limit,
	}
	for _, p := range products {
		out.Products = append(out.Products, ToProductResponse(p))
	}
	if cacheable {
		uc.cache.Set(key, out)
	}
	return out, nil
}

// Count número de productos (opcionalmente de un fabricante o grupo).
func (uc *ProductUseCase) Count(ctx context.Context, manufacturer string) (*dto.CountResponse, error) {
	n, err := uc.repo.Count(ctx, catalog.FilterValues(manufacturer))
	if err != nil {
		return nil, err
	}
	return &dto.CountResponse{Count: n}, nil
}

// GetByArticle producto por artículo. nil, nil si no existe.
func (uc *ProductUseCase) GetByArticle(ctx context.Context, article string) (*dto.ProductResponse, error) {
	p, err := uc.repo.GetByArticle(ctx, entity.NormalizeArticle(article))
	if err != nil || p == nil {
		return nil, err
	}
	out := ToProductResponse(p)
	return &out, nil
}

// Stock existencias por artículo. nil, nil si no existe.
func (uc *ProductUseCase) Stock(ctx context.Context, article string) (*dto.StockResponse, error) {
	p, err := uc.repo.GetByArticle(ctx, entity.NormalizeArticle(article))
	if err != nil || p == nil {
		return nil, err
	}
	return &dto.StockResponse{Article: p.Article, Astana: max(p.AstanaQty, 0), Almaty: max(p.AlmatyQty, 0)}, nil
}

// LeadTime plazo estimado para pedir qty unidades (qty <= 0: solo según existencia).
func (uc *ProductUseCase) LeadTime(ctx context.Context, article string, qty int) (*dto.LeadTimeResponse, error) {
	p, err := uc.repo.GetByArticle(ctx, entity.NormalizeArticle(article))
	if err != nil || p == nil {
		return nil, err
	}
	out := toLeadTimeResponse(leadtime.Estimate(p.AstanaQty, p.AlmatyQty, qty, p.LeadTimeDefault))
	return &out, nil
}

// Manufacturers fabricantes con su número de productos.
func (uc *ProductUseCase) Manufacturers(ctx context.Context) (*dto.ManufacturersResponse, error) {
	list, err := uc.repo.Manufacturers(ctx)
	if err != nil {
		return nil, err
	}
	out := &dto.ManufacturersResponse{Manufacturers: make([]dto.ManufacturerResponse, 0, len(list))}
	for _, m := range list {
		out.Manufacturers = append(out.Manufacturers, dto.ManufacturerResponse{Name: m.Name, Count: m.Count})
	}
	return out, nil
}

// Invalidate vacía la caché de listados (tras una importación).
func (uc *ProductUseCase) Invalidate() {
	if uc.cache != nil {
		uc.cache.Purge()
	}
}

func (uc *ProductUseCase) limit(requested int, search bool) int {
	def := uc.paging.PageSize
	if search && uc.paging.SearchLimit > 0 {
		def = uc.paging.SearchLimit
	}
	switch {
	case requested <= 0:
		return def
	case uc.paging.MaxPageSize > 0 && requested > uc.paging.MaxPageSize:
		return uc.paging.MaxPageSize
	default:
		return requested
	}
}

func (uc *ProductUseCase) hit() {
	if uc.metrics != nil {
		uc.metrics.CacheHit()
	}
}

func (uc *ProductUseCase) miss() {
	if uc.metrics != nil {
		uc.metrics.CacheMiss()
	}
}

// ToProductResponse mapea la entidad a la salida HTTP.
func ToProductResponse(p *entity.Product) dto.ProductResponse {
	out := dto.ProductResponse{
		ID:              p.ID,
		Manufacturer:    p.Manufacturer,
		Article:         p.Article,
		Name:            p.Name,
		PriceRub:        p.PriceRub,
		LeadTimeDefault: optional(p.LeadTimeDefault),
		LeadTime:        toLeadTimeResponse(leadtime.Estimate(p.AstanaQty, p.AlmatyQty, 0, p.LeadTimeDefault)),
		AstanaQty:       p.AstanaQty,
		AlmatyQty:       p.AlmatyQty,
		CatalogURL:      optional(p.CatalogURL),
		ImageURL:        optional(p.ImageURL),
	}
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}

func toLeadTimeResponse(r leadtime.Result) dto.LeadTimeResponse {
	return dto.LeadTimeResponse{Text: r.Text, Type: r.Type, Class: r.Type.Class()}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
