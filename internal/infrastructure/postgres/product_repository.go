package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/price-catalog/internal/domain"
	"github.com/jhoicas/price-catalog/internal/domain/entity"
	"github.com/jhoicas/price-catalog/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, manufacturer, article, name, price_rub, dealer_price_kzt, lead_time_default,
	astana_qty, almaty_qty, catalog_url, image_url, updated_at`

// copyColumns columnas cargadas por ReplaceAll (id lo genera la secuencia).
var copyColumns = []string{
	"manufacturer", "article", "name", "price_rub", "dealer_price_kzt", "lead_time_default",
	"astana_qty", "almaty_qty", "catalog_url", "image_url", "updated_at",
}

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// List devuelve una página del catálogo y el total que cumple el filtro.
// Search (no vacío) busca por artículo o nombre e ignora el fabricante.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	where, args := buildWhere(f)

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := `SELECT ` + productColumns + ` FROM products` + where + ` ORDER BY manufacturer, article`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	products, err := scanProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetByArticle obtiene un producto por artículo (sin distinguir mayúsculas). nil, nil si no existe.
func (r *ProductRepo) GetByArticle(ctx context.Context, article string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE article = $1`
	p, err := scanProduct(r.q.QueryRow(ctx, query, entity.NormalizeArticle(article)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Count número de productos; manufacturers vacío cuenta todo.
func (r *ProductRepo) Count(ctx context.Context, manufacturers []string) (int, error) {
	where, args := buildWhere(repository.ProductFilter{Manufacturers: manufacturers})
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM products`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// Manufacturers fabricantes distintos con su número de productos, por nombre.
func (r *ProductRepo) Manufacturers(ctx context.Context) ([]entity.ManufacturerCount, error) {
	rows, err := r.q.Query(ctx, `
		SELECT manufacturer, count(*) FROM products
		GROUP BY manufacturer ORDER BY manufacturer`)
	if err != nil {
		return nil, fmt.Errorf("list manufacturers: %w", err)
	}
	defer rows.Close()
	var list []entity.ManufacturerCount
	for rows.Next() {
		var m entity.ManufacturerCount
		if err := rows.Scan(&m.Name, &m.Count); err != nil {
			return nil, fmt.Errorf("scan manufacturer: %w", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list manufacturers: %w", err)
	}
	return list, nil
}

// ListAll catálogo completo ordenado (feed y exportaciones).
func (r *ProductRepo) ListAll(ctx context.Context) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY manufacturer, article`)
	if err != nil {
		return nil, fmt.Errorf("list all products: %w", err)
	}
	return scanProducts(rows)
}

// ReplaceAll sustituye el catálogo completo en una sola transacción (TRUNCATE + COPY).
// Si algo falla el catálogo anterior queda intacto.
func (r *ProductRepo) ReplaceAll(ctx context.Context, products []*entity.Product) (int64, error) {
	var copied int64
	now := time.Now().UTC()
	err := inTx(ctx, r.q, func(tx Querier) error {
		if _, err := tx.Exec(ctx, `TRUNCATE TABLE products RESTART IDENTITY`); err != nil {
			return fmt.Errorf("truncate products: %w", err)
		}
		n, err := tx.CopyFrom(ctx, pgx.Identifier{"products"}, copyColumns,
			pgx.CopyFromSlice(len(products), func(i int) ([]any, error) {
				p := products[i]
				updated := p.UpdatedAt
				if updated.IsZero() {
					updated = now
				}
				return []any{
					p.Manufacturer, entity.NormalizeArticle(p.Article), p.Name, p.PriceRub,
					p.DealerPriceKZT, p.LeadTimeDefault, p.AstanaQty, p.AlmatyQty, p.CatalogURL, p.ImageURL, updated,
				}, nil
			}))
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: artículo duplicado", domain.ErrInvalidPriceList)
			}
			return fmt.Errorf("copy products: %w", err)
		}
		copied = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return copied, nil
}

// buildWhere arma la cláusula WHERE y sus argumentos.
func buildWhere(f repository.ProductFilter) (string, []any) {
	if s := strings.TrimSpace(f.Search); s != "" {
		return ` WHERE (article ILIKE $1 OR name ILIKE $1)`, []any{likePattern(s)}
	}
	if len(f.Manufacturers) > 0 {
		return ` WHERE lower(manufacturer) = ANY($1)`, []any{f.Manufacturers}
	}
	return "", nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.Manufacturer, &p.Article, &p.Name, &p.PriceRub, &p.DealerPriceKZT, &p.LeadTimeDefault,
		&p.AstanaQty, &p.AlmatyQty, &p.CatalogURL, &p.ImageURL, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanProducts(rows pgx.Rows) ([]*entity.Product, error) {
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return list, nil
}
