package repository

import (
	"context"

	"github.com/jhoicas/price-catalog/internal/domain/entity"
)

// ProductFilter criterios de listado. Search (no vacío) tiene prioridad sobre Manufacturers.
type ProductFilter struct {
	Manufacturers []string // valores en minúsculas; nil = todos
	Search        string
	Limit         int
	Offset        int
}

// ProductRepository define el puerto de persistencia del catálogo (DIP).
type ProductRepository interface {
	List(ctx context.Context, f ProductFilter) ([]*entity.Product, int, error)
	GetByArticle(ctx context.Context, article string) (*entity.Product, error)
	Count(ctx context.Context, manufacturers []string) (int, error)
	Manufacturers(ctx context.Context) ([]entity.ManufacturerCount, error)
	ListAll(ctx context.Context) ([]*entity.Product, error)
	ReplaceAll(ctx context.Context, products []*entity.Product) (int64, error)
}
