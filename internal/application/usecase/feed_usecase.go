package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/price-catalog/internal/domain/entity"
	"github.com/jhoicas/price-catalog/internal/domain/repository"
)

// FeedBuilder serializa el catálogo (xmlfeed.YMLFeed lo cumple).
type FeedBuilder interface {
	Build(products []*entity.Product, now time.Time) ([]byte, error)
}

// FeedUseCase feed de precios del catálogo completo.
type FeedUseCase struct {
	repo    repository.ProductRepository
	builder FeedBuilder
	now     func() time.Time
}

// NewFeedUseCase construye el caso de uso.
func NewFeedUseCase(repo repository.ProductRepository, builder FeedBuilder) *FeedUseCase {
	return &FeedUseCase{repo: repo, builder: builder, now: time.Now}
}

// Feed documento con todos los productos.
func (uc *FeedUseCase) Feed(ctx context.Context) ([]byte, error) {
	products, err := uc.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return uc.builder.Build(products, uc.now())
}
