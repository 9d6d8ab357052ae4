package cart

import (
	"context"
	"fmt"

	"github.com/jhoicas/price-catalog/internal/domain"
	"github.com/jhoicas/price-catalog/internal/domain/entity"
)

// ProductFinder busca productos del catálogo por artículo (nil, nil si no existe).
type ProductFinder interface {
	GetByArticle(ctx context.Context, article string) (*entity.Product, error)
}

// QuantityLimits rango al que se ajusta la cantidad que llega del cliente.
type QuantityLimits struct {
	Min int
	Max int
}

// Clamp ajusta q al rango [Min, Max].
func (l QuantityLimits) Clamp(q int) int {
	if q < l.Min {
		return l.Min
	}
	if l.Max > 0 && q > l.Max {
		return l.Max
	}
	return q
}

// Service casos de uso del carrito expuestos por HTTP.
type Service struct {
	sessions *Sessions
	products ProductFinder
	limits   QuantityLimits
}

// NewService construye el caso de uso.
func NewService(sessions *Sessions, products ProductFinder, limits QuantityLimits) *Service {
	return &Service{sessions: sessions, products: products, limits: limits}
}

// Sessions registro de carritos (para suscripciones SSE).
func (s *Service) Sessions() *Sessions { return s.sessions }

// Get estado del carrito del cliente.
func (s *Service) Get(ctx context.Context, userID string) (entity.CartState, error) {
	st, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return entity.CartState{}, err
	}
	return st.Snapshot(), nil
}

// AddProduct pone quantity unidades del artículo con el stock actual del catálogo.
// La cantidad se ajusta al rango configurado; 0 elimina la línea.
func (s *Service) AddProduct(ctx context.Context, userID, article string, quantity int) (entity.CartState, error) {
	st, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return entity.CartState{}, err
	}
	quantity = s.limits.Clamp(quantity)
	if quantity <= 0 {
		return st.Remove(ctx, article), nil
	}
	product, err := s.products.GetByArticle(ctx, entity.NormalizeArticle(article))
	if err != nil {
		return entity.CartState{}, fmt.Errorf("cart: buscar producto: %w", err)
	}
	if product == nil {
		return entity.CartState{}, domain.ErrProductNotFound
	}
	return st.AddOrSet(ctx, product, quantity)
}

// UpdateQuantity cambia la cantidad de una línea existente; hint opcional con el stock vigente.
func (s *Service) UpdateQuantity(ctx context.Context, userID, article string, quantity int, hint *entity.Stock) (entity.CartState, error) {
	st, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return entity.CartState{}, err
	}
	return st.SetQuantity(ctx, article, s.limits.Clamp(quantity), hint), nil
}

// Remove elimina una línea.
func (s *Service) Remove(ctx context.Context, userID, article string) (entity.CartState, error) {
	st, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return entity.CartState{}, err
	}
	return st.Remove(ctx, article), nil
}

// Clear vacía el carrito.
func (s *Service) Clear(ctx context.Context, userID string) (entity.CartState, error) {
	st, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return entity.CartState{}, err
	}
	return st.Clear(ctx), nil
}
