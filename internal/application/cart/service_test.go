package cart_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/price-catalog/internal/application/cart"
	"github.com/jhoicas/price-catalog/internal/domain"
	"github.com/jhoicas/price-catalog/internal/domain/entity"
	"github.com/jhoicas/price-catalog/internal/infrastructure/memory"
)

type fakeFinder struct {
	products map[string]*entity.Product
	err      error
}

func (f *fakeFinder) GetByArticle(_ context.Context, article string) (*entity.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.products[article], nil
}

func newService(finder cart.ProductFinder) *cart.Service {
	sessions := cart.NewSessions(memory.NewStorage(), nil, zerolog.Nop(), cart.WithClock(clock()))
	return cart.NewService(sessions, finder, cart.QuantityLimits{Min: 0, Max: 9999})
}

func catalogFinder() *fakeFinder {
	return &fakeFinder{products: map[string]*entity.Product{
		"ls1520": jung(),
		"cd581":  legrand(),
	}}
}

func TestQuantityLimits_Clamp(t *testing.T) {
	l := cart.QuantityLimits{Min: 0, Max: 9999}
	assert.Equal(t, 0, l.Clamp(-5))
	assert.Equal(t, 12, l.Clamp(12))
	assert.Equal(t, 9999, l.Clamp(100000))
}

func TestService_AddProduct(t *testing.T) {
	ctx := context.Background()
	svc := newService(catalogFinder())

	st, err := svc.AddProduct(ctx, "u1", "LS1520", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, st.Items["ls1520"].Quantity)

	st, err = svc.AddProduct(ctx, "u1", "cd581", 20000)
	require.NoError(t, err)
	assert.Equal(t, 9999, st.Items["cd581"].Quantity)

	st, err = svc.AddProduct(ctx, "u1", "cd581", 0)
	require.NoError(t, err)
	assert.NotContains(t, st.Items, "cd581")
	assert.Len(t, st.Items, 1)
}

func TestService_AddProduct_Errores(t *testing.T) {
	ctx := context.Background()

	_, err := newService(catalogFinder()).AddProduct(ctx, "u1", "nada", 1)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = newService(catalogFinder()).AddProduct(ctx, "", "ls1520", 1)
	assert.ErrorIs(t, err, domain.ErrMissingUserID)

	dbErr := errors.New("conexión rechazada")
	_, err = newService(&fakeFinder{err: dbErr}).AddProduct(ctx, "u1", "ls1520", 1)
	assert.ErrorIs(t, err, dbErr)
}

func TestService_UpdateRemoveClear(t *testing.T) {
	ctx := context.Background()
	svc := newService(catalogFinder())
	_, err := svc.AddProduct(ctx, "u1", "ls1520", 5)
	require.NoError(t, err)
	_, err = svc.AddProduct(ctx, "u1", "cd581", 1)
	require.NoError(t, err)

	st, err := svc.UpdateQuantity(ctx, "u1", "ls1520", 16, nil)
	require.NoError(t, err)
	assert.Equal(t, "10-14 дней", st.Items["ls1520"].LeadTime)

	st, err = svc.UpdateQuantity(ctx, "u1", "ls1520", 16, &entity.Stock{Astana: 30})
	require.NoError(t, err)
	assert.Equal(t, "6-10 дней", st.Items["ls1520"].LeadTime)

	st, err = svc.Remove(ctx, "u1", "CD581")
	require.NoError(t, err)
	assert.Len(t, st.Items, 1)

	other, err := svc.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other.Items, "carritos aislados por cliente")

	st, err = svc.Clear(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, st.Items)
}
