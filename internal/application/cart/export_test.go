package cart_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/price-catalog/internal/application/cart"
	"github.com/jhoicas/price-catalog/internal/domain"
	"github.com/jhoicas/price-catalog/internal/domain/entity"
	"github.com/jhoicas/price-catalog/internal/infrastructure/memory"
)

func sampleState() entity.CartState {
	st := entity.NewCartState(fixedNow)
	st.Items["ls1520"] = entity.CartItem{Article: "ls1520", Manufacturer: "Jung", Name: "Рамка", PriceRub: 1920, Quantity: 5, LeadTime: "6-10 дней"}
	st.Items["cd581"] = entity.CartItem{Article: "cd581", Manufacturer: "Legrand", Name: "Розетка", PriceRub: 3450, Quantity: 2, LeadTime: "10-14 дней"}
	st.Items["as1520"] = entity.CartItem{Article: "as1520", Manufacturer: "Jung", Name: "Клавиша", PriceRub: 100, Quantity: 1, LeadTime: "по запросу"}
	return st
}

func TestBuildExport(t *testing.T) {
	table, err := cart.BuildExport(sampleState(), fixedNow)
	require.NoError(t, err)

	require.Len(t, table.Rows, 3)
	assert.Equal(t, "Jung", table.Rows[0].Manufacturer)
	assert.Equal(t, "as1520", table.Rows[0].Article)
	assert.Equal(t, "ls1520", table.Rows[1].Article)
	assert.Equal(t, int64(9600), table.Rows[1].SumRub)
	assert.Equal(t, "Legrand", table.Rows[2].Manufacturer)

	total := table.TotalRow()
	assert.Equal(t, "ИТОГО:", total.Name)
	assert.Equal(t, 8, total.Quantity)
	assert.Equal(t, int64(16600), total.SumRub)
	assert.Zero(t, total.PriceRub)
}

func TestBuildExport_CarritoVacio(t *testing.T) {
	_, err := cart.BuildExport(entity.NewCartState(fixedNow), fixedNow)
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "Заказ_14-03-2026.xlsx", cart.ExportFilename(fixedNow, "xlsx"))
	assert.Equal(t, "Заказ_01-12-2025.pdf", cart.ExportFilename(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), "pdf"))
}

type stubSheet struct {
	got cart.ExportTable
	err error
}

func (s *stubSheet) WriteOrder(table cart.ExportTable) ([]byte, error) {
	s.got = table
	return []byte("xlsx"), s.err
}

type stubQuote struct{}

func (stubQuote) GenerateQuote(context.Context, cart.ExportTable) ([]byte, error) {
	return []byte("%PDF"), nil
}

func TestExporter(t *testing.T) {
	ctx := context.Background()
	sessions := cart.NewSessions(memory.NewStorage(), nil, zerolog.Nop())
	sheet := &stubSheet{}
	exp := cart.NewExporter(sessions, sheet, stubQuote{}).WithClock(clock())

	_, err := exp.XLSX(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrEmptyCart)

	st, err := sessions.Get(ctx, "u1")
	require.NoError(t, err)
	_, err = st.AddOrSet(ctx, jung(), 2)
	require.NoError(t, err)

	file, err := exp.XLSX(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Заказ_14-03-2026.xlsx", file.Filename)
	assert.Equal(t, cart.ContentTypeXLSX, file.ContentType)
	assert.Equal(t, []byte("xlsx"), file.Content)
	assert.Equal(t, int64(3840), sheet.got.TotalRub)

	file, err = exp.PDF(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Заказ_14-03-2026.pdf", file.Filename)

	sheet.err = errors.New("disco lleno")
	_, err = exp.XLSX(ctx, "u1")
	assert.Error(t, err)

	_, err = cart.NewExporter(sessions, sheet, nil).PDF(ctx, "u1")
	assert.Error(t, err)
}
