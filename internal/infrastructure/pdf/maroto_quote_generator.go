// Package pdf genera el presupuesto (коммерческое предложение) del carrito en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Tienda + URL        │  Título + Fecha              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fabricante | Artículo | Nombre | Precio | Cant | ... │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: unidades / ИТОГО                                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: aviso de validez de precios y plazos                │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/johnfercher/maroto/v2/pkg/repository"

	"github.com/jhoicas/price-catalog/internal/application/cart"
	"github.com/jhoicas/price-catalog/internal/domain/pricing"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

const quoteFontFamily = "quote-ttf"

var _ cart.QuoteGenerator = (*MarotoQuoteGenerator)(nil)

// Options datos de la cabecera y fuente del documento.
type Options struct {
	ShopName string
	ShopURL  string
	FontPath string // TTF con cirílico; vacío = helvetica
}

// MarotoQuoteGenerator implementa cart.QuoteGenerator usando Maroto v2.
type MarotoQuoteGenerator struct {
	opts Options
}

// NewMarotoQuoteGenerator construye el generador.
func NewMarotoQuoteGenerator(opts Options) *MarotoQuoteGenerator {
	return &MarotoQuoteGenerator{opts: opts}
}

// GenerateQuote genera el PDF y devuelve sus bytes.
func (g *MarotoQuoteGenerator) GenerateQuote(_ context.Context, table cart.ExportTable) ([]byte, error) {
	cfg, err := g.config()
	if err != nil {
		return nil, err
	}
	m := maroto.New(cfg)

	m.AddRows(g.headerRow(table))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(table.Rows)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(table))

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *MarotoQuoteGenerator) config() (*entity.Config, error) {
	b := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithTitle("Коммерческое предложение", true).
		WithAuthor(g.opts.ShopName, true)

	if g.opts.FontPath != "" {
		fonts, err := repository.New().
			AddUTF8Font(quoteFontFamily, fontstyle.Normal, g.opts.FontPath).
			AddUTF8Font(quoteFontFamily, fontstyle.Bold, g.opts.FontPath).
			Load()
		if err != nil {
			return nil, fmt.Errorf("pdf: cargar fuente %s: %w", g.opts.FontPath, err)
		}
		b = b.WithCustomFonts(fonts).WithDefaultFont(&props.Font{Family: quoteFontFamily, Size: 9})
	}
	return b.Build(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: tienda (izq) y título + fecha (der).
func (g *MarotoQuoteGenerator) headerRow(table cart.ExportTable) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(g.opts.ShopName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(g.opts.ShopURL, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("КОММЕРЧЕСКОЕ ПРЕДЛОЖЕНИЕ", props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Дата: "+table.GeneratedAt.Format("02.01.2006"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

type column struct {
	label string
	size  int
	align align.Type
}

// Anchos sobre 12 columnas: fabricante, artículo, nombre, precio, cantidad, suma, plazo.
var columns = []column{
	{"Производитель", 2, align.Left},
	{"Артикул", 1, align.Left},
	{"Наименование", 3, align.Left},
	{"Цена, ₽", 1, align.Right},
	{"Кол-во", 1, align.Center},
	{"Сумма, ₽", 2, align.Right},
	{"Срок", 2, align.Center},
}

// tableHeaderRow: cabecera de la tabla.
func tableHeaderRow() core.Row {
	cols := make([]core.Col, 0, len(columns))
	for _, c := range columns {
		cols = append(cols, col.New(c.size).Add(text.New(c.label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: c.align,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		})))
	}
	return row.New(8).Add(cols...).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableDetailRows: una fila por línea del pedido.
func tableDetailRows(rows []cart.ExportRow) []core.Row {
	result := make([]core.Row, 0, len(rows))
	for _, r := range rows {
		values := []string{
			r.Manufacturer,
			r.Article,
			r.Name,
			pricing.FormatRub(r.PriceRub),
			fmt.Sprintf("%d", r.Quantity),
			pricing.FormatRub(r.SumRub),
			r.LeadTime,
		}
		cols := make([]core.Col, 0, len(columns))
		for i, c := range columns {
			cols = append(cols, col.New(c.size).Add(text.New(values[i], props.Text{
				Size: 8, Align: c.align, Top: 1, Left: 1, Right: 1,
			})))
		}
		result = append(result, row.New(7).Add(cols...))
	}
	return result
}

// totalsRow: unidades e importe total alineados a la derecha.
func totalsRow(table cart.ExportTable) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2,
		})
	}
	return row.New(14).Add(
		col.New(6),
		col.New(3).Add(label(cart.TotalLabel)),
		col.New(3).Add(
			text.New(fmt.Sprintf("%d шт.", table.TotalQuantity), props.Text{Size: 9, Align: align.Right, Right: 1}),
			text.New(pricing.FormatRub(table.TotalRub)+" ₽", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 5, Right: 1,
			}),
		),
	)
}

func footerRow() core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(
			"Цены и сроки поставки действительны на дату формирования предложения "+
				"и зависят от наличия на складах.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	))
}
