package cart

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/price-catalog/internal/domain"
	"github.com/jhoicas/price-catalog/internal/domain/entity"
)

// ExportHeaders encabezados de la hoja y del presupuesto, en el orden de ExportRow.
var ExportHeaders = []string{
	"Производитель",
	"Артикул",
	"Наименование",
	"Цена, ₽",
	"Количество",
	"Сумма, ₽",
	"Срок поставки",
}

// TotalLabel texto de la fila de totales.
const TotalLabel = "ИТОГО:"

// ExportRow fila plana del pedido exportado.
type ExportRow struct {
	Manufacturer string
	Article      string
	Name         string
	PriceRub     int64
	Quantity     int
	SumRub       int64
	LeadTime     string
}

// ExportTable filas agrupadas por fabricante más la fila de totales.
type ExportTable struct {
	Rows          []ExportRow
	TotalQuantity int
	TotalRub      int64
	GeneratedAt   time.Time
}

// TotalRow fila "ИТОГО:" con la suma de unidades e importes.
func (t ExportTable) TotalRow() ExportRow {
	return ExportRow{Name: TotalLabel, Quantity: t.TotalQuantity, SumRub: t.TotalRub}
}

// BuildExport proyecta el carrito a filas agrupadas por fabricante (grupos y líneas ordenados).
// Carrito vacío: domain.ErrEmptyCart.
func BuildExport(state entity.CartState, now time.Time) (ExportTable, error) {
	if len(state.Items) == 0 {
		return ExportTable{}, domain.ErrEmptyCart
	}

	groups := make(map[string][]entity.CartItem)
	for _, it := range state.Items {
		groups[it.Manufacturer] = append(groups[it.Manufacturer], it)
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	table := ExportTable{Rows: make([]ExportRow, 0, len(state.Items)), GeneratedAt: now}
	for _, name := range names {
		items := groups[name]
		sort.Slice(items, func(i, j int) bool { return items[i].Article < items[j].Article })
		for _, it := range items {
			table.Rows = append(table.Rows, ExportRow{
				Manufacturer: name,
				Article:      it.Article,
				Name:         it.Name,
				PriceRub:     it.PriceRub,
				Quantity:     it.Quantity,
				SumRub:       it.Sum(),
				LeadTime:     it.LeadTime,
			})
			table.TotalQuantity += it.Quantity
			table.TotalRub += it.Sum()
		}
	}
	return table, nil
}

// ExportFilename nombre del archivo descargado: Заказ_DD-MM-YYYY.<ext>.
func ExportFilename(now time.Time, ext string) string {
	return fmt.Sprintf("Заказ_%s.%s", now.Format("02-01-2006"), ext)
}

// SpreadsheetWriter genera el libro .xlsx del pedido.
type SpreadsheetWriter interface {
	WriteOrder(table ExportTable) ([]byte, error)
}

// QuoteGenerator genera el presupuesto en PDF.
type QuoteGenerator interface {
	GenerateQuote(ctx context.Context, table ExportTable) ([]byte, error)
}

// ExportFile archivo listo para descargar.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

// Exporter caso de uso de exportación del carrito.
type Exporter struct {
	sessions *Sessions
	sheet    SpreadsheetWriter
	quote    QuoteGenerator
	now      func() time.Time
}

// NewExporter construye el caso de uso. quote puede ser nil (PDF deshabilitado).
func NewExporter(sessions *Sessions, sheet SpreadsheetWriter, quote QuoteGenerator) *Exporter {
	return &Exporter{sessions: sessions, sheet: sheet, quote: quote, now: time.Now}
}

// WithClock reemplaza time.Now (tests).
func (e *Exporter) WithClock(now func() time.Time) *Exporter {
	e.now = now
	return e
}

// XLSX exporta el carrito del cliente a Excel.
func (e *Exporter) XLSX(ctx context.Context, userID string) (*ExportFile, error) {
	table, err := e.table(ctx, userID)
	if err != nil {
		return nil, err
	}
	content, err := e.sheet.WriteOrder(table)
	if err != nil {
		return nil, fmt.Errorf("export xlsx: %w", err)
	}
	return &ExportFile{
		Filename:    ExportFilename(table.GeneratedAt, "xlsx"),
		ContentType: ContentTypeXLSX,
		Content:     content,
	}, nil
}

// PDF exporta el carrito del cliente como presupuesto.
func (e *Exporter) PDF(ctx context.Context, userID string) (*ExportFile, error) {
	if e.quote == nil {
		return nil, fmt.Errorf("export pdf: generador no configurado")
	}
	table, err := e.table(ctx, userID)
	if err != nil {
		return nil, err
	}
	content, err := e.quote.GenerateQuote(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("export pdf: %w", err)
	}
	return &ExportFile{
		Filename:    ExportFilename(table.GeneratedAt, "pdf"),
		ContentType: ContentTypePDF,
		Content:     content,
	}, nil
}

func (e *Exporter) table(ctx context.Context, userID string) (ExportTable, error) {
	st, err := e.sessions.Get(ctx, userID)
	if err != nil {
		return ExportTable{}, err
	}
	return BuildExport(st.Snapshot(), e.now())
}
